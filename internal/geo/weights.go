package geo

import (
	"fmt"
	"math/big"

	"github.com/spatialmodel/nowcast/internal/rational"
)

// WeightRow returns a 1 x len(atomBasis) rational row expressing location
// as a population-fraction combination of the atoms in atomBasis:
// weight[a] = population(a) / total, where total sums population over
// location's constituents that also appear in atomBasis, and weight[a] = 0
// for every other atom. The row always sums exactly to 1.
//
// atomBasis is the caller's ordered, already-exclusion-filtered atom list;
// an excluded atom is simply absent from atomBasis, so it contributes
// neither to the numerator nor the denominator here.
func WeightRow(cat *Catalog, location string, atomBasis []string, season int) (*rational.Matrix, error) {
	constituents, err := cat.Constituents(location)
	if err != nil {
		return nil, err
	}
	inBasis := make(map[string]bool, len(constituents))
	for _, a := range constituents {
		inBasis[a] = true
	}

	pop := make(map[string]int64, len(atomBasis))
	var total int64
	for _, a := range atomBasis {
		if !inBasis[a] {
			continue
		}
		p, err := cat.Population(a, season)
		if err != nil {
			return nil, err
		}
		pop[a] = p
		total += p
	}
	if total == 0 {
		return nil, fmt.Errorf("geo: weight row for %q has no non-excluded constituents in the atom basis", location)
	}

	row := rational.NewMatrix(1, len(atomBasis))
	for j, a := range atomBasis {
		if p, ok := pop[a]; ok {
			row.Set(0, j, big.NewRat(p, total))
		}
	}
	return row, nil
}

// WeightMatrix stacks WeightRow for each of locations, in order.
func WeightMatrix(cat *Catalog, locations []string, atomBasis []string, season int) (*rational.Matrix, error) {
	m := rational.NewMatrix(len(locations), len(atomBasis))
	for i, loc := range locations {
		row, err := WeightRow(cat, loc, atomBasis, season)
		if err != nil {
			return nil, fmt.Errorf("geo: building weight matrix at row %d (%q): %w", i, loc, err)
		}
		for j := range atomBasis {
			m.Set(i, j, row.At(0, j))
		}
	}
	return m, nil
}
