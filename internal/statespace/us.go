package statespace

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/golang/groupcache/lru"

	"github.com/spatialmodel/nowcast/internal/geo"
)

// memoSize is the statespace memoization cache capacity (§4.3, §9): small
// enough that an interactive session's repeated (input-locations, season,
// excluded-atoms) combinations stay warm without unbounded growth.
const memoSize = 16

// Solver derives statespaces against a fixed geography catalog, memoizing
// by (input locations, season, excluded atoms) as functools.lru_cache did
// in the original UsFusion.determine_statespace.
type Solver struct {
	cat   *geo.Catalog
	cache *lru.Cache
}

// NewSolver returns a Solver backed by cat.
func NewSolver(cat *geo.Catalog) *Solver {
	return &Solver{cat: cat, cache: lru.New(memoSize)}
}

type memoEntry struct {
	result          *Result
	outputLocations []string
}

// DetermineStatespace derives (H, W, output locations) for the given
// ordered input locations, season, and excluded-atoms set. The candidate
// output list is always the catalog's canonical Locations() order with the
// excluded atoms removed; callers never choose it directly (matching the
// original, which always solves against the full HHS/division/atom
// location list and lets the solver prune).
//
// Fatal per §4.3: an excluded atom that is itself one of the input
// locations is an invalid configuration.
func (s *Solver) DetermineStatespace(inputs []string, season int, excludedAtoms []string) (*Result, []string, error) {
	key := cacheKey(inputs, season, excludedAtoms)
	if v, ok := s.cache.Get(key); ok {
		e := v.(memoEntry)
		return e.result, e.outputLocations, nil
	}

	result, outputLocations, err := s.determineStatespace(inputs, season, excludedAtoms)
	if err != nil {
		return nil, nil, err
	}
	s.cache.Add(key, memoEntry{result, outputLocations})
	return result, outputLocations, nil
}

func (s *Solver) determineStatespace(inputs []string, season int, excludedAtoms []string) (*Result, []string, error) {
	excluded := make(map[string]bool, len(excludedAtoms))
	for _, a := range excludedAtoms {
		excluded[a] = true
	}

	for _, loc := range inputs {
		if excluded[loc] {
			return nil, nil, fmt.Errorf("statespace: input location %q is also an excluded atom", loc)
		}
	}

	var atomBasis []string
	for _, a := range s.cat.Atoms() {
		if !excluded[a] {
			atomBasis = append(atomBasis, a)
		}
	}

	var candidateOutputs []string
	for _, loc := range s.cat.Locations() {
		if loc.Tier == geo.TierAtom && excluded[loc.ID] {
			continue
		}
		candidateOutputs = append(candidateOutputs, loc.ID)
	}

	h0, err := geo.WeightMatrix(s.cat, inputs, atomBasis, season)
	if err != nil {
		return nil, nil, fmt.Errorf("statespace: building H0: %w", err)
	}
	w0, err := geo.WeightMatrix(s.cat, candidateOutputs, atomBasis, season)
	if err != nil {
		return nil, nil, fmt.Errorf("statespace: building W0: %w", err)
	}

	result, err := Solve(h0, w0)
	if err != nil {
		return nil, nil, err
	}

	outputLocations := make([]string, len(result.OutputRows))
	for i, row := range result.OutputRows {
		outputLocations[i] = candidateOutputs[row]
	}
	return result, outputLocations, nil
}

func cacheKey(inputs []string, season int, excludedAtoms []string) string {
	var b strings.Builder
	b.WriteString(strconv.Itoa(season))
	b.WriteByte('|')
	b.WriteString(strings.Join(inputs, ","))
	b.WriteByte('|')
	sorted := append([]string(nil), excludedAtoms...)
	sort.Strings(sorted)
	b.WriteString(strings.Join(sorted, ","))
	return b.String()
}
