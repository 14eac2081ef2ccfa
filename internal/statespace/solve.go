package statespace

import (
	"fmt"
	"math/big"

	"github.com/spatialmodel/nowcast/internal/rational"
)

// Result is a derived statespace triple: H maps the latent space to
// inputs, W maps it to surviving outputs.
type Result struct {
	H *rational.Matrix // n_in x k
	W *rational.Matrix // n_out' x k

	// OutputRows holds, for each row of W, the index of the corresponding
	// row in the original W0 passed to Solve. Rows are dropped, never
	// reordered, so OutputRows is strictly increasing.
	OutputRows []int
}

// Solve derives the minimal latent statespace for H0 (n_in x n_atoms) and
// W0 (n_out x n_atoms), both expressed over the same ordered atom basis
// with rows summing to 1, per spec §4.3.
//
// The returned k is the maximal dimension such that H has full column
// rank and every returned row of W lies in the row span of H: k equals
// rank(H0), and a W0 row survives iff it lies in that row span.
func Solve(h0, w0 *rational.Matrix) (*Result, error) {
	ninH, natomsH := h0.Dims()
	noutW, natomsW := w0.Dims()
	if natomsH != natomsW {
		return nil, fmt.Errorf("statespace: H0 has %d atom columns, W0 has %d", natomsH, natomsW)
	}
	if ninH == 0 {
		return nil, fmt.Errorf("statespace: H0 has no input rows")
	}

	red := rational.RowReduce(h0)

	// Optimization (§4.3): inputs already determine every atom, so the
	// reduction is a no-op and every output row survives unchanged.
	if red.Rank == natomsH {
		rows := make([]int, noutW)
		for i := range rows {
			rows[i] = i
		}
		return &Result{H: h0.Clone(), W: w0.Clone(), OutputRows: rows}, nil
	}

	h := h0.SelectColumns(red.Pivots)

	var outputRows []int
	var wCoordRows [][]*big.Rat
	for i := 0; i < noutW; i++ {
		coords, ok := rational.ProjectOntoBasis(red, w0.Row(i))
		if !ok {
			continue
		}
		outputRows = append(outputRows, i)
		wCoordRows = append(wCoordRows, coords)
	}

	w := rational.NewMatrix(len(wCoordRows), red.Rank)
	for i, row := range wCoordRows {
		for j, v := range row {
			w.Set(i, j, v)
		}
	}

	return &Result{H: h, W: w, OutputRows: outputRows}, nil
}
