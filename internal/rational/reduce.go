package rational

import "math/big"

// Reduced holds the result of reducing a matrix to reduced row-echelon form.
type Reduced struct {
	// Basis is the matrix's RREF with all-zero rows dropped: Rank rows by
	// Cols columns.
	Basis *Matrix
	// Pivots holds the column index of the pivot for each row of Basis, in
	// row order. len(Pivots) == Rank.
	Pivots []int
	// Rank is the number of nonzero rows remaining, i.e. the rank of the
	// original matrix.
	Rank int
}

// RowReduce computes the reduced row-echelon form of m by Gauss-Jordan
// elimination over exact rationals. It does not modify m.
//
// Because Basis is in RREF, restricting it to its pivot columns yields the
// identity matrix of size Rank; this lets callers read off the coordinates
// of any row known to lie in the row span of m by taking that row's entries
// at the same pivot columns. See the statespace package for the projection
// this enables.
func RowReduce(m *Matrix) Reduced {
	work := m.Clone()
	rows, cols := work.Dims()

	pivotRow := 0
	var pivots []int
	for col := 0; col < cols && pivotRow < rows; col++ {
		sel := -1
		for r := pivotRow; r < rows; r++ {
			if work.data[work.index(r, col)].Sign() != 0 {
				sel = r
				break
			}
		}
		if sel == -1 {
			continue
		}
		if sel != pivotRow {
			swapRows(work, sel, pivotRow)
		}
		normalizeRow(work, pivotRow, col)
		for r := 0; r < rows; r++ {
			if r == pivotRow {
				continue
			}
			factor := new(big.Rat).Set(work.data[work.index(r, col)])
			if factor.Sign() == 0 {
				continue
			}
			subtractMultiple(work, r, pivotRow, factor)
		}
		pivots = append(pivots, col)
		pivotRow++
	}

	basis := work.SelectRows(seq(pivotRow))
	return Reduced{Basis: basis, Pivots: pivots, Rank: pivotRow}
}

func seq(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

func swapRows(m *Matrix, a, b int) {
	for j := 0; j < m.cols; j++ {
		ia, ib := m.index(a, j), m.index(b, j)
		m.data[ia], m.data[ib] = m.data[ib], m.data[ia]
	}
}

func normalizeRow(m *Matrix, row, pivotCol int) {
	pivot := new(big.Rat).Set(m.data[m.index(row, pivotCol)])
	inv := new(big.Rat).Inv(pivot)
	for j := 0; j < m.cols; j++ {
		idx := m.index(row, j)
		m.data[idx].Mul(m.data[idx], inv)
	}
}

// subtractMultiple performs row[r] -= factor * row[pivotRow].
func subtractMultiple(m *Matrix, r, pivotRow int, factor *big.Rat) {
	for j := 0; j < m.cols; j++ {
		term := new(big.Rat).Mul(factor, m.data[m.index(pivotRow, j)])
		idx := m.index(r, j)
		m.data[idx].Sub(m.data[idx], term)
	}
}

// ProjectOntoBasis tests whether row lies in the row span described by red.
// If it does, it returns the coordinate vector (length red.Rank) expressing
// row as a linear combination of red.Basis's rows, and ok is true.
func ProjectOntoBasis(red Reduced, row []*big.Rat) (coords []*big.Rat, ok bool) {
	if len(row) != red.Basis.cols {
		panic("rational: row length does not match basis column count")
	}
	coords = make([]*big.Rat, red.Rank)
	for k, col := range red.Pivots {
		coords[k] = new(big.Rat).Set(row[col])
	}
	reconstructed := VecFromRow(coords, red.Basis)
	return coords, RowEqual(reconstructed, row)
}
