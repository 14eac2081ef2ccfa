package rational

import (
	"fmt"
	"math/big"
)

// Matrix is a dense, row-major matrix of exact rationals.
type Matrix struct {
	rows, cols int
	data       []*big.Rat
}

// NewMatrix returns a rows x cols matrix of zeros.
func NewMatrix(rows, cols int) *Matrix {
	if rows < 0 || cols < 0 {
		panic("rational: negative matrix dimension")
	}
	data := make([]*big.Rat, rows*cols)
	for i := range data {
		data[i] = new(big.Rat)
	}
	return &Matrix{rows: rows, cols: cols, data: data}
}

// NewMatrixFromInts builds a matrix from integer literals, one row per
// sub-slice. All rows must have the same length.
func NewMatrixFromInts(rows [][]int64) *Matrix {
	if len(rows) == 0 {
		return NewMatrix(0, 0)
	}
	cols := len(rows[0])
	m := NewMatrix(len(rows), cols)
	for i, row := range rows {
		if len(row) != cols {
			panic("rational: ragged input rows")
		}
		for j, v := range row {
			m.Set(i, j, big.NewRat(v, 1))
		}
	}
	return m
}

// Dims returns the row and column count.
func (m *Matrix) Dims() (rows, cols int) {
	return m.rows, m.cols
}

func (m *Matrix) index(i, j int) int {
	if i < 0 || i >= m.rows || j < 0 || j >= m.cols {
		panic(fmt.Sprintf("rational: index (%d,%d) out of bounds for %dx%d matrix", i, j, m.rows, m.cols))
	}
	return i*m.cols + j
}

// At returns the value at row i, column j.
func (m *Matrix) At(i, j int) *big.Rat {
	return new(big.Rat).Set(m.data[m.index(i, j)])
}

// Set assigns the value at row i, column j.
func (m *Matrix) Set(i, j int, v *big.Rat) {
	m.data[m.index(i, j)].Set(v)
}

// Row returns a copy of row i as a slice of length cols.
func (m *Matrix) Row(i int) []*big.Rat {
	out := make([]*big.Rat, m.cols)
	for j := 0; j < m.cols; j++ {
		out[j] = m.At(i, j)
	}
	return out
}

// Clone returns a deep copy of m.
func (m *Matrix) Clone() *Matrix {
	out := NewMatrix(m.rows, m.cols)
	for i, v := range m.data {
		out.data[i].Set(v)
	}
	return out
}

// SelectColumns returns a new matrix made up of the given columns of m, in
// the given order.
func (m *Matrix) SelectColumns(cols []int) *Matrix {
	out := NewMatrix(m.rows, len(cols))
	for i := 0; i < m.rows; i++ {
		for k, j := range cols {
			out.Set(i, k, m.At(i, j))
		}
	}
	return out
}

// SelectRows returns a new matrix made up of the given rows of m, in the
// given order.
func (m *Matrix) SelectRows(rows []int) *Matrix {
	out := NewMatrix(len(rows), m.cols)
	for k, i := range rows {
		for j := 0; j < m.cols; j++ {
			out.Set(k, j, m.At(i, j))
		}
	}
	return out
}

// Equal reports whether m and other have identical shape and entries.
func (m *Matrix) Equal(other *Matrix) bool {
	if m.rows != other.rows || m.cols != other.cols {
		return false
	}
	for i, v := range m.data {
		if v.Cmp(other.data[i]) != 0 {
			return false
		}
	}
	return true
}

// Multiply returns the product of the given matrices, left to right. It is
// an error if consecutive matrices have mismatched inner dimensions.
func Multiply(ms ...*Matrix) (*Matrix, error) {
	if len(ms) == 0 {
		return nil, fmt.Errorf("rational: Multiply requires at least one matrix")
	}
	acc := ms[0]
	for k := 1; k < len(ms); k++ {
		next := ms[k]
		if acc.cols != next.rows {
			return nil, fmt.Errorf("rational: shape mismatch multiplying %dx%d by %dx%d", acc.rows, acc.cols, next.rows, next.cols)
		}
		out := NewMatrix(acc.rows, next.cols)
		for i := 0; i < acc.rows; i++ {
			for j := 0; j < next.cols; j++ {
				sum := new(big.Rat)
				for p := 0; p < acc.cols; p++ {
					term := new(big.Rat).Mul(acc.At(i, p), next.At(p, j))
					sum.Add(sum, term)
				}
				out.Set(i, j, sum)
			}
		}
		acc = out
	}
	return acc, nil
}

// VecFromRow multiplies a row vector c (1xn) against M (nxk) and returns the
// resulting 1xk row as a plain slice. Used to check row-span membership.
func VecFromRow(c []*big.Rat, m *Matrix) []*big.Rat {
	rows, cols := m.Dims()
	if len(c) != rows {
		panic("rational: coefficient length mismatch")
	}
	out := make([]*big.Rat, cols)
	for j := 0; j < cols; j++ {
		sum := new(big.Rat)
		for i := 0; i < rows; i++ {
			sum.Add(sum, new(big.Rat).Mul(c[i], m.At(i, j)))
		}
		out[j] = sum
	}
	return out
}

// RowEqual reports whether row vector a equals row vector b exactly.
func RowEqual(a, b []*big.Rat) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Cmp(b[i]) != 0 {
			return false
		}
	}
	return true
}
