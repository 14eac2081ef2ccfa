package covariance

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// PairwiseStats computes, for each column pair (i, j) of X, the sum of
// products num[i,j] = Σ Xᵣᵢ·Xᵣⱼ over rows r where both entries are
// observed, and den[i,j], the count of such rows. Both are symmetric.
func PairwiseStats(x *mat.Dense) (num, den *mat.SymDense) {
	n, p := x.Dims()
	num = mat.NewSymDense(p, nil)
	den = mat.NewSymDense(p, nil)
	for i := 0; i < p; i++ {
		for j := i; j < p; j++ {
			var sum, count float64
			for r := 0; r < n; r++ {
				a, b := x.At(r, i), x.At(r, j)
				if math.IsNaN(a) || math.IsNaN(b) {
					continue
				}
				sum += a * b
				count++
			}
			num.SetSym(i, j, sum)
			den.SetSym(i, j, count)
		}
	}
	return num, den
}

// SampleCovariance returns num/den elementwise, with 0 where den is 0. The
// result is symmetric but not guaranteed positive-definite.
func SampleCovariance(num, den *mat.SymDense) *mat.SymDense {
	p, _ := num.Dims()
	out := mat.NewSymDense(p, nil)
	for i := 0; i < p; i++ {
		for j := i; j < p; j++ {
			d := den.At(i, j)
			var v float64
			if d != 0 {
				v = num.At(i, j) / d
			}
			out.SetSym(i, j, v)
		}
	}
	return out
}

// isPositiveDefinite reports whether m admits a Cholesky factorization.
func isPositiveDefinite(m *mat.SymDense) bool {
	var chol mat.Cholesky
	return chol.Factorize(m)
}

// rowLogLikelihood returns the log-density of a single row of residuals
// under N(0, sigma), marginalizing missing entries by restricting to the
// observed sub-covariance. It is computed by whitening the observed
// sub-vector through sigma's Cholesky factor and summing standard-normal
// log-densities, correcting for the Cholesky factor's Jacobian:
//
//	log p(e) = Σᵢ logφ(zᵢ) - Σᵢ log(Lᵢᵢ),  z = L⁻¹e,  Σ = LLᵀ
//
// A row with no observed entries contributes nothing (0). A sigma that
// fails to factorize on the observed columns yields -Inf.
func rowLogLikelihood(sigma *mat.SymDense, row []float64) float64 {
	var observed []int
	for i, v := range row {
		if !math.IsNaN(v) {
			observed = append(observed, i)
		}
	}
	if len(observed) == 0 {
		return 0
	}

	sub := subSym(sigma, observed)
	var chol mat.Cholesky
	if ok := chol.Factorize(sub); !ok {
		return math.Inf(-1)
	}
	var l mat.TriDense
	chol.LTo(&l)

	e := mat.NewVecDense(len(observed), nil)
	for k, i := range observed {
		e.SetVec(k, row[i])
	}
	var z mat.VecDense
	if err := z.SolveVec(&l, e); err != nil {
		return math.Inf(-1)
	}

	terms := make([]float64, 0, 2*len(observed))
	for k := 0; k < z.Len(); k++ {
		terms = append(terms, standardNormalLogProb(z.AtVec(k)))
	}
	for k := range observed {
		terms = append(terms, -math.Log(l.At(k, k)))
	}
	return floats.Sum(terms)
}

// LogLikelihood sums rowLogLikelihood over every row of x under N(0, sigma).
func LogLikelihood(sigma *mat.SymDense, x *mat.Dense) float64 {
	n, p := x.Dims()
	rowLLs := make([]float64, n)
	for r := 0; r < n; r++ {
		row := make([]float64, p)
		mat.Row(row, r, x)
		rowLLs[r] = rowLogLikelihood(sigma, row)
	}
	total := 0.0
	for _, ll := range rowLLs {
		if math.IsInf(ll, -1) {
			return math.Inf(-1)
		}
		total += ll
	}
	return total
}

// subSym returns the symmetric sub-matrix of m restricted to the given
// (sorted, distinct) row/column indices.
func subSym(m *mat.SymDense, idx []int) *mat.SymDense {
	out := mat.NewSymDense(len(idx), nil)
	for a, i := range idx {
		for b := a; b < len(idx); b++ {
			out.SetSym(a, b, m.At(i, idx[b]))
		}
	}
	return out
}
