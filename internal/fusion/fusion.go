package fusion

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Posterior is the fused state estimate: x is the latent state's posterior
// mean, P its posterior covariance.
type Posterior struct {
	X *mat.VecDense // k x 1
	P *mat.SymDense // k x k
}

// Fuse applies the sensor fusion kernel (spec §4.4):
//
//	P = (Hᵀ R⁻¹ H)⁻¹
//	x = P Hᵀ R⁻¹ z
//
// R must be positive-definite and H must have full column rank; both are
// the caller's responsibility to arrange (§4.6), since a violation here is
// a structural error, not a recoverable one.
func Fuse(z *mat.VecDense, r *mat.SymDense, h *mat.Dense) (*Posterior, error) {
	n, k := h.Dims()
	if z.Len() != n {
		return nil, fmt.Errorf("fusion: z has length %d, H has %d rows", z.Len(), n)
	}
	if rn, _ := r.Dims(); rn != n {
		return nil, fmt.Errorf("fusion: R is %dx%d, H has %d rows", rn, rn, n)
	}

	var chol mat.Cholesky
	if ok := chol.Factorize(r); !ok {
		return nil, fmt.Errorf("fusion: R is not positive-definite")
	}

	// RiH = R^-1 H
	var riH mat.Dense
	if err := chol.SolveTo(&riH, h); err != nil {
		return nil, fmt.Errorf("fusion: solving R^-1 H: %w", err)
	}

	// HtRiH = H^T R^-1 H, symmetrized to absorb floating-point asymmetry.
	var htRiH mat.Dense
	htRiH.Mul(h.T(), &riH)
	htRiHSym := symmetrize(&htRiH, k)

	var cholP mat.Cholesky
	if ok := cholP.Factorize(htRiHSym); !ok {
		return nil, fmt.Errorf("fusion: H is not full column rank (H^T R^-1 H is singular)")
	}
	var p mat.SymDense
	if err := cholP.InverseTo(&p); err != nil {
		return nil, fmt.Errorf("fusion: inverting H^T R^-1 H: %w", err)
	}

	// Htr = H^T R^-1 z
	var riZ mat.VecDense
	if err := chol.SolveVecTo(&riZ, z); err != nil {
		return nil, fmt.Errorf("fusion: solving R^-1 z: %w", err)
	}
	var htr mat.VecDense
	htr.MulVec(h.T(), &riZ)

	var x mat.VecDense
	x.MulVec(&p, &htr)

	return &Posterior{X: &x, P: &p}, nil
}

// Extract projects a fused posterior onto an output space: y = W x,
// S = W P Wᵀ.
func Extract(post *Posterior, w *mat.Dense) (y *mat.VecDense, s *mat.SymDense) {
	var yVec mat.VecDense
	yVec.MulVec(w, post.X)

	var wp mat.Dense
	wp.Mul(w, post.P)
	var wpwt mat.Dense
	wpwt.Mul(&wp, w.T())

	m, _ := wpwt.Dims()
	return &yVec, symmetrize(&wpwt, m)
}

// Stdev returns sqrt(diag(S)).
func Stdev(s *mat.SymDense) []float64 {
	n, _ := s.Dims()
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		out[i] = math.Sqrt(s.At(i, i))
	}
	return out
}

// symmetrize returns the n x n symmetric matrix obtained by averaging m
// with its own transpose, absorbing the asymmetry floating-point products
// of an exactly-symmetric quantity inevitably accumulate.
func symmetrize(m *mat.Dense, n int) *mat.SymDense {
	out := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			out.SetSym(i, j, (m.At(i, j)+m.At(j, i))/2)
		}
	}
	return out
}
