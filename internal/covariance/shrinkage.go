package covariance

import "gonum.org/v1/gonum/mat"

// Family is a shrinkage target family (spec §4.5 step 2): a one-parameter
// blend of a structured target against the raw sample covariance, valid
// for any alpha within its declared bounds.
type Family interface {
	AlphaBounds() (lo, hi float64)
	Covariance(alpha float64) *mat.SymDense
}

// Variant selects which of the three shrinkage families to use; the zero
// value is the least aggressive (diagonal blend restricted to [0,1]).
type Variant int

const (
	// VariantDiagonal blends the sample covariance with its own diagonal,
	// alpha restricted to [0,1].
	VariantDiagonal Variant = iota
	// VariantBoundedDiagonal blends with the diagonal but searches alpha
	// bounds for the widest positive-definite range, which may exceed 1.
	VariantBoundedDiagonal
	// VariantDenWeighted is VariantBoundedDiagonal with off-diagonals of
	// the sample covariance pre-scaled by den/max(den), down-weighting
	// pairs with little observed overlap. This is the operational default
	// (spec §9).
	VariantDenWeighted
)

// boundSearchTolerance is the alpha-bound bisection tolerance; tighter than
// the optimizer's own width tolerance since it only runs twice per family.
const boundSearchTolerance = 1e-9

// New constructs the shrinkage family selected by variant from a residual
// matrix's pairwise statistics.
func New(variant Variant, num, den *mat.SymDense) Family {
	sample := SampleCovariance(num, den)
	switch variant {
	case VariantDiagonal:
		return &blendDiagonal0{sample: sample}
	case VariantBoundedDiagonal:
		return &blendDiagonalBounded{sample: sample}
	case VariantDenWeighted:
		return &blendDiagonalBounded{sample: scaleOffDiagonals(sample, den)}
	default:
		panic("covariance: unknown shrinkage variant")
	}
}

// blendDiag returns (1-alpha)*sample + alpha*diag(sample): the diagonal is
// unaffected by alpha (target and sample agree there), off-diagonals are
// scaled by (1-alpha).
func blendDiag(sample *mat.SymDense, alpha float64) *mat.SymDense {
	p, _ := sample.Dims()
	out := mat.NewSymDense(p, nil)
	for i := 0; i < p; i++ {
		for j := i; j < p; j++ {
			v := sample.At(i, j)
			if i != j {
				v *= 1 - alpha
			}
			out.SetSym(i, j, v)
		}
	}
	return out
}

// scaleOffDiagonals multiplies every off-diagonal entry of sample by
// den/max(den), leaving the diagonal untouched.
func scaleOffDiagonals(sample, den *mat.SymDense) *mat.SymDense {
	p, _ := sample.Dims()
	var denVals []float64
	for i := 0; i < p; i++ {
		for j := 0; j < p; j++ {
			denVals = append(denVals, den.At(i, j))
		}
	}
	maxDen := maxOf(denVals)

	out := mat.NewSymDense(p, nil)
	for i := 0; i < p; i++ {
		for j := i; j < p; j++ {
			v := sample.At(i, j)
			if i != j && maxDen > 0 {
				v *= den.At(i, j) / maxDen
			}
			out.SetSym(i, j, v)
		}
	}
	return out
}

func maxOf(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	m := vals[0]
	for _, v := range vals[1:] {
		if v > m {
			m = v
		}
	}
	return m
}

// blendDiagonal0 is variant 0: diagonal blend, alpha restricted to [0,1].
type blendDiagonal0 struct{ sample *mat.SymDense }

func (b *blendDiagonal0) AlphaBounds() (float64, float64)    { return 0, 1 }
func (b *blendDiagonal0) Covariance(alpha float64) *mat.SymDense { return blendDiag(b.sample, alpha) }

// blendDiagonalBounded is variants 1 and 2: diagonal blend (optionally
// pre-scaled, for variant 2) with alpha bounds searched for the widest
// positive-definite range rather than fixed to [0,1].
type blendDiagonalBounded struct{ sample *mat.SymDense }

func (b *blendDiagonalBounded) Covariance(alpha float64) *mat.SymDense {
	return blendDiag(b.sample, alpha)
}

func (b *blendDiagonalBounded) AlphaBounds() (float64, float64) {
	lo := searchLowerBound(b.Covariance, boundSearchTolerance)
	hi := searchUpperBound(b.Covariance, boundSearchTolerance)
	return lo, hi
}

// searchLowerBound returns the smallest alpha in [0,1] for which blend(alpha)
// is positive-definite, by bisection. If blend(0) (the raw sample) is
// already positive-definite, no shrinkage is required and 0 is returned.
func searchLowerBound(blend func(float64) *mat.SymDense, tol float64) float64 {
	if isPositiveDefinite(blend(0)) {
		return 0
	}
	// blend(1) is the pure diagonal target, whose entries are averages of
	// squared residuals and therefore nonnegative; it is positive-definite
	// as long as every included column cleared min_observations upstream,
	// so it anchors the bisection's positive-definite side.
	lo, hi := 0.0, 1.0
	for hi-lo > tol {
		mid := (lo + hi) / 2
		if isPositiveDefinite(blend(mid)) {
			hi = mid
		} else {
			lo = mid
		}
	}
	return hi
}

// searchUpperBound returns the largest alpha >= 1 for which blend(alpha) is
// still positive-definite, by doubling outward from 1 and then bisecting
// the boundary found.
func searchUpperBound(blend func(float64) *mat.SymDense, tol float64) float64 {
	const searchCap = 1 << 20
	lo, hi := 1.0, 2.0
	for isPositiveDefinite(blend(hi)) {
		lo = hi
		hi *= 2
		if hi > searchCap {
			return lo
		}
	}
	for hi-lo > tol {
		mid := (lo + hi) / 2
		if isPositiveDefinite(blend(mid)) {
			lo = mid
		} else {
			hi = mid
		}
	}
	return lo
}
