package covariance

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/spatialmodel/nowcast/internal/optimize"
)

// standardNormal is shared by every whitened log-likelihood evaluation;
// it has no mutable state, so one instance suffices.
var standardNormal = distuv.Normal{Mu: 0, Sigma: 1}

func standardNormalLogProb(z float64) float64 {
	return standardNormal.LogProb(z)
}

// MLECov estimates the covariance of X's columns by maximizing, over the
// given shrinkage family's alpha range, the marginal log-likelihood of X's
// rows under N(0, Sigma(alpha)) (spec §4.5 step 3). The returned matrix is
// symmetric and positive-definite.
func MLECov(x *mat.Dense, variant Variant) (*mat.SymDense, error) {
	num, den := PairwiseStats(x)
	family := New(variant, num, den)
	lo, hi := family.AlphaBounds()

	objective := func(alpha float64) float64 {
		sigma := family.Covariance(alpha)
		if !isPositiveDefinite(sigma) {
			return math.Inf(-1)
		}
		return LogLikelihood(sigma, x)
	}

	alphaStar, _ := optimize.Maximize(lo, hi, objective)
	sigma := family.Covariance(alphaStar)
	if !isPositiveDefinite(sigma) {
		return nil, fmt.Errorf("covariance: selected alpha %.6g does not yield a positive-definite matrix", alphaStar)
	}
	return sigma, nil
}
