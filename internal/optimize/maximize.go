package optimize

import "math"

// goldenRatio is (sqrt(5)-1)/2, the golden-section search step.
var goldenRatio = (math.Sqrt(5) - 1) / 2

type config struct {
	widthTolerance       float64
	improvementTolerance float64
}

// Option configures Maximize.
type Option func(*config)

// WithWidthTolerance stops the search once the bracket shrinks to this
// width or smaller. Default 1e-6.
func WithWidthTolerance(w float64) Option {
	return func(c *config) { c.widthTolerance = w }
}

// WithImprovementTolerance additionally stops the search once an
// iteration improves the best value by no more than this amount. Zero (the
// default) disables this criterion, leaving width as the sole stop
// condition.
func WithImprovementTolerance(i float64) Option {
	return func(c *config) { c.improvementTolerance = i }
}

// Maximize finds an approximate maximizer of f on the closed interval
// [lo, hi] by golden-section bracketing, per spec §4.8. f need not be
// differentiable but is assumed unimodal on [lo, hi]; behavior on a
// multimodal f is to converge to *a* local maximum, not necessarily the
// global one.
func Maximize(lo, hi float64, f func(float64) float64, opts ...Option) (x, y float64) {
	cfg := config{widthTolerance: 1e-6}
	for _, opt := range opts {
		opt(&cfg)
	}

	a, b := lo, hi
	c := b - goldenRatio*(b-a)
	d := a + goldenRatio*(b-a)
	fc, fd := f(c), f(d)
	best := math.Max(fc, fd)

	for b-a > cfg.widthTolerance {
		var next float64
		if fc > fd {
			b, d, fd = d, c, fc
			c = b - goldenRatio*(b-a)
			fc = f(c)
			next = math.Max(fc, fd)
		} else {
			a, c, fc = c, d, fd
			d = a + goldenRatio*(b-a)
			fd = f(d)
			next = math.Max(fc, fd)
		}
		if cfg.improvementTolerance > 0 && math.Abs(next-best) <= cfg.improvementTolerance {
			best = next
			break
		}
		best = next
	}

	if fc > fd {
		return c, fc
	}
	return d, fd
}
