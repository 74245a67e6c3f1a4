// Package interval constructs confidence bands around fitted curves.
//
// Bands are symmetric on the scale they are built on: center ± k·SE.
// When a model is fitted on a transformed scale (the logit scale for
// logistic regression), the band is built there and then mapped through
// the inverse transform. The mapped band is no longer symmetric around
// the center. That asymmetry is correct and must be preserved.
package interval

import (
	"math"

	"github.com/YuminosukeSato/statlearn/pkg/errors"
)

// Band holds three aligned sequences: lower bound, center and upper bound.
type Band struct {
	Lower  []float64
	Center []float64
	Upper  []float64
}

// Bands builds a symmetric band center ± k·se. k = 2 approximates a
// 95% interval under a normal approximation.
func Bands(center, se []float64, k float64) (*Band, error) {
	if len(center) != len(se) {
		return nil, errors.NewDimensionError("Bands", len(center), len(se), 0)
	}
	if k < 0 {
		return nil, errors.NewValidationError("k", "must be non-negative", k)
	}

	b := &Band{
		Lower:  make([]float64, len(center)),
		Center: append([]float64{}, center...),
		Upper:  make([]float64, len(center)),
	}
	for i := range center {
		b.Lower[i] = center[i] - k*se[i]
		b.Upper[i] = center[i] + k*se[i]
	}
	return b, nil
}

// InvLogit maps all three sequences through the inverse-logit function
// 1/(1+e^-x), returning a new band on the probability scale. The same
// transform is applied to lower, center and upper, so the ordering
// lower ≤ center ≤ upper is preserved while the band widths become
// asymmetric.
func (b *Band) InvLogit() *Band {
	out := &Band{
		Lower:  make([]float64, len(b.Lower)),
		Center: make([]float64, len(b.Center)),
		Upper:  make([]float64, len(b.Upper)),
	}
	for i := range b.Center {
		out.Lower[i] = InvLogit(b.Lower[i])
		out.Center[i] = InvLogit(b.Center[i])
		out.Upper[i] = InvLogit(b.Upper[i])
	}
	return out
}

// InvLogit computes the inverse-logit (logistic) function. It maps 0 to
// exactly 0.5 and is monotonically increasing.
func InvLogit(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}
