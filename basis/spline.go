package basis

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/statlearn/pkg/errors"
)

// Spline is a cubic spline basis fitted on training values.
//
// Two flavors are supported: an unconstrained cubic B-spline basis
// (Cox–de Boor, boundary knots at the training range) and a natural
// cubic spline basis, which is constrained to be linear beyond the
// boundary knots. Both exclude the constant column so they compose
// with an intercept-carrying regression.
type Spline struct {
	interior []float64
	lo, hi   float64
	natural  bool
}

// NewBSpline fits a cubic B-spline basis with the given interior knots.
// Boundary knots are placed at the min and max of the training values.
func NewBSpline(x []float64, interior []float64) (*Spline, error) {
	return newSpline(x, interior, false)
}

// NewNatural fits a natural cubic spline basis with the given interior
// knots. The fitted function is linear beyond the boundary knots.
func NewNatural(x []float64, interior []float64) (*Spline, error) {
	return newSpline(x, interior, true)
}

func newSpline(x []float64, interior []float64, natural bool) (*Spline, error) {
	if len(x) == 0 {
		return nil, errors.NewValueError("newSpline", "empty input")
	}
	if !sort.Float64sAreSorted(interior) {
		return nil, errors.NewValidationError("knots", "must be sorted increasing", interior)
	}
	for i := 1; i < len(interior); i++ {
		if interior[i] == interior[i-1] {
			return nil, errors.NewValidationError("knots", "must be strictly increasing", interior)
		}
	}

	lo, hi := x[0], x[0]
	for _, v := range x {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	if lo == hi {
		return nil, errors.NewValueError("newSpline", "constant input")
	}
	for _, k := range interior {
		if k <= lo || k >= hi {
			return nil, errors.NewValidationError("knots", "interior knots must lie strictly inside the data range", k)
		}
	}

	return &Spline{
		interior: append([]float64{}, interior...),
		lo:       lo,
		hi:       hi,
		natural:  natural,
	}, nil
}

// NumFeatures returns the number of basis columns produced by Transform.
func (s *Spline) NumFeatures() int {
	if s.natural {
		// x plus one column per knot beyond the last two (ESL 5.2.1),
		// knots = interior plus the two boundary knots.
		return len(s.interior) + 1
	}
	// Cubic B-spline basis without the constant column, as in bs().
	return len(s.interior) + 3
}

// Transform evaluates the fitted basis at x.
func (s *Spline) Transform(x []float64) *mat.Dense {
	if s.natural {
		return s.naturalBasis(x)
	}
	return s.bsplineBasis(x)
}

// bsplineBasis evaluates the cubic Cox–de Boor basis, dropping the
// first basis function in place of the intercept.
func (s *Spline) bsplineBasis(x []float64) *mat.Dense {
	const degree = 3

	// Clamped knot vector: boundary knots repeated degree+1 times.
	knots := make([]float64, 0, len(s.interior)+2*(degree+1))
	for i := 0; i <= degree; i++ {
		knots = append(knots, s.lo)
	}
	knots = append(knots, s.interior...)
	for i := 0; i <= degree; i++ {
		knots = append(knots, s.hi)
	}

	nbasis := len(knots) - degree - 1 // interior + 4
	out := mat.NewDense(len(x), nbasis-1, nil)

	b := make([]float64, nbasis)
	for i, v := range x {
		coxDeBoor(knots, degree, v, b)
		for j := 1; j < nbasis; j++ {
			out.Set(i, j-1, b[j])
		}
	}
	return out
}

// coxDeBoor fills b with all B-spline basis function values at v.
func coxDeBoor(knots []float64, degree int, v float64, b []float64) {
	nbasis := len(knots) - degree - 1

	for j := range b {
		b[j] = 0
	}

	// Right-closed at the last boundary so v == hi lands in the final span.
	// Beyond a clamped boundary the last basis function keeps its value 1.
	if v >= knots[len(knots)-1] {
		b[nbasis-1] = 1
		return
	}

	// Degree 0: indicator of the knot span.
	work := make([]float64, len(knots)-1)
	for j := range work {
		if v >= knots[j] && v < knots[j+1] {
			work[j] = 1
		}
	}

	// Triangular recurrence up to the requested degree.
	for d := 1; d <= degree; d++ {
		for j := 0; j < len(knots)-d-1; j++ {
			var left, right float64
			if den := knots[j+d] - knots[j]; den > 0 {
				left = (v - knots[j]) / den * work[j]
			}
			if den := knots[j+d+1] - knots[j+1]; den > 0 {
				right = (knots[j+d+1] - v) / den * work[j+1]
			}
			work[j] = left + right
		}
	}

	copy(b, work[:nbasis])
}

// naturalBasis evaluates the natural cubic spline basis via the
// truncated power representation (ESL eq. 5.4–5.5): columns are x and
// d_k(x) - d_{K-1}(x) for k = 1..K-2, where the knot sequence is the
// boundary knots plus the interior knots.
func (s *Spline) naturalBasis(x []float64) *mat.Dense {
	knots := make([]float64, 0, len(s.interior)+2)
	knots = append(knots, s.lo)
	knots = append(knots, s.interior...)
	knots = append(knots, s.hi)
	K := len(knots)

	out := mat.NewDense(len(x), s.NumFeatures(), nil)
	for i, v := range x {
		out.Set(i, 0, v)
		dLast := truncDiff(v, knots[K-2], knots[K-1])
		for k := 0; k < K-2; k++ {
			out.Set(i, k+1, truncDiff(v, knots[k], knots[K-1])-dLast)
		}
	}
	return out
}

// truncDiff computes d_k(x) = ((x-ξ_k)₊³ - (x-ξ_K)₊³) / (ξ_K - ξ_k).
func truncDiff(v, knot, last float64) float64 {
	return (cubePos(v-knot) - cubePos(v-last)) / (last - knot)
}

func cubePos(u float64) float64 {
	if u <= 0 {
		return 0
	}
	return math.Pow(u, 3)
}
