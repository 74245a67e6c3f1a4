// Package basis constructs feature bases for a single predictor:
// raw and orthogonal polynomial bases, cubic B-splines and natural
// cubic splines. Bases are fitted on training values and can then be
// evaluated on arbitrary grids, so a model fitted on the training
// basis predicts on the identical basis at new points.
package basis

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/statlearn/pkg/errors"
)

// Raw returns the n×degree matrix of raw powers x^1 .. x^degree.
func Raw(x []float64, degree int) (*mat.Dense, error) {
	if degree < 1 {
		return nil, errors.NewValidationError("degree", "must be >= 1", degree)
	}
	if len(x) == 0 {
		return nil, errors.NewValueError("Raw", "empty input")
	}

	out := mat.NewDense(len(x), degree, nil)
	for i, v := range x {
		p := 1.0
		for j := 0; j < degree; j++ {
			p *= v
			out.Set(i, j, p)
		}
	}
	return out, nil
}

// OrthoPoly is an orthogonal polynomial basis fitted on training values.
//
// The basis columns are orthonormal over the training sample, so
// per-degree coefficient significance tests are independent. The
// three-term recurrence coefficients are retained, which makes the
// fitted basis evaluable at new points on the same scale.
type OrthoPoly struct {
	degree int
	alpha  []float64 // recurrence shifts, one per degree
	norm2  []float64 // squared norms of p_0 .. p_degree on the training sample
}

// NewOrthoPoly fits an orthogonal polynomial basis of the given degree
// on the training values x using the Stieltjes recurrence:
//
//	p_{j+1}(x) = (x - alpha_j) p_j(x) - beta_j p_{j-1}(x)
//
// with alpha_j and beta_j chosen so the p_j are orthogonal over x.
func NewOrthoPoly(x []float64, degree int) (*OrthoPoly, error) {
	if degree < 1 {
		return nil, errors.NewValidationError("degree", "must be >= 1", degree)
	}
	n := len(x)
	if n <= degree {
		return nil, errors.NewValueError("NewOrthoPoly", "need more points than the requested degree")
	}

	alpha := make([]float64, degree)
	norm2 := make([]float64, degree+1)

	prev := make([]float64, n) // p_{j-1}(x_i)
	cur := make([]float64, n)  // p_j(x_i)
	for i := range cur {
		cur[i] = 1
	}
	norm2[0] = float64(n)

	for j := 0; j < degree; j++ {
		// alpha_j = <x p_j, p_j> / <p_j, p_j>
		var a float64
		for i := range x {
			a += x[i] * cur[i] * cur[i]
		}
		a /= norm2[j]
		alpha[j] = a

		beta := 0.0
		if j > 0 {
			beta = norm2[j] / norm2[j-1]
		}

		next := make([]float64, n)
		var n2 float64
		for i := range x {
			v := (x[i]-a)*cur[i] - beta*prev[i]
			next[i] = v
			n2 += v * v
		}
		if n2 <= 0 {
			return nil, errors.NewModelError("NewOrthoPoly", "degenerate basis (constant input?)", errors.ErrSingularMatrix)
		}
		norm2[j+1] = n2

		prev = cur
		cur = next
	}

	return &OrthoPoly{degree: degree, alpha: alpha, norm2: norm2}, nil
}

// Degree returns the degree of the basis.
func (b *OrthoPoly) Degree() int { return b.degree }

// Transform evaluates the fitted basis at x, returning the n×degree
// matrix of orthonormal polynomial columns (constant column excluded).
func (b *OrthoPoly) Transform(x []float64) *mat.Dense {
	n := len(x)
	out := mat.NewDense(n, b.degree, nil)

	prev := make([]float64, n)
	cur := make([]float64, n)
	for i := range cur {
		cur[i] = 1
	}

	for j := 0; j < b.degree; j++ {
		beta := 0.0
		if j > 0 {
			beta = b.norm2[j] / b.norm2[j-1]
		}

		next := make([]float64, n)
		scale := math.Sqrt(b.norm2[j+1])
		for i := range x {
			v := (x[i]-b.alpha[j])*cur[i] - beta*prev[i]
			next[i] = v
			out.Set(i, j, v/scale)
		}

		prev = cur
		cur = next
	}

	return out
}
