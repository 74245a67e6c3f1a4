package gam

import (
	"math"
	"testing"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
)

func TestSmoothingSplineRecoversSine(t *testing.T) {
	rng := rand.New(rand.NewSource(17))
	n := 400
	x := make([]float64, n)
	y := make([]float64, n)
	for i := range x {
		v := 6 * rng.Float64()
		x[i] = v
		y[i] = math.Sin(v) + 0.1*rng.NormFloat64()
	}

	ss := NewSmoothingSpline(WithLambda(0.5))
	if err := ss.FitColumn(x, y); err != nil {
		t.Fatalf("FitColumn() error = %v", err)
	}

	grid := []float64{0.5, 1.5, 3.0, 4.5, 5.5}
	fit, err := ss.PredictColumn(grid)
	if err != nil {
		t.Fatalf("PredictColumn() error = %v", err)
	}

	for i, g := range grid {
		if math.Abs(fit[i]-math.Sin(g)) > 0.15 {
			t.Errorf("fit(%v) = %v, want ~%v", g, fit[i], math.Sin(g))
		}
	}
}

func TestSmoothingSplineLambdaControlsRoughness(t *testing.T) {
	rng := rand.New(rand.NewSource(29))
	n := 300
	x := make([]float64, n)
	y := make([]float64, n)
	for i := range x {
		v := 10 * rng.Float64()
		x[i] = v
		y[i] = math.Sin(2*v) + 0.3*rng.NormFloat64()
	}

	rough := NewSmoothingSpline(WithLambda(1e-4))
	smooth := NewSmoothingSpline(WithLambda(1e6))
	if err := rough.FitColumn(x, y); err != nil {
		t.Fatalf("rough FitColumn() error = %v", err)
	}
	if err := smooth.FitColumn(x, y); err != nil {
		t.Fatalf("smooth FitColumn() error = %v", err)
	}

	grid := make([]float64, 101)
	for i := range grid {
		grid[i] = 0.05 + 9.9*float64(i)/100
	}

	fitRough, _ := rough.PredictColumn(grid)
	fitSmooth, _ := smooth.PredictColumn(grid)

	// 強い罰則の方が2階差分（曲率の近似）が小さい
	if curvature(fitRough) <= curvature(fitSmooth) {
		t.Errorf("heavy penalty should give smaller curvature: rough %v, smooth %v",
			curvature(fitRough), curvature(fitSmooth))
	}
}

func curvature(fit []float64) float64 {
	var total float64
	for i := 2; i < len(fit); i++ {
		d := fit[i] - 2*fit[i-1] + fit[i-2]
		total += d * d
	}
	return total
}

func TestSmoothingSplineValidation(t *testing.T) {
	ss := NewSmoothingSpline()
	if err := ss.FitColumn([]float64{1, 2}, []float64{1}); err == nil {
		t.Error("FitColumn() should reject mismatched lengths")
	}
	if err := ss.FitColumn(nil, nil); err == nil {
		t.Error("FitColumn() should reject empty data")
	}
	if err := ss.FitColumn([]float64{1, 1, 2, 2}, []float64{1, 1, 2, 2}); err == nil {
		t.Error("FitColumn() should reject too few distinct values")
	}
}

func TestGAMRecoversAdditiveStructure(t *testing.T) {
	rng := rand.New(rand.NewSource(31))
	n := 600
	X := mat.NewDense(n, 2, nil)
	y := mat.NewDense(n, 1, nil)
	for i := 0; i < n; i++ {
		x1 := 6 * rng.Float64()
		x2 := -2 + 4*rng.Float64()
		X.Set(i, 0, x1)
		X.Set(i, 1, x2)
		y.Set(i, 0, 5+math.Sin(x1)+1.5*x2+0.1*rng.NormFloat64())
	}

	g := NewGAM([]Term{Smooth(0.5), Linear()})
	if err := g.Fit(X, y); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}

	// 切片は応答の平均付近
	if math.Abs(g.Intercept()-5) > 0.5 {
		t.Errorf("Intercept() = %v, want ~5", g.Intercept())
	}

	pred, err := g.Predict(X)
	if err != nil {
		t.Fatalf("Predict() error = %v", err)
	}

	var sse, tss float64
	var yMean float64
	for i := 0; i < n; i++ {
		yMean += y.At(i, 0)
	}
	yMean /= float64(n)
	for i := 0; i < n; i++ {
		d := y.At(i, 0) - pred.At(i, 0)
		sse += d * d
		m := y.At(i, 0) - yMean
		tss += m * m
	}
	if r2 := 1 - sse/tss; r2 < 0.95 {
		t.Errorf("GAM R² = %v, want > 0.95", r2)
	}
}

func TestGAMComponentShape(t *testing.T) {
	rng := rand.New(rand.NewSource(37))
	n := 500
	X := mat.NewDense(n, 2, nil)
	y := mat.NewDense(n, 1, nil)
	for i := 0; i < n; i++ {
		x1 := 6 * rng.Float64()
		x2 := rng.Float64()
		X.Set(i, 0, x1)
		X.Set(i, 1, x2)
		y.Set(i, 0, math.Sin(x1)+0.5*x2+0.1*rng.NormFloat64())
	}

	g := NewGAM([]Term{Smooth(0.5), Linear()})
	if err := g.Fit(X, y); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}

	grid := []float64{1.0, 2.0, 4.5}
	comp, err := g.Component(0, grid)
	if err != nil {
		t.Fatalf("Component() error = %v", err)
	}

	// sin形状なら f(1) と f(2) はどちらも f(4.5) より大きい
	if !(comp[0] > comp[2] && comp[1] > comp[2]) {
		t.Errorf("component does not follow sine shape: %v", comp)
	}

	if _, err := g.Component(5, grid); err == nil {
		t.Error("Component() should reject out-of-range index")
	}
}

func TestGAMDimensionChecks(t *testing.T) {
	g := NewGAM([]Term{Smooth(1)})

	X := mat.NewDense(10, 2, nil)
	y := mat.NewDense(10, 1, nil)
	if err := g.Fit(X, y); err == nil {
		t.Error("Fit() should reject column count mismatch with terms")
	}

	if _, err := g.Predict(mat.NewDense(2, 1, nil)); err == nil {
		t.Error("Predict() on unfitted model should fail")
	}
}
