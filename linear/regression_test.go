package linear

import (
	"math"
	"strings"
	"testing"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
)

func TestRegressionFitPredict(t *testing.T) {
	// y = 1 + 2x に小さなノイズを乗せたデータ
	n := 50
	X := mat.NewDense(n, 1, nil)
	y := mat.NewDense(n, 1, nil)
	for i := 0; i < n; i++ {
		x := float64(i) / 10.0
		X.Set(i, 0, x)
		y.Set(i, 0, 1+2*x+0.01*math.Sin(float64(i)))
	}

	reg := NewRegression()
	if err := reg.Fit(X, y); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}

	if math.Abs(reg.Intercept-1) > 0.02 {
		t.Errorf("Intercept = %v, want ~1", reg.Intercept)
	}
	if math.Abs(reg.Weights.AtVec(0)-2) > 0.02 {
		t.Errorf("slope = %v, want ~2", reg.Weights.AtVec(0))
	}

	score, err := reg.Score(X, y)
	if err != nil {
		t.Fatalf("Score() error = %v", err)
	}
	if score < 0.999 {
		t.Errorf("Score() = %v, want > 0.999", score)
	}
}

func TestRegressionNotFitted(t *testing.T) {
	reg := NewRegression()
	if _, err := reg.Predict(mat.NewDense(1, 1, []float64{1})); err == nil {
		t.Error("Predict() on unfitted model should fail")
	}
	if _, err := reg.Summary(); err == nil {
		t.Error("Summary() on unfitted model should fail")
	}
}

func TestRegressionSingular(t *testing.T) {
	// 同一の列を2つ持つ計画行列は特異
	X := mat.NewDense(10, 2, nil)
	y := mat.NewDense(10, 1, nil)
	for i := 0; i < 10; i++ {
		X.Set(i, 0, float64(i))
		X.Set(i, 1, float64(i))
		y.Set(i, 0, float64(i))
	}

	reg := NewRegression()
	if err := reg.Fit(X, y); err == nil {
		t.Error("Fit() should fail on a singular design")
	}
}

func TestPredictWithSEOrdering(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	n := 100
	X := mat.NewDense(n, 1, nil)
	y := mat.NewDense(n, 1, nil)
	for i := 0; i < n; i++ {
		x := rng.Float64() * 10
		X.Set(i, 0, x)
		y.Set(i, 0, 3+0.5*x+rng.NormFloat64())
	}

	reg := NewRegression()
	if err := reg.Fit(X, y); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}

	// データの中心より外挿域の方が標準誤差が大きい
	grid := mat.NewDense(2, 1, []float64{5, 20})
	_, se, err := reg.PredictWithSE(grid)
	if err != nil {
		t.Fatalf("PredictWithSE() error = %v", err)
	}
	if se[0] <= 0 || se[1] <= 0 {
		t.Fatalf("standard errors must be positive: %v", se)
	}
	if se[1] <= se[0] {
		t.Errorf("extrapolation SE %v should exceed interior SE %v", se[1], se[0])
	}
}

// 直交基底と生のべき乗基底は同じ予測関数を表すため、
// すべての訓練行で当てはめ値が浮動小数点精度の範囲で一致する。
func TestPolynomialOrthogonalVsRaw(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	n := 300
	x := make([]float64, n)
	y := make([]float64, n)
	for i := range x {
		v := 10 * rng.Float64()
		x[i] = v
		y[i] = 40 + 2.0*v - 0.4*v*v + 0.02*v*v*v + rng.NormFloat64()
	}

	ortho := NewPolynomialRegression(4)
	if err := ortho.FitColumn(x, y); err != nil {
		t.Fatalf("orthogonal FitColumn() error = %v", err)
	}

	raw := NewPolynomialRegression(4, WithRawBasis())
	if err := raw.FitColumn(x, y); err != nil {
		t.Fatalf("raw FitColumn() error = %v", err)
	}

	fitO, err := ortho.PredictColumn(x)
	if err != nil {
		t.Fatalf("PredictColumn() error = %v", err)
	}
	fitR, err := raw.PredictColumn(x)
	if err != nil {
		t.Fatalf("PredictColumn() error = %v", err)
	}

	for i := range x {
		if math.Abs(fitO[i]-fitR[i]) > 1e-6 {
			t.Fatalf("row %d: orthogonal fit %v != raw fit %v", i, fitO[i], fitR[i])
		}
	}
}

func TestAnovaDetectsCubicTerm(t *testing.T) {
	rng := rand.New(rand.NewSource(9))
	n := 400
	x := make([]float64, n)
	y := make([]float64, n)
	for i := range x {
		v := -2 + 4*rng.Float64()
		x[i] = v
		y[i] = 1 + v - 0.5*v*v + 0.8*v*v*v + 0.3*rng.NormFloat64()
	}

	var models []*Regression
	for degree := 1; degree <= 5; degree++ {
		p := NewPolynomialRegression(degree)
		if err := p.FitColumn(x, y); err != nil {
			t.Fatalf("degree %d FitColumn() error = %v", degree, err)
		}
		models = append(models, p.Reg)
	}

	rows, err := Anova(models...)
	if err != nil {
		t.Fatalf("Anova() error = %v", err)
	}

	if len(rows) != 5 {
		t.Fatalf("Anova rows = %d, want 5", len(rows))
	}

	// 2次と3次の項は有意、5次の項は有意でない
	if rows[1].PValue > 1e-4 {
		t.Errorf("quadratic term p = %v, want significant", rows[1].PValue)
	}
	if rows[2].PValue > 1e-4 {
		t.Errorf("cubic term p = %v, want significant", rows[2].PValue)
	}
	if rows[4].PValue < 0.01 {
		t.Errorf("quintic term p = %v, expected non-significant", rows[4].PValue)
	}

	out := FormatAnova(rows)
	if !strings.Contains(out, "Res.Df") {
		t.Errorf("FormatAnova output missing header: %q", out)
	}
}

func TestAnovaValidation(t *testing.T) {
	if _, err := Anova(NewRegression()); err == nil {
		t.Error("Anova() with one model should fail")
	}
}

func TestSummaryContainsCoefficients(t *testing.T) {
	x := make([]float64, 100)
	y := make([]float64, 100)
	rng := rand.New(rand.NewSource(2))
	for i := range x {
		x[i] = rng.Float64() * 10
		y[i] = 2 + 3*x[i] + rng.NormFloat64()
	}

	p := NewPolynomialRegression(2)
	if err := p.FitColumn(x, y); err != nil {
		t.Fatalf("FitColumn() error = %v", err)
	}

	s, err := p.Summary()
	if err != nil {
		t.Fatalf("Summary() error = %v", err)
	}
	if !strings.Contains(s, "(Intercept)") || !strings.Contains(s, "Std. Error") {
		t.Errorf("unexpected summary: %q", s)
	}
}
