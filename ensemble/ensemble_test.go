package ensemble

import (
	"math"
	"math/rand"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/statlearn/core/model"
)

// stepData has a clean split at x0 = 0.5 that a single tree must find.
func stepData(n int, rng *rand.Rand) (*mat.Dense, *mat.Dense) {
	X := mat.NewDense(n, 2, nil)
	y := mat.NewDense(n, 1, nil)
	for i := 0; i < n; i++ {
		x0 := rng.Float64()
		X.Set(i, 0, x0)
		X.Set(i, 1, rng.Float64()) // pure noise feature
		if x0 <= 0.5 {
			y.Set(i, 0, 1.0)
		} else {
			y.Set(i, 0, 5.0)
		}
	}
	return X, y
}

func nonlinearData(n int, noise float64, rng *rand.Rand) (*mat.Dense, *mat.Dense) {
	X := mat.NewDense(n, 3, nil)
	y := mat.NewDense(n, 1, nil)
	for i := 0; i < n; i++ {
		x0 := 4 * rng.Float64()
		x1 := rng.Float64()
		x2 := rng.Float64()
		X.Set(i, 0, x0)
		X.Set(i, 1, x1)
		X.Set(i, 2, x2)
		y.Set(i, 0, x0*x0+2*x1+noise*rng.NormFloat64())
	}
	return X, y
}

func TestRegressionTreeFindsStep(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	X, y := stepData(300, rng)

	tree := NewRegressionTree(TreeParams{MaxDepth: 3, MinLeaf: 5}, nil)
	if err := tree.Fit(X, y); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}

	probe := mat.NewDense(2, 2, []float64{0.2, 0.5, 0.8, 0.5})
	pred, err := tree.Predict(probe)
	if err != nil {
		t.Fatalf("Predict() error = %v", err)
	}
	if math.Abs(pred.At(0, 0)-1.0) > 0.1 {
		t.Errorf("left side prediction = %v, want ~1", pred.At(0, 0))
	}
	if math.Abs(pred.At(1, 0)-5.0) > 0.1 {
		t.Errorf("right side prediction = %v, want ~5", pred.At(1, 0))
	}
}

func TestRegressionTreeDepthLimit(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	X, y := nonlinearData(200, 0.1, rng)

	stump := NewRegressionTree(TreeParams{MaxDepth: 1, MinLeaf: 1}, nil)
	if err := stump.Fit(X, y); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}

	// A depth-1 tree can emit at most two distinct values.
	pred, err := stump.Predict(X)
	if err != nil {
		t.Fatalf("Predict() error = %v", err)
	}
	distinct := map[float64]bool{}
	for i := 0; i < 200; i++ {
		distinct[pred.At(i, 0)] = true
	}
	if len(distinct) > 2 {
		t.Errorf("depth-1 tree produced %d distinct predictions", len(distinct))
	}
}

func TestRegressionTreeValidation(t *testing.T) {
	tree := NewRegressionTree(TreeParams{}, nil)

	if err := tree.Fit(mat.NewDense(3, 2, nil), mat.NewDense(2, 1, nil)); err == nil {
		t.Error("Fit() should reject row count mismatch")
	}
	if _, err := tree.Predict(mat.NewDense(1, 2, nil)); err == nil {
		t.Error("Predict() on unfitted tree should fail")
	}

	X, y := stepData(50, rand.New(rand.NewSource(3)))
	if err := tree.Fit(X, y); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}
	if _, err := tree.Predict(mat.NewDense(1, 5, nil)); err == nil {
		t.Error("Predict() should reject feature count mismatch")
	}
}

func TestRandomForestLearnsNonlinear(t *testing.T) {
	rng := rand.New(rand.NewSource(21))
	X, y := nonlinearData(600, 0.2, rng)
	Xtest, ytest := nonlinearData(200, 0.2, rng)

	rf := NewRandomForest(WithTrees(100), WithMTry(2), WithMinLeaf(3), WithSeed(5))
	if err := rf.Fit(X, y); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}

	pred, err := rf.Predict(Xtest)
	if err != nil {
		t.Fatalf("Predict() error = %v", err)
	}

	var sse, tss, mean float64
	for i := 0; i < 200; i++ {
		mean += ytest.At(i, 0)
	}
	mean /= 200
	for i := 0; i < 200; i++ {
		d := ytest.At(i, 0) - pred.At(i, 0)
		sse += d * d
		m := ytest.At(i, 0) - mean
		tss += m * m
	}
	if r2 := 1 - sse/tss; r2 < 0.85 {
		t.Errorf("forest test R² = %v, want > 0.85", r2)
	}
}

func TestRandomForestOOBError(t *testing.T) {
	rng := rand.New(rand.NewSource(23))
	X, y := nonlinearData(400, 0.2, rng)

	rf := NewRandomForest(WithTrees(80), WithMTry(2), WithSeed(9))
	if err := rf.Fit(X, y); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}

	oob, err := rf.OOBError()
	if err != nil {
		t.Fatalf("OOBError() error = %v", err)
	}
	if oob <= 0 || math.IsNaN(oob) || math.IsInf(oob, 0) {
		t.Errorf("OOBError() = %v, want finite positive", oob)
	}

	unfit := NewRandomForest()
	if _, err := unfit.OOBError(); err == nil {
		t.Error("OOBError() on unfitted forest should fail")
	}
}

func TestRandomForestImportances(t *testing.T) {
	rng := rand.New(rand.NewSource(29))
	X, y := nonlinearData(500, 0.1, rng)

	rf := NewRandomForest(WithTrees(60), WithMTry(2), WithSeed(13))
	if err := rf.Fit(X, y); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}

	imp, err := rf.Importances()
	if err != nil {
		t.Fatalf("Importances() error = %v", err)
	}

	var total float64
	for _, v := range imp {
		if v < 0 {
			t.Errorf("importance %v is negative", v)
		}
		total += v
	}
	if math.Abs(total-1) > 1e-9 {
		t.Errorf("importances sum = %v, want 1", total)
	}

	// x0 drives the response quadratically; x2 is pure noise.
	if imp[0] <= imp[2] {
		t.Errorf("informative feature importance %v should exceed noise %v", imp[0], imp[2])
	}
}

func TestRandomForestReproducible(t *testing.T) {
	rng := rand.New(rand.NewSource(31))
	X, y := nonlinearData(200, 0.2, rng)

	a := NewRandomForest(WithTrees(30), WithMTry(2), WithSeed(42))
	b := NewRandomForest(WithTrees(30), WithMTry(2), WithSeed(42))
	if err := a.Fit(X, y); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}
	if err := b.Fit(X, y); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}

	pa, _ := a.Predict(X)
	pb, _ := b.Predict(X)
	for i := 0; i < 200; i++ {
		if pa.At(i, 0) != pb.At(i, 0) {
			t.Fatalf("same seed gave different predictions at row %d", i)
		}
	}
}

func TestGradientBoostingTrainErrorDecreases(t *testing.T) {
	rng := rand.New(rand.NewSource(37))
	X, y := nonlinearData(400, 0.2, rng)

	gb := NewGradientBoosting(WithIterations(50), WithLearningRate(0.1), WithBoostDepth(3))
	if err := gb.Fit(X, y); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}

	errs, err := gb.TrainErrors()
	if err != nil {
		t.Fatalf("TrainErrors() error = %v", err)
	}
	if len(errs) != 50 {
		t.Fatalf("len(TrainErrors()) = %d, want 50", len(errs))
	}

	for m := 1; m < len(errs); m++ {
		if errs[m] > errs[m-1]+1e-9 {
			t.Errorf("train error increased at stage %d: %v -> %v", m, errs[m-1], errs[m])
		}
	}
	if errs[len(errs)-1] >= errs[0] {
		t.Errorf("train error did not improve: first %v, last %v", errs[0], errs[len(errs)-1])
	}
}

func TestGradientBoostingStagedPredict(t *testing.T) {
	rng := rand.New(rand.NewSource(41))
	X, y := nonlinearData(200, 0.2, rng)

	gb := NewGradientBoosting(WithIterations(20), WithLearningRate(0.2), WithBoostDepth(2))
	if err := gb.Fit(X, y); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}

	// Zero stages is the constant mean model.
	p0, err := gb.StagedPredict(X, 0)
	if err != nil {
		t.Fatalf("StagedPredict(0) error = %v", err)
	}
	for i := 0; i < 200; i++ {
		if p0.At(i, 0) != p0.At(0, 0) {
			t.Fatal("stage-0 prediction should be constant")
		}
	}

	full, _ := gb.Predict(X)
	pAll, _ := gb.StagedPredict(X, 20)
	for i := 0; i < 200; i++ {
		if full.At(i, 0) != pAll.At(i, 0) {
			t.Fatal("StagedPredict(all) should match Predict")
		}
	}

	if _, err := gb.StagedPredict(X, 21); err == nil {
		t.Error("StagedPredict() should reject stage beyond iterations")
	}
}

func TestGradientBoostingStagedTestErrors(t *testing.T) {
	rng := rand.New(rand.NewSource(43))
	X, y := nonlinearData(300, 0.3, rng)
	Xtest, ytest := nonlinearData(150, 0.3, rng)

	gb := NewGradientBoosting(WithIterations(40), WithLearningRate(0.1), WithBoostDepth(3))
	if err := gb.Fit(X, y); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}

	errs, err := gb.StagedTestErrors(Xtest, ytest)
	if err != nil {
		t.Fatalf("StagedTestErrors() error = %v", err)
	}
	if len(errs) != 40 {
		t.Fatalf("len(StagedTestErrors()) = %d, want 40", len(errs))
	}
	if errs[len(errs)-1] >= errs[0] {
		t.Errorf("test error did not improve: first %v, last %v", errs[0], errs[len(errs)-1])
	}
}

func TestGradientBoostingDoesNotReportOOB(t *testing.T) {
	var m interface{} = NewGradientBoosting()
	if _, ok := m.(model.OOBReporter); ok {
		t.Error("GradientBoosting must not present an out-of-bag estimate")
	}
}
