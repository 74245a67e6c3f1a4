package sweep

import (
	"math"
	"math/rand"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/statlearn/core/model"
	"github.com/YuminosukeSato/statlearn/dataset"
	"github.com/YuminosukeSato/statlearn/ensemble"
)

func makeData(n int) (*mat.Dense, *mat.Dense) {
	rng := rand.New(rand.NewSource(51))
	X := mat.NewDense(n, 3, nil)
	y := mat.NewDense(n, 1, nil)
	for i := 0; i < n; i++ {
		x0 := 3 * rng.Float64()
		x1 := rng.Float64()
		X.Set(i, 0, x0)
		X.Set(i, 1, x1)
		X.Set(i, 2, rng.Float64())
		y.Set(i, 0, x0*x0+x1+0.2*rng.NormFloat64())
	}
	return X, y
}

func TestEvaluatorRunForest(t *testing.T) {
	X, y := makeData(300)
	trainIdx, testIdx, err := dataset.TrainTestSplit(300, 150, 7)
	if err != nil {
		t.Fatalf("TrainTestSplit() error = %v", err)
	}

	ev, err := NewEvaluator(X, y, trainIdx, testIdx)
	if err != nil {
		t.Fatalf("NewEvaluator() error = %v", err)
	}

	candidates := []int{1, 2, 3}
	res, err := ev.Run(candidates, func(k int) model.FitPredictor {
		return ensemble.NewRandomForest(
			ensemble.WithTrees(40),
			ensemble.WithMTry(k),
			ensemble.WithSeed(int64(k)),
		)
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if len(res.Internal) != len(candidates) || len(res.Test) != len(candidates) {
		t.Fatalf("result lengths %d/%d, want %d", len(res.Internal), len(res.Test), len(candidates))
	}
	for i := range candidates {
		// 森は内部誤差（OOB）を持つ
		if math.IsNaN(res.Internal[i]) || res.Internal[i] < 0 {
			t.Errorf("Internal[%d] = %v, want non-negative", i, res.Internal[i])
		}
		if math.IsNaN(res.Test[i]) || res.Test[i] < 0 {
			t.Errorf("Test[%d] = %v, want non-negative", i, res.Test[i])
		}
	}
}

func TestEvaluatorRunBoostingHasNoInternal(t *testing.T) {
	X, y := makeData(200)
	trainIdx, testIdx, err := dataset.TrainTestSplit(200, 100, 7)
	if err != nil {
		t.Fatalf("TrainTestSplit() error = %v", err)
	}

	ev, err := NewEvaluator(X, y, trainIdx, testIdx)
	if err != nil {
		t.Fatalf("NewEvaluator() error = %v", err)
	}

	res, err := ev.Run([]int{10, 20}, func(k int) model.FitPredictor {
		return ensemble.NewGradientBoosting(
			ensemble.WithIterations(k),
			ensemble.WithLearningRate(0.1),
			ensemble.WithBoostDepth(2),
		)
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	// ブースティングは内部誤差を持たないのでNaN
	for i, v := range res.Internal {
		if !math.IsNaN(v) {
			t.Errorf("Internal[%d] = %v, want NaN", i, v)
		}
	}
	for i, v := range res.Test {
		if v < 0 {
			t.Errorf("Test[%d] = %v, want non-negative", i, v)
		}
	}
}

func TestEvaluatorValidation(t *testing.T) {
	X, y := makeData(50)

	if _, err := NewEvaluator(X, y, nil, []int{0}); err == nil {
		t.Error("NewEvaluator() should reject empty train split")
	}
	if _, err := NewEvaluator(X, y, []int{0}, []int{99}); err == nil {
		t.Error("NewEvaluator() should reject out-of-range index")
	}

	ev, err := NewEvaluator(X, y, []int{0, 1, 2, 3, 4}, []int{5, 6, 7})
	if err != nil {
		t.Fatalf("NewEvaluator() error = %v", err)
	}
	if _, err := ev.Run(nil, nil); err == nil {
		t.Error("Run() should reject empty candidate list")
	}
}
