// Package sweep はハイパーパラメータ1軸の掃引評価を提供します。
// 固定した訓練/テスト分割を使い回し、候補ごとにモデルを学習して
// 内部誤差（out-of-bag等）とテスト誤差を記録します。
package sweep

import (
	"math"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/statlearn/core/model"
	"github.com/YuminosukeSato/statlearn/dataset"
	"github.com/YuminosukeSato/statlearn/metrics"
	"github.com/YuminosukeSato/statlearn/pkg/errors"
	"github.com/YuminosukeSato/statlearn/pkg/log"
)

// Evaluator は固定分割でハイパーパラメータ候補を評価する。
// 分割は構築時に一度だけ決まり、全候補で同じ分割を使う。
// 候補ごとに分割し直すと候補間の比較に分割のばらつきが混ざるため。
type Evaluator struct {
	trainX, testX *mat.Dense
	trainY, testY *mat.Dense
}

// Result は掃引の結果。スライスはすべて同じ長さで、
// Internal[i] は内部誤差を持たないモデルでは NaN になる。
type Result struct {
	Candidates []int
	Internal   []float64 // out-of-bag等の内部誤差（なければNaN）
	Test       []float64 // 保留テストデータのMSE
}

// NewEvaluator は指定の行インデックスで分割したEvaluatorを作成する
func NewEvaluator(X, y mat.Matrix, trainIdx, testIdx []int) (*Evaluator, error) {
	n, _ := X.Dims()
	ry, cy := y.Dims()
	if ry != n || cy != 1 {
		return nil, errors.NewDimensionError("sweep.NewEvaluator", n, ry, 0)
	}
	if len(trainIdx) == 0 || len(testIdx) == 0 {
		return nil, errors.NewValueError("sweep.NewEvaluator", "train and test splits must be non-empty")
	}
	for _, i := range append(append([]int{}, trainIdx...), testIdx...) {
		if i < 0 || i >= n {
			return nil, errors.NewValidationError("index", "row index out of range", i)
		}
	}

	return &Evaluator{
		trainX: dataset.Take(X, trainIdx),
		trainY: dataset.Take(y, trainIdx),
		testX:  dataset.Take(X, testIdx),
		testY:  dataset.Take(y, testIdx),
	}, nil
}

// Run は各候補kについてbuild(k)で新しいモデルを作り、訓練行のみで学習して
// テスト誤差を記録する。モデルがmodel.OOBReporterを実装していれば内部誤差も
// 記録し、そうでなければNaNを入れる（値を捏造しない）。
// 学習・予測の失敗はその候補を付与したエラーとして返し、掃引を中断する。
func (e *Evaluator) Run(candidates []int, build func(k int) model.FitPredictor) (*Result, error) {
	if len(candidates) == 0 {
		return nil, errors.NewValueError("sweep.Run", "no candidates")
	}

	logger := log.GetLogger().With(
		log.ComponentKey, "sweep",
		log.OperationKey, "sweep",
	)

	res := &Result{
		Candidates: append([]int{}, candidates...),
		Internal:   make([]float64, len(candidates)),
		Test:       make([]float64, len(candidates)),
	}

	for i, k := range candidates {
		start := time.Now()

		m := build(k)
		if err := m.Fit(e.trainX, e.trainY); err != nil {
			return nil, errors.Wrapf(err, "sweep: candidate %d", k)
		}

		internal := math.NaN()
		if reporter, ok := m.(model.OOBReporter); ok {
			v, err := reporter.OOBError()
			if err != nil {
				return nil, errors.Wrapf(err, "sweep: candidate %d", k)
			}
			internal = v
		}
		res.Internal[i] = internal

		pred, err := m.Predict(e.testX)
		if err != nil {
			return nil, errors.Wrapf(err, "sweep: candidate %d", k)
		}
		mse, err := metrics.MSEMatrix(e.testY, pred)
		if err != nil {
			return nil, errors.Wrapf(err, "sweep: candidate %d", k)
		}
		res.Test[i] = mse

		logger.Debug("sweep point evaluated",
			log.CandidateKey, k,
			log.OOBErrorKey, internal,
			log.MSEKey, mse,
			log.DurationMsKey, time.Since(start).Milliseconds(),
		)
	}

	return res, nil
}

// TrainData は掃引と同じ訓練分割を返す（最終モデルの学習用）
func (e *Evaluator) TrainData() (X, y *mat.Dense) { return e.trainX, e.trainY }

// TestData は掃引と同じテスト分割を返す
func (e *Evaluator) TestData() (X, y *mat.Dense) { return e.testX, e.testY }
