package ensemble

import (
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/statlearn/core/model"
	"github.com/YuminosukeSato/statlearn/metrics"
	"github.com/YuminosukeSato/statlearn/pkg/errors"
	"github.com/YuminosukeSato/statlearn/pkg/log"
)

// GradientBoosting fits a squared-error boosted ensemble of shallow
// regression trees. The model starts from the target mean and each
// stage fits a depth-limited tree to the current residuals, added with
// shrinkage (the learning rate).
//
// Boosting has no resampling step, so unlike RandomForest it carries no
// internal out-of-bag error estimate.
type GradientBoosting struct {
	model.BaseEstimator

	opts options

	init      float64
	trees     []*RegressionTree
	trainErr  []float64
	nFeatures int
}

// NewGradientBoosting creates a gradient boosting regressor.
func NewGradientBoosting(opts ...Option) *GradientBoosting {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &GradientBoosting{opts: o}
}

// Fit runs the boosting iterations and records the training MSE after
// each stage.
func (g *GradientBoosting) Fit(X, y mat.Matrix) error {
	n, p := X.Dims()
	ry, cy := y.Dims()
	if n == 0 || p == 0 {
		return errors.NewModelError("GradientBoosting.Fit", "empty data", errors.ErrEmptyData)
	}
	if ry != n || cy != 1 {
		return errors.NewDimensionError("GradientBoosting.Fit", n, ry, 0)
	}
	if g.opts.iterations < 1 {
		return errors.NewValidationError("iterations", "must be positive", g.opts.iterations)
	}
	if g.opts.learningRate <= 0 || g.opts.learningRate > 1 {
		return errors.NewValidationError("learningRate", "must be in (0, 1]", g.opts.learningRate)
	}

	rows := make([][]float64, n)
	targets := make([]float64, n)
	for i := 0; i < n; i++ {
		rows[i] = make([]float64, p)
		for j := 0; j < p; j++ {
			rows[i][j] = X.At(i, j)
		}
		targets[i] = y.At(i, 0)
	}
	g.nFeatures = p

	var mean float64
	for _, v := range targets {
		mean += v
	}
	mean /= float64(n)
	g.init = mean

	current := make([]float64, n)
	for i := range current {
		current[i] = mean
	}

	allIdx := make([]int, n)
	for i := range allIdx {
		allIdx[i] = i
	}

	g.trees = make([]*RegressionTree, 0, g.opts.iterations)
	g.trainErr = make([]float64, 0, g.opts.iterations)

	residual := make([]float64, n)
	for m := 0; m < g.opts.iterations; m++ {
		for i := range residual {
			residual[i] = targets[i] - current[i]
		}

		tree := NewRegressionTree(TreeParams{
			MaxDepth: g.opts.boostDepth,
			MinLeaf:  g.opts.minLeaf,
		}, nil)
		if err := tree.fitRows(rows, residual, allIdx); err != nil {
			return errors.Wrapf(err, "GradientBoosting.Fit: stage %d", m)
		}
		g.trees = append(g.trees, tree)

		var sse float64
		for i := range current {
			current[i] += g.opts.learningRate * tree.predictRow(rows[i])
			d := targets[i] - current[i]
			sse += d * d
		}
		g.trainErr = append(g.trainErr, sse/float64(n))
	}

	log.GetLogger().With(
		log.ModelNameKey, "GradientBoosting",
		log.ComponentKey, "ensemble",
	).Debug("boosting finished",
		log.OperationKey, "fit",
		log.SamplesKey, n,
		log.FeaturesKey, p,
		log.IterationsKey, g.opts.iterations,
		log.MSEKey, g.trainErr[len(g.trainErr)-1],
	)

	g.SetFitted()
	return nil
}

// Predict sums the initial mean and the shrunken contributions of all
// stages.
func (g *GradientBoosting) Predict(X mat.Matrix) (mat.Matrix, error) {
	return g.StagedPredict(X, len(g.trees))
}

// StagedPredict predicts using only the first `stages` boosting stages.
// It allows tracing how test error evolves over the iterations.
func (g *GradientBoosting) StagedPredict(X mat.Matrix, stages int) (mat.Matrix, error) {
	if !g.IsFitted() {
		return nil, errors.NewNotFittedError("GradientBoosting", "StagedPredict")
	}
	if stages < 0 || stages > len(g.trees) {
		return nil, errors.NewValidationError("stages", "must be in [0, iterations]", stages)
	}

	n, p := X.Dims()
	if p != g.nFeatures {
		return nil, errors.NewDimensionError("GradientBoosting.StagedPredict", g.nFeatures, p, 1)
	}

	out := mat.NewDense(n, 1, nil)
	row := make([]float64, p)
	for i := 0; i < n; i++ {
		for j := 0; j < p; j++ {
			row[j] = X.At(i, j)
		}
		v := g.init
		for _, tree := range g.trees[:stages] {
			v += g.opts.learningRate * tree.predictRow(row)
		}
		out.Set(i, 0, v)
	}
	return out, nil
}

// TrainErrors returns the training MSE recorded after each stage.
func (g *GradientBoosting) TrainErrors() ([]float64, error) {
	if !g.IsFitted() {
		return nil, errors.NewNotFittedError("GradientBoosting", "TrainErrors")
	}
	out := make([]float64, len(g.trainErr))
	copy(out, g.trainErr)
	return out, nil
}

// StagedTestErrors evaluates the test MSE after each boosting stage.
// Predictions are accumulated incrementally so the cost is one pass
// over the trees per row.
func (g *GradientBoosting) StagedTestErrors(X, y mat.Matrix) ([]float64, error) {
	if !g.IsFitted() {
		return nil, errors.NewNotFittedError("GradientBoosting", "StagedTestErrors")
	}

	n, p := X.Dims()
	ry, cy := y.Dims()
	if p != g.nFeatures {
		return nil, errors.NewDimensionError("GradientBoosting.StagedTestErrors", g.nFeatures, p, 1)
	}
	if ry != n || cy != 1 {
		return nil, errors.NewDimensionError("GradientBoosting.StagedTestErrors", n, ry, 0)
	}

	current := make([]float64, n)
	row := make([]float64, p)
	rows := make([][]float64, n)
	for i := 0; i < n; i++ {
		for j := 0; j < p; j++ {
			row[j] = X.At(i, j)
		}
		rows[i] = append([]float64{}, row...)
		current[i] = g.init
	}

	errs := make([]float64, len(g.trees))
	for m, tree := range g.trees {
		var sse float64
		for i := 0; i < n; i++ {
			current[i] += g.opts.learningRate * tree.predictRow(rows[i])
			d := y.At(i, 0) - current[i]
			sse += d * d
		}
		errs[m] = sse / float64(n)
	}
	return errs, nil
}

// Importances returns split-gain totals per feature aggregated over all
// boosting stages, normalized to sum to one.
func (g *GradientBoosting) Importances() ([]float64, error) {
	if !g.IsFitted() {
		return nil, errors.NewNotFittedError("GradientBoosting", "Importances")
	}

	imp := make([]float64, g.nFeatures)
	for _, tree := range g.trees {
		for j, v := range tree.gains {
			imp[j] += v
		}
	}
	normalizeGains(imp)
	return imp, nil
}

// Score returns R² on the given data, for parity with the linear models.
func (g *GradientBoosting) Score(X, y mat.Matrix) (float64, error) {
	pred, err := g.Predict(X)
	if err != nil {
		return 0, err
	}
	n, _ := y.Dims()
	yv := mat.NewVecDense(n, nil)
	pv := mat.NewVecDense(n, nil)
	for i := 0; i < n; i++ {
		yv.SetVec(i, y.At(i, 0))
		pv.SetVec(i, pred.At(i, 0))
	}
	return metrics.R2Score(yv, pv)
}
