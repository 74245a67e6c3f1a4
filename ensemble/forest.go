package ensemble

import (
	"math"
	"math/rand"
	"sync"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/statlearn/core/model"
	"github.com/YuminosukeSato/statlearn/core/parallel"
	"github.com/YuminosukeSato/statlearn/pkg/errors"
	"github.com/YuminosukeSato/statlearn/pkg/log"
)

// RandomForest is a bootstrap aggregation of regression trees. With
// MTry equal to the feature count it degenerates to plain bagging;
// smaller MTry decorrelates the trees.
type RandomForest struct {
	model.BaseEstimator

	opts options

	trees     []*RegressionTree
	inBag     [][]bool
	nFeatures int
	oobError  float64
	oobRows   int
}

// NewRandomForest creates a random forest regressor.
func NewRandomForest(opts ...Option) *RandomForest {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &RandomForest{opts: o}
}

// Fit trains the forest. Trees are grown concurrently, each on its own
// bootstrap sample with its own deterministic RNG derived from the seed.
func (f *RandomForest) Fit(X, y mat.Matrix) error {
	n, p := X.Dims()
	ry, cy := y.Dims()
	if n == 0 || p == 0 {
		return errors.NewModelError("RandomForest.Fit", "empty data", errors.ErrEmptyData)
	}
	if ry != n || cy != 1 {
		return errors.NewDimensionError("RandomForest.Fit", n, ry, 0)
	}
	if f.opts.trees < 1 {
		return errors.NewValidationError("trees", "must be positive", f.opts.trees)
	}
	if f.opts.mtry < 0 || f.opts.mtry > p {
		return errors.NewValidationError("mtry", "must be in [0, features]", f.opts.mtry)
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
	f.nFeatures = p

	// Per-tree seeds are drawn up front so the forest is reproducible
	// regardless of goroutine scheduling.
	base := rand.New(rand.NewSource(f.opts.seed))
	seeds := make([]int64, f.opts.trees)
	for b := range seeds {
		seeds[b] = base.Int63()
	}

	f.trees = make([]*RegressionTree, f.opts.trees)
	f.inBag = make([][]bool, f.opts.trees)

	var mu sync.Mutex
	var firstErr error

	// A handful of trees is not worth the goroutine fan-out.
	parallel.ParallelizeWithThreshold(f.opts.trees, 4, func(start, end int) {
		for b := start; b < end; b++ {
			rng := rand.New(rand.NewSource(seeds[b]))

			idx := make([]int, n)
			bag := make([]bool, n)
			for i := range idx {
				r := rng.Intn(n)
				idx[i] = r
				bag[r] = true
			}

			tree := NewRegressionTree(TreeParams{
				MaxDepth: f.opts.maxDepth,
				MinLeaf:  f.opts.minLeaf,
				MTry:     f.opts.mtry,
			}, rng)
			if err := tree.fitRows(rows, targets, idx); err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = errors.Wrapf(err, "RandomForest.Fit: tree %d", b)
				}
				mu.Unlock()
				return
			}

			f.trees[b] = tree
			f.inBag[b] = bag
		}
	})
	if firstErr != nil {
		return firstErr
	}

	f.computeOOB(rows, targets)

	log.GetLogger().With(
		log.ModelNameKey, "RandomForest",
		log.ComponentKey, "ensemble",
	).Debug("forest trained",
		log.OperationKey, "fit",
		log.SamplesKey, n,
		log.FeaturesKey, p,
		log.TreesKey, f.opts.trees,
		log.MTryKey, f.opts.mtry,
		log.OOBErrorKey, f.oobError,
	)

	f.SetFitted()
	return nil
}

// computeOOB averages, for each training row, the predictions of the
// trees whose bootstrap sample excluded it. Rows that every tree
// happened to include are skipped rather than filled in.
func (f *RandomForest) computeOOB(rows [][]float64, targets []float64) {
	var sse float64
	counted := 0
	for i := range rows {
		var sum float64
		used := 0
		for b, tree := range f.trees {
			if f.inBag[b][i] {
				continue
			}
			sum += tree.predictRow(rows[i])
			used++
		}
		if used == 0 {
			continue
		}
		d := targets[i] - sum/float64(used)
		sse += d * d
		counted++
	}
	f.oobRows = counted
	if counted > 0 {
		f.oobError = sse / float64(counted)
	} else {
		f.oobError = math.NaN()
	}
}

// Predict averages the predictions of all trees.
func (f *RandomForest) Predict(X mat.Matrix) (mat.Matrix, error) {
	if !f.IsFitted() {
		return nil, errors.NewNotFittedError("RandomForest", "Predict")
	}

	n, p := X.Dims()
	if p != f.nFeatures {
		return nil, errors.NewDimensionError("RandomForest.Predict", f.nFeatures, p, 1)
	}

	out := mat.NewDense(n, 1, nil)
	row := make([]float64, p)
	for i := 0; i < n; i++ {
		for j := 0; j < p; j++ {
			row[j] = X.At(i, j)
		}
		var sum float64
		for _, tree := range f.trees {
			sum += tree.predictRow(row)
		}
		out.Set(i, 0, sum/float64(len(f.trees)))
	}
	return out, nil
}

// OOBError returns the out-of-bag MSE estimated during Fit.
func (f *RandomForest) OOBError() (float64, error) {
	if !f.IsFitted() {
		return 0, errors.NewNotFittedError("RandomForest", "OOBError")
	}
	if f.oobRows == 0 {
		return 0, errors.NewModelError("RandomForest.OOBError", "no out-of-bag rows (too few trees)", nil)
	}
	return f.oobError, nil
}

// Importances returns per-feature split-gain totals aggregated over all
// trees, normalized to sum to one.
func (f *RandomForest) Importances() ([]float64, error) {
	if !f.IsFitted() {
		return nil, errors.NewNotFittedError("RandomForest", "Importances")
	}

	imp := make([]float64, f.nFeatures)
	for _, tree := range f.trees {
		for j, g := range tree.gains {
			imp[j] += g
		}
	}
	normalizeGains(imp)
	return imp, nil
}

func normalizeGains(imp []float64) {
	var total float64
	for _, v := range imp {
		total += v
	}
	if total <= 0 {
		return
	}
	for j := range imp {
		imp[j] /= total
	}
}

var _ model.OOBReporter = (*RandomForest)(nil)
