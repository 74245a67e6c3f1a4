// Package ensemble implements tree-based ensemble regressors: CART
// regression trees, bootstrap-aggregated random forests with out-of-bag
// error estimation, and squared-error gradient boosting.
package ensemble

import (
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/statlearn/core/model"
	"github.com/YuminosukeSato/statlearn/pkg/errors"
)

// TreeParams contains the growth hyperparameters of a regression tree.
type TreeParams struct {
	MaxDepth int // 0 means unlimited
	MinLeaf  int // minimum samples per leaf
	MTry     int // candidate features per split; 0 means all features
}

// RegressionTree is a CART regression tree using the variance-reduction
// split criterion.
type RegressionTree struct {
	model.BaseEstimator

	Params TreeParams

	root      *treeNode
	nFeatures int
	gains     []float64 // split-gain totals per feature
	rng       *rand.Rand
}

type treeNode struct {
	feature   int
	threshold float64
	left      *treeNode
	right     *treeNode
	value     float64
	leaf      bool
}

// NewRegressionTree creates a regression tree with the given parameters.
// A nil rng disables feature subsampling randomness (deterministic order).
func NewRegressionTree(params TreeParams, rng *rand.Rand) *RegressionTree {
	if params.MinLeaf < 1 {
		params.MinLeaf = 1
	}
	return &RegressionTree{Params: params, rng: rng}
}

// Fit grows the tree on X and y.
func (t *RegressionTree) Fit(X, y mat.Matrix) error {
	n, p := X.Dims()
	ry, cy := y.Dims()
	if n == 0 || p == 0 {
		return errors.NewModelError("RegressionTree.Fit", "empty data", errors.ErrEmptyData)
	}
	if ry != n || cy != 1 {
		return errors.NewDimensionError("RegressionTree.Fit", n, ry, 0)
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

	t.nFeatures = p
	t.gains = make([]float64, p)

	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	t.root = t.grow(rows, targets, idx, 0)

	t.SetFitted()
	return nil
}

// fitRows grows the tree directly on row-major data, avoiding the
// matrix copy. Used internally by the forest and boosting trainers.
func (t *RegressionTree) fitRows(rows [][]float64, targets []float64, idx []int) error {
	if len(rows) == 0 || len(idx) == 0 {
		return errors.NewModelError("RegressionTree.fitRows", "empty data", errors.ErrEmptyData)
	}
	t.nFeatures = len(rows[0])
	t.gains = make([]float64, t.nFeatures)
	t.root = t.grow(rows, targets, idx, 0)
	t.SetFitted()
	return nil
}

func (t *RegressionTree) grow(rows [][]float64, targets []float64, idx []int, depth int) *treeNode {
	sum, sumsq := 0.0, 0.0
	for _, i := range idx {
		sum += targets[i]
		sumsq += targets[i] * targets[i]
	}
	n := float64(len(idx))
	mean := sum / n
	sse := sumsq - sum*sum/n

	leaf := &treeNode{value: mean, leaf: true}
	if sse <= 1e-12 || len(idx) < 2*t.Params.MinLeaf {
		return leaf
	}
	if t.Params.MaxDepth > 0 && depth >= t.Params.MaxDepth {
		return leaf
	}

	feature, threshold, gain := t.bestSplit(rows, targets, idx, sse)
	if gain <= 0 {
		return leaf
	}
	t.gains[feature] += gain

	var leftIdx, rightIdx []int
	for _, i := range idx {
		if rows[i][feature] <= threshold {
			leftIdx = append(leftIdx, i)
		} else {
			rightIdx = append(rightIdx, i)
		}
	}

	return &treeNode{
		feature:   feature,
		threshold: threshold,
		left:      t.grow(rows, targets, leftIdx, depth+1),
		right:     t.grow(rows, targets, rightIdx, depth+1),
	}
}

// bestSplit scans candidate features for the split maximizing the SSE
// reduction. With MTry > 0 a random feature subset is considered.
func (t *RegressionTree) bestSplit(rows [][]float64, targets []float64, idx []int, parentSSE float64) (feature int, threshold, gain float64) {
	features := t.candidateFeatures()

	bestGain := 0.0
	bestFeature := -1
	bestThreshold := 0.0

	sorted := make([]int, len(idx))
	for _, f := range features {
		copy(sorted, idx)
		sort.Slice(sorted, func(a, b int) bool {
			return rows[sorted[a]][f] < rows[sorted[b]][f]
		})

		// Incremental scan over split positions.
		var leftSum, leftSumsq float64
		var totalSum, totalSumsq float64
		for _, i := range sorted {
			totalSum += targets[i]
			totalSumsq += targets[i] * targets[i]
		}

		n := len(sorted)
		for k := 0; k < n-1; k++ {
			v := targets[sorted[k]]
			leftSum += v
			leftSumsq += v * v

			// Splits are only valid between distinct feature values.
			if rows[sorted[k]][f] == rows[sorted[k+1]][f] {
				continue
			}

			nl := float64(k + 1)
			nr := float64(n - k - 1)
			if int(nl) < t.Params.MinLeaf || int(nr) < t.Params.MinLeaf {
				continue
			}

			rightSum := totalSum - leftSum
			rightSumsq := totalSumsq - leftSumsq

			leftSSE := leftSumsq - leftSum*leftSum/nl
			rightSSE := rightSumsq - rightSum*rightSum/nr

			if g := parentSSE - leftSSE - rightSSE; g > bestGain {
				bestGain = g
				bestFeature = f
				bestThreshold = (rows[sorted[k]][f] + rows[sorted[k+1]][f]) / 2
			}
		}
	}

	if bestFeature < 0 {
		return 0, 0, 0
	}
	return bestFeature, bestThreshold, bestGain
}

func (t *RegressionTree) candidateFeatures() []int {
	mtry := t.Params.MTry
	if mtry <= 0 || mtry >= t.nFeatures || t.rng == nil {
		all := make([]int, t.nFeatures)
		for i := range all {
			all[i] = i
		}
		return all
	}
	return t.rng.Perm(t.nFeatures)[:mtry]
}

// Predict returns the leaf means for each row of X.
func (t *RegressionTree) Predict(X mat.Matrix) (mat.Matrix, error) {
	if !t.IsFitted() {
		return nil, errors.NewNotFittedError("RegressionTree", "Predict")
	}

	n, p := X.Dims()
	if p != t.nFeatures {
		return nil, errors.NewDimensionError("RegressionTree.Predict", t.nFeatures, p, 1)
	}

	out := mat.NewDense(n, 1, nil)
	row := make([]float64, p)
	for i := 0; i < n; i++ {
		for j := 0; j < p; j++ {
			row[j] = X.At(i, j)
		}
		out.Set(i, 0, t.predictRow(row))
	}
	return out, nil
}

func (t *RegressionTree) predictRow(row []float64) float64 {
	node := t.root
	for !node.leaf {
		if row[node.feature] <= node.threshold {
			node = node.left
		} else {
			node = node.right
		}
	}
	return node.value
}
