package ensemble

// options collects the tunable knobs of the ensemble trainers. A single
// option type lets forests and boosting share WithSeed; each constructor
// reads only the fields that apply to it.
type options struct {
	trees    int
	mtry     int
	maxDepth int
	minLeaf  int
	seed     int64

	iterations   int
	learningRate float64
	boostDepth   int
}

func defaultOptions() options {
	return options{
		trees:        500,
		mtry:         0, // 0 = all features (bagging)
		maxDepth:     0, // unlimited
		minLeaf:      5,
		seed:         1,
		iterations:   100,
		learningRate: 0.1,
		boostDepth:   4,
	}
}

// Option configures an ensemble trainer.
type Option func(*options)

// WithTrees sets the number of bootstrap trees in a random forest.
func WithTrees(b int) Option {
	return func(o *options) { o.trees = b }
}

// WithMTry sets the number of candidate features considered at each
// split. Setting it equal to the feature count gives bagging.
func WithMTry(m int) Option {
	return func(o *options) { o.mtry = m }
}

// WithMaxDepth limits tree depth. Zero means unlimited.
func WithMaxDepth(d int) Option {
	return func(o *options) { o.maxDepth = d }
}

// WithMinLeaf sets the minimum number of samples per leaf.
func WithMinLeaf(m int) Option {
	return func(o *options) { o.minLeaf = m }
}

// WithSeed fixes the random seed for bootstrap resampling and feature
// subsampling, making training reproducible.
func WithSeed(seed int64) Option {
	return func(o *options) { o.seed = seed }
}

// WithIterations sets the number of boosting stages.
func WithIterations(n int) Option {
	return func(o *options) { o.iterations = n }
}

// WithLearningRate sets the boosting shrinkage parameter.
func WithLearningRate(lr float64) Option {
	return func(o *options) { o.learningRate = lr }
}

// WithBoostDepth limits the depth of each boosting stage tree.
func WithBoostDepth(d int) Option {
	return func(o *options) { o.boostDepth = d }
}
