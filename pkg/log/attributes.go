// Standard attribute keys for statistical modeling operations.
//
// Using these keys keeps log output consistent across packages and
// makes experiment logs easy to filter. Keys follow a hierarchical
// naming convention ("model.name", "data.samples").

package log

// Model and operation context.
const (
	// ModelNameKey identifies the type of model.
	// Examples: "Regression", "RandomForest", "GAM"
	ModelNameKey = "model.name"

	// OperationKey specifies the operation being performed.
	// Standard values: "fit", "predict", "sweep", "plot"
	OperationKey = "ml.operation"

	// ComponentKey identifies which package is performing the operation.
	// Examples: "linear", "ensemble", "sweep"
	ComponentKey = "ml.component"
)

// Data shape.
const (
	// SamplesKey indicates the number of samples (rows) involved.
	SamplesKey = "data.samples"

	// FeaturesKey indicates the number of features (columns) involved.
	FeaturesKey = "data.features"
)

// Fitting and evaluation metrics.
const (
	// IterationsKey records how many iterations a fitting loop ran.
	IterationsKey = "fit.iterations"

	// TreesKey records the number of trees in an ensemble.
	TreesKey = "ensemble.trees"

	// MTryKey records the number of candidate split variables.
	MTryKey = "ensemble.mtry"

	// MSEKey records a mean squared error value.
	MSEKey = "metrics.mse"

	// OOBErrorKey records an out-of-bag error estimate.
	OOBErrorKey = "metrics.oob_error"

	// CandidateKey records the hyperparameter value of a sweep point.
	CandidateKey = "sweep.candidate"

	// DurationMsKey records the execution time of an operation in milliseconds.
	DurationMsKey = "perf.duration_ms"
)
