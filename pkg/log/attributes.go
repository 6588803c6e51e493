// Package log defines standard attribute keys for pipeline operations.
//
// Using these keys keeps records consistent across the extraction, fitting
// and scoring stages so that runs can be filtered and compared. Keys follow a
// hierarchical naming convention ("model.name", "data.samples").
package log

// Model and operation context.
const (
	// ModelNameKey identifies the estimator type.
	// Examples: "LinearRegression", "StandardScaler"
	ModelNameKey = "model.name"

	// OperationKey specifies the operation being performed.
	// Standard values: "fit", "predict", "transform", "score", "query"
	OperationKey = "ml.operation"

	// ComponentKey identifies which package performs the operation.
	// Examples: "dataset", "linear", "distributed", "metrics"
	ComponentKey = "ml.component"
)

// Data shape and extraction context.
const (
	// SamplesKey is the number of rows being processed.
	SamplesKey = "data.samples"

	// FeaturesKey is the number of feature columns.
	FeaturesKey = "data.features"

	// TrainRowsKey and TestRowsKey describe the positional split.
	TrainRowsKey = "data.train_rows"
	TestRowsKey  = "data.test_rows"

	// QueryKey is the SQL statement used for extraction.
	QueryKey = "sql.query"

	// TableKey is the registered table name.
	TableKey = "sql.table"

	// PartitionsKey is the number of partitions in a distributed fit.
	PartitionsKey = "cluster.partitions"

	// WorkersKey is the cluster worker count.
	WorkersKey = "cluster.workers"
)

// Performance and result context.
const (
	// DurationMsKey records the execution time of an operation in milliseconds.
	DurationMsKey = "perf.duration_ms"

	// R2ScoreKey records the coefficient of determination of a run.
	R2ScoreKey = "result.r2"

	// MSEKey records the mean squared error of a run.
	MSEKey = "result.mse"
)
