package log

// Run and stage context.
const (
	// RunIDKey identifies one pipeline invocation end to end.
	RunIDKey = "run.id"

	// StageKey names the pipeline stage emitting the record.
	// Values: "load", "filter", "summary", "fit", "bootstrap", "compare".
	StageKey = "pipeline.stage"

	// OperationKey names the specific operation, e.g. "FilterByTaxon",
	// "PerIndividualMax", "ParametricBootstrapCI".
	OperationKey = "pipeline.operation"
)

// Dataset shape.
const (
	// RowsKey is the number of observation rows in play.
	RowsKey = "data.rows"

	// ColumnsKey is the number of table columns.
	ColumnsKey = "data.columns"

	// IndividualsKey is the number of distinct individuals.
	IndividualsKey = "data.individuals"

	// PathKey is the input file path.
	PathKey = "data.path"
)

// Model fitting.
const (
	// ModelKey names the candidate model specification.
	ModelKey = "model.name"

	// TermsKey is the number of fixed-effect design columns.
	TermsKey = "model.terms"

	// GroupingsKey is the number of random-effect grouping factors.
	GroupingsKey = "model.groupings"

	// CriterionKey is the -2 REML log-likelihood at the optimum.
	CriterionKey = "model.criterion"
)

// Bootstrap.
const (
	// SimsKey is the number of bootstrap simulations requested.
	SimsKey = "bootstrap.sims"

	// FailedSimsKey is the number of simulations dropped after refit failure.
	FailedSimsKey = "bootstrap.failed"

	// ConfidenceKey is the nominal confidence level.
	ConfidenceKey = "bootstrap.level"
)

// Timing.
const (
	// DurationMsKey is wall-clock time of an operation in milliseconds.
	DurationMsKey = "perf.duration_ms"
)
