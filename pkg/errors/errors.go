// Package errors defines the structured error and warning taxonomy for the
// weight-analysis pipeline. Errors are created through constructors that
// attach stack traces via cockroachdb/errors, and every structured type can
// marshal itself into a zerolog event for structured logging.
package errors

import (
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
)

// ===========================================================================
//
//	Global warning handling
//
// ===========================================================================

var (
	warningMutex   sync.Mutex
	warningHandler = func(w error) {
		log.Printf("lemurs-warning: %v\n", w)
	}
	// zerolog warn func, lazily injected to avoid an import cycle with pkg/log.
	zerologWarnFunc func(warning error)
)

// SetWarningHandler replaces the process-wide warning handler. Analyses that
// want to collect warnings instead of logging them can install their own.
func SetWarningHandler(handler func(w error)) {
	warningMutex.Lock()
	defer warningMutex.Unlock()
	warningHandler = handler
}

// SetZerologWarnFunc installs a zerolog-backed warning sink. When set it takes
// priority over the plain handler.
func SetZerologWarnFunc(warnFunc func(warning error)) {
	warningMutex.Lock()
	defer warningMutex.Unlock()
	zerologWarnFunc = warnFunc
}

// Warn emits a non-fatal warning through the configured handler.
func Warn(w error) {
	warningMutex.Lock()
	defer warningMutex.Unlock()

	if zerologWarnFunc != nil {
		zerologWarnFunc(w)
		return
	}
	if warningHandler != nil {
		warningHandler(w)
	}
}

// ===========================================================================
//
//	Pipeline error types
//
// ===========================================================================

// DataUnavailableError indicates the input table could not be read at all:
// missing file, unreadable file, or an empty source. Fatal for the pipeline.
type DataUnavailableError struct {
	Path   string
	Reason string
	Err    error
}

func (e *DataUnavailableError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("lemurs: data unavailable at %q: %s: %v", e.Path, e.Reason, e.Err)
	}
	return fmt.Sprintf("lemurs: data unavailable at %q: %s", e.Path, e.Reason)
}

func (e *DataUnavailableError) Unwrap() error { return e.Err }

// MarshalZerologObject adds structured fields to a zerolog event.
func (e *DataUnavailableError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("path", e.Path).
		Str("reason", e.Reason).
		Str("type", "DataUnavailableError")
}

// NewDataUnavailableError creates a DataUnavailableError with a stack trace.
func NewDataUnavailableError(path, reason string, err error) error {
	return errors.WithStack(&DataUnavailableError{Path: path, Reason: reason, Err: err})
}

// SchemaMismatchError indicates the input table does not match the expected
// column contract: a required column is absent or a cell cannot be parsed as
// the declared type. Fatal for the pipeline.
type SchemaMismatchError struct {
	Column string
	Row    int // 1-based data row, 0 when the problem is the header
	Reason string
}

func (e *SchemaMismatchError) Error() string {
	if e.Row > 0 {
		return fmt.Sprintf("lemurs: schema mismatch in column %q, row %d: %s", e.Column, e.Row, e.Reason)
	}
	return fmt.Sprintf("lemurs: schema mismatch in column %q: %s", e.Column, e.Reason)
}

// MarshalZerologObject adds structured fields to a zerolog event.
func (e *SchemaMismatchError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("column", e.Column).
		Int("row", e.Row).
		Str("reason", e.Reason).
		Str("type", "SchemaMismatchError")
}

// NewSchemaMismatchError creates a SchemaMismatchError with a stack trace.
func NewSchemaMismatchError(column string, row int, reason string) error {
	return errors.WithStack(&SchemaMismatchError{Column: column, Row: row, Reason: reason})
}

// NoDataError indicates an aggregation or filter produced an empty result
// where a value is required. It is surfaced explicitly rather than coerced
// to zero.
type NoDataError struct {
	Op    string
	Group string // offending group key, empty when the whole input is empty
}

func (e *NoDataError) Error() string {
	if e.Group != "" {
		return fmt.Sprintf("lemurs: %s: no data for group %q", e.Op, e.Group)
	}
	return fmt.Sprintf("lemurs: %s: no data", e.Op)
}

// MarshalZerologObject adds structured fields to a zerolog event.
func (e *NoDataError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("operation", e.Op).
		Str("group", e.Group).
		Str("type", "NoDataError")
}

// NewNoDataError creates a NoDataError with a stack trace.
func NewNoDataError(op, group string) error {
	return errors.WithStack(&NoDataError{Op: op, Group: group})
}

// SingularFitError indicates the requested random-effect structure cannot be
// identified from the data, typically a grouping factor with fewer than two
// levels. Fatal for that model specification only.
type SingularFitError struct {
	Grouping string
	Levels   int
	Reason   string
}

func (e *SingularFitError) Error() string {
	return fmt.Sprintf("lemurs: singular fit: grouping factor %q has %d level(s): %s", e.Grouping, e.Levels, e.Reason)
}

// MarshalZerologObject adds structured fields to a zerolog event.
func (e *SingularFitError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("grouping", e.Grouping).
		Int("levels", e.Levels).
		Str("reason", e.Reason).
		Str("type", "SingularFitError")
}

// NewSingularFitError creates a SingularFitError with a stack trace.
func NewSingularFitError(grouping string, levels int, reason string) error {
	return errors.WithStack(&SingularFitError{Grouping: grouping, Levels: levels, Reason: reason})
}

// RankDeficientError indicates the fixed-effect design matrix is collinear:
// its column rank is below the number of requested terms. The design builder
// omits unsupported interaction cells explicitly, so reaching this error
// means the specification itself is degenerate.
type RankDeficientError struct {
	Op    string
	Terms int
	Rank  int
}

func (e *RankDeficientError) Error() string {
	return fmt.Sprintf("lemurs: %s: design matrix is rank deficient (%d terms, rank %d)", e.Op, e.Terms, e.Rank)
}

// MarshalZerologObject adds structured fields to a zerolog event.
func (e *RankDeficientError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("operation", e.Op).
		Int("terms", e.Terms).
		Int("rank", e.Rank).
		Str("type", "RankDeficientError")
}

// NewRankDeficientError creates a RankDeficientError with a stack trace.
func NewRankDeficientError(op string, terms, rank int) error {
	return errors.WithStack(&RankDeficientError{Op: op, Terms: terms, Rank: rank})
}

// NotFittedError indicates a model artifact was queried before Fit succeeded.
type NotFittedError struct {
	ModelName string
	Method    string
}

func (e *NotFittedError) Error() string {
	return fmt.Sprintf("lemurs: %s: model is not fitted yet. Call Fit() before using %s()", e.ModelName, e.Method)
}

// MarshalZerologObject adds structured fields to a zerolog event.
func (e *NotFittedError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("model_name", e.ModelName).
		Str("method", e.Method).
		Str("type", "NotFittedError")
}

// NewNotFittedError creates a NotFittedError with a stack trace.
func NewNotFittedError(modelName, method string) error {
	return errors.WithStack(&NotFittedError{ModelName: modelName, Method: method})
}

// ValidationError indicates an input parameter or data-quality precondition
// failed before any computation ran.
type ValidationError struct {
	ParamName string
	Reason    string
	Value     interface{}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("lemurs: validation failed for %q: %s (got: %v)", e.ParamName, e.Reason, e.Value)
}

// MarshalZerologObject adds structured fields to a zerolog event.
func (e *ValidationError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("param_name", e.ParamName).
		Str("reason", e.Reason).
		Interface("value", e.Value).
		Str("type", "ValidationError")
}

// NewValidationError creates a ValidationError with a stack trace.
func NewValidationError(param, reason string, value interface{}) error {
	return errors.WithStack(&ValidationError{ParamName: param, Reason: reason, Value: value})
}

// ===========================================================================
//
//	Warnings
//
// ===========================================================================

// ConvergenceWarning is raised when the REML optimizer stops without meeting
// its convergence criterion. The fit is still returned; variance-component
// estimates on the boundary of the parameter space commonly trigger this.
type ConvergenceWarning struct {
	Algorithm  string
	Iterations int
	Message    string
}

func (w *ConvergenceWarning) Error() string {
	if w.Message != "" {
		return fmt.Sprintf("%s did not converge after %d iterations: %s", w.Algorithm, w.Iterations, w.Message)
	}
	return fmt.Sprintf("%s did not converge after %d iterations", w.Algorithm, w.Iterations)
}

// MarshalZerologObject adds structured fields to a zerolog event.
func (w *ConvergenceWarning) MarshalZerologObject(e *zerolog.Event) {
	e.Str("algorithm", w.Algorithm).
		Int("iterations", w.Iterations).
		Str("message", w.Message).
		Str("type", "ConvergenceWarning")
}

// NewConvergenceWarning creates a new ConvergenceWarning.
func NewConvergenceWarning(algorithm string, iterations int, message string) *ConvergenceWarning {
	return &ConvergenceWarning{Algorithm: algorithm, Iterations: iterations, Message: message}
}

// BootstrapWarning is raised when some parametric-bootstrap refits failed and
// were dropped from the empirical distribution.
type BootstrapWarning struct {
	Requested int
	Failed    int
}

func (w *BootstrapWarning) Error() string {
	return fmt.Sprintf("parametric bootstrap dropped %d of %d simulations after refit failures", w.Failed, w.Requested)
}

// MarshalZerologObject adds structured fields to a zerolog event.
func (w *BootstrapWarning) MarshalZerologObject(e *zerolog.Event) {
	e.Int("requested", w.Requested).
		Int("failed", w.Failed).
		Str("type", "BootstrapWarning")
}

// NewBootstrapWarning creates a new BootstrapWarning.
func NewBootstrapWarning(requested, failed int) *BootstrapWarning {
	return &BootstrapWarning{Requested: requested, Failed: failed}
}

// DroppedTermsWarning is raised when the design builder omits interaction
// columns whose category combination has zero observed support.
type DroppedTermsWarning struct {
	Terms []string
}

func (w *DroppedTermsWarning) Error() string {
	return fmt.Sprintf("design omitted %d zero-support interaction term(s): %s", len(w.Terms), strings.Join(w.Terms, ", "))
}

// MarshalZerologObject adds structured fields to a zerolog event.
func (w *DroppedTermsWarning) MarshalZerologObject(e *zerolog.Event) {
	e.Strs("terms", w.Terms).
		Str("type", "DroppedTermsWarning")
}

// NewDroppedTermsWarning creates a new DroppedTermsWarning.
func NewDroppedTermsWarning(terms []string) *DroppedTermsWarning {
	return &DroppedTermsWarning{Terms: terms}
}

// ===========================================================================
//
//	cockroachdb/errors passthroughs
//
// ===========================================================================

// Is reports whether err matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As reports whether err can be assigned to target.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Wrap wraps an error with a message.
func Wrap(err error, message string) error {
	return errors.Wrap(err, message)
}

// Wrapf wraps an error with a formatted message.
func Wrapf(err error, format string, args ...interface{}) error {
	return errors.Wrapf(err, format, args...)
}

// New creates a new error with a stack trace.
func New(message string) error {
	return errors.New(message)
}

// Newf creates a new formatted error with a stack trace.
func Newf(format string, args ...interface{}) error {
	return errors.Newf(format, args...)
}

// WithStack annotates an error with a stack trace.
func WithStack(err error) error {
	return errors.WithStack(err)
}

// ===========================================================================
//
//	Sentinel errors
//
// ===========================================================================

var (
	// ErrEmptyTable is returned when an operation receives a table with no rows.
	ErrEmptyTable = New("empty table")

	// ErrUnknownColumn is returned when a referenced column does not exist.
	ErrUnknownColumn = New("unknown column")

	// ErrColumnKind is returned when a column has the wrong kind for an
	// operation, e.g. a categorical column where a numeric one is required.
	ErrColumnKind = New("wrong column kind")
)
