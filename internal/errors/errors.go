// Package errors holds the error values shared across teamforge.
//
// Sentinels name a condition and are matched with [Is]. The typed errors
// ([IngestError], [EngineError], [StoreError], [NotFoundError] and
// [ValidationError]) carry the context a user needs to act on the failure
// (file and line, pipeline stage, run ID) and wrap a cause, usually one of
// the sentinels:
//
//	err := errors.NewIngestError("open registrant file", errors.ErrInputUnreadable).
//	    WithPath("roster.csv")
//
//	errors.Is(err, errors.ErrInputUnreadable) // true
//
//	var ie *errors.IngestError
//	errors.As(err, &ie) // ie.Path == "roster.csv"
//
// Unmet balancing goals are never errors. They show up in the run
// diagnostics instead.
package errors

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Standard library helpers, so callers need a single errors import.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	New    = errors.New
	Join   = errors.Join
)

// Reading the registrant sheet.
var (
	// ErrInputUnreadable means the registrant file is missing or cannot be read.
	ErrInputUnreadable = New("input file unreadable")
	// ErrEmptyInput means the registrant file has no header row.
	ErrEmptyInput = New("input has no header row")
	// ErrColumnNotFound means a required column pattern matched no header.
	ErrColumnNotFound = New("column not found")
)

// Catalog and partition integrity.
var (
	ErrDuplicateCluster = New("duplicate cluster")
	ErrUnknownCluster   = New("unknown cluster")
	// ErrIncomplete means a partition no longer holds every cluster exactly
	// once. Seeing it is a bug in a balancing stage.
	ErrIncomplete = New("partition incomplete")
)

// Run history.
var (
	ErrRunNotFound = New("run not found")
	// ErrStoreUnavailable means no database path was given or the store
	// has been closed.
	ErrStoreUnavailable = New("store unavailable")
)

var (
	ErrInvalidConfig = New("invalid configuration")
	ErrInvalidInput  = New("invalid input")
)

// kv is one key=value pair of error context.
type kv struct {
	key, value string
}

// render formats "<kind> [k=v, ...]: message: cause", leaving out empty
// context values and a nil cause.
func render(kind string, ctx []kv, message string, cause error) string {
	var b strings.Builder
	b.WriteString(kind)

	first := true
	for _, c := range ctx {
		if c.value == "" {
			continue
		}
		if first {
			b.WriteString(" [")
			first = false
		} else {
			b.WriteString(", ")
		}
		b.WriteString(c.key)
		b.WriteByte('=')
		b.WriteString(c.value)
	}
	if !first {
		b.WriteByte(']')
	}

	b.WriteString(": ")
	b.WriteString(message)
	if cause != nil {
		b.WriteString(": ")
		b.WriteString(cause.Error())
	}
	return b.String()
}

// positive formats n, or returns "" when n is not set.
func positive(n int) string {
	if n <= 0 {
		return ""
	}
	return strconv.Itoa(n)
}

// IngestError reports a problem reading or mapping a registrant file.
type IngestError struct {
	Path   string
	Line   int // 1-based; 0 when the problem is not tied to a line
	Column string
	msg    string
	cause  error
}

// NewIngestError creates an IngestError wrapping cause.
func NewIngestError(message string, cause error) *IngestError {
	return &IngestError{msg: message, cause: cause}
}

// WithPath records the input file.
func (e *IngestError) WithPath(path string) *IngestError {
	e.Path = path
	return e
}

// WithLine records the input line.
func (e *IngestError) WithLine(line int) *IngestError {
	e.Line = line
	return e
}

// WithColumn records the field or header pattern involved.
func (e *IngestError) WithColumn(column string) *IngestError {
	e.Column = column
	return e
}

func (e *IngestError) Error() string {
	return render("ingest error", []kv{
		{"path", e.Path},
		{"line", positive(e.Line)},
		{"column", e.Column},
	}, e.msg, e.cause)
}

func (e *IngestError) Unwrap() error { return e.cause }

// EngineError reports a failure inside the team-formation pipeline.
type EngineError struct {
	Stage     string
	ClusterID string
	msg       string
	cause     error
}

// NewEngineError creates an EngineError wrapping cause.
func NewEngineError(message string, cause error) *EngineError {
	return &EngineError{msg: message, cause: cause}
}

// WithStage records the pipeline stage.
func (e *EngineError) WithStage(stage string) *EngineError {
	e.Stage = stage
	return e
}

// WithCluster records the cluster involved.
func (e *EngineError) WithCluster(id string) *EngineError {
	e.ClusterID = id
	return e
}

func (e *EngineError) Error() string {
	return render("engine error", []kv{
		{"stage", e.Stage},
		{"cluster", e.ClusterID},
	}, e.msg, e.cause)
}

func (e *EngineError) Unwrap() error { return e.cause }

// StoreError reports a run history database failure.
type StoreError struct {
	RunID string
	msg   string
	cause error
}

// NewStoreError creates a StoreError wrapping cause.
func NewStoreError(message string, cause error) *StoreError {
	return &StoreError{msg: message, cause: cause}
}

// WithRunID records the run involved.
func (e *StoreError) WithRunID(id string) *StoreError {
	e.RunID = id
	return e
}

func (e *StoreError) Error() string {
	return render("store error", []kv{{"run", e.RunID}}, e.msg, e.cause)
}

func (e *StoreError) Unwrap() error { return e.cause }

// NotFoundError reports a named resource that does not exist.
type NotFoundError struct {
	ResourceType string
	ResourceID   string
	cause        error
}

// NewNotFoundError creates a NotFoundError, e.g. ("run", "3f2a").
func NewNotFoundError(resourceType, resourceID string) *NotFoundError {
	return &NotFoundError{ResourceType: resourceType, ResourceID: resourceID}
}

// WithCause sets the wrapped error, typically a sentinel such as
// ErrRunNotFound.
func (e *NotFoundError) WithCause(cause error) *NotFoundError {
	e.cause = cause
	return e
}

func (e *NotFoundError) Error() string {
	msg := fmt.Sprintf("%s %q not found", e.ResourceType, e.ResourceID)
	if e.cause != nil {
		return msg + ": " + e.cause.Error()
	}
	return msg
}

func (e *NotFoundError) Unwrap() error { return e.cause }

// ValidationError reports a value that is out of range or malformed. Every
// ValidationError matches ErrInvalidInput.
type ValidationError struct {
	Field string
	Value any
	msg   string
	cause error
}

// NewValidationError creates a ValidationError.
func NewValidationError(message string) *ValidationError {
	return &ValidationError{msg: message}
}

// WithField records the offending field, e.g. "teams.count".
func (e *ValidationError) WithField(field string) *ValidationError {
	e.Field = field
	return e
}

// WithValue records the offending value.
func (e *ValidationError) WithValue(value any) *ValidationError {
	e.Value = value
	return e
}

// WithCause sets the wrapped error.
func (e *ValidationError) WithCause(cause error) *ValidationError {
	e.cause = cause
	return e
}

func (e *ValidationError) Error() string {
	var value string
	if e.Value != nil {
		value = fmt.Sprint(e.Value)
	}
	return render("validation error", []kv{
		{"field", e.Field},
		{"value", value},
	}, e.msg, e.cause)
}

func (e *ValidationError) Unwrap() error { return e.cause }

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}
