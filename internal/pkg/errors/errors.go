package errors

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrNotFound is a generic sentinel for missing resources.
	ErrNotFound = errors.New("not found")
	// ErrInvalidArgument is a generic sentinel for invalid input.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrUnavailable marks a dependency (model, store) that is not ready yet.
	ErrUnavailable = errors.New("unavailable")

	// ErrNotFitted marks an operation that needs fit state invoked before fitting.
	ErrNotFitted = errors.New("not fitted")
	// ErrAlreadyFitted marks an attempt to refit frozen state.
	ErrAlreadyFitted = errors.New("already fitted")
	// ErrSchema marks input whose columns do not match what an operation requires.
	ErrSchema = errors.New("schema mismatch")
	// ErrConfiguration marks invalid pipeline parameters.
	ErrConfiguration = errors.New("invalid configuration")
	// ErrComputation marks non-finite values produced while computing features.
	ErrComputation = errors.New("non-finite computation")
)

// StateError reports a lifecycle violation on a fit/transform component.
type StateError struct {
	Component string
	Err       error
}

func (e *StateError) Error() string {
	return fmt.Sprintf("%s: %v", e.Component, e.Err)
}

func (e *StateError) Unwrap() error { return e.Err }

func NotFitted(component string) error {
	return &StateError{Component: component, Err: ErrNotFitted}
}

func AlreadyFitted(component string) error {
	return &StateError{Component: component, Err: ErrAlreadyFitted}
}

// SchemaError names the columns that made an input unacceptable.
type SchemaError struct {
	Op         string
	Missing    []string
	Extra      []string
	Misordered bool
}

func (e *SchemaError) Error() string {
	parts := make([]string, 0, 3)
	if len(e.Missing) > 0 {
		parts = append(parts, "missing columns ["+strings.Join(e.Missing, ", ")+"]")
	}
	if len(e.Extra) > 0 {
		parts = append(parts, "unexpected columns ["+strings.Join(e.Extra, ", ")+"]")
	}
	if e.Misordered {
		parts = append(parts, "columns out of fit-time order")
	}
	if len(parts) == 0 {
		parts = append(parts, "columns do not match")
	}
	op := e.Op
	if op == "" {
		op = "schema"
	}
	return fmt.Sprintf("%s: %s", op, strings.Join(parts, "; "))
}

func (e *SchemaError) Is(target error) bool { return target == ErrSchema }

// MissingColumns builds a SchemaError for the given absent columns.
func MissingColumns(op string, missing ...string) error {
	return &SchemaError{Op: op, Missing: missing}
}

// ComputationError reports a column that produced NaN or Inf.
type ComputationError struct {
	Column string
	Rows   []int
}

func (e *ComputationError) Error() string {
	rows := e.Rows
	suffix := ""
	if len(rows) > 5 {
		suffix = fmt.Sprintf(" (+%d more)", len(rows)-5)
		rows = rows[:5]
	}
	return fmt.Sprintf("column %s has non-finite values at rows %v%s", e.Column, rows, suffix)
}

func (e *ComputationError) Is(target error) bool { return target == ErrComputation }

// ComputationErrors collects every non-finite column of a frame.
type ComputationErrors []*ComputationError

func (es ComputationErrors) Error() string {
	msgs := make([]string, 0, len(es))
	for _, e := range es {
		msgs = append(msgs, e.Error())
	}
	sort.Strings(msgs)
	return "non-finite computation: " + strings.Join(msgs, "; ")
}

func (es ComputationErrors) Is(target error) bool { return target == ErrComputation }

func (es ComputationErrors) Columns() []string {
	out := make([]string, 0, len(es))
	for _, e := range es {
		out = append(out, e.Column)
	}
	return out
}

// ConfigurationError names the offending parameter.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ConfigurationError) Is(target error) bool { return target == ErrConfiguration }

func Configuration(field, format string, args ...any) error {
	return &ConfigurationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}
