package contracts

import (
	"errors"
	"fmt"
)

// Run-level sentinel errors
var (
	// ErrRunConflict is returned when a run is requested while another
	// run is RUNNING in the same tenant scope.
	ErrRunConflict = errors.New("another pipeline run is already running")

	// ErrRunNotFound is returned when a run id does not exist.
	ErrRunNotFound = errors.New("pipeline run not found")

	// ErrRunTerminal is returned when mutating a terminal run.
	ErrRunTerminal = errors.New("pipeline run is in a terminal state")
)

// SchemaError indicates required input columns or sheets are missing.
// Fatal — aborts the run.
type SchemaError struct {
	Source  string
	Missing []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("schema error in %s: missing %v", e.Source, e.Missing)
}

// NotFoundError indicates a required input file or reference sheet is
// missing. Fatal — aborts the run.
type NotFoundError struct {
	Kind string // file | sheet | column
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.Name)
}

// RuleEvaluationError indicates unexpected data shape inside a rule
// module. Fatal — surfaces as run FAILED with the message recorded.
type RuleEvaluationError struct {
	Rule string
	Err  error
}

func (e *RuleEvaluationError) Error() string {
	return fmt.Sprintf("rule %s evaluation failed: %v", e.Rule, e.Err)
}

func (e *RuleEvaluationError) Unwrap() error {
	return e.Err
}
