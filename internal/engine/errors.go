package engine

import "fmt"

// StageError wraps a failure inside one pipeline stage. The whole run aborts
// before anything is persisted.
type StageError struct {
	Stage string
	Sheet string
	Cause error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("stage '%s' failed on sheet '%s': %v", e.Stage, e.Sheet, e.Cause)
}

func (e *StageError) Unwrap() error {
	return e.Cause
}

// ColumnNotFoundError means a name-keyed rule matched zero columns. It is
// non-fatal: the rule is skipped and the run continues, so one stale
// reference does not abort an otherwise-valid template.
type ColumnNotFoundError struct {
	Column     string
	Sheet      string
	Suggestion string
}

func (e *ColumnNotFoundError) Error() string {
	msg := fmt.Sprintf("column '%s' not found on sheet '%s'", e.Column, e.Sheet)
	if e.Suggestion != "" {
		msg += fmt.Sprintf(" (did you mean '%s'?)", e.Suggestion)
	}
	return msg
}
