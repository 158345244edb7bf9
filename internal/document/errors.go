package document

import "fmt"

// WorkbookError represents errors related to workbook file operations.
type WorkbookError struct {
	Operation string
	Path      string
	Cause     error
}

func (e *WorkbookError) Error() string {
	return fmt.Sprintf("workbook error during %s on %s: %v", e.Operation, e.Path, e.Cause)
}

func (e *WorkbookError) Unwrap() error {
	return e.Cause
}

// SheetError represents errors related to worksheet operations.
type SheetError struct {
	Operation string
	SheetName string
	Cause     error
}

func (e *SheetError) Error() string {
	return fmt.Sprintf("worksheet error during %s on sheet '%s': %v", e.Operation, e.SheetName, e.Cause)
}

func (e *SheetError) Unwrap() error {
	return e.Cause
}

// ConsistencyError means the data view and edit view disagree on workbook
// shape. The projections cannot be trusted, so the run aborts before any
// mutation is persisted.
type ConsistencyError struct {
	Path   string
	Detail string
}

func (e *ConsistencyError) Error() string {
	return fmt.Sprintf("consistency error in %s: %s", e.Path, e.Detail)
}
