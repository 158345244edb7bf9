package template

import "fmt"

// ValidationError represents a malformed or contradictory template field.
// Validation errors are fatal and raised before any document mutation.
type ValidationError struct {
	Field   string
	Value   any
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for field '%s' with value '%v': %s", e.Field, e.Value, e.Message)
}
