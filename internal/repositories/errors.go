package repositories

import (
	"errors"
	"fmt"
)

// Common repository errors
var (
	// ErrValidation is returned when a key argument is missing or cannot be parsed.
	// It never originates from the storage engine.
	ErrValidation = errors.New("validation error")
)

// RepositoryError represents a repository-specific error with additional context
type RepositoryError struct {
	Op      string      // Operation that failed
	Entity  string      // Entity type
	Field   string      // Offending field (if applicable)
	Value   interface{} // Offending raw value (if applicable)
	Err     error       // Underlying error
	Message string      // Human-readable message
}

// Error implements the error interface
func (e *RepositoryError) Error() string {
	if e.Message != "" {
		return e.Message
	}

	if e.Field != "" {
		return fmt.Sprintf("%s %s operation failed for %s: %v", e.Entity, e.Op, e.Field, e.Err)
	}

	return fmt.Sprintf("%s %s operation failed: %v", e.Entity, e.Op, e.Err)
}

// Unwrap returns the underlying error
func (e *RepositoryError) Unwrap() error {
	return e.Err
}

// Is checks if the error matches the target error
func (e *RepositoryError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// ValidationError creates a "validation" repository error for a rejected argument
func ValidationError(op, field string, value interface{}) *RepositoryError {
	return &RepositoryError{
		Op:      op,
		Entity:  "demographics",
		Field:   field,
		Value:   value,
		Err:     ErrValidation,
		Message: fmt.Sprintf("unable to parse %s %v: please provide a numeric %s", field, formatValue(value), field),
	}
}

// IsValidation checks if an error is a "validation" error
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

func formatValue(v interface{}) string {
	if v == nil {
		return "(missing)"
	}
	return fmt.Sprintf("%q", fmt.Sprint(v))
}
