package storage

import (
	"errors"
	"fmt"
)

// Common table error types
var (
	ErrItemExists         = errors.New("item already exists")
	ErrInvalidItem        = errors.New("invalid item")
	ErrTableNotFound      = errors.New("table not found")
	ErrTableExists        = errors.New("table already exists")
	ErrThroughputExceeded = errors.New("provisioned throughput exceeded")
	ErrUnavailable        = errors.New("storage service unavailable")
	ErrPermissionDenied   = errors.New("permission denied")
)

// TableError represents a table operation error with additional context
type TableError struct {
	Op        string // Operation that failed (e.g., "Insert", "Query")
	Key       string // Item key involved in the operation
	Code      string // Error code reported by the engine, if any
	Err       error  // Underlying error
	Retryable bool   // Whether the operation can be retried
}

func (e *TableError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("table %s operation failed for key '%s': %v", e.Op, e.Key, e.Err)
	}
	return fmt.Sprintf("table %s operation failed: %v", e.Op, e.Err)
}

func (e *TableError) Unwrap() error {
	return e.Err
}

// IsRetryable returns true if the error indicates a retryable condition
func (e *TableError) IsRetryable() bool {
	return e.Retryable
}

// NewTableError creates a new TableError
func NewTableError(op, key string, err error, retryable bool) *TableError {
	return &TableError{
		Op:        op,
		Key:       key,
		Err:       err,
		Retryable: retryable,
	}
}

// IsItemExists returns true if the error indicates a key conflict on insert
func IsItemExists(err error) bool {
	return errors.Is(err, ErrItemExists)
}

// IsTableNotFound returns true if the error indicates the table does not exist
func IsTableNotFound(err error) bool {
	return errors.Is(err, ErrTableNotFound)
}

// IsRetryable returns true if the error indicates a retryable condition
func IsRetryable(err error) bool {
	var tableErr *TableError
	if errors.As(err, &tableErr) {
		return tableErr.IsRetryable()
	}

	return errors.Is(err, ErrUnavailable) ||
		errors.Is(err, ErrThroughputExceeded)
}

// ErrorCode returns the engine error code carried by err, or a code derived from
// the sentinel it wraps.
func ErrorCode(err error) string {
	var tableErr *TableError
	if errors.As(err, &tableErr) && tableErr.Code != "" {
		return tableErr.Code
	}

	switch {
	case errors.Is(err, ErrItemExists):
		return "ConditionalCheckFailedException"
	case errors.Is(err, ErrTableNotFound):
		return "ResourceNotFoundException"
	case errors.Is(err, ErrTableExists):
		return "ResourceInUseException"
	case errors.Is(err, ErrThroughputExceeded):
		return "ProvisionedThroughputExceededException"
	case errors.Is(err, ErrInvalidItem):
		return "ValidationException"
	case errors.Is(err, ErrPermissionDenied):
		return "AccessDeniedException"
	case errors.Is(err, ErrUnavailable):
		return "ServiceUnavailable"
	default:
		return "InternalError"
	}
}
