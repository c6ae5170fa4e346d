package handlers

import (
	"errors"

	"demographics-api/internal/adapters/storage"
	"demographics-api/internal/repositories"
	"demographics-api/pkg/lambda"
)

var (
	errNoEvent    = errors.New("no event")
	errUnroutable = errors.New("event incompatible with handler")
)

// errorPayload maps an operation failure to the payload returned to the caller:
// false for rejected arguments, an ErrorPayload for table failures.
func errorPayload(err error) interface{} {
	if repositories.IsValidation(err) {
		return false
	}
	return lambda.ErrorPayload{
		Message:   err.Error(),
		Code:      storage.ErrorCode(err),
		Retryable: storage.IsRetryable(err),
	}
}

// IsRoutingFailure reports whether an outcome was rejected before reaching the table
func IsRoutingFailure(outcome lambda.Outcome) bool {
	return errors.Is(outcome.Cause, errNoEvent) || errors.Is(outcome.Cause, errUnroutable)
}
