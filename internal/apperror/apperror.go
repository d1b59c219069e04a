package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound    = errors.New("not found")
	ErrValidation  = errors.New("validation error")
	ErrUnavailable = errors.New("store unavailable")
	ErrUpstream    = errors.New("upstream failure")
)

type AppError struct {
	Err     error  // sentinel cause, matched with errors.Is
	Message string // Human-readable error message
	Field   string // Optional: field causing the error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NotFound(resource string, id int64) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with id %d", resource, id),
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

// Unavailable reports that the data store has no connection. Write paths
// surface this to the caller; read paths downgrade it to an empty result
// instead (see the repository/sqlite package doc).
func Unavailable(operation string) *AppError {
	return &AppError{
		Err:     ErrUnavailable,
		Message: fmt.Sprintf("database not available: %s", operation),
	}
}

// Upstream wraps a completion-client failure. It aborts the whole analyze
// operation — no partial persistence.
func Upstream(err error) *AppError {
	return &AppError{
		Err:     ErrUpstream,
		Message: fmt.Sprintf("completion service failed: %v", err),
	}
}
