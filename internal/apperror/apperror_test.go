package apperror

import (
	"errors"
	"fmt"
	"testing"
)

func TestNotFound(t *testing.T) {
	err := NotFound("analysis", 42)

	if !errors.Is(err, ErrNotFound) {
		t.Error("NotFound() should match ErrNotFound via errors.Is")
	}
	if err.Error() != "analysis not found with id 42" {
		t.Errorf("Error() = %q, unexpected message", err.Error())
	}
}

func TestValidationFailed(t *testing.T) {
	err := ValidationFailed("code", "code must not be empty")

	if !errors.Is(err, ErrValidation) {
		t.Error("ValidationFailed() should match ErrValidation via errors.Is")
	}
	if err.Field != "code" {
		t.Errorf("Field = %q, want %q", err.Field, "code")
	}
	if err.Message != "code must not be empty" {
		t.Errorf("Message = %q, want validation message surfaced verbatim", err.Message)
	}
}

func TestUnavailable(t *testing.T) {
	err := Unavailable("save analysis")

	if !errors.Is(err, ErrUnavailable) {
		t.Error("Unavailable() should match ErrUnavailable via errors.Is")
	}
}

func TestUpstream(t *testing.T) {
	cause := errors.New("completion endpoint returned status 500")
	err := Upstream(cause)

	if !errors.Is(err, ErrUpstream) {
		t.Error("Upstream() should match ErrUpstream via errors.Is")
	}
}

// Wrapping an AppError with fmt.Errorf("%w") must keep the sentinel
// reachable — the handler layer relies on this to map errors to statuses.
func TestWrappedAppError(t *testing.T) {
	inner := ValidationFailed("code", "code must not be empty")
	wrapped := fmt.Errorf("analyzing code: %w", inner)

	if !errors.Is(wrapped, ErrValidation) {
		t.Error("wrapped AppError should still match ErrValidation")
	}

	var appErr *AppError
	if !errors.As(wrapped, &appErr) {
		t.Fatal("errors.As should extract *AppError from the chain")
	}
	if appErr.Message != "code must not be empty" {
		t.Errorf("extracted Message = %q, want original message", appErr.Message)
	}
}
