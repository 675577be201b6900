package apperror

import (
	"errors"
	"fmt"
)

// Sentinel errors for the application's error taxonomy.
//
// Services return *AppError values wrapping one of these sentinels; callers
// use errors.Is to classify without string matching. The HTTP layer maps them
// to status codes in exactly one place (handler/response.go):
//
//	ErrValidation, ErrInvalidOperation → 400
//	ErrForbidden                       → 403
//	ErrNotFound                        → 404
//	ErrConflict                        → 409
//	ErrInternal (and anything else)    → 500
var (
	ErrNotFound         = errors.New("not found")
	ErrValidation       = errors.New("validation error")
	ErrConflict         = errors.New("conflict")
	ErrForbidden        = errors.New("forbidden")
	ErrInvalidOperation = errors.New("invalid operation")
	ErrInternal         = errors.New("internal error")
)

type AppError struct {
	Err     error  // sentinel classifying the error
	Message string // Human-readable error message
	Field   string // Optional: field causing the error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NotFound(resource, id string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with id %s", resource, id),
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

func Conflict(resource, id string) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: fmt.Sprintf("%s conflict with id %s", resource, id),
	}
}

// Forbidden returns an AppError indicating the caller lacks permission.
// HTTP handlers map this to 403 Forbidden. Authorization failures are never
// downgraded to a silent no-op.
func Forbidden(message string) *AppError {
	return &AppError{
		Err:     ErrForbidden,
		Message: message,
	}
}

// InvalidOperation marks a structurally disallowed operation, e.g. a user
// trying to follow themselves. Distinct from ValidationFailed (malformed
// input) even though both map to 400.
func InvalidOperation(message string) *AppError {
	return &AppError{
		Err:     ErrInvalidOperation,
		Message: message,
	}
}

// Internal wraps a collaborator failure (usually the store). The underlying
// error is preserved for logging via Unwrap; the Message is safe to show to
// a client.
func Internal(err error) *AppError {
	return &AppError{
		Err:     fmt.Errorf("%w: %w", ErrInternal, err),
		Message: "an internal error occurred",
	}
}
