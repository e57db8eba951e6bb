package apperror

import (
	"errors"
	"fmt"
)

// Sentinel error kinds. Services wrap these into an *AppError; handlers
// classify with errors.Is and pick the HTTP response (status code, redirect,
// or form re-render) without parsing message strings.
var (
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("validation error")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
	ErrUpstream     = errors.New("upstream error")
)

// AppError carries a sentinel kind plus a message safe to show the user.
// The Message never contains SQL, tokens, or upstream response bodies —
// those stay in the logs.
type AppError struct {
	Err     error  // one of the sentinels above
	Message string // human-readable, user-safe
	Field   string // optional: form field causing the error
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

func Conflict(message string) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: message,
	}
}

// Unauthorized covers both "not logged in" and "bad credentials". The message
// is deliberately the caller's choice: login uses one fixed string for unknown
// user and wrong password alike, so responses don't reveal which usernames exist.
func Unauthorized(message string) *AppError {
	return &AppError{
		Err:     ErrUnauthorized,
		Message: message,
	}
}

// Upstream marks a failure of an external collaborator (the GitHub API or the
// OAuth token endpoint). Handlers map it to an error page, never a retry.
func Upstream(message string) *AppError {
	return &AppError{
		Err:     ErrUpstream,
		Message: message,
	}
}
