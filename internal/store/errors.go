package store

import (
	"fmt"
	"net/http"
)

// Error is a store error with an HTTP-ish status code.
type Error struct {
	Code    int    // HTTP status code
	Message string // User-facing message
	Err     error  // Underlying error (optional)
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches on code so sentinel comparisons survive WithMessage/WithCause.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && e.Code == t.Code && e.Message == t.Message
}

// HTTPCode returns the HTTP status code associated with this error.
func (e *Error) HTTPCode() int { return e.Code }

// WithCause wraps an underlying error.
func (e *Error) WithCause(err error) *Error {
	return &Error{
		Code:    e.Code,
		Message: e.Message,
		Err:     err,
	}
}

// Sentinel errors. Every store operation that fails a precondition returns
// one of these before any write commits; no call leaves a half-updated row.
var (
	ErrNotFound = &Error{
		Code:    http.StatusNotFound,
		Message: "resource not found",
	}

	// ErrNotLinked means the (user, book) pair has no link row.
	ErrNotLinked = &Error{
		Code:    http.StatusNotFound,
		Message: "book is not linked to this user",
	}

	ErrInvalidInput = &Error{
		Code:    http.StatusBadRequest,
		Message: "invalid input",
	}

	// ErrInvalidStatus means a status token outside the closed enum.
	ErrInvalidStatus = &Error{
		Code:    http.StatusBadRequest,
		Message: "invalid status",
	}

	ErrAlreadyExists = &Error{
		Code:    http.StatusConflict,
		Message: "resource already exists",
	}
)
