// Package errors provides standardized domain errors with codes for LinkDeck.
//
// Usage:
//
//	// In services - return typed errors
//	if usernameTaken {
//	    return errors.Conflict("username already registered")
//	}
//
//	// At boundaries - check with errors.Is
//	if errors.Is(err, errors.ErrNotFound) {
//	    response.NotFound(w, err.Error(), logger)
//	    return
//	}
//
//	// Or switch on the Code directly
//	var domainErr *errors.Error
//	if errors.As(err, &domainErr) {
//	    switch domainErr.Code {
//	    case errors.CodeValidation:
//	        ...
//	    }
//	}
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Re-export standard library functions for convenience.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	Join   = errors.Join
)

// Code represents a machine-readable error code.
type Code string

// Error codes used throughout the application.
const (
	// CodeValidation covers bad user input: empty or too-short fields,
	// malformed URLs, out-of-shape import payloads caught before parsing.
	CodeValidation Code = "VALIDATION"
	// CodeConflict covers duplicate registration and id collisions.
	CodeConflict Code = "CONFLICT"
	// CodeInvalidCredentials is the deliberately generic login failure.
	// The same code and message are used whether the user is unknown or
	// the password is wrong, to avoid user enumeration.
	CodeInvalidCredentials Code = "INVALID_CREDENTIALS"
	// CodeNotFound covers operations on a missing category/bookmark/tag id.
	CodeNotFound Code = "NOT_FOUND"
	// CodeOutOfRange covers reorder indices outside the sequence bounds.
	CodeOutOfRange Code = "OUT_OF_RANGE"
	// CodePersistence covers local storage write failures. In-memory state
	// stays correct but is not durable until the write is retried.
	CodePersistence Code = "PERSISTENCE"
	// CodeSync covers remote mirror failures. Never blocks or reverts a
	// local mutation.
	CodeSync Code = "SYNC"
	// CodeFormat covers corrupt or unrecognized snapshot payloads.
	CodeFormat Code = "FORMAT"
	// CodeInternal is the catch-all for invariant violations.
	CodeInternal Code = "INTERNAL"
)

// HTTPStatus returns the appropriate HTTP status code for an error code.
// Used by the mirror server when a domain error crosses the wire.
func (c Code) HTTPStatus() int {
	switch c {
	case CodeNotFound:
		return http.StatusNotFound
	case CodeConflict:
		return http.StatusConflict
	case CodeInvalidCredentials:
		return http.StatusUnauthorized
	case CodeValidation, CodeOutOfRange, CodeFormat:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Error is a domain error with a code, message, and optional cause.
type Error struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
	cause   error  // unexported, for wrapping
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.cause
}

// Is reports whether target matches this error.
// Matches if target is an *Error with the same Code.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// HTTPStatus returns the HTTP status code for this error.
func (e *Error) HTTPStatus() int {
	return e.Code.HTTPStatus()
}

// WithCause wraps an underlying error.
func (e *Error) WithCause(err error) *Error {
	return &Error{
		Code:    e.Code,
		Message: e.Message,
		cause:   err,
	}
}

// Sentinel errors for use with errors.Is().
var (
	ErrValidation         = &Error{Code: CodeValidation, Message: "validation error"}
	ErrConflict           = &Error{Code: CodeConflict, Message: "conflict"}
	ErrInvalidCredentials = &Error{Code: CodeInvalidCredentials, Message: "invalid username or password"}
	ErrNotFound           = &Error{Code: CodeNotFound, Message: "not found"}
	ErrOutOfRange         = &Error{Code: CodeOutOfRange, Message: "index out of range"}
	ErrPersistence        = &Error{Code: CodePersistence, Message: "persistence failure"}
	ErrSync               = &Error{Code: CodeSync, Message: "sync failure"}
	ErrFormat             = &Error{Code: CodeFormat, Message: "invalid format"}
	ErrInternal           = &Error{Code: CodeInternal, Message: "internal error"}
)

// Constructor functions for creating errors with custom messages.

// Validation creates a validation error.
func Validation(msg string) *Error {
	return &Error{Code: CodeValidation, Message: msg}
}

// Validationf creates a validation error with formatted message.
func Validationf(format string, args ...any) *Error {
	return &Error{Code: CodeValidation, Message: fmt.Sprintf(format, args...)}
}

// Conflict creates a conflict error.
func Conflict(msg string) *Error {
	return &Error{Code: CodeConflict, Message: msg}
}

// InvalidCredentials creates the generic login failure error.
// Callers should not vary the message by cause.
func InvalidCredentials() *Error {
	return &Error{Code: CodeInvalidCredentials, Message: "invalid username or password"}
}

// NotFound creates a not found error.
func NotFound(msg string) *Error {
	return &Error{Code: CodeNotFound, Message: msg}
}

// NotFoundf creates a not found error with formatted message.
func NotFoundf(format string, args ...any) *Error {
	return &Error{Code: CodeNotFound, Message: fmt.Sprintf(format, args...)}
}

// OutOfRangef creates an out of range error with formatted message.
func OutOfRangef(format string, args ...any) *Error {
	return &Error{Code: CodeOutOfRange, Message: fmt.Sprintf(format, args...)}
}

// Persistence creates a persistence error wrapping the storage failure.
func Persistence(msg string, cause error) *Error {
	return &Error{Code: CodePersistence, Message: msg, cause: cause}
}

// Sync creates a sync error wrapping the remote failure.
func Sync(msg string, cause error) *Error {
	return &Error{Code: CodeSync, Message: msg, cause: cause}
}

// Format creates a format error.
func Format(msg string) *Error {
	return &Error{Code: CodeFormat, Message: msg}
}

// Internal creates an internal error.
func Internal(msg string) *Error {
	return &Error{Code: CodeInternal, Message: msg}
}

// Wrap wraps an error with a code and message.
func Wrap(err error, code Code, msg string) *Error {
	return &Error{Code: code, Message: msg, cause: err}
}
