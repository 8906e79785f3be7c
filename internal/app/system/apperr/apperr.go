// Package apperr defines the error kinds every operation reports to callers.
//
// Engines return *Error values; the HTTP layer maps the Kind to a status
// code and a stable machine-readable code. Errors that are not *Error are
// treated as KindInternal and their text is never shown to the caller.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind is a stable, machine-readable error category.
type Kind string

const (
	KindUnauthenticated Kind = "UNAUTHENTICATED"
	KindForbidden       Kind = "FORBIDDEN"
	KindNotFound        Kind = "NOT_FOUND"
	KindConflict        Kind = "CONFLICT"
	KindValidation      Kind = "VALIDATION_FAILED"
	KindRateLimited     Kind = "RATE_LIMITED"
	KindInternal        Kind = "INTERNAL"
)

// Issue is a single field-level validation problem.
type Issue struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error is an operation failure with a kind and a user-facing message.
type Error struct {
	Kind    Kind
	Message string
	Issues  []Issue
	Err     error // underlying cause, never shown to callers
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Unauthenticated reports a missing, invalid or inactive caller identity.
func Unauthenticated(msg string) *Error {
	if msg == "" {
		msg = "authentication required"
	}
	return &Error{Kind: KindUnauthenticated, Message: msg}
}

// Forbidden reports a valid caller without sufficient role or permission.
func Forbidden(msg string) *Error {
	if msg == "" {
		msg = "insufficient permissions"
	}
	return &Error{Kind: KindForbidden, Message: msg}
}

// NotFound reports that the named entity does not exist.
func NotFound(entity string) *Error {
	return &Error{Kind: KindNotFound, Message: entity + " not found"}
}

// Conflict reports a violated uniqueness or state invariant.
func Conflict(msg string) *Error {
	return &Error{Kind: KindConflict, Message: msg}
}

// Validation reports malformed input with optional field-level issues.
func Validation(msg string, issues ...Issue) *Error {
	if msg == "" {
		msg = "validation failed"
	}
	return &Error{Kind: KindValidation, Message: msg, Issues: issues}
}

// Field is shorthand for a validation error about a single field.
func Field(field, msg string) *Error {
	return Validation("validation failed", Issue{Field: field, Message: msg})
}

// RateLimited reports a caller that exceeded its request allowance.
func RateLimited(msg string) *Error {
	if msg == "" {
		msg = "too many requests"
	}
	return &Error{Kind: KindRateLimited, Message: msg}
}

// Internal wraps an unexpected failure. The cause is kept for logging only.
func Internal(err error) *Error {
	return &Error{Kind: KindInternal, Message: "internal server error", Err: err}
}

// KindOf returns the Kind of err, or KindInternal for foreign errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Is reports whether err carries kind k.
func Is(err error, k Kind) bool {
	return err != nil && KindOf(err) == k
}

// Status maps a Kind to its HTTP status code. Conflicts are reported as
// 400 alongside validation failures.
func Status(k Kind) int {
	switch k {
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict, KindValidation:
		return http.StatusBadRequest
	case KindRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}
