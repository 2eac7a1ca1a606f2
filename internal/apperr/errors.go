// Package apperr defines the application error taxonomy shared by every
// request-handling layer. An Error carries a coarse Kind used to derive the
// HTTP status and a finer-grained application code surfaced in the response
// envelope.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error into the coarse buckets the transport layer
// understands.
type Kind int

const (
	KindBadRequest Kind = iota
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindConflict
	KindInternal
	KindTimeout
)

// HTTPStatus maps a kind to its default HTTP status code.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindBadRequest:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindTimeout:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// Application codes. These are finer grained than HTTP statuses and are the
// `code` field of the error envelope.
const (
	CodeUnauthorized       = 1001
	CodeTokenExpired       = 1002
	CodeTokenInvalid       = 1003
	CodeInvalidCredentials = 1004

	CodeForbidden        = 2001
	CodePermissionDenied = 2002
	CodeUserDisabled     = 2003

	CodeNotFound     = 3001
	CodeUserNotFound = 3002
	CodeRoleNotFound = 3003

	CodeBadRequest        = 4001
	CodeValidationError   = 4002
	CodeConflict          = 4009
	CodeDuplicateEmail    = 4010
	CodeDuplicateUsername = 4011

	CodeInternal = 5001
	CodeTimeout  = 5004
)

// Error is a domain error with a stable code and message safe to return to
// clients. The wrapped cause, if any, is for logs only and never serialized.
type Error struct {
	Kind    Kind
	Code    int
	Message string
	cause   error
}

// New constructs an Error.
func New(kind Kind, code int, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

// Newf constructs an Error with a formatted message.
func Newf(kind Kind, code int, format string, args ...any) *Error {
	return &Error{Kind: kind, Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a cause. The cause is kept for logging and errors.Is/As but
// never leaks into the response body.
func (e *Error) Wrap(cause error) *Error {
	clone := *e
	clone.cause = cause
	return &clone
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s (code %d): %v", e.Message, e.Code, e.cause)
	}
	return fmt.Sprintf("%s (code %d)", e.Message, e.Code)
}

func (e *Error) Unwrap() error { return e.cause }

// Is treats two Errors with the same code as equivalent so sentinel
// comparisons with errors.Is work.
func (e *Error) Is(target error) bool {
	var other *Error
	if !errors.As(target, &other) {
		return false
	}
	return e.Code == other.Code
}

// Common sentinels. Handlers may return these directly or wrap a cause.
var (
	ErrUnauthorized       = New(KindUnauthorized, CodeUnauthorized, "Unauthorized")
	ErrTokenExpired       = New(KindUnauthorized, CodeTokenExpired, "Token expired")
	ErrTokenInvalid       = New(KindUnauthorized, CodeTokenInvalid, "Invalid token")
	ErrInvalidCredentials = New(KindUnauthorized, CodeInvalidCredentials, "Invalid credentials")
	ErrForbidden          = New(KindForbidden, CodeForbidden, "Forbidden")
	ErrPermissionDenied   = New(KindForbidden, CodePermissionDenied, "Permission denied")
	ErrUserDisabled       = New(KindForbidden, CodeUserDisabled, "User is disabled")
	ErrNotFound           = New(KindNotFound, CodeNotFound, "Not found")
	ErrBadRequest         = New(KindBadRequest, CodeBadRequest, "Bad request")
	ErrConflict           = New(KindConflict, CodeConflict, "Conflict")
	ErrInternal           = New(KindInternal, CodeInternal, "Internal server error")
	ErrTimeout            = New(KindTimeout, CodeTimeout, "Execution timed out")
)

// From normalizes an arbitrary error into *Error. Unclassified errors become
// ErrInternal wrapping the cause so no detail leaks to the caller.
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return ErrInternal.Wrap(err)
}
