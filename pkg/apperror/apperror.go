package apperror

import (
	"errors"
	"fmt"
)

// Kind classifies an application error so the transport layer can pick a status code.
type Kind string

const (
	KindNotFound             Kind = "not_found"
	KindForbidden            Kind = "forbidden"
	KindUnauthorized         Kind = "unauthorized"
	KindValidation           Kind = "validation"
	KindCapacityExceeded     Kind = "capacity_exceeded"
	KindInsufficientCapacity Kind = "insufficient_capacity"
	KindConflict             Kind = "conflict"
	KindInternal             Kind = "internal"
)

// Error is the error type returned by services for every expected failure.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func NotFound(format string, args ...any) error {
	return New(KindNotFound, fmt.Sprintf(format, args...))
}

func Forbidden(format string, args ...any) error {
	return New(KindForbidden, fmt.Sprintf(format, args...))
}

func Unauthorized(format string, args ...any) error {
	return New(KindUnauthorized, fmt.Sprintf(format, args...))
}

func Validation(format string, args ...any) error {
	return New(KindValidation, fmt.Sprintf(format, args...))
}

func CapacityExceeded(format string, args ...any) error {
	return New(KindCapacityExceeded, fmt.Sprintf(format, args...))
}

func InsufficientCapacity(format string, args ...any) error {
	return New(KindInsufficientCapacity, fmt.Sprintf(format, args...))
}

func Conflict(format string, args ...any) error {
	return New(KindConflict, fmt.Sprintf(format, args...))
}

func Internal(message string, err error) error {
	return Wrap(KindInternal, message, err)
}

// KindOf reports the kind of err, or KindInternal when err is not an *Error.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// Message returns the client-facing message of err. Errors that are not
// *Error never expose their text.
func Message(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) && appErr.Kind != KindInternal {
		return appErr.Message
	}
	return "Internal server error"
}
