// Package apperr defines the error kinds that cross the service boundary.
//
// Services return *Error values; transports map the Kind to a status code and
// show only Message (and Fields for validation failures) to the caller. The
// wrapped cause is kept for server-side logs.
package apperr

import (
	"errors"
	"fmt"
	"strings"

	pkgerrors "github.com/pkg/errors"
)

// Kind classifies a failure.
type Kind uint8

const (
	Internal Kind = iota
	Invalid
	// Malformed is a request that could not be decoded at all.
	Malformed
	NotFound
	Conflict
	Unauthorized
	Forbidden
)

func (k Kind) String() string {
	switch k {
	case Invalid:
		return "invalid"
	case Malformed:
		return "malformed"
	case NotFound:
		return "not_found"
	case Conflict:
		return "conflict"
	case Unauthorized:
		return "unauthorized"
	case Forbidden:
		return "forbidden"
	default:
		return "internal"
	}
}

// Error is a classified, caller-safe error.
type Error struct {
	Kind    Kind
	Message string
	Fields  map[string]string
	cause   error
}

func (e *Error) Error() string {
	if e.cause == nil {
		return e.Message
	}
	return e.Message + ": " + e.cause.Error()
}

func (e *Error) Unwrap() error { return e.cause }

// Cause returns the wrapped error, or nil.
func (e *Error) Cause() error { return e.cause }

// New builds an error of the given kind without a cause.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap classifies cause. A stack trace is attached for logging.
func Wrap(cause error, kind Kind, message string) *Error {
	if cause != nil {
		cause = pkgerrors.WithStack(cause)
	}
	return &Error{Kind: kind, Message: message, cause: cause}
}

// Validation returns an Invalid error carrying per-field messages.
func Validation(fields map[string]string) *Error {
	return &Error{Kind: Invalid, Message: "Validation failed", Fields: fields}
}

// Field is shorthand for a single-field validation error.
func Field(name, message string) *Error {
	return Validation(map[string]string{name: message})
}

// NotFoundf builds a NotFound error with a formatted message.
func NotFoundf(format string, args ...any) *Error {
	return &Error{Kind: NotFound, Message: fmt.Sprintf(format, args...)}
}

// As extracts the *Error in err's chain.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// KindOf reports the kind of err. Unclassified errors are Internal.
func KindOf(err error) Kind {
	if e, ok := As(err); ok {
		return e.Kind
	}
	return Internal
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// Title upper-cases the first letter of an entity noun ("coupon" -> "Coupon").
func Title(noun string) string {
	if noun == "" {
		return noun
	}
	return strings.ToUpper(noun[:1]) + noun[1:]
}
