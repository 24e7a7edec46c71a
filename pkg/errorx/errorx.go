package errorx

import (
	"errors"
	"fmt"
)

// Kind classifies an error for callers that need to react to it (HTTP status mapping,
// whether to surface it to the user).
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindAuth
	KindQuery
	KindStorage
	KindNotFound
	KindForbidden
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAuth:
		return "auth"
	case KindQuery:
		return "query"
	case KindStorage:
		return "storage"
	case KindNotFound:
		return "not_found"
	case KindForbidden:
		return "forbidden"
	default:
		return "internal"
	}
}

// Error is a domain error carrying a Kind and an optional wrapped cause.
type Error struct {
	Kind  Kind
	Msg   string
	cause error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.cause)
	}
	return e.Msg
}

func (e *Error) Unwrap() error {
	return e.cause
}

// New creates an Error without a cause.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

// Newf creates an Error with a formatted message.
func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Wrap attaches a kind and message to an underlying error.
func Wrap(err error, kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg, cause: err}
}

// Wrapf is Wrap with a formatted message.
func Wrapf(err error, kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...), cause: err}
}

// Validation reports a malformed or missing required field. These are raised before any
// request leaves the process.
func Validation(msg string) *Error {
	return New(KindValidation, msg)
}

// Query wraps a failed read or write against the row store.
func Query(err error, msg string) *Error {
	return Wrap(err, KindQuery, msg)
}

// Storage wraps a failed blob store operation.
func Storage(err error, msg string) *Error {
	return Wrap(err, KindStorage, msg)
}

// Auth reports rejected credentials or a duplicate sign-up.
func Auth(msg string) *Error {
	return New(KindAuth, msg)
}

// ErrEmptyMessage is returned when a blank message is sent. Nothing is written.
var ErrEmptyMessage = errors.New("message is empty")

// KindOf returns the Kind of the first *Error in err's chain, or KindInternal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
