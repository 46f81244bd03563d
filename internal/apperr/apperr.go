// Package apperr is the error taxonomy shared by services and handlers.
// Services return *Error values; handlers turn them into a status code and a
// public message without leaking the wrapped cause.
package apperr

import (
	"errors"
	"net/http"
)

type Kind int

const (
	KindUnexpected Kind = iota
	KindValidation
	KindConflict
	KindNotFound
	KindAuth
)

// sentinels for errors.Is matching by kind
var (
	ErrUnexpected = errors.New("unexpected error")
	ErrValidation = errors.New("validation error")
	ErrConflict   = errors.New("conflict")
	ErrNotFound   = errors.New("not found")
	ErrAuth       = errors.New("unauthorized")
)

// UnexpectedMessage is the only text a client sees for KindUnexpected.
const UnexpectedMessage = "An unexpected error occurred"

// Error carries a public message and the internal cause.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	return target == sentinel(e.Kind)
}

func sentinel(k Kind) error {
	switch k {
	case KindValidation:
		return ErrValidation
	case KindConflict:
		return ErrConflict
	case KindNotFound:
		return ErrNotFound
	case KindAuth:
		return ErrAuth
	default:
		return ErrUnexpected
	}
}

func Validation(msg string) error { return &Error{Kind: KindValidation, Message: msg} }

func Conflict(msg string, cause error) error {
	return &Error{Kind: KindConflict, Message: msg, Err: cause}
}

func NotFound(msg string) error { return &Error{Kind: KindNotFound, Message: msg} }

func Auth(msg string, cause error) error {
	return &Error{Kind: KindAuth, Message: msg, Err: cause}
}

func Unexpected(cause error) error {
	return &Error{Kind: KindUnexpected, Message: UnexpectedMessage, Err: cause}
}

// KindOf returns the kind of the first *Error in err's chain. Plain errors
// are unexpected.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnexpected
}

// Status maps err to an HTTP status code.
func Status(err error) int {
	switch KindOf(err) {
	case KindValidation, KindConflict:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindAuth:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// Message returns the client-safe message for err.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Kind != KindUnexpected {
		return e.Message
	}
	return UnexpectedMessage
}
