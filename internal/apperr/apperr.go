// Package apperr classifies request failures so the HTTP boundary can turn
// them into a single response envelope.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind is the failure class of an error. Its string value is the code sent to
// clients in the error envelope.
type Kind string

const (
	KindInvalidInput Kind = "invalid_input"
	KindUnauthorized Kind = "unauthorized"
	KindNotFound     Kind = "not_found"
	KindConflict     Kind = "conflict"

	// Backend failures. They all surface as "internal" to clients.
	KindQuery     Kind = "query_failed"
	KindTranslate Kind = "translate_failed"
	KindStore     Kind = "store_failed"
	KindIdentity  Kind = "identity_failed"
	KindInternal  Kind = "internal"
)

// HTTPStatus returns the status code a response for this kind carries.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindInvalidInput:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Code is the public error code for the kind. Backend kinds collapse into
// "internal" so callers never learn which collaborator failed.
func (k Kind) Code() string {
	if k.HTTPStatus() == http.StatusInternalServerError {
		return string(KindInternal)
	}
	return string(k)
}

// Error is a classified failure of the operation Op. Msg, when set, is shown
// to clients of a client error in place of Err's text.
type Error struct {
	Kind Kind
	Op   string
	Err  error
	Msg  string
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// E builds an *Error.
func E(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// Invalid builds an invalid input error with a client facing message.
func Invalid(op, format string, a ...any) *Error {
	return &Error{Kind: KindInvalidInput, Op: op, Err: fmt.Errorf(format, a...)}
}

// KindOf reports the kind of the outermost *Error in err's chain, or
// KindInternal if there is none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Message is the text that may be shown to a client for err. Client errors
// carry their cause; everything else gets a generic message.
func Message(err error) string {
	var e *Error
	if !errors.As(err, &e) || e.Kind.HTTPStatus() == http.StatusInternalServerError {
		return "Internal Server Error"
	}
	switch {
	case e.Msg != "":
		return e.Msg
	case e.Err == nil:
		return string(e.Kind)
	}
	return e.Err.Error()
}
