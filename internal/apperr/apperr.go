// Package apperr classifies request failures so the HTTP layer can map them
// to status codes.
package apperr

import (
	"errors"
	"net/http"
)

type Kind int

const (
	KindQueryFailure Kind = iota
	KindInvalidParameter
	KindNotFound
	KindUnavailable
)

func (k Kind) String() string {
	switch k {
	case KindInvalidParameter:
		return "invalid_parameter"
	case KindNotFound:
		return "not_found"
	case KindUnavailable:
		return "service_unavailable"
	default:
		return "query_failure"
	}
}

type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Kind.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

func InvalidParameter(msg string) error {
	return &Error{Kind: KindInvalidParameter, Message: msg}
}

func NotFound(msg string) error {
	return &Error{Kind: KindNotFound, Message: msg}
}

// QueryFailure wraps a data source error. The message is the underlying
// error text.
func QueryFailure(err error) error {
	return &Error{Kind: KindQueryFailure, Err: err}
}

func Unavailable(err error) error {
	return &Error{Kind: KindUnavailable, Err: err}
}

// KindOf reports the kind of err. Errors not produced by this package are
// query failures.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindQueryFailure
}

func Status(err error) int {
	switch KindOf(err) {
	case KindInvalidParameter:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
