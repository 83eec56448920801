// Package apperr classifies domain errors into kinds and HTTP statuses.
package apperr

import (
	"context"
	"errors"
	"net/http"
)

var (
	ErrValidation      = errors.New("validation error")
	ErrConfiguration   = errors.New("configuration error")
	ErrGatewayProtocol = errors.New("gateway protocol error")
	ErrVerification    = errors.New("webhook verification failed")
	ErrStorage         = errors.New("storage error")
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
	ErrUnauthorized    = errors.New("unauthorized")
)

// Error carries a client-facing message while matching its kind with errors.Is.
type Error struct {
	kind  error
	msg   string
	cause error
}

// New returns an error of the given kind with msg as its message.
func New(kind error, msg string) error {
	return &Error{kind: kind, msg: msg}
}

// Wrap tags cause with kind. The message is the cause's message.
func Wrap(kind error, cause error) error {
	if cause == nil {
		return nil
	}
	return &Error{kind: kind, msg: cause.Error(), cause: cause}
}

func (e *Error) Error() string { return e.msg }

func (e *Error) Unwrap() []error {
	if e.cause == nil {
		return []error{e.kind}
	}
	return []error{e.kind, e.cause}
}

func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrValidation):
		return "validation"
	case errors.Is(err, ErrConfiguration):
		return "configuration"
	case errors.Is(err, ErrVerification):
		return "verification"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrConflict):
		return "conflict"
	case errors.Is(err, ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, ErrGatewayProtocol):
		return "gateway_protocol"
	case errors.Is(err, ErrStorage):
		return "storage"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	default:
		return "internal"
	}
}

// HTTPStatus maps err to a response status. Gateway protocol, storage and
// timeout failures are all internal errors from the caller's point of view.
func HTTPStatus(err error) int {
	switch Kind(err) {
	case "":
		return http.StatusOK
	case "validation", "verification":
		return http.StatusBadRequest
	case "unauthorized":
		return http.StatusUnauthorized
	case "not_found":
		return http.StatusNotFound
	case "conflict":
		return http.StatusConflict
	case "configuration":
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Public reports whether err's message is safe to show to clients.
func Public(err error) bool {
	return HTTPStatus(err) < http.StatusInternalServerError ||
		errors.Is(err, ErrConfiguration)
}
