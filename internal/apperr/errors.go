// Package apperr holds the uniform error kinds returned by the orchestration
// layer. Handlers map a kind to an HTTP status; the wrapped upstream error is
// kept for logs and errors.Is but is never rendered to API consumers.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a request-scoped failure.
type Kind int

const (
	KindUnauthorized Kind = iota + 1
	KindUpstreamFetchFailed
	KindUpstreamWriteFailed
	KindNotFound
)

func (k Kind) String() string {
	switch k {
	case KindUnauthorized:
		return "unauthorized"
	case KindUpstreamFetchFailed:
		return "upstream_fetch_failed"
	case KindUpstreamWriteFailed:
		return "upstream_write_failed"
	case KindNotFound:
		return "not_found"
	default:
		return "internal_error"
	}
}

// Error is the tagged failure value. Op names the operation ("fetch
// inventory"), ID the entity involved (location id, sku, product id).
type Error struct {
	Kind    Kind
	Op      string
	ID      string
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = e.Kind.String()
	}
	if e.ID != "" {
		msg = fmt.Sprintf("%s (%s %s)", msg, e.Op, e.ID)
	} else if e.Op != "" {
		msg = fmt.Sprintf("%s (%s)", msg, e.Op)
	}
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// UpstreamFetchFailed reports a failed or non-success read from an upstream.
func UpstreamFetchFailed(op, id, message string, err error) *Error {
	return &Error{Kind: KindUpstreamFetchFailed, Op: op, ID: id, Message: message, Err: err}
}

// UpstreamWriteFailed reports a failed upstream write or transaction commit.
func UpstreamWriteFailed(op, id, message string, err error) *Error {
	return &Error{Kind: KindUpstreamWriteFailed, Op: op, ID: id, Message: message, Err: err}
}

// NotFound reports that the upstream system of record has no such entity.
func NotFound(op, id, message string) *Error {
	return &Error{Kind: KindNotFound, Op: op, ID: id, Message: message}
}

// Unauthorized reports a missing or rejected attestation token.
func Unauthorized(err error) *Error {
	return &Error{Kind: KindUnauthorized, Message: "Unauthorized", Err: err}
}

// KindOf returns the kind of err, or zero when err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// HTTPStatus maps err to the status code the boundary layer responds with.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Code is the stable machine-readable error code for err.
func Code(err error) string {
	return KindOf(err).String()
}

// PublicMessage is the client-safe message for err. Upstream detail is
// never included.
func PublicMessage(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	return "An internal server error has occurred."
}
