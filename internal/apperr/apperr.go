// Package apperr defines the error kinds exchanged between services and
// handlers, and their mapping to HTTP responses.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindNotFound
	KindNoTopics
	KindInsufficientTopics
	KindGenerationInProgress
	KindStoreIndexMissing
	KindStoreUnavailable
	KindExternalAPI
)

// Error carries a kind, a user-facing message and an optional upstream
// status code (meaningful for external API passthrough, e.g. 429).
type Error struct {
	Kind     Kind
	Message  string
	Upstream int
	Debug    string
	err      error
}

func (e *Error) Error() string {
	if e.err != nil {
		return e.Message + ": " + e.err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.err }

func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func Wrap(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Message: msg, err: err}
}

func Validation(msg string) *Error { return New(KindValidation, msg) }
func NotFound(msg string) *Error   { return New(KindNotFound, msg) }

// External builds an external-API error keeping the upstream status where
// it is meaningful to the caller (408/422/429).
func External(status int, msg string) *Error {
	return &Error{Kind: KindExternalAPI, Message: msg, Upstream: status}
}

// KindOf extracts the kind from any error in the chain, defaulting to
// KindInternal for plain errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// HTTPStatus maps an error to the response status code.
func HTTPStatus(err error) int {
	var e *Error
	if !errors.As(err, &e) {
		return http.StatusInternalServerError
	}
	switch e.Kind {
	case KindValidation, KindNoTopics, KindInsufficientTopics:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindGenerationInProgress:
		return http.StatusConflict
	case KindExternalAPI:
		switch e.Upstream {
		case http.StatusRequestTimeout, http.StatusUnprocessableEntity, http.StatusTooManyRequests:
			return e.Upstream
		}
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// Message returns the sanitized user-facing message. Raw upstream bodies
// stay server-side; only Debug is exposed, truncated, on 400 responses.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return "internal error"
}

func DebugField(err error) string {
	var e *Error
	if !errors.As(err, &e) || e.Debug == "" {
		return ""
	}
	if len(e.Debug) > 200 {
		return e.Debug[:200]
	}
	return e.Debug
}
