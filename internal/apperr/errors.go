package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind is the closed set of failure classes a request can end in.
// Every boundary (handlers, middleware) must switch on Kind, never on message text.
type Kind int

const (
	KindInternal Kind = iota
	KindUnauthorized
	KindValidation
	KindModerationRejected
	KindConflict
	KindNotFound
	KindUpstreamUnavailable
	KindRateLimited
)

func (k Kind) String() string {
	switch k {
	case KindUnauthorized:
		return "unauthorized"
	case KindValidation:
		return "validation"
	case KindModerationRejected:
		return "moderation_rejected"
	case KindConflict:
		return "conflict"
	case KindNotFound:
		return "not_found"
	case KindUpstreamUnavailable:
		return "upstream_unavailable"
	case KindRateLimited:
		return "rate_limited"
	default:
		return "internal"
	}
}

// Error is the tagged error carried across service boundaries.
type Error struct {
	Kind    Kind
	Message string

	// Categories is set only for KindModerationRejected.
	Categories []string
	// Index points at the offending item of a batch input, -1 when not applicable.
	Index int

	Err error
}

func (e *Error) Error() string {
	if e.Err != nil && e.Message == "" {
		return e.Err.Error()
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func newErr(k Kind, msg string, err error) *Error {
	return &Error{Kind: k, Message: msg, Index: -1, Err: err}
}

func Unauthorized(msg string) *Error { return newErr(KindUnauthorized, msg, nil) }

func Validation(msg string) *Error { return newErr(KindValidation, msg, nil) }

// ValidationAt reports a validation failure on item i of a batch input.
func ValidationAt(i int, msg string) *Error {
	e := newErr(KindValidation, msg, nil)
	e.Index = i
	return e
}

func ModerationRejected(msg string, categories []string) *Error {
	e := newErr(KindModerationRejected, msg, nil)
	e.Categories = categories
	return e
}

func Conflict(msg string) *Error { return newErr(KindConflict, msg, nil) }

func NotFound(msg string) *Error { return newErr(KindNotFound, msg, nil) }

func Upstream(msg string, err error) *Error { return newErr(KindUpstreamUnavailable, msg, err) }

func RateLimited(msg string) *Error { return newErr(KindRateLimited, msg, nil) }

func Internal(msg string, err error) *Error { return newErr(KindInternal, msg, err) }

// As extracts the tagged error from err's chain.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// KindOf classifies err; untagged errors are KindInternal.
func KindOf(err error) Kind {
	if e, ok := As(err); ok {
		return e.Kind
	}
	return KindInternal
}

// Is reports whether err carries kind k.
func Is(err error, k Kind) bool {
	return err != nil && KindOf(err) == k
}

// Status maps a Kind to its HTTP status code.
func Status(k Kind) int {
	switch k {
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindValidation, KindModerationRejected:
		return http.StatusBadRequest
	case KindConflict:
		return http.StatusConflict
	case KindNotFound:
		return http.StatusNotFound
	case KindUpstreamUnavailable:
		return http.StatusServiceUnavailable
	case KindRateLimited:
		return http.StatusTooManyRequests
	case KindInternal:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
