package weather

import (
	"errors"
	"net/http"
)

// Kind classifies a request failure. The values are the stable codes exposed
// in the JSON error body; clients switch on them, so they must not change.
type Kind string

const (
	KindValidation  Kind = "VALIDATION_ERROR"
	KindNotFound    Kind = "CITY_NOT_FOUND"
	KindRateLimited Kind = "RATE_LIMITED"
	KindTimeout     Kind = "TIMEOUT"
	KindUpstream    Kind = "UPSTREAM_ERROR"
	KindConfig      Kind = "CONFIGURATION_ERROR"
	KindInternal    Kind = "INTERNAL_ERROR"
)

// Retryable reports whether a client may usefully retry the same request.
func (k Kind) Retryable() bool {
	switch k {
	case KindRateLimited, KindTimeout, KindUpstream:
		return true
	}
	return false
}

// HTTPStatus returns the response status for a failure of this kind.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindRateLimited:
		return http.StatusTooManyRequests
	case KindTimeout, KindUpstream:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Error is the single failure value passed between pipeline stages. Message is
// user-safe: it never carries the credential, upstream URLs, or raw provider
// bodies; those stay in the logs.
type Error struct {
	Kind    Kind
	Message string

	// RetryAfter is the suggested wait in seconds for rate-limited requests;
	// zero when not applicable.
	RetryAfter int
}

func (e *Error) Error() string {
	return e.Message
}

// NewError builds an Error of the given kind.
func NewError(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// AsError converts any error into an *Error. Errors that did not originate in
// this package are treated as internal bugs and get a generic message.
func AsError(err error) *Error {
	var werr *Error
	if errors.As(err, &werr) {
		return werr
	}
	return NewError(KindInternal, "an unexpected error occurred, please try again later")
}
