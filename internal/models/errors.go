package models

import "errors"

// ErrorKind tags a failed recipe search in the response envelope.
type ErrorKind string

// ErrorKind enum values.
const (
	KindValidation          ErrorKind = "ValidationError"
	KindConfiguration       ErrorKind = "ConfigurationError"
	KindUpstreamUnavailable ErrorKind = "UpstreamUnavailable"
	KindIndexUnavailable    ErrorKind = "IndexUnavailable"
	KindMalformedResponse   ErrorKind = "MalformedResponse"
	KindInternal            ErrorKind = "InternalError"
)

// Sentinel errors wrapped by every layer of the search pipeline.
var (
	ErrValidation          = errors.New("validation error")
	ErrConfiguration       = errors.New("configuration error")
	ErrUpstreamUnavailable = errors.New("embedding service unavailable")
	ErrIndexUnavailable    = errors.New("vector index unavailable")
	ErrMalformedResponse   = errors.New("malformed upstream response")
)

// KindOf maps an error chain onto the error taxonomy. Errors that wrap none
// of the sentinels are internal.
func KindOf(err error) ErrorKind {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrValidation):
		return KindValidation
	case errors.Is(err, ErrConfiguration):
		return KindConfiguration
	case errors.Is(err, ErrMalformedResponse):
		return KindMalformedResponse
	case errors.Is(err, ErrIndexUnavailable):
		return KindIndexUnavailable
	case errors.Is(err, ErrUpstreamUnavailable):
		return KindUpstreamUnavailable
	default:
		return KindInternal
	}
}
