package api

import (
	"errors"
	"fmt"
)

// Kind classifies a failed request. Classification happens exactly once, in
// this package; flows translate kinds into user-facing copy and never
// re-inspect transport details.
type Kind int

const (
	// KindUnauthorized means the server rejected our credential. The session
	// store has already been cleared by the time the caller sees this; the
	// caller's only job is to route the user to the login page.
	KindUnauthorized Kind = iota
	// KindServerRejected means the server answered with a non-success status
	// other than an auth failure. Message carries the server's own words when
	// it provided any.
	KindServerRejected
	// KindNoResponse means the request went out but nothing came back
	// (connection refused, DNS failure, timeout).
	KindNoResponse
	// KindUnexpected covers everything else: the request could not even be
	// constructed or the response could not be decoded.
	KindUnexpected
)

// String returns a short name for the kind, used in logs.
func (k Kind) String() string {
	switch k {
	case KindUnauthorized:
		return "unauthorized"
	case KindServerRejected:
		return "server_rejected"
	case KindNoResponse:
		return "no_response"
	default:
		return "unexpected"
	}
}

// Error is the classified failure for a single request.
type Error struct {
	Kind    Kind
	Message string // user-presentable; server-provided for KindServerRejected
	Status  int    // HTTP status, 0 when no response arrived
	cause   error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("request failed (%s)", e.Kind)
}

func (e *Error) Unwrap() error { return e.cause }

// IsUnauthorized reports whether err is a classified auth failure.
func IsUnauthorized(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Kind == KindUnauthorized
}

// IsNoResponse reports whether err is a connectivity failure.
func IsNoResponse(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Kind == KindNoResponse
}

// AsError extracts the classified error, if any.
func AsError(err error) (*Error, bool) {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// ValidationError is a flow-level failure raised before any network call.
// Field names the offending form field so pages can point at it.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// IsValidation reports whether err is a pre-flight validation failure and
// returns it when so.
func IsValidation(err error) (*ValidationError, bool) {
	var v *ValidationError
	if errors.As(err, &v) {
		return v, true
	}
	return nil, false
}
