// Package api implements the Sidereal backend client: request building,
// identity headers, outcome classification into a closed error taxonomy, and
// typed response decoding.
package api

import (
	"errors"
	"fmt"
)

// The taxonomy below is closed: every failure of a backend call maps to
// exactly one of these values. Sentinels are matched with errors.Is, the
// struct errors with errors.As.
var (
	// ErrInvalidURL indicates the endpoint path could not be combined with
	// the configured base URL.
	ErrInvalidURL = errors.New("invalid request url")

	// ErrInvalidRequest indicates the request could not be built (bad method,
	// unserializable body).
	ErrInvalidRequest = errors.New("invalid request")

	// ErrNoData indicates a 2xx response that was expected to carry a body
	// but did not.
	ErrNoData = errors.New("empty response body")

	// ErrDecoding indicates a response body that could not be decoded into
	// the expected type. The payload itself is never attached.
	ErrDecoding = errors.New("response decoding failed")

	// ErrTokenExpired indicates the server rejected the bearer credential as
	// expired. The client reports it; only the auth state machine decides
	// what to do about it.
	ErrTokenExpired = errors.New("token expired")

	// ErrOffline indicates the request never reached the server (connection
	// refused, unreachable network, DNS failure).
	ErrOffline = errors.New("offline")

	// ErrTimeout indicates the request or its context timed out.
	ErrTimeout = errors.New("request timed out")
)

// AuthenticationError is a 401 that is not an expiry: the credential itself
// was rejected. Message carries the server's text when one was provided.
type AuthenticationError struct {
	Message string
}

func (e *AuthenticationError) Error() string {
	if e.Message == "" {
		return "authentication failed"
	}
	return "authentication failed: " + e.Message
}

// ServerError is any non-401 error status (4xx or 5xx). Message carries the
// server's text when one was provided.
type ServerError struct {
	Code    int
	Message string
}

func (e *ServerError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server error (HTTP %d)", e.Code)
	}
	return fmt.Sprintf("server error (HTTP %d): %s", e.Code, e.Message)
}

// TransportError is a network-level failure that is neither a timeout nor a
// clear connectivity loss.
type TransportError struct {
	Cause error
}

func (e *TransportError) Error() string {
	return "transport error: " + e.Cause.Error()
}

func (e *TransportError) Unwrap() error {
	return e.Cause
}

// Retryable reports whether the caller may reasonably retry the request:
// transport-level failures and 5xx server errors. Client errors, decode
// failures, and credential problems are not retryable.
func Retryable(err error) bool {
	if errors.Is(err, ErrOffline) || errors.Is(err, ErrTimeout) {
		return true
	}
	var te *TransportError
	if errors.As(err, &te) {
		return true
	}
	var se *ServerError
	if errors.As(err, &se) {
		return se.Code >= 500
	}
	return false
}

// NeedsReauth reports whether the error means the user must sign in again.
func NeedsReauth(err error) bool {
	if errors.Is(err, ErrTokenExpired) {
		return true
	}
	var ae *AuthenticationError
	if errors.As(err, &ae) {
		return true
	}
	var se *ServerError
	if errors.As(err, &se) {
		return se.Code == 401
	}
	return false
}
