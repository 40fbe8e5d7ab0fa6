package workbench

import (
	"errors"
	"fmt"
	"time"
)

// TimeoutError indicates an API call exceeded its read or connect deadline.
// Timeouts are transient and eligible for retry.
type TimeoutError struct {
	// Action is the API action that timed out
	Action string

	// Timeout is the deadline that was exceeded
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("workbench action %q timed out after %s", e.Action, e.Timeout)
}

// ConnectionError indicates the server could not be reached at the network
// level. Connection errors are transient and eligible for retry.
type ConnectionError struct {
	// Action is the API action that failed
	Action string

	// Cause is the underlying network error
	Cause error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("workbench action %q connection failed: %v", e.Action, e.Cause)
}

func (e *ConnectionError) Unwrap() error {
	return e.Cause
}

// AuthError indicates the server rejected the credentials (HTTP 401 or 403).
// Retrying cannot fix bad credentials, so these are never retried.
type AuthError struct {
	// Action is the API action that was rejected
	Action string

	// StatusCode is the HTTP status returned (401 or 403)
	StatusCode int

	// Message is the response body, if any
	Message string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("workbench action %q authentication failed (status %d): %s",
		e.Action, e.StatusCode, e.Message)
}

// APIError indicates a non-2xx HTTP response other than an auth rejection.
// These represent a deterministic request/server-state mismatch and are
// never retried.
type APIError struct {
	// Action is the API action that failed
	Action string

	// StatusCode is the HTTP status returned
	StatusCode int

	// Message is the response body, if any
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("workbench action %q failed (status %d): %s",
		e.Action, e.StatusCode, e.Message)
}

// ParseError indicates the server returned a payload that could not be
// decoded. Malformed payloads are deterministic and never retried.
type ParseError struct {
	// Action is the API action whose response failed to decode
	Action string

	// Cause is the underlying decode error
	Cause error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("workbench action %q response parse error: %v", e.Action, e.Cause)
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}

// retryable reports whether an error is a transient transport fault worth
// retrying. Only timeouts and connection-level failures qualify.
func retryable(err error) bool {
	var timeoutErr *TimeoutError
	if errors.As(err, &timeoutErr) {
		return true
	}
	var connErr *ConnectionError
	return errors.As(err, &connErr)
}
