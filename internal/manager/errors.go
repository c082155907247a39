package manager

import (
	"errors"
	"fmt"
)

var (
	// ErrNotStarted is returned when an operation is invoked on a manager
	// that was not started.
	ErrNotStarted = errors.New("manager is not started")

	// ErrNotAuthenticated is returned when logout or authorize is invoked on
	// a context that does not report authenticated.
	ErrNotAuthenticated = errors.New("user context is not authenticated")

	// ErrInvalidUserSession is returned when a context claiming
	// already-authenticated state references a session that no longer exists
	// or is invalid.
	ErrInvalidUserSession = errors.New("invalid or expired user session")

	// ErrPrincipalNotRestored is returned when a restored session carries no
	// owning principal to re-authenticate.
	ErrPrincipalNotRestored = errors.New("principal could not be restored from session")
)

// ConfigurationError reports missing required startup configuration. It is
// fatal and prevents the manager from starting.
type ConfigurationError struct {
	Reason string
}

// Error implements the error interface.
func (e *ConfigurationError) Error() string {
	return "configuration error: " + e.Reason
}

// AuthenticationError is the uniform wrapper for any failure during an
// authenticate call. Callers never see raw lower-level errors; the root
// cause is available through Unwrap.
type AuthenticationError struct {
	cause error
}

func newAuthenticationError(cause error) *AuthenticationError {
	return &AuthenticationError{cause: cause}
}

// Error implements the error interface.
func (e *AuthenticationError) Error() string {
	return fmt.Sprintf("authentication failed: %v", e.cause)
}

// Unwrap returns the root cause.
func (e *AuthenticationError) Unwrap() error { return e.cause }

// AuthorizationError is the uniform wrapper for failures during an authorize
// call.
type AuthorizationError struct {
	cause error
}

// Error implements the error interface.
func (e *AuthorizationError) Error() string {
	return fmt.Sprintf("authorization failed: %v", e.cause)
}

// Unwrap returns the root cause.
func (e *AuthorizationError) Unwrap() error { return e.cause }
