package manager

import (
	"github.com/gatebox/gatebox/internal/auth"
	"github.com/gatebox/gatebox/internal/event"
)

// Event kinds raised during the authentication lifecycle.
const (
	KindPreAuthentication    event.Kind = "user-pre-authentication"
	KindAuthenticated        event.Kind = "user-authenticated"
	KindNotAuthenticated     event.Kind = "user-not-authenticated"
	KindAuthenticationFailed event.Kind = "user-authentication-failed"
	KindLoggedOut            event.Kind = "user-logged-out"
)

// PreAuthenticationEvent is raised before mechanisms run.
type PreAuthenticationEvent struct {
	Context *auth.Context
}

// Kind returns KindPreAuthentication.
func (e PreAuthenticationEvent) Kind() event.Kind { return KindPreAuthentication }

// AuthenticatedEvent is raised after a successful authentication.
type AuthenticatedEvent struct {
	Context *auth.Context
}

// Kind returns KindAuthenticated.
func (e AuthenticatedEvent) Kind() event.Kind { return KindAuthenticated }

// NotAuthenticatedEvent is raised after an unsuccessful authentication that
// produced no error, such as bad credentials.
type NotAuthenticatedEvent struct {
	Context *auth.Context
}

// Kind returns KindNotAuthenticated.
func (e NotAuthenticatedEvent) Kind() event.Kind { return KindNotAuthenticated }

// AuthenticationFailedEvent is raised when the authenticate call fails with
// an error. It carries the root cause for auditing.
type AuthenticationFailedEvent struct {
	Context *auth.Context
	Err     error
}

// Kind returns KindAuthenticationFailed.
func (e AuthenticationFailedEvent) Kind() event.Kind { return KindAuthenticationFailed }

// LoggedOutEvent is raised after a context is logged out and invalidated.
type LoggedOutEvent struct {
	Context *auth.Context
}

// Kind returns KindLoggedOut.
func (e LoggedOutEvent) Kind() event.Kind { return KindLoggedOut }
