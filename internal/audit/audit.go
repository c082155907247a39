// Package audit records security-relevant outcomes of the authentication
// lifecycle. An Observer on the event bus translates lifecycle events into
// audit records and hands them to a Provider.
package audit

import (
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/gatebox/gatebox/internal/auth"
	"github.com/gatebox/gatebox/internal/event"
	"github.com/gatebox/gatebox/internal/manager"
	"github.com/gatebox/gatebox/internal/session"
)

// Type classifies an audit record.
type Type string

const (
	// TypeAuthentication covers successful and attempted authentications.
	TypeAuthentication Type = "AUTHENTICATION"
	// TypeLogout covers explicit logouts.
	TypeLogout Type = "LOGOUT"
	// TypeSession covers session lifecycle outcomes such as expiration.
	TypeSession Type = "SESSION"
	// TypeError covers authentication failures carrying an error.
	TypeError Type = "ERROR"
)

// Record is one audit entry.
type Record struct {
	// Type classifies the record.
	Type Type
	// Principal is the affected principal name, empty when unknown.
	Principal string
	// SessionID is the affected session id, empty when no session is involved.
	SessionID string
	// Description is the human-readable outcome.
	Description string
	// Err carries the failure cause for TypeError records.
	Err error
}

// Provider persists audit records. Implementations must tolerate concurrent
// calls; records arrive on the threads raising lifecycle events.
type Provider interface {
	Audit(r Record)
}

// LogProvider writes audit records through zerolog.
type LogProvider struct {
	logger zerolog.Logger
}

// NewLogProvider creates a provider over the global logger.
func NewLogProvider() *LogProvider {
	return &LogProvider{logger: log.With().Str("component", "audit").Logger()}
}

// Audit writes one record. Error records log at warn level.
func (p *LogProvider) Audit(r Record) {
	evt := p.logger.Info()
	if r.Type == TypeError {
		evt = p.logger.Warn().Err(r.Err)
	}

	evt.Str("audit_type", string(r.Type)).
		Str("principal", r.Principal).
		Str("session_id", r.SessionID).
		Msg(r.Description)
}

// Observer translates authentication and session lifecycle events into audit
// records.
type Observer struct {
	provider Provider
}

// NewObserver creates an audit observer over the given provider.
func NewObserver(provider Provider) *Observer {
	return &Observer{provider: provider}
}

// Observes declares the audited lifecycle kinds.
func (o *Observer) Observes() []event.Kind {
	return []event.Kind{
		manager.KindAuthenticated,
		manager.KindNotAuthenticated,
		manager.KindAuthenticationFailed,
		manager.KindLoggedOut,
		session.KindExpired,
		session.KindInvalidated,
	}
}

// Handle translates one lifecycle event into an audit record.
func (o *Observer) Handle(e event.Event) {
	switch ev := e.(type) {
	case manager.AuthenticatedEvent:
		o.provider.Audit(Record{
			Type:        TypeAuthentication,
			Principal:   principalOf(ev.Context),
			SessionID:   ev.Context.SessionRef(),
			Description: "user authenticated",
		})
	case manager.NotAuthenticatedEvent:
		o.provider.Audit(Record{
			Type:        TypeAuthentication,
			Principal:   userNameOf(ev.Context),
			Description: "authentication rejected",
		})
	case manager.AuthenticationFailedEvent:
		o.provider.Audit(Record{
			Type:        TypeError,
			Principal:   userNameOf(ev.Context),
			Description: "authentication failed",
			Err:         ev.Err,
		})
	case manager.LoggedOutEvent:
		o.provider.Audit(Record{
			Type:        TypeLogout,
			Description: "user logged out",
		})
	case session.ExpiredEvent:
		o.provider.Audit(Record{
			Type:        TypeSession,
			Principal:   ev.Session.Owner(),
			SessionID:   ev.Session.ID(),
			Description: "session expired",
		})
	case session.InvalidatedEvent:
		o.provider.Audit(Record{
			Type:        TypeSession,
			Principal:   ev.Session.Owner(),
			SessionID:   ev.Session.ID(),
			Description: "session invalidated",
		})
	}
}

func principalOf(c *auth.Context) string {
	if p := c.Principal(); p != nil {
		return p.Name()
	}

	return ""
}

// userNameOf reads the attempted username off the pending credential. After
// a success the credential is cleared, so this only serves rejection paths.
func userNameOf(c *auth.Context) string {
	if cred := c.Credential(); cred != nil {
		return cred.UserName()
	}

	return ""
}
