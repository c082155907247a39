// Package manager implements the authentication orchestrator: the state
// machine coordinating session restoration, credential dispatch, mechanism
// invocation, principal population, and session binding.
package manager

import (
	"sync/atomic"

	"github.com/rs/zerolog/log"

	"github.com/gatebox/gatebox/internal/auth"
	"github.com/gatebox/gatebox/internal/authz"
	"github.com/gatebox/gatebox/internal/credential"
	"github.com/gatebox/gatebox/internal/event"
	"github.com/gatebox/gatebox/internal/identity"
	"github.com/gatebox/gatebox/internal/session"
)

// PreAuthHook runs before mechanism invocation. Returning false skips
// mechanism invocation entirely, producing a default not-authenticated
// result without consulting any mechanism.
type PreAuthHook func(c *auth.Context) bool

// Options configures a Manager. Store, Bus, and Mechanisms are required;
// everything else is optional.
type Options struct {
	// Store is the identity-store collaborator.
	Store identity.Store
	// Mechanisms are registered in order; per credential kind the last
	// mechanism that runs wins.
	Mechanisms []auth.Mechanism
	// Bus receives all lifecycle events.
	Bus *event.Bus
	// Sessions enables session support when non-nil.
	Sessions *session.Manager
	// Authorizer gates Authorize calls. When nil, Authorize permits by
	// default.
	Authorizer authz.AuthorizationManager
	// Entitlements serves entitlement lookups. When nil, lookups yield the
	// empty collection.
	Entitlements *authz.EntitlementsManager
	// Populator fills roles and groups after success. Defaults to the
	// identity-store populator.
	Populator auth.Populator
	// PreAuth is the optional pre-authentication hook.
	PreAuth PreAuthHook
}

// Manager orchestrates authentication, logout, authorization, and
// entitlement lookups. Concurrent Authenticate calls on independent contexts
// are safe; a single call runs synchronously with no internal suspension
// points.
type Manager struct {
	registry     *auth.Registry
	store        identity.Store
	bus          *event.Bus
	sessions     *session.Manager
	authorizer   authz.AuthorizationManager
	entitlements *authz.EntitlementsManager
	populator    auth.Populator
	preAuth      PreAuthHook
	mechanisms   []auth.Mechanism

	started atomic.Bool
}

// New creates a manager from the given options. Call Start before use.
func New(opts Options) *Manager {
	return &Manager{
		registry:     auth.NewRegistry(),
		store:        opts.Store,
		bus:          opts.Bus,
		sessions:     opts.Sessions,
		authorizer:   opts.Authorizer,
		entitlements: opts.Entitlements,
		populator:    opts.Populator,
		preAuth:      opts.PreAuth,
		mechanisms:   opts.Mechanisms,
	}
}

// Start validates the configuration, registers the mechanisms, and brings
// the manager into service. Missing required configuration is fatal.
func (m *Manager) Start() error {
	if m.store == nil {
		return &ConfigurationError{Reason: "no identity store provided"}
	}

	if m.bus == nil {
		return &ConfigurationError{Reason: "no event bus provided"}
	}

	if len(m.mechanisms) == 0 {
		return &ConfigurationError{Reason: "no authentication mechanisms provided"}
	}

	for _, mech := range m.mechanisms {
		if err := m.registry.Register(mech); err != nil {
			return &ConfigurationError{Reason: err.Error()}
		}
	}

	if m.populator == nil {
		m.populator = auth.NewStorePopulator(m.store)
	}

	m.logConfiguration()

	m.started.Store(true)

	return nil
}

// Stop takes the manager out of service and cancels session expiration
// timers.
func (m *Manager) Stop() {
	m.started.Store(false)

	if m.sessions != nil {
		m.sessions.Stop()
	}
}

// Authenticate runs the full authentication flow for the context: session
// restoration, credential dispatch, mechanism invocation, and session
// binding. It returns the resulting context, which may differ from the input
// when a session restoration replaced it.
//
// Bad credentials are not an error: the returned context reports
// Authenticated() false with an INVALID_CREDENTIALS result. Errors are
// uniformly wrapped in AuthenticationError.
func (m *Manager) Authenticate(c *auth.Context) (*auth.Context, error) {
	if !m.started.Load() {
		return nil, ErrNotStarted
	}

	result, err := m.doAuthenticate(c)
	if err != nil {
		m.bus.Raise(AuthenticationFailedEvent{Context: c, Err: err})

		return nil, newAuthenticationError(err)
	}

	return result, nil
}

func (m *Manager) doAuthenticate(c *auth.Context) (*auth.Context, error) {
	restored, err := m.restoreSession(c)
	if err != nil {
		return nil, err
	}

	// A valid restored session short-circuits secret verification: the
	// working context is replaced with one carrying only a trusted
	// credential for the session's owner.
	if restored != nil {
		owner := restored.Owner()
		if owner == "" {
			return nil, ErrPrincipalNotRestored
		}

		log.Trace().Str("principal", owner).Msg("performing silent re-authentication")

		c = auth.NewContext(credential.NewTrustedUsername(owner))
	}

	if err := m.performAuthentication(c); err != nil {
		return nil, err
	}

	if c.Authenticated() {
		if err := m.performSuccessfulAuthentication(c, restored); err != nil {
			return nil, err
		}
	} else {
		log.Trace().Msg("user not authenticated")

		m.bus.Raise(NotAuthenticatedEvent{Context: c})
	}

	return c, nil
}

// restoreSession loads the session the context references, if any. A context
// claiming already-authenticated state without a usable session fails fast;
// the caller explicitly requested silent re-authentication and must not be
// silently demoted.
func (m *Manager) restoreSession(c *auth.Context) (*session.Session, error) {
	claimsAuthenticated := c.Result() != nil && c.Result().Status() == auth.StatusSuccess

	if m.sessions == nil || c.SessionRef() == "" {
		if claimsAuthenticated && c.Session() == nil {
			return nil, ErrInvalidUserSession
		}

		return nil, nil
	}

	sess, err := m.sessions.Retrieve(c.SessionRef())
	if err != nil {
		return nil, err
	}

	if sess == nil || !sess.Valid() {
		if claimsAuthenticated {
			return nil, ErrInvalidUserSession
		}

		return nil, nil
	}

	log.Trace().Str("session_id", sess.ID()).Msg("restored session")

	return sess, nil
}

// performAuthentication dispatches the credential to every mechanism
// supporting its kind, in registration order. The result of the last
// mechanism that ran wins; mechanisms are expected to be mutually exclusive
// per kind in practice, and the orchestrator deliberately does not
// short-circuit on first success. Zero matching mechanisms is fatal.
func (m *Manager) performAuthentication(c *auth.Context) error {
	cred := c.Credential()
	if cred == nil {
		return auth.ErrNilCredential
	}

	var result *auth.Result

	if m.preAuth == nil || m.preAuth(c) {
		m.bus.Raise(PreAuthenticationEvent{Context: c})

		mechanisms := m.registry.MechanismsFor(cred.Kind())
		if len(mechanisms) == 0 {
			return &auth.UnsupportedCredentialError{CredentialKind: cred.Kind()}
		}

		for _, mech := range mechanisms {
			log.Trace().Str("mechanism", mech.Name()).Str("kind", string(cred.Kind())).
				Msg("invoking authentication mechanism")

			mechResult, err := mech.Authenticate(cred)
			if err != nil {
				return err
			}

			if mechResult == nil {
				log.Warn().Str("mechanism", mech.Name()).
					Msg("mechanism returned a nil result, unexpected behavior may occur")
			}

			result = mechResult
		}
	} else {
		log.Trace().Msg("pre-authentication hook returned false, skipping mechanisms")
	}

	if result == nil {
		result = auth.NewResult()
	}

	c.SetResult(result)

	return nil
}

// performSuccessfulAuthentication binds or creates the session, clears the
// consumed credential, populates roles and groups, and raises the success
// event.
func (m *Manager) performSuccessfulAuthentication(c *auth.Context, restored *session.Session) error {
	if m.sessions != nil {
		sess := restored

		if sess == nil {
			created, err := m.sessions.Create(c.Principal().Name())
			if err != nil {
				return err
			}

			sess = created
		}

		c.BindSession(sess)
	}

	c.SetCredential(nil)

	if err := m.populator.Populate(c); err != nil {
		return err
	}

	m.bus.Raise(AuthenticatedEvent{Context: c})

	log.Trace().Str("principal", c.Principal().Name()).Msg("user authenticated")

	return nil
}

// Logout invalidates the context and its bound session. Calling it on a
// context that does not report authenticated is an error, not a no-op.
func (m *Manager) Logout(c *auth.Context) error {
	if !m.started.Load() {
		return ErrNotStarted
	}

	if !c.Authenticated() {
		return ErrNotAuthenticated
	}

	log.Trace().Str("principal", c.Principal().Name()).Msg("logging out user")

	c.Invalidate()

	m.bus.Raise(LoggedOutEvent{Context: c})

	return nil
}

// Authorize checks whether the authenticated context may access the
// resource. Without a configured authorization manager it permits by
// default; callers opting out of authorization get unrestricted access.
func (m *Manager) Authorize(c *auth.Context, r authz.Resource) (bool, error) {
	if !m.started.Load() {
		return false, ErrNotStarted
	}

	if !c.Authenticated() {
		return false, ErrNotAuthenticated
	}

	if m.authorizer == nil {
		return true, nil
	}

	ok, err := m.authorizer.Authorize(r, c)
	if err != nil {
		return false, &AuthorizationError{cause: err}
	}

	return ok, nil
}

// Entitlements aggregates the context's entitlements for the resource.
func (m *Manager) Entitlements(c *auth.Context, r authz.Resource) (*authz.Collection, error) {
	if !m.started.Load() {
		return nil, ErrNotStarted
	}

	if !c.Authenticated() {
		return nil, ErrNotAuthenticated
	}

	if m.entitlements == nil {
		return authz.NewCollection("ALL"), nil
	}

	return m.entitlements.Entitlements(r, c), nil
}

// MechanismNames returns the registered mechanism names in order.
func (m *Manager) MechanismNames() []string {
	return m.registry.Names()
}

func (m *Manager) logConfiguration() {
	log.Debug().Strs("mechanisms", m.registry.Names()).
		Bool("sessions_enabled", m.sessions != nil).
		Bool("authorization_enabled", m.authorizer != nil).
		Bool("entitlements_enabled", m.entitlements != nil).
		Msg("starting authentication manager")
}
