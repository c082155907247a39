package manager

import (
	"errors"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gatebox/gatebox/internal/auth"
	"github.com/gatebox/gatebox/internal/authz"
	"github.com/gatebox/gatebox/internal/credential"
	"github.com/gatebox/gatebox/internal/event"
	"github.com/gatebox/gatebox/internal/identity"
	"github.com/gatebox/gatebox/internal/session"
)

const sessionTimeout = 30 * time.Minute

type fixture struct {
	mgr      *Manager
	bus      *event.Bus
	clk      *clock.Mock
	store    *identity.MemoryStore
	sessions *session.Manager
}

// setup assembles a started manager over seeded identities, password and
// trusted mechanisms, and a mock clock driving session expiration.
func setup(t *testing.T, mutate func(*Options)) *fixture {
	t.Helper()

	bus := event.NewBus()
	clk := clock.NewMock()

	store := identity.NewMemoryStore(bus)
	require.NoError(t, store.AddUser(&identity.User{Name: "admin", Active: true, Password: "admin"}))
	require.NoError(t, store.AddRole(&identity.Role{Name: "administrator"}))
	require.NoError(t, store.GrantRole("admin", "administrator"))

	sessions, err := session.NewManager(session.NewMemoryStore(), bus, clk, sessionTimeout)
	require.NoError(t, err)

	opts := Options{
		Store: store,
		Mechanisms: []auth.Mechanism{
			auth.NewPasswordMechanism(store),
			auth.NewTrustedMechanism(store),
		},
		Bus:      bus,
		Sessions: sessions,
	}

	if mutate != nil {
		mutate(&opts)
	}

	mgr := New(opts)
	require.NoError(t, mgr.Start())

	return &fixture{mgr: mgr, bus: bus, clk: clk, store: store, sessions: sessions}
}

func (f *fixture) authenticate(t *testing.T) *auth.Context {
	t.Helper()

	c, err := f.mgr.Authenticate(auth.NewContext(credential.NewUsernamePassword("admin", "admin")))
	require.NoError(t, err)
	require.True(t, c.Authenticated())

	return c
}

func TestAuthenticateSuccess(t *testing.T) {
	f := setup(t, nil)

	c := f.authenticate(t)

	assert.Equal(t, "admin", c.Principal().Name())
	assert.Nil(t, c.Credential(), "consumed credential must be cleared")
	assert.Equal(t, []string{"administrator"}, c.Roles())

	require.NotNil(t, c.Session())
	assert.True(t, c.Session().Valid())
	assert.Equal(t, "admin", c.Session().Owner())
}

func TestAuthenticateWrongPassword(t *testing.T) {
	f := setup(t, nil)

	c, err := f.mgr.Authenticate(auth.NewContext(credential.NewUsernamePassword("admin", "wrong")))
	require.NoError(t, err, "bad credentials are an outcome, not an error")

	assert.False(t, c.Authenticated())
	assert.Equal(t, auth.StatusInvalidCredentials, c.Result().Status())
	assert.Nil(t, c.Session(), "rejected attempts must not create sessions")
	assert.Nil(t, c.Principal())
}

func TestAuthenticateUnknownUser(t *testing.T) {
	f := setup(t, nil)

	c, err := f.mgr.Authenticate(auth.NewContext(credential.NewUsernamePassword("ghost", "pw")))
	require.NoError(t, err)

	assert.False(t, c.Authenticated())
	assert.Equal(t, auth.StatusInvalidCredentials, c.Result().Status())
}

func TestAuthenticateUnsupportedCredentialKind(t *testing.T) {
	f := setup(t, nil)

	_, err := f.mgr.Authenticate(auth.NewContext(credential.NewOTP("admin", "admin", "123456")))
	require.Error(t, err)

	var authErr *AuthenticationError
	require.ErrorAs(t, err, &authErr)

	var unsupported *auth.UnsupportedCredentialError
	require.ErrorAs(t, err, &unsupported)
	assert.Equal(t, credential.KindOTP, unsupported.CredentialKind)
}

func TestAuthenticateNilCredential(t *testing.T) {
	f := setup(t, nil)

	_, err := f.mgr.Authenticate(auth.NewContext(nil))
	require.Error(t, err)
	assert.ErrorIs(t, err, auth.ErrNilCredential)
}

func TestSilentReauthenticationRestoresSession(t *testing.T) {
	f := setup(t, nil)

	first := f.authenticate(t)
	sessionID := first.SessionRef()
	createdAt := first.Session().CreatedAt()

	f.clk.Add(time.Minute)

	second, err := f.mgr.Authenticate(auth.NewSessionContext(sessionID))
	require.NoError(t, err)

	require.True(t, second.Authenticated())
	assert.Equal(t, "admin", second.Principal().Name())
	assert.Equal(t, sessionID, second.SessionRef(), "re-authentication must reuse the session")
	assert.Equal(t, createdAt, second.Session().CreatedAt())
	assert.Equal(t, []string{"administrator"}, second.Roles())
}

func TestReauthenticationAfterLogoutFails(t *testing.T) {
	f := setup(t, nil)

	c := f.authenticate(t)
	sessionID := c.SessionRef()

	require.NoError(t, f.mgr.Logout(c))

	_, err := f.mgr.Authenticate(auth.NewSessionContext(sessionID))
	require.Error(t, err)

	var authErr *AuthenticationError
	assert.ErrorAs(t, err, &authErr)
}

func TestReauthenticationAfterExpiryFails(t *testing.T) {
	f := setup(t, nil)

	c := f.authenticate(t)
	sessionID := c.SessionRef()

	f.clk.Add(sessionTimeout + time.Second)

	_, err := f.mgr.Authenticate(auth.NewSessionContext(sessionID))
	require.Error(t, err)
}

func TestAuthenticatedContextWithDeadSessionFailsFast(t *testing.T) {
	f := setup(t, nil)

	c := f.authenticate(t)
	c.Session().Invalidate()

	_, err := f.mgr.Authenticate(c)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidUserSession)
}

func TestLogout(t *testing.T) {
	f := setup(t, nil)

	c := f.authenticate(t)
	sess := c.Session()

	require.NoError(t, f.mgr.Logout(c))

	assert.False(t, c.Authenticated())
	assert.False(t, sess.Valid())

	require.ErrorIs(t, f.mgr.Logout(c), ErrNotAuthenticated)
}

func TestLogoutUnauthenticatedContext(t *testing.T) {
	f := setup(t, nil)

	c := auth.NewContext(credential.NewUsernamePassword("admin", "admin"))

	require.ErrorIs(t, f.mgr.Logout(c), ErrNotAuthenticated)
}

func TestAuthorizeFailsOpenWithoutAuthorizer(t *testing.T) {
	f := setup(t, nil)

	c := f.authenticate(t)

	ok, err := f.mgr.Authorize(c, "any-resource")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestAuthorizeRequiresAuthentication(t *testing.T) {
	f := setup(t, nil)

	c := auth.NewContext(credential.NewUsernamePassword("admin", "admin"))

	_, err := f.mgr.Authorize(c, "any-resource")
	require.ErrorIs(t, err, ErrNotAuthenticated)
}

func TestAuthorizeWithRoleAuthorizer(t *testing.T) {
	f := setup(t, func(o *Options) {
		o.Authorizer = authz.NewRoleAuthorizer(map[authz.Resource][]string{
			"admin-panel": {"administrator"},
			"vault":       {"secret-keeper"},
		})
	})

	c := f.authenticate(t)

	ok, err := f.mgr.Authorize(c, "admin-panel")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = f.mgr.Authorize(c, "vault")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestEntitlements(t *testing.T) {
	store := authz.NewMemoryStore()
	store.AddUserEntitlements("files", "admin", authz.NewCollection("U", "read"))
	store.AddRoleEntitlements("files", "administrator", authz.NewCollection("R", "write"))

	f := setup(t, func(o *Options) {
		o.Entitlements = authz.NewEntitlementsManager(store)
	})

	c := f.authenticate(t)

	got, err := f.mgr.Entitlements(c, "files")
	require.NoError(t, err)
	assert.Equal(t, []authz.Entitlement{"read", "write"}, got.Entitlements())
}

func TestEntitlementsWithoutManagerIsEmpty(t *testing.T) {
	f := setup(t, nil)

	c := f.authenticate(t)

	got, err := f.mgr.Entitlements(c, "files")
	require.NoError(t, err)
	assert.Zero(t, got.Len())
}

func TestOperationsBeforeStart(t *testing.T) {
	mgr := New(Options{})

	_, err := mgr.Authenticate(auth.NewContext(credential.NewUsernamePassword("a", "b")))
	require.ErrorIs(t, err, ErrNotStarted)

	require.ErrorIs(t, mgr.Logout(auth.NewContext(nil)), ErrNotStarted)

	_, err = mgr.Authorize(auth.NewContext(nil), "r")
	require.ErrorIs(t, err, ErrNotStarted)
}

func TestStartValidatesConfiguration(t *testing.T) {
	bus := event.NewBus()
	store := identity.NewMemoryStore(nil)
	mechanisms := []auth.Mechanism{auth.NewPasswordMechanism(store)}

	tests := []struct {
		name string
		opts Options
	}{
		{"missing store", Options{Bus: bus, Mechanisms: mechanisms}},
		{"missing bus", Options{Store: store, Mechanisms: mechanisms}},
		{"missing mechanisms", Options{Store: store, Bus: bus}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.opts).Start()
			require.Error(t, err)

			var confErr *ConfigurationError
			assert.ErrorAs(t, err, &confErr)
		})
	}
}

// outcomeMechanism always produces a fixed result for password credentials.
type outcomeMechanism struct {
	name    string
	outcome func() *auth.Result
}

func (m *outcomeMechanism) Name() string { return m.name }

func (m *outcomeMechanism) Info() []auth.Info {
	return []auth.Info{{Kind: credential.KindUsernamePassword, Description: m.name}}
}

func (m *outcomeMechanism) Authenticate(credential.Credential) (*auth.Result, error) {
	return m.outcome(), nil
}

func TestLastMechanismResultWins(t *testing.T) {
	succeed := &outcomeMechanism{name: "succeed", outcome: func() *auth.Result {
		r := auth.NewResult()
		r.Success(auth.NewPrincipal("admin"))

		return r
	}}
	reject := &outcomeMechanism{name: "reject", outcome: func() *auth.Result {
		r := auth.NewResult()
		r.InvalidCredentials()

		return r
	}}

	f := setup(t, func(o *Options) {
		o.Mechanisms = []auth.Mechanism{succeed, reject}
	})

	c, err := f.mgr.Authenticate(auth.NewContext(credential.NewUsernamePassword("admin", "admin")))
	require.NoError(t, err)

	// Every matching mechanism runs; the result of the last one stands even
	// when an earlier one succeeded.
	assert.False(t, c.Authenticated())
	assert.Equal(t, auth.StatusInvalidCredentials, c.Result().Status())
}

func TestPreAuthHookSkipsMechanisms(t *testing.T) {
	var ran bool

	mech := &outcomeMechanism{name: "never", outcome: func() *auth.Result {
		ran = true

		return auth.NewResult()
	}}

	f := setup(t, func(o *Options) {
		o.Mechanisms = []auth.Mechanism{mech}
		o.PreAuth = func(*auth.Context) bool { return false }
	})

	c, err := f.mgr.Authenticate(auth.NewContext(credential.NewUsernamePassword("admin", "admin")))
	require.NoError(t, err)

	assert.False(t, ran, "pre-auth veto must skip mechanism invocation")
	assert.False(t, c.Authenticated())
	assert.Equal(t, auth.StatusFailed, c.Result().Status())
}

func TestLifecycleEvents(t *testing.T) {
	f := setup(t, nil)

	var kinds []event.Kind

	err := f.bus.AddObserver(event.ObserverFunc{
		Kinds: []event.Kind{
			KindPreAuthentication,
			KindAuthenticated,
			KindNotAuthenticated,
			KindAuthenticationFailed,
			KindLoggedOut,
		},
		Fn: func(e event.Event) { kinds = append(kinds, e.Kind()) },
	})
	require.NoError(t, err)

	c := f.authenticate(t)
	require.NoError(t, f.mgr.Logout(c))

	rejected, err := f.mgr.Authenticate(auth.NewContext(credential.NewUsernamePassword("admin", "wrong")))
	require.NoError(t, err)
	require.False(t, rejected.Authenticated())

	_, err = f.mgr.Authenticate(auth.NewContext(nil))
	require.Error(t, err)

	assert.Equal(t, []event.Kind{
		KindPreAuthentication,
		KindAuthenticated,
		KindLoggedOut,
		KindPreAuthentication,
		KindNotAuthenticated,
		KindAuthenticationFailed,
	}, kinds)
}

func TestMechanismErrorIsWrapped(t *testing.T) {
	boom := errors.New("backend unavailable")

	failing := &outcomeMechanism{name: "failing", outcome: nil}

	f := setup(t, func(o *Options) {
		o.Mechanisms = []auth.Mechanism{failingMechanism{inner: failing, err: boom}}
	})

	_, err := f.mgr.Authenticate(auth.NewContext(credential.NewUsernamePassword("admin", "admin")))
	require.Error(t, err)

	var authErr *AuthenticationError
	require.ErrorAs(t, err, &authErr)
	assert.ErrorIs(t, err, boom)
}

type failingMechanism struct {
	inner *outcomeMechanism
	err   error
}

func (m failingMechanism) Name() string      { return m.inner.Name() }
func (m failingMechanism) Info() []auth.Info { return m.inner.Info() }

func (m failingMechanism) Authenticate(credential.Credential) (*auth.Result, error) {
	return nil, m.err
}
