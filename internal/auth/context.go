package auth

import (
	"sort"

	"github.com/gatebox/gatebox/internal/credential"
	"github.com/gatebox/gatebox/internal/session"
)

// Context is the per-request identity context: the application view of the
// user being authenticated. It tracks the current credential, the resolved
// principal, roles, groups, free-form context data, the bound session, and
// the authentication result.
//
// Reading or writing any tracked field while a session is bound touches the
// session, extending its sliding expiration window. A context is mutated
// exclusively by the orchestrator and mechanisms during one authentication
// call; concurrent calls use independent contexts.
type Context struct {
	cred      credential.Credential
	result    *Result
	sess      *session.Session
	sessionID string

	roles       map[string]struct{}
	groups      map[string]struct{}
	contextData map[string]any
}

// NewContext creates a context carrying the credential to authenticate.
func NewContext(cred credential.Credential) *Context {
	c := newContext()
	c.cred = cred

	return c
}

// NewSessionContext creates a context referencing only a previously issued
// session id, requesting silent re-authentication.
func NewSessionContext(sessionID string) *Context {
	c := newContext()
	c.sessionID = sessionID

	return c
}

func newContext() *Context {
	return &Context{
		roles:       make(map[string]struct{}),
		groups:      make(map[string]struct{}),
		contextData: make(map[string]any),
	}
}

// touch forwards an activity signal to the bound session.
func (c *Context) touch() {
	if c.sess != nil && c.sess.Valid() {
		c.sess.Touch()
	}
}

// Credential returns the current credential. It is cleared after a
// successful authentication consumes it.
func (c *Context) Credential() credential.Credential {
	c.touch()

	return c.cred
}

// SetCredential replaces the working credential. Used by the orchestrator.
func (c *Context) SetCredential(cred credential.Credential) {
	c.touch()

	c.cred = cred
}

// SessionRef returns the session id the context was created with, before any
// session is bound.
func (c *Context) SessionRef() string {
	if c.sess != nil {
		return c.sess.ID()
	}

	return c.sessionID
}

// Session returns the bound session, or nil.
func (c *Context) Session() *session.Session { return c.sess }

// BindSession binds a session to the context. Used by the orchestrator.
// Binding an invalid session retroactively makes an otherwise successful
// context unauthenticated.
func (c *Context) BindSession(s *session.Session) {
	c.sess = s
}

// Result returns a copy of the authentication result, or nil when
// no attempt ran yet.
func (c *Context) Result() *Result {
	c.touch()

	if c.result == nil {
		return nil
	}

	return c.result.Copy()
}

// SetResult attaches the authentication result. Used by the orchestrator.
func (c *Context) SetResult(r *Result) {
	c.touch()

	c.result = r
}

// Authenticated reports whether the context holds a successful result and,
// when a session is bound, that the session is still valid.
func (c *Context) Authenticated() bool {
	if c.result == nil || c.result.Status() != StatusSuccess {
		return false
	}

	if c.sess != nil && !c.sess.Valid() {
		return false
	}

	return true
}

// Principal returns the authenticated principal, or nil when the context is
// not authenticated.
func (c *Context) Principal() *Principal {
	c.touch()

	if !c.Authenticated() {
		return nil
	}

	return c.result.Principal()
}

// Roles returns the resolved role names, sorted.
func (c *Context) Roles() []string {
	c.touch()

	return sortedNames(c.roles)
}

// SetRoles replaces the resolved roles. Used by the context populator.
func (c *Context) SetRoles(roles []string) {
	c.touch()

	c.roles = make(map[string]struct{}, len(roles))
	for _, r := range roles {
		c.roles[r] = struct{}{}
	}
}

// HasRole reports whether the context resolved the given role.
func (c *Context) HasRole(role string) bool {
	c.touch()

	_, ok := c.roles[role]

	return ok
}

// Groups returns the resolved group names, sorted.
func (c *Context) Groups() []string {
	c.touch()

	return sortedNames(c.groups)
}

// SetGroups replaces the resolved groups. Used by the context populator.
func (c *Context) SetGroups(groups []string) {
	c.touch()

	c.groups = make(map[string]struct{}, len(groups))
	for _, g := range groups {
		c.groups[g] = struct{}{}
	}
}

// HasGroup reports whether the context resolved the given group.
func (c *Context) HasGroup(group string) bool {
	c.touch()

	_, ok := c.groups[group]

	return ok
}

// Data returns the context-data value stored under key.
func (c *Context) Data(key string) any {
	c.touch()

	return c.contextData[key]
}

// SetData stores a context-data value under key.
func (c *Context) SetData(key string, value any) {
	c.touch()

	c.contextData[key] = value
}

// Invalidate clears the credential, roles, groups, context data, and result,
// and invalidates the bound session. The operation is irreversible.
func (c *Context) Invalidate() {
	c.cred = nil
	c.result = nil
	c.roles = make(map[string]struct{})
	c.groups = make(map[string]struct{})
	c.contextData = make(map[string]any)
	c.sessionID = ""

	if c.sess != nil && c.sess.Valid() {
		c.sess.Invalidate()
	}
}

func sortedNames(set map[string]struct{}) []string {
	names := make([]string, 0, len(set))
	for name := range set {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}
