package auth

import (
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gatebox/gatebox/internal/credential"
	"github.com/gatebox/gatebox/internal/event"
	"github.com/gatebox/gatebox/internal/session"
)

// newBoundContext builds an authenticated context bound to a fresh session
// driven by the returned mock clock.
func newBoundContext(t *testing.T) (*Context, *session.Session, *clock.Mock) {
	t.Helper()

	clk := clock.NewMock()

	sessions, err := session.NewManager(session.NewMemoryStore(), event.NewBus(), clk, time.Hour)
	require.NoError(t, err)

	sess, err := sessions.Create("alice")
	require.NoError(t, err)

	c := NewContext(credential.NewUsernamePassword("alice", "s3cret"))

	result := NewResult()
	result.Success(NewPrincipal("alice"))
	c.SetResult(result)
	c.BindSession(sess)

	return c, sess, clk
}

func TestAuthenticatedRequiresSuccessResult(t *testing.T) {
	c := NewContext(credential.NewUsernamePassword("alice", "s3cret"))
	assert.False(t, c.Authenticated(), "no result yet")

	result := NewResult()
	result.InvalidCredentials()
	c.SetResult(result)
	assert.False(t, c.Authenticated())

	result = NewResult()
	result.Success(NewPrincipal("alice"))
	c.SetResult(result)
	assert.True(t, c.Authenticated(), "success without session is authenticated")
}

func TestAuthenticatedRequiresValidSession(t *testing.T) {
	c, sess, _ := newBoundContext(t)

	require.True(t, c.Authenticated())

	sess.Invalidate()

	assert.False(t, c.Authenticated(), "invalid session must veto the success result")
	assert.Nil(t, c.Principal())
}

func TestAccessTouchesBoundSession(t *testing.T) {
	c, sess, clk := newBoundContext(t)

	clk.Add(time.Minute)
	before := sess.LastAccess()

	clk.Add(time.Minute)
	c.Roles()

	assert.True(t, sess.LastAccess().After(before), "context access must refresh the session")
}

func TestSessionRefFollowsBoundSession(t *testing.T) {
	c := NewSessionContext("issued-id")
	assert.Equal(t, "issued-id", c.SessionRef())

	bound, sess, _ := newBoundContext(t)
	assert.Equal(t, sess.ID(), bound.SessionRef())
}

func TestResultReturnsIndependentCopy(t *testing.T) {
	c := NewContext(credential.NewUsernamePassword("alice", "s3cret"))

	result := NewResult()
	result.Success(NewPrincipal("alice"))
	c.SetResult(result)

	got := c.Result()
	got.InvalidCredentials()

	assert.True(t, c.Authenticated(), "mutating the returned result must not affect the context")
}

func TestContextData(t *testing.T) {
	c := NewContext(credential.NewUsernamePassword("alice", "s3cret"))

	c.SetData("tenant", "acme")
	assert.Equal(t, "acme", c.Data("tenant"))
	assert.Nil(t, c.Data("missing"))
}

func TestInvalidateClearsEverything(t *testing.T) {
	c, sess, _ := newBoundContext(t)

	c.SetRoles([]string{"admin"})
	c.SetGroups([]string{"staff"})
	c.SetData("tenant", "acme")

	c.Invalidate()

	assert.False(t, c.Authenticated())
	assert.Nil(t, c.Credential())
	assert.Nil(t, c.Result())
	assert.Empty(t, c.Roles())
	assert.Empty(t, c.Groups())
	assert.Nil(t, c.Data("tenant"))
	assert.False(t, sess.Valid(), "bound session must be invalidated with the context")
}
