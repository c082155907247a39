package audit

import (
	"errors"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gatebox/gatebox/internal/auth"
	"github.com/gatebox/gatebox/internal/credential"
	"github.com/gatebox/gatebox/internal/event"
	"github.com/gatebox/gatebox/internal/manager"
	"github.com/gatebox/gatebox/internal/session"
)

type recordingProvider struct {
	records []Record
}

func (p *recordingProvider) Audit(r Record) {
	p.records = append(p.records, r)
}

func authenticatedContext(t *testing.T) *auth.Context {
	t.Helper()

	c := auth.NewContext(credential.NewUsernamePassword("alice", "s3cret"))

	result := auth.NewResult()
	result.Success(auth.NewPrincipal("alice"))
	c.SetResult(result)

	return c
}

func TestObserverTranslatesSuccess(t *testing.T) {
	provider := &recordingProvider{}
	o := NewObserver(provider)

	o.Handle(manager.AuthenticatedEvent{Context: authenticatedContext(t)})

	require.Len(t, provider.records, 1)
	assert.Equal(t, TypeAuthentication, provider.records[0].Type)
	assert.Equal(t, "alice", provider.records[0].Principal)
}

func TestObserverTranslatesRejection(t *testing.T) {
	provider := &recordingProvider{}
	o := NewObserver(provider)

	c := auth.NewContext(credential.NewUsernamePassword("alice", "wrong"))

	o.Handle(manager.NotAuthenticatedEvent{Context: c})

	require.Len(t, provider.records, 1)
	assert.Equal(t, TypeAuthentication, provider.records[0].Type)
	assert.Equal(t, "alice", provider.records[0].Principal, "rejections carry the attempted username")
}

func TestObserverTranslatesFailure(t *testing.T) {
	provider := &recordingProvider{}
	o := NewObserver(provider)

	cause := errors.New("store unavailable")
	c := auth.NewContext(credential.NewUsernamePassword("alice", "s3cret"))

	o.Handle(manager.AuthenticationFailedEvent{Context: c, Err: cause})

	require.Len(t, provider.records, 1)
	assert.Equal(t, TypeError, provider.records[0].Type)
	assert.Equal(t, cause, provider.records[0].Err)
}

func TestObserverTranslatesSessionEvents(t *testing.T) {
	provider := &recordingProvider{}
	o := NewObserver(provider)

	bus := event.NewBus()
	clk := clock.NewMock()

	sessions, err := session.NewManager(session.NewMemoryStore(), bus, clk, time.Hour)
	require.NoError(t, err)

	sess, err := sessions.Create("alice")
	require.NoError(t, err)

	o.Handle(session.ExpiredEvent{Session: sess})
	o.Handle(session.InvalidatedEvent{Session: sess})

	require.Len(t, provider.records, 2)
	assert.Equal(t, TypeSession, provider.records[0].Type)
	assert.Equal(t, "session expired", provider.records[0].Description)
	assert.Equal(t, sess.ID(), provider.records[0].SessionID)
	assert.Equal(t, "session invalidated", provider.records[1].Description)
}

func TestObserverReceivesEventsFromBus(t *testing.T) {
	provider := &recordingProvider{}

	bus := event.NewBus()
	require.NoError(t, bus.AddObserver(NewObserver(provider)))

	bus.Raise(manager.LoggedOutEvent{Context: authenticatedContext(t)})

	require.Len(t, provider.records, 1)
	assert.Equal(t, TypeLogout, provider.records[0].Type)
}
