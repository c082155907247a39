package session

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gatebox/gatebox/internal/event"
)

const testTimeout = 30 * time.Minute

// setupManager creates a manager over a mock clock for deterministic
// expiration tests.
func setupManager(t *testing.T, timeout time.Duration) (*Manager, *clock.Mock, *event.Bus) {
	t.Helper()

	bus := event.NewBus()
	clk := clock.NewMock()

	m, err := NewManager(NewMemoryStore(), bus, clk, timeout)
	require.NoError(t, err, "failed to create session manager")

	return m, clk, bus
}

func TestCreateSession(t *testing.T) {
	m, clk, _ := setupManager(t, testTimeout)

	s, err := m.Create("alice")
	require.NoError(t, err)

	assert.NotEmpty(t, s.ID())
	assert.Equal(t, "alice", s.Owner())
	assert.True(t, s.Valid())
	assert.Equal(t, clk.Now(), s.CreatedAt())
	assert.Equal(t, clk.Now(), s.LastAccess())

	loaded, err := m.Retrieve(s.ID())
	require.NoError(t, err)
	assert.Same(t, s, loaded)
}

func TestCreateSessionEmptyOwner(t *testing.T) {
	m, _, _ := setupManager(t, testTimeout)

	_, err := m.Create("")
	require.ErrorIs(t, err, ErrEmptyOwner)
}

func TestCreateSessionIdentifiersAreUnique(t *testing.T) {
	m, _, _ := setupManager(t, testTimeout)

	seen := make(map[string]bool)

	for i := 0; i < 100; i++ {
		s, err := m.Create("alice")
		require.NoError(t, err)
		assert.False(t, seen[s.ID()], "session id %s issued twice", s.ID())
		seen[s.ID()] = true
	}
}

func TestStoreRejectsDuplicateID(t *testing.T) {
	store := NewMemoryStore()
	bus := event.NewBus()
	clk := clock.NewMock()

	s := newSession("fixed-id", "alice", bus, clk)
	require.NoError(t, store.Store(s))

	dup := newSession("fixed-id", "mallory", bus, clk)
	err := store.Store(dup)
	require.ErrorIs(t, err, ErrDuplicateSession)

	loaded, err := store.Load("fixed-id")
	require.NoError(t, err)
	assert.Equal(t, "alice", loaded.Owner())
}

func TestRetrieveUnknownIDReturnsNil(t *testing.T) {
	m, _, _ := setupManager(t, testTimeout)

	s, err := m.Retrieve("no-such-session")
	require.NoError(t, err)
	assert.Nil(t, s)
}

func TestAttributeRoundTrip(t *testing.T) {
	m, clk, _ := setupManager(t, testTimeout)

	s, err := m.Create("alice")
	require.NoError(t, err)

	clk.Add(time.Minute)

	s.SetAttribute("theme", "dark")
	assert.Equal(t, "dark", s.Attribute("theme"))
	assert.Nil(t, s.Attribute("missing"))
	assert.Equal(t, clk.Now(), s.LastAccess(), "attribute access must refresh last access")
}

func TestInvalidateRaisesEventOnce(t *testing.T) {
	m, _, bus := setupManager(t, testTimeout)

	var invalidated int

	err := bus.AddObserver(event.ObserverFunc{
		Kinds: []event.Kind{KindInvalidated},
		Fn:    func(event.Event) { invalidated++ },
	})
	require.NoError(t, err)

	s, err := m.Create("alice")
	require.NoError(t, err)

	s.Invalidate()
	s.Invalidate()

	assert.False(t, s.Valid())
	assert.Equal(t, 1, invalidated)
}

func TestInvalidatedSessionLeavesStore(t *testing.T) {
	m, _, _ := setupManager(t, testTimeout)

	s, err := m.Create("alice")
	require.NoError(t, err)

	s.Invalidate()

	loaded, err := m.Retrieve(s.ID())
	require.NoError(t, err)
	assert.Nil(t, loaded, "invalidated session must be evicted")
}

func TestSessionExpiresAfterTimeout(t *testing.T) {
	m, clk, bus := setupManager(t, testTimeout)

	var expired int

	err := bus.AddObserver(event.ObserverFunc{
		Kinds: []event.Kind{KindExpired},
		Fn:    func(event.Event) { expired++ },
	})
	require.NoError(t, err)

	s, err := m.Create("alice")
	require.NoError(t, err)

	clk.Add(testTimeout + time.Second)

	assert.False(t, s.Valid())
	assert.Equal(t, 1, expired)

	loaded, err := m.Retrieve(s.ID())
	require.NoError(t, err)
	assert.Nil(t, loaded, "expired session must be evicted")
}

func TestActivitySlidesExpirationWindow(t *testing.T) {
	m, clk, _ := setupManager(t, testTimeout)

	s, err := m.Create("alice")
	require.NoError(t, err)

	// Touch just before the deadline, repeatedly. The window must restart
	// each time.
	for i := 0; i < 3; i++ {
		clk.Add(testTimeout - time.Second)
		s.Touch()

		require.True(t, s.Valid(), "touched session expired on iteration %d", i)
	}

	clk.Add(testTimeout + time.Second)
	assert.False(t, s.Valid(), "idle session must expire after the full window")
}

func TestZeroTimeoutDisablesExpiration(t *testing.T) {
	m, clk, _ := setupManager(t, 0)

	s, err := m.Create("alice")
	require.NoError(t, err)

	clk.Add(24 * time.Hour)

	assert.True(t, s.Valid())
}

func TestTouchAfterInvalidationIsNoop(t *testing.T) {
	m, clk, _ := setupManager(t, testTimeout)

	s, err := m.Create("alice")
	require.NoError(t, err)

	s.Invalidate()
	last := s.LastAccess()

	clk.Add(time.Minute)
	s.Touch()

	assert.Equal(t, last, s.LastAccess())
}

func TestRemoveCancelsTimer(t *testing.T) {
	m, clk, bus := setupManager(t, testTimeout)

	var expired int

	err := bus.AddObserver(event.ObserverFunc{
		Kinds: []event.Kind{KindExpired},
		Fn:    func(event.Event) { expired++ },
	})
	require.NoError(t, err)

	s, err := m.Create("alice")
	require.NoError(t, err)
	require.NoError(t, m.Remove(s))

	clk.Add(2 * testTimeout)

	assert.Zero(t, expired, "removed session must not fire an expiration")
}

func TestConcurrentCreate(t *testing.T) {
	m, _, _ := setupManager(t, testTimeout)

	const workers = 16

	var wg sync.WaitGroup

	errs := make([]error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)

		go func(i int) {
			defer wg.Done()

			_, errs[i] = m.Create(fmt.Sprintf("user-%d", i))
		}(i)
	}

	wg.Wait()

	for i, err := range errs {
		assert.NoError(t, err, "worker %d", i)
	}
}
