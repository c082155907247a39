package session

import (
	"fmt"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/gatebox/gatebox/internal/event"
)

// Manager creates, retrieves, and destroys sessions against one authoritative
// Store, and owns the expiration scheduler.
type Manager struct {
	store      Store
	bus        *event.Bus
	clk        clock.Clock
	expiration *expirationManager
}

// NewManager creates a session manager. The clock drives both timestamps and
// the expiration scheduler; tests inject a mock. A timeout of zero or less
// disables expiration.
func NewManager(store Store, bus *event.Bus, clk clock.Clock, timeout time.Duration) (*Manager, error) {
	m := &Manager{
		store:      store,
		bus:        bus,
		clk:        clk,
		expiration: newExpirationManager(timeout, clk),
	}

	if err := bus.AddObserver(m.expiration); err != nil {
		return nil, fmt.Errorf("failed to register expiration observer: %w", err)
	}

	if err := bus.AddObserver(m); err != nil {
		return nil, fmt.Errorf("failed to register session removal observer: %w", err)
	}

	return m, nil
}

// Create builds a session owned by the given principal, generating a fresh
// identifier. An identifier colliding with a stored session is fatal.
func (m *Manager) Create(owner string) (*Session, error) {
	if owner == "" {
		return nil, ErrEmptyOwner
	}

	id := uuid.NewString()

	// Duplicate-check read right after construction; creation must never
	// silently overwrite another session.
	existing, err := m.store.Load(id)
	if err != nil {
		return nil, fmt.Errorf("failed to check session id: %w", err)
	}

	if existing != nil {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateSession, id)
	}

	s := newSession(id, owner, m.bus, m.clk)

	if err := m.store.Store(s); err != nil {
		return nil, fmt.Errorf("failed to store session: %w", err)
	}

	m.expiration.schedule(s)

	m.bus.Raise(CreatedEvent{Session: s})

	log.Trace().Str("session_id", id).Str("owner", owner).Msg("session created")

	return s, nil
}

// Retrieve returns the session for id, or nil when the store has none.
func (m *Manager) Retrieve(id string) (*Session, error) {
	s, err := m.store.Load(id)
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	return s, nil
}

// Remove deletes the session from the store and cancels its timer.
func (m *Manager) Remove(s *Session) error {
	if s == nil {
		return nil
	}

	m.expiration.cancel(s.ID())

	if err := m.store.Remove(s.ID()); err != nil {
		return fmt.Errorf("failed to remove session: %w", err)
	}

	return nil
}

// Update persists changes to a session.
func (m *Manager) Update(s *Session) error {
	if err := m.store.Update(s); err != nil {
		return fmt.Errorf("failed to update session: %w", err)
	}

	return nil
}

// Stop cancels all pending expiration timers.
func (m *Manager) Stop() {
	m.expiration.stop()
}

// Observes subscribes the manager to terminal session events so invalidated
// and expired sessions leave the store.
func (m *Manager) Observes() []event.Kind {
	return []event.Kind{KindInvalidated, KindExpired}
}

// Handle evicts the session behind an invalidated or expired event.
func (m *Manager) Handle(e event.Event) {
	var s *Session

	switch ev := e.(type) {
	case InvalidatedEvent:
		s = ev.Session
	case ExpiredEvent:
		s = ev.Session
		log.Trace().Str("session_id", s.ID()).Msg("session expired")
	}

	if s == nil {
		return
	}

	m.expiration.cancel(s.ID())

	if err := m.store.Remove(s.ID()); err != nil {
		log.Error().Err(err).Str("session_id", s.ID()).Msg("failed to evict session")
	}
}
