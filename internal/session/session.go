package session

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/gatebox/gatebox/internal/event"
)

// Session is a server-side session bound to an authenticated principal.
//
// The identifier is opaque, globally unique, and generated fresh on creation;
// it is never reused or derived from user input. All methods are safe for
// concurrent use; the validity flag transitions valid to invalid exactly once.
type Session struct {
	id        string
	owner     string
	createdAt time.Time

	valid atomic.Bool

	mu         sync.RWMutex
	lastAccess time.Time
	attributes map[string]any

	bus *event.Bus
	clk clock.Clock
}

func newSession(id, owner string, bus *event.Bus, clk clock.Clock) *Session {
	now := clk.Now()

	s := &Session{
		id:         id,
		owner:      owner,
		createdAt:  now,
		lastAccess: now,
		attributes: make(map[string]any),
		bus:        bus,
		clk:        clk,
	}
	s.valid.Store(true)

	return s
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Owner returns the principal name the session was created for.
func (s *Session) Owner() string { return s.owner }

// CreatedAt returns the creation timestamp.
func (s *Session) CreatedAt() time.Time { return s.createdAt }

// LastAccess returns the last-access timestamp.
func (s *Session) LastAccess() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.lastAccess
}

// Valid reports whether the session has not been invalidated or expired.
func (s *Session) Valid() bool { return s.valid.Load() }

// Touch updates the last-access timestamp and signals activity, resetting the
// sliding expiration window.
func (s *Session) Touch() {
	if !s.Valid() {
		return
	}

	s.mu.Lock()
	s.lastAccess = s.clk.Now()
	s.mu.Unlock()

	s.bus.Raise(AttributeGetEvent{Session: s})
}

// Attribute returns the attribute stored under name. Reading counts as
// activity and resets the expiration window.
func (s *Session) Attribute(name string) any {
	s.mu.Lock()
	s.lastAccess = s.clk.Now()
	value := s.attributes[name]
	s.mu.Unlock()

	s.bus.Raise(AttributeGetEvent{Session: s, Name: name})

	return value
}

// SetAttribute stores value under name. Writing counts as activity and resets
// the expiration window.
func (s *Session) SetAttribute(name string, value any) {
	s.mu.Lock()
	s.lastAccess = s.clk.Now()
	s.attributes[name] = value
	s.mu.Unlock()

	s.bus.Raise(AttributeSetEvent{Session: s, Name: name})
}

// Invalidate marks the session invalid and raises an invalidated event. The
// call is a no-op when the expiration timer already won the race.
func (s *Session) Invalidate() {
	if !s.valid.CompareAndSwap(true, false) {
		return
	}

	s.bus.Raise(InvalidatedEvent{Session: s})
}

// expire marks the session invalid from the expiration timer and raises an
// expired event. A concurrent Invalidate that wins the swap makes this a
// no-op.
func (s *Session) expire() {
	if !s.valid.CompareAndSwap(true, false) {
		return
	}

	s.bus.Raise(ExpiredEvent{Session: s})
}
