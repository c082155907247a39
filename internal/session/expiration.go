package session

import (
	"sync"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/gatebox/gatebox/internal/event"
)

// expirationManager schedules one timer per active session and reschedules it
// on every touch-producing attribute event, making expiration a sliding
// window. The timer map is explicit; cancel runs on every reschedule and on
// session removal, so timers for dead sessions never leak. A timeout of zero
// or less disables expiration entirely.
type expirationManager struct {
	timeout time.Duration
	clk     clock.Clock

	mu     sync.Mutex
	timers map[string]*clock.Timer
}

func newExpirationManager(timeout time.Duration, clk clock.Clock) *expirationManager {
	return &expirationManager{
		timeout: timeout,
		clk:     clk,
		timers:  make(map[string]*clock.Timer),
	}
}

// Observes subscribes to every touch-producing session event.
func (m *expirationManager) Observes() []event.Kind {
	return []event.Kind{KindAttributeGet, KindAttributeSet}
}

// Handle reschedules the expiration timer for the touched session.
func (m *expirationManager) Handle(e event.Event) {
	switch ev := e.(type) {
	case AttributeGetEvent:
		m.schedule(ev.Session)
	case AttributeSetEvent:
		m.schedule(ev.Session)
	}
}

// schedule arms the expiration timer for s, canceling any pending one.
func (m *expirationManager) schedule(s *Session) {
	if m.timeout <= 0 {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if timer, ok := m.timers[s.ID()]; ok {
		timer.Stop()
	}

	m.timers[s.ID()] = m.clk.AfterFunc(m.timeout, func() {
		// The swap inside expire keeps this a no-op if a request thread
		// invalidated the session first.
		s.expire()
	})
}

// cancel stops and drops the timer for id.
func (m *expirationManager) cancel(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if timer, ok := m.timers[id]; ok {
		timer.Stop()
		delete(m.timers, id)
	}
}

// stop cancels every pending timer.
func (m *expirationManager) stop() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, timer := range m.timers {
		timer.Stop()
		delete(m.timers, id)
	}
}
