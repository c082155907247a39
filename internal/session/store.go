package session

import "sync"

// Store persists sessions keyed by identifier. Implementations must be safe
// under concurrent access from multiple requests referencing the same or
// different sessions; Store must not silently overwrite an existing id.
type Store interface {
	// Store persists a new session. It returns ErrDuplicateSession when the
	// id already exists.
	Store(s *Session) error
	// Load returns the session for id, or nil when absent.
	Load(id string) (*Session, error)
	// Remove deletes the session for id. Removing an absent id is a no-op.
	Remove(id string) error
	// Update persists changes to an existing session.
	Update(s *Session) error
}

// MemoryStore is the default in-memory Store.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]*Session)}
}

// Store persists a new session, failing on a duplicate id. The check and
// insert happen under one lock so concurrent creates cannot both win.
func (m *MemoryStore) Store(s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sessions[s.ID()]; ok {
		return ErrDuplicateSession
	}

	m.sessions[s.ID()] = s

	return nil
}

// Load returns the session for id, or nil when absent.
func (m *MemoryStore) Load(id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.sessions[id], nil
}

// Remove deletes the session for id.
func (m *MemoryStore) Remove(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.sessions, id)

	return nil
}

// Update persists changes to an existing session. The in-memory store shares
// the session pointer, so this only verifies the session is still present.
func (m *MemoryStore) Update(s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sessions[s.ID()]; !ok {
		return ErrSessionNotFound
	}

	m.sessions[s.ID()] = s

	return nil
}
