package authz

import "sync"

// Store keeps entitlement collections keyed by (resource, identity). Absence
// of an entry for any key contributes the empty set, never nil.
type Store interface {
	AddUserEntitlements(r Resource, user string, c *Collection)
	AddRoleEntitlements(r Resource, role string, c *Collection)
	AddGroupEntitlements(r Resource, group string, c *Collection)

	UserEntitlements(r Resource, user string) *Collection
	RoleEntitlements(r Resource, role string) *Collection
	GroupEntitlements(r Resource, group string) *Collection
}

type holder struct {
	users  map[string]*Collection
	roles  map[string]*Collection
	groups map[string]*Collection
}

func newHolder() *holder {
	return &holder{
		users:  make(map[string]*Collection),
		roles:  make(map[string]*Collection),
		groups: make(map[string]*Collection),
	}
}

// MemoryStore is the in-memory entitlement store.
type MemoryStore struct {
	mu         sync.RWMutex
	byResource map[Resource]*holder
}

// NewMemoryStore creates an empty entitlement store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{byResource: make(map[Resource]*holder)}
}

func (m *MemoryStore) add(r Resource, key string, c *Collection, pick func(*holder) map[string]*Collection) {
	m.mu.Lock()
	defer m.mu.Unlock()

	h, ok := m.byResource[r]
	if !ok {
		h = newHolder()
		m.byResource[r] = h
	}

	// Repeated adds union into the existing collection.
	existing, ok := pick(h)[key]
	if !ok {
		pick(h)[key] = c.Copy()
		return
	}

	existing.AddAll(c)
}

func (m *MemoryStore) lookup(r Resource, key string, pick func(*holder) map[string]*Collection) *Collection {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if h, ok := m.byResource[r]; ok {
		if c, ok := pick(h)[key]; ok {
			return c.Copy()
		}
	}

	return NewCollection("EMPTY")
}

// AddUserEntitlements unions a collection under the (resource, user) key.
func (m *MemoryStore) AddUserEntitlements(r Resource, user string, c *Collection) {
	m.add(r, user, c, func(h *holder) map[string]*Collection { return h.users })
}

// AddRoleEntitlements unions a collection under the (resource, role) key.
func (m *MemoryStore) AddRoleEntitlements(r Resource, role string, c *Collection) {
	m.add(r, role, c, func(h *holder) map[string]*Collection { return h.roles })
}

// AddGroupEntitlements unions a collection under the (resource, group) key.
func (m *MemoryStore) AddGroupEntitlements(r Resource, group string, c *Collection) {
	m.add(r, group, c, func(h *holder) map[string]*Collection { return h.groups })
}

// UserEntitlements returns the collection for (resource, user), empty when
// absent.
func (m *MemoryStore) UserEntitlements(r Resource, user string) *Collection {
	return m.lookup(r, user, func(h *holder) map[string]*Collection { return h.users })
}

// RoleEntitlements returns the collection for (resource, role), empty when
// absent.
func (m *MemoryStore) RoleEntitlements(r Resource, role string) *Collection {
	return m.lookup(r, role, func(h *holder) map[string]*Collection { return h.roles })
}

// GroupEntitlements returns the collection for (resource, group), empty when
// absent.
func (m *MemoryStore) GroupEntitlements(r Resource, group string) *Collection {
	return m.lookup(r, group, func(h *holder) map[string]*Collection { return h.groups })
}
