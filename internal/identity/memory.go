package identity

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"sort"
	"sync"

	"github.com/alexedwards/argon2id"

	"github.com/gatebox/gatebox/internal/credential"
	"github.com/gatebox/gatebox/internal/event"
)

// MemoryStore is the default in-memory identity store. Passwords are hashed
// with Argon2id on the way in. Mutations raise identity events when a bus is
// attached.
type MemoryStore struct {
	mu         sync.RWMutex
	users      map[string]*User
	hashes     map[string]string
	roles      map[string]*Role
	groups     map[string]*Group
	userRoles  map[string]map[string]struct{}
	userGroups map[string]map[string]struct{}

	bus *event.Bus
}

// NewMemoryStore creates an empty in-memory identity store. The bus may be
// nil; then no identity events are raised.
func NewMemoryStore(bus *event.Bus) *MemoryStore {
	return &MemoryStore{
		users:      make(map[string]*User),
		hashes:     make(map[string]string),
		roles:      make(map[string]*Role),
		groups:     make(map[string]*Group),
		userRoles:  make(map[string]map[string]struct{}),
		userGroups: make(map[string]map[string]struct{}),
		bus:        bus,
	}
}

func (m *MemoryStore) raise(e event.Event) {
	if m.bus != nil {
		m.bus.Raise(e)
	}
}

// AddUser creates a user, hashing the plaintext password in u.Password.
func (m *MemoryStore) AddUser(u *User) error {
	hash := ""

	if u.Password != "" {
		var err error

		hash, err = argon2id.CreateHash(u.Password, argon2id.DefaultParams)
		if err != nil {
			return fmt.Errorf("failed to hash password: %w", err)
		}
	}

	m.mu.Lock()

	if _, ok := m.users[u.Name]; ok {
		m.mu.Unlock()
		return ErrUserExists
	}

	stored := copyUser(u)
	stored.Password = ""

	m.users[u.Name] = stored
	m.hashes[u.Name] = hash

	m.mu.Unlock()

	m.raise(CreatedEvent{Identity: IdentityUser, Name: u.Name})

	return nil
}

// User returns a copy of the user by name.
func (m *MemoryStore) User(name string) (*User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.users[name]
	if !ok {
		return nil, ErrUserNotFound
	}

	return copyUser(u), nil
}

// UpdateUser replaces the stored profile. A non-empty u.Password rehashes the
// stored credential.
func (m *MemoryStore) UpdateUser(u *User) error {
	hash := ""

	if u.Password != "" {
		var err error

		hash, err = argon2id.CreateHash(u.Password, argon2id.DefaultParams)
		if err != nil {
			return fmt.Errorf("failed to hash password: %w", err)
		}
	}

	m.mu.Lock()

	if _, ok := m.users[u.Name]; !ok {
		m.mu.Unlock()
		return ErrUserNotFound
	}

	stored := copyUser(u)
	stored.Password = ""

	m.users[u.Name] = stored

	if hash != "" {
		m.hashes[u.Name] = hash
	}

	m.mu.Unlock()

	m.raise(UpdatedEvent{Identity: IdentityUser, Name: u.Name})

	return nil
}

// RemoveUser deletes the user and its memberships.
func (m *MemoryStore) RemoveUser(name string) error {
	m.mu.Lock()

	if _, ok := m.users[name]; !ok {
		m.mu.Unlock()
		return ErrUserNotFound
	}

	delete(m.users, name)
	delete(m.hashes, name)
	delete(m.userRoles, name)
	delete(m.userGroups, name)

	m.mu.Unlock()

	m.raise(RemovedEvent{Identity: IdentityUser, Name: name})

	return nil
}

// AddRole creates a role.
func (m *MemoryStore) AddRole(r *Role) error {
	m.mu.Lock()
	m.roles[r.Name] = &Role{Name: r.Name, Description: r.Description}
	m.mu.Unlock()

	m.raise(CreatedEvent{Identity: IdentityRole, Name: r.Name})

	return nil
}

// AddGroup creates a group.
func (m *MemoryStore) AddGroup(g *Group) error {
	m.mu.Lock()
	m.groups[g.Name] = &Group{Name: g.Name, Description: g.Description}
	m.mu.Unlock()

	m.raise(CreatedEvent{Identity: IdentityGroup, Name: g.Name})

	return nil
}

// Role returns the named role.
func (m *MemoryStore) Role(name string) (*Role, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	r, ok := m.roles[name]
	if !ok {
		return nil, ErrRoleNotFound
	}

	return &Role{Name: r.Name, Description: r.Description}, nil
}

// Group returns the named group.
func (m *MemoryStore) Group(name string) (*Group, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	g, ok := m.groups[name]
	if !ok {
		return nil, ErrGroupNotFound
	}

	return &Group{Name: g.Name, Description: g.Description}, nil
}

// GrantRole assigns a role to a user.
func (m *MemoryStore) GrantRole(username, role string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[username]; !ok {
		return ErrUserNotFound
	}

	if _, ok := m.roles[role]; !ok {
		return ErrRoleNotFound
	}

	if m.userRoles[username] == nil {
		m.userRoles[username] = make(map[string]struct{})
	}

	m.userRoles[username][role] = struct{}{}

	return nil
}

// AddToGroup adds a user to a group.
func (m *MemoryStore) AddToGroup(username, group string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[username]; !ok {
		return ErrUserNotFound
	}

	if _, ok := m.groups[group]; !ok {
		return ErrGroupNotFound
	}

	if m.userGroups[username] == nil {
		m.userGroups[username] = make(map[string]struct{})
	}

	m.userGroups[username][group] = struct{}{}

	return nil
}

// RolesOf returns the user's role names, sorted.
func (m *MemoryStore) RolesOf(username string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return sortedKeys(m.userRoles[username]), nil
}

// GroupsOf returns the user's group names, sorted.
func (m *MemoryStore) GroupsOf(username string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return sortedKeys(m.userGroups[username]), nil
}

// ValidateCredential checks the credential's secret material against the
// stored identity. Wrong secrets return false without an error.
func (m *MemoryStore) ValidateCredential(cred credential.Credential) (bool, error) {
	m.mu.RLock()
	u, ok := m.users[cred.UserName()]
	hash := m.hashes[cred.UserName()]
	m.mu.RUnlock()

	if !ok {
		return false, nil
	}

	if !u.Active {
		return false, ErrUserAccountDisabled
	}

	switch c := cred.(type) {
	case credential.UsernamePassword:
		return m.comparePassword(c.Password(), hash)
	case credential.OTP:
		// The one-time code itself is verified by the OTP mechanism; the
		// store only vouches for the password part.
		return m.comparePassword(c.Password(), hash)
	case credential.Certificate:
		if c.Cert() == nil {
			return false, nil
		}

		digest := sha256.Sum256(c.Cert().Raw)
		expected := u.Attributes[AttrCertificateDigest]

		return expected != "" &&
			subtle.ConstantTimeCompare([]byte(hex.EncodeToString(digest[:])), []byte(expected)) == 1, nil
	case credential.TrustedUsername:
		// Trusted credentials carry no secret; existence of the active user
		// is the whole check.
		return true, nil
	default:
		return false, nil
	}
}

func (m *MemoryStore) comparePassword(password, hash string) (bool, error) {
	if hash == "" {
		return false, nil
	}

	match, err := argon2id.ComparePasswordAndHash(password, hash)
	if err != nil {
		return false, fmt.Errorf("failed to verify password: %w", err)
	}

	return match, nil
}

// SetAttribute stores a per-user attribute.
func (m *MemoryStore) SetAttribute(username, name, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[username]
	if !ok {
		return ErrUserNotFound
	}

	if u.Attributes == nil {
		u.Attributes = make(map[string]string)
	}

	u.Attributes[name] = value

	return nil
}

// Attribute reads a per-user attribute, empty when unset.
func (m *MemoryStore) Attribute(username, name string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.users[username]
	if !ok {
		return "", ErrUserNotFound
	}

	return u.Attributes[name], nil
}

func copyUser(u *User) *User {
	c := *u

	if u.Attributes != nil {
		c.Attributes = make(map[string]string, len(u.Attributes))
		for k, v := range u.Attributes {
			c.Attributes[k] = v
		}
	}

	return &c
}

func sortedKeys(set map[string]struct{}) []string {
	names := make([]string, 0, len(set))
	for name := range set {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}
