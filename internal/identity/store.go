package identity

import "github.com/gatebox/gatebox/internal/credential"

// Store is the identity-store collaborator consumed by the authentication
// core. Implementations are expected to be safe for concurrent use, since a
// single store instance is shared across concurrent authenticate calls.
type Store interface {
	// AddUser creates a user, hashing the plaintext password carried in
	// u.Password. Returns ErrUserExists on a duplicate name.
	AddUser(u *User) error
	// User returns the user by name, or ErrUserNotFound.
	User(name string) (*User, error)
	// UpdateUser replaces the stored user's profile fields and attributes.
	// An empty u.Password leaves the stored credential untouched.
	UpdateUser(u *User) error
	// RemoveUser deletes the user and its memberships.
	RemoveUser(name string) error

	// AddRole creates a role; AddGroup creates a group.
	AddRole(r *Role) error
	AddGroup(g *Group) error
	// Role and Group return the named role or group, or ErrRoleNotFound /
	// ErrGroupNotFound.
	Role(name string) (*Role, error)
	Group(name string) (*Group, error)

	// GrantRole assigns a role to a user; AddToGroup adds a user to a group.
	GrantRole(username, role string) error
	AddToGroup(username, group string) error
	// RolesOf and GroupsOf return the user's membership names.
	RolesOf(username string) ([]string, error)
	GroupsOf(username string) ([]string, error)

	// ValidateCredential checks the secret material of cred against the
	// stored identity. It returns false (not an error) for a wrong secret;
	// errors are reserved for store failures.
	ValidateCredential(cred credential.Credential) (bool, error)

	// SetAttribute stores a per-user attribute; Attribute reads one back,
	// returning an empty string when unset.
	SetAttribute(username, name, value string) error
	Attribute(username, name string) (string, error)
}
