package identity

import "errors"

var (
	// ErrUserNotFound is returned when a user cannot be found in the store.
	ErrUserNotFound = errors.New("user not found")

	// ErrUserExists is returned when attempting to create a user with a name
	// that already exists.
	ErrUserExists = errors.New("user already exists")

	// ErrRoleNotFound is returned when a role cannot be found in the store.
	ErrRoleNotFound = errors.New("role not found")

	// ErrGroupNotFound is returned when a group cannot be found in the store.
	ErrGroupNotFound = errors.New("group not found")

	// ErrUserAccountDisabled is returned when validating a credential for a
	// disabled user account.
	ErrUserAccountDisabled = errors.New("user account is disabled")
)
