package auth

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/gatebox/gatebox/internal/credential"
	"github.com/gatebox/gatebox/internal/identity"
)

// PasswordMechanism authenticates username/password credentials against the
// identity store.
type PasswordMechanism struct {
	store identity.Store
}

// NewPasswordMechanism creates a password mechanism backed by the given store.
func NewPasswordMechanism(store identity.Store) *PasswordMechanism {
	return &PasswordMechanism{store: store}
}

// Name returns the mechanism name.
func (m *PasswordMechanism) Name() string { return "password" }

// Info declares support for username/password credentials.
func (m *PasswordMechanism) Info() []Info {
	return []Info{{
		Kind:        credential.KindUsernamePassword,
		Description: "Username and password authentication against the identity store.",
	}}
}

// Authenticate validates the password against the identity store.
func (m *PasswordMechanism) Authenticate(cred credential.Credential) (*Result, error) {
	result := NewResult()

	userCred, ok := cred.(credential.UsernamePassword)
	if !ok {
		return nil, fmt.Errorf("password mechanism got %s credential", cred.Kind())
	}

	if _, err := m.store.User(userCred.UserName()); err != nil {
		if errors.Is(err, identity.ErrUserNotFound) {
			result.InvalidCredentials()
			return result, nil
		}

		return nil, fmt.Errorf("failed to query user: %w", err)
	}

	valid, err := m.store.ValidateCredential(userCred)
	if err != nil {
		if errors.Is(err, identity.ErrUserAccountDisabled) {
			result.Fail("user account is disabled")
			return result, nil
		}

		return nil, fmt.Errorf("failed to validate credential: %w", err)
	}

	if !valid {
		log.Trace().Str("username", userCred.UserName()).Msg("password validation failed")

		result.InvalidCredentials()

		return result, nil
	}

	result.Success(NewPrincipal(userCred.UserName()))

	return result, nil
}
