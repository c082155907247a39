package auth

import (
	"errors"
	"fmt"

	"github.com/gatebox/gatebox/internal/credential"
	"github.com/gatebox/gatebox/internal/identity"
)

// TrustedMechanism authenticates trusted-username credentials without secret
// verification. These credentials are produced internally during silent
// re-authentication, after the orchestrator validated the restored session;
// the mechanism only confirms the principal still exists in the store.
type TrustedMechanism struct {
	store identity.Store
}

// NewTrustedMechanism creates a trusted-username mechanism backed by the
// given store.
func NewTrustedMechanism(store identity.Store) *TrustedMechanism {
	return &TrustedMechanism{store: store}
}

// Name returns the mechanism name.
func (m *TrustedMechanism) Name() string { return "trusted-username" }

// Info declares support for trusted-username credentials.
func (m *TrustedMechanism) Info() []Info {
	return []Info{{
		Kind:        credential.KindTrustedUsername,
		Description: "Silent re-authentication for principals restored from a valid session.",
	}}
}

// Authenticate confirms the trusted principal exists and is active.
func (m *TrustedMechanism) Authenticate(cred credential.Credential) (*Result, error) {
	result := NewResult()

	trustedCred, ok := cred.(credential.TrustedUsername)
	if !ok {
		return nil, fmt.Errorf("trusted-username mechanism got %s credential", cred.Kind())
	}

	if _, err := m.store.User(trustedCred.UserName()); err != nil {
		if errors.Is(err, identity.ErrUserNotFound) {
			result.InvalidCredentials()
			return result, nil
		}

		return nil, fmt.Errorf("failed to query user: %w", err)
	}

	valid, err := m.store.ValidateCredential(trustedCred)
	if err != nil {
		if errors.Is(err, identity.ErrUserAccountDisabled) {
			result.Fail("user account is disabled")
			return result, nil
		}

		return nil, fmt.Errorf("failed to validate credential: %w", err)
	}

	if !valid {
		result.InvalidCredentials()
		return result, nil
	}

	result.Success(NewPrincipal(trustedCred.UserName()))

	return result, nil
}
