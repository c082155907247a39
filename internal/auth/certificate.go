package auth

import (
	"errors"
	"fmt"

	"github.com/gatebox/gatebox/internal/credential"
	"github.com/gatebox/gatebox/internal/identity"
)

// CertificateMechanism authenticates X.509 client certificates. The subject
// common name selects the user; the store compares the certificate digest
// against the user's stored digest attribute.
type CertificateMechanism struct {
	store identity.Store
}

// NewCertificateMechanism creates a certificate mechanism backed by the
// given store.
func NewCertificateMechanism(store identity.Store) *CertificateMechanism {
	return &CertificateMechanism{store: store}
}

// Name returns the mechanism name.
func (m *CertificateMechanism) Name() string { return "certificate" }

// Info declares support for certificate credentials.
func (m *CertificateMechanism) Info() []Info {
	return []Info{{
		Kind:        credential.KindCertificate,
		Description: "X.509 client certificate authentication.",
	}}
}

// Authenticate validates the certificate against the identity store.
func (m *CertificateMechanism) Authenticate(cred credential.Credential) (*Result, error) {
	result := NewResult()

	certCred, ok := cred.(credential.Certificate)
	if !ok {
		return nil, fmt.Errorf("certificate mechanism got %s credential", cred.Kind())
	}

	if certCred.UserName() == "" {
		result.Fail("certificate has no subject common name")
		return result, nil
	}

	if _, err := m.store.User(certCred.UserName()); err != nil {
		if errors.Is(err, identity.ErrUserNotFound) {
			result.InvalidCredentials()
			return result, nil
		}

		return nil, fmt.Errorf("failed to query user: %w", err)
	}

	valid, err := m.store.ValidateCredential(certCred)
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

	result.Success(NewPrincipal(certCred.UserName()))

	return result, nil
}
