package auth

import (
	"errors"
	"fmt"

	"github.com/gatebox/gatebox/internal/credential"
)

var (
	// ErrNoMechanismInfo is returned when registering a mechanism that
	// declares no supported credential kinds.
	ErrNoMechanismInfo = errors.New("mechanism declares no supported credential kinds")

	// ErrNilCredential is returned when an authentication is attempted
	// without a credential.
	ErrNilCredential = errors.New("credential can not be nil")
)

// UnsupportedCredentialError is returned when no mechanism is registered for
// a credential's kind.
type UnsupportedCredentialError struct {
	CredentialKind credential.Kind
}

// Error implements the error interface.
func (e *UnsupportedCredentialError) Error() string {
	return fmt.Sprintf("unsupported credential type: %s", e.CredentialKind)
}
