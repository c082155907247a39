package auth

import "github.com/gatebox/gatebox/internal/credential"

// Info describes one credential kind a mechanism supports.
type Info struct {
	// Kind is the supported credential kind.
	Kind credential.Kind
	// Description is a human-readable description of the service.
	Description string
}

// Mechanism validates one credential kind against an identity store.
//
// Authenticate returns the attempt's Result; a nil error with a
// non-successful result means "not authenticated" (bad credentials), while an
// error means the mechanism itself failed. Mechanisms must be stateless or
// internally synchronized, since one instance is shared across concurrent
// authenticate calls.
type Mechanism interface {
	// Name identifies the mechanism for registry lookups.
	Name() string
	// Info declares the supported (credential kind, description) pairs.
	Info() []Info
	// Authenticate validates the credential and reports the outcome.
	Authenticate(cred credential.Credential) (*Result, error)
}
