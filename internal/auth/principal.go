package auth

// Principal is the authenticated identity produced by a mechanism.
type Principal struct {
	name string
}

// NewPrincipal creates a principal with the given name.
func NewPrincipal(name string) *Principal {
	return &Principal{name: name}
}

// Name returns the principal name.
func (p *Principal) Name() string { return p.name }
