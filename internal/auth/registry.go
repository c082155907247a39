package auth

import "github.com/gatebox/gatebox/internal/credential"

// Registry maps credential kinds to the ordered mechanisms supporting them.
// Registration happens at startup; lookups during steady-state traffic are
// read-only.
type Registry struct {
	byKind map[credential.Kind][]Mechanism
	all    []Mechanism
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{byKind: make(map[credential.Kind][]Mechanism)}
}

// Register adds a mechanism under every credential kind it declares.
// A mechanism declaring no kinds is a configuration error.
func (r *Registry) Register(m Mechanism) error {
	info := m.Info()
	if len(info) == 0 {
		return ErrNoMechanismInfo
	}

	for _, i := range info {
		r.byKind[i.Kind] = append(r.byKind[i.Kind], m)
	}

	r.all = append(r.all, m)

	return nil
}

// MechanismsFor returns the mechanisms supporting kind in registration order.
// An empty slice means the credential kind is unsupported; callers must treat
// that as a failure, not silently skip.
func (r *Registry) MechanismsFor(kind credential.Kind) []Mechanism {
	return r.byKind[kind]
}

// ByName returns the registered mechanism with the given name, or nil.
func (r *Registry) ByName(name string) Mechanism {
	for _, m := range r.all {
		if m.Name() == name {
			return m
		}
	}

	return nil
}

// Names returns all registered mechanism names in registration order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.all))
	for _, m := range r.all {
		names = append(names, m.Name())
	}

	return names
}
