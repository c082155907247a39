package authz

import "sort"

// Resource is the opaque key entitlements are indexed by.
type Resource string

// Entitlement is an atomic named permission token, such as "read" or "write".
type Entitlement string

// Collection is a named, unordered set of entitlements.
type Collection struct {
	name string
	set  map[Entitlement]struct{}
}

// NewCollection creates an empty collection with the given name.
func NewCollection(name string, entitlements ...Entitlement) *Collection {
	c := &Collection{name: name, set: make(map[Entitlement]struct{}, len(entitlements))}
	for _, e := range entitlements {
		c.set[e] = struct{}{}
	}

	return c
}

// Name returns the collection name.
func (c *Collection) Name() string { return c.name }

// Add inserts an entitlement. Adding an existing entitlement is a no-op.
func (c *Collection) Add(e Entitlement) {
	c.set[e] = struct{}{}
}

// AddAll unions another collection into this one.
func (c *Collection) AddAll(other *Collection) {
	if other == nil {
		return
	}

	for e := range other.set {
		c.set[e] = struct{}{}
	}
}

// Contains reports whether the entitlement is present.
func (c *Collection) Contains(e Entitlement) bool {
	_, ok := c.set[e]

	return ok
}

// Remove deletes an entitlement.
func (c *Collection) Remove(e Entitlement) {
	delete(c.set, e)
}

// Len returns the number of entitlements.
func (c *Collection) Len() int { return len(c.set) }

// Entitlements returns the entitlements, sorted.
func (c *Collection) Entitlements() []Entitlement {
	out := make([]Entitlement, 0, len(c.set))
	for e := range c.set {
		out = append(out, e)
	}

	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })

	return out
}

// Equal reports structural equality: same name and same entitlement set.
func (c *Collection) Equal(other *Collection) bool {
	if other == nil || c.name != other.name || len(c.set) != len(other.set) {
		return false
	}

	for e := range c.set {
		if _, ok := other.set[e]; !ok {
			return false
		}
	}

	return true
}

// Copy returns an independent copy of the collection.
func (c *Collection) Copy() *Collection {
	out := NewCollection(c.name)
	out.AddAll(c)

	return out
}
