package authz

import (
	"github.com/gatebox/gatebox/internal/auth"
)

// AuthorizationManager decides whether an authenticated context may access a
// resource. The orchestrator permits by default when none is configured.
type AuthorizationManager interface {
	Authorize(r Resource, c *auth.Context) (bool, error)
}

// EntitlementsManager aggregates entitlement collections for a context.
type EntitlementsManager struct {
	store Store
}

// NewEntitlementsManager creates a manager over the given store.
func NewEntitlementsManager(store Store) *EntitlementsManager {
	return &EntitlementsManager{store: store}
}

// Store returns the underlying entitlement store.
func (m *EntitlementsManager) Store() Store { return m.store }

// Entitlements returns the union of the collections keyed by (resource, user),
// (resource, role) for each resolved role, and (resource, group) for each
// resolved group, as one combined collection named "ALL". Missing keys
// contribute the empty set.
func (m *EntitlementsManager) Entitlements(r Resource, c *auth.Context) *Collection {
	combined := NewCollection("ALL")

	if principal := c.Principal(); principal != nil {
		combined.AddAll(m.store.UserEntitlements(r, principal.Name()))
	}

	for _, role := range c.Roles() {
		combined.AddAll(m.store.RoleEntitlements(r, role))
	}

	for _, group := range c.Groups() {
		combined.AddAll(m.store.GroupEntitlements(r, group))
	}

	return combined
}

// RoleAuthorizer permits contexts that resolved at least one of the allowed
// roles for the resource.
type RoleAuthorizer struct {
	allowed map[Resource][]string
}

// NewRoleAuthorizer creates a role-based authorization manager.
func NewRoleAuthorizer(allowed map[Resource][]string) *RoleAuthorizer {
	return &RoleAuthorizer{allowed: allowed}
}

// Authorize permits when the context holds any allowed role for the
// resource. Resources with no configured roles are unrestricted.
func (a *RoleAuthorizer) Authorize(r Resource, c *auth.Context) (bool, error) {
	roles, ok := a.allowed[r]
	if !ok {
		return true, nil
	}

	for _, role := range roles {
		if c.HasRole(role) {
			return true, nil
		}
	}

	return false, nil
}
