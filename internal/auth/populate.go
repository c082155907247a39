package auth

import (
	"fmt"

	"github.com/gatebox/gatebox/internal/identity"
)

// Populator enriches an authenticated context with identity-store data.
type Populator interface {
	Populate(c *Context) error
}

// StorePopulator resolves the principal's roles and groups from the identity
// store after a successful authentication.
type StorePopulator struct {
	store identity.Store
}

// NewStorePopulator creates a populator backed by the given store.
func NewStorePopulator(store identity.Store) *StorePopulator {
	return &StorePopulator{store: store}
}

// Populate loads the principal's roles and groups into the context.
func (p *StorePopulator) Populate(c *Context) error {
	principal := c.Principal()
	if principal == nil {
		return nil
	}

	roles, err := p.store.RolesOf(principal.Name())
	if err != nil {
		return fmt.Errorf("failed to resolve roles: %w", err)
	}

	groups, err := p.store.GroupsOf(principal.Name())
	if err != nil {
		return fmt.Errorf("failed to resolve groups: %w", err)
	}

	c.SetRoles(roles)
	c.SetGroups(groups)

	return nil
}
