package identity

import "github.com/gatebox/gatebox/internal/event"

// IdentityKind names the kind of identity an event is about.
type IdentityKind string

// Identity kinds carried by store events.
const (
	IdentityUser  IdentityKind = "user"
	IdentityRole  IdentityKind = "role"
	IdentityGroup IdentityKind = "group"
)

// Event kinds raised by identity stores on mutations.
const (
	KindCreated event.Kind = "identity-created"
	KindUpdated event.Kind = "identity-updated"
	KindRemoved event.Kind = "identity-removed"
)

// CreatedEvent is raised after an identity is added to a store.
type CreatedEvent struct {
	Identity IdentityKind
	Name     string
}

// Kind returns KindCreated.
func (e CreatedEvent) Kind() event.Kind { return KindCreated }

// UpdatedEvent is raised after an identity is updated.
type UpdatedEvent struct {
	Identity IdentityKind
	Name     string
}

// Kind returns KindUpdated.
func (e UpdatedEvent) Kind() event.Kind { return KindUpdated }

// RemovedEvent is raised after an identity is removed.
type RemovedEvent struct {
	Identity IdentityKind
	Name     string
}

// Kind returns KindRemoved.
func (e RemovedEvent) Kind() event.Kind { return KindRemoved }
