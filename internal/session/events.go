package session

import "github.com/gatebox/gatebox/internal/event"

// Event kinds raised by the session lifecycle. Attribute events share the
// activity parent kind so one observer can watch all touch-producing access.
const (
	KindCreated      event.Kind = "session-created"
	KindInvalidated  event.Kind = "session-invalidated"
	KindExpired      event.Kind = "session-expired"
	KindAttributeGet event.Kind = "session-attribute-get"
	KindAttributeSet event.Kind = "session-attribute-set"
	KindActivity     event.Kind = "session-activity"
)

// CreatedEvent is raised after a session is created and stored.
type CreatedEvent struct {
	Session *Session
}

// Kind returns KindCreated.
func (e CreatedEvent) Kind() event.Kind { return KindCreated }

// InvalidatedEvent is raised when a session is explicitly invalidated.
type InvalidatedEvent struct {
	Session *Session
}

// Kind returns KindInvalidated.
func (e InvalidatedEvent) Kind() event.Kind { return KindInvalidated }

// ExpiredEvent is raised when the expiration timer invalidates a session.
type ExpiredEvent struct {
	Session *Session
}

// Kind returns KindExpired.
func (e ExpiredEvent) Kind() event.Kind { return KindExpired }

// AttributeGetEvent is raised on attribute reads and explicit touches.
type AttributeGetEvent struct {
	Session *Session
	Name    string
}

// Kind returns KindAttributeGet.
func (e AttributeGetEvent) Kind() event.Kind { return KindAttributeGet }

// ParentKind returns KindActivity.
func (e AttributeGetEvent) ParentKind() event.Kind { return KindActivity }

// AttributeSetEvent is raised on attribute writes.
type AttributeSetEvent struct {
	Session *Session
	Name    string
}

// Kind returns KindAttributeSet.
func (e AttributeSetEvent) Kind() event.Kind { return KindAttributeSet }

// ParentKind returns KindActivity.
func (e AttributeSetEvent) ParentKind() event.Kind { return KindActivity }
