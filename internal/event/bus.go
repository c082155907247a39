// Package event implements the in-process publish/subscribe bus used to
// decouple authentication outcomes from auditing, session expiration, and
// custom observers.
//
// Dispatch is synchronous: Raise invokes every observer registered for the
// event's kind, in registration order, on the calling thread. A kind may
// declare a single parent kind that is consulted once when no observer is
// registered for the exact kind. Observer failures are logged and isolated;
// they never abort dispatch to the remaining observers.
//
// The observer registry is read-mostly. Observers are registered during
// startup, before steady-state traffic; concurrent registration during active
// dispatch is not supported.
package event

import (
	"errors"

	"github.com/rs/zerolog/log"
)

// ErrNoObservedKinds is returned when an observer declares no event kinds.
var ErrNoObservedKinds = errors.New("event observer declares no observed kinds")

// Kind tags the runtime type of an event.
type Kind string

// Event is raised on the bus. Concrete event types live next to the
// components producing them.
type Event interface {
	Kind() Kind
}

// ParentKinded is implemented by events whose kind has a parent kind.
// Observers registered for the parent receive the event when no observer is
// registered for the exact kind.
type ParentKinded interface {
	ParentKind() Kind
}

// Observer handles events. Observes declares the kinds the observer wants,
// fixed at registration time.
type Observer interface {
	Observes() []Kind
	Handle(e Event)
}

// ObserverFunc adapts a function to an Observer for a fixed set of kinds.
type ObserverFunc struct {
	Kinds []Kind
	Fn    func(e Event)
}

// Observes returns the observed kinds.
func (o ObserverFunc) Observes() []Kind { return o.Kinds }

// Handle invokes the wrapped function.
func (o ObserverFunc) Handle(e Event) { o.Fn(e) }

// Bus dispatches events to registered observers.
type Bus struct {
	observers map[Kind][]Observer
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{observers: make(map[Kind][]Observer)}
}

// AddObserver registers an observer for every kind it declares. Declaring no
// kinds is a configuration error.
func (b *Bus) AddObserver(o Observer) error {
	kinds := o.Observes()
	if len(kinds) == 0 {
		return ErrNoObservedKinds
	}

	for _, kind := range kinds {
		b.observers[kind] = append(b.observers[kind], o)
	}

	return nil
}

// Raise dispatches the event synchronously. Observers for the exact kind are
// consulted first; when none exist and the event declares a parent kind, the
// parent's observers receive it instead.
func (b *Bus) Raise(e Event) {
	observers := b.observers[e.Kind()]

	if len(observers) == 0 {
		if parented, ok := e.(ParentKinded); ok {
			observers = b.observers[parented.ParentKind()]
		}
	}

	for _, o := range observers {
		b.dispatch(o, e)
	}
}

// dispatch invokes one observer, containing panics so a failing observer
// cannot abort fan-out to the rest.
func (b *Bus) dispatch(o Observer, e Event) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Str("kind", string(e.Kind())).
				Msg("event observer failed")
		}
	}()

	o.Handle(e)
}
