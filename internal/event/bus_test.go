package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	kindChild  Kind = "child"
	kindParent Kind = "parent"
	kindOther  Kind = "other"
)

type childEvent struct{}

func (childEvent) Kind() Kind       { return kindChild }
func (childEvent) ParentKind() Kind { return kindParent }

type plainEvent struct{}

func (plainEvent) Kind() Kind { return kindOther }

func TestAddObserverRequiresKinds(t *testing.T) {
	bus := NewBus()

	err := bus.AddObserver(ObserverFunc{Fn: func(Event) {}})
	require.ErrorIs(t, err, ErrNoObservedKinds)
}

func TestRaiseInvokesInRegistrationOrder(t *testing.T) {
	bus := NewBus()

	var order []int

	for i := 0; i < 3; i++ {
		i := i
		err := bus.AddObserver(ObserverFunc{
			Kinds: []Kind{kindOther},
			Fn:    func(Event) { order = append(order, i) },
		})
		require.NoError(t, err)
	}

	bus.Raise(plainEvent{})

	assert.Equal(t, []int{0, 1, 2}, order)
}

func TestRaisePrefersExactKindOverParent(t *testing.T) {
	bus := NewBus()

	var got []string

	err := bus.AddObserver(ObserverFunc{
		Kinds: []Kind{kindParent},
		Fn:    func(Event) { got = append(got, "parent") },
	})
	require.NoError(t, err)

	err = bus.AddObserver(ObserverFunc{
		Kinds: []Kind{kindChild},
		Fn:    func(Event) { got = append(got, "child") },
	})
	require.NoError(t, err)

	bus.Raise(childEvent{})

	assert.Equal(t, []string{"child"}, got)
}

func TestRaiseFallsBackToParentKind(t *testing.T) {
	bus := NewBus()

	var got []string

	err := bus.AddObserver(ObserverFunc{
		Kinds: []Kind{kindParent},
		Fn:    func(Event) { got = append(got, "parent") },
	})
	require.NoError(t, err)

	bus.Raise(childEvent{})

	assert.Equal(t, []string{"parent"}, got)
}

func TestRaiseWithoutObserversIsNoop(t *testing.T) {
	bus := NewBus()

	assert.NotPanics(t, func() { bus.Raise(plainEvent{}) })
}

func TestObserverPanicIsIsolated(t *testing.T) {
	bus := NewBus()

	var reached bool

	err := bus.AddObserver(ObserverFunc{
		Kinds: []Kind{kindOther},
		Fn:    func(Event) { panic("observer blew up") },
	})
	require.NoError(t, err)

	err = bus.AddObserver(ObserverFunc{
		Kinds: []Kind{kindOther},
		Fn:    func(Event) { reached = true },
	})
	require.NoError(t, err)

	assert.NotPanics(t, func() { bus.Raise(plainEvent{}) })
	assert.True(t, reached, "observer after the panicking one must still run")
}

func TestObserverReceivesOnlyObservedKinds(t *testing.T) {
	bus := NewBus()

	var count int

	err := bus.AddObserver(ObserverFunc{
		Kinds: []Kind{kindChild},
		Fn:    func(Event) { count++ },
	})
	require.NoError(t, err)

	bus.Raise(plainEvent{})
	bus.Raise(childEvent{})

	assert.Equal(t, 1, count)
}
