package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEventBus_DeliversInRegistrationOrder(t *testing.T) {
	bus := NewEventBus()
	var got []string
	bus.Subscribe(EventSessionChanged, func(Event) { got = append(got, "first") })
	bus.Subscribe(EventSessionChanged, func(Event) { got = append(got, "second") })
	bus.Subscribe(EventSessionInvalid, func(Event) { got = append(got, "invalid") })

	bus.Publish(Event{Kind: EventSessionChanged})
	assert.Equal(t, []string{"first", "second"}, got)
}

func TestEventBus_InvalidCarriesReason(t *testing.T) {
	bus := NewEventBus()
	var reason string
	bus.Subscribe(EventSessionInvalid, func(ev Event) { reason = ev.Reason })

	bus.Publish(Event{Kind: EventSessionInvalid, Reason: "expired"})
	assert.Equal(t, "expired", reason)
}

func TestEventBus_UnsubscribeIsIdempotent(t *testing.T) {
	bus := NewEventBus()
	calls := 0
	sub := bus.Subscribe(EventSessionChanged, func(Event) { calls++ })
	assert.NotEmpty(t, sub.ID)

	sub.Unsubscribe()
	sub.Unsubscribe()
	bus.Publish(Event{Kind: EventSessionChanged})
	assert.Zero(t, calls)

	Subscription{}.Unsubscribe()
}

func TestEventBus_SnapshotAtPublish(t *testing.T) {
	bus := NewEventBus()
	lateCalls := 0
	var second Subscription
	bus.Subscribe(EventSessionChanged, func(Event) {
		bus.Subscribe(EventSessionChanged, func(Event) { lateCalls++ })
		second.Unsubscribe()
	})
	secondCalls := 0
	second = bus.Subscribe(EventSessionChanged, func(Event) { secondCalls++ })

	bus.Publish(Event{Kind: EventSessionChanged})
	assert.Zero(t, lateCalls, "listener added during publish must wait for the next event")
	assert.Equal(t, 1, secondCalls, "listener removed during publish still receives the current event")

	bus.Publish(Event{Kind: EventSessionChanged})
	assert.Equal(t, 1, lateCalls)
	assert.Equal(t, 1, secondCalls)
}
