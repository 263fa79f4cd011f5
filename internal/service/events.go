package service

import (
	"sync"

	"github.com/google/uuid"
)

// EventKind names a session notification.
type EventKind string

const (
	// EventSessionChanged fires after any mutation of the session or role cache.
	EventSessionChanged EventKind = "session_changed"
	// EventSessionInvalid fires when the session was invalidated, e.g. by a 401.
	EventSessionInvalid EventKind = "session_invalid"
)

// Event is delivered to subscribers. Reason is set for EventSessionInvalid only.
type Event struct {
	Kind   EventKind
	Reason string
}

// Listener receives session events on the publisher's goroutine.
type Listener func(Event)

// Subscription identifies a registered listener. Unsubscribe is idempotent.
type Subscription struct {
	ID  string
	bus *EventBus
}

// Unsubscribe removes the listener. Safe to call more than once.
func (s Subscription) Unsubscribe() {
	if s.bus != nil {
		s.bus.unsubscribe(s.ID)
	}
}

type subscriber struct {
	id   string
	kind EventKind
	fn   Listener
}

// EventBus is an in-process publish/subscribe channel for session events.
// Delivery is synchronous in registration order; recipients are snapshotted at publish time.
type EventBus struct {
	mu   sync.RWMutex
	subs []subscriber
}

// NewEventBus creates an empty EventBus.
func NewEventBus() *EventBus {
	return &EventBus{}
}

// Subscribe registers fn for events of kind.
func (b *EventBus) Subscribe(kind EventKind, fn Listener) Subscription {
	id := uuid.NewString()
	b.mu.Lock()
	b.subs = append(b.subs, subscriber{id: id, kind: kind, fn: fn})
	b.mu.Unlock()
	return Subscription{ID: id, bus: b}
}

// Publish delivers ev to every listener of its kind registered at call time.
func (b *EventBus) Publish(ev Event) {
	b.mu.RLock()
	targets := make([]Listener, 0, len(b.subs))
	for _, s := range b.subs {
		if s.kind == ev.Kind {
			targets = append(targets, s.fn)
		}
	}
	b.mu.RUnlock()

	for _, fn := range targets {
		fn(ev)
	}
}

func (b *EventBus) unsubscribe(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, s := range b.subs {
		if s.id == id {
			b.subs = append(b.subs[:i:i], b.subs[i+1:]...)
			return
		}
	}
}
