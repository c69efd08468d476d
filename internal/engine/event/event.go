// Package event provides a synchronous notification bus owned by a single
// character instance.
package event

import (
	"github.com/Faultbox/casper/pkg/math"
)

// Kind identifies a notification.
type Kind int

const (
	KindStateEntered Kind = iota
	KindTargetReached
	KindBehaviorChanged
	KindIntentCompleted
)

// String returns the notification name used in logs.
func (k Kind) String() string {
	switch k {
	case KindStateEntered:
		return "state_entered"
	case KindTargetReached:
		return "target_reached"
	case KindBehaviorChanged:
		return "behavior_changed"
	case KindIntentCompleted:
		return "intent_completed"
	default:
		return "unknown"
	}
}

// Event is a single notification. Only the fields relevant to Kind are set.
type Event struct {
	Kind     Kind
	State    string    // KindStateEntered
	Behavior string    // KindBehaviorChanged, KindIntentCompleted
	Position math.Vec2 // KindTargetReached
}

// Handler receives events.
type Handler func(Event)

// Subscription identifies a registered handler.
type Subscription uint64

type listener struct {
	id   Subscription
	kind Kind
	once bool
	fn   Handler
}

// Bus delivers events to handlers in registration order, synchronously.
//
// Handlers may emit further events or (un)subscribe while being called.
// Nested emits are delivered immediately, before the outer Emit returns.
// Handlers registered during an Emit do not see the event being delivered.
type Bus struct {
	listeners []listener
	nextID    Subscription
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{}
}

// Subscribe registers fn for events of the given kind.
func (b *Bus) Subscribe(kind Kind, fn Handler) Subscription {
	return b.add(kind, fn, false)
}

// Once registers fn for the next event of the given kind only.
func (b *Bus) Once(kind Kind, fn Handler) Subscription {
	return b.add(kind, fn, true)
}

func (b *Bus) add(kind Kind, fn Handler, once bool) Subscription {
	b.nextID++
	b.listeners = append(b.listeners, listener{id: b.nextID, kind: kind, once: once, fn: fn})
	return b.nextID
}

// Unsubscribe removes a handler. Unknown subscriptions are ignored.
func (b *Bus) Unsubscribe(id Subscription) {
	for i, l := range b.listeners {
		if l.id == id {
			b.listeners = append(b.listeners[:i:i], b.listeners[i+1:]...)
			return
		}
	}
}

// Emit delivers ev to every handler subscribed to ev.Kind.
func (b *Bus) Emit(ev Event) {
	// Snapshot so handlers can mutate the listener list.
	snapshot := make([]listener, 0, len(b.listeners))
	for _, l := range b.listeners {
		if l.kind == ev.Kind {
			snapshot = append(snapshot, l)
		}
	}

	for _, l := range snapshot {
		if !b.has(l.id) {
			// Removed by an earlier handler in this delivery.
			continue
		}
		if l.once {
			b.Unsubscribe(l.id)
		}
		l.fn(ev)
	}
}

// Len returns the number of registered handlers.
func (b *Bus) Len() int {
	return len(b.listeners)
}

func (b *Bus) has(id Subscription) bool {
	for _, l := range b.listeners {
		if l.id == id {
			return true
		}
	}
	return false
}
