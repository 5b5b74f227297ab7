package kernel

import (
	"fmt"
	"reflect"
	"sync"
)

// Event is the unit of communication on the kernel bus: a validated
// "domain:action" name plus an arbitrary payload. Events are fire-and-forget;
// there is no acknowledgement and no ordering guarantee across distinct
// event names.
type Event struct {
	Name    string
	Payload any
}

// EventHandler receives events published on the bus. A handler error (or
// panic) is logged and swallowed so that one listener's bug cannot break
// delivery to the remaining listeners or crash the emitter.
type EventHandler func(event Event) error

type busSubscription struct {
	handler EventHandler
}

// EventBus is a synchronous publish/subscribe hub. Emit dispatches to a
// snapshot of the handlers registered at emit time, so subscribing or
// unsubscribing from inside a handler never affects the in-flight emission.
// Dispatch is synchronous end-to-end: Emit returns only after every handler
// has run (or had its failure captured).
type EventBus struct {
	mu        sync.RWMutex
	listeners map[string][]*busSubscription
	logger    Logger
}

// NewEventBus creates an empty bus that reports handler failures to logger.
func NewEventBus(logger Logger) *EventBus {
	return &EventBus{
		listeners: make(map[string][]*busSubscription),
		logger:    logger,
	}
}

// On subscribes handler to the named event and returns an unsubscribe
// function. The returned function is idempotent. Fails with
// ErrInvalidEventName if the name does not match the event name grammar.
func (b *EventBus) On(name string, handler EventHandler) (func(), error) {
	if err := AssertEventName(name); err != nil {
		return nil, err
	}

	sub := &busSubscription{handler: handler}

	b.mu.Lock()
	b.listeners[name] = append(b.listeners[name], sub)
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { b.remove(name, sub) })
	}, nil
}

// Off unsubscribes a previously registered handler by function identity.
// Removing an unknown handler is a no-op. Prefer the unsubscribe function
// returned by On; Off exists for callers that keep the handler reference
// around instead.
func (b *EventBus) Off(name string, handler EventHandler) {
	ptr := reflect.ValueOf(handler).Pointer()

	b.mu.Lock()
	defer b.mu.Unlock()

	subs := b.listeners[name]
	for i, sub := range subs {
		if reflect.ValueOf(sub.handler).Pointer() == ptr {
			b.listeners[name] = append(subs[:i:i], subs[i+1:]...)
			break
		}
	}
	if len(b.listeners[name]) == 0 {
		delete(b.listeners, name)
	}
}

// Emit publishes an event to every handler currently subscribed to name.
// Handlers run synchronously in registration order; a handler that fails or
// panics is logged and does not prevent delivery to the rest. Fails with
// ErrInvalidEventName if the name does not match the event name grammar.
func (b *EventBus) Emit(name string, payload any) error {
	if err := AssertEventName(name); err != nil {
		return err
	}

	b.mu.RLock()
	subs := make([]*busSubscription, len(b.listeners[name]))
	copy(subs, b.listeners[name])
	b.mu.RUnlock()

	event := Event{Name: name, Payload: payload}
	for _, sub := range subs {
		b.dispatch(sub, event)
	}
	return nil
}

// dispatch invokes a single handler, containing errors and panics.
func (b *EventBus) dispatch(sub *busSubscription, event Event) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("Event handler panicked", "event", event.Name, "panic", fmt.Sprintf("%v", r))
		}
	}()

	if err := sub.handler(event); err != nil {
		b.logger.Error("Event handler failed", "event", event.Name, "error", err)
	}
}

// Clear removes every subscription from the bus.
func (b *EventBus) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.listeners = make(map[string][]*busSubscription)
}

// ListenerCount returns the number of handlers subscribed to name.
func (b *EventBus) ListenerCount(name string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.listeners[name])
}

func (b *EventBus) remove(name string, sub *busSubscription) {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs := b.listeners[name]
	for i, s := range subs {
		if s == sub {
			b.listeners[name] = append(subs[:i:i], subs[i+1:]...)
			break
		}
	}
	if len(b.listeners[name]) == 0 {
		delete(b.listeners, name)
	}
}
