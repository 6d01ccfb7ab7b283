package event

import (
	"reflect"

	"github.com/sasha-s/go-deadlock"
)

// Bus is a double-buffered event bus. Events emitted in tick N are
// delivered in tick N+1, after SwapBuffers, in the order they were emitted.
// Emit and dispatch run on the simulation goroutine; Subscribe may be
// called from any goroutine.
type Bus struct {
	mu       deadlock.Mutex // only protects handlers
	handlers map[reflect.Type][]func(any)
	front    []any
	back     []any
}

func NewBus() *Bus {
	return &Bus{handlers: make(map[reflect.Type][]func(any))}
}

// Emit queues an event for the next dispatch.
func Emit[T any](b *Bus, event T) {
	b.back = append(b.back, event)
}

// Subscribe registers a handler for events of type T.
func Subscribe[T any](b *Bus, fn func(T)) {
	t := reflect.TypeFor[T]()
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[t] = append(b.handlers[t], func(ev any) { fn(ev.(T)) })
}

// SwapBuffers makes the queued events the ones DispatchAll delivers and
// starts an empty queue.
func (b *Bus) SwapBuffers() {
	b.front, b.back = b.back, b.front[:0]
}

// Pending returns the number of events queued since the last swap.
func (b *Bus) Pending() int {
	return len(b.back)
}

// DispatchAll delivers the swapped events to their handlers.
func (b *Bus) DispatchAll() {
	b.mu.Lock()
	handlers := make(map[reflect.Type][]func(any), len(b.handlers))
	for t, hs := range b.handlers {
		handlers[t] = hs
	}
	b.mu.Unlock()

	for _, ev := range b.front {
		for _, h := range handlers[reflect.TypeOf(ev)] {
			h(ev)
		}
	}
}
