// SPDX-License-Identifier: MIT
package themesync

import "sync"

// EventBus delivers named, payload-free events to listeners on the same
// page. Dispatch calls listeners synchronously in registration order.
type EventBus struct {
	mu       sync.RWMutex
	next     int
	handlers map[string][]listener
}

type listener struct {
	id int
	fn func()
}

// NewEventBus creates an empty bus
func NewEventBus() *EventBus {
	return &EventBus{handlers: make(map[string][]listener)}
}

// On registers fn for name and returns a func that removes it.
func (b *EventBus) On(name string, fn func()) func() {
	b.mu.Lock()
	b.next++
	id := b.next
	b.handlers[name] = append(b.handlers[name], listener{id: id, fn: fn})
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		ls := b.handlers[name]
		for i, l := range ls {
			if l.id == id {
				b.handlers[name] = append(ls[:i:i], ls[i+1:]...)
				return
			}
		}
	}
}

// Dispatch runs every listener registered for name.
func (b *EventBus) Dispatch(name string) {
	b.mu.RLock()
	ls := append([]listener(nil), b.handlers[name]...)
	b.mu.RUnlock()

	for _, l := range ls {
		l.fn()
	}
}
