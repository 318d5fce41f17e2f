// SPDX-License-Identifier: MIT

// Package broadcast fans theme changes out to every open page of a
// restaurant. A Hub serves one process; RedisRelay joins hubs across
// instances.
package broadcast

import (
	"context"
	"sync"
	"time"

	"github.com/thatcatcamp/menukitty/internal/metrics"
)

// subscriberBuffer is small on purpose: an event only tells the page to
// refetch, so one pending event is as good as many.
const subscriberBuffer = 4

// Event announces that a restaurant's theme was saved.
type Event struct {
	Restaurant             string    `json:"restaurant"`
	AppBg                  string    `json:"appBg"`
	BackgroundImageMediaID *string   `json:"backgroundImageMediaId"`
	At                     time.Time `json:"at"`
	Origin                 string    `json:"origin,omitempty"`
}

// Publisher delivers theme events. Hub and RedisRelay both implement it.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

type subscriber struct {
	ch   chan Event
	once sync.Once
}

// Hub keeps per-restaurant subscriber sets.
type Hub struct {
	mu   sync.RWMutex
	subs map[string]map[*subscriber]struct{}
}

// NewHub creates an empty hub
func NewHub() *Hub {
	return &Hub{subs: make(map[string]map[*subscriber]struct{})}
}

// Subscribe registers interest in one restaurant. The returned func
// unsubscribes and closes the channel; calling it more than once is safe.
func (h *Hub) Subscribe(restaurant string) (<-chan Event, func()) {
	sub := &subscriber{ch: make(chan Event, subscriberBuffer)}

	h.mu.Lock()
	set, ok := h.subs[restaurant]
	if !ok {
		set = make(map[*subscriber]struct{})
		h.subs[restaurant] = set
	}
	set[sub] = struct{}{}
	h.mu.Unlock()
	metrics.ThemeSubscribers.Inc()

	cancel := func() {
		sub.once.Do(func() {
			h.mu.Lock()
			if set, ok := h.subs[restaurant]; ok {
				delete(set, sub)
				if len(set) == 0 {
					delete(h.subs, restaurant)
				}
			}
			close(sub.ch)
			h.mu.Unlock()
			metrics.ThemeSubscribers.Dec()
		})
	}
	return sub.ch, cancel
}

// Publish delivers e to local subscribers of e.Restaurant.
func (h *Hub) Publish(ctx context.Context, e Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	h.deliver(e)
	metrics.ThemeBroadcasts.WithLabelValues("local").Inc()
	return nil
}

// Subscribers returns how many subscriptions are open for restaurant.
func (h *Hub) Subscribers(restaurant string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[restaurant])
}

// deliver never blocks. A subscriber whose buffer is full already has a
// refetch pending, so the event is dropped for it.
func (h *Hub) deliver(e Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for sub := range h.subs[e.Restaurant] {
		select {
		case sub.ch <- e:
		default:
		}
	}
}
