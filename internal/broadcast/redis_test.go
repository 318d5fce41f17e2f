// SPDX-License-Identifier: MIT
package broadcast

import (
	"context"
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newOfflineRelay(hub *Hub) *RedisRelay {
	return &RedisRelay{hub: hub, prefix: DefaultPrefix, origin: "self", log: zerolog.Nop()}
}

func TestRelayHandleRemoteEvent(t *testing.T) {
	hub := NewHub()
	ch, cancel := hub.Subscribe("pasta")
	defer cancel()
	relay := newOfflineRelay(hub)

	payload, _ := json.Marshal(Event{Restaurant: "pasta", AppBg: "#123456", Origin: "other"})
	assert.True(t, relay.handle(DefaultPrefix+"pasta", string(payload)))

	select {
	case e := <-ch:
		assert.Equal(t, "#123456", e.AppBg)
	default:
		t.Fatal("remote event was not delivered locally")
	}
}

func TestRelaySkipsOwnEvents(t *testing.T) {
	hub := NewHub()
	ch, cancel := hub.Subscribe("pasta")
	defer cancel()
	relay := newOfflineRelay(hub)

	payload, _ := json.Marshal(Event{Restaurant: "pasta", Origin: "self"})
	assert.False(t, relay.handle(DefaultPrefix+"pasta", string(payload)))

	select {
	case e := <-ch:
		t.Fatalf("own event echoed back: %+v", e)
	default:
	}
}

func TestRelayRestaurantFromChannel(t *testing.T) {
	hub := NewHub()
	ch, cancel := hub.Subscribe("sushi")
	defer cancel()
	relay := newOfflineRelay(hub)

	assert.True(t, relay.handle(DefaultPrefix+"sushi", `{"appBg":"#000000","origin":"other"}`))
	assert.Len(t, ch, 1)
}

func TestRelayDropsMalformed(t *testing.T) {
	relay := newOfflineRelay(NewHub())
	assert.False(t, relay.handle(DefaultPrefix+"pasta", "{not json"))
}

// Requires a Redis server; set MENUKITTY_TEST_REDIS to its address.
func TestRelayAcrossInstances(t *testing.T) {
	addr := os.Getenv("MENUKITTY_TEST_REDIS")
	if addr == "" {
		t.Skip("MENUKITTY_TEST_REDIS not set")
	}
	prefix := "menukitty:test:" + t.Name() + ":"

	hubA, hubB := NewHub(), NewHub()
	a, err := NewRedisRelay(RedisConfig{Addr: addr, Prefix: prefix}, hubA)
	if err != nil {
		t.Skipf("Redis not available: %v", err)
	}
	defer a.Close()
	b, err := NewRedisRelay(RedisConfig{Addr: addr, Prefix: prefix}, hubB)
	require.NoError(t, err)
	defer b.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go b.Run(ctx)

	ch, unsub := hubB.Subscribe("pasta")
	defer unsub()

	// Give subscription time to set up
	time.Sleep(200 * time.Millisecond)
	require.NoError(t, a.Publish(ctx, Event{Restaurant: "pasta", AppBg: "#ABCDEF"}))

	select {
	case e := <-ch:
		assert.Equal(t, "#ABCDEF", e.AppBg)
	case <-time.After(3 * time.Second):
		t.Fatal("event did not cross instances")
	}
}
