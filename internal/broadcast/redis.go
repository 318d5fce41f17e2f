// SPDX-License-Identifier: MIT
package broadcast

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/thatcatcamp/menukitty/internal/logging"
	"github.com/thatcatcamp/menukitty/internal/metrics"
)

// DefaultPrefix is prepended to the restaurant slug to form a channel name.
const DefaultPrefix = "menukitty:theme:"

// RedisConfig holds configuration for the relay connection
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
}

// RedisRelay publishes theme events to Redis and feeds events from other
// instances into the local hub.
type RedisRelay struct {
	rdb    *redis.Client
	hub    *Hub
	prefix string
	origin string
	log    zerolog.Logger
}

// NewRedisRelay connects to Redis and verifies the connection
func NewRedisRelay(cfg RedisConfig, hub *Hub) (*RedisRelay, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	prefix := cfg.Prefix
	if prefix == "" {
		prefix = DefaultPrefix
	}

	return &RedisRelay{
		rdb:    rdb,
		hub:    hub,
		prefix: prefix,
		origin: uuid.NewString(),
		log:    logging.For("broadcast"),
	}, nil
}

// Publish delivers e locally, then to every other instance.
func (r *RedisRelay) Publish(ctx context.Context, e Event) error {
	e.Origin = r.origin
	r.hub.deliver(e)
	metrics.ThemeBroadcasts.WithLabelValues("local").Inc()

	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	if err := r.rdb.Publish(ctx, r.prefix+e.Restaurant, payload).Err(); err != nil {
		return fmt.Errorf("redis publish failed: %w", err)
	}
	metrics.ThemeBroadcasts.WithLabelValues("redis").Inc()
	return nil
}

// Run relays remote events until ctx is cancelled.
func (r *RedisRelay) Run(ctx context.Context) error {
	ps := r.rdb.PSubscribe(ctx, r.prefix+"*")
	defer ps.Close()

	// Wait for the subscription to be confirmed
	if _, err := ps.Receive(ctx); err != nil {
		return fmt.Errorf("redis psubscribe failed: %w", err)
	}
	r.log.Info().Str("pattern", r.prefix+"*").Msg("Relaying theme events")

	ch := ps.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			r.handle(msg.Channel, msg.Payload)
		}
	}
}

// handle decodes one pub/sub message. Events this instance published itself
// were already delivered locally and are skipped.
func (r *RedisRelay) handle(channel, payload string) bool {
	var e Event
	if err := json.Unmarshal([]byte(payload), &e); err != nil {
		r.log.Warn().Err(err).Str("channel", channel).Msg("Dropping malformed theme event")
		return false
	}
	if e.Origin == r.origin {
		return false
	}
	if e.Restaurant == "" {
		e.Restaurant = strings.TrimPrefix(channel, r.prefix)
	}
	r.hub.deliver(e)
	return true
}

// Close closes the Redis connection
func (r *RedisRelay) Close() error {
	return r.rdb.Close()
}
