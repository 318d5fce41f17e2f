// SPDX-License-Identifier: MIT
package themesync

import (
	"context"
	"fmt"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/thatcatcamp/menukitty/internal/broadcast"
	"github.com/thatcatcamp/menukitty/internal/logging"
)

const (
	minBackoff = time.Second
	maxBackoff = 30 * time.Second
)

// PushListener holds a websocket to the theme hub and calls OnEvent for
// every change announced on it.
type PushListener struct {
	url     string
	onEvent func(broadcast.Event)
	dialer  *websocket.Dialer
	log     zerolog.Logger
}

// NewPushListener creates a listener for a ws:// or wss:// URL.
func NewPushListener(wsURL string, onEvent func(broadcast.Event)) *PushListener {
	return &PushListener{
		url:     wsURL,
		onEvent: onEvent,
		dialer:  websocket.DefaultDialer,
		log:     logging.For("theme-push"),
	}
}

// ForSyncer returns a listener that triggers a refetch on every event.
func ForSyncer(wsURL string, s *Syncer) *PushListener {
	return NewPushListener(wsURL, func(broadcast.Event) { s.Trigger(TriggerPush) })
}

// Run keeps the connection open until ctx is cancelled, reconnecting with
// exponential backoff.
func (p *PushListener) Run(ctx context.Context) error {
	backoff := minBackoff

	for {
		connected, err := p.listen(ctx)
		if ctx.Err() != nil {
			return nil
		}
		if connected {
			backoff = minBackoff
		}
		p.log.Warn().Err(err).Dur("retry_in", backoff).Msg("Theme push connection lost, reconnecting...")

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(backoff):
		}

		backoff *= 2
		if backoff > maxBackoff {
			backoff = maxBackoff
		}
	}
}

// listen reads events until the connection fails. connected reports whether
// the dial succeeded.
func (p *PushListener) listen(ctx context.Context) (connected bool, err error) {
	conn, _, err := p.dialer.DialContext(ctx, p.url, nil)
	if err != nil {
		return false, fmt.Errorf("dial: %w", err)
	}
	defer conn.Close()

	p.log.Info().Str("url", p.url).Msg("Connected to theme push channel")

	// Unblock ReadJSON when ctx ends
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	for {
		var e broadcast.Event
		if err := conn.ReadJSON(&e); err != nil {
			return true, fmt.Errorf("read: %w", err)
		}
		p.onEvent(e)
	}
}
