package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/orangewallet/orange/internal/event"
	"github.com/orangewallet/orange/internal/logfields"
)

const streamReadTimeout = 90 * time.Second

// StreamSource subscribes to the engine's websocket event stream and
// reconnects with backoff across transport failures. Events are stamped at
// receipt and delivered strictly in arrival order.
type StreamSource struct {
	url    string
	token  string
	policy ReconnectPolicy
	events chan event.Event
}

// EventsURL derives the websocket stream endpoint from the engine base URL.
func EventsURL(engineURL string) (string, error) {
	parsed, err := url.Parse(engineURL)
	if err != nil {
		return "", fmt.Errorf("parse engine url: %w", err)
	}
	switch parsed.Scheme {
	case "http", "ws":
		parsed.Scheme = "ws"
	case "https", "wss":
		parsed.Scheme = "wss"
	default:
		return "", fmt.Errorf("unsupported engine url scheme: %s", parsed.Scheme)
	}
	parsed.Path = strings.TrimRight(parsed.Path, "/") + "/v1/events"
	return parsed.String(), nil
}

// NewStreamSource builds a websocket source for the engine at engineURL.
func NewStreamSource(engineURL, token string) (*StreamSource, error) {
	wsURL, err := EventsURL(engineURL)
	if err != nil {
		return nil, err
	}
	return &StreamSource{
		url:    wsURL,
		token:  token,
		policy: DefaultReconnectPolicy(),
		events: make(chan event.Event),
	}, nil
}

// Events returns the ordered event channel. It is closed when Run returns.
func (s *StreamSource) Events() <-chan event.Event {
	return s.events
}

// Run connects to the engine stream and reconnects with exponential backoff
// until ctx is canceled. Connection loss is recoverable, never fatal.
func (s *StreamSource) Run(ctx context.Context) error {
	defer close(s.events)

	attempt := 0
	for {
		if ctx.Err() != nil {
			return nil
		}

		connStart := time.Now()
		err := s.consume(ctx)
		if ctx.Err() != nil {
			return nil
		}

		// A connection that held for a while resets the backoff.
		if time.Since(connStart) > time.Minute {
			attempt = 0
		}
		attempt++
		backoff := s.policy.Delay(attempt)

		slog.Warn("Engine event stream disconnected, reconnecting",
			slog.Int("attempt", attempt),
			slog.Duration("backoff", backoff),
			logfields.Error(err))

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(backoff):
		}
	}
}

func (s *StreamSource) consume(ctx context.Context) error {
	header := http.Header{}
	if s.token != "" {
		header.Set("Authorization", "Bearer "+s.token)
	}

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, s.url, header)
	if err != nil {
		if resp != nil {
			return fmt.Errorf("dial: %w (status %d)", err, resp.StatusCode)
		}
		return fmt.Errorf("dial: %w", err)
	}
	defer func() { _ = conn.Close() }()

	// Unblock the pending read when ctx is canceled.
	readDone := make(chan struct{})
	defer close(readDone)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.Close()
		case <-readDone:
		}
	}()

	// Reset the deadline on server pings so quiet wallets don't trigger a
	// read timeout.
	conn.SetPingHandler(func(appData string) error {
		_ = conn.SetReadDeadline(time.Now().Add(streamReadTimeout))
		return conn.WriteControl(websocket.PongMessage, []byte(appData), time.Now().Add(5*time.Second))
	})

	slog.Info("Connected to engine event stream", slog.String("url", s.url))

	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		_ = conn.SetReadDeadline(time.Now().Add(streamReadTimeout))
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("read: %w", err)
		}

		var ev event.Event
		if err := json.Unmarshal(raw, &ev); err != nil {
			slog.Warn("Dropping malformed engine event", logfields.Error(err))
			continue
		}

		select {
		case s.events <- ev:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
