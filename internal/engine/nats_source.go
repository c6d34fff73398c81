package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/orangewallet/orange/internal/event"
	"github.com/orangewallet/orange/internal/logfields"
)

// NATSSource subscribes to a NATS subject on which the engine publishes its
// event stream. Reconnection is delegated to the NATS client, which retries
// indefinitely; per-subscription delivery order is preserved.
type NATSSource struct {
	url     string
	subject string
	events  chan event.Event
}

// NewNATSSource builds a NATS-backed event source.
func NewNATSSource(url, subject string) *NATSSource {
	return &NATSSource{
		url:     url,
		subject: subject,
		events:  make(chan event.Event),
	}
}

// Events returns the ordered event channel. It is closed when Run returns.
func (s *NATSSource) Events() <-chan event.Event {
	return s.events
}

// Run subscribes and blocks until ctx is canceled.
func (s *NATSSource) Run(ctx context.Context) error {
	defer close(s.events)

	conn, err := nats.Connect(s.url,
		nats.Name("orange-daemon"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			slog.Warn("Engine NATS connection lost, reconnecting", logfields.Error(err))
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			slog.Info("Engine NATS connection restored")
		}),
	)
	if err != nil {
		return fmt.Errorf("connect to nats: %w", err)
	}
	defer conn.Close()

	// Subscribe into an intermediate channel so only this goroutine sends
	// on s.events; closing it on return is then race-free.
	msgs := make(chan *nats.Msg, 64)
	sub, err := conn.ChanSubscribe(s.subject, msgs)
	if err != nil {
		return fmt.Errorf("subscribe to %s: %w", s.subject, err)
	}
	defer func() { _ = sub.Unsubscribe() }()

	slog.Info("Subscribed to engine event stream",
		slog.String("nats_url", s.url),
		slog.String("subject", s.subject))

	s.pump(ctx, msgs)
	return nil
}

// pump decodes and forwards messages in arrival order until ctx is canceled.
func (s *NATSSource) pump(ctx context.Context, msgs <-chan *nats.Msg) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-msgs:
			var ev event.Event
			if err := json.Unmarshal(msg.Data, &ev); err != nil {
				slog.Warn("Dropping malformed engine event", logfields.Error(err))
				continue
			}
			select {
			case s.events <- ev:
			case <-ctx.Done():
				return
			}
		}
	}
}
