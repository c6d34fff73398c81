package engine

import (
	"context"
	"time"

	"github.com/orangewallet/orange/internal/event"
)

// Source is a subscription to the wallet engine's event stream.
//
// Run blocks until ctx is canceled, reconnecting across transient transport
// failures; a disconnect is never fatal. Events are delivered on Events() in
// arrival order, and the channel is closed when Run returns.
type Source interface {
	Run(ctx context.Context) error
	Events() <-chan event.Event
}

// ReconnectPolicy computes the backoff between reconnect attempts.
// It is immutable after construction.
type ReconnectPolicy struct {
	Initial time.Duration // base delay
	Max     time.Duration // cap for growth
}

// DefaultReconnectPolicy returns exponential backoff from 1s capped at 30s.
func DefaultReconnectPolicy() ReconnectPolicy {
	return ReconnectPolicy{Initial: time.Second, Max: 30 * time.Second}
}

// Delay returns the backoff before the given attempt (1-based).
func (p ReconnectPolicy) Delay(attempt int) time.Duration {
	if attempt <= 0 {
		return 0
	}
	shift := attempt - 1
	if shift > 5 {
		shift = 5
	}
	d := p.Initial * (1 << shift)
	if d > p.Max {
		return p.Max
	}
	return d
}
