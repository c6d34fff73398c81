// Package queue exposes the pull-consumption boundary over the event store:
// peek the next pending event, then mark it handled. An empty queue is a
// normal condition, not an error.
package queue

import (
	"context"

	"github.com/orangewallet/orange/internal/event"
	"github.com/orangewallet/orange/internal/eventstore"
)

// Consumer is a thin, stateless wrapper around an event store. It is the
// external boundary used by pollers (the get-event / event-handled commands
// and the daemon's pull endpoints).
type Consumer struct {
	store eventstore.Store
}

// NewConsumer wraps the given store.
func NewConsumer(store eventstore.Store) *Consumer {
	return &Consumer{store: store}
}

// Next returns the next pending event without consuming it, or nil when the
// queue is drained.
func (c *Consumer) Next(ctx context.Context) (*event.Event, error) {
	return c.store.Peek(ctx)
}

// Handled marks the current event as handled, advancing the queue. It
// returns eventstore.ErrNoPendingEvent when nothing is pending, which is a
// caller usage error rather than a store failure.
func (c *Consumer) Handled(ctx context.Context) error {
	return c.store.Acknowledge(ctx)
}
