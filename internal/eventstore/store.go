// Package eventstore persists wallet events as a durable, append-only,
// ordered log with a single read cursor.
//
// The cursor points at the next undelivered event. It only ever advances, by
// exactly one per acknowledgment, and both the log and the cursor survive
// process restarts. One logical consumer per store: either the daemon in
// push mode, or an external poller via the queue consumer API.
package eventstore

import (
	"context"

	"github.com/orangewallet/orange/internal/event"
)

// Store defines the durable event queue contract.
type Store interface {
	// Append adds an event at the end of the log and returns its 0-based
	// position. Failures are persistence failures and must be treated as
	// fatal by the caller; an append is never partially applied.
	Append(ctx context.Context, ev event.Event) (int64, error)

	// Peek returns the event at the cursor without side effects, or
	// (nil, nil) when the queue is drained. Repeated calls without an
	// intervening Acknowledge return the identical event.
	Peek(ctx context.Context) (*event.Event, error)

	// Acknowledge durably advances the cursor past the current event.
	// Returns ErrNoPendingEvent when the cursor already equals the length.
	Acknowledge(ctx context.Context) error

	// Length returns the total number of events ever appended.
	Length(ctx context.Context) (int64, error)

	// Cursor returns the persisted cursor position.
	Cursor(ctx context.Context) (int64, error)

	// Close releases the underlying resources.
	Close() error
}
