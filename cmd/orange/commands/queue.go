package commands

import (
	"fmt"
	"os"

	"github.com/orangewallet/orange/internal/eventstore"
	"github.com/orangewallet/orange/internal/queue"
)

// openConsumer opens the event queue for pull consumption. The store is
// shared with a pull-mode daemon via the database file; there must be one
// logical consumer only.
func openConsumer(root *CLI) (*queue.Consumer, *eventstore.SQLiteStore, error) {
	cfg, err := loadConfig(root)
	if err != nil {
		return nil, nil, err
	}
	if _, err := os.Stat(cfg.EventStorePath()); os.IsNotExist(err) {
		return nil, nil, fmt.Errorf("event queue not found at %s (is the daemon running?)", cfg.EventStorePath())
	}
	store, err := eventstore.NewSQLiteStore(cfg.EventStorePath())
	if err != nil {
		return nil, nil, fmt.Errorf("open event store: %w", err)
	}
	return queue.NewConsumer(store), store, nil
}

// GetEventCmd implements 'get-event'.
type GetEventCmd struct{}

func (c *GetEventCmd) Run(_ *Global, root *CLI) error {
	consumer, store, err := openConsumer(root)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	ctx, cancel := queryContext()
	defer cancel()

	ev, err := consumer.Next(ctx)
	if err != nil {
		return err
	}
	if ev == nil {
		return printJSON(map[string]any{"event": nil})
	}
	return printJSON(ev)
}

// EventHandledCmd implements 'event-handled'.
type EventHandledCmd struct{}

func (c *EventHandledCmd) Run(_ *Global, root *CLI) error {
	consumer, store, err := openConsumer(root)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	ctx, cancel := queryContext()
	defer cancel()

	if err := consumer.Handled(ctx); err != nil {
		return err
	}
	return printJSON(map[string]bool{"ok": true})
}
