package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/orangewallet/orange/internal/config"
	"github.com/orangewallet/orange/internal/daemon"
	"github.com/orangewallet/orange/internal/engine"
	"github.com/orangewallet/orange/internal/eventstore"
	"github.com/orangewallet/orange/internal/webhook"
)

// DaemonCmd implements the 'daemon' command.
type DaemonCmd struct {
	Webhook []string `help:"URLs to POST event JSON to (can be specified multiple times)"`
}

func (c *DaemonCmd) Run(_ *Global, root *CLI) error {
	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}

	// Targets = configured webhooks plus tokenless --webhook flags.
	targets := append([]webhook.Target(nil), cfg.Webhooks...)
	for _, url := range c.Webhook {
		targets = append(targets, webhook.Target{URL: url})
	}

	return RunDaemon(cfg, targets)
}

// RunDaemon assembles and runs the daemon until a shutdown signal arrives
// or the event store fails.
func RunDaemon(cfg *config.Config, targets []webhook.Target) error {
	if err := os.MkdirAll(cfg.StoragePath, 0o755); err != nil {
		return fmt.Errorf("create storage directory: %w", err)
	}

	store, err := eventstore.NewSQLiteStore(cfg.EventStorePath())
	if err != nil {
		return fmt.Errorf("open event store: %w", err)
	}
	defer func() { _ = store.Close() }()

	source, err := newEventSource(cfg)
	if err != nil {
		return err
	}
	client := engine.NewClient(cfg.Engine.URL, cfg.Engine.Token)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	d := daemon.New(cfg, store, source, client, targets)

	errChan := make(chan error, 1)
	go func() {
		errChan <- d.Start(ctx)
	}()

	slog.Info("Daemon started, press Ctrl+C to stop")

	select {
	case err := <-errChan:
		if err != nil {
			return fmt.Errorf("daemon error: %w", err)
		}
	case <-ctx.Done():
		slog.Info("Shutdown signal received, stopping daemon...")
	}

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer stopCancel()

	if err := d.Stop(stopCtx); err != nil {
		return fmt.Errorf("failed to stop daemon: %w", err)
	}

	slog.Info("Daemon stopped")
	return nil
}

func newEventSource(cfg *config.Config) (engine.Source, error) {
	switch cfg.Engine.Transport {
	case config.TransportNATS:
		return engine.NewNATSSource(cfg.Engine.NATSURL, cfg.Engine.NATSSubject), nil
	default:
		source, err := engine.NewStreamSource(cfg.Engine.URL, cfg.Engine.Token)
		if err != nil {
			return nil, fmt.Errorf("create event stream: %w", err)
		}
		return source, nil
	}
}
