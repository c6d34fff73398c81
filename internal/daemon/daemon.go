// Package daemon runs the long-lived notification loop: it consumes the
// engine's event stream, appends every event to the durable queue, and
// either pushes it to the configured webhook targets (auto-acknowledging)
// or leaves it queued for pull consumption.
package daemon

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"

	"github.com/orangewallet/orange/internal/config"
	"github.com/orangewallet/orange/internal/engine"
	"github.com/orangewallet/orange/internal/event"
	"github.com/orangewallet/orange/internal/eventstore"
	"github.com/orangewallet/orange/internal/logfields"
	"github.com/orangewallet/orange/internal/webhook"
)

// Mode is the daemon's delivery mode, fixed for its lifetime.
type Mode string

const (
	// ModePush delivers every event to the webhook targets and
	// auto-acknowledges it, regardless of delivery outcome.
	ModePush Mode = "push"
	// ModePull only appends; acknowledgment is left to an external
	// consumer via get-event / event-handled.
	ModePull Mode = "pull"
)

// Daemon owns the event distribution runtime: one ordered consumer of the
// engine stream, the durable store, the dispatcher and the admin surface.
type Daemon struct {
	cfg        *config.Config
	store      eventstore.Store
	source     engine.Source
	client     *engine.Client
	dispatcher *webhook.Dispatcher
	targets    []webhook.Target

	mode      Mode
	metrics   *metrics
	admin     *AdminServer
	scheduler gocron.Scheduler
	workers   WorkerGroup
	startTime time.Time
}

// New assembles a daemon. The mode is push iff at least one target is
// configured; it is not legal to mix auto-ack and manual consumption
// against the same store.
func New(cfg *config.Config, store eventstore.Store, source engine.Source, client *engine.Client, targets []webhook.Target) *Daemon {
	mode := ModePull
	if len(targets) > 0 {
		mode = ModePush
	}
	d := &Daemon{
		cfg:        cfg,
		store:      store,
		source:     source,
		client:     client,
		dispatcher: webhook.NewDispatcher(time.Duration(cfg.Daemon.WebhookTimeoutSecs) * time.Second),
		targets:    targets,
		mode:       mode,
		metrics:    newMetrics(store),
		startTime:  time.Now(),
	}
	d.admin = NewAdminServer(cfg.Daemon.AdminPort, d)
	return d
}

// Mode returns the daemon's delivery mode.
func (d *Daemon) Mode() Mode { return d.mode }

// Start runs the daemon until ctx is canceled or the store fails.
// Store persistence failures are fatal by design: stopping beats silently
// losing or re-delivering events.
func (d *Daemon) Start(ctx context.Context) error {
	slog.Info("Daemon starting", logfields.Mode(string(d.mode)), slog.Int("targets", len(d.targets)))
	for _, target := range d.targets {
		slog.Info("Webhook target configured", logfields.Target(target.URL))
	}
	if d.mode == ModePull {
		slog.Info("No webhooks configured, events will queue until consumed via get-event/event-handled")
	}

	if err := d.admin.Start(ctx); err != nil {
		return fmt.Errorf("start admin server: %w", err)
	}
	if err := d.startScheduler(); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}

	d.workers.Go(func() {
		if err := d.source.Run(ctx); err != nil {
			slog.Error("Engine event source stopped", logfields.Error(err))
		}
	})

	return d.loop(ctx)
}

// Stop shuts the daemon down gracefully, bounded by ctx.
func (d *Daemon) Stop(ctx context.Context) error {
	if d.scheduler != nil {
		if err := d.scheduler.Shutdown(); err != nil {
			slog.Warn("Scheduler shutdown failed", logfields.Error(err))
		}
	}
	if err := d.admin.Stop(ctx); err != nil {
		slog.Warn("Admin server shutdown failed", logfields.Error(err))
	}
	return d.workers.StopAndWait(ctx)
}

// loop is the single ordered consumer: event N is fully appended,
// dispatched and acknowledged before event N+1 is looked at.
func (d *Daemon) loop(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-d.source.Events():
			if !ok {
				return nil
			}
			if err := d.handleEvent(ctx, ev); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				return err
			}
		}
	}
}

func (d *Daemon) handleEvent(ctx context.Context, ev event.Event) error {
	jobID := uuid.NewString()
	d.metrics.eventsReceived.Inc()

	position, err := d.store.Append(ctx, ev)
	if err != nil {
		return fmt.Errorf("append event: %w", err)
	}
	d.metrics.eventsAppended.Inc()

	slog.Info("Event received",
		logfields.JobID(jobID),
		logfields.EventKind(string(ev.Kind)),
		logfields.Position(position))

	if d.mode == ModePull {
		return nil
	}

	outcomes := d.dispatcher.Dispatch(ctx, ev, d.targets)
	for _, outcome := range outcomes {
		d.metrics.recordOutcome(outcome.Delivered)
	}

	// Acknowledgment is unconditional on delivery success: delivery is
	// best-effort, queue advancement is not gated on it.
	if err := d.store.Acknowledge(ctx); err != nil {
		return fmt.Errorf("acknowledge event: %w", err)
	}
	return nil
}

// startScheduler begins the periodic engine connectivity poll.
func (d *Daemon) startScheduler() error {
	if d.client == nil {
		return nil
	}
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return fmt.Errorf("create scheduler: %w", err)
	}
	interval := time.Duration(d.cfg.Engine.SyncIntervalSecs) * time.Second
	if _, err := scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(d.pollEngineInfo),
		gocron.WithName("engine-sync"),
	); err != nil {
		return fmt.Errorf("schedule engine sync: %w", err)
	}
	scheduler.Start()
	d.scheduler = scheduler
	return nil
}

// pollEngineInfo reports engine connectivity. Observability only; failures
// never feed back into the event loop.
func (d *Daemon) pollEngineInfo() {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	info, err := d.client.Info(ctx)
	if err != nil {
		d.metrics.lspConnected.Set(0)
		slog.Warn("Engine info poll failed", logfields.Error(err))
		return
	}
	if info.LSPConnected {
		d.metrics.lspConnected.Set(1)
	} else {
		d.metrics.lspConnected.Set(0)
	}
	slog.Debug("Engine sync",
		slog.String("node_id", info.NodeID),
		slog.Bool("lsp_connected", info.LSPConnected))
}

// pending returns the number of appended but unacknowledged events.
func (d *Daemon) pending(ctx context.Context) (int64, error) {
	length, err := d.store.Length(ctx)
	if err != nil {
		return 0, err
	}
	cursor, err := d.store.Cursor(ctx)
	if err != nil {
		return 0, err
	}
	return length - cursor, nil
}
