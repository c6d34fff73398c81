// Package webhook fans a single event out to the configured HTTP targets.
//
// Delivery is best-effort and fire-and-forget: the durable event store is
// the source of truth, not delivery receipts. Failed deliveries are logged
// and otherwise ignored; there is no retry and no dead-letter queue.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/orangewallet/orange/internal/event"
	"github.com/orangewallet/orange/internal/logfields"
)

// DefaultTimeout bounds each target's request when no timeout is configured.
const DefaultTimeout = 10 * time.Second

// Target is one configured webhook endpoint. The token, when set, is sent
// as an Authorization bearer header. Targets are read-only configuration.
type Target struct {
	URL   string `yaml:"url"`
	Token string `yaml:"token,omitempty"`
}

// Outcome records the result of delivering one event to one target.
// Outcomes are transient: logged, never persisted, and never fed back into
// queue state.
type Outcome struct {
	Target     Target
	Delivered  bool
	StatusCode int
	Duration   time.Duration
	Err        error
}

// Dispatcher posts events to webhook targets concurrently.
type Dispatcher struct {
	client  *http.Client
	timeout time.Duration
}

// NewDispatcher builds a dispatcher with a per-request timeout.
func NewDispatcher(timeout time.Duration) *Dispatcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Dispatcher{
		client:  &http.Client{Timeout: timeout},
		timeout: timeout,
	}
}

// Dispatch serializes ev once and POSTs it to every target concurrently.
// Each target's request is fully independent: one target's latency or
// failure never delays or affects another. Dispatch returns once every
// target has either responded or been marked failed.
func (d *Dispatcher) Dispatch(ctx context.Context, ev event.Event, targets []Target) []Outcome {
	outcomes := make([]Outcome, len(targets))
	if len(targets) == 0 {
		return outcomes
	}

	body, err := json.Marshal(ev)
	if err != nil {
		for i, target := range targets {
			outcomes[i] = Outcome{Target: target, Err: fmt.Errorf("encode event: %w", err)}
		}
		return outcomes
	}

	var g errgroup.Group
	for i, target := range targets {
		g.Go(func() error {
			outcomes[i] = d.deliver(ctx, target, body)
			return nil
		})
	}
	_ = g.Wait()

	for _, outcome := range outcomes {
		if outcome.Delivered {
			slog.Debug("Webhook delivered",
				logfields.Target(outcome.Target.URL),
				logfields.EventKind(string(ev.Kind)),
				logfields.Status(outcome.StatusCode),
				logfields.DurationMS(float64(outcome.Duration.Milliseconds())))
			continue
		}
		if outcome.Err != nil {
			slog.Error("Webhook delivery failed",
				logfields.Target(outcome.Target.URL),
				logfields.EventKind(string(ev.Kind)),
				logfields.Error(outcome.Err))
		} else {
			slog.Error("Webhook returned non-success status",
				logfields.Target(outcome.Target.URL),
				logfields.EventKind(string(ev.Kind)),
				logfields.Status(outcome.StatusCode))
		}
	}
	return outcomes
}

func (d *Dispatcher) deliver(ctx context.Context, target Target, body []byte) Outcome {
	reqCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	start := time.Now()
	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, target.URL, bytes.NewReader(body))
	if err != nil {
		return Outcome{Target: target, Err: fmt.Errorf("build request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	if target.Token != "" {
		req.Header.Set("Authorization", "Bearer "+target.Token)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return Outcome{Target: target, Duration: time.Since(start), Err: err}
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	delivered := resp.StatusCode >= 200 && resp.StatusCode < 300
	return Outcome{Target: target, Delivered: delivered, StatusCode: resp.StatusCode, Duration: time.Since(start)}
}
