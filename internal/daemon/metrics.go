package daemon

import (
	"context"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	promcollect "github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/orangewallet/orange/internal/eventstore"
)

// metrics holds the daemon's Prometheus instrumentation. Each daemon owns
// its registry so tests can run several daemons without collisions.
type metrics struct {
	registry *prom.Registry

	eventsReceived    prom.Counter
	eventsAppended    prom.Counter
	webhookDeliveries *prom.CounterVec
	lspConnected      prom.Gauge
}

func newMetrics(store eventstore.Store) *metrics {
	m := &metrics{
		registry: prom.NewRegistry(),
		eventsReceived: prom.NewCounter(prom.CounterOpts{
			Namespace: "orange", Name: "daemon_events_received_total",
			Help: "Events received from the engine stream",
		}),
		eventsAppended: prom.NewCounter(prom.CounterOpts{
			Namespace: "orange", Name: "daemon_events_appended_total",
			Help: "Events durably appended to the queue",
		}),
		webhookDeliveries: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "orange", Name: "daemon_webhook_deliveries_total",
			Help: "Webhook dispatch outcomes",
		}, []string{"outcome"}),
		lspConnected: prom.NewGauge(prom.GaugeOpts{
			Namespace: "orange", Name: "daemon_engine_lsp_connected",
			Help: "1 when the engine reports an LSP connection",
		}),
	}

	// Pending backlog read at scrape time.
	queuePending := prom.NewGaugeFunc(prom.GaugeOpts{
		Namespace: "orange", Name: "daemon_queue_pending_events",
		Help: "Appended events not yet acknowledged",
	}, func() float64 {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		length, err := store.Length(ctx)
		if err != nil {
			return 0
		}
		cursor, err := store.Cursor(ctx)
		if err != nil {
			return 0
		}
		return float64(length - cursor)
	})

	m.registry.MustRegister(m.eventsReceived, m.eventsAppended, m.webhookDeliveries, m.lspConnected, queuePending)
	m.registry.MustRegister(promcollect.NewGoCollector(), promcollect.NewProcessCollector(promcollect.ProcessCollectorOpts{}))
	return m
}

func (m *metrics) recordOutcome(delivered bool) {
	if delivered {
		m.webhookDeliveries.WithLabelValues("delivered").Inc()
	} else {
		m.webhookDeliveries.WithLabelValues("failed").Inc()
	}
}
