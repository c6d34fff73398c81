package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/orangewallet/orange/internal/eventstore"
	"github.com/orangewallet/orange/internal/logfields"
	"github.com/orangewallet/orange/internal/queue"
)

// AdminServer exposes the daemon's operational surface: health, metrics,
// and — in pull mode — the queue consumer endpoints for external pollers.
type AdminServer struct {
	port   int
	daemon *Daemon
	server *http.Server

	mu   sync.Mutex
	addr net.Addr
}

// NewAdminServer builds the admin server for the given daemon.
func NewAdminServer(port int, d *Daemon) *AdminServer {
	return &AdminServer{port: port, daemon: d}
}

// Start pre-binds the port so startup fails fast, then serves in the
// background.
func (s *AdminServer) Start(ctx context.Context) error {
	listener, err := net.Listen("tcp", fmt.Sprintf(":%d", s.port))
	if err != nil {
		return fmt.Errorf("admin port %d: %w", s.port, err)
	}
	s.mu.Lock()
	s.addr = listener.Addr()
	s.mu.Unlock()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.Handle("GET /metrics", promhttp.HandlerFor(s.daemon.metrics.registry, promhttp.HandlerOpts{}))
	if s.daemon.Mode() == ModePull {
		consumer := queue.NewConsumer(s.daemon.store)
		mux.HandleFunc("GET /v1/event", s.handleGetEvent(consumer))
		mux.HandleFunc("POST /v1/event/handled", s.handleEventHandled(consumer))
	}

	s.server = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.daemon.workers.Go(func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Admin server failed", logfields.Error(err))
		}
	})
	slog.Info("Admin server listening", slog.Int("port", s.port))
	return nil
}

// Addr returns the bound listen address; useful when the port was 0.
func (s *AdminServer) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.addr == nil {
		return ""
	}
	return s.addr.String()
}

// Stop shuts the server down gracefully, bounded by ctx.
func (s *AdminServer) Stop(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func (s *AdminServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	pending, err := s.daemon.pending(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]any{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":         "running",
		"mode":           string(s.daemon.Mode()),
		"pending_events": pending,
		"uptime_secs":    int64(time.Since(s.daemon.startTime).Seconds()),
	})
}

func (s *AdminServer) handleGetEvent(consumer *queue.Consumer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ev, err := consumer.Next(r.Context())
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]any{"error": err.Error()})
			return
		}
		if ev == nil {
			writeJSON(w, http.StatusOK, map[string]any{"event": nil})
			return
		}
		writeJSON(w, http.StatusOK, ev)
	}
}

func (s *AdminServer) handleEventHandled(consumer *queue.Consumer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := consumer.Handled(r.Context()); err != nil {
			status := http.StatusInternalServerError
			if errors.Is(err, eventstore.ErrNoPendingEvent) {
				status = http.StatusConflict
			}
			writeJSON(w, status, map[string]any{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("Failed to encode response", logfields.Error(err))
	}
}
