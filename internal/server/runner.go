// Package server manages the daemon's long-running components.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/vmunix/clipd/internal/events"
)

// Config for the runner.
type Config struct {
	Addr            string
	ShutdownTimeout time.Duration // grace period for in-flight requests
	EventRetention  time.Duration // zero disables pruning
	PruneInterval   time.Duration
}

// Runner owns the HTTP server and the event-log prune loop.
// It blocks in Run until the context is canceled or a component fails.
type Runner struct {
	httpServer *http.Server
	eventLog   *events.EventLog
	config     Config
	logger     *slog.Logger
}

// NewRunner creates a new runner. The event log may be nil, which
// disables pruning.
func NewRunner(handler http.Handler, eventLog *events.EventLog, cfg Config, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = 30 * time.Second
	}
	if cfg.PruneInterval == 0 {
		cfg.PruneInterval = time.Hour
	}
	return &Runner{
		httpServer: &http.Server{Addr: cfg.Addr, Handler: handler},
		eventLog:   eventLog,
		config:     cfg,
		logger:     logger.With("component", "server"),
	}
}

// Run starts all components and blocks until shutdown completes.
func (r *Runner) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		r.logger.Info("http server listening", "addr", r.config.Addr)
		if err := r.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	if r.eventLog != nil && r.config.EventRetention > 0 {
		g.Go(func() error {
			return r.pruneLoop(ctx)
		})
	}

	g.Go(func() error {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), r.config.ShutdownTimeout)
		defer cancel()

		r.logger.Info("shutting down")
		return r.httpServer.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	r.logger.Info("server stopped")
	return nil
}

// pruneLoop periodically drops events older than the retention window.
func (r *Runner) pruneLoop(ctx context.Context) error {
	ticker := time.NewTicker(r.config.PruneInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			n, err := r.eventLog.Prune(r.config.EventRetention)
			if err != nil {
				r.logger.Error("event prune failed", "error", err)
				continue
			}
			if n > 0 {
				r.logger.Debug("pruned events", "count", n)
			}
		}
	}
}
