// Package daemon runs the HTTP service until it is told to stop.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/al-bashkir/cwe117-demo/internal/config"
	"github.com/al-bashkir/cwe117-demo/internal/httpserver"
)

// shutdownTimeout bounds graceful shutdown of in-flight requests.
const shutdownTimeout = 30 * time.Second

// Daemon represents the main daemon process that coordinates all components.
type Daemon struct {
	cfg        *config.Config
	log        *slog.Logger
	httpServer *httpserver.Server
}

// New creates a new daemon with all components initialized.
func New(cfg *config.Config, logger *slog.Logger, version string) *Daemon {
	httpServer := httpserver.NewServer(cfg, logger, version)

	logger.Info("HTTP server initialized",
		"listen", cfg.Listen.HTTP,
		"tls", cfg.TLS.Enabled,
	)

	return &Daemon{
		cfg:        cfg,
		log:        logger,
		httpServer: httpServer,
	}
}

// Run starts the HTTP server and blocks until ctx is cancelled, SIGINT or
// SIGTERM is received, or the server fails.
func (d *Daemon) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	httpErrCh := make(chan error, 1)
	go func() {
		if err := d.httpServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			httpErrCh <- err
		}
		close(httpErrCh)
	}()

	select {
	case <-ctx.Done():
		d.log.Info("shutdown signal received", "cause", context.Cause(ctx))
	case err, ok := <-httpErrCh:
		if ok && err != nil {
			d.log.Error("HTTP server failed", "error", err)
			_ = d.httpServer.Shutdown(context.Background())
			return fmt.Errorf("HTTP server failed: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := d.httpServer.Shutdown(shutdownCtx); err != nil {
		d.log.Error("error stopping HTTP server", "error", err)
		return fmt.Errorf("failed to stop HTTP server: %w", err)
	}

	d.log.Info("daemon shutdown complete")
	return nil
}
