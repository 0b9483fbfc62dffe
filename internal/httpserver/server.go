// Package httpserver exposes the HTTP API whose request data is logged
// through the log sanitizer.
package httpserver

import (
	"context"
	"crypto/tls"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/al-bashkir/cwe117-demo/internal/config"
)

// Server is the HTTP server for the user input API and health checks
type Server struct {
	cfg        *config.Config
	log        *slog.Logger
	version    string
	httpServer *http.Server
	mux        *http.ServeMux
	limiter    *IPRateLimiter
}

// NewServer creates a new HTTP server. A nil logger falls back to slog.Default.
func NewServer(cfg *config.Config, logger *slog.Logger, version string) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		cfg:     cfg,
		log:     logger,
		version: version,
		mux:     http.NewServeMux(),
	}

	// Register routes
	s.mux.HandleFunc("POST /api/test", s.handleUserInput)
	s.mux.HandleFunc("GET /health", s.handleHealth)

	// Wrap with middleware
	handler := s.loggingMiddleware(s.mux)
	handler = s.recoveryMiddleware(handler)
	handler = s.requestIDMiddleware(handler)
	if cfg.RateLimit.Enabled {
		s.limiter = newIPRateLimiter(rate.Limit(cfg.RateLimit.RequestsPerSecond), cfg.RateLimit.Burst)
		handler = s.rateLimitMiddleware(handler)
	}
	handler = securityHeadersMiddleware(handler)

	s.httpServer = &http.Server{
		Addr:         cfg.Listen.HTTP,
		Handler:      handler,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  60 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelWarn),
	}

	if cfg.TLS.Enabled {
		s.httpServer.TLSConfig = &tls.Config{
			MinVersion: tls.VersionTLS12,
			CipherSuites: []uint16{
				tls.TLS_ECDHE_ECDSA_WITH_AES_256_GCM_SHA384,
				tls.TLS_ECDHE_RSA_WITH_AES_256_GCM_SHA384,
				tls.TLS_ECDHE_ECDSA_WITH_AES_128_GCM_SHA256,
				tls.TLS_ECDHE_RSA_WITH_AES_128_GCM_SHA256,
			},
		}
	}

	return s
}

// Handler returns the fully wrapped root handler.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.log.Info("starting HTTP server",
		"addr", s.cfg.Listen.HTTP,
		"tls", s.cfg.TLS.Enabled,
	)

	if s.cfg.TLS.Enabled {
		return s.httpServer.ListenAndServeTLS(s.cfg.TLS.CertFile, s.cfg.TLS.KeyFile)
	}

	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("shutting down HTTP server")
	if s.limiter != nil {
		s.limiter.Stop()
	}
	return s.httpServer.Shutdown(ctx)
}
