package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/teemow/workspace-console/internal/instrumentation"
)

const (
	DefaultMetricsAddr         = ":9090"
	DefaultMetricsReadTimeout  = 10 * time.Second
	DefaultMetricsWriteTimeout = 10 * time.Second
	DefaultMetricsIdleTimeout  = 60 * time.Second
	DefaultShutdownTimeout     = 30 * time.Second
)

// MetricsServerConfig configures the metrics listener.
type MetricsServerConfig struct {
	Addr string

	// InstrumentationProvider must be enabled; its registry is served on /metrics.
	InstrumentationProvider *instrumentation.Provider

	Logger *slog.Logger
}

// MetricsServer serves Prometheus metrics on a port separate from the MCP endpoint.
type MetricsServer struct {
	httpServer *http.Server
	provider   *instrumentation.Provider
	addr       string
	logger     *slog.Logger
}

// NewMetricsServer creates a metrics server.
func NewMetricsServer(config MetricsServerConfig) (*MetricsServer, error) {
	if config.Addr == "" {
		config.Addr = DefaultMetricsAddr
	}
	if config.InstrumentationProvider == nil {
		return nil, fmt.Errorf("instrumentation provider is required for metrics server")
	}
	if !config.InstrumentationProvider.Enabled() {
		return nil, fmt.Errorf("instrumentation provider is not enabled")
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &MetricsServer{addr: config.Addr, provider: config.InstrumentationProvider, logger: logger}
	s.httpServer = &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: DefaultMetricsReadTimeout,
		WriteTimeout:      DefaultMetricsWriteTimeout,
		IdleTimeout:       DefaultMetricsIdleTimeout,
	}
	return s, nil
}

// Handler returns the metrics routes.
func (s *MetricsServer) Handler() http.Handler {
	r := chi.NewRouter()
	r.Method(http.MethodGet, "/metrics", s.provider.MetricsHandler())
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return r
}

// Start blocks serving metrics until Shutdown.
func (s *MetricsServer) Start() error {
	s.logger.Info("starting metrics server", "addr", s.addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the metrics server.
func (s *MetricsServer) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down metrics server")
	return s.httpServer.Shutdown(ctx)
}

// Addr returns the configured listen address.
func (s *MetricsServer) Addr() string {
	return s.addr
}
