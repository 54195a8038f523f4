package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/rs/cors"

	"github.com/teemow/workspace-console/internal/logging"
)

const (
	DefaultEndpoint          = "/mcp"
	defaultReadHeaderTimeout = 10 * time.Second
	defaultIdleTimeout       = 120 * time.Second
	writeTimeoutSlack        = 10 * time.Second
)

// HTTPServer serves the MCP streamable HTTP endpoint next to the health probes.
type HTTPServer struct {
	sc         *ServerContext
	health     *HealthChecker
	handler    http.Handler
	httpServer *http.Server
}

// NewHTTPServer builds the router for mcpServer.
func NewHTTPServer(mcpServer *mcpserver.MCPServer, sc *ServerContext) *HTTPServer {
	cfg := sc.Config().Server
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}

	streamable := mcpserver.NewStreamableHTTPServer(mcpServer,
		mcpserver.WithEndpointPath(endpoint),
		mcpserver.WithHTTPContextFunc(AccessTokenContext(cfg.AccessTokenHeader)),
	)

	s := &HTTPServer{sc: sc, health: NewHealthChecker(sc)}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(sc.Logger()))
	r.Use(middleware.Recoverer)
	r.Use(s.recordMetrics)

	s.health.Mount(r)

	r.Group(func(r chi.Router) {
		r.Use(corsHandler(cfg.CORSOrigins, cfg.AccessTokenHeader))
		r.Use(AccessTokenMiddleware(cfg.AccessTokenHeader, sc.Tokens(), sc.Logger()))
		r.Handle(endpoint, streamable)
	})

	s.handler = r
	return s
}

// Handler returns the root handler.
func (s *HTTPServer) Handler() http.Handler { return s.handler }

// Health returns the probe state, e.g. to mark the server unready while draining.
func (s *HTTPServer) Health() *HealthChecker { return s.health }

// Start listens on addr and blocks until Shutdown.
func (s *HTTPServer) Start(addr string) error {
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.handler,
		ReadHeaderTimeout: defaultReadHeaderTimeout,
		WriteTimeout:      s.sc.ToolTimeout() + writeTimeoutSlack,
		IdleTimeout:       defaultIdleTimeout,
	}

	s.sc.Logger().Info("starting MCP HTTP server", "addr", addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// Shutdown marks the server unready and drains in-flight requests.
func (s *HTTPServer) Shutdown(ctx context.Context) error {
	s.health.SetReady(false)
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

func corsHandler(origins []string, tokenHeader string) func(http.Handler) http.Handler {
	if tokenHeader == "" {
		tokenHeader = DefaultAccessTokenHeader
	}
	return cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Authorization", "Accept", SessionIDHeader, tokenHeader, TokenExpiryHeader},
		ExposedHeaders: []string{SessionIDHeader},
		MaxAge:         300,
	}).Handler
}

// requestLogger logs one line per request. Health probes log at debug.
func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)

			level := slog.LevelInfo
			if r.URL.Path == "/healthz" || r.URL.Path == "/readyz" {
				level = slog.LevelDebug
			}
			logger.LogAttrs(r.Context(), level, "http request",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", ww.Status()),
				slog.Duration(logging.KeyDuration, time.Since(start)),
				slog.String("request_id", middleware.GetReqID(r.Context())),
				logging.Session(r.Header.Get(SessionIDHeader)))
		})
	}
}

// recordMetrics labels requests by route pattern to keep path cardinality bounded.
func (s *HTTPServer) recordMetrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)

		path := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			path = rc.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		s.sc.Metrics().RecordHTTPRequest(r.Context(), r.Method, path, status, time.Since(start))
	})
}
