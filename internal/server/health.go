package server

import (
	"context"
	"encoding/json"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
)

const (
	healthStatusOK           = "ok"
	healthStatusNotReady     = "not ready"
	healthStatusShuttingDown = "shutting down"
	healthStatusUnavailable  = "unavailable"

	healthProbeSession   = "healthz"
	healthProbeNamespace = "probe"
	healthProbeTimeout   = 2 * time.Second
)

// HealthChecker serves the liveness and readiness probes.
type HealthChecker struct {
	ready         atomic.Bool
	serverContext *ServerContext
	startTime     time.Time
}

// NewHealthChecker creates a HealthChecker. It starts ready.
func NewHealthChecker(sc *ServerContext) *HealthChecker {
	h := &HealthChecker{
		serverContext: sc,
		startTime:     time.Now(),
	}
	h.ready.Store(true)
	return h
}

// SetReady sets the readiness state of the server.
func (h *HealthChecker) SetReady(ready bool) {
	h.ready.Store(ready)
}

// IsReady returns whether the server is ready to receive traffic.
func (h *HealthChecker) IsReady() bool {
	return h.ready.Load()
}

func (h *HealthChecker) isServerShuttingDown() bool {
	return h.serverContext != nil && h.serverContext.IsShutdown()
}

// sessionStoreStatus reads a probe key so an unreachable redis makes the server unready.
func (h *HealthChecker) sessionStoreStatus(ctx context.Context) string {
	if h.serverContext == nil || h.serverContext.IsShutdown() {
		return healthStatusOK
	}
	ctx, cancel := context.WithTimeout(ctx, healthProbeTimeout)
	defer cancel()

	var probe struct{}
	if _, err := h.serverContext.Sessions().Session(healthProbeSession).Load(ctx, healthProbeNamespace, &probe); err != nil {
		return healthStatusUnavailable
	}
	return healthStatusOK
}

// HealthResponse is the body of the health endpoints.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// DetailedHealthResponse adds uptime and store details.
type DetailedHealthResponse struct {
	Status         string `json:"status"`
	Uptime         string `json:"uptime"`
	Transport      string `json:"transport,omitempty"`
	SessionBackend string `json:"sessionBackend,omitempty"`
	SessionStore   string `json:"sessionStore,omitempty"`
}

// LivenessHandler serves /healthz.
func (h *HealthChecker) LivenessHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeHealth(w, http.StatusOK, HealthResponse{Status: healthStatusOK})
	})
}

// ReadinessHandler serves /readyz.
func (h *HealthChecker) ReadinessHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		checks := map[string]string{
			"ready":    healthStatusOK,
			"shutdown": healthStatusOK,
			"sessions": h.sessionStoreStatus(r.Context()),
		}
		if !h.ready.Load() {
			checks["ready"] = healthStatusNotReady
		}
		if h.isServerShuttingDown() {
			checks["shutdown"] = healthStatusShuttingDown
		}

		response := HealthResponse{Status: healthStatusOK, Checks: checks}
		status := http.StatusOK
		for _, v := range checks {
			if v != healthStatusOK {
				response.Status = healthStatusNotReady
				status = http.StatusServiceUnavailable
				break
			}
		}
		writeHealth(w, status, response)
	})
}

// DetailedHealthHandler serves /healthz/detailed.
func (h *HealthChecker) DetailedHealthHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		response := DetailedHealthResponse{
			Status:       healthStatusOK,
			Uptime:       time.Since(h.startTime).Truncate(time.Second).String(),
			SessionStore: h.sessionStoreStatus(r.Context()),
		}
		if h.serverContext != nil {
			cfg := h.serverContext.Config()
			response.Transport = cfg.Server.Transport
			response.SessionBackend = cfg.Session.Backend
		}

		status := http.StatusOK
		switch {
		case !h.ready.Load():
			response.Status = healthStatusNotReady
			status = http.StatusServiceUnavailable
		case h.isServerShuttingDown():
			response.Status = healthStatusShuttingDown
			status = http.StatusServiceUnavailable
		case response.SessionStore != healthStatusOK:
			response.Status = healthStatusNotReady
			status = http.StatusServiceUnavailable
		}
		writeHealth(w, status, response)
	})
}

// Mount registers the health endpoints on r.
func (h *HealthChecker) Mount(r chi.Router) {
	r.Method(http.MethodGet, "/healthz", h.LivenessHandler())
	r.Method(http.MethodGet, "/readyz", h.ReadinessHandler())
	r.Method(http.MethodGet, "/healthz/detailed", h.DetailedHealthHandler())
}

func writeHealth(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
