package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/workspace-console/internal/session"
)

func TestHealthChecker_Liveness(t *testing.T) {
	h := NewHealthChecker(nil)
	h.SetReady(false)

	rec := httptest.NewRecorder()
	h.LivenessHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
}

func TestHealthChecker_Readiness(t *testing.T) {
	tests := []struct {
		name       string
		setup      func(h *HealthChecker, sc *ServerContext)
		wantStatus int
		wantChecks map[string]string
	}{
		{
			name:       "ready",
			setup:      func(*HealthChecker, *ServerContext) {},
			wantStatus: http.StatusOK,
			wantChecks: map[string]string{"ready": "ok", "shutdown": "ok", "sessions": "ok"},
		},
		{
			name:       "not ready",
			setup:      func(h *HealthChecker, _ *ServerContext) { h.SetReady(false) },
			wantStatus: http.StatusServiceUnavailable,
			wantChecks: map[string]string{"ready": "not ready", "shutdown": "ok", "sessions": "ok"},
		},
		{
			name:       "shutting down",
			setup:      func(_ *HealthChecker, sc *ServerContext) { _ = sc.Shutdown() },
			wantStatus: http.StatusServiceUnavailable,
			wantChecks: map[string]string{"ready": "ok", "shutdown": "shutting down", "sessions": "ok"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sc := newTestServerContext(t)
			h := NewHealthChecker(sc)
			tt.setup(h, sc)

			rec := httptest.NewRecorder()
			h.ReadinessHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

			assert.Equal(t, tt.wantStatus, rec.Code)
			var body HealthResponse
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
			assert.Equal(t, tt.wantChecks, body.Checks)
		})
	}
}

type failingStore struct{ session.Store }

func (failingStore) Session(id string) session.State { return failingState{id: id} }

type failingState struct{ id string }

func (s failingState) ID() string { return s.id }
func (failingState) Load(context.Context, string, any) (bool, error) {
	return false, errors.New("connection refused")
}
func (failingState) StoreOnce(context.Context, string, any) (bool, error) {
	return false, errors.New("connection refused")
}

func TestHealthChecker_SessionStoreDown(t *testing.T) {
	sc := newTestServerContext(t)
	sc.sessions = failingStore{Store: sc.sessions}
	h := NewHealthChecker(sc)

	rec := httptest.NewRecorder()
	h.ReadinessHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), `"sessions":"unavailable"`)

	rec = httptest.NewRecorder()
	h.DetailedHealthHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz/detailed", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestHealthChecker_Detailed(t *testing.T) {
	sc := newTestServerContext(t)
	h := NewHealthChecker(sc)

	rec := httptest.NewRecorder()
	h.DetailedHealthHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz/detailed", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	var body DetailedHealthResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "ok", body.Status)
	assert.Equal(t, "stdio", body.Transport)
	assert.Equal(t, session.BackendMemory, body.SessionBackend)
	assert.Equal(t, "ok", body.SessionStore)
	assert.NotEmpty(t, body.Uptime)
}
