package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
)

func newTestHTTPServer(t *testing.T, origins ...string) *HTTPServer {
	t.Helper()
	sc := newTestServerContext(t)
	sc.cfg.Server.CORSOrigins = origins
	return NewHTTPServer(mcpserver.NewMCPServer("test", "0.0.1"), sc)
}

func TestHTTPServer_HealthRoutes(t *testing.T) {
	s := newTestHTTPServer(t)

	for _, path := range []string{"/healthz", "/readyz", "/healthz/detailed"} {
		t.Run(path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
			assert.Equal(t, http.StatusOK, rec.Code)
		})
	}

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHTTPServer_CORSPreflight(t *testing.T) {
	s := newTestHTTPServer(t, "https://console.example.com")

	tests := []struct {
		origin    string
		wantAllow string
	}{
		{"https://console.example.com", "https://console.example.com"},
		{"https://evil.example.net", ""},
	}

	for _, tt := range tests {
		t.Run(tt.origin, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodOptions, "/mcp", nil)
			req.Header.Set("Origin", tt.origin)
			req.Header.Set("Access-Control-Request-Method", http.MethodPost)
			req.Header.Set("Access-Control-Request-Headers", DefaultAccessTokenHeader)

			rec := httptest.NewRecorder()
			s.Handler().ServeHTTP(rec, req)
			assert.Equal(t, tt.wantAllow, rec.Header().Get("Access-Control-Allow-Origin"))
		})
	}
}

func TestHTTPServer_ShutdownMarksUnready(t *testing.T) {
	s := newTestHTTPServer(t)
	assert.NoError(t, s.Shutdown(t.Context()))
	assert.False(t, s.Health().IsReady())
}
