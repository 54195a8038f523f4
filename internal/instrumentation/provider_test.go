package instrumentation

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProvider_Disabled(t *testing.T) {
	provider, err := NewProvider(context.Background(), Config{Enabled: false})
	require.NoError(t, err)

	assert.False(t, provider.Enabled())
	assert.NotNil(t, provider.Metrics(), "a disabled provider still hands out a recorder")
	assert.NotNil(t, provider.Tracer("test"))
	assert.NoError(t, provider.Shutdown(context.Background()))

	rec := httptest.NewRecorder()
	provider.MetricsHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestNewProvider_Exporters(t *testing.T) {
	tests := []struct {
		name    string
		metrics string
		tracing string
	}{
		{"prometheus without tracing", ExporterPrometheus, ExporterNone},
		{"defaults when unset", "", ""},
		{"stdout", ExporterStdout, ExporterStdout},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			provider, err := NewProvider(ctx, Config{
				ServiceVersion:  "1.0.0",
				Environment:     "test",
				Enabled:         true,
				MetricsExporter: tt.metrics,
				TracingExporter: tt.tracing,
			})
			require.NoError(t, err)
			defer func() { _ = provider.Shutdown(ctx) }()

			assert.True(t, provider.Enabled())
			assert.NotNil(t, provider.Metrics())
			assert.NotNil(t, provider.Tracer("test"))
		})
	}
}

func TestNewProvider_InvalidConfig(t *testing.T) {
	tests := []struct {
		name        string
		cfg         Config
		errContains string
	}{
		{"unknown metrics exporter", Config{Enabled: true, MetricsExporter: "graphite"}, "invalid metrics exporter"},
		{"unknown tracing exporter", Config{Enabled: true, TracingExporter: "zipkin"}, "invalid tracing exporter"},
		{"otlp tracing without endpoint", Config{Enabled: true, TracingExporter: ExporterOTLP}, "OTLP endpoint is required"},
		{"otlp metrics without endpoint", Config{Enabled: true, MetricsExporter: ExporterOTLP}, "OTLP endpoint is required"},
		{"sampling rate out of range", Config{Enabled: true, TraceSamplingRate: 1.5}, "sampling rate"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewProvider(context.Background(), tt.cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errContains)
		})
	}
}

func TestProvider_MetricsHandler(t *testing.T) {
	ctx := context.Background()
	provider, err := NewProvider(ctx, Config{Enabled: true, MetricsExporter: ExporterPrometheus})
	require.NoError(t, err)
	defer func() { _ = provider.Shutdown(ctx) }()

	provider.Metrics().RecordClassification(ctx, "spam")

	rec := httptest.NewRecorder()
	provider.MetricsHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, "mail_classifier_verdicts")
	assert.Contains(t, body, "go_goroutines")
	assert.Contains(t, body, `service_name="workspace-console"`)
}

func TestProvider_ShutdownTwice(t *testing.T) {
	ctx := context.Background()
	provider, err := NewProvider(ctx, Config{Enabled: true})
	require.NoError(t, err)

	require.NoError(t, provider.Shutdown(ctx))
	// The SDK reports the second shutdown; it must not panic.
	_ = provider.Shutdown(ctx)
}
