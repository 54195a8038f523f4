package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/workspace-console/internal/instrumentation"
	"github.com/teemow/workspace-console/internal/session"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0600))
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(t.TempDir(), "production")
	require.NoError(t, err)

	assert.Equal(t, Default(), cfg)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_Layering(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "base.yaml", `
server:
  transport: streamable-http
  httpAddr: ":8080"
  corsOrigins: ["https://console.example.com"]
google:
  serviceAccountKeyFile: ${KEY_FILE}
  oauthClientSecret: "${CLIENT_SECRET}"
gmail:
  workers: ${GMAIL_WORKERS}
  requestsPerSecond: 5
timeouts:
  tool: 90s
logging:
  level: debug
`)
	writeFile(t, dir, "production.yaml", `
server:
  httpAddr: ":8443"
logging:
  format: json
`)
	writeFile(t, dir, "secrets.env", `
# delegated key
KEY_FILE=/etc/workspace-console/sa.json
CLIENT_SECRET="s3cr3t"
GMAIL_WORKERS=8
`)

	cfg, err := Load(dir, "production")
	require.NoError(t, err)

	assert.Equal(t, TransportStreamableHTTP, cfg.Server.Transport)
	assert.Equal(t, ":8443", cfg.Server.HTTPAddr)
	assert.Equal(t, "/mcp", cfg.Server.Endpoint, "unset keys keep defaults")
	assert.Equal(t, []string{"https://console.example.com"}, cfg.Server.CORSOrigins)
	assert.Equal(t, "/etc/workspace-console/sa.json", cfg.Google.ServiceAccountKeyFile)
	assert.Equal(t, "s3cr3t", cfg.Google.OAuthClientSecret)
	assert.Equal(t, 8, cfg.Gmail.Workers)
	assert.Equal(t, 5.0, cfg.Gmail.RequestsPerSecond)
	assert.Equal(t, 90*time.Second, cfg.Timeouts.Tool)
	assert.Equal(t, 15*time.Second, cfg.Timeouts.Exchange)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_EnvOverrides(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "base.yaml", "session:\n  backend: memory\n")

	t.Setenv(EnvPrefix+"SESSION_BACKEND", "redis")
	t.Setenv(EnvPrefix+"REDIS_URL", "redis://localhost:6379/0")
	t.Setenv(EnvPrefix+"GMAIL_WORKERS", "2")
	t.Setenv(EnvPrefix+"TOOL_TIMEOUT", "45s")
	t.Setenv(EnvPrefix+"CORS_ORIGINS", "https://a.example.com, https://b.example.com")
	t.Setenv(EnvPrefix+"METRICS_ENABLED", "false")

	cfg, err := Load(dir, "")
	require.NoError(t, err)

	assert.Equal(t, session.BackendRedis, cfg.Session.Backend)
	assert.Equal(t, "redis://localhost:6379/0", cfg.Session.RedisURL)
	assert.Equal(t, 2, cfg.Gmail.Workers)
	assert.Equal(t, 45*time.Second, cfg.Timeouts.Tool)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.Server.CORSOrigins)
	assert.False(t, cfg.Metrics.Enabled)
}

func TestLoad_Errors(t *testing.T) {
	t.Run("malformed yaml", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "base.yaml", "server: [unclosed\n")
		_, err := Load(dir, "")
		assert.Error(t, err)
	})

	t.Run("bad env duration", func(t *testing.T) {
		t.Setenv(EnvPrefix+"API_TIMEOUT", "soon")
		_, err := Load("", "")
		assert.Error(t, err)
	})

	t.Run("bad env int", func(t *testing.T) {
		t.Setenv(EnvPrefix+"GMAIL_WORKERS", "many")
		_, err := Load("", "")
		assert.Error(t, err)
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"defaults", func(c *Config) {}, false},
		{"unknown transport", func(c *Config) { c.Server.Transport = "sse" }, true},
		{"http without addr", func(c *Config) {
			c.Server.Transport = TransportStreamableHTTP
			c.Server.HTTPAddr = ""
		}, true},
		{"redis without url", func(c *Config) { c.Session.Backend = session.BackendRedis }, true},
		{"redis with url", func(c *Config) {
			c.Session.Backend = session.BackendRedis
			c.Session.RedisURL = "redis://localhost:6379"
		}, false},
		{"unknown backend", func(c *Config) { c.Session.Backend = "etcd" }, true},
		{"zero workers", func(c *Config) { c.Gmail.Workers = 0 }, true},
		{"page size too large", func(c *Config) { c.Gmail.PageSize = 1000 }, true},
		{"negative rate", func(c *Config) { c.Gmail.RequestsPerSecond = -1 }, true},
		{"zero tool timeout", func(c *Config) { c.Timeouts.Tool = 0 }, true},
		{"bad log level", func(c *Config) { c.Logging.Level = "verbose" }, true},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestApplyInstrumentation(t *testing.T) {
	enabled := false
	rate := 0.5
	cfg := Default()
	cfg.Instrumentation = InstrumentationConfig{
		Enabled:         &enabled,
		TracingExporter: instrumentation.ExporterStdout,
		SamplingRate:    &rate,
	}

	ic := instrumentation.Config{Enabled: true, MetricsExporter: instrumentation.ExporterPrometheus, TracingExporter: instrumentation.ExporterNone}
	cfg.ApplyInstrumentation(&ic)

	assert.False(t, ic.Enabled)
	assert.Equal(t, instrumentation.ExporterPrometheus, ic.MetricsExporter)
	assert.Equal(t, instrumentation.ExporterStdout, ic.TracingExporter)
	assert.Equal(t, 0.5, ic.TraceSamplingRate)
}

func TestMergeMaps(t *testing.T) {
	base := map[string]any{"a": map[string]any{"x": 1, "y": 2}, "b": "keep"}
	overlay := map[string]any{"a": map[string]any{"y": 3}, "c": true}

	got := mergeMaps(base, overlay)
	assert.Equal(t, map[string]any{"a": map[string]any{"x": 1, "y": 3}, "b": "keep", "c": true}, got)
	assert.Equal(t, 2, base["a"].(map[string]any)["y"], "inputs are not modified")
}
