// Package config loads the workspace-console configuration.
//
// Configuration is layered: <dir>/base.yaml, then <dir>/<env>.yaml, then ${VAR}
// placeholders resolved from <dir>/secrets.env and the process environment, then
// WORKSPACE_CONSOLE_* environment variables. Command-line flags are applied last by
// the CLI. Every layer is optional; a missing file leaves the defaults in place.
package config

import (
	"fmt"
	"time"

	"github.com/teemow/workspace-console/internal/instrumentation"
	"github.com/teemow/workspace-console/internal/logging"
	"github.com/teemow/workspace-console/internal/session"
)

// Transports.
const (
	TransportStdio          = "stdio"
	TransportStreamableHTTP = "streamable-http"
)

// Config is the complete configuration.
type Config struct {
	Server          ServerConfig          `yaml:"server"`
	Google          GoogleConfig          `yaml:"google"`
	Gmail           GmailConfig           `yaml:"gmail"`
	Session         SessionConfig         `yaml:"session"`
	Timeouts        TimeoutConfig         `yaml:"timeouts"`
	Logging         LoggingConfig         `yaml:"logging"`
	Metrics         MetricsConfig         `yaml:"metrics"`
	Instrumentation InstrumentationConfig `yaml:"instrumentation"`
}

// ServerConfig configures the MCP server.
type ServerConfig struct {
	// Transport is "stdio" or "streamable-http".
	Transport string `yaml:"transport"`

	// HTTPAddr is the listen address for streamable-http.
	HTTPAddr string `yaml:"httpAddr"`

	// Endpoint is the MCP endpoint path.
	Endpoint string `yaml:"endpoint"`

	// CORSOrigins lists browser origins allowed to call the HTTP endpoint.
	CORSOrigins []string `yaml:"corsOrigins"`

	// AccessTokenHeader carries the end user's Google access token from the agent front-end.
	AccessTokenHeader string `yaml:"accessTokenHeader"`

	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`
}

// GoogleConfig holds Google credentials and endpoints.
type GoogleConfig struct {
	// ServiceAccountKeyFile is the domain-wide delegation key.
	ServiceAccountKeyFile string `yaml:"serviceAccountKeyFile"`

	// OAuth client used by "verify --auth-code".
	OAuthClientID     string `yaml:"oauthClientId"`
	OAuthClientSecret string `yaml:"oauthClientSecret"`
	OAuthRedirectURL  string `yaml:"oauthRedirectUrl"`

	UserInfoURL string `yaml:"userInfoUrl"`
}

// GmailConfig tunes the header harvester.
type GmailConfig struct {
	Workers           int     `yaml:"workers"`
	PageSize          int64   `yaml:"pageSize"`
	RequestsPerSecond float64 `yaml:"requestsPerSecond"`
	Burst             int     `yaml:"burst"`
}

// SessionConfig selects the session state backend.
type SessionConfig struct {
	Backend     string        `yaml:"backend"`
	IdleTimeout time.Duration `yaml:"idleTimeout"`
	RedisURL    string        `yaml:"redisUrl"`
	RedisPrefix string        `yaml:"redisPrefix"`
}

// TimeoutConfig bounds outgoing calls.
type TimeoutConfig struct {
	// Tool bounds a whole tool invocation.
	Tool time.Duration `yaml:"tool"`

	// Exchange bounds one delegated token exchange.
	Exchange time.Duration `yaml:"exchange"`

	// API bounds each Gmail or Directory API call.
	API time.Duration `yaml:"api"`
}

// LoggingConfig configures the process logger.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// MetricsConfig configures the dedicated metrics listener.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

// InstrumentationConfig overrides the OpenTelemetry settings. Empty values keep
// the instrumentation defaults, which read the OTEL_* environment.
type InstrumentationConfig struct {
	Enabled         *bool    `yaml:"enabled"`
	MetricsExporter string   `yaml:"metricsExporter"`
	TracingExporter string   `yaml:"tracingExporter"`
	OTLPEndpoint    string   `yaml:"otlpEndpoint"`
	OTLPInsecure    *bool    `yaml:"otlpInsecure"`
	SamplingRate    *float64 `yaml:"samplingRate"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Transport:         TransportStdio,
			HTTPAddr:          ":8080",
			Endpoint:          "/mcp",
			AccessTokenHeader: "X-Google-Access-Token",
			ShutdownTimeout:   30 * time.Second,
		},
		Google: GoogleConfig{
			UserInfoURL: "https://openidconnect.googleapis.com/v1/userinfo",
		},
		Gmail: GmailConfig{
			Workers:  4,
			PageSize: 100,
		},
		Session: SessionConfig{
			Backend:     session.BackendMemory,
			IdleTimeout: 24 * time.Hour,
			RedisPrefix: session.DefaultRedisPrefix,
		},
		Timeouts: TimeoutConfig{
			Tool:     2 * time.Minute,
			Exchange: 15 * time.Second,
			API:      30 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: logging.FormatText,
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Addr:    ":9090",
		},
	}
}

// Validate checks the configuration for values the server cannot run with.
func (c *Config) Validate() error {
	switch c.Server.Transport {
	case TransportStdio, TransportStreamableHTTP:
	default:
		return fmt.Errorf("invalid transport %q, must be one of: %s, %s", c.Server.Transport, TransportStdio, TransportStreamableHTTP)
	}
	if c.Server.Transport == TransportStreamableHTTP && c.Server.HTTPAddr == "" {
		return fmt.Errorf("server.httpAddr is required for %s transport", TransportStreamableHTTP)
	}

	switch c.Session.Backend {
	case session.BackendMemory:
	case session.BackendRedis:
		if c.Session.RedisURL == "" {
			return fmt.Errorf("session.redisUrl is required for the redis backend")
		}
	default:
		return fmt.Errorf("invalid session backend %q, must be one of: %s, %s", c.Session.Backend, session.BackendMemory, session.BackendRedis)
	}

	if c.Gmail.Workers < 1 {
		return fmt.Errorf("gmail.workers must be at least 1, got %d", c.Gmail.Workers)
	}
	if c.Gmail.PageSize < 1 || c.Gmail.PageSize > 500 {
		return fmt.Errorf("gmail.pageSize must be between 1 and 500, got %d", c.Gmail.PageSize)
	}
	if c.Gmail.RequestsPerSecond < 0 {
		return fmt.Errorf("gmail.requestsPerSecond must not be negative")
	}

	for name, d := range map[string]time.Duration{
		"timeouts.tool":     c.Timeouts.Tool,
		"timeouts.exchange": c.Timeouts.Exchange,
		"timeouts.api":      c.Timeouts.API,
	} {
		if d <= 0 {
			return fmt.Errorf("%s must be positive, got %s", name, d)
		}
	}

	if _, err := logging.ParseLevel(c.Logging.Level); err != nil {
		return err
	}
	if c.Logging.Format != logging.FormatText && c.Logging.Format != logging.FormatJSON {
		return fmt.Errorf("invalid log format %q, must be one of: %s, %s", c.Logging.Format, logging.FormatText, logging.FormatJSON)
	}
	return nil
}

// ApplyInstrumentation overlays the configured settings onto ic.
func (c *Config) ApplyInstrumentation(ic *instrumentation.Config) {
	in := c.Instrumentation
	if in.Enabled != nil {
		ic.Enabled = *in.Enabled
	}
	if in.MetricsExporter != "" {
		ic.MetricsExporter = in.MetricsExporter
	}
	if in.TracingExporter != "" {
		ic.TracingExporter = in.TracingExporter
	}
	if in.OTLPEndpoint != "" {
		ic.OTLPEndpoint = in.OTLPEndpoint
	}
	if in.OTLPInsecure != nil {
		ic.OTLPInsecure = *in.OTLPInsecure
	}
	if in.SamplingRate != nil {
		ic.TraceSamplingRate = *in.SamplingRate
	}
}
