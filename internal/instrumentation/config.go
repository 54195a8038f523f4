package instrumentation

import (
	"fmt"
	"os"
	"strconv"
)

// DefaultServiceName is the service.name resource attribute unless OTEL_SERVICE_NAME is set.
const DefaultServiceName = "workspace-console"

// Exporter names.
const (
	ExporterPrometheus = "prometheus"
	ExporterOTLP       = "otlp"
	ExporterStdout     = "stdout"
	ExporterNone       = "none"
)

// Config configures the OpenTelemetry provider.
type Config struct {
	ServiceName    string
	ServiceVersion string

	// InstanceID is the service.instance.id attribute (default: hostname).
	InstanceID string

	// Environment is the deployment.environment attribute, e.g. the config overlay name.
	Environment string

	// Enabled turns metrics and tracing on. A disabled provider records nothing.
	Enabled bool

	// MetricsExporter is one of prometheus, otlp or stdout.
	MetricsExporter string

	// TracingExporter is one of otlp, stdout or none.
	TracingExporter string

	// OTLPEndpoint is host:port without scheme. Required by the otlp exporters.
	OTLPEndpoint string

	// OTLPInsecure sends OTLP over plain HTTP. Development only.
	OTLPInsecure bool

	// TraceSamplingRate is the parent-based sampling ratio in [0, 1].
	TraceSamplingRate float64

	// DetailedLabels adds the delegated admin's domain to credential metrics.
	// Addresses are never used as labels.
	DetailedLabels bool

	AuditLogging AuditLoggingConfig
}

// AuditLoggingConfig configures the tool audit log.
type AuditLoggingConfig struct {
	Enabled bool

	// IncludePII logs full admin addresses instead of their domain.
	IncludePII bool
}

// DefaultConfig returns the defaults overlaid with the OTEL_* and
// INSTRUMENTATION_* environment variables.
func DefaultConfig() Config {
	return configFromEnv(os.LookupEnv)
}

func configFromEnv(lookup func(string) (string, bool)) Config {
	env := envReader(lookup)
	return Config{
		ServiceName:       env.str("OTEL_SERVICE_NAME", DefaultServiceName),
		ServiceVersion:    "unknown",
		InstanceID:        env.str("OTEL_SERVICE_INSTANCE_ID", env.str("POD_NAME", "")),
		Environment:       env.str("DEPLOYMENT_ENVIRONMENT", ""),
		Enabled:           env.boolean("INSTRUMENTATION_ENABLED", true),
		MetricsExporter:   env.str("METRICS_EXPORTER", ExporterPrometheus),
		TracingExporter:   env.str("TRACING_EXPORTER", ExporterNone),
		OTLPEndpoint:      env.str("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		OTLPInsecure:      env.boolean("OTEL_EXPORTER_OTLP_INSECURE", false),
		TraceSamplingRate: env.float("OTEL_TRACES_SAMPLER_ARG", 0.1),
		DetailedLabels:    env.boolean("METRICS_DETAILED_LABELS", false),
		AuditLogging: AuditLoggingConfig{
			Enabled:    env.boolean("AUDIT_LOGGING_ENABLED", true),
			IncludePII: env.boolean("AUDIT_LOGGING_INCLUDE_PII", false),
		},
	}
}

// Validate rejects unknown exporters, an out-of-range sampling rate and an
// otlp exporter without endpoint.
func (c *Config) Validate() error {
	if c.TraceSamplingRate < 0 || c.TraceSamplingRate > 1 {
		return fmt.Errorf("trace sampling rate must be between 0.0 and 1.0, got %g", c.TraceSamplingRate)
	}

	switch c.MetricsExporter {
	case "", ExporterPrometheus, ExporterStdout:
	case ExporterOTLP:
		if c.OTLPEndpoint == "" {
			return fmt.Errorf("OTLP endpoint is required for the otlp metrics exporter")
		}
	default:
		return fmt.Errorf("invalid metrics exporter %q, must be one of: %s, %s, %s",
			c.MetricsExporter, ExporterPrometheus, ExporterOTLP, ExporterStdout)
	}

	switch c.TracingExporter {
	case "", ExporterNone, ExporterStdout:
	case ExporterOTLP:
		if c.OTLPEndpoint == "" {
			return fmt.Errorf("OTLP endpoint is required for the otlp tracing exporter")
		}
	default:
		return fmt.Errorf("invalid tracing exporter %q, must be one of: %s, %s, %s",
			c.TracingExporter, ExporterOTLP, ExporterStdout, ExporterNone)
	}
	return nil
}

// envReader reads typed values, falling back to the default when a variable is
// unset, empty or unparsable.
type envReader func(string) (string, bool)

func (e envReader) str(key, def string) string {
	if v, ok := e(key); ok && v != "" {
		return v
	}
	return def
}

func (e envReader) boolean(key string, def bool) bool {
	if b, err := strconv.ParseBool(e.str(key, "")); err == nil {
		return b
	}
	return def
}

func (e envReader) float(key string, def float64) float64 {
	if f, err := strconv.ParseFloat(e.str(key, ""), 64); err == nil {
		return f
	}
	return def
}
