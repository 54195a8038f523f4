package instrumentation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// Provider owns the meter and tracer providers and the metrics recorder.
// A disabled Provider hands out a no-op recorder and tracer.
type Provider struct {
	cfg      Config
	meters   *sdkmetric.MeterProvider
	tracers  *sdktrace.TracerProvider
	registry *prometheus.Registry
	metrics  *Metrics
}

// NewProvider builds the providers for cfg and installs them globally.
func NewProvider(ctx context.Context, cfg Config) (*Provider, error) {
	if !cfg.Enabled {
		return &Provider{cfg: cfg, metrics: &Metrics{}}, nil
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.ServiceName == "" {
		cfg.ServiceName = DefaultServiceName
	}

	res, err := newResource(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	p := &Provider{cfg: cfg, registry: prometheus.NewRegistry()}
	p.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	reader, err := p.metricReader(ctx)
	if err != nil {
		return nil, err
	}
	p.meters = sdkmetric.NewMeterProvider(sdkmetric.WithResource(res), sdkmetric.WithReader(reader))

	p.tracers, err = p.tracerProvider(ctx, res)
	if err != nil {
		return nil, errors.Join(err, p.meters.Shutdown(ctx))
	}

	otel.SetMeterProvider(p.meters)
	otel.SetTracerProvider(p.tracers)

	p.metrics, err = NewMetrics(p.meters.Meter(cfg.ServiceName), cfg.DetailedLabels)
	if err != nil {
		return nil, errors.Join(fmt.Errorf("failed to create metrics recorder: %w", err), p.Shutdown(ctx))
	}
	return p, nil
}

func newResource(ctx context.Context, cfg Config) (*resource.Resource, error) {
	attrs := []attribute.KeyValue{
		semconv.ServiceName(cfg.ServiceName),
		semconv.ServiceVersion(cfg.ServiceVersion),
	}
	instance := cfg.InstanceID
	if instance == "" {
		instance, _ = os.Hostname()
	}
	if instance != "" {
		attrs = append(attrs, semconv.ServiceInstanceID(instance))
	}
	if cfg.Environment != "" {
		attrs = append(attrs, semconv.DeploymentEnvironment(cfg.Environment))
	}
	return resource.New(ctx, resource.WithAttributes(attrs...))
}

func (p *Provider) metricReader(ctx context.Context) (sdkmetric.Reader, error) {
	switch p.cfg.MetricsExporter {
	case "", ExporterPrometheus:
		exporter, err := otelprom.New(otelprom.WithRegisterer(p.registry))
		if err != nil {
			return nil, fmt.Errorf("failed to create prometheus exporter: %w", err)
		}
		return exporter, nil

	case ExporterOTLP:
		opts := []otlpmetrichttp.Option{otlpmetrichttp.WithEndpoint(p.cfg.OTLPEndpoint)}
		if p.cfg.OTLPInsecure {
			opts = append(opts, otlpmetrichttp.WithInsecure())
		}
		exporter, err := otlpmetrichttp.New(ctx, opts...)
		if err != nil {
			return nil, fmt.Errorf("failed to create OTLP metrics exporter: %w", err)
		}
		return sdkmetric.NewPeriodicReader(exporter), nil

	default:
		slog.Warn("stdout metrics exporter enabled, use for development only", "component", "instrumentation")
		exporter, err := stdoutmetric.New()
		if err != nil {
			return nil, fmt.Errorf("failed to create stdout metrics exporter: %w", err)
		}
		return sdkmetric.NewPeriodicReader(exporter), nil
	}
}

func (p *Provider) tracerProvider(ctx context.Context, res *resource.Resource) (*sdktrace.TracerProvider, error) {
	var exporter sdktrace.SpanExporter
	switch p.cfg.TracingExporter {
	case "", ExporterNone:
		return sdktrace.NewTracerProvider(
			sdktrace.WithResource(res),
			sdktrace.WithSampler(sdktrace.NeverSample()),
		), nil

	case ExporterOTLP:
		opts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(p.cfg.OTLPEndpoint)}
		if p.cfg.OTLPInsecure {
			slog.Warn("OTLP traces sent without TLS, use for development only",
				"component", "instrumentation", "endpoint", p.cfg.OTLPEndpoint)
			opts = append(opts, otlptracehttp.WithInsecure())
		}
		var err error
		if exporter, err = otlptracehttp.New(ctx, opts...); err != nil {
			return nil, fmt.Errorf("failed to create OTLP trace exporter: %w", err)
		}

	default:
		slog.Warn("stdout trace exporter enabled, use for development only", "component", "instrumentation")
		var err error
		if exporter, err = stdouttrace.New(); err != nil {
			return nil, fmt.Errorf("failed to create stdout trace exporter: %w", err)
		}
	}

	return sdktrace.NewTracerProvider(
		sdktrace.WithResource(res),
		sdktrace.WithBatcher(exporter),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(p.cfg.TraceSamplingRate))),
	), nil
}

// Metrics returns the recorder. It is never nil.
func (p *Provider) Metrics() *Metrics {
	return p.metrics
}

// Tracer returns a tracer from the provider, or a no-op tracer when disabled.
func (p *Provider) Tracer(name string) trace.Tracer {
	if p.tracers == nil {
		return noop.NewTracerProvider().Tracer(name)
	}
	return p.tracers.Tracer(name)
}

// MetricsHandler serves the provider's Prometheus registry, which holds the
// runtime collectors and, with the prometheus exporter, all recorded metrics.
func (p *Provider) MetricsHandler() http.Handler {
	if p.registry == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{Registry: p.registry})
}

// Shutdown flushes pending telemetry.
func (p *Provider) Shutdown(ctx context.Context) error {
	var errs []error
	if p.meters != nil {
		if err := p.meters.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("failed to shutdown meter provider: %w", err))
		}
	}
	if p.tracers != nil {
		if err := p.tracers.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("failed to shutdown tracer provider: %w", err))
		}
	}
	return errors.Join(errs...)
}

// Enabled reports whether telemetry is recorded.
func (p *Provider) Enabled() bool {
	return p.meters != nil
}
