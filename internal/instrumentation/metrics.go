package instrumentation

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metric attribute keys.
const (
	attrMethod    = "method"
	attrPath      = "path"
	attrStatus    = "status"
	attrOperation = "operation"
	attrService   = "service"
	attrResult    = "result"
	attrTool      = "tool"
	attrDomain    = "domain"
	attrVerdict   = "verdict"
	attrKind      = "kind"
)

// Histogram buckets in seconds.
var (
	httpBuckets       = []float64{0.001, 0.01, 0.1, 0.5, 1, 2.5, 5, 10}
	googleAPIBuckets  = []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30}
	credentialBuckets = []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 15}
	toolBuckets       = []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 120}
)

// timed pairs a call counter with a duration histogram sharing the same attributes.
type timed struct {
	count    metric.Int64Counter
	duration metric.Float64Histogram
}

func (t timed) record(ctx context.Context, d time.Duration, attrs ...attribute.KeyValue) {
	if t.count == nil || t.duration == nil {
		return
	}
	opt := metric.WithAttributes(attrs...)
	t.count.Add(ctx, 1, opt)
	t.duration.Record(ctx, d.Seconds(), opt)
}

// Metrics records the service's metrics.
//
// All methods are safe on a nil *Metrics and on the zero value.
type Metrics struct {
	httpRequests   timed
	activeSessions metric.Int64UpDownCounter

	googleAPI   timed
	credentials timed

	verdicts         metric.Int64Counter
	harvestItemError metric.Int64Counter
	verificationHits metric.Int64Counter

	tools timed

	// detailedLabels adds the delegated admin's domain to credential metrics.
	detailedLabels bool
}

// instruments creates instruments on one meter and keeps the first error per instrument.
type instruments struct {
	meter metric.Meter
	errs  []error
}

func (in *instruments) counter(name, desc, unit string) metric.Int64Counter {
	c, err := in.meter.Int64Counter(name, metric.WithDescription(desc), metric.WithUnit(unit))
	if err != nil {
		in.errs = append(in.errs, fmt.Errorf("counter %s: %w", name, err))
	}
	return c
}

func (in *instruments) histogram(name, desc string, buckets []float64) metric.Float64Histogram {
	h, err := in.meter.Float64Histogram(name,
		metric.WithDescription(desc),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(buckets...))
	if err != nil {
		in.errs = append(in.errs, fmt.Errorf("histogram %s: %w", name, err))
	}
	return h
}

func (in *instruments) timed(prefix, what, unit string, buckets []float64) timed {
	return timed{
		count:    in.counter(prefix+"_total", "Total number of "+what, unit),
		duration: in.histogram(prefix+"_duration_seconds", "Duration of "+what+" in seconds", buckets),
	}
}

// NewMetrics creates every instrument on meter.
func NewMetrics(meter metric.Meter, detailedLabels bool) (*Metrics, error) {
	in := &instruments{meter: meter}

	m := &Metrics{
		httpRequests: timed{
			count:    in.counter("http_requests_total", "Total number of HTTP requests", "{request}"),
			duration: in.histogram("http_request_duration_seconds", "HTTP request duration in seconds", httpBuckets),
		},
		googleAPI:   in.timed("google_api_operations", "Google API operations", "{operation}", googleAPIBuckets),
		credentials: in.timed("credential_exchanges", "delegated service account token exchanges", "{exchange}", credentialBuckets),
		tools: timed{
			count:    in.counter("mcp_tool_invocations_total", "Total number of MCP tool invocations", "{invocation}"),
			duration: in.histogram("mcp_tool_duration_seconds", "MCP tool execution duration in seconds", toolBuckets),
		},
		verdicts:         in.counter("mail_classifier_verdicts_total", "Header classifications by verdict", "{message}"),
		harvestItemError: in.counter("mail_harvest_item_errors_total", "Messages that could not be fetched or decoded during a harvest", "{message}"),
		verificationHits: in.counter("admin_verification_cache_total", "Admin verification lookups by cache result", "{lookup}"),
		detailedLabels:   detailedLabels,
	}

	sessions, err := meter.Int64UpDownCounter("active_sessions",
		metric.WithDescription("Number of MCP sessions holding state"),
		metric.WithUnit("{session}"))
	if err != nil {
		in.errs = append(in.errs, fmt.Errorf("updown counter active_sessions: %w", err))
	}
	m.activeSessions = sessions

	if err := errors.Join(in.errs...); err != nil {
		return nil, fmt.Errorf("failed to create metrics: %w", err)
	}
	return m, nil
}

// RecordHTTPRequest records one HTTP request.
func (m *Metrics) RecordHTTPRequest(ctx context.Context, method, path string, statusCode int, duration time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.record(ctx, duration,
		attribute.String(attrMethod, method),
		attribute.String(attrPath, path),
		attribute.String(attrStatus, strconv.Itoa(statusCode)))
}

// RecordGoogleAPIOperation records one Google API call.
// service is one of the Service* constants, operation one of the Operation* constants.
func (m *Metrics) RecordGoogleAPIOperation(ctx context.Context, service, operation, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.googleAPI.record(ctx, duration,
		attribute.String(attrService, service),
		attribute.String(attrOperation, operation),
		attribute.String(attrStatus, status))
}

// RecordCredentialExchange records a delegated token exchange with a
// CredentialResult* result. The admin's domain is a label only with detailed labels.
func (m *Metrics) RecordCredentialExchange(ctx context.Context, result, adminEmail string, duration time.Duration) {
	if m == nil {
		return
	}
	attrs := []attribute.KeyValue{attribute.String(attrResult, result)}
	if m.detailedLabels && adminEmail != "" {
		attrs = append(attrs, attribute.String(attrDomain, DomainOf(adminEmail)))
	}
	m.credentials.record(ctx, duration, attrs...)
}

// RecordClassification counts one classifier verdict.
func (m *Metrics) RecordClassification(ctx context.Context, verdict string) {
	if m == nil || m.verdicts == nil {
		return
	}
	m.verdicts.Add(ctx, 1, metric.WithAttributes(attribute.String(attrVerdict, verdict)))
}

// RecordHarvestItemError counts a message that failed on its own during a harvest.
func (m *Metrics) RecordHarvestItemError(ctx context.Context, kind string) {
	if m == nil || m.harvestItemError == nil {
		return
	}
	m.harvestItemError.Add(ctx, 1, metric.WithAttributes(attribute.String(attrKind, kind)))
}

// RecordVerificationCache counts an admin verification as a cache hit or miss.
func (m *Metrics) RecordVerificationCache(ctx context.Context, hit bool) {
	if m == nil || m.verificationHits == nil {
		return
	}
	result := CacheMiss
	if hit {
		result = CacheHit
	}
	m.verificationHits.Add(ctx, 1, metric.WithAttributes(attribute.String(attrResult, result)))
}

// RecordToolInvocation records one MCP tool call.
func (m *Metrics) RecordToolInvocation(ctx context.Context, toolName, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.tools.record(ctx, duration,
		attribute.String(attrTool, toolName),
		attribute.String(attrStatus, status))
}

// IncrementActiveSessions counts a session that registered.
func (m *Metrics) IncrementActiveSessions(ctx context.Context) {
	m.addSessions(ctx, 1)
}

// DecrementActiveSessions counts a session that went away.
func (m *Metrics) DecrementActiveSessions(ctx context.Context) {
	m.addSessions(ctx, -1)
}

func (m *Metrics) addSessions(ctx context.Context, delta int64) {
	if m == nil || m.activeSessions == nil {
		return
	}
	m.activeSessions.Add(ctx, delta)
}
