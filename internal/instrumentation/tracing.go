package instrumentation

import (
	"context"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracerName is the instrumentation scope of all spans.
const TracerName = "github.com/teemow/workspace-console"

// Span attribute keys.
const (
	SpanAttrTool      = "mcp.tool"
	SpanAttrStatus    = "mcp.status"
	SpanAttrService   = "google.service"
	SpanAttrOperation = "google.operation"
	SpanAttrDomain    = "workspace.domain"
	SpanAttrErrorKind = "workspace.error_kind"
)

func tracer() trace.Tracer {
	return otel.GetTracerProvider().Tracer(TracerName)
}

// DomainAttrs returns the domain attribute for an address or a bare domain,
// or nothing when emailOrDomain is empty.
func DomainAttrs(emailOrDomain string) []attribute.KeyValue {
	if emailOrDomain == "" {
		return nil
	}
	domain := emailOrDomain
	if strings.Contains(domain, "@") {
		domain = DomainOf(domain)
	}
	return []attribute.KeyValue{attribute.String(SpanAttrDomain, domain)}
}

// StartToolSpan starts the server span "tool.<name>" for an MCP tool call.
// The caller ends the span.
func StartToolSpan(ctx context.Context, toolName string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	all := append([]attribute.KeyValue{attribute.String(SpanAttrTool, toolName)}, attrs...)
	return tracer().Start(ctx, "tool."+toolName,
		trace.WithAttributes(all...),
		trace.WithSpanKind(trace.SpanKindServer))
}

// StartGoogleAPISpan starts the client span "google.<service>.<operation>".
// The caller ends the span.
func StartGoogleAPISpan(ctx context.Context, service, operation string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	all := append([]attribute.KeyValue{
		attribute.String(SpanAttrService, service),
		attribute.String(SpanAttrOperation, operation),
	}, attrs...)
	return tracer().Start(ctx, "google."+service+"."+operation,
		trace.WithAttributes(all...),
		trace.WithSpanKind(trace.SpanKindClient))
}

// RecordSpanResult sets the span status from err, recording err as an event.
func RecordSpanResult(span trace.Span, err error) {
	if err == nil {
		span.SetStatus(codes.Ok, "")
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// RecordSpanFailure marks a call that completed but reported a failure of kind.
func RecordSpanFailure(span trace.Span, kind, message string) {
	span.SetAttributes(
		attribute.String(SpanAttrStatus, StatusError),
		attribute.String(SpanAttrErrorKind, kind))
	span.SetStatus(codes.Error, message)
}

// ObserveGoogleCall runs fn inside a Google API span and records the call on m.
// m may be nil. fn receives the span context so nested calls are parented correctly.
func ObserveGoogleCall(ctx context.Context, m *Metrics, service, operation string, fn func(ctx context.Context) error) error {
	ctx, span := StartGoogleAPISpan(ctx, service, operation)
	defer span.End()

	start := time.Now()
	err := fn(ctx)
	RecordSpanResult(span, err)

	status := StatusSuccess
	if err != nil {
		status = StatusError
	}
	m.RecordGoogleAPIOperation(ctx, service, operation, status, time.Since(start))
	return err
}
