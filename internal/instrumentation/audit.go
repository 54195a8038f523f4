package instrumentation

import (
	"context"
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"
	"go.opentelemetry.io/otel/trace"
)

// ToolInvocation records one tool call for the audit log.
//
// AdminEmail is the delegated administrator the call acted as. It is logged
// only when the audit logger includes PII; otherwise its domain is logged.
type ToolInvocation struct {
	ID         string // ULID, sortable by start time
	Tool       string
	AdminEmail string
	SessionID  string

	Start     time.Time
	Duration  time.Duration
	Success   bool
	Error     string
	ErrorKind string

	TraceID string
	SpanID  string
}

// NewToolInvocation starts timing a call of tool.
func NewToolInvocation(tool string) *ToolInvocation {
	return &ToolInvocation{ID: ulid.Make().String(), Tool: tool, Start: time.Now()}
}

// WithUser sets the delegated administrator.
func (ti *ToolInvocation) WithUser(email string) *ToolInvocation {
	ti.AdminEmail = email
	return ti
}

// WithSession sets the MCP session id.
func (ti *ToolInvocation) WithSession(sessionID string) *ToolInvocation {
	ti.SessionID = sessionID
	return ti
}

// WithSpanContext copies the trace and span ids of the span in ctx, if any.
func (ti *ToolInvocation) WithSpanContext(ctx context.Context) *ToolInvocation {
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		ti.TraceID = sc.TraceID().String()
		ti.SpanID = sc.SpanID().String()
	}
	return ti
}

// Succeed stops the clock on a successful call.
func (ti *ToolInvocation) Succeed() *ToolInvocation {
	ti.Duration = time.Since(ti.Start)
	ti.Success = true
	return ti
}

// Fail stops the clock on a failed call of the given kind (auth, api, validation, ...).
func (ti *ToolInvocation) Fail(kind, message string) *ToolInvocation {
	ti.Duration = time.Since(ti.Start)
	ti.Success = false
	ti.ErrorKind = kind
	ti.Error = message
	return ti
}

// UserDomain is the domain of AdminEmail, or "unknown".
func (ti *ToolInvocation) UserDomain() string {
	return DomainOf(ti.AdminEmail)
}

// Status is StatusSuccess or StatusError.
func (ti *ToolInvocation) Status() string {
	if ti.Success {
		return StatusSuccess
	}
	return StatusError
}

// Attrs renders the invocation. With includePII the full admin address and
// the session id are included; otherwise only the admin's domain.
func (ti *ToolInvocation) Attrs(includePII bool) []slog.Attr {
	attrs := []slog.Attr{
		slog.String("invocation_id", ti.ID),
		slog.String("tool", ti.Tool),
	}
	if includePII {
		attrs = append(attrs, slog.String("user", ti.AdminEmail))
		if ti.SessionID != "" {
			attrs = append(attrs, slog.String("session_id", ti.SessionID))
		}
	} else {
		attrs = append(attrs, slog.String("user_domain", ti.UserDomain()))
	}
	attrs = append(attrs,
		slog.Duration("duration", ti.Duration),
		slog.Bool("success", ti.Success))

	optional := []struct{ key, value string }{
		{"trace_id", ti.TraceID},
		{"span_id", ti.SpanID},
		{"error", ti.Error},
		{"error_kind", ti.ErrorKind},
	}
	for _, o := range optional {
		if o.value != "" {
			attrs = append(attrs, slog.String(o.key, o.value))
		}
	}
	return attrs
}

// AuditLogger writes one record per tool invocation.
// A nil *AuditLogger logs nothing.
type AuditLogger struct {
	logger *slog.Logger
	cfg    AuditLoggingConfig
}

// NewAuditLogger creates an AuditLogger writing to logger (default: slog.Default()).
func NewAuditLogger(logger *slog.Logger, cfg AuditLoggingConfig) *AuditLogger {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuditLogger{logger: logger.With(slog.String("log_type", "audit")), cfg: cfg}
}

// LogToolInvocation logs ti at info on success and warn on failure.
func (al *AuditLogger) LogToolInvocation(ti *ToolInvocation) {
	if al == nil || !al.cfg.Enabled {
		return
	}
	level, msg := slog.LevelInfo, "tool_executed"
	if !ti.Success {
		level, msg = slog.LevelWarn, "tool_failed"
	}
	al.logger.LogAttrs(context.Background(), level, msg, ti.Attrs(al.cfg.IncludePII)...)
}
