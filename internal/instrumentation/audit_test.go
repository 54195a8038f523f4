package instrumentation

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

const (
	auditAdmin   = "jane@example.com"
	auditSession = "mcp-session-1"
)

// captureAudit returns an audit logger writing JSON lines into the returned buffer.
func captureAudit(cfg AuditLoggingConfig) (*AuditLogger, *bytes.Buffer) {
	var buf bytes.Buffer
	return NewAuditLogger(slog.New(slog.NewJSONHandler(&buf, nil)), cfg), &buf
}

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("decode audit line %q: %v", buf.String(), err)
	}
	return entry
}

func TestToolInvocation_Succeed(t *testing.T) {
	ti := NewToolInvocation("listEmailsAndAnalyze").Succeed()

	if len(ti.ID) != 26 {
		t.Errorf("ID = %q, want a ULID", ti.ID)
	}
	if !ti.Success || ti.Status() != StatusSuccess {
		t.Errorf("Success = %v, Status = %q", ti.Success, ti.Status())
	}
	if ti.Duration < 0 {
		t.Errorf("Duration = %v", ti.Duration)
	}
	if ti.Error != "" || ti.ErrorKind != "" {
		t.Errorf("unexpected error fields %q/%q", ti.Error, ti.ErrorKind)
	}
}

func TestToolInvocation_Fail(t *testing.T) {
	ti := NewToolInvocation("verifySuperAdminStatus").Fail("auth", "token expired")

	if ti.Success || ti.Status() != StatusError {
		t.Errorf("Success = %v, Status = %q", ti.Success, ti.Status())
	}
	if ti.ErrorKind != "auth" || ti.Error != "token expired" {
		t.Errorf("got %q/%q", ti.ErrorKind, ti.Error)
	}
}

func TestToolInvocation_IDsSortByStart(t *testing.T) {
	a := NewToolInvocation("routeRequest")
	b := NewToolInvocation("routeRequest")
	if a.ID == b.ID {
		t.Fatalf("duplicate id %q", a.ID)
	}
	if a.ID > b.ID {
		t.Errorf("ids out of order: %q > %q", a.ID, b.ID)
	}
}

func TestToolInvocation_WithSpanContext(t *testing.T) {
	tp := sdktrace.NewTracerProvider()
	defer func() { _ = tp.Shutdown(context.Background()) }()

	ctx, span := tp.Tracer("test").Start(context.Background(), "tool")
	defer span.End()

	ti := NewToolInvocation("listDomainUsers").WithSpanContext(ctx)
	if ti.TraceID != span.SpanContext().TraceID().String() {
		t.Errorf("TraceID = %q", ti.TraceID)
	}
	if ti.SpanID != span.SpanContext().SpanID().String() {
		t.Errorf("SpanID = %q", ti.SpanID)
	}

	bare := NewToolInvocation("listDomainUsers").WithSpanContext(context.Background())
	if bare.TraceID != "" || bare.SpanID != "" {
		t.Errorf("expected no ids without a span, got %q/%q", bare.TraceID, bare.SpanID)
	}
}

func TestAuditLogger_Levels(t *testing.T) {
	tests := []struct {
		name      string
		ti        *ToolInvocation
		wantMsg   string
		wantLevel string
	}{
		{
			name:      "success",
			ti:        NewToolInvocation("listYesterdaysEmails").WithUser(auditAdmin).Succeed(),
			wantMsg:   "tool_executed",
			wantLevel: "INFO",
		},
		{
			name:      "failure",
			ti:        NewToolInvocation("listYesterdaysEmails").WithUser(auditAdmin).Fail("api", "quota exceeded"),
			wantMsg:   "tool_failed",
			wantLevel: "WARN",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			al, buf := captureAudit(AuditLoggingConfig{Enabled: true})
			al.LogToolInvocation(tt.ti)

			entry := decodeLine(t, buf)
			if entry["msg"] != tt.wantMsg {
				t.Errorf("msg = %v, want %q", entry["msg"], tt.wantMsg)
			}
			if entry["level"] != tt.wantLevel {
				t.Errorf("level = %v, want %q", entry["level"], tt.wantLevel)
			}
			if entry["log_type"] != "audit" {
				t.Errorf("log_type = %v", entry["log_type"])
			}
		})
	}
}

func TestAuditLogger_PII(t *testing.T) {
	ti := NewToolInvocation("listDomainUsers").WithUser(auditAdmin).WithSession(auditSession).Succeed()

	t.Run("redacted", func(t *testing.T) {
		al, buf := captureAudit(AuditLoggingConfig{Enabled: true})
		al.LogToolInvocation(ti)

		entry := decodeLine(t, buf)
		if entry["user_domain"] != "example.com" {
			t.Errorf("user_domain = %v", entry["user_domain"])
		}
		for _, key := range []string{"user", "session_id"} {
			if _, ok := entry[key]; ok {
				t.Errorf("%s must not be logged without PII", key)
			}
		}
		if bytes.Contains(buf.Bytes(), []byte(auditAdmin)) {
			t.Error("admin address leaked into the audit line")
		}
	})

	t.Run("included", func(t *testing.T) {
		al, buf := captureAudit(AuditLoggingConfig{Enabled: true, IncludePII: true})
		al.LogToolInvocation(ti)

		entry := decodeLine(t, buf)
		if entry["user"] != auditAdmin {
			t.Errorf("user = %v", entry["user"])
		}
		if entry["session_id"] != auditSession {
			t.Errorf("session_id = %v", entry["session_id"])
		}
		if _, ok := entry["user_domain"]; ok {
			t.Error("user_domain is only logged when PII is redacted")
		}
	})
}

func TestAuditLogger_FailureFields(t *testing.T) {
	al, buf := captureAudit(AuditLoggingConfig{Enabled: true})
	al.LogToolInvocation(NewToolInvocation("listEmailsAndAnalyze").WithUser(auditAdmin).Fail("validation", "startDate is required"))

	entry := decodeLine(t, buf)
	if entry["error_kind"] != "validation" {
		t.Errorf("error_kind = %v", entry["error_kind"])
	}
	if entry["error"] != "startDate is required" {
		t.Errorf("error = %v", entry["error"])
	}
	if entry["success"] != false {
		t.Errorf("success = %v", entry["success"])
	}
}

func TestAuditLogger_Disabled(t *testing.T) {
	al, buf := captureAudit(AuditLoggingConfig{})
	al.LogToolInvocation(NewToolInvocation("routeRequest").Succeed())
	if buf.Len() != 0 {
		t.Errorf("disabled audit logger wrote %q", buf.String())
	}

	var nilLogger *AuditLogger
	nilLogger.LogToolInvocation(NewToolInvocation("routeRequest").Succeed())
}

func TestNewAuditLogger_DefaultLogger(t *testing.T) {
	if al := NewAuditLogger(nil, AuditLoggingConfig{Enabled: true}); al.logger == nil {
		t.Fatal("expected slog.Default fallback")
	}
}
