package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestNewPrintfLogger_WithNil(t *testing.T) {
	p := NewPrintfLogger(nil, slog.LevelInfo)
	if p == nil {
		t.Fatal("NewPrintfLogger returned nil")
	}
	if p.Logger() == nil {
		t.Error("logger should not be nil when created with nil")
	}
}

func TestPrintfLogger_Printf(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	p := NewPrintfLogger(logger, slog.LevelWarn)
	p.Printf(context.Background(), "redis: discarding bad conn: %s\n", "EOF")

	out := buf.String()
	if !strings.Contains(out, "level=WARN") {
		t.Errorf("expected WARN level, got %q", out)
	}
	if !strings.Contains(out, `msg="redis: discarding bad conn: EOF"`) {
		t.Errorf("unexpected message: %q", out)
	}
}

func TestPrintfLogger_RespectsHandlerLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelError}))

	NewPrintfLogger(logger, slog.LevelWarn).Printf(context.Background(), "ignored")

	if buf.Len() != 0 {
		t.Errorf("expected nothing logged, got %q", buf.String())
	}
}
