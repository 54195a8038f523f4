package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"debug", slog.LevelDebug, false},
		{"INFO", slog.LevelInfo, false},
		{"", slog.LevelInfo, false},
		{"warning", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"verbose", slog.LevelInfo, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseLevel(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New("info", FormatJSON, &buf)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	logger.Debug("hidden")
	logger.Info("visible", Tool("routeRequest"))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected one log line, got %d: %q", len(lines), buf.String())
	}
	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if entry[KeyTool] != "routeRequest" {
		t.Errorf("tool = %v, want routeRequest", entry[KeyTool])
	}
}

func TestNew_Text(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New("debug", "", &buf)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	logger.Debug("starting", Status(StatusSuccess))
	if !strings.Contains(buf.String(), "status=success") {
		t.Errorf("unexpected text output %q", buf.String())
	}
}

func TestNew_InvalidFormat(t *testing.T) {
	if _, err := New("info", "xml", &bytes.Buffer{}); err == nil {
		t.Error("expected error for unknown format")
	}
}
