package logging

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// PrintfLogger adapts an slog.Logger to libraries that log through
// Printf(ctx, format, args...), such as the go-redis client.
type PrintfLogger struct {
	logger *slog.Logger
	level  slog.Level
}

// NewPrintfLogger creates a PrintfLogger that writes every message at level.
// If logger is nil, slog.Default() is used.
func NewPrintfLogger(logger *slog.Logger, level slog.Level) *PrintfLogger {
	if logger == nil {
		logger = slog.Default()
	}
	return &PrintfLogger{logger: logger, level: level}
}

// Printf formats and logs one message.
func (p *PrintfLogger) Printf(ctx context.Context, format string, v ...any) {
	if ctx == nil {
		ctx = context.Background()
	}
	p.logger.Log(ctx, p.level, strings.TrimSpace(fmt.Sprintf(format, v...)))
}

// Logger returns the underlying slog.Logger.
func (p *PrintfLogger) Logger() *slog.Logger {
	return p.logger
}
