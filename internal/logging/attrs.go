package logging

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"strings"
)

// Attribute keys shared by all components.
const (
	KeyOperation  = "operation"
	KeyService    = "service"
	KeySession    = "session_id"
	KeyTool       = "tool"
	KeyStatus     = "status"
	KeyDuration   = "duration"
	KeyError      = "error"
	KeyUserHash   = "user_hash"
	KeyUserDomain = "user_domain"
)

// Status values. instrumentation defines the same values for metric labels.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// WithOperation scopes logger to an operation such as "admin.verify".
func WithOperation(logger *slog.Logger, operation string) *slog.Logger {
	return logger.With(Operation(operation))
}

// WithService scopes logger to a Google service.
func WithService(logger *slog.Logger, service string) *slog.Logger {
	return logger.With(slog.String(KeyService, service))
}

// WithTool scopes logger to an MCP tool.
func WithTool(logger *slog.Logger, tool string) *slog.Logger {
	return logger.With(slog.String(KeyTool, tool))
}

// WithSession scopes logger to an MCP session. An empty id adds nothing.
func WithSession(logger *slog.Logger, sessionID string) *slog.Logger {
	if sessionID == "" {
		return logger
	}
	return logger.With(Session(sessionID))
}

func Operation(op string) slog.Attr { return slog.String(KeyOperation, op) }

func Session(sessionID string) slog.Attr { return slog.String(KeySession, sessionID) }

func Status(status string) slog.Attr { return slog.String(KeyStatus, status) }

// Err returns the error attribute. A nil error yields the empty attribute,
// which handlers drop.
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.String(KeyError, err.Error())
}

// HashEmail returns a stable pseudonym for an address so log lines can be
// correlated without the address itself. Case and surrounding space are ignored.
func HashEmail(email string) string {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(email))
	return "user:" + hex.EncodeToString(sum[:8])
}

// UserHash returns the pseudonymized user attribute.
func UserHash(email string) slog.Attr {
	return slog.String(KeyUserHash, HashEmail(email))
}

// Domain returns the domain of an address as the user_domain attribute, or an
// empty value when email is not an address.
func Domain(email string) slog.Attr {
	_, domain, ok := strings.Cut(strings.TrimSpace(email), "@")
	if !ok || strings.Contains(domain, "@") {
		domain = ""
	}
	return slog.String(KeyUserDomain, strings.ToLower(domain))
}

// SanitizeToken describes a token by length only.
func SanitizeToken(token string) string {
	if token == "" {
		return "<empty>"
	}
	return fmt.Sprintf("[token:%d chars]", len(token))
}
