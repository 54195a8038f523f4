package server

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/teemow/workspace-console/internal/adminverify"
	"github.com/teemow/workspace-console/internal/logging"
)

const (
	// DefaultAccessTokenHeader carries the end user's Google access token.
	DefaultAccessTokenHeader = "X-Google-Access-Token"

	// TokenExpiryHeader optionally carries the access token expiry in RFC 3339.
	TokenExpiryHeader = "X-Google-Token-Expiry"

	// SessionIDHeader is the streamable HTTP session header.
	SessionIDHeader = "Mcp-Session-Id"

	defaultAccessTokenExpiry = time.Hour
	tokenStoreTimeout        = 5 * time.Second
)

// TokenSaver persists a forwarded token for an MCP session.
type TokenSaver interface {
	SaveToken(ctx context.Context, sessionID string, token *oauth2.Token) error
}

// AccessTokenMiddleware stores the access token forwarded by the agent front-end
// under the request's MCP session, so later tool calls of the session can use it.
// Requests without the header or without a session id pass through unchanged.
func AccessTokenMiddleware(header string, tokens TokenSaver, logger *slog.Logger) func(http.Handler) http.Handler {
	if header == "" {
		header = DefaultAccessTokenHeader
	}
	if logger == nil {
		logger = slog.Default()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			accessToken := strings.TrimSpace(r.Header.Get(header))
			sessionID := r.Header.Get(SessionIDHeader)
			if accessToken == "" || sessionID == "" {
				next.ServeHTTP(w, r)
				return
			}

			token := &oauth2.Token{
				AccessToken: accessToken,
				TokenType:   "Bearer",
				Expiry:      parseTokenExpiry(r.Header.Get(TokenExpiryHeader)),
			}

			ctx, cancel := context.WithTimeout(r.Context(), tokenStoreTimeout)
			err := tokens.SaveToken(ctx, sessionID, token)
			cancel()
			if err != nil {
				logger.Error("failed to store forwarded access token", logging.Session(sessionID), logging.Err(err))
			} else {
				logger.Debug("stored forwarded access token",
					logging.Session(sessionID),
					slog.String("token", logging.SanitizeToken(accessToken)),
					slog.String("expires_in", time.Until(token.Expiry).Round(time.Second).String()))
			}

			next.ServeHTTP(w, r)
		})
	}
}

// AccessTokenContext returns an HTTP context function that exposes the forwarded
// access token of the current request to tool handlers.
func AccessTokenContext(header string) func(ctx context.Context, r *http.Request) context.Context {
	if header == "" {
		header = DefaultAccessTokenHeader
	}
	return func(ctx context.Context, r *http.Request) context.Context {
		if token := strings.TrimSpace(r.Header.Get(header)); token != "" {
			return adminverify.ContextWithAccessToken(ctx, token)
		}
		return ctx
	}
}

// parseTokenExpiry falls back to one hour from now for a missing or invalid value.
func parseTokenExpiry(value string) time.Time {
	if value == "" {
		return time.Now().Add(defaultAccessTokenExpiry)
	}
	expiry, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Now().Add(defaultAccessTokenExpiry)
	}
	return expiry
}
