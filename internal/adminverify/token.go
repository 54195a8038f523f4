package adminverify

import (
	"context"
	"strings"
)

type accessTokenKey struct{}

// ContextWithAccessToken returns a context carrying an end-user access token,
// e.g. one forwarded by the agent front-end in a request header.
func ContextWithAccessToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, accessTokenKey{}, token)
}

// AccessTokenFromContext returns the token set by ContextWithAccessToken.
func AccessTokenFromContext(ctx context.Context) string {
	token, _ := ctx.Value(accessTokenKey{}).(string)
	return token
}

// SessionTokens looks up the token saved for an MCP session.
type SessionTokens interface {
	AccessToken(ctx context.Context, sessionID string) string
}

// ResolveAccessToken picks the token for a verification: the explicit argument,
// then the token carried by ctx, then the one saved for sessionID.
func ResolveAccessToken(ctx context.Context, explicit, sessionID string, tokens SessionTokens) string {
	if t := strings.TrimSpace(explicit); t != "" {
		return t
	}
	if t := AccessTokenFromContext(ctx); t != "" {
		return t
	}
	if tokens != nil {
		return tokens.AccessToken(ctx, sessionID)
	}
	return ""
}
