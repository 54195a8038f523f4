package adminverify

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

type staticTokens map[string]string

func (s staticTokens) AccessToken(_ context.Context, sessionID string) string {
	return s[sessionID]
}

func TestResolveAccessToken(t *testing.T) {
	tokens := staticTokens{"s1": "from-store"}
	withHeader := ContextWithAccessToken(context.Background(), "from-header")

	tests := []struct {
		name      string
		ctx       context.Context
		explicit  string
		sessionID string
		tokens    SessionTokens
		want      string
	}{
		{"explicit wins", withHeader, " explicit ", "s1", tokens, "explicit"},
		{"context before store", withHeader, "", "s1", tokens, "from-header"},
		{"store fallback", context.Background(), "", "s1", tokens, "from-store"},
		{"unknown session", context.Background(), "", "s2", tokens, ""},
		{"no store", context.Background(), "", "s1", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveAccessToken(tt.ctx, tt.explicit, tt.sessionID, tt.tokens))
		})
	}
}
