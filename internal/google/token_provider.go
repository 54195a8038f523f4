package google

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"

	"github.com/giantswarm/mcp-oauth/storage"
)

// TokenProvider returns an end-user token stored under a key.
type TokenProvider interface {
	GetToken(ctx context.Context, key string) (*oauth2.Token, error)
}

// SessionTokenProvider keeps forwarded end-user tokens in an mcp-oauth token store,
// keyed by MCP session id.
type SessionTokenProvider struct {
	store storage.TokenStore
}

// NewSessionTokenProvider creates a provider backed by store.
func NewSessionTokenProvider(store storage.TokenStore) *SessionTokenProvider {
	return &SessionTokenProvider{store: store}
}

// GetToken returns the token saved for sessionID.
func (p *SessionTokenProvider) GetToken(ctx context.Context, sessionID string) (*oauth2.Token, error) {
	tok, err := p.store.GetToken(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("no forwarded token for session: %w", err)
	}
	return tok, nil
}

// SaveToken stores token for sessionID, replacing any previous one.
func (p *SessionTokenProvider) SaveToken(ctx context.Context, sessionID string, token *oauth2.Token) error {
	return p.store.SaveToken(ctx, sessionID, token)
}

// DeleteToken forgets the token of sessionID. Deleting a missing token is not an error.
func (p *SessionTokenProvider) DeleteToken(ctx context.Context, sessionID string) error {
	return p.store.DeleteToken(ctx, sessionID)
}

// AccessToken returns the usable access token for sessionID, or "" when none is
// stored or the stored one has expired.
func (p *SessionTokenProvider) AccessToken(ctx context.Context, sessionID string) string {
	tok, err := p.GetToken(ctx, sessionID)
	if err != nil || tok == nil || !tok.Valid() {
		return ""
	}
	return tok.AccessToken
}
