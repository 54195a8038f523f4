package server

import (
	"context"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

type testSession struct{ id string }

func (s testSession) SessionID() string                                   { return s.id }
func (s testSession) NotificationChannel() chan<- mcp.JSONRPCNotification { return make(chan mcp.JSONRPCNotification, 1) }
func (s testSession) Initialize()                                         {}
func (s testSession) Initialized() bool                                   { return true }

func TestHooks_UnregisterDropsSessionState(t *testing.T) {
	sc := newTestServerContext(t)
	ctx := context.Background()

	_, err := sc.Sessions().Session("s1").StoreOnce(ctx, "auth_agent", map[string]string{"user_email": "a@example.com"})
	require.NoError(t, err)
	_, err = sc.Sessions().Session("s2").StoreOnce(ctx, "auth_agent", map[string]string{"user_email": "b@example.com"})
	require.NoError(t, err)

	s := mcpserver.NewMCPServer("test", "0.0.1", mcpserver.WithHooks(sc.Hooks()))
	require.NoError(t, s.RegisterSession(ctx, testSession{id: "s1"}))
	s.UnregisterSession(ctx, "s1")

	var got map[string]string
	found, err := sc.Sessions().Session("s1").Load(ctx, "auth_agent", &got)
	require.NoError(t, err)
	assert.False(t, found)

	found, err = sc.Sessions().Session("s2").Load(ctx, "auth_agent", &got)
	require.NoError(t, err)
	assert.True(t, found)
}

func TestHooks_UnregisterDeletesForwardedToken(t *testing.T) {
	sc := newTestServerContext(t)
	ctx := context.Background()

	expiry := time.Now().Add(time.Hour)
	require.NoError(t, sc.Tokens().SaveToken(ctx, "s1", &oauth2.Token{AccessToken: "user-token-1", Expiry: expiry}))
	require.NoError(t, sc.Tokens().SaveToken(ctx, "s2", &oauth2.Token{AccessToken: "user-token-2", Expiry: expiry}))

	s := mcpserver.NewMCPServer("test", "0.0.1", mcpserver.WithHooks(sc.Hooks()))
	require.NoError(t, s.RegisterSession(ctx, testSession{id: "s1"}))
	s.UnregisterSession(ctx, "s1")

	assert.Empty(t, sc.Tokens().AccessToken(ctx, "s1"))
	assert.Equal(t, "user-token-2", sc.Tokens().AccessToken(ctx, "s2"))
}
