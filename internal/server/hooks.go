package server

import (
	"context"

	mcpserver "github.com/mark3labs/mcp-go/server"
)

// Hooks tracks MCP sessions: it counts active sessions and discards the state of
// a session when it unregisters.
func (sc *ServerContext) Hooks() *mcpserver.Hooks {
	hooks := &mcpserver.Hooks{}
	hooks.AddOnRegisterSession(func(ctx context.Context, session mcpserver.ClientSession) {
		sc.metrics.IncrementActiveSessions(ctx)
		sc.logger.Debug("session registered", "session_id", session.SessionID())
	})
	hooks.AddOnUnregisterSession(func(ctx context.Context, session mcpserver.ClientSession) {
		sc.metrics.DecrementActiveSessions(ctx)
		sc.DropSession(context.WithoutCancel(ctx), session.SessionID())
		sc.logger.Debug("session unregistered", "session_id", session.SessionID())
	})
	return hooks
}
