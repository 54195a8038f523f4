package admin_tools

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/workspace-console/internal/adminverify"
	"github.com/teemow/workspace-console/internal/apperr"
	"github.com/teemow/workspace-console/internal/router"
	"github.com/teemow/workspace-console/internal/server"
	"github.com/teemow/workspace-console/internal/session"
	"github.com/teemow/workspace-console/internal/tools/common"
)

// Tool names.
const (
	ToolVerifySuperAdminStatus = router.ToolVerify
	ToolRouteRequest           = "routeRequest"
)

// Verifier checks and reads the session's verification.
type Verifier interface {
	Check(ctx context.Context, cache session.State, accessToken string) (*adminverify.Verification, error)
	Cached(ctx context.Context, cache session.State) (*adminverify.Verification, error)
}

type handlers struct {
	verifier Verifier
	sessions session.Store
	tokens   adminverify.SessionTokens
}

// RegisterAdminTools registers verifySuperAdminStatus and routeRequest.
func RegisterAdminTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	h := &handlers{verifier: sc.Verifier(), sessions: sc.Sessions(), tokens: sc.Tokens()}

	verifyTool := mcp.NewTool(ToolVerifySuperAdminStatus,
		mcp.WithDescription("Verify that the signed-in user is a Google Workspace super administrator. The verdict is kept for the rest of the session."),
		mcp.WithString(common.ArgAccessToken,
			mcp.Description("The user's Google access token. Optional when the front-end forwards it with the request."),
		),
	)
	s.AddTool(verifyTool, h.handleVerify)

	routeTool := mcp.NewTool(ToolRouteRequest,
		mcp.WithDescription("Decide which tools can serve a natural-language request, given the session's super-admin verification"),
		mcp.WithString(common.ArgRequest,
			mcp.Required(),
			mcp.Description("The user's request text"),
		),
		mcp.WithReadOnlyHintAnnotation(true),
	)
	s.AddTool(routeTool, h.handleRoute)

	return nil
}

func (h *handlers) handleVerify(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := session.IDFromContext(ctx)
	token := adminverify.ResolveAccessToken(ctx,
		common.StringArg(request.GetArguments(), common.ArgAccessToken), sessionID, h.tokens)

	v, err := h.verifier.Check(ctx, h.sessions.Session(sessionID), token)
	if err != nil {
		return mcp.NewToolResultError(adminverify.FailureMessage(err)), nil
	}
	return mcp.NewToolResultText(v.ResultMessage), nil
}

func (h *handlers) handleRoute(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text := common.StringArg(request.GetArguments(), common.ArgRequest)
	if text == "" {
		return common.FailureResult(apperr.Required(common.ArgRequest)), nil
	}

	v, err := h.verifier.Cached(ctx, h.sessions.Session(session.IDFromContext(ctx)))
	if err != nil {
		return common.FailureResult(err), nil
	}

	data, err := json.MarshalIndent(router.Decide(text, v), "", "  ")
	if err != nil {
		return common.FailureResult(err), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
