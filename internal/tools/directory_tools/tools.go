package directory_tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/workspace-console/internal/directory"
	"github.com/teemow/workspace-console/internal/result"
	"github.com/teemow/workspace-console/internal/server"
	"github.com/teemow/workspace-console/internal/tools/common"
)

// ToolListDomainUsers is the tool name.
const ToolListDomainUsers = "listDomainUsers"

// Lister lists the users of a domain.
type Lister interface {
	List(ctx context.Context, adminEmail, domain string) ([]directory.UserRecord, error)
}

// RegisterDirectoryTools registers listDomainUsers.
func RegisterDirectoryTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	tool := mcp.NewTool(ToolListDomainUsers,
		mcp.WithDescription("List every user of a Workspace domain with masked email addresses, alias summary, role and status"),
		mcp.WithString(common.ArgAdminEmail,
			mcp.Required(),
			mcp.Description("Workspace administrator the server acts as (domain-wide delegation)"),
		),
		mcp.WithString(common.ArgDomain,
			mcp.Required(),
			mcp.Description("Domain to list, e.g. example.com"),
		),
		mcp.WithReadOnlyHintAnnotation(true),
	)

	s.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleListDomainUsers(ctx, request, sc.Lister())
	})
	return nil
}

func handleListDomainUsers(ctx context.Context, request mcp.CallToolRequest, lister Lister) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	records, err := lister.List(ctx, common.AdminEmailFromArgs(args), common.StringArg(args, common.ArgDomain))
	if err != nil {
		return common.FailureResult(err), nil
	}

	masked := directory.Mask(records)
	return common.ToolResult(result.Success(masked), masked.Message()), nil
}
