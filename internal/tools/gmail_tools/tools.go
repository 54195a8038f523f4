package gmail_tools

import (
	"context"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/workspace-console/internal/gmail"
	"github.com/teemow/workspace-console/internal/result"
	"github.com/teemow/workspace-console/internal/server"
	"github.com/teemow/workspace-console/internal/tools/common"
)

// Tool names.
const (
	ToolListEmailsAndAnalyze = "listEmailsAndAnalyze"
	ToolListYesterdaysEmails = "listYesterdaysEmails"
)

// Harvester runs one mailbox harvest.
type Harvester interface {
	Harvest(ctx context.Context, adminEmail, mailboxID string, r gmail.DateRange) (*gmail.HarvestReport, error)
}

type handlers struct {
	harvester Harvester
	now       func() time.Time
}

// RegisterGmailTools registers the mail header tools.
func RegisterGmailTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	h := &handlers{harvester: sc.Harvester(), now: time.Now}

	adminEmail := mcp.WithString(common.ArgAdminEmail,
		mcp.Required(),
		mcp.Description("Workspace administrator the server acts as (domain-wide delegation)"),
	)
	mailboxID := mcp.WithString(common.ArgMailboxID,
		mcp.Required(),
		mcp.Description("Mailbox to read, e.g. user@example.com or 'me' for the administrator"),
	)

	listEmailsTool := mcp.NewTool(ToolListEmailsAndAnalyze,
		mcp.WithDescription("Retrieve the raw headers of every message received in a date range and classify each one for spam signals (SPF, DKIM, DMARC)"),
		adminEmail,
		mailboxID,
		mcp.WithString(common.ArgStartDate,
			mcp.Required(),
			mcp.Description("First day, inclusive (YYYY/MM/DD)"),
		),
		mcp.WithString(common.ArgEndDate,
			mcp.Required(),
			mcp.Description("Last day, exclusive (YYYY/MM/DD)"),
		),
		mcp.WithReadOnlyHintAnnotation(true),
	)
	s.AddTool(listEmailsTool, h.handleListEmailsAndAnalyze)

	yesterdayTool := mcp.NewTool(ToolListYesterdaysEmails,
		mcp.WithDescription("Retrieve and classify the headers of every message received yesterday (UTC)"),
		adminEmail,
		mailboxID,
		mcp.WithReadOnlyHintAnnotation(true),
	)
	s.AddTool(yesterdayTool, h.handleListYesterdaysEmails)

	return nil
}

func (h *handlers) handleListEmailsAndAnalyze(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	r, err := gmail.ParseDateRange(common.StringArg(args, common.ArgStartDate), common.StringArg(args, common.ArgEndDate))
	if err != nil {
		return common.FailureResult(err), nil
	}
	return h.harvest(ctx, args, r), nil
}

func (h *handlers) handleListYesterdaysEmails(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return h.harvest(ctx, request.GetArguments(), gmail.YesterdayRange(h.now())), nil
}

func (h *handlers) harvest(ctx context.Context, args map[string]any, r gmail.DateRange) *mcp.CallToolResult {
	report, err := h.harvester.Harvest(ctx,
		common.AdminEmailFromArgs(args),
		common.StringArg(args, common.ArgMailboxID),
		r)
	if err != nil {
		return common.FailureResult(err)
	}
	items := report.Items
	if items == nil {
		items = []gmail.HeaderAnalysis{}
	}
	return common.ToolResult(result.Success(items), report.Message())
}
