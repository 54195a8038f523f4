package common

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/workspace-console/internal/apperr"
	"github.com/teemow/workspace-console/internal/instrumentation"
	"github.com/teemow/workspace-console/internal/logging"
	"github.com/teemow/workspace-console/internal/session"
)

// Runtime is what the tool middleware needs from the server.
type Runtime interface {
	Logger() *slog.Logger
	Metrics() *instrumentation.Metrics
	AuditLogger() *instrumentation.AuditLogger
	ToolTimeout() time.Duration
}

// ToolMiddleware wraps every tool handler of the server. Each call runs in a
// span and under the tool timeout; a panic becomes an internal failure result.
// The call is recorded in the tool metrics and the audit log.
//
// Usage:
//
//	mcpserver.NewMCPServer(name, version, mcpserver.WithToolHandlerMiddleware(common.ToolMiddleware(sc)))
func ToolMiddleware(rt Runtime) mcpserver.ToolHandlerMiddleware {
	return func(next mcpserver.ToolHandlerFunc) mcpserver.ToolHandlerFunc {
		return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			toolName := request.Params.Name
			sessionID := session.IDFromContext(ctx)
			logger := logging.WithSession(logging.WithTool(rt.Logger(), toolName), sessionID)

			invocation := instrumentation.NewToolInvocation(toolName).WithSession(sessionID)
			adminEmail := AdminEmailFromArgs(request.GetArguments())
			if adminEmail != "" {
				invocation.WithUser(adminEmail)
			}

			ctx, span := instrumentation.StartToolSpan(ctx, toolName, instrumentation.DomainAttrs(adminEmail)...)
			defer span.End()
			invocation.WithSpanContext(ctx)

			if timeout := rt.ToolTimeout(); timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, timeout)
				defer cancel()
			}

			result, err := invoke(ctx, next, request, logger)

			status := instrumentation.StatusSuccess
			switch {
			case err != nil:
				status = instrumentation.StatusError
				invocation.Fail(string(apperr.KindOf(err)), err.Error())
				instrumentation.RecordSpanResult(span, err)
			case result != nil && result.IsError:
				status = instrumentation.StatusError
				failure := failureOf(result)
				invocation.Fail(failure.ErrorKind, failure.Error)
				instrumentation.RecordSpanFailure(span, failure.ErrorKind, failure.Error)
			default:
				invocation.Succeed()
				instrumentation.RecordSpanResult(span, nil)
			}

			rt.Metrics().RecordToolInvocation(ctx, toolName, status, invocation.Duration)
			rt.AuditLogger().LogToolInvocation(invocation)
			logger.Debug("tool call finished", logging.Status(status),
				slog.Duration(logging.KeyDuration, invocation.Duration))

			return result, err
		}
	}
}

// invoke calls next and turns a panic into a failure result.
func invoke(ctx context.Context, next mcpserver.ToolHandlerFunc, request mcp.CallToolRequest, logger *slog.Logger) (result *mcp.CallToolResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("tool handler panicked",
				slog.Any("panic", r),
				slog.String("stack", string(debug.Stack())))
			result = FailureResult(fmt.Errorf("internal error while running %s", request.Params.Name))
			err = nil
		}
	}()
	return next(ctx, request)
}

type failure struct {
	Error     string `json:"error"`
	ErrorKind string `json:"errorKind"`
}

// failureOf reads the envelope of an error result. Results that are not
// envelopes yield their text as the error.
func failureOf(result *mcp.CallToolResult) failure {
	for _, c := range result.Content {
		text, ok := c.(mcp.TextContent)
		if !ok {
			continue
		}
		var f failure
		if json.Unmarshal([]byte(text.Text), &f) == nil && f.Error != "" {
			return f
		}
		return failure{Error: text.Text}
	}
	return failure{}
}
