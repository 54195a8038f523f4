package common

import (
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/teemow/workspace-console/internal/result"
)

// ToolResult renders r as the JSON envelope. Failures set isError.
func ToolResult[T any](r result.Result[T], message string) *mcp.CallToolResult {
	if r.IsSuccess() {
		return mcp.NewToolResultText(r.JSON(message))
	}
	return mcp.NewToolResultError(r.JSON(""))
}

// FailureResult renders err as a failure envelope.
func FailureResult(err error) *mcp.CallToolResult {
	return ToolResult(result.Failure[any](err), "")
}
