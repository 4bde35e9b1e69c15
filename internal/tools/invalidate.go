package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

// InvalidateTool handles the ctx_invalidate MCP tool.
type InvalidateTool struct {
	deps Deps
}

// NewInvalidateTool creates an InvalidateTool.
func NewInvalidateTool(deps Deps) *InvalidateTool {
	return &InvalidateTool{deps: deps}
}

// Definition returns the MCP tool definition for ctx_invalidate.
func (t *InvalidateTool) Definition() mcp.Tool {
	return mcp.NewTool("ctx_invalidate",
		mcp.WithDescription(
			"Drop memoized relevance scores. With an item_id, drops that item's "+
				"scores across all task profiles; without one, empties the whole "+
				"cache. Scores are recomputed lazily on the next selection — this "+
				"never loses data.",
		),
		mcp.WithString("item_id",
			mcp.Description("Item to invalidate (omit to invalidate everything)"),
		),
	)
}

// Handle processes the ctx_invalidate tool call.
func (t *InvalidateTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if t.deps.Cache == nil {
		return mcp.NewToolResultError("score cache unavailable"), nil
	}

	if id := req.GetString("item_id", ""); id != "" {
		t.deps.Cache.Invalidate(id)
		return mcp.NewToolResultText(fmt.Sprintf("Invalidated cached scores for %s", id)), nil
	}

	t.deps.Cache.InvalidateAll()
	return mcp.NewToolResultText("Invalidated all cached scores"), nil
}
