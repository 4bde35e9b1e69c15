package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/MarianaDuarte/focal/internal/report"
)

// ReportTool handles the ctx_report MCP tool.
type ReportTool struct {
	deps Deps
}

// NewReportTool creates a ReportTool.
func NewReportTool(deps Deps) *ReportTool {
	return &ReportTool{deps: deps}
}

// Definition returns the MCP tool definition for ctx_report.
func (t *ReportTool) Definition() mcp.Tool {
	return mcp.NewTool("ctx_report",
		mcp.WithDescription(
			"Generate a markdown context-usage report for a task: budget usage, "+
				"per-kind breakdown, the most relevant items, and anything degraded.",
		),
		mcp.WithString("task",
			mcp.Required(),
			mcp.Description("What you are working on — used for keyword relevance"),
		),
		mcp.WithString("pins",
			mcp.Description("Comma-separated item IDs to force into the working set"),
		),
		mcp.WithNumber("budget",
			mcp.Description("Capacity budget in bytes (default: configured capacity_budget)"),
		),
		mcp.WithString("root",
			mcp.Description("Project root (default: current directory)"),
		),
		mcp.WithBoolean("rescan",
			mcp.Description("Force a fresh catalog scan before reporting"),
		),
	)
}

// Handle processes the ctx_report tool call.
func (t *ReportTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if req.GetString("task", "") == "" {
		return mcp.NewToolResultError("'task' is required"), nil
	}

	res, profile, err := runSelect(ctx, t.deps, req)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("report failed: %v", err)), nil
	}

	return mcp.NewToolResultText(report.Render(res, profile)), nil
}
