package tools

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/MarianaDuarte/focal/internal/selector"
)

// SelectTool handles the ctx_select MCP tool.
type SelectTool struct {
	deps Deps
}

// NewSelectTool creates a SelectTool.
func NewSelectTool(deps Deps) *SelectTool {
	return &SelectTool{deps: deps}
}

// Definition returns the MCP tool definition for ctx_select.
func (t *SelectTool) Definition() mcp.Tool {
	return mcp.NewTool("ctx_select",
		mcp.WithDescription(
			"Select the most relevant context for a task under a size budget. "+
				"Scores every cataloged item against the task description, then "+
				"greedily packs the highest-value items that fit. Pinned items are "+
				"always included.",
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
			mcp.Description("Force a fresh catalog scan before selecting"),
		),
	)
}

// Handle processes the ctx_select tool call.
func (t *SelectTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if req.GetString("task", "") == "" {
		return mcp.NewToolResultError("'task' is required"), nil
	}

	res, profile, err := runSelect(ctx, t.deps, req)
	if err != nil {
		var pinErr *selector.BudgetExceededByPinsError
		if errors.As(err, &pinErr) {
			return mcp.NewToolResultError(fmt.Sprintf(
				"%v — raise the budget or remove pins", pinErr)), nil
		}
		return mcp.NewToolResultError(fmt.Sprintf("selection failed: %v", err)), nil
	}

	ws := res.WorkingSet
	var b strings.Builder
	fmt.Fprintf(&b, "Working set: %d items, %d / %d bytes (%s)\n",
		len(ws.Items), ws.TotalSize, profile.CapacityBudget, res.Verdict)
	fmt.Fprintf(&b, "Dropped for budget: %d\n\n", ws.DroppedCount)

	for i, it := range ws.Items {
		marker := ""
		if profile.Pinned(it.ID) {
			marker = " [pinned]"
		}
		fmt.Fprintf(&b, "%2d. %s (%s, %d bytes, score %.3f)%s\n",
			i+1, it.ID, it.Kind, it.SizeBytes, res.Scores[it.ID], marker)
	}

	if res.Verdict == selector.VerdictWarn {
		threshold := int64(float64(profile.CapacityBudget) * profile.WarnThreshold)
		fmt.Fprintf(&b, "\nWarning: working set size %d is at or above the warn threshold (%d bytes)\n",
			ws.TotalSize, threshold)
	}
	if len(res.Degraded) > 0 {
		fmt.Fprintf(&b, "\nDegraded items (ranked by metadata only): %s\n",
			strings.Join(res.Degraded, ", "))
	}

	return mcp.NewToolResultText(b.String()), nil
}
