package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/MarianaDuarte/focal/internal/config"
)

// StatusTool handles the ctx_status MCP tool.
type StatusTool struct {
	deps Deps
}

// NewStatusTool creates a StatusTool.
func NewStatusTool(deps Deps) *StatusTool {
	return &StatusTool{deps: deps}
}

// Definition returns the MCP tool definition for ctx_status.
func (t *StatusTool) Definition() mcp.Tool {
	return mcp.NewTool("ctx_status",
		mcp.WithDescription(
			"Show the catalog and cache state for a project: latest snapshot, "+
				"item counts, corpus size versus the configured budget, and how many "+
				"scores are memoized.",
		),
		mcp.WithString("root",
			mcp.Description("Project root (default: current directory)"),
		),
	)
}

// Handle processes the ctx_status tool call.
func (t *StatusTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	root, err := resolveRoot(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	cfg, err := config.Load(root)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("loading config: %v", err)), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Scope: %s\n", root)
	fmt.Fprintf(&b, "Capacity budget: %d bytes (warn at %.0f%%)\n",
		cfg.CapacityBudget, cfg.WarnThreshold*100)

	if t.deps.Store == nil {
		b.WriteString("Snapshot store: unavailable (scans are not persisted)\n")
	} else {
		snap, err := t.deps.Store.Latest(root)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("loading snapshot: %v", err)), nil
		}
		if snap == nil {
			b.WriteString("No snapshot yet — run ctx_scan first\n")
		} else {
			fmt.Fprintf(&b, "Latest snapshot: %s (taken %s)\n", snap.ID, snap.TakenAt.Format("2006-01-02 15:04:05 MST"))
			fmt.Fprintf(&b, "Catalog: %d items, %d bytes total\n", len(snap.Items), snap.TotalSize())
		}
	}

	if t.deps.Cache != nil {
		fmt.Fprintf(&b, "Score cache: %d memoized entries\n", t.deps.Cache.Len())
	}

	return mcp.NewToolResultText(b.String()), nil
}
