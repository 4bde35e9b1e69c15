package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/MarianaDuarte/focal/internal/config"
)

// ScanTool handles the ctx_scan MCP tool.
type ScanTool struct {
	deps Deps
}

// NewScanTool creates a ScanTool.
func NewScanTool(deps Deps) *ScanTool {
	return &ScanTool{deps: deps}
}

// Definition returns the MCP tool definition for ctx_scan.
func (t *ScanTool) Definition() mcp.Tool {
	return mcp.NewTool("ctx_scan",
		mcp.WithDescription(
			"Scan a project for candidate context items. Fingerprints every file, "+
				"computes what changed since the last scan, and drops stale cached "+
				"scores. Run this after substantial edits so selection stays fresh.",
		),
		mcp.WithString("root",
			mcp.Description("Project root to scan (default: current directory)"),
		),
	)
}

// Handle processes the ctx_scan tool call.
func (t *ScanTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	root, err := resolveRoot(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	cfg, err := config.Load(root)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("loading config: %v", err)), nil
	}

	snap, delta, err := latestOrScan(ctx, t.deps, cfg, root, true)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("scan failed: %v", err)), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Scanned %s\n", root)
	fmt.Fprintf(&b, "Snapshot %s: %d items, %d bytes total\n", snap.ID, len(snap.Items), snap.TotalSize())
	fmt.Fprintf(&b, "Delta: %d added, %d changed, %d removed\n",
		len(delta.Added), len(delta.Changed), len(delta.Removed))

	if stale := delta.Stale(); len(stale) > 0 {
		fmt.Fprintf(&b, "Invalidated cached scores for %d items\n", len(stale))
	}
	if t.deps.Store == nil {
		b.WriteString("Note: snapshot persistence unavailable; delta applies to this session only\n")
	}

	return mcp.NewToolResultText(b.String()), nil
}
