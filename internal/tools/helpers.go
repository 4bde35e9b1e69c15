// Package tools provides the MCP tool handlers around the context
// selector.
//
// Each tool follows the same pattern:
// - A struct with dependencies injected via constructor
// - Definition() returns the mcp.Tool schema
// - Handle() processes the request and returns a result
//
// Tool-level errors (bad arguments, failed scans) come back as MCP
// error results, not Go errors, so the host can show them to the user.
package tools

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/MarianaDuarte/focal/internal/catalog"
	"github.com/MarianaDuarte/focal/internal/config"
	"github.com/MarianaDuarte/focal/internal/engine"
	"github.com/MarianaDuarte/focal/internal/relevance"
	"github.com/MarianaDuarte/focal/internal/scorecache"
	"github.com/MarianaDuarte/focal/internal/snapshot"
)

// Deps bundles the shared state injected into every tool: the snapshot
// store (nil when persistence is unavailable) and the score cache.
type Deps struct {
	Store *snapshot.Store
	Cache *scorecache.Cache
}

// intArg extracts an integer argument from a tool request, returning
// defaultVal if the key is missing or not a number (JSON numbers are
// float64).
func intArg(req mcp.CallToolRequest, key string, defaultVal int64) int64 {
	v, ok := req.GetArguments()[key].(float64)
	if !ok {
		return defaultVal
	}
	return int64(v)
}

// boolArg extracts a boolean argument from a tool request.
func boolArg(req mcp.CallToolRequest, key string, defaultVal bool) bool {
	v, ok := req.GetArguments()[key].(bool)
	if !ok {
		return defaultVal
	}
	return v
}

// resolveRoot returns the scope root from the request's "root"
// argument, defaulting to the current working directory, normalized to
// an absolute path.
func resolveRoot(req mcp.CallToolRequest) (string, error) {
	root := req.GetString("root", "")
	if root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("resolving working directory: %w", err)
		}
		root = wd
	}
	return filepath.Abs(root)
}

// splitPins parses the comma-separated "pins" argument.
func splitPins(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	pins := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			pins = append(pins, p)
		}
	}
	return pins
}

// latestOrScan returns the newest persisted snapshot for root, scanning
// fresh when the store is unavailable, empty, or rescan is requested. A
// fresh scan is diffed against the previous snapshot to invalidate
// stale cached scores, then persisted.
func latestOrScan(ctx context.Context, deps Deps, cfg config.Config, root string, rescan bool) (*catalog.Snapshot, catalog.Delta, error) {
	var prev *catalog.Snapshot
	if deps.Store != nil {
		var err error
		prev, err = deps.Store.Latest(root)
		if err != nil {
			return nil, catalog.Delta{}, err
		}
		if prev != nil && !rescan {
			return prev, catalog.Delta{}, nil
		}
	}

	scanner := catalog.NewScanner(cfg.Exclude)
	snap, err := scanner.Scan(ctx, root)
	if err != nil {
		return nil, catalog.Delta{}, err
	}

	delta := catalog.Diff(prev, snap)
	if deps.Cache != nil {
		for _, id := range delta.Stale() {
			deps.Cache.Invalidate(id)
		}
	}
	if deps.Store != nil {
		if err := deps.Store.Save(snap); err != nil {
			return nil, catalog.Delta{}, err
		}
		// Keep history shallow; deltas only ever need the previous one.
		_ = deps.Store.Prune(root, 5)
	}
	return snap, delta, nil
}

// runSelect is the shared core of ctx_select and ctx_report: resolve
// the scope, build the profile, and run the engine.
func runSelect(ctx context.Context, deps Deps, req mcp.CallToolRequest) (*engine.Result, relevance.Profile, error) {
	root, err := resolveRoot(req)
	if err != nil {
		return nil, relevance.Profile{}, err
	}

	cfg, err := config.Load(root)
	if err != nil {
		return nil, relevance.Profile{}, err
	}

	budget := intArg(req, "budget", cfg.CapacityBudget)
	profile := relevance.NewProfile(
		req.GetString("task", ""),
		splitPins(req.GetString("pins", "")),
		budget,
	)
	profile.WarnThreshold = cfg.WarnThreshold
	if err := profile.Validate(); err != nil {
		return nil, relevance.Profile{}, err
	}

	snap, _, err := latestOrScan(ctx, deps, cfg, root, boolArg(req, "rescan", false))
	if err != nil {
		return nil, relevance.Profile{}, err
	}

	eng := engine.New(cfg.Weights(), deps.Cache)
	res, err := eng.Optimize(ctx, snap, profile)
	if err != nil {
		return nil, relevance.Profile{}, err
	}
	return res, profile, nil
}
