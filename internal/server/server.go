// Package server wires all MCP components and creates the server
// instance.
//
// This is the composition root: it creates concrete implementations
// and injects them into the tools/prompts/resources that depend on
// them. No selection logic lives here — only wiring.
package server

import (
	"log"

	"github.com/mark3labs/mcp-go/server"

	"github.com/MarianaDuarte/focal/internal/prompts"
	"github.com/MarianaDuarte/focal/internal/resources"
	"github.com/MarianaDuarte/focal/internal/scorecache"
	"github.com/MarianaDuarte/focal/internal/snapshot"
	"github.com/MarianaDuarte/focal/internal/tools"
)

// Version is set at build time via ldflags.
var Version = "dev"

// New creates and configures the MCP server with all tools, prompts,
// and resources registered.
//
// The returned cleanup function closes the snapshot store and must be
// called on shutdown (typically via defer). It is always non-nil and
// safe to call even if the store failed to open.
func New() (*server.MCPServer, func(), error) {
	s := server.NewMCPServer(
		"focal",
		Version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithPromptCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions(serverInstructions()),
	)

	// The score cache is shared across every call for the lifetime of
	// the server. It synchronizes internally.
	cache := scorecache.New(scorecache.DefaultMaxEntries)

	// Snapshot persistence is best-effort: without it, scans still
	// work, they just cannot compute deltas across restarts. Tools
	// handle a nil store internally.
	cleanup := noop
	store, err := snapshot.Open(snapshot.DefaultDataDir())
	if err != nil {
		log.Printf("WARNING: snapshot persistence disabled: %v", err)
		store = nil
	} else {
		cleanup = func() {
			if err := store.Close(); err != nil {
				log.Printf("WARNING: snapshot store close: %v", err)
			}
		}
	}

	deps := tools.Deps{Store: store, Cache: cache}

	scanTool := tools.NewScanTool(deps)
	s.AddTool(scanTool.Definition(), scanTool.Handle)

	selectTool := tools.NewSelectTool(deps)
	s.AddTool(selectTool.Definition(), selectTool.Handle)

	reportTool := tools.NewReportTool(deps)
	s.AddTool(reportTool.Definition(), reportTool.Handle)

	statusTool := tools.NewStatusTool(deps)
	s.AddTool(statusTool.Definition(), statusTool.Handle)

	invalidateTool := tools.NewInvalidateTool(deps)
	s.AddTool(invalidateTool.Definition(), invalidateTool.Handle)

	optimizePrompt := prompts.NewOptimizePrompt()
	s.AddPrompt(optimizePrompt.Definition(), optimizePrompt.Handle)

	resourceHandler := resources.NewHandler(store)
	s.AddResource(resourceHandler.CatalogResource(), resourceHandler.HandleCatalog)

	return s, cleanup, nil
}

// noop is the default cleanup when persistence is disabled.
func noop() {}

// serverInstructions returns the system instructions that tell the AI
// how to use focal effectively.
func serverInstructions() string {
	return `You have access to focal, a context selection MCP server.

## WHAT FOCAL DOES
focal keeps your working context inside a hard size budget. It catalogs
the project's files, scores them against your current task, and selects
the highest-value subset that fits.

## WHEN TO USE IT
- Starting work on a task in a large project: run ctx_select with a
  one-line task description to get the files worth reading first.
- After substantial edits: run ctx_scan so changed files are re-scored.
- When context feels bloated: run ctx_report and drop what scores low.

## RULES OF THUMB
- Pin files the user explicitly mentioned (pins are never dropped; if
  pins alone exceed the budget the call fails rather than dropping one).
- A "warn" verdict means you are above the configured threshold —
  prefer tightening the budget over ignoring it.
- Degraded items were unreadable or binary; their ranking used metadata
  only.`
}
