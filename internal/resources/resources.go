// Package resources implements MCP resource handlers for the catalog.
//
// Resources provide read-only data the host can pull for context. They
// use URI-based addressing (focal://...) following MCP conventions.
package resources

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/MarianaDuarte/focal/internal/snapshot"
)

// Handler serves focal resource endpoints.
type Handler struct {
	store *snapshot.Store
}

// NewHandler creates a resource Handler. The store may be nil when
// persistence is unavailable.
func NewHandler(store *snapshot.Store) *Handler {
	return &Handler{store: store}
}

// catalogStatus is the JSON shape served for the catalog resource.
type catalogStatus struct {
	Scope      string `json:"scope"`
	SnapshotID string `json:"snapshot_id,omitempty"`
	TakenAt    string `json:"taken_at,omitempty"`
	ItemCount  int    `json:"item_count"`
	TotalSize  int64  `json:"total_size"`
}

// CatalogResource returns the MCP resource definition for the latest
// catalog snapshot.
func (h *Handler) CatalogResource() mcp.Resource {
	return mcp.NewResource(
		"focal://catalog/latest",
		"Latest Catalog Snapshot",
		mcp.WithResourceDescription("Summary of the most recent catalog scan for the current project"),
		mcp.WithMIMEType("application/json"),
	)
}

// HandleCatalog returns the latest snapshot summary as JSON.
func (h *Handler) HandleCatalog(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("resolving working directory: %w", err)
	}

	status := catalogStatus{Scope: wd}
	if h.store != nil {
		snap, err := h.store.Latest(wd)
		if err != nil {
			return errorResource(req.Params.URI, err.Error()), nil
		}
		if snap != nil {
			status.SnapshotID = snap.ID
			status.TakenAt = snap.TakenAt.Format("2006-01-02T15:04:05Z07:00")
			status.ItemCount = len(snap.Items)
			status.TotalSize = snap.TotalSize()
		}
	}

	data, err := json.MarshalIndent(status, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling status: %w", err)
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

// errorResource returns a resource with an error message.
func errorResource(uri, message string) []mcp.ResourceContents {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "text/plain",
			Text:     fmt.Sprintf("Error: %s", message),
		},
	}
}
