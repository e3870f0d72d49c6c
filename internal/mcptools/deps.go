// Package mcptools provides MCP tool handlers and registration.
package mcptools

import (
	"context"
	"log/slog"

	"github.com/dadmor/campaignforge/internal/db"
	"github.com/dadmor/campaignforge/internal/service"
	"github.com/dadmor/campaignforge/internal/wizard"
)

// DataAPI is the record listing surface the resource tools use.
// *db.Client satisfies it; tests substitute fakes.
type DataAPI interface {
	List(ctx context.Context, resource string, opts db.ListOptions) ([]map[string]any, int, error)
	Get(ctx context.Context, resource, id string) (map[string]any, error)
}

// Dependencies holds shared services for tool handlers.
// Passed to handler factories via closure capture.
type Dependencies struct {
	Engine    *wizard.Engine
	Completer wizard.Completer
	Campaigns *service.CampaignService
	Data      DataAPI
	Logger    *slog.Logger
}
