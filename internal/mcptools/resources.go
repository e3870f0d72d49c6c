package mcptools

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/dadmor/campaignforge/internal/db"
)

// ListRecordsInput defines the input schema for the list_records tool.
type ListRecordsInput struct {
	Resource string `json:"resource" jsonschema:"required,Resource table: website_analysis / marketing_strategy / google_ads_campaign / blog_post / category / profile"`
	Limit    int    `json:"limit,omitempty" jsonschema:"Max results 1-100, default 20"`
	Offset   int    `json:"offset,omitempty" jsonschema:"Pagination offset"`
	Sort     string `json:"sort,omitempty" jsonschema:"Field to sort by"`
}

// NewListRecordsHandler creates the list_records tool handler.
func NewListRecordsHandler(deps *Dependencies) mcp.ToolHandlerFor[ListRecordsInput, any] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input ListRecordsInput) (
		*mcp.CallToolResult, any, error,
	) {
		limit := input.Limit
		if limit <= 0 {
			limit = 20
		}
		if limit > 100 {
			return ErrorResult("Limit must be 1-100", "Reduce limit value"), nil, nil
		}

		records, total, err := deps.Data.List(ctx, input.Resource, db.ListOptions{
			SortField: input.Sort,
			Limit:     limit,
			Offset:    input.Offset,
		})
		if err != nil {
			deps.Logger.Error("list records failed", "resource", input.Resource, "error", err)
			return ErrorResult("Listing failed: "+err.Error(), "Check the resource name"), nil, nil
		}

		return JSONResult(map[string]any{
			"data":  records,
			"total": total,
		}), nil, nil
	}
}

// GetRecordInput defines the input schema for the get_record tool.
type GetRecordInput struct {
	Resource string `json:"resource" jsonschema:"required,Resource table name"`
	ID       string `json:"id" jsonschema:"required,Record id"`
}

// NewGetRecordHandler creates the get_record tool handler.
func NewGetRecordHandler(deps *Dependencies) mcp.ToolHandlerFor[GetRecordInput, any] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input GetRecordInput) (
		*mcp.CallToolResult, any, error,
	) {
		record, err := deps.Data.Get(ctx, input.Resource, input.ID)
		if err != nil {
			deps.Logger.Error("get record failed", "resource", input.Resource, "id", input.ID, "error", err)
			return ErrorResult("Lookup failed: "+err.Error(), "Check the resource name"), nil, nil
		}
		if record == nil {
			return ErrorResult("Record not found", "Check the id with list_records"), nil, nil
		}
		return JSONResult(record), nil, nil
	}
}
