package mcptools

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/dadmor/campaignforge/internal/flows"
	"github.com/dadmor/campaignforge/internal/wizard"
)

// AnalyzeWebsiteInput defines the input schema for the analyze_website tool.
type AnalyzeWebsiteInput struct {
	URL string `json:"url" jsonschema:"required,The website URL to analyze (http or https)"`
}

// NewAnalyzeWebsiteHandler creates the analyze_website tool handler.
// Runs the website analysis operation against a throwaway process so
// tool calls never interfere with interactive wizard state.
func NewAnalyzeWebsiteHandler(deps *Dependencies) mcp.ToolHandlerFor[AnalyzeWebsiteInput, any] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input AnalyzeWebsiteInput) (
		*mcp.CallToolResult, any, error,
	) {
		if !strings.HasPrefix(input.URL, "http://") && !strings.HasPrefix(input.URL, "https://") {
			return ErrorResult("URL must start with http:// or https://", "Provide a full website address"), nil, nil
		}

		result, err := runOperation(ctx, deps, flows.WebsiteAnalysisOperation(),
			map[string]any{"url": input.URL})
		if err != nil {
			deps.Logger.Error("website analysis failed", "url", input.URL, "error", err)
			return ErrorResult("Website analysis failed: "+err.Error(), "Check the AI service connection"), nil, nil
		}

		deps.Logger.Info("website analyzed", "url", input.URL)
		return JSONResult(result), nil, nil
	}
}

// GenerateCampaignInput defines the input schema for the generate_campaign tool.
type GenerateCampaignInput struct {
	URL         string   `json:"url" jsonschema:"required,The analyzed website URL"`
	Description string   `json:"description" jsonschema:"required,Business description from the analysis"`
	Keywords    []string `json:"keywords,omitempty" jsonschema:"Keywords from the analysis"`
	Industry    string   `json:"industry" jsonschema:"required,Industry the campaign targets"`
}

// NewGenerateCampaignHandler creates the generate_campaign tool handler.
func NewGenerateCampaignHandler(deps *Dependencies) mcp.ToolHandlerFor[GenerateCampaignInput, any] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input GenerateCampaignInput) (
		*mcp.CallToolResult, any, error,
	) {
		if input.Description == "" || input.Industry == "" {
			return ErrorResult("description and industry are required",
				"Run analyze_website first and pass its output"), nil, nil
		}

		keywords := make([]any, 0, len(input.Keywords))
		for _, k := range input.Keywords {
			keywords = append(keywords, k)
		}

		result, err := runOperation(ctx, deps, flows.CampaignGenerationOperation(), map[string]any{
			"url":         input.URL,
			"description": input.Description,
			"keywords":    keywords,
			"industry":    input.Industry,
		})
		if err != nil {
			deps.Logger.Error("campaign generation failed", "url", input.URL, "error", err)
			return ErrorResult("Campaign generation failed: "+err.Error(), "Check the AI service connection"), nil, nil
		}

		deps.Logger.Info("campaign generated", "url", input.URL)
		return JSONResult(result), nil, nil
	}
}

// runOperation executes one declarative operation in an isolated
// process record.
func runOperation(ctx context.Context, deps *Dependencies, op wizard.Operation, input map[string]any) (wizard.Result, error) {
	processID := "mcp-" + uuid.NewString()
	exec := wizard.NewExecutor(processID, wizard.NewStore(), deps.Completer, deps.Logger)
	exec.RegisterOperation(op)
	defer exec.UnregisterOperation()
	return exec.Execute(ctx, input)
}
