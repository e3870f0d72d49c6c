package mcptools

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// SaveCampaignInput defines the input schema for the save_campaign tool.
type SaveCampaignInput struct {
	URL                  string   `json:"url" jsonschema:"required,The analyzed website URL"`
	Description          string   `json:"description" jsonschema:"required,Business description"`
	Keywords             []string `json:"keywords,omitempty" jsonschema:"Analysis keywords"`
	Industry             string   `json:"industry" jsonschema:"required,Final industry (possibly edited)"`
	OriginalIndustry     string   `json:"originalIndustry,omitempty" jsonschema:"Industry as detected by the analysis"`
	Title                string   `json:"title" jsonschema:"required,Campaign title"`
	TargetAudience       string   `json:"targetAudience" jsonschema:"required,Target audience description"`
	BudgetRecommendation float64  `json:"budgetRecommendation" jsonschema:"required,Monthly budget in PLN"`
	Notes                string   `json:"notes" jsonschema:"required,Strategy notes"`
}

// NewSaveCampaignHandler creates the save_campaign tool handler. It
// persists an analysis plus strategy pair the same way finishing the
// campaign wizard does.
func NewSaveCampaignHandler(deps *Dependencies) mcp.ToolHandlerFor[SaveCampaignInput, any] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input SaveCampaignInput) (
		*mcp.CallToolResult, any, error,
	) {
		keywords := make([]any, 0, len(input.Keywords))
		for _, k := range input.Keywords {
			keywords = append(keywords, k)
		}

		saved, err := deps.Campaigns.SaveCampaign(ctx, map[string]any{
			"url":                  input.URL,
			"description":          input.Description,
			"keywords":             keywords,
			"industry":             input.Industry,
			"originalIndustry":     input.OriginalIndustry,
			"title":                input.Title,
			"targetAudience":       input.TargetAudience,
			"budgetRecommendation": input.BudgetRecommendation,
			"notes":                input.Notes,
		})
		if err != nil {
			deps.Logger.Error("save campaign failed", "url", input.URL, "error", err)
			return ErrorResult("Saving the campaign failed: "+err.Error(), "Check the database connection"), nil, nil
		}

		deps.Logger.Info("campaign saved",
			"analysis_id", saved.AnalysisID, "strategy_id", saved.StrategyID)
		return JSONResult(map[string]string{
			"analysisId": saved.AnalysisID,
			"strategyId": saved.StrategyID,
		}), nil, nil
	}
}
