package mcptools

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// RegisterAll registers all tools with the MCP server.
// This is called from main after server creation but before Run().
func RegisterAll(server *mcp.Server, deps *Dependencies) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "analyze_website",
		Description: "Analyze a website URL into description, keywords and industry",
	}, NewAnalyzeWebsiteHandler(deps))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "generate_campaign",
		Description: "Generate a marketing campaign strategy from a website analysis",
	}, NewGenerateCampaignHandler(deps))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "save_campaign",
		Description: "Persist a finished campaign as a website analysis plus marketing strategy",
	}, NewSaveCampaignHandler(deps))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "advance_wizard",
		Description: "Advance an interactive wizard one step, validating and running its operation",
	}, NewAdvanceWizardHandler(deps))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "wizard_data",
		Description: "Show a wizard's schema and its accumulated process data",
	}, NewWizardDataHandler(deps))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_records",
		Description: "List records of a resource table with pagination",
	}, NewListRecordsHandler(deps))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_record",
		Description: "Retrieve one record by resource and id",
	}, NewGetRecordHandler(deps))
}
