package mcptools

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// AdvanceWizardInput defines the input schema for the advance_wizard tool.
type AdvanceWizardInput struct {
	Process string         `json:"process" jsonschema:"required,Process id: campaign-wizard / strategy-wizard / registration"`
	Step    string         `json:"step" jsonschema:"required,Step key, e.g. step1"`
	Edits   map[string]any `json:"edits,omitempty" jsonschema:"Field values entered on this step"`
}

// NewAdvanceWizardHandler creates the advance_wizard tool handler. It
// drives the same engine the HTTP server drives, so an MCP client can
// walk a wizard step by step and share its accumulated record.
func NewAdvanceWizardHandler(deps *Dependencies) mcp.ToolHandlerFor[AdvanceWizardInput, any] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input AdvanceWizardInput) (
		*mcp.CallToolResult, any, error,
	) {
		sess, err := deps.Engine.EnterStep(input.Process, input.Step)
		if err != nil {
			return ErrorResult(err.Error(), "Check process and step with wizard_data"), nil, nil
		}

		nextRoute, err := sess.Advance(ctx, input.Edits)
		if err != nil {
			return ErrorResult("Step did not advance: "+err.Error(),
				"Fix the reported field and call advance_wizard again"), nil, nil
		}

		deps.Logger.Info("wizard advanced",
			"process", input.Process, "step", input.Step, "next", nextRoute)
		return JSONResult(map[string]any{
			"nextRoute": nextRoute,
			"data":      deps.Engine.Store().Data(input.Process),
		}), nil, nil
	}
}

// WizardDataInput defines the input schema for the wizard_data tool.
type WizardDataInput struct {
	Process string `json:"process" jsonschema:"required,Process id"`
}

// NewWizardDataHandler creates the wizard_data tool handler: the schema
// and accumulated record of a process.
func NewWizardDataHandler(deps *Dependencies) mcp.ToolHandlerFor[WizardDataInput, any] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input WizardDataInput) (
		*mcp.CallToolResult, any, error,
	) {
		flow, ok := deps.Engine.Flow(input.Process)
		if !ok {
			return ErrorResult("Unknown process "+input.Process,
				"Use campaign-wizard, strategy-wizard or registration"), nil, nil
		}
		return JSONResult(map[string]any{
			"schema": flow.Process,
			"data":   deps.Engine.Store().Data(input.Process),
		}), nil, nil
	}
}
