package flows

import (
	"fmt"

	"github.com/dadmor/campaignforge/internal/wizard"
)

// StrategyRoutes builds the route set of the strategy wizard for a
// given website analysis id. The flow itself registers with placeholder
// routes; servers resolve concrete paths per analysis.
func StrategyRoutes(analysisID string) [4]string {
	base := fmt.Sprintf("/website-analyses/%s/strategy", analysisID)
	return [4]string{base + "/step1", base + "/step2", base + "/step3", base + "/step4"}
}

// StrategyGenerationOperation is the campaign generation prompt reused
// for strategies attached to an already-saved analysis.
func StrategyGenerationOperation() wizard.Operation {
	op := wizard.Operation{
		ID:   "generate-strategy",
		Name: "Marketing strategy generation",
		Prompt: wizard.Prompt{
			System:         generationSystemPrompt,
			User:           generationUserPrompt,
			ResponseFormat: wizard.ResponseJSON,
		},
		InputMapping:  strategyInputMapping,
		OutputMapping: strategyOutputMapping,
		Validate:      strategyValidate,
	}
	return op
}

// StrategyFlow declares the 4-step strategy wizard. Step 1 reviews the
// analysis the wizard was opened from (the caller seeds the store with
// the analysis record before entering), step 2 adjusts the industry and
// generates, step 3 reviews, step 4 edits and saves.
func StrategyFlow() wizard.Flow {
	generation := StrategyGenerationOperation()
	routes := StrategyRoutes(":id")

	return wizard.Flow{
		Process: wizard.Process{
			ID:    StrategyProcessID,
			Title: "Marketing strategy wizard",
			Steps: map[string]wizard.Step{
				"step1": {
					Title: "Analysis review",
					Fields: map[string]wizard.Field{
						"url":         {Type: wizard.FieldURL, Title: "Website address", ReadOnly: true},
						"description": {Type: wizard.FieldTextarea, Title: "Description", ReadOnly: true},
						"keywords":    {Type: wizard.FieldTags, Title: "Keywords", ReadOnly: true},
						"industry":    {Type: wizard.FieldText, Title: "Industry", ReadOnly: true},
					},
				},
				"step2": {
					Title: "Industry adjustment",
					Fields: map[string]wizard.Field{
						"industry": {Type: wizard.FieldText, Title: "Industry (editable)", Placeholder: "Adjust the industry..."},
					},
					Required: []string{"industry"},
				},
				"step3": {
					Title: "Strategy preview",
					Fields: map[string]wizard.Field{
						"title":                {Type: wizard.FieldText, Title: "Strategy title", ReadOnly: true},
						"targetAudience":       {Type: wizard.FieldTextarea, Title: "Target audience", ReadOnly: true},
						"budgetRecommendation": {Type: wizard.FieldNumber, Title: "Budget (PLN)", ReadOnly: true},
						"notes":                {Type: wizard.FieldTextarea, Title: "Strategy notes", ReadOnly: true},
					},
				},
				"step4": {
					Title: "Finalize",
					Fields: map[string]wizard.Field{
						"title":                {Type: wizard.FieldText, Title: "Strategy title", Placeholder: "Edit the title..."},
						"targetAudience":       {Type: wizard.FieldTextarea, Title: "Target audience", Placeholder: "Describe the target audience..."},
						"budgetRecommendation": {Type: wizard.FieldNumber, Title: "Budget (PLN)", Placeholder: "Enter the budget..."},
						"notes":                {Type: wizard.FieldTextarea, Title: "Strategy notes", Placeholder: "Add notes..."},
					},
					Required: []string{"title", "targetAudience", "budgetRecommendation", "notes"},
					Validate: validateRules(
						lengthRule("title", 3, 100, "title must be 3-100 characters"),
						lengthRule("targetAudience", 50, 1000, "target audience must be at least 50 characters"),
						rangeRule("budgetRecommendation", 500, 100000, "budget must be between 500 and 100,000 PLN"),
						lengthRule("notes", 100, 0, "notes must be at least 100 characters"),
					),
				},
			},
			StepOrder: []string{"step1", "step2", "step3", "step4"},
		},
		Steps: []wizard.FlowStep{
			{Key: "step1", Route: routes[0]},
			{Key: "step2", Route: routes[1], Operation: &generation, OperationInput: strategyInputSelector},
			{Key: "step3", Route: routes[2]},
			{Key: "step4", Route: routes[3]},
		},
		FinishRoute: StrategiesRoute,
	}
}
