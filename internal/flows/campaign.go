// Package flows declares the wizard flows shipped with campaignforge:
// the 5-step campaign wizard, the 4-step strategy wizard bound to an
// existing website analysis, and the account registration wizard.
package flows

import (
	"github.com/dadmor/campaignforge/internal/wizard"
)

// Process ids. Stable: process data accumulates under these keys.
const (
	CampaignProcessID     = "campaign-wizard"
	StrategyProcessID     = "strategy-wizard"
	RegistrationProcessID = "registration"
)

// Campaign wizard routes.
const (
	CampaignDashboardRoute = "/campaign"
	CampaignStep1Route     = "/campaign/step1"
	CampaignStep2Route     = "/campaign/step2"
	CampaignStep3Route     = "/campaign/step3"
	CampaignStep4Route     = "/campaign/step4"
	CampaignStep5Route     = "/campaign/step5"
	StrategiesRoute        = "/marketing-strategies"
)

const analysisSystemPrompt = "You are an expert in website analysis and digital marketing."

const analysisUserPrompt = `Analyze the website: {{url}}

Generate JSON:
{
  "description": "<30-100 word description of the business>",
  "keywords": ["keyword1", "keyword2", "keyword3"],
  "industry": "<specific industry>"
}

Requirements:
- Description: the company's main activities and services
- Keywords: 5-10 keywords relevant to the industry
- Industry: a specific vertical (e.g. "fashion e-commerce", "financial services")`

const generationSystemPrompt = "You are a digital marketing expert. You create marketing strategies."

const generationUserPrompt = `Based on the website analysis, generate a marketing strategy:

URL: {{url}}
Description: {{description}}
Keywords: {{keywords}}
Industry: {{industry}}

Generate JSON:
{
  "title": "<creative campaign title>",
  "targetAudience": "<detailed target audience description - demographics, interests, behavior>",
  "budgetRecommendation": <number - monthly budget in PLN>,
  "notes": "<detailed strategy notes: channels, timing, content marketing, SEO/SEM, social media, KPIs, A/B tests, competition, USP - min 300 words>"
}

Requirements:
- Title: engaging and strategic
- Target audience: very specific (age, gender, education, interests)
- Budget: realistic for the industry (1000-50000 PLN)
- Notes: very detailed with concrete actions`

// WebsiteAnalysisOperation turns a URL into description/keywords/industry.
// The detected industry is also kept as originalIndustry so a later step
// can overwrite industry while the original stays comparable.
func WebsiteAnalysisOperation() wizard.Operation {
	return wizard.Operation{
		ID:   "analyze-website",
		Name: "Website analysis",
		Prompt: wizard.Prompt{
			System:         analysisSystemPrompt,
			User:           analysisUserPrompt,
			ResponseFormat: wizard.ResponseJSON,
		},
		InputMapping: func(data map[string]any) map[string]any {
			return map[string]any{"url": data["url"]}
		},
		OutputMapping: func(result wizard.Result, current map[string]any) map[string]any {
			patch := make(map[string]any, len(current)+4)
			for k, v := range current {
				patch[k] = v
			}
			patch["description"] = result["description"]
			patch["keywords"] = result["keywords"]
			patch["industry"] = result["industry"]
			patch["originalIndustry"] = result["industry"]
			return patch
		},
		Validate: func(result wizard.Result) bool {
			return present(result, "description") &&
				present(result, "keywords") &&
				present(result, "industry")
		},
	}
}

// CampaignGenerationOperation turns the accumulated analysis into a
// campaign draft: title, audience, budget, strategy notes.
func CampaignGenerationOperation() wizard.Operation {
	return wizard.Operation{
		ID:   "generate-campaign",
		Name: "Campaign generation",
		Prompt: wizard.Prompt{
			System:         generationSystemPrompt,
			User:           generationUserPrompt,
			ResponseFormat: wizard.ResponseJSON,
		},
		InputMapping:  strategyInputMapping,
		OutputMapping: strategyOutputMapping,
		Validate:      strategyValidate,
	}
}

func strategyInputMapping(data map[string]any) map[string]any {
	return map[string]any{
		"url":         data["url"],
		"description": data["description"],
		"keywords":    joinKeywords(data["keywords"]),
		"industry":    data["industry"],
	}
}

func strategyOutputMapping(result wizard.Result, current map[string]any) map[string]any {
	patch := make(map[string]any, len(current)+4)
	for k, v := range current {
		patch[k] = v
	}
	patch["title"] = result["title"]
	patch["targetAudience"] = result["targetAudience"]
	patch["budgetRecommendation"] = result["budgetRecommendation"]
	patch["notes"] = result["notes"]
	return patch
}

func strategyValidate(result wizard.Result) bool {
	return present(result, "title") &&
		present(result, "targetAudience") &&
		present(result, "budgetRecommendation") &&
		present(result, "notes")
}

// CampaignFlow declares the full 5-step campaign wizard.
func CampaignFlow() wizard.Flow {
	analysis := WebsiteAnalysisOperation()
	generation := CampaignGenerationOperation()

	return wizard.Flow{
		Process: wizard.Process{
			ID:    CampaignProcessID,
			Title: "Marketing campaign wizard",
			Steps: map[string]wizard.Step{
				"step1": {
					Title: "Website analysis",
					Fields: map[string]wizard.Field{
						"url": {Type: wizard.FieldURL, Title: "Website address", Placeholder: "https://yourcompany.com"},
					},
					Required: []string{"url"},
					Validate: validateRules(urlRule("url")),
				},
				"step2": {
					Title: "Analysis review",
					Fields: map[string]wizard.Field{
						"description": {Type: wizard.FieldTextarea, Title: "Description", ReadOnly: true},
						"keywords":    {Type: wizard.FieldTags, Title: "Keywords", ReadOnly: true},
						"industry":    {Type: wizard.FieldText, Title: "Industry", ReadOnly: true},
					},
				},
				"step3": {
					Title: "Industry adjustment",
					Fields: map[string]wizard.Field{
						"industry": {Type: wizard.FieldText, Title: "Industry (editable)", Placeholder: "Adjust the industry..."},
					},
					Required: []string{"industry"},
				},
				"step4": {
					Title: "Campaign preview",
					Fields: map[string]wizard.Field{
						"title":                {Type: wizard.FieldText, Title: "Campaign title", ReadOnly: true},
						"targetAudience":       {Type: wizard.FieldTextarea, Title: "Target audience", ReadOnly: true},
						"budgetRecommendation": {Type: wizard.FieldNumber, Title: "Budget (PLN)", ReadOnly: true},
						"notes":                {Type: wizard.FieldTextarea, Title: "Strategy notes", ReadOnly: true},
					},
				},
				"step5": {
					Title: "Finalize",
					Fields: map[string]wizard.Field{
						"title":                {Type: wizard.FieldText, Title: "Campaign title", Placeholder: "Edit the title..."},
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
			StepOrder: []string{"step1", "step2", "step3", "step4", "step5"},
		},
		Steps: []wizard.FlowStep{
			{Key: "step1", Route: CampaignStep1Route, Operation: &analysis},
			{Key: "step2", Route: CampaignStep2Route},
			{Key: "step3", Route: CampaignStep3Route, Operation: &generation, OperationInput: strategyInputSelector},
			{Key: "step4", Route: CampaignStep4Route},
			{Key: "step5", Route: CampaignStep5Route},
		},
		FinishRoute: StrategiesRoute,
	}
}

// strategyInputSelector narrows the accumulated record to the fields the
// generation prompt needs.
func strategyInputSelector(data map[string]any) map[string]any {
	return map[string]any{
		"url":         data["url"],
		"description": data["description"],
		"keywords":    data["keywords"],
		"industry":    data["industry"],
	}
}
