package flows

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dadmor/campaignforge/internal/wizard"
)

// scriptedCompleter returns canned JSON per operation id, recognized by
// a marker substring in the rendered user prompt.
type scriptedCompleter struct {
	analysis map[string]any
	strategy map[string]any
	requests []wizard.CompletionRequest
}

func (c *scriptedCompleter) Complete(ctx context.Context, req wizard.CompletionRequest) (string, error) {
	c.requests = append(c.requests, req)

	var payload map[string]any
	if req.System == analysisSystemPrompt {
		payload = c.analysis
	} else {
		payload = c.strategy
	}
	raw, err := json.Marshal(payload)
	return string(raw), err
}

func newScriptedCompleter() *scriptedCompleter {
	return &scriptedCompleter{
		analysis: map[string]any{
			"description": "An online shop selling handmade ceramics and home decor.",
			"keywords":    []any{"handmade", "ceramics", "home decor"},
			"industry":    "e-commerce",
		},
		strategy: map[string]any{
			"title":                "Handmade Stories",
			"targetAudience":       "Women aged 25-45 with higher education, interested in interior design, sustainability and artisan products, shopping online weekly.",
			"budgetRecommendation": float64(8000),
			"notes": "Run Google Ads on long-tail handmade ceramics keywords, build an Instagram and Pinterest presence with workshop reels, publish two SEO blog posts per month, partner with interior design micro-influencers, A/B test landing pages monthly and track ROAS, CPC and newsletter signups as primary KPIs against local competitors.",
		},
	}
}

func newFlowEngine(t *testing.T, completer wizard.Completer) *wizard.Engine {
	t.Helper()
	e := wizard.NewEngine(wizard.NewRegistry(), wizard.NewStore(), completer, nil)
	require.NoError(t, e.RegisterFlow(CampaignFlow()))
	require.NoError(t, e.RegisterFlow(StrategyFlow()))
	require.NoError(t, e.RegisterFlow(RegistrationFlow()))
	return e
}

func TestCampaignFlowFullWalk(t *testing.T) {
	completer := newScriptedCompleter()
	e := newFlowEngine(t, completer)
	ctx := context.Background()

	// Step 1: URL in, analysis out.
	sess, err := e.EnterStep(CampaignProcessID, "step1")
	require.NoError(t, err)
	next, err := sess.Advance(ctx, map[string]any{"url": "https://ceramics.example.com"})
	require.NoError(t, err)
	assert.Equal(t, CampaignStep2Route, next)

	data := e.Store().Data(CampaignProcessID)
	assert.Equal(t, "e-commerce", data["industry"])
	assert.Equal(t, "e-commerce", data["originalIndustry"])
	assert.NotEmpty(t, data["description"])
	assert.NotEmpty(t, data["keywords"])

	// Step 2: read-only review.
	sess, err = e.EnterStep(CampaignProcessID, "step2")
	require.NoError(t, err)
	next, err = sess.Advance(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, CampaignStep3Route, next)

	// Step 3: edit the industry, generation runs with the edit while the
	// original detection survives.
	sess, err = e.EnterStep(CampaignProcessID, "step3")
	require.NoError(t, err)
	next, err = sess.Advance(ctx, map[string]any{"industry": "artisan e-commerce"})
	require.NoError(t, err)
	assert.Equal(t, CampaignStep4Route, next)

	data = e.Store().Data(CampaignProcessID)
	assert.Equal(t, "artisan e-commerce", data["industry"])
	assert.Equal(t, "e-commerce", data["originalIndustry"])
	assert.Equal(t, "Handmade Stories", data["title"])
	assert.Equal(t, float64(8000), data["budgetRecommendation"])

	// The generation prompt saw the edited industry and joined keywords.
	genReq := completer.requests[len(completer.requests)-1]
	assert.Contains(t, genReq.User, "artisan e-commerce")
	assert.Contains(t, genReq.User, "handmade, ceramics, home decor")

	// Step 4: preview.
	sess, err = e.EnterStep(CampaignProcessID, "step4")
	require.NoError(t, err)
	next, err = sess.Advance(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, CampaignStep5Route, next)

	// Step 5: finalize lands on the strategies listing.
	sess, err = e.EnterStep(CampaignProcessID, "step5")
	require.NoError(t, err)
	next, err = sess.Advance(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, StrategiesRoute, next)
}

func TestCampaignFlowURLValidation(t *testing.T) {
	e := newFlowEngine(t, newScriptedCompleter())

	sess, err := e.EnterStep(CampaignProcessID, "step1")
	require.NoError(t, err)

	tests := []struct {
		name string
		url  string
	}{
		{"missing scheme", "ceramics.example.com"},
		{"no dot in host", "https://localhost"},
		{"ftp scheme", "ftp://ceramics.example.com"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := sess.Advance(context.Background(), map[string]any{"url": tt.url})
			var fieldErr *wizard.FieldError
			require.ErrorAs(t, err, &fieldErr)
			assert.Equal(t, "url", fieldErr.Field)
		})
	}
}

func TestCampaignFlowFinalizeValidation(t *testing.T) {
	e := newFlowEngine(t, newScriptedCompleter())
	longAudience := "Women aged 25-45 interested in interior design and artisan products."
	longNotes := "Run Google Ads on long-tail keywords, build a social presence, publish SEO blog posts, partner with micro-influencers and A/B test landing pages monthly against tracked KPIs."

	valid := map[string]any{
		"title":                "Handmade Stories",
		"targetAudience":       longAudience,
		"budgetRecommendation": float64(8000),
		"notes":                longNotes,
	}

	tests := []struct {
		name      string
		mutate    func(m map[string]any)
		wantField string
	}{
		{"title too short", func(m map[string]any) { m["title"] = "Ad" }, "title"},
		{"audience too short", func(m map[string]any) { m["targetAudience"] = "Everyone online." }, "targetAudience"},
		{"budget too low", func(m map[string]any) { m["budgetRecommendation"] = float64(100) }, "budgetRecommendation"},
		{"budget too high", func(m map[string]any) { m["budgetRecommendation"] = float64(250000) }, "budgetRecommendation"},
		{"notes too short", func(m map[string]any) { m["notes"] = "Just run some ads." }, "notes"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sess, err := e.EnterStep(CampaignProcessID, "step5")
			require.NoError(t, err)

			edits := make(map[string]any, len(valid))
			for k, v := range valid {
				edits[k] = v
			}
			tt.mutate(edits)

			_, err = sess.Advance(context.Background(), edits)
			var fieldErr *wizard.FieldError
			require.ErrorAs(t, err, &fieldErr)
			assert.Equal(t, tt.wantField, fieldErr.Field)
		})
	}

	sess, err := e.EnterStep(CampaignProcessID, "step5")
	require.NoError(t, err)
	next, err := sess.Advance(context.Background(), valid)
	require.NoError(t, err)
	assert.Equal(t, StrategiesRoute, next)
}

func TestStrategyFlowWalk(t *testing.T) {
	completer := newScriptedCompleter()
	e := newFlowEngine(t, completer)
	ctx := context.Background()

	// The caller seeds the record from a saved analysis before entering.
	e.Store().SetData(StrategyProcessID, map[string]any{
		"url":              "https://ceramics.example.com",
		"description":      "An online shop selling handmade ceramics.",
		"keywords":         []any{"handmade", "ceramics"},
		"industry":         "e-commerce",
		"originalIndustry": "e-commerce",
	})

	sess, err := e.EnterStep(StrategyProcessID, "step1")
	require.NoError(t, err)
	next, err := sess.Advance(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, StrategyRoutes(":id")[1], next)

	sess, err = e.EnterStep(StrategyProcessID, "step2")
	require.NoError(t, err)
	next, err = sess.Advance(ctx, map[string]any{"industry": "artisan e-commerce"})
	require.NoError(t, err)
	assert.Equal(t, StrategyRoutes(":id")[2], next)

	data := e.Store().Data(StrategyProcessID)
	assert.Equal(t, "Handmade Stories", data["title"])
	assert.Equal(t, "e-commerce", data["originalIndustry"])
}

func TestStrategyRoutes(t *testing.T) {
	routes := StrategyRoutes("wa123")
	assert.Equal(t, "/website-analyses/wa123/strategy/step1", routes[0])
	assert.Equal(t, "/website-analyses/wa123/strategy/step4", routes[3])
}

func TestRegistrationFlowPasswordRules(t *testing.T) {
	e := newFlowEngine(t, newScriptedCompleter())
	ctx := context.Background()

	sess, err := e.EnterStep(RegistrationProcessID, "step1")
	require.NoError(t, err)
	next, err := sess.Advance(ctx, map[string]any{"email": "anna@example.com", "role": "beneficiary"})
	require.NoError(t, err)
	assert.Equal(t, RegisterStep2Route, next)

	sess, err = e.EnterStep(RegistrationProcessID, "step2")
	require.NoError(t, err)

	_, err = sess.Advance(ctx, map[string]any{"password": "short", "confirmPassword": "short"})
	var fieldErr *wizard.FieldError
	require.ErrorAs(t, err, &fieldErr)
	assert.Equal(t, "password", fieldErr.Field)

	_, err = sess.Advance(ctx, map[string]any{"password": "secret123", "confirmPassword": "secret124"})
	require.ErrorAs(t, err, &fieldErr)
	assert.Equal(t, "confirmPassword", fieldErr.Field)

	next, err = sess.Advance(ctx, map[string]any{"password": "secret123", "confirmPassword": "secret123"})
	require.NoError(t, err)
	assert.Equal(t, RegisterStep3Route, next)

	sess, err = e.EnterStep(RegistrationProcessID, "step3")
	require.NoError(t, err)
	next, err = sess.Advance(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, LoginRoute, next)
}

func TestFlowProcessIDs(t *testing.T) {
	assert.Equal(t, CampaignProcessID, CampaignFlow().Process.ID)
	assert.Equal(t, StrategyProcessID, StrategyFlow().Process.ID)
	assert.Equal(t, RegistrationProcessID, RegistrationFlow().Process.ID)
}

func TestJoinKeywords(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"any slice", []any{"handmade", "ceramics"}, "handmade, ceramics"},
		{"string slice", []string{"handmade", "ceramics"}, "handmade, ceramics"},
		{"plain string", "handmade", "handmade"},
		{"nil", nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, joinKeywords(tt.in))
		})
	}
}

func TestAnalysisOperationValidation(t *testing.T) {
	op := WebsiteAnalysisOperation()

	assert.True(t, op.Validate(wizard.Result{
		"description": "A shop.",
		"keywords":    []any{"a"},
		"industry":    "retail",
	}))
	assert.False(t, op.Validate(wizard.Result{
		"description": "A shop.",
		"keywords":    []any{},
		"industry":    "retail",
	}))
	assert.False(t, op.Validate(wizard.Result{
		"description": "  ",
		"keywords":    []any{"a"},
		"industry":    "retail",
	}))
}
