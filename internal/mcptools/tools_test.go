package mcptools

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dadmor/campaignforge/internal/db"
	"github.com/dadmor/campaignforge/internal/flows"
	"github.com/dadmor/campaignforge/internal/models"
	"github.com/dadmor/campaignforge/internal/service"
	"github.com/dadmor/campaignforge/internal/wizard"
)

// fakeCompleter returns a canned completion.
type fakeCompleter struct {
	response string
	err      error
}

func (f *fakeCompleter) Complete(context.Context, wizard.CompletionRequest) (string, error) {
	return f.response, f.err
}

// fakeRecords is an in-memory service.RecordStore.
type fakeRecords struct {
	analyses   map[string]models.WebsiteAnalysis
	strategies map[string]models.MarketingStrategy
	nextID     int
}

func newFakeRecords() *fakeRecords {
	return &fakeRecords{
		analyses:   make(map[string]models.WebsiteAnalysis),
		strategies: make(map[string]models.MarketingStrategy),
	}
}

func (f *fakeRecords) CreateWebsiteAnalysis(_ context.Context, a models.WebsiteAnalysis) (string, error) {
	f.nextID++
	id := fmt.Sprintf("wa_%d", f.nextID)
	f.analyses[id] = a
	return id, nil
}

func (f *fakeRecords) DeleteWebsiteAnalysis(_ context.Context, id string) error {
	delete(f.analyses, id)
	return nil
}

func (f *fakeRecords) GetWebsiteAnalysis(_ context.Context, id string) (*models.WebsiteAnalysis, error) {
	a, ok := f.analyses[id]
	if !ok {
		return nil, nil
	}
	return &a, nil
}

func (f *fakeRecords) CreateMarketingStrategy(_ context.Context, s models.MarketingStrategy) (string, error) {
	f.nextID++
	id := fmt.Sprintf("ms_%d", f.nextID)
	f.strategies[id] = s
	return id, nil
}

func (f *fakeRecords) CreateProfile(_ context.Context, p models.Profile) (string, error) {
	f.nextID++
	return fmt.Sprintf("pr_%d", f.nextID), nil
}

// fakeData is an in-memory DataAPI.
type fakeData struct {
	records map[string][]map[string]any
}

func (f *fakeData) List(_ context.Context, resource string, opts db.ListOptions) ([]map[string]any, int, error) {
	if f.records[resource] == nil {
		return nil, 0, fmt.Errorf("unknown resource %q", resource)
	}
	return f.records[resource], len(f.records[resource]), nil
}

func (f *fakeData) Get(_ context.Context, resource, id string) (map[string]any, error) {
	for _, rec := range f.records[resource] {
		if rec["id"] == id {
			return rec, nil
		}
	}
	return nil, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
}

func testDeps(t *testing.T, completer wizard.Completer) (*Dependencies, *fakeRecords) {
	t.Helper()

	engine := wizard.NewEngine(wizard.NewRegistry(), wizard.NewStore(), completer, testLogger())
	require.NoError(t, engine.RegisterFlow(flows.CampaignFlow()))
	require.NoError(t, engine.RegisterFlow(flows.RegistrationFlow()))

	records := newFakeRecords()
	return &Dependencies{
		Engine:    engine,
		Completer: completer,
		Campaigns: service.NewCampaignService(records, testLogger(), nil),
		Data: &fakeData{records: map[string][]map[string]any{
			"website_analysis": {
				{"id": "wa_1", "url": "https://a.example", "industry": "retail"},
			},
		}},
		Logger: testLogger(),
	}, records
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, res.Content)
	text, ok := res.Content[0].(*mcp.TextContent)
	require.True(t, ok)
	return text.Text
}

func TestAnalyzeWebsiteTool(t *testing.T) {
	deps, _ := testDeps(t, &fakeCompleter{
		response: `{"description":"A cosy cafe in Krakow","keywords":["cafe","coffee"],"industry":"gastronomy"}`,
	})
	handler := NewAnalyzeWebsiteHandler(deps)

	res, _, err := handler(context.Background(), nil, AnalyzeWebsiteInput{URL: "https://cafe.example"})
	require.NoError(t, err)
	require.False(t, res.IsError)

	var out map[string]any
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &out))
	assert.Equal(t, "gastronomy", out["industry"])
}

func TestAnalyzeWebsiteToolRejectsBadURL(t *testing.T) {
	deps, _ := testDeps(t, &fakeCompleter{})
	handler := NewAnalyzeWebsiteHandler(deps)

	res, _, err := handler(context.Background(), nil, AnalyzeWebsiteInput{URL: "ftp://nope"})
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestAnalyzeWebsiteToolUpstreamError(t *testing.T) {
	deps, _ := testDeps(t, &fakeCompleter{err: fmt.Errorf("connection refused")})
	handler := NewAnalyzeWebsiteHandler(deps)

	res, _, err := handler(context.Background(), nil, AnalyzeWebsiteInput{URL: "https://cafe.example"})
	require.NoError(t, err, "upstream failures surface as tool errors, not protocol errors")
	assert.True(t, res.IsError)
}

func TestGenerateCampaignTool(t *testing.T) {
	deps, _ := testDeps(t, &fakeCompleter{
		response: `{"title":"Cafe Mornings","targetAudience":"Students and remote workers near the old town","budgetRecommendation":1500,"notes":"Local SEO plus Instagram reels."}`,
	})
	handler := NewGenerateCampaignHandler(deps)

	res, _, err := handler(context.Background(), nil, GenerateCampaignInput{
		URL:         "https://cafe.example",
		Description: "A cosy cafe in Krakow",
		Keywords:    []string{"cafe"},
		Industry:    "gastronomy",
	})
	require.NoError(t, err)
	require.False(t, res.IsError, resultText(t, res))

	var out map[string]any
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &out))
	assert.Equal(t, "Cafe Mornings", out["title"])
}

func TestSaveCampaignTool(t *testing.T) {
	deps, records := testDeps(t, &fakeCompleter{})
	handler := NewSaveCampaignHandler(deps)

	res, _, err := handler(context.Background(), nil, SaveCampaignInput{
		URL:                  "https://cafe.example",
		Description:          "A cosy cafe in Krakow",
		Keywords:             []string{"cafe"},
		Industry:             "specialty coffee",
		OriginalIndustry:     "gastronomy",
		Title:                "Cafe Mornings",
		TargetAudience:       "Students and remote workers who sit down with a laptop for hours",
		BudgetRecommendation: 1500,
		Notes:                "Local SEO plus Instagram reels, partnership with nearby coworking spaces, weekly newsletter for regulars.",
	})
	require.NoError(t, err)
	require.False(t, res.IsError, resultText(t, res))

	assert.Len(t, records.analyses, 1)
	assert.Len(t, records.strategies, 1)
	for _, s := range records.strategies {
		assert.Equal(t, "specialty coffee", s.IndustryOverride)
	}
}

func TestAdvanceWizardTool(t *testing.T) {
	deps, _ := testDeps(t, &fakeCompleter{
		response: `{"description":"A cosy cafe","keywords":["cafe"],"industry":"gastronomy"}`,
	})
	handler := NewAdvanceWizardHandler(deps)

	res, _, err := handler(context.Background(), nil, AdvanceWizardInput{
		Process: flows.CampaignProcessID,
		Step:    "step1",
		Edits:   map[string]any{"url": "https://cafe.example"},
	})
	require.NoError(t, err)
	require.False(t, res.IsError, resultText(t, res))

	var out struct {
		NextRoute string         `json:"nextRoute"`
		Data      map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &out))
	assert.Equal(t, flows.CampaignStep2Route, out.NextRoute)
	assert.Equal(t, "gastronomy", out.Data["originalIndustry"])

	// Missing required field reports a tool error, not a protocol error.
	res, _, err = handler(context.Background(), nil, AdvanceWizardInput{
		Process: flows.CampaignProcessID,
		Step:    "step1",
	})
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestWizardDataTool(t *testing.T) {
	deps, _ := testDeps(t, &fakeCompleter{})
	handler := NewWizardDataHandler(deps)

	res, _, err := handler(context.Background(), nil, WizardDataInput{Process: flows.CampaignProcessID})
	require.NoError(t, err)
	assert.False(t, res.IsError)

	res, _, err = handler(context.Background(), nil, WizardDataInput{Process: "nope"})
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestListAndGetRecordTools(t *testing.T) {
	deps, _ := testDeps(t, &fakeCompleter{})

	list := NewListRecordsHandler(deps)
	res, _, err := list(context.Background(), nil, ListRecordsInput{Resource: "website_analysis"})
	require.NoError(t, err)
	require.False(t, res.IsError)

	var out struct {
		Total int `json:"total"`
	}
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &out))
	assert.Equal(t, 1, out.Total)

	get := NewGetRecordHandler(deps)
	res, _, err = get(context.Background(), nil, GetRecordInput{Resource: "website_analysis", ID: "wa_1"})
	require.NoError(t, err)
	assert.False(t, res.IsError)

	res, _, err = get(context.Background(), nil, GetRecordInput{Resource: "website_analysis", ID: "missing"})
	require.NoError(t, err)
	assert.True(t, res.IsError)
}
