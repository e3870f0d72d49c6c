package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/dadmor/campaignforge/internal/models"
)

// fakeStore records calls in memory and can be told to fail.
type fakeStore struct {
	analyses   map[string]models.WebsiteAnalysis
	strategies map[string]models.MarketingStrategy
	profiles   map[string]models.Profile
	nextID     int

	failAnalysis bool
	failStrategy bool
	failProfile  bool

	deletedAnalyses []string
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		analyses:   make(map[string]models.WebsiteAnalysis),
		strategies: make(map[string]models.MarketingStrategy),
		profiles:   make(map[string]models.Profile),
	}
}

func (f *fakeStore) id(prefix string) string {
	f.nextID++
	return fmt.Sprintf("%s_%d", prefix, f.nextID)
}

func (f *fakeStore) CreateWebsiteAnalysis(_ context.Context, a models.WebsiteAnalysis) (string, error) {
	if f.failAnalysis {
		return "", errors.New("analysis write failed")
	}
	id := f.id("wa")
	f.analyses[id] = a
	return id, nil
}

func (f *fakeStore) DeleteWebsiteAnalysis(_ context.Context, id string) error {
	delete(f.analyses, id)
	f.deletedAnalyses = append(f.deletedAnalyses, id)
	return nil
}

func (f *fakeStore) GetWebsiteAnalysis(_ context.Context, id string) (*models.WebsiteAnalysis, error) {
	a, ok := f.analyses[id]
	if !ok {
		return nil, nil
	}
	return &a, nil
}

func (f *fakeStore) CreateMarketingStrategy(_ context.Context, s models.MarketingStrategy) (string, error) {
	if f.failStrategy {
		return "", errors.New("strategy write failed")
	}
	id := f.id("ms")
	f.strategies[id] = s
	return id, nil
}

func (f *fakeStore) CreateProfile(_ context.Context, p models.Profile) (string, error) {
	if f.failProfile {
		return "", errors.New("profile write failed")
	}
	id := f.id("pr")
	f.profiles[id] = p
	return id, nil
}

func campaignData() map[string]any {
	return map[string]any{
		"url":                  "https://example.com",
		"description":          "An example storefront for handmade goods",
		"keywords":             []any{"handmade", "crafts"},
		"industry":             "artisan e-commerce",
		"originalIndustry":     "e-commerce",
		"title":                "Handmade Spring Launch",
		"targetAudience":       "Women aged 25-45 interested in sustainable handmade home decor and gifts",
		"budgetRecommendation": float64(3000),
		"notes":                "Start with branded search and Etsy-adjacent display, layer in Instagram and Pinterest once creative is validated, review KPIs bi-weekly.",
	}
}

func TestSaveCampaignCreatesBothRecords(t *testing.T) {
	store := newFakeStore()
	svc := NewCampaignService(store, nil, nil)

	saved, err := svc.SaveCampaign(context.Background(), campaignData())
	require.NoError(t, err)
	require.NotEmpty(t, saved.AnalysisID)
	require.NotEmpty(t, saved.StrategyID)

	analysis := store.analyses[saved.AnalysisID]
	assert.Equal(t, "https://example.com", analysis.URL)
	assert.Equal(t, []string{"handmade", "crafts"}, analysis.Keywords)
	// The analysis keeps the detected industry, not the edited one.
	assert.Equal(t, "e-commerce", analysis.Industry)

	strategy := store.strategies[saved.StrategyID]
	assert.Equal(t, saved.AnalysisID, strategy.WebsiteAnalysisID)
	assert.Equal(t, "Handmade Spring Launch", strategy.Title)
	assert.Equal(t, float64(3000), strategy.BudgetRecommendation)
	// The edit diverged from the detected industry, so it lands as an override.
	assert.Equal(t, "artisan e-commerce", strategy.IndustryOverride)
}

func TestSaveCampaignNoOverrideWhenIndustryUnchanged(t *testing.T) {
	store := newFakeStore()
	svc := NewCampaignService(store, nil, nil)

	data := campaignData()
	data["industry"] = "e-commerce"

	saved, err := svc.SaveCampaign(context.Background(), data)
	require.NoError(t, err)
	assert.Empty(t, store.strategies[saved.StrategyID].IndustryOverride)
}

func TestSaveCampaignCompensatesOnStrategyFailure(t *testing.T) {
	store := newFakeStore()
	store.failStrategy = true
	svc := NewCampaignService(store, nil, nil)

	_, err := svc.SaveCampaign(context.Background(), campaignData())
	require.Error(t, err)

	assert.Empty(t, store.analyses, "analysis should be rolled back")
	assert.Len(t, store.deletedAnalyses, 1)
}

func TestSaveCampaignRequiresURL(t *testing.T) {
	store := newFakeStore()
	svc := NewCampaignService(store, nil, nil)

	data := campaignData()
	delete(data, "url")

	_, err := svc.SaveCampaign(context.Background(), data)
	require.Error(t, err)
	assert.Empty(t, store.analyses)
}

func TestSaveStrategy(t *testing.T) {
	store := newFakeStore()
	svc := NewCampaignService(store, nil, nil)

	analysisID, err := store.CreateWebsiteAnalysis(context.Background(), models.WebsiteAnalysis{
		URL:      "https://existing.example",
		Industry: "finance",
	})
	require.NoError(t, err)

	strategyID, err := svc.SaveStrategy(context.Background(), analysisID, campaignData())
	require.NoError(t, err)
	assert.Equal(t, analysisID, store.strategies[strategyID].WebsiteAnalysisID)

	_, err = svc.SaveStrategy(context.Background(), "missing", campaignData())
	require.Error(t, err, "unknown analysis is rejected")
}

func TestRegister(t *testing.T) {
	store := newFakeStore()
	svc := NewRegistrationService(store, nil)

	id, err := svc.Register(context.Background(), map[string]any{
		"email":    "user@example.com",
		"role":     "contractor",
		"password": "secret123",
	})
	require.NoError(t, err)

	profile := store.profiles[id]
	assert.Equal(t, "user@example.com", profile.Email)
	assert.Equal(t, "contractor", profile.Role)
	assert.NotEqual(t, "secret123", profile.PasswordHash, "password must be hashed")
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(profile.PasswordHash), []byte("secret123")))
}

func TestRegisterRejectsBadInput(t *testing.T) {
	store := newFakeStore()
	svc := NewRegistrationService(store, nil)
	ctx := context.Background()

	cases := []struct {
		name string
		data map[string]any
	}{
		{"bad email", map[string]any{"email": "nope", "role": "auditor", "password": "secret123"}},
		{"bad role", map[string]any{"email": "a@b.com", "role": "admin", "password": "secret123"}},
		{"short password", map[string]any{"email": "a@b.com", "role": "auditor", "password": "short"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Register(ctx, tc.data)
			assert.Error(t, err)
		})
	}
	assert.Empty(t, store.profiles)
}
