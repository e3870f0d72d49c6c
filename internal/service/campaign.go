// Package service provides business logic for campaignforge operations.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dadmor/campaignforge/internal/metrics"
	"github.com/dadmor/campaignforge/internal/models"
)

// RecordStore is the persistence surface the wizard services need.
// *db.Client satisfies it; tests substitute fakes.
type RecordStore interface {
	CreateWebsiteAnalysis(ctx context.Context, a models.WebsiteAnalysis) (string, error)
	DeleteWebsiteAnalysis(ctx context.Context, id string) error
	GetWebsiteAnalysis(ctx context.Context, id string) (*models.WebsiteAnalysis, error)
	CreateMarketingStrategy(ctx context.Context, s models.MarketingStrategy) (string, error)
	CreateProfile(ctx context.Context, p models.Profile) (string, error)
}

// SavedCampaign identifies the records a finished campaign wizard produced.
type SavedCampaign struct {
	AnalysisID string
	StrategyID string
}

// CampaignService persists finished wizard runs.
type CampaignService struct {
	store     RecordStore
	logger    *slog.Logger
	collector *metrics.Collector
}

// NewCampaignService creates a campaign service.
func NewCampaignService(store RecordStore, logger *slog.Logger, collector *metrics.Collector) *CampaignService {
	if logger == nil {
		logger = slog.Default()
	}
	return &CampaignService{store: store, logger: logger, collector: collector}
}

// SaveCampaign turns the accumulated campaign-wizard record into a
// website analysis plus a marketing strategy referencing it. The two
// writes are not atomic; when the strategy write fails the analysis is
// deleted again so a retry starts clean instead of piling up orphans.
func (s *CampaignService) SaveCampaign(ctx context.Context, data map[string]any) (SavedCampaign, error) {
	start := time.Now()

	analysis := models.WebsiteAnalysis{
		URL:         asString(data["url"]),
		Description: asString(data["description"]),
		Keywords:    asStringSlice(data["keywords"]),
		Industry:    analysisIndustry(data),
	}
	if analysis.URL == "" {
		return SavedCampaign{}, fmt.Errorf("save campaign: missing url")
	}

	analysisID, err := s.store.CreateWebsiteAnalysis(ctx, analysis)
	if err != nil {
		s.observe(start, err)
		return SavedCampaign{}, fmt.Errorf("save campaign: %w", err)
	}

	strategyID, err := s.createStrategy(ctx, analysisID, data)
	if err != nil {
		// Compensate so the analysis does not outlive its strategy.
		if delErr := s.store.DeleteWebsiteAnalysis(ctx, analysisID); delErr != nil {
			s.logger.Error("compensating delete failed",
				"analysis_id", analysisID, "error", delErr)
		}
		s.observe(start, err)
		return SavedCampaign{}, fmt.Errorf("save campaign: %w", err)
	}

	s.observe(start, nil)
	s.logger.Info("campaign saved",
		"analysis_id", analysisID, "strategy_id", strategyID)
	return SavedCampaign{AnalysisID: analysisID, StrategyID: strategyID}, nil
}

// SaveStrategy persists a strategy-wizard run against an analysis that
// already exists.
func (s *CampaignService) SaveStrategy(ctx context.Context, analysisID string, data map[string]any) (string, error) {
	start := time.Now()

	existing, err := s.store.GetWebsiteAnalysis(ctx, analysisID)
	if err != nil {
		s.observe(start, err)
		return "", fmt.Errorf("save strategy: %w", err)
	}
	if existing == nil {
		err = fmt.Errorf("save strategy: analysis %q not found", analysisID)
		s.observe(start, err)
		return "", err
	}

	strategyID, err := s.createStrategy(ctx, analysisID, data)
	if err != nil {
		s.observe(start, err)
		return "", fmt.Errorf("save strategy: %w", err)
	}

	s.observe(start, nil)
	s.logger.Info("strategy saved",
		"analysis_id", analysisID, "strategy_id", strategyID)
	return strategyID, nil
}

func (s *CampaignService) createStrategy(ctx context.Context, analysisID string, data map[string]any) (string, error) {
	budget, _ := asNumber(data["budgetRecommendation"])
	return s.store.CreateMarketingStrategy(ctx, models.MarketingStrategy{
		WebsiteAnalysisID:    analysisID,
		Title:                asString(data["title"]),
		TargetAudience:       asString(data["targetAudience"]),
		BudgetRecommendation: budget,
		Notes:                asString(data["notes"]),
		IndustryOverride:     industryOverride(data),
	})
}

func (s *CampaignService) observe(start time.Time, err error) {
	if s.collector != nil {
		s.collector.RecordOutcome(metrics.OpWizardSave, time.Since(start), err)
	}
}

// analysisIndustry returns the industry the analysis record keeps: the
// detected one when available, the edited one otherwise.
func analysisIndustry(data map[string]any) string {
	if orig := asString(data["originalIndustry"]); orig != "" {
		return orig
	}
	return asString(data["industry"])
}

// industryOverride returns the edited industry when it diverges from the
// detected one, empty otherwise.
func industryOverride(data map[string]any) string {
	industry := asString(data["industry"])
	original := asString(data["originalIndustry"])
	if original != "" && industry != original {
		return industry
	}
	return ""
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func asNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

func asStringSlice(v any) []string {
	switch vals := v.(type) {
	case []string:
		return vals
	case []any:
		out := make([]string, 0, len(vals))
		for _, item := range vals {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}
