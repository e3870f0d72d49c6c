// Package models defines the record types stored by campaignforge.
package models

import (
	"time"

	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"
)

// WebsiteAnalysis is the AI-generated profile of a website.
type WebsiteAnalysis struct {
	ID          surrealmodels.RecordID `json:"id,omitempty"`
	URL         string                 `json:"url"`
	Description string                 `json:"description"`
	Keywords    []string               `json:"keywords"`
	Industry    string                 `json:"industry"`
	Created     time.Time              `json:"created,omitempty"`
}

// MarketingStrategy is a campaign strategy derived from an analysis.
type MarketingStrategy struct {
	ID                   surrealmodels.RecordID `json:"id,omitempty"`
	WebsiteAnalysisID    string                 `json:"website_analysis_id"`
	Title                string                 `json:"title"`
	TargetAudience       string                 `json:"target_audience"`
	BudgetRecommendation float64                `json:"budget_recommendation"`
	Notes                string                 `json:"notes"`
	IndustryOverride     string                 `json:"industry_override,omitempty"`
	Created              time.Time              `json:"created,omitempty"`
}

// GoogleAdsCampaign is a campaign draft targeting Google Ads.
type GoogleAdsCampaign struct {
	ID                  surrealmodels.RecordID `json:"id,omitempty"`
	MarketingStrategyID string                 `json:"marketing_strategy_id,omitempty"`
	Name                string                 `json:"name"`
	Headlines           []string               `json:"headlines,omitempty"`
	Descriptions        []string               `json:"descriptions,omitempty"`
	Keywords            []string               `json:"keywords,omitempty"`
	DailyBudget         float64                `json:"daily_budget,omitempty"`
	Status              string                 `json:"status,omitempty"`
	Created             time.Time              `json:"created,omitempty"`
}

// BlogPost is a content-marketing article.
type BlogPost struct {
	ID         surrealmodels.RecordID `json:"id,omitempty"`
	Title      string                 `json:"title"`
	Slug       string                 `json:"slug"`
	Content    string                 `json:"content"`
	CategoryID string                 `json:"category_id,omitempty"`
	Status     string                 `json:"status,omitempty"`
	Created    time.Time              `json:"created,omitempty"`
}

// Category groups blog posts.
type Category struct {
	ID          surrealmodels.RecordID `json:"id,omitempty"`
	Name        string                 `json:"name"`
	Slug        string                 `json:"slug"`
	Description string                 `json:"description,omitempty"`
}

// Profile is a registered user account.
type Profile struct {
	ID           surrealmodels.RecordID `json:"id,omitempty"`
	Email        string                 `json:"email"`
	Role         string                 `json:"role"`
	OperatorID   string                 `json:"operator_id,omitempty"`
	PasswordHash string                 `json:"password_hash,omitempty"`
	Created      time.Time              `json:"created,omitempty"`
}

// WizardDraft persists in-progress wizard answers.
type WizardDraft struct {
	ID        surrealmodels.RecordID `json:"id,omitempty"`
	ProcessID string                 `json:"process_id"`
	Data      map[string]any         `json:"data"`
	Updated   time.Time              `json:"updated,omitempty"`
}
