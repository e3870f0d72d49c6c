package db

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/surrealdb/surrealdb.go"

	"github.com/dadmor/campaignforge/internal/models"
)

var identRe = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// ListOptions shape a resource list query.
type ListOptions struct {
	// Filter matches fields by equality. Keys must be plain
	// identifiers; anything else fails the query.
	Filter map[string]any

	SortField string
	SortDesc  bool

	Limit  int
	Offset int
}

// knownResource guards against query injection through the resource
// segment of API paths.
func knownResource(resource string) bool {
	for _, r := range Resources {
		if r == resource {
			return true
		}
	}
	return false
}

// buildWhere renders the filter clause and its bind variables.
func buildWhere(filter map[string]any) (string, map[string]any, error) {
	if len(filter) == 0 {
		return "", map[string]any{}, nil
	}
	clauses := make([]string, 0, len(filter))
	vars := make(map[string]any, len(filter))
	for field, value := range filter {
		if !identRe.MatchString(field) {
			return "", nil, fmt.Errorf("invalid filter field %q", field)
		}
		clauses = append(clauses, fmt.Sprintf("%s = $f_%s", field, field))
		vars["f_"+field] = value
	}
	return " WHERE " + strings.Join(clauses, " AND "), vars, nil
}

// List returns one page of a resource plus the unpaginated total.
func (c *Client) List(ctx context.Context, resource string, opts ListOptions) ([]map[string]any, int, error) {
	if !knownResource(resource) {
		return nil, 0, fmt.Errorf("unknown resource %q", resource)
	}

	where, vars, err := buildWhere(opts.Filter)
	if err != nil {
		return nil, 0, err
	}

	sql := "SELECT * FROM " + resource + where
	if opts.SortField != "" {
		if !identRe.MatchString(opts.SortField) {
			return nil, 0, fmt.Errorf("invalid sort field %q", opts.SortField)
		}
		sql += " ORDER BY " + opts.SortField
		if opts.SortDesc {
			sql += " DESC"
		}
	}
	if opts.Limit > 0 {
		sql += fmt.Sprintf(" LIMIT %d START %d", opts.Limit, max(opts.Offset, 0))
	}

	rows, err := surrealdb.Query[[]map[string]any](ctx, c.db, sql, vars)
	if err != nil {
		return nil, 0, fmt.Errorf("list %s: %w", resource, err)
	}

	var records []map[string]any
	if rows != nil && len(*rows) > 0 {
		records = (*rows)[0].Result
	}

	countSQL := "SELECT count() AS count FROM " + resource + where + " GROUP ALL"
	counts, err := surrealdb.Query[[]map[string]any](ctx, c.db, countSQL, vars)
	if err != nil {
		return nil, 0, fmt.Errorf("count %s: %w", resource, err)
	}
	total := 0
	if counts != nil && len(*counts) > 0 && len((*counts)[0].Result) > 0 {
		if n, ok := asInt((*counts)[0].Result[0]["count"]); ok {
			total = n
		}
	}
	return records, total, nil
}

// Get retrieves one record by id, nil when not found.
func (c *Client) Get(ctx context.Context, resource, id string) (map[string]any, error) {
	if !knownResource(resource) {
		return nil, fmt.Errorf("unknown resource %q", resource)
	}
	rows, err := surrealdb.Query[[]map[string]any](ctx, c.db,
		fmt.Sprintf(`SELECT * FROM type::record("%s", $id)`, resource),
		map[string]any{"id": id})
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", resource, err)
	}
	if rows == nil || len(*rows) == 0 || len((*rows)[0].Result) == 0 {
		return nil, nil
	}
	return (*rows)[0].Result[0], nil
}

// Create inserts a record and returns it, id included.
func (c *Client) Create(ctx context.Context, resource string, values map[string]any) (map[string]any, error) {
	if !knownResource(resource) {
		return nil, fmt.Errorf("unknown resource %q", resource)
	}
	rows, err := surrealdb.Query[[]map[string]any](ctx, c.db,
		"CREATE "+resource+" CONTENT $content",
		map[string]any{"content": values})
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", resource, err)
	}
	if rows == nil || len(*rows) == 0 || len((*rows)[0].Result) == 0 {
		return nil, fmt.Errorf("create %s: empty result", resource)
	}
	return (*rows)[0].Result[0], nil
}

// Update merges values into an existing record and returns the result.
func (c *Client) Update(ctx context.Context, resource, id string, values map[string]any) (map[string]any, error) {
	if !knownResource(resource) {
		return nil, fmt.Errorf("unknown resource %q", resource)
	}
	rows, err := surrealdb.Query[[]map[string]any](ctx, c.db,
		fmt.Sprintf(`UPDATE type::record("%s", $id) MERGE $values`, resource),
		map[string]any{"id": id, "values": values})
	if err != nil {
		return nil, fmt.Errorf("update %s: %w", resource, err)
	}
	if rows == nil || len(*rows) == 0 || len((*rows)[0].Result) == 0 {
		return nil, fmt.Errorf("update %s: record %q not found", resource, id)
	}
	return (*rows)[0].Result[0], nil
}

// Delete removes a record by id.
func (c *Client) Delete(ctx context.Context, resource, id string) error {
	if !knownResource(resource) {
		return fmt.Errorf("unknown resource %q", resource)
	}
	_, err := surrealdb.Query[any](ctx, c.db,
		fmt.Sprintf(`DELETE type::record("%s", $id)`, resource),
		map[string]any{"id": id})
	if err != nil {
		return fmt.Errorf("delete %s: %w", resource, err)
	}
	return nil
}

// CreateWebsiteAnalysis stores an analysis and returns its id.
func (c *Client) CreateWebsiteAnalysis(ctx context.Context, a models.WebsiteAnalysis) (string, error) {
	rows, err := surrealdb.Query[[]models.WebsiteAnalysis](ctx, c.db,
		"CREATE website_analysis CONTENT $content",
		map[string]any{"content": map[string]any{
			"url":         a.URL,
			"description": a.Description,
			"keywords":    a.Keywords,
			"industry":    a.Industry,
		}})
	if err != nil {
		return "", fmt.Errorf("create website analysis: %w", err)
	}
	if rows == nil || len(*rows) == 0 || len((*rows)[0].Result) == 0 {
		return "", fmt.Errorf("create website analysis: empty result")
	}
	return models.RecordIDString((*rows)[0].Result[0].ID)
}

// GetWebsiteAnalysis retrieves an analysis by id, nil when not found.
func (c *Client) GetWebsiteAnalysis(ctx context.Context, id string) (*models.WebsiteAnalysis, error) {
	rows, err := surrealdb.Query[[]models.WebsiteAnalysis](ctx, c.db,
		`SELECT * FROM type::record("website_analysis", $id)`,
		map[string]any{"id": id})
	if err != nil {
		return nil, fmt.Errorf("get website analysis: %w", err)
	}
	if rows == nil || len(*rows) == 0 || len((*rows)[0].Result) == 0 {
		return nil, nil
	}
	return &(*rows)[0].Result[0], nil
}

// DeleteWebsiteAnalysis removes an analysis by id.
func (c *Client) DeleteWebsiteAnalysis(ctx context.Context, id string) error {
	return c.Delete(ctx, "website_analysis", id)
}

// CreateMarketingStrategy stores a strategy and returns its id.
func (c *Client) CreateMarketingStrategy(ctx context.Context, s models.MarketingStrategy) (string, error) {
	rows, err := surrealdb.Query[[]models.MarketingStrategy](ctx, c.db,
		"CREATE marketing_strategy CONTENT $content",
		map[string]any{"content": map[string]any{
			"website_analysis_id":   s.WebsiteAnalysisID,
			"title":                 s.Title,
			"target_audience":       s.TargetAudience,
			"budget_recommendation": s.BudgetRecommendation,
			"notes":                 s.Notes,
			"industry_override":     s.IndustryOverride,
		}})
	if err != nil {
		return "", fmt.Errorf("create marketing strategy: %w", err)
	}
	if rows == nil || len(*rows) == 0 || len((*rows)[0].Result) == 0 {
		return "", fmt.Errorf("create marketing strategy: empty result")
	}
	return models.RecordIDString((*rows)[0].Result[0].ID)
}

// CreateProfile stores a profile and returns its id.
func (c *Client) CreateProfile(ctx context.Context, p models.Profile) (string, error) {
	rows, err := surrealdb.Query[[]models.Profile](ctx, c.db,
		"CREATE profile CONTENT $content",
		map[string]any{"content": map[string]any{
			"email":         p.Email,
			"role":          p.Role,
			"operator_id":   p.OperatorID,
			"password_hash": p.PasswordHash,
		}})
	if err != nil {
		return "", fmt.Errorf("create profile: %w", err)
	}
	if rows == nil || len(*rows) == 0 || len((*rows)[0].Result) == 0 {
		return "", fmt.Errorf("create profile: empty result")
	}
	return models.RecordIDString((*rows)[0].Result[0].ID)
}

func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case uint64:
		return int(n), true
	case float64:
		return int(n), true
	default:
		return 0, false
	}
}
