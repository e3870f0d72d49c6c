package db

import (
	"context"
	"fmt"

	"github.com/surrealdb/surrealdb.go"

	"github.com/dadmor/campaignforge/internal/models"
	"github.com/dadmor/campaignforge/internal/wizard"
)

// DraftStore persists wizard drafts in the wizard_draft table, one
// record per process id.
type DraftStore struct {
	client *Client
}

var _ wizard.DraftStore = (*DraftStore)(nil)

// NewDraftStore wraps a client as a wizard draft adapter.
func NewDraftStore(client *Client) *DraftStore {
	return &DraftStore{client: client}
}

// SaveDraft upserts the accumulated answers for a process.
func (d *DraftStore) SaveDraft(ctx context.Context, processID string, data map[string]any) error {
	_, err := surrealdb.Query[any](ctx, d.client.db,
		`UPSERT type::record("wizard_draft", $pid) SET process_id = $pid, data = $data, updated = time::now()`,
		map[string]any{"pid": processID, "data": data})
	if err != nil {
		return fmt.Errorf("save draft %s: %w", processID, err)
	}
	return nil
}

// LoadDraft returns the saved answers for a process, nil when no draft
// exists.
func (d *DraftStore) LoadDraft(ctx context.Context, processID string) (map[string]any, error) {
	rows, err := surrealdb.Query[[]models.WizardDraft](ctx, d.client.db,
		`SELECT * FROM type::record("wizard_draft", $pid)`,
		map[string]any{"pid": processID})
	if err != nil {
		return nil, fmt.Errorf("load draft %s: %w", processID, err)
	}
	if rows == nil || len(*rows) == 0 || len((*rows)[0].Result) == 0 {
		return nil, nil
	}
	return (*rows)[0].Result[0].Data, nil
}

// DeleteDraft removes the saved answers for a process.
func (d *DraftStore) DeleteDraft(ctx context.Context, processID string) error {
	_, err := surrealdb.Query[any](ctx, d.client.db,
		`DELETE type::record("wizard_draft", $pid)`,
		map[string]any{"pid": processID})
	if err != nil {
		return fmt.Errorf("delete draft %s: %w", processID, err)
	}
	return nil
}
