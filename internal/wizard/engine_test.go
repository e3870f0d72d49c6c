package wizard

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memDrafts is an in-memory DraftStore for engine tests.
type memDrafts struct {
	mu       sync.Mutex
	drafts   map[string]map[string]any
	saves    int
	failSave bool
}

func newMemDrafts() *memDrafts {
	return &memDrafts{drafts: make(map[string]map[string]any)}
}

func (d *memDrafts) SaveDraft(ctx context.Context, processID string, data map[string]any) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.failSave {
		return errors.New("draft store unavailable")
	}
	d.saves++
	d.drafts[processID] = data
	return nil
}

func (d *memDrafts) LoadDraft(ctx context.Context, processID string) (map[string]any, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.drafts[processID], nil
}

func (d *memDrafts) DeleteDraft(ctx context.Context, processID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.drafts, processID)
	return nil
}

func testFlow() Flow {
	op := analysisOperation()
	return Flow{
		Process: Process{
			ID:    "campaign-wizard",
			Title: "Campaign Wizard",
			Steps: map[string]Step{
				"step1": {
					Title: "Website",
					Fields: map[string]Field{
						"url": {Type: FieldURL, Title: "Website URL"},
					},
					Required: []string{"url"},
				},
				"step2": {
					Title: "Industry",
					Fields: map[string]Field{
						"industry": {Type: FieldText, Title: "Industry"},
					},
					Required: []string{"industry"},
					Validate: func(data map[string]any) error {
						if data["industry"] == "forbidden" {
							return errors.New("industry not supported")
						}
						return nil
					},
				},
			},
			StepOrder: []string{"step1", "step2"},
		},
		Steps: []FlowStep{
			{Key: "step1", Route: "/campaign/step-1", Operation: &op},
			{Key: "step2", Route: "/campaign/step-2"},
		},
		FinishRoute: "/campaigns",
	}
}

func newTestEngine(t *testing.T, completer Completer, opts ...EngineOption) *Engine {
	t.Helper()
	e := NewEngine(NewRegistry(), NewStore(), completer, nil, opts...)
	require.NoError(t, e.RegisterFlow(testFlow()))
	return e
}

func TestEngineRegisterFlowValidation(t *testing.T) {
	e := NewEngine(NewRegistry(), NewStore(), &stubCompleter{}, nil)

	err := e.RegisterFlow(Flow{Process: Process{ID: "empty"}})
	assert.ErrorContains(t, err, "no steps")

	err = e.RegisterFlow(Flow{
		Process: Process{ID: "broken", Steps: map[string]Step{"a": {}}},
		Steps:   []FlowStep{{Key: "missing", Route: "/x"}},
	})
	assert.ErrorContains(t, err, `step "missing" not in schema`)
}

func TestEngineRegisterFlowIdempotent(t *testing.T) {
	e := NewEngine(NewRegistry(), NewStore(), &stubCompleter{}, nil)

	require.NoError(t, e.RegisterFlow(testFlow()))
	require.NoError(t, e.RegisterFlow(testFlow()))

	assert.Equal(t, 1, e.Registry().Len())
}

func TestEngineEnterStep(t *testing.T) {
	e := newTestEngine(t, &stubCompleter{})

	sess, err := e.EnterStep("campaign-wizard", "step1")
	require.NoError(t, err)
	assert.Equal(t, "campaign-wizard", sess.ProcessID())
	assert.Equal(t, "step1", sess.StepKey())
	assert.Equal(t, "/campaign/step-1", sess.Route())
	assert.Equal(t, "Website", sess.Schema().Title)
	assert.False(t, sess.Loading())

	_, err = e.EnterStep("campaign-wizard", "step9")
	assert.ErrorContains(t, err, `unknown step "step9"`)

	_, err = e.EnterStep("other-wizard", "step1")
	assert.ErrorContains(t, err, `unknown process "other-wizard"`)
}

func TestEngineEnterStepIdempotent(t *testing.T) {
	e := newTestEngine(t, &stubCompleter{})

	first, err := e.EnterStep("campaign-wizard", "step1")
	require.NoError(t, err)
	again, err := e.EnterStep("campaign-wizard", "step1")
	require.NoError(t, err)

	// Re-entry reuses the executor instead of building a new call site.
	assert.Same(t, first.executor, again.executor)
}

func TestEngineEnterDifferentStepReplacesExecutor(t *testing.T) {
	e := newTestEngine(t, &stubCompleter{})

	first, err := e.EnterStep("campaign-wizard", "step1")
	require.NoError(t, err)
	second, err := e.EnterStep("campaign-wizard", "step2")
	require.NoError(t, err)

	assert.NotSame(t, first.executor, second.executor)

	// The old step's operation is gone with its executor.
	_, err = first.executor.Execute(context.Background(), nil)
	assert.ErrorIs(t, err, ErrNoOperation)
}

func TestAdvanceRequiredGate(t *testing.T) {
	e := newTestEngine(t, &stubCompleter{})

	sess, err := e.EnterStep("campaign-wizard", "step1")
	require.NoError(t, err)

	_, err = sess.Advance(context.Background(), map[string]any{"url": "   "})

	var fieldErr *FieldError
	require.ErrorAs(t, err, &fieldErr)
	assert.Equal(t, "url", fieldErr.Field)

	// Nothing was merged and no completion ran.
	assert.Empty(t, e.Store().Data("campaign-wizard"))
}

func TestAdvanceRunsOperationAndRoutes(t *testing.T) {
	completer := &stubCompleter{
		response: `{"description": "Handmade goods shop", "industry": "e-commerce"}`,
	}
	e := newTestEngine(t, completer)

	sess, err := e.EnterStep("campaign-wizard", "step1")
	require.NoError(t, err)

	next, err := sess.Advance(context.Background(), map[string]any{"url": "https://example.com"})
	require.NoError(t, err)
	assert.Equal(t, "/campaign/step-2", next)

	data := e.Store().Data("campaign-wizard")
	assert.Equal(t, "https://example.com", data["url"])
	assert.Equal(t, "Handmade goods shop", data["description"])
	assert.Equal(t, "e-commerce", data["industry"])

	// Edits landed before the operation ran.
	assert.Contains(t, completer.lastReq.User, "https://example.com")
}

func TestAdvanceOperationFailureKeepsEdits(t *testing.T) {
	completer := &stubCompleter{err: errors.New("connection refused")}
	e := newTestEngine(t, completer)

	sess, err := e.EnterStep("campaign-wizard", "step1")
	require.NoError(t, err)

	_, err = sess.Advance(context.Background(), map[string]any{"url": "https://example.com"})

	var reqErr *RequestError
	require.ErrorAs(t, err, &reqErr)

	// The caller stays on the step; its edits survive for the retry.
	assert.Equal(t, "https://example.com", e.Store().Data("campaign-wizard")["url"])
	assert.Error(t, sess.Err())

	// Manual retry after the service recovers.
	completer.err = nil
	completer.response = `{"description": "A shop", "industry": "retail"}`
	next, err := sess.Advance(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "/campaign/step-2", next)
}

func TestAdvanceCrossFieldValidation(t *testing.T) {
	e := newTestEngine(t, &stubCompleter{})

	sess, err := e.EnterStep("campaign-wizard", "step2")
	require.NoError(t, err)

	_, err = sess.Advance(context.Background(), map[string]any{"industry": "forbidden"})
	assert.ErrorContains(t, err, "industry not supported")
	assert.Empty(t, e.Store().Data("campaign-wizard"))
}

func TestAdvanceFinalStepReturnsFinishRoute(t *testing.T) {
	e := newTestEngine(t, &stubCompleter{})

	sess, err := e.EnterStep("campaign-wizard", "step2")
	require.NoError(t, err)

	next, err := sess.Advance(context.Background(), map[string]any{"industry": "retail"})
	require.NoError(t, err)
	assert.Equal(t, "/campaigns", next)
}

func TestAdvanceSavesDraft(t *testing.T) {
	drafts := newMemDrafts()
	e := NewEngine(NewRegistry(), NewStore(), &stubCompleter{}, nil, WithDrafts(drafts))
	require.NoError(t, e.RegisterFlow(testFlow()))

	sess, err := e.EnterStep("campaign-wizard", "step2")
	require.NoError(t, err)

	_, err = sess.Advance(context.Background(), map[string]any{"industry": "retail"})
	require.NoError(t, err)

	saved, err := drafts.LoadDraft(context.Background(), "campaign-wizard")
	require.NoError(t, err)
	assert.Equal(t, "retail", saved["industry"])
}

func TestAdvanceReportsDraftSaveOutcome(t *testing.T) {
	drafts := newMemDrafts()

	type observation struct {
		op  string
		err error
	}
	var seen []observation
	e := NewEngine(NewRegistry(), NewStore(), &stubCompleter{}, nil,
		WithDrafts(drafts),
		WithObserver(func(op string, _ time.Duration, err error) {
			seen = append(seen, observation{op: op, err: err})
		}))
	require.NoError(t, e.RegisterFlow(testFlow()))

	sess, err := e.EnterStep("campaign-wizard", "step2")
	require.NoError(t, err)
	_, err = sess.Advance(context.Background(), map[string]any{"industry": "retail"})
	require.NoError(t, err)

	require.Len(t, seen, 1)
	assert.Equal(t, DraftSaveOp, seen[0].op)
	assert.NoError(t, seen[0].err)

	// A failing draft store is reported but never blocks the advance.
	drafts.failSave = true
	next, err := sess.Advance(context.Background(), map[string]any{"industry": "fashion"})
	require.NoError(t, err)
	assert.Equal(t, "/campaigns", next)

	require.Len(t, seen, 2)
	assert.Equal(t, DraftSaveOp, seen[1].op)
	assert.Error(t, seen[1].err)
}

func TestRestoreDraft(t *testing.T) {
	drafts := newMemDrafts()
	require.NoError(t, drafts.SaveDraft(context.Background(), "campaign-wizard", map[string]any{
		"url":      "https://example.com",
		"industry": "retail",
	}))

	e := NewEngine(NewRegistry(), NewStore(), &stubCompleter{}, nil, WithDrafts(drafts))
	require.NoError(t, e.RegisterFlow(testFlow()))

	require.NoError(t, e.RestoreDraft(context.Background(), "campaign-wizard"))
	assert.Equal(t, "https://example.com", e.Store().Data("campaign-wizard")["url"])

	// Unknown process restores nothing and does not error.
	require.NoError(t, e.RestoreDraft(context.Background(), "never-seen"))
}

func TestDiscardDraft(t *testing.T) {
	drafts := newMemDrafts()
	e := NewEngine(NewRegistry(), NewStore(), &stubCompleter{}, nil, WithDrafts(drafts))
	require.NoError(t, e.RegisterFlow(testFlow()))

	e.Store().SetData("campaign-wizard", map[string]any{"url": "https://example.com"})
	require.NoError(t, drafts.SaveDraft(context.Background(), "campaign-wizard", e.Store().Data("campaign-wizard")))

	require.NoError(t, e.DiscardDraft(context.Background(), "campaign-wizard"))

	assert.Empty(t, e.Store().Data("campaign-wizard"))
	saved, err := drafts.LoadDraft(context.Background(), "campaign-wizard")
	require.NoError(t, err)
	assert.Empty(t, saved)
}

func TestEngineObserverFeedsExecutor(t *testing.T) {
	completer := &stubCompleter{
		response: `{"description": "A shop", "industry": "retail"}`,
	}

	var observed []string
	e := NewEngine(NewRegistry(), NewStore(), completer, nil,
		WithObserver(func(opID string, _ time.Duration, _ error) {
			observed = append(observed, opID)
		}))
	require.NoError(t, e.RegisterFlow(testFlow()))

	sess, err := e.EnterStep("campaign-wizard", "step1")
	require.NoError(t, err)
	_, err = sess.Advance(context.Background(), map[string]any{"url": "https://example.com"})
	require.NoError(t, err)

	assert.Equal(t, []string{"analyze-website"}, observed)
}

func TestLeaveStepIdempotent(t *testing.T) {
	e := newTestEngine(t, &stubCompleter{})

	_, err := e.EnterStep("campaign-wizard", "step1")
	require.NoError(t, err)

	e.LeaveStep("campaign-wizard")
	e.LeaveStep("campaign-wizard")
	e.LeaveStep("never-entered")

	// Entering again after leaving builds a fresh session.
	sess, err := e.EnterStep("campaign-wizard", "step1")
	require.NoError(t, err)
	assert.Equal(t, "step1", sess.StepKey())
}
