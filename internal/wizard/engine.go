package wizard

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"
)

// DraftSaveOp is the observer operation id for draft persistence, so
// metrics wiring can tell draft writes apart from LLM operations.
const DraftSaveOp = "draft_save"

// FlowStep binds one schema step to a route and, optionally, to the LLM
// operation that runs when the step advances.
type FlowStep struct {
	Key   string
	Route string

	// Operation, when non-nil, executes after the step's edits are
	// merged and before navigation to the next route.
	Operation *Operation

	// OperationInput selects the execution input payload from the
	// accumulated record. Nil passes the whole record.
	OperationInput func(data map[string]any) map[string]any
}

// Flow is a complete wizard: a process schema plus its ordered steps
// and the route to land on after the final step.
type Flow struct {
	Process     Process
	Steps       []FlowStep
	FinishRoute string
}

// stepByKey returns the index of a step within the flow.
func (f Flow) stepByKey(key string) (int, bool) {
	for i, s := range f.Steps {
		if s.Key == key {
			return i, true
		}
	}
	return 0, false
}

// Engine coordinates flows over a shared registry, store and completer.
// It replaces the view-mount lifecycle of the original design with
// explicit EnterStep/LeaveStep calls with well-defined idempotence.
type Engine struct {
	registry  *Registry
	store     *Store
	completer Completer
	logger    *slog.Logger
	drafts    DraftStore
	observer  Observer

	mu       sync.Mutex
	flows    map[string]Flow
	sessions map[string]*session
}

// session tracks the active step of one process.
type session struct {
	flow     Flow
	stepKey  string
	executor *Executor
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithDrafts attaches a persistence adapter; step advances then write
// the accumulated record through so progress survives a restart.
func WithDrafts(ds DraftStore) EngineOption {
	return func(e *Engine) { e.drafts = ds }
}

// WithObserver installs a hook notified after every operation execution.
func WithObserver(obs Observer) EngineOption {
	return func(e *Engine) { e.observer = obs }
}

// NewEngine creates a wizard engine.
func NewEngine(registry *Registry, store *Store, completer Completer, logger *slog.Logger, opts ...EngineOption) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	e := &Engine{
		registry:  registry,
		store:     store,
		completer: completer,
		logger:    logger,
		flows:     make(map[string]Flow),
		sessions:  make(map[string]*session),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Store exposes the process data store.
func (e *Engine) Store() *Store { return e.store }

// Registry exposes the schema registry.
func (e *Engine) Registry() *Registry { return e.registry }

// RegisterFlow declares a flow and registers its process schema.
// Idempotent like Registry.Register.
func (e *Engine) RegisterFlow(f Flow) error {
	if len(f.Steps) == 0 {
		return fmt.Errorf("register flow %q: no steps", f.Process.ID)
	}
	for _, s := range f.Steps {
		if _, ok := f.Process.Steps[s.Key]; !ok {
			return fmt.Errorf("register flow %q: step %q not in schema", f.Process.ID, s.Key)
		}
	}
	if err := e.registry.Register(f.Process); err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.flows[f.Process.ID] = f
	return nil
}

// Flow returns a registered flow.
func (e *Engine) Flow(processID string) (Flow, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	f, ok := e.flows[processID]
	return f, ok
}

// EnterStep activates a step of a flow. Entering the step that is
// already active is a no-op returning the same session, so re-entrant
// callers (re-renders, repeated HTTP calls) cause no duplicate
// registrations or network activity. Entering a different step leaves
// the previous one first, cancelling any execution it had in flight.
func (e *Engine) EnterStep(processID, stepKey string) (*StepSession, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	flow, ok := e.flows[processID]
	if !ok {
		return nil, fmt.Errorf("unknown process %q", processID)
	}
	idx, ok := flow.stepByKey(stepKey)
	if !ok {
		return nil, fmt.Errorf("unknown step %q of process %q", stepKey, processID)
	}
	step := flow.Steps[idx]

	sess, ok := e.sessions[processID]
	if !ok {
		sess = &session{flow: flow}
		e.sessions[processID] = sess
	}

	if sess.stepKey != stepKey || sess.executor == nil {
		if sess.executor != nil {
			sess.executor.UnregisterOperation()
		}
		exec := NewExecutor(processID, e.store, e.completer, e.logger)
		if e.observer != nil {
			exec.SetObserver(e.observer)
		}
		sess.executor = exec
		sess.stepKey = stepKey
	}
	if step.Operation != nil {
		sess.executor.RegisterOperation(*step.Operation)
	}

	return &StepSession{
		engine:    e,
		processID: processID,
		flow:      flow,
		index:     idx,
		step:      step,
		executor:  sess.executor,
	}, nil
}

// LeaveStep deactivates the process's current step, unregistering its
// operation and cancelling in-flight work. Safe when nothing is active.
func (e *Engine) LeaveStep(processID string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	sess, ok := e.sessions[processID]
	if !ok {
		return
	}
	if sess.executor != nil {
		sess.executor.UnregisterOperation()
	}
	sess.executor = nil
	sess.stepKey = ""
}

// RestoreDraft loads a persisted draft into the store, if an adapter is
// attached and a draft exists.
func (e *Engine) RestoreDraft(ctx context.Context, processID string) error {
	if e.drafts == nil {
		return nil
	}
	data, err := e.drafts.LoadDraft(ctx, processID)
	if err != nil {
		return fmt.Errorf("load draft %q: %w", processID, err)
	}
	if len(data) > 0 {
		e.store.SetData(processID, data)
	}
	return nil
}

// DiscardDraft removes persisted and in-memory state for a process.
func (e *Engine) DiscardDraft(ctx context.Context, processID string) error {
	e.store.Clear(processID)
	if e.drafts == nil {
		return nil
	}
	if err := e.drafts.DeleteDraft(ctx, processID); err != nil {
		return fmt.Errorf("delete draft %q: %w", processID, err)
	}
	return nil
}

// StepSession is the handle a mounted step works with: read data,
// observe the executor, advance.
type StepSession struct {
	engine    *Engine
	processID string
	flow      Flow
	index     int
	step      FlowStep
	executor  *Executor
}

// ProcessID returns the owning process id.
func (s *StepSession) ProcessID() string { return s.processID }

// StepKey returns the active step key.
func (s *StepSession) StepKey() string { return s.step.Key }

// Route returns the active step's route.
func (s *StepSession) Route() string { return s.step.Route }

// Schema returns the schema fragment for this step.
func (s *StepSession) Schema() Step {
	frag, _ := s.engine.registry.Fragment(s.processID + "." + s.step.Key)
	return frag
}

// Data returns the accumulated process record.
func (s *StepSession) Data() map[string]any {
	return s.engine.store.Data(s.processID)
}

// Loading reports whether this step's operation is in flight.
func (s *StepSession) Loading() bool { return s.executor.Loading() }

// Err returns the latest operation error for display, or nil.
func (s *StepSession) Err() error { return s.executor.Err() }

// Advance validates the step against its schema, merges edits into the
// store, runs the step's operation if it has one, and returns the next
// route. On validation or operation failure the caller stays on the
// current route; retry is another Advance call.
func (s *StepSession) Advance(ctx context.Context, edits map[string]any) (string, error) {
	schema := s.Schema()

	merged := s.Data()
	for k, v := range edits {
		merged[k] = v
	}

	for _, field := range schema.Required {
		if isEmpty(merged[field]) {
			return "", &FieldError{Field: field}
		}
	}
	if schema.Validate != nil {
		if err := schema.Validate(merged); err != nil {
			return "", err
		}
	}

	// Local edits land before the operation starts, so the operation's
	// input mapping sees them.
	s.engine.store.SetData(s.processID, edits)

	if s.step.Operation != nil {
		input := s.Data()
		if s.step.OperationInput != nil {
			input = s.step.OperationInput(input)
		}
		if _, err := s.executor.Execute(ctx, input); err != nil {
			return "", err
		}
	}

	if s.engine.drafts != nil {
		start := time.Now()
		err := s.engine.drafts.SaveDraft(ctx, s.processID, s.Data())
		if s.engine.observer != nil {
			s.engine.observer(DraftSaveOp, time.Since(start), err)
		}
		if err != nil {
			s.engine.logger.Warn("draft save failed", "process", s.processID, "error", err)
		}
	}

	return s.nextRoute(), nil
}

func (s *StepSession) nextRoute() string {
	if s.index+1 < len(s.flow.Steps) {
		return s.flow.Steps[s.index+1].Route
	}
	return s.flow.FinishRoute
}

// isEmpty implements the required-field gate: nil, whitespace-only
// strings, empty slices and zero numbers all block advancing.
func isEmpty(v any) bool {
	switch val := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(val) == ""
	case []string:
		return len(val) == 0
	case []any:
		return len(val) == 0
	case int:
		return val == 0
	case int64:
		return val == 0
	case float64:
		return val == 0
	case bool:
		return !val
	default:
		return false
	}
}
