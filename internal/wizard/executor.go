package wizard

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"reflect"
	"strings"
	"sync"
	"time"
)

// Observer is notified after every execution attempt, success or not.
// The engine uses it to feed the metrics collector.
type Observer func(operationID string, duration time.Duration, err error)

// Executor runs the LLM operation bound to one (process, operation)
// call site. It owns the loading/error observables the step displays
// and guarantees at most one execution in flight.
//
// State machine per instance: idle -> loading -> idle. Success and
// error are not sticky states; only the latest error is retained for
// display and cleared on the next Execute.
type Executor struct {
	processID string
	store     *Store
	completer Completer
	logger    *slog.Logger
	observer  Observer

	mu       sync.Mutex
	op       *Operation
	loading  bool
	lastErr  error
	cancelFn context.CancelFunc
}

// NewExecutor creates an executor for one process.
func NewExecutor(processID string, store *Store, completer Completer, logger *slog.Logger) *Executor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Executor{
		processID: processID,
		store:     store,
		completer: completer,
		logger:    logger,
	}
}

// SetObserver installs a post-execution hook.
func (e *Executor) SetObserver(obs Observer) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.observer = obs
}

// RegisterOperation binds an operation to this executor. Steps register
// on entry and views may re-enter, so registering the same operation id
// again is a no-op; a different id replaces the binding and cancels any
// execution still in flight for the old one.
func (e *Executor) RegisterOperation(op Operation) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.op != nil && e.op.ID == op.ID && samePrompt(e.op.Prompt, op.Prompt) {
		return
	}
	if e.cancelFn != nil {
		e.cancelFn()
		e.cancelFn = nil
	}
	opCopy := op
	e.op = &opCopy
	e.lastErr = nil
}

// UnregisterOperation unbinds the operation and cancels an in-flight
// execution. Safe to call repeatedly.
func (e *Executor) UnregisterOperation() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.cancelFn != nil {
		e.cancelFn()
		e.cancelFn = nil
	}
	e.op = nil
}

// Loading reports whether an execution is in flight.
func (e *Executor) Loading() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.loading
}

// Err returns the error of the most recent execution, or nil. Cleared
// when a new execution starts.
func (e *Executor) Err() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastErr
}

// Execute runs the registered operation against the given input payload:
// input mapping, prompt templating, one completion call, parse,
// validation, then the output-mapping patch into the process store.
// On any failure the store is left untouched and the error is retained
// for display; retry is manual, the caller re-invokes with the same input.
//
// A second call while one is in flight fails fast with
// ErrOperationInFlight instead of queueing.
func (e *Executor) Execute(ctx context.Context, input map[string]any) (Result, error) {
	e.mu.Lock()
	if e.op == nil {
		e.mu.Unlock()
		return nil, ErrNoOperation
	}
	if e.loading {
		e.mu.Unlock()
		return nil, ErrOperationInFlight
	}
	op := *e.op
	e.loading = true
	e.lastErr = nil
	ctx, cancel := context.WithCancel(ctx)
	e.cancelFn = cancel
	e.mu.Unlock()

	start := time.Now()
	result, err := e.run(ctx, op, input)

	e.mu.Lock()
	e.loading = false
	e.lastErr = err
	if e.cancelFn != nil {
		e.cancelFn()
		e.cancelFn = nil
	}
	obs := e.observer
	e.mu.Unlock()

	if obs != nil {
		obs(op.ID, time.Since(start), err)
	}
	if err != nil {
		e.logger.Error("operation failed",
			"process", e.processID, "operation", op.ID, "error", err)
		return nil, err
	}

	e.logger.Info("operation completed",
		"process", e.processID, "operation", op.ID,
		"duration_ms", time.Since(start).Milliseconds())
	return result, nil
}

func (e *Executor) run(ctx context.Context, op Operation, input map[string]any) (Result, error) {
	vars := input
	if op.InputMapping != nil {
		vars = op.InputMapping(input)
	}

	req := CompletionRequest{
		System:         RenderTemplate(op.Prompt.System, vars),
		User:           RenderTemplate(op.Prompt.User, vars),
		ResponseFormat: op.Prompt.ResponseFormat,
		Endpoint:       op.Endpoint,
	}

	raw, err := e.completer.Complete(ctx, req)
	if err != nil {
		return nil, &RequestError{Operation: op.ID, Err: err}
	}

	result, err := parseResult(op, raw)
	if err != nil {
		return nil, err
	}

	if op.Validate != nil && !op.Validate(result) {
		return nil, &ValidationError{Operation: op.ID}
	}

	if op.OutputMapping != nil {
		current := e.store.Data(e.processID)
		patch := op.OutputMapping(result, current)
		e.store.SetData(e.processID, patch)
	}
	return result, nil
}

// parseResult decodes the raw completion per the declared format.
// Models occasionally wrap JSON in a markdown fence; strip it before
// giving up.
func parseResult(op Operation, raw string) (Result, error) {
	if op.Prompt.ResponseFormat != ResponseJSON {
		return nil, &ParseError{
			Operation: op.ID,
			Err:       fmt.Errorf("unsupported response format %q", op.Prompt.ResponseFormat),
		}
	}

	body := strings.TrimSpace(raw)
	if strings.HasPrefix(body, "```") {
		body = strings.TrimPrefix(body, "```json")
		body = strings.TrimPrefix(body, "```")
		body = strings.TrimSuffix(strings.TrimSpace(body), "```")
		body = strings.TrimSpace(body)
	}

	var result Result
	if err := json.Unmarshal([]byte(body), &result); err != nil {
		return nil, &ParseError{Operation: op.ID, Err: err}
	}
	return result, nil
}

func samePrompt(a, b Prompt) bool {
	return reflect.DeepEqual(a, b)
}
