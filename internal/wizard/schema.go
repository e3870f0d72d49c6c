// Package wizard implements the multi-step form orchestration engine:
// process schemas, accumulated process data, declarative LLM operations
// and the executor that reconciles AI responses into form state.
package wizard

import (
	"fmt"
	"strings"
	"sync"
)

// FieldType enumerates the supported form field types.
type FieldType string

const (
	FieldText     FieldType = "text"
	FieldEmail    FieldType = "email"
	FieldPassword FieldType = "password"
	FieldSelect   FieldType = "select"
	FieldTextarea FieldType = "textarea"
	FieldURL      FieldType = "url"
	FieldNumber   FieldType = "number"
	FieldTags     FieldType = "tags"
)

// Option is one choice of a select field.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Field describes a single form field within a step.
type Field struct {
	Type        FieldType `json:"type"`
	Title       string    `json:"title"`
	Placeholder string    `json:"placeholder,omitempty"`
	Options     []Option  `json:"options,omitempty"`
	ReadOnly    bool      `json:"readOnly,omitempty"`
}

// Step is the schema fragment for one screen of a process: its fields,
// the set of fields that must be non-empty before advancing, and an
// optional cross-field validation over the step's current values.
type Step struct {
	Title    string           `json:"title"`
	Fields   map[string]Field `json:"fields"`
	Required []string         `json:"required,omitempty"`

	// Validate runs over the step's merged values; never serialized.
	Validate func(data map[string]any) error `json:"-"`
}

// Process declares one complete multi-step flow.
type Process struct {
	ID    string          `json:"id"`
	Title string          `json:"title"`
	Steps map[string]Step `json:"steps"`

	// StepOrder lists step keys in navigation order.
	StepOrder []string `json:"stepOrder,omitempty"`
}

// Registry holds registered process schemas. It is a plain injected
// object, not package-level state, so tests can substitute their own.
type Registry struct {
	mu        sync.RWMutex
	processes map[string]Process
}

// NewRegistry creates an empty schema registry.
func NewRegistry() *Registry {
	return &Registry{processes: make(map[string]Process)}
}

// Register stores a process schema. Registration is idempotent: every
// step of a flow registers the full schema on entry, so re-registering
// the same id simply replaces the entry. A replacement with different
// content is allowed and wins (last write), it never duplicates state.
func (r *Registry) Register(p Process) error {
	if p.ID == "" {
		return fmt.Errorf("register process: empty id")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.processes[p.ID] = p
	return nil
}

// Process returns a registered process schema by id.
func (r *Registry) Process(id string) (Process, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.processes[id]
	return p, ok
}

// Fragment resolves a "processId.stepKey" path to a step schema.
// The path is split on the first dot only, so step keys may not
// contain dots but process ids stay unconstrained. Unknown process or
// step returns ok=false; callers render a not-found state, they must
// never panic on a missing fragment.
func (r *Registry) Fragment(path string) (Step, bool) {
	processID, stepKey, found := strings.Cut(path, ".")
	if !found {
		return Step{}, false
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.processes[processID]
	if !ok {
		return Step{}, false
	}
	step, ok := p.Steps[stepKey]
	return step, ok
}

// Len reports the number of registered processes.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.processes)
}
