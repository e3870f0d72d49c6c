package wizard

import (
	"context"
	"errors"
	"fmt"
)

// ResponseFormat tags the expected shape of an operation's response.
type ResponseFormat string

// ResponseJSON is currently the only format the executor knows how to parse.
const ResponseJSON ResponseFormat = "json"

// Prompt holds the system/user prompt templates for an operation.
// Both may contain {{key}} placeholders resolved from the operation's
// input mapping.
type Prompt struct {
	System         string         `json:"system"`
	User           string         `json:"user"`
	ResponseFormat ResponseFormat `json:"responseFormat"`
}

// Result is a parsed LLM response.
type Result map[string]any

// Operation declares one call to the AI service: where it goes, how to
// build its prompts from accumulated process data, how to judge the
// response, and how to fold the response back into process data.
type Operation struct {
	ID   string
	Name string

	// Endpoint overrides the completer's default chat endpoint, for
	// completers that route by URL. Empty means use the configured one.
	Endpoint string

	Prompt Prompt

	// InputMapping produces the template variable set from the input
	// payload handed to Execute. Must be pure.
	InputMapping func(data map[string]any) map[string]any

	// OutputMapping produces the patch merged into the process data
	// store from a validated result and the current record. Must be pure.
	OutputMapping func(result Result, current map[string]any) map[string]any

	// Validate gates OutputMapping: a false return fails the execution
	// without touching the store.
	Validate func(result Result) bool
}

// CompletionRequest is what an operation sends to the AI service.
type CompletionRequest struct {
	System         string
	User           string
	ResponseFormat ResponseFormat
	Endpoint       string
}

// Completer issues a single chat completion. Implementations live in
// internal/llm; tests substitute fakes.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// Sentinel errors for executor misuse.
var (
	// ErrOperationInFlight rejects a second Execute while one is
	// pending. The step owns retry; overlapping calls for the same
	// (process, operation) are a caller bug.
	ErrOperationInFlight = errors.New("operation already in flight")

	// ErrNoOperation means Execute was called before RegisterOperation.
	ErrNoOperation = errors.New("no operation registered")
)

// RequestError is a transport-level failure talking to the AI service.
// Recoverable by manual retry.
type RequestError struct {
	Operation string
	Err       error
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("ai request %q: %v", e.Operation, e.Err)
}

func (e *RequestError) Unwrap() error { return e.Err }

// ParseError means the response body did not parse as the declared
// response format.
type ParseError struct {
	Operation string
	Err       error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("ai response for %q is not valid %s: %v", e.Operation, ResponseJSON, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ValidationError means the parsed response failed the operation's
// validation predicate. The store is never mutated in this case.
type ValidationError struct {
	Operation string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("ai response for %q missing required fields", e.Operation)
}

// FieldError reports a required or invalid step field, blocking advance.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("field %q is required", e.Field)
}
