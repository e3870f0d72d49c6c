// Package llm provides the chat-completion clients the wizard executor
// talks to: langchaingo-backed providers, AWS Bedrock, and a bespoke
// HTTP chat endpoint.
package llm

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/anthropic"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/dadmor/campaignforge/internal/config"
	"github.com/dadmor/campaignforge/internal/wizard"
)

// jsonInstruction is appended to the user prompt when an operation
// declares a JSON response, so free-form models answer parseably.
const jsonInstruction = "\n\nRespond with valid JSON only, no prose around it."

// Model wraps a langchaingo LLM as a wizard.Completer.
type Model struct {
	llm       llms.Model
	modelName string
}

var _ wizard.Completer = (*Model)(nil)

// NewModel creates an LLM model based on configuration.
func NewModel(cfg config.Config) (*Model, error) {
	var model llms.Model
	var err error

	switch cfg.LLMProvider {
	case config.ProviderOllama:
		model, err = ollama.New(
			ollama.WithModel(cfg.LLMModel),
			ollama.WithServerURL(cfg.OllamaHost),
		)
		if err != nil {
			return nil, fmt.Errorf("create ollama model: %w", err)
		}

	case config.ProviderOpenAI:
		if cfg.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("OpenAI API key required")
		}
		model, err = openai.New(
			openai.WithToken(cfg.OpenAIAPIKey),
			openai.WithModel(cfg.LLMModel),
		)
		if err != nil {
			return nil, fmt.Errorf("create openai model: %w", err)
		}

	case config.ProviderAnthropic:
		if cfg.AnthropicAPIKey == "" {
			return nil, fmt.Errorf("Anthropic API key required")
		}
		model, err = anthropic.New(
			anthropic.WithToken(cfg.AnthropicAPIKey),
			anthropic.WithModel(cfg.LLMModel),
		)
		if err != nil {
			return nil, fmt.Errorf("create anthropic model: %w", err)
		}

	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.LLMProvider)
	}

	return &Model{
		llm:       model,
		modelName: cfg.LLMModel,
	}, nil
}

// Complete issues one chat completion with the request's system and
// user prompts.
func (m *Model) Complete(ctx context.Context, req wizard.CompletionRequest) (string, error) {
	user := req.User
	if req.ResponseFormat == wizard.ResponseJSON {
		user += jsonInstruction
	}

	messages := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, req.System),
		llms.TextParts(llms.ChatMessageTypeHuman, user),
	}

	response, err := m.llm.GenerateContent(ctx, messages)
	if err != nil {
		return "", fmt.Errorf("generate: %w", err)
	}
	if len(response.Choices) == 0 {
		return "", fmt.Errorf("no response choices")
	}
	return response.Choices[0].Content, nil
}

// Model returns the configured model name.
func (m *Model) Model() string {
	return m.modelName
}

// NewCompleter builds the completer the configuration asks for.
func NewCompleter(ctx context.Context, cfg config.Config) (wizard.Completer, error) {
	switch cfg.LLMProvider {
	case config.ProviderEndpoint:
		if cfg.ChatEndpoint == "" {
			return nil, fmt.Errorf("chat endpoint required for provider %q", config.ProviderEndpoint)
		}
		return NewEndpointCompleter(cfg.ChatEndpoint), nil
	case config.ProviderBedrock:
		return NewBedrockCompleter(ctx, cfg)
	default:
		return NewModel(cfg)
	}
}
