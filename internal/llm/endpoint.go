package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/dadmor/campaignforge/internal/wizard"
)

const defaultEndpointTimeout = 120 * time.Second

// EndpointCompleter talks to a bespoke chat backend: a single POST
// carrying the rendered prompts and the expected response format,
// answering with the completion content. Operations may override the
// endpoint per call.
type EndpointCompleter struct {
	endpoint string
	client   *http.Client
}

var _ wizard.Completer = (*EndpointCompleter)(nil)

// NewEndpointCompleter creates a completer for the given default endpoint.
func NewEndpointCompleter(endpoint string) *EndpointCompleter {
	return &EndpointCompleter{
		endpoint: endpoint,
		client:   &http.Client{Timeout: defaultEndpointTimeout},
	}
}

type chatRequest struct {
	System         string `json:"system"`
	User           string `json:"user"`
	ResponseFormat string `json:"responseFormat"`
}

// chatResponse covers the shapes chat backends answer with: either a
// bare content field or an OpenAI-style choices list.
type chatResponse struct {
	Content string `json:"content"`
	Message string `json:"message"`
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Complete POSTs the prompts and returns the completion content.
func (c *EndpointCompleter) Complete(ctx context.Context, req wizard.CompletionRequest) (string, error) {
	endpoint := c.endpoint
	if req.Endpoint != "" {
		endpoint = req.Endpoint
	}

	payload, err := json.Marshal(chatRequest{
		System:         req.System,
		User:           req.User,
		ResponseFormat: string(req.ResponseFormat),
	})
	if err != nil {
		return "", fmt.Errorf("marshal chat request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("build chat request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("chat request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read chat response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("chat endpoint returned %d: %s", resp.StatusCode, truncate(string(body), 200))
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		// Some backends answer with the raw completion text.
		return string(body), nil
	}
	switch {
	case parsed.Content != "":
		return parsed.Content, nil
	case parsed.Message != "":
		return parsed.Message, nil
	case len(parsed.Choices) > 0:
		return parsed.Choices[0].Message.Content, nil
	default:
		return string(body), nil
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
