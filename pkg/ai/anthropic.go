package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/podscout/podscout/pkg/config"
)

const anthropicVersion = "2023-06-01"

// AnthropicClient is a minimal client for the Anthropic messages API
type AnthropicClient struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

// NewAnthropicClient creates a client using values from the provided config.
// Pass a nil config to fall back to environment variables.
func NewAnthropicClient(cfg *config.AnthropicConfig) *AnthropicClient {
	var apiKey, model, base string
	if cfg != nil {
		apiKey = cfg.APIKey
		model = cfg.Model
		base = cfg.BaseURL
	}
	if apiKey == "" {
		apiKey = os.Getenv("ANTHROPIC_API_KEY")
	}
	if model == "" {
		model = "claude-sonnet-4-20250514"
	}
	if base == "" {
		base = os.Getenv("ANTHROPIC_API_URL")
		if base == "" {
			base = "https://api.anthropic.com"
		}
	}

	return &AnthropicClient{
		apiKey:  apiKey,
		model:   model,
		baseURL: base,
		client:  &http.Client{Timeout: 120 * time.Second},
	}
}

// MessageRequest is the shape for message completion requests
type MessageRequest struct {
	Model     string      `json:"model"`
	MaxTokens int         `json:"max_tokens"`
	Messages  interface{} `json:"messages"`
}

// MessageResponse is a minimal response shape
type MessageResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Usage struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

// Completion is one model response with its token usage.
type Completion struct {
	Text         string
	InputTokens  int
	OutputTokens int
	Model        string
}

// Complete sends a single user prompt and returns the assistant text
// together with token usage.
func (a *AnthropicClient) Complete(ctx context.Context, prompt string) (*Completion, error) {
	reqBody := MessageRequest{
		Model:     a.model,
		MaxTokens: 4096,
		Messages:  []map[string]string{{"role": "user", "content": prompt}},
	}

	b, err := json.Marshal(reqBody)
	if err != nil {
		return nil, err
	}

	endpoint := a.baseURL + "/v1/messages"
	req, err := http.NewRequestWithContext(ctx, "POST", endpoint, bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("x-api-key", a.apiKey)
	req.Header.Set("anthropic-version", anthropicVersion)
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("anthropic returned status %d", resp.StatusCode)
	}

	var mr MessageResponse
	if err := json.NewDecoder(resp.Body).Decode(&mr); err != nil {
		return nil, err
	}
	if len(mr.Content) == 0 {
		return nil, fmt.Errorf("empty response from anthropic")
	}

	return &Completion{
		Text:         mr.Content[0].Text,
		InputTokens:  mr.Usage.InputTokens,
		OutputTokens: mr.Usage.OutputTokens,
		Model:        a.model,
	}, nil
}
