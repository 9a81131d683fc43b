package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const (
	anthropicAPIURL       = "https://api.anthropic.com/v1/messages"
	anthropicDefaultModel = "claude-3-haiku-20240307"
	anthropicAPIVersion   = "2023-06-01"
	defaultMaxTokens      = 4096
)

// AnthropicProvider calls the Anthropic Messages API directly.
type AnthropicProvider struct {
	apiKey string
	apiURL string
	client *http.Client
}

// NewAnthropic creates an Anthropic provider. A nil client uses
// http.DefaultClient.
func NewAnthropic(apiKey string, client *http.Client) (*AnthropicProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("llm.NewAnthropic: api key not set")
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &AnthropicProvider{apiKey: apiKey, apiURL: anthropicAPIURL, client: client}, nil
}

func (a *AnthropicProvider) Name() string { return "anthropic" }

// Generate sends prompt as a single user turn and returns the text blocks
// of the reply joined together. A reply cut off at the token limit is an
// error since the correction JSON would be incomplete.
func (a *AnthropicProvider) Generate(ctx context.Context, prompt string, s Settings) (string, error) {
	msg := anthropicRequest{
		Model:       s.Model,
		MaxTokens:   s.MaxTokens,
		Temperature: &s.Temperature,
		Messages:    []anthropicMessage{{Role: "user", Content: prompt}},
	}
	if msg.Model == "" {
		msg.Model = anthropicDefaultModel
	}
	if msg.MaxTokens <= 0 {
		msg.MaxTokens = defaultMaxTokens
	}

	reply, err := a.send(ctx, msg)
	if err != nil {
		return "", err
	}
	if reply.StopReason == "max_tokens" {
		return "", fmt.Errorf("anthropic: response truncated at %d tokens", msg.MaxTokens)
	}
	var parts []string
	for _, block := range reply.Content {
		if block.Type == "text" && block.Text != "" {
			parts = append(parts, block.Text)
		}
	}
	if len(parts) == 0 {
		return "", fmt.Errorf("anthropic: no text content in response")
	}
	return strings.Join(parts, ""), nil
}

func (a *AnthropicProvider) send(ctx context.Context, msg anthropicRequest) (*anthropicResponse, error) {
	body, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("anthropic: marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.apiURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("anthropic: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", a.apiKey)
	req.Header.Set("Anthropic-Version", anthropicAPIVersion)

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("anthropic: request failed: %w", err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("anthropic: read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, anthropicStatusError(resp.StatusCode, data)
	}

	var reply anthropicResponse
	if err := json.Unmarshal(data, &reply); err != nil {
		return nil, fmt.Errorf("anthropic: parse response: %w", err)
	}
	return &reply, nil
}

// anthropicStatusError prefers the API's error envelope over the raw body.
func anthropicStatusError(code int, body []byte) error {
	var env struct {
		Error struct {
			Type    string `json:"type"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if json.Unmarshal(body, &env) == nil && env.Error.Message != "" {
		return fmt.Errorf("anthropic: API returned %d: %s: %s", code, env.Error.Type, env.Error.Message)
	}
	msg := strings.TrimSpace(string(body))
	if len(msg) > 300 {
		msg = msg[:300]
	}
	return fmt.Errorf("anthropic: API returned %d: %s", code, msg)
}

type anthropicRequest struct {
	Model       string             `json:"model"`
	MaxTokens   int                `json:"max_tokens"`
	Temperature *float64           `json:"temperature,omitempty"`
	Messages    []anthropicMessage `json:"messages"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicResponse struct {
	Content    []anthropicContentBlock `json:"content"`
	StopReason string                  `json:"stop_reason"`
}

type anthropicContentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}
