package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dshills/docstyle/internal/apperr"
)

func TestResolveProviderAnthropicPrefix(t *testing.T) {
	p, err := ResolveProvider("anthropic:claude-3-haiku-20240307", Keys{Anthropic: "test-key"}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if p.Name() != "anthropic" {
		t.Errorf("expected anthropic provider, got %s", p.Name())
	}
}

func TestResolveProviderClaudePrefix(t *testing.T) {
	p, err := ResolveProvider("claude-3-haiku-20240307", Keys{Anthropic: "test-key"}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if p.Name() != "anthropic" {
		t.Errorf("expected anthropic provider, got %s", p.Name())
	}
}

func TestResolveProviderOpenAIPrefix(t *testing.T) {
	p, err := ResolveProvider("openai:gpt-4o-mini", Keys{OpenAI: "test-key"}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if p.Name() != "openai" {
		t.Errorf("expected openai provider, got %s", p.Name())
	}
}

func TestResolveProviderGPTPrefix(t *testing.T) {
	p, err := ResolveProvider("gpt-4o", Keys{OpenAI: "test-key"}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if p.Name() != "openai" {
		t.Errorf("expected openai provider, got %s", p.Name())
	}
}

func TestResolveProviderMissingKeyForModel(t *testing.T) {
	if _, err := ResolveProvider("claude-3-haiku-20240307", Keys{OpenAI: "k"}, nil); err == nil {
		t.Error("expected error for claude model without anthropic key")
	}
}

func TestResolveProviderAutoDetect(t *testing.T) {
	tests := []struct {
		name string
		keys Keys
		want string
	}{
		{"anthropic first", Keys{Anthropic: "a", OpenAI: "o"}, "anthropic"},
		{"openai only", Keys{OpenAI: "o"}, "openai"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := ResolveProvider("", tt.keys, nil)
			if err != nil {
				t.Fatal(err)
			}
			if p.Name() != tt.want {
				t.Errorf("expected %s, got %s", tt.want, p.Name())
			}
		})
	}
}

func TestResolveProviderNone(t *testing.T) {
	if _, err := ResolveProvider("", Keys{}, nil); err == nil {
		t.Error("expected error when no API keys set")
	}
}

func TestModelOverride(t *testing.T) {
	var gotModel string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req anthropicRequest
		json.NewDecoder(r.Body).Decode(&req)
		gotModel = req.Model
		json.NewEncoder(w).Encode(anthropicResponse{Content: []anthropicContentBlock{{Type: "text", Text: "{}"}}})
	}))
	defer srv.Close()

	base := &AnthropicProvider{apiKey: "k", apiURL: srv.URL, client: srv.Client()}
	p := &modelOverride{Provider: base, model: "claude-custom"}
	if _, err := p.Generate(context.Background(), "x", Settings{Model: "ignored"}); err != nil {
		t.Fatal(err)
	}
	if gotModel != "claude-custom" {
		t.Errorf("model = %q", gotModel)
	}
}

func TestMockProvider(t *testing.T) {
	m := &MockProvider{Response: `{"test": true}`}
	got, err := m.Generate(context.Background(), "prompt", Settings{})
	if err != nil {
		t.Fatal(err)
	}
	if got != `{"test": true}` {
		t.Errorf("unexpected response: %s", got)
	}
	if len(m.Prompts()) != 1 {
		t.Errorf("prompts = %v", m.Prompts())
	}
}

func TestAnthropicProviderGenerate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-API-Key") != "test-key" {
			t.Error("missing API key header")
		}
		if r.Header.Get("Anthropic-Version") == "" {
			t.Error("missing Anthropic-Version header")
		}
		if r.Header.Get("Content-Type") != "application/json" {
			t.Error("missing Content-Type header")
		}
		var req anthropicRequest
		json.NewDecoder(r.Body).Decode(&req)
		if req.Model != anthropicDefaultModel || req.MaxTokens != 4096 {
			t.Errorf("defaults not applied: %+v", req)
		}

		resp := anthropicResponse{
			Content: []anthropicContentBlock{
				{Type: "text", Text: `{"result": "ok"}`},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	p := &AnthropicProvider{apiKey: "test-key", apiURL: srv.URL, client: srv.Client()}
	got, err := p.Generate(context.Background(), "test prompt", Settings{Temperature: 0.3})
	if err != nil {
		t.Fatal(err)
	}
	if got != `{"result": "ok"}` {
		t.Errorf("unexpected response: %s", got)
	}
}

func TestNewAnthropicRequiresKey(t *testing.T) {
	if _, err := NewAnthropic("", nil); err == nil {
		t.Error("expected error for empty key")
	}
}

// --- Anthropic error path tests ---

func TestAnthropicNon200Status(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error": "rate limited"}`))
	}))
	defer srv.Close()

	p := &AnthropicProvider{apiKey: "test-key", apiURL: srv.URL, client: srv.Client()}
	_, err := p.Generate(context.Background(), "prompt", Settings{})
	if err == nil {
		t.Fatal("expected error for non-200 status")
	}
	if !strings.Contains(err.Error(), "429") {
		t.Errorf("error should contain status code 429, got: %s", err.Error())
	}
}

func TestAnthropicErrorEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"type":"error","error":{"type":"authentication_error","message":"invalid x-api-key"}}`))
	}))
	defer srv.Close()

	p := &AnthropicProvider{apiKey: "bad", apiURL: srv.URL, client: srv.Client()}
	_, err := p.Generate(context.Background(), "prompt", Settings{})
	if err == nil || !strings.Contains(err.Error(), "401: authentication_error: invalid x-api-key") {
		t.Errorf("got %v", err)
	}
}

func TestAnthropicJoinsTextBlocks(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(anthropicResponse{Content: []anthropicContentBlock{
			{Type: "text", Text: `{"corrected_text": `},
			{Type: "tool_use"},
			{Type: "text", Text: `"x", "changes": []}`},
		}})
	}))
	defer srv.Close()

	p := &AnthropicProvider{apiKey: "k", apiURL: srv.URL, client: srv.Client()}
	got, err := p.Generate(context.Background(), "prompt", Settings{})
	if err != nil {
		t.Fatal(err)
	}
	if got != `{"corrected_text": "x", "changes": []}` {
		t.Errorf("got %q", got)
	}
}

func TestAnthropicMalformedJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`not json at all`))
	}))
	defer srv.Close()

	p := &AnthropicProvider{apiKey: "test-key", apiURL: srv.URL, client: srv.Client()}
	_, err := p.Generate(context.Background(), "prompt", Settings{})
	if err == nil {
		t.Fatal("expected error for malformed JSON")
	}
	if !strings.Contains(err.Error(), "parse response") {
		t.Errorf("error should mention parse, got: %s", err.Error())
	}
}

func TestAnthropicNoTextContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := anthropicResponse{
			Content: []anthropicContentBlock{
				{Type: "image", Text: ""},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	p := &AnthropicProvider{apiKey: "test-key", apiURL: srv.URL, client: srv.Client()}
	_, err := p.Generate(context.Background(), "prompt", Settings{})
	if err == nil {
		t.Fatal("expected error for no text content")
	}
	if !strings.Contains(err.Error(), "no text content") {
		t.Errorf("error should mention 'no text content', got: %s", err.Error())
	}
}

func TestAnthropicTruncation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := anthropicResponse{
			Content:    []anthropicContentBlock{{Type: "text", Text: `{"corrected_text": "par`}},
			StopReason: "max_tokens",
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	p := &AnthropicProvider{apiKey: "test-key", apiURL: srv.URL, client: srv.Client()}
	_, err := p.Generate(context.Background(), "prompt", Settings{MaxTokens: 10})
	if err == nil || !strings.Contains(err.Error(), "truncated") {
		t.Errorf("expected truncation error, got: %v", err)
	}
}

// --- OpenAI tests against a fake chat completions endpoint ---

func openAIServer(t *testing.T, handler func(req map[string]any) (int, any)) *OpenAIProvider {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Error("missing Authorization header")
		}
		var req map[string]any
		json.NewDecoder(r.Body).Decode(&req)
		status, body := handler(req)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(body)
	}))
	t.Cleanup(srv.Close)
	p, err := NewOpenAI("test-key", srv.URL, srv.Client())
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func chatResponse(content, finish string) map[string]any {
	return map[string]any{
		"id":     "chatcmpl-1",
		"object": "chat.completion",
		"choices": []map[string]any{{
			"index":         0,
			"message":       map[string]any{"role": "assistant", "content": content},
			"finish_reason": finish,
		}},
	}
}

func TestOpenAIProviderGenerate(t *testing.T) {
	p := openAIServer(t, func(req map[string]any) (int, any) {
		rf, _ := req["response_format"].(map[string]any)
		if rf["type"] != "json_object" {
			t.Errorf("expected json_object response format, got %v", req["response_format"])
		}
		if req["model"] != openaiDefaultModel {
			t.Errorf("model = %v", req["model"])
		}
		return http.StatusOK, chatResponse(`{"result": "ok"}`, "stop")
	})
	got, err := p.Generate(context.Background(), "test prompt", Settings{Temperature: 0.2})
	if err != nil {
		t.Fatal(err)
	}
	if got != `{"result": "ok"}` {
		t.Errorf("unexpected response: %s", got)
	}
}

func TestOpenAINon200Status(t *testing.T) {
	p := openAIServer(t, func(map[string]any) (int, any) {
		return http.StatusInternalServerError, map[string]any{"error": map[string]any{"message": "server error", "type": "server_error"}}
	})
	_, err := p.Generate(context.Background(), "prompt", Settings{})
	if err == nil {
		t.Fatal("expected error for non-200 status")
	}
	if !strings.Contains(err.Error(), "500") {
		t.Errorf("error should contain status code 500, got: %s", err.Error())
	}
}

func TestOpenAIEmptyChoices(t *testing.T) {
	p := openAIServer(t, func(map[string]any) (int, any) {
		return http.StatusOK, map[string]any{"id": "x", "choices": []any{}}
	})
	_, err := p.Generate(context.Background(), "prompt", Settings{})
	if err == nil || !strings.Contains(err.Error(), "no choices") {
		t.Errorf("error should mention 'no choices', got: %v", err)
	}
}

func TestOpenAITruncation(t *testing.T) {
	p := openAIServer(t, func(map[string]any) (int, any) {
		return http.StatusOK, chatResponse(`{"partial": true}`, "length")
	})
	_, err := p.Generate(context.Background(), "prompt", Settings{MaxTokens: 100})
	if err == nil || !strings.Contains(err.Error(), "truncated") {
		t.Errorf("error should mention 'truncated', got: %v", err)
	}
}

func TestOpenAISeedPassthrough(t *testing.T) {
	seed := 42
	p := openAIServer(t, func(req map[string]any) (int, any) {
		if v, ok := req["seed"].(float64); !ok || v != 42 {
			t.Errorf("seed = %v", req["seed"])
		}
		return http.StatusOK, chatResponse(`{"ok": true}`, "stop")
	})
	if _, err := p.Generate(context.Background(), "prompt", Settings{Seed: &seed}); err != nil {
		t.Fatal(err)
	}
}

func TestOpenAISeedOmittedWhenNil(t *testing.T) {
	p := openAIServer(t, func(req map[string]any) (int, any) {
		if _, ok := req["seed"]; ok {
			t.Error("seed should be omitted when nil")
		}
		return http.StatusOK, chatResponse(`{"ok": true}`, "stop")
	})
	if _, err := p.Generate(context.Background(), "prompt", Settings{}); err != nil {
		t.Fatal(err)
	}
}

// --- ExtractJSON table-driven tests ---

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain JSON", `{"key": "value"}`, `{"key": "value"}`},
		{"json code fence", "```json\n{\"key\": \"value\"}\n```", `{"key": "value"}`},
		{"bare code fence", "```\n{\"key\": \"value\"}\n```", `{"key": "value"}`},
		{"whitespace around fences", "  \n```json\n{\"key\": \"value\"}\n```\n  ", `{"key": "value"}`},
		{"no closing fence", "```json\n{\"key\": \"value\"}", `{"key": "value"}`},
		{"already trimmed", "  {\"a\": 1}  ", `{"a": 1}`},
		{"leading prose", "Here is the result:\n{\"a\": 1}\nThanks", `{"a": 1}`},
		{"no object", "sorry", "sorry"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractJSON(tt.input)
			if got != tt.want {
				t.Errorf("ExtractJSON(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

// --- Corrector ---

func TestCorrectorSuccess(t *testing.T) {
	m := &MockProvider{Response: "```json\n{\"corrected_text\": \"The colour.\", \"changes\": [{\"issue\": \"color\", \"fix\": \"colour\"}]}\n```"}
	c := NewCorrector(m, Settings{}, nil)
	got, err := c.Correct(context.Background(), "prompt")
	if err != nil {
		t.Fatal(err)
	}
	if got.Text != "The colour." || len(got.Changes) != 1 {
		t.Errorf("correction = %+v", got)
	}
	if len(m.Prompts()) != 1 {
		t.Errorf("calls = %d, want 1", len(m.Prompts()))
	}
}

func TestCorrectorRepair(t *testing.T) {
	m := &MockProvider{Responses: []string{
		`{"corrected_text": "x", "changes": [{"issue": "a"}]}`,
		`{"corrected_text": "x", "changes": [{"issue": "a", "fix": "b"}]}`,
	}}
	c := NewCorrector(m, Settings{}, nil)
	got, err := c.Correct(context.Background(), "prompt")
	if err != nil {
		t.Fatal(err)
	}
	if got.Changes[0].Fix != "b" {
		t.Errorf("correction = %+v", got)
	}
	prompts := m.Prompts()
	if len(prompts) != 2 || !strings.Contains(prompts[1], "changes[0].fix") {
		t.Errorf("repair prompt not sent: %v", prompts)
	}
}

func TestCorrectorFailures(t *testing.T) {
	tests := []struct {
		name string
		m    *MockProvider
	}{
		{"provider error", &MockProvider{Err: errors.New("connection refused")}},
		{"invalid after repair", &MockProvider{Response: "no json here"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCorrector(tt.m, Settings{}, nil).Correct(context.Background(), "prompt")
			if !errors.Is(err, apperr.ErrAICorrector) {
				t.Errorf("err = %v, want ErrAICorrector", err)
			}
		})
	}
}
