package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"
)

// Keys carries the provider credentials available to the process.
type Keys struct {
	Anthropic     string
	OpenAI        string
	OpenAIBaseURL string
}

// ResolveProvider selects a provider from the model name and the available
// keys. An empty model picks whichever key is set, Anthropic first.
func ResolveProvider(model string, keys Keys, client *http.Client) (Provider, error) {
	if model != "" {
		lower := strings.ToLower(model)
		switch {
		case strings.HasPrefix(lower, "anthropic:"):
			p, err := NewAnthropic(keys.Anthropic, client)
			if err != nil {
				return nil, err
			}
			return &modelOverride{Provider: p, model: model[len("anthropic:"):]}, nil

		case strings.HasPrefix(lower, "claude"):
			p, err := NewAnthropic(keys.Anthropic, client)
			if err != nil {
				return nil, err
			}
			return &modelOverride{Provider: p, model: model}, nil

		case strings.HasPrefix(lower, "openai:"):
			p, err := NewOpenAI(keys.OpenAI, keys.OpenAIBaseURL, client)
			if err != nil {
				return nil, err
			}
			return &modelOverride{Provider: p, model: model[len("openai:"):]}, nil

		case strings.HasPrefix(lower, "gpt"):
			p, err := NewOpenAI(keys.OpenAI, keys.OpenAIBaseURL, client)
			if err != nil {
				return nil, err
			}
			return &modelOverride{Provider: p, model: model}, nil
		}
	}

	if keys.Anthropic != "" {
		return NewAnthropic(keys.Anthropic, client)
	}
	if keys.OpenAI != "" {
		return NewOpenAI(keys.OpenAI, keys.OpenAIBaseURL, client)
	}

	return nil, fmt.Errorf("no LLM provider configured: set ANTHROPIC_API_KEY or OPENAI_API_KEY")
}

// modelOverride wraps a provider to override the model in settings.
type modelOverride struct {
	Provider
	model string
}

func (m *modelOverride) Generate(ctx context.Context, prompt string, s Settings) (string, error) {
	s.Model = m.model
	return m.Provider.Generate(ctx, prompt, s)
}
