// Package llm connects the AI correction path to a language model: the
// Provider abstraction, the Anthropic and OpenAI backends, and the
// Corrector that decodes and repairs model output.
package llm

import "context"

// Settings tunes one request. Zero values pick the provider defaults.
type Settings struct {
	Model       string
	Temperature float64
	MaxTokens   int
	Seed        *int
}

// Provider sends a prompt to a model and returns its raw text reply.
type Provider interface {
	Generate(ctx context.Context, prompt string, settings Settings) (string, error)
	Name() string
}
