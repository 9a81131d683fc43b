package llm

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/dshills/docstyle/internal/apperr"
	"github.com/dshills/docstyle/internal/prompt"
	"github.com/dshills/docstyle/internal/schema"
)

// Corrector turns a correction prompt into a structured Correction using a
// Provider. Output that fails to decode gets one repair round.
type Corrector struct {
	provider Provider
	settings Settings
	log      *zap.Logger
}

// NewCorrector wraps p. A nil logger discards output.
func NewCorrector(p Provider, s Settings, log *zap.Logger) *Corrector {
	if log == nil {
		log = zap.NewNop()
	}
	return &Corrector{provider: p, settings: s, log: log}
}

// Name reports the underlying provider.
func (c *Corrector) Name() string { return c.provider.Name() }

// Correct sends text to the model and decodes its reply. Every failure wraps
// apperr.ErrAICorrector.
func (c *Corrector) Correct(ctx context.Context, text string) (*schema.Correction, error) {
	c.log.Info("calling AI corrector",
		zap.String("provider", c.provider.Name()),
		zap.Int("prompt_chars", len(text)))

	raw, err := c.provider.Generate(ctx, text, c.settings)
	if err != nil {
		return nil, apperr.Wrap("llm.Correct", apperr.ErrAICorrector, err)
	}
	out := ExtractJSON(raw)
	corr, errs := schema.Decode(out)
	if len(errs) == 0 {
		return corr, nil
	}

	c.log.Warn("AI response failed validation, requesting repair", zap.Int("errors", len(errs)))
	raw, err = c.provider.Generate(ctx, prompt.BuildRepair(out, errs), c.settings)
	if err != nil {
		return nil, apperr.Wrap("llm.Correct", apperr.ErrAICorrector, fmt.Errorf("repair: %w", err))
	}
	corr, errs = schema.Decode(ExtractJSON(raw))
	if len(errs) > 0 {
		return nil, apperr.Wrap("llm.Correct", apperr.ErrAICorrector, fmt.Errorf("invalid response after repair: %w", errs[0]))
	}
	return corr, nil
}
