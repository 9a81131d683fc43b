package main

import (
	"errors"
	"net/http"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/dshills/docstyle/internal/apperr"
	"github.com/dshills/docstyle/internal/check"
	"github.com/dshills/docstyle/internal/config"
	"github.com/dshills/docstyle/internal/llm"
	"github.com/dshills/docstyle/internal/redact"
	"github.com/dshills/docstyle/internal/validate"
)

// newLogger builds a JSON production logger, or a console development
// logger at debug level.
func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, exitError(exitInput, "invalid --log-level %q", level)
	}
	cfg := zap.NewProductionConfig()
	if lvl == zapcore.DebugLevel {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	log, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	zap.ReplaceGlobals(log)
	return log, nil
}

func loadConfig(path string) (config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, exitError(exitInput, "%v", err)
	}
	return cfg, nil
}

// newCorrector returns nil when the AI path is disabled.
func newCorrector(cfg config.Config, log *zap.Logger) (validate.Corrector, error) {
	if !cfg.AIEnabled() {
		return nil, nil
	}
	p, err := llm.ResolveProvider(cfg.AI.Model, llm.Keys{
		Anthropic:     cfg.AI.AnthropicKey,
		OpenAI:        cfg.AI.OpenAIKey,
		OpenAIBaseURL: cfg.AI.OpenAIBaseURL,
	}, &http.Client{Timeout: cfg.Server.RequestTimeout})
	if err != nil {
		return nil, exitError(exitInput, "AI corrector: %v", err)
	}
	return llm.NewCorrector(p, llm.Settings{
		Temperature: cfg.AI.Temperature,
		MaxTokens:   cfg.AI.MaxTokens,
	}, log), nil
}

// validatorOpts collects the options shared by serve and check.
type validatorOpts struct {
	recorder check.Recorder
	observer validate.Observer
	isolate  bool
}

func newValidator(cfg config.Config, log *zap.Logger, o validatorOpts) (*validate.Validator, error) {
	regOpts := []check.Option{check.WithLogger(log)}
	if o.recorder != nil {
		regOpts = append(regOpts, check.WithRecorder(o.recorder))
	}
	opts := []validate.Option{
		validate.WithLogger(log),
		validate.WithRuleIsolation(o.isolate || cfg.Server.RuleIsolation),
	}
	if o.observer != nil {
		opts = append(opts, validate.WithObserver(o.observer))
	}
	corr, err := newCorrector(cfg, log)
	if err != nil {
		return nil, err
	}
	if corr != nil {
		opts = append(opts, validate.WithCorrector(corr))
	}
	return validate.New(check.NewRegistry(regOpts...), opts...), nil
}

// classify maps an error from a collaborator onto an exit code.
func classify(err error) int {
	switch {
	case errors.Is(err, apperr.ErrConfiguration), apperr.IsClientError(err), errors.Is(err, apperr.ErrRule):
		return exitInput
	default:
		return exitExternal
	}
}

func fail(err error, format string, args ...any) error {
	return exitError(classify(err), format+": %s", append(args, redact.Redact(err.Error()))...)
}
