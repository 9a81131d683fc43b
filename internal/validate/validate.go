// Package validate runs a rule set against one document: it loads the bytes,
// sends AI-eligible rules through the corrector in one call, dispatches the
// remaining rules in priority order and serializes the result.
package validate

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/dshills/docstyle/internal/apperr"
	"github.com/dshills/docstyle/internal/check"
	"github.com/dshills/docstyle/internal/document"
	"github.com/dshills/docstyle/internal/docx"
	"github.com/dshills/docstyle/internal/prompt"
	"github.com/dshills/docstyle/internal/redact"
	"github.com/dshills/docstyle/internal/rule"
	"github.com/dshills/docstyle/internal/schema"
	"github.com/dshills/docstyle/internal/visio"
)

// Status is the overall outcome of a run.
type Status string

const (
	StatusPassed Status = "Passed"
	StatusFailed Status = "Failed"
)

// Source is a loaded document that can be written back to bytes.
type Source interface {
	Document() *document.Document
	Save() ([]byte, error)
}

// Loader parses raw bytes for one document type.
type Loader func(data []byte) (Source, error)

// Dispatcher applies one rule to a document.
type Dispatcher interface {
	Dispatch(doc *document.Document, r rule.Rule) (check.Result, error)
}

// Corrector rewrites document text for the AI-eligible rules.
type Corrector interface {
	Correct(ctx context.Context, prompt string) (*schema.Correction, error)
}

// Observer receives run measurements.
type Observer interface {
	ObserveRun(docType, status string, issues, fixes int, elapsed time.Duration)
	ObserveAI(outcome string)
}

// Result is the outcome of one run.
type Result struct {
	Issues   []check.Finding `json:"issues"`
	Fixes    []check.Finding `json:"fixes"`
	Status   Status          `json:"status"`
	Document []byte          `json:"-"`
}

// Fixed reports whether any fix was applied.
func (r *Result) Fixed() bool { return len(r.Fixes) > 0 }

// Validator is safe for concurrent use when its Dispatcher and Corrector are.
type Validator struct {
	dispatcher Dispatcher
	loaders    map[rule.DocType]Loader
	corrector  Corrector
	observer   Observer
	log        *zap.Logger
	isolate    bool
	guide      string
}

// Option configures a Validator.
type Option func(*Validator)

// WithCorrector enables the AI path.
func WithCorrector(c Corrector) Option { return func(v *Validator) { v.corrector = c } }

// WithLogger sets the run logger. The default discards output.
func WithLogger(l *zap.Logger) Option { return func(v *Validator) { v.log = l } }

// WithObserver receives run and AI outcome measurements.
func WithObserver(o Observer) Option { return func(v *Validator) { v.observer = o } }

// WithRuleIsolation reports a failing rule as an issue and carries on with
// the rest instead of aborting the run.
func WithRuleIsolation(on bool) Option { return func(v *Validator) { v.isolate = on } }

// WithLoader replaces the loader for a document type.
func WithLoader(dt rule.DocType, l Loader) Option {
	return func(v *Validator) { v.loaders[dt] = l }
}

// WithGuide names the style guide in AI prompts.
func WithGuide(name string) Option { return func(v *Validator) { v.guide = name } }

// New returns a Validator with the Word and Visio loaders installed.
func New(d Dispatcher, opts ...Option) *Validator {
	v := &Validator{
		dispatcher: d,
		loaders: map[rule.DocType]Loader{
			rule.DocWord:  func(b []byte) (Source, error) { return docx.Load(b) },
			rule.DocVisio: func(b []byte) (Source, error) { return visio.Load(b) },
		},
		log: zap.NewNop(),
	}
	for _, o := range opts {
		o(v)
	}
	return v
}

// DocTypeFor maps a file name to the document type its extension implies.
func DocTypeFor(fileName string) (rule.DocType, error) {
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".docx", ".doc":
		return rule.DocWord, nil
	case ".vsdx", ".vsd":
		return rule.DocVisio, nil
	}
	return "", apperr.Wrap("validate.DocTypeFor", apperr.ErrUnsupportedFormat,
		fmt.Errorf("file type %q is not supported", filepath.Ext(fileName)))
}

// Validate checks data against rules for documents of type dt.
func (v *Validator) Validate(ctx context.Context, data []byte, rules []rule.Rule, dt rule.DocType) (*Result, error) {
	start := time.Now()
	src, err := v.Load(data, dt)
	if err != nil {
		return nil, err
	}
	doc := src.Document()

	applicable := rule.ForDocType(rules, dt)
	aiRules, hardCoded := rule.Partition(applicable)
	v.log.Info("validating document",
		zap.String("doc_type", string(dt)),
		zap.Int("paragraphs", len(doc.Paragraphs)),
		zap.Int("ai_rules", len(aiRules)),
		zap.Int("rules", len(hardCoded)))

	res := &Result{}
	if len(aiRules) > 0 {
		if v.corrector == nil {
			v.log.Info("AI corrector not configured, skipping AI rules", zap.Int("ai_rules", len(aiRules)))
		} else {
			res.add(v.correct(ctx, doc, aiRules))
		}
	}

	for _, r := range hardCoded {
		out, err := v.dispatcher.Dispatch(doc, r)
		if err != nil {
			if !v.isolate {
				return nil, fmt.Errorf("validate.Validate: %w", err)
			}
			v.log.Warn("rule failed", zap.String("rule", r.Label()), zap.Error(err))
			out = check.Result{Issues: []check.Finding{{
				RuleID: r.ID, CheckValue: r.CheckValue, Kind: check.KindIssue, Count: 1,
				Message: fmt.Sprintf("Rule '%s' failed: %s", r.Label(), err),
			}}}
		}
		res.add(out)
	}

	res.Status = StatusFor(len(res.Issues), len(res.Fixes))
	res.Document, err = src.Save()
	if err != nil {
		return nil, fmt.Errorf("validate.Validate: save: %w", err)
	}

	v.log.Info("validation complete",
		zap.String("status", string(res.Status)),
		zap.Int("issues", len(res.Issues)),
		zap.Int("fixes", len(res.Fixes)))
	if v.observer != nil {
		v.observer.ObserveRun(string(dt), string(res.Status), len(res.Issues), len(res.Fixes), time.Since(start))
	}
	return res, nil
}

// Load parses data with the loader installed for dt.
func (v *Validator) Load(data []byte, dt rule.DocType) (Source, error) {
	load, ok := v.loaders[dt]
	if !ok {
		return nil, apperr.Wrap("validate.Load", apperr.ErrUnsupportedFormat, fmt.Errorf("no loader for %q", dt))
	}
	src, err := load(data)
	if err != nil {
		return nil, apperr.Wrap("validate.Load", apperr.ErrUnsupportedFormat, err)
	}
	return src, nil
}

// StatusFor reconciles counts only: it does not check that the fixes answer
// the same issues.
func StatusFor(issues, fixes int) Status {
	if issues-fixes == 0 {
		return StatusPassed
	}
	return StatusFailed
}

func (r *Result) add(o check.Result) {
	r.Issues = append(r.Issues, o.Issues...)
	r.Fixes = append(r.Fixes, o.Fixes...)
}

// correct runs the single AI call. Failures become an issue.
func (v *Validator) correct(ctx context.Context, doc *document.Document, rules []rule.Rule) check.Result {
	var out check.Result
	text := doc.Text()
	if strings.TrimSpace(text) == "" {
		v.log.Info("document has no text for AI correction")
		v.observe("empty")
		return out
	}
	p := prompt.Build(prompt.BuildOpts{Rules: rules, Text: text, Guide: v.guide})
	corr, err := v.corrector.Correct(ctx, p)
	if err != nil {
		v.log.Error("AI correction failed", zap.Error(err))
		v.observe("error")
		out.Issues = append(out.Issues, check.Finding{
			Kind: check.KindIssue, CheckValue: "AI", Count: 1,
			Message: "AI validation error: " + redact.Redact(err.Error()),
		})
		return out
	}
	if strings.TrimSpace(corr.Text) == "" || len(corr.Changes) == 0 {
		v.log.Info("AI corrector reported no changes")
		v.observe("unchanged")
		return out
	}

	updated := ApplyCorrection(doc, corr.Text)
	for _, ch := range corr.Changes {
		v.log.Debug("AI change", zap.String("issue", ch.Issue), zap.String("fix", ch.Fix))
	}
	v.log.Info("applied AI corrections", zap.Int("changes", len(corr.Changes)), zap.Int("paragraphs", updated))
	v.observe("corrected")

	n := len(corr.Changes)
	out.Issues = append(out.Issues, check.Finding{
		Kind: check.KindIssue, CheckValue: "AI", Count: n,
		Message: fmt.Sprintf("AI review found %d style issues across %d rules", n, len(rules)),
	})
	out.Fixes = append(out.Fixes, check.Finding{
		Kind: check.KindFix, CheckValue: "AI", Count: n,
		Message: fmt.Sprintf("AI corrected %d style issues in %d paragraphs", n, updated),
	})
	return out
}

func (v *Validator) observe(outcome string) {
	if v.observer != nil {
		v.observer.ObserveAI(outcome)
	}
}

// ApplyCorrection writes corrected paragraphs, separated by blank lines,
// over the document's non-empty paragraphs in order. Each target keeps only
// its first run's formatting. It returns the number of paragraphs updated.
func ApplyCorrection(doc *document.Document, corrected string) int {
	targets := doc.NonEmpty()
	n := 0
	for _, part := range strings.Split(corrected, "\n\n") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if n >= len(targets) {
			break
		}
		targets[n].SetText(part)
		n++
	}
	return n
}
