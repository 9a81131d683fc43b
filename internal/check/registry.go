package check

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/dshills/docstyle/internal/document"
	"github.com/dshills/docstyle/internal/rule"
)

// Func inspects doc for one rule and, when the rule allows it, fixes it in
// place.
type Func func(doc *document.Document, r rule.Rule) (Result, error)

// Recorder counts rules that reach no checker.
type Recorder interface {
	RuleUnimplemented(ruleType, checkValue string)
}

type key struct {
	typ   rule.Type
	value string
}

type prefixEntry struct {
	typ    rule.Type
	prefix string
	fn     Func
}

// Registry maps (rule type, check value) to a checker. It is filled at
// construction and read-only afterwards, so one Registry serves concurrent
// runs.
type Registry struct {
	exact    map[key]Func
	prefixes []prefixEntry
	log      *zap.Logger
	rec      Recorder
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the logger for unimplemented-rule warnings.
func WithLogger(l *zap.Logger) Option { return func(r *Registry) { r.log = l } }

// WithRecorder counts rules that reach no checker.
func WithRecorder(rec Recorder) Option { return func(r *Registry) { r.rec = rec } }

// NewRegistry returns a registry holding every built-in checker.
func NewRegistry(opts ...Option) *Registry {
	reg := &Registry{exact: map[key]Func{}, log: zap.NewNop()}
	for _, o := range opts {
		o(reg)
	}

	reg.Register(rule.TypeFont, "AllTextFont", AllTextFont)
	reg.Register(rule.TypeFont, "Heading1Font", Heading1Font)
	reg.Register(rule.TypeColor, "Heading1Color", Heading1Color)

	reg.RegisterPrefix(rule.TypeLanguage, "BritishSpelling_", BritishSpelling)
	reg.RegisterPrefix(rule.TypeLanguage, "NoContraction_", NoContraction)
	reg.RegisterPrefix(rule.TypeGrammar, "NoContraction_", NoContraction)
	reg.Register(rule.TypeLanguage, "Word_toward", Toward)
	reg.Register(rule.TypeLanguage, "AvoidEtc", AvoidEtc)

	reg.Register(rule.TypePunctuation, "NoAmpersand", NoAmpersand)
	reg.Register(rule.TypePunctuation, "PercentSymbol", PercentSymbol)
	reg.Register(rule.TypePunctuation, "NoApostrophePlurals", NoApostrophePlurals)
	reg.Register(rule.TypePunctuation, "NumberCommas", NumberCommas)
	return reg
}

// Register binds an exact check value.
func (reg *Registry) Register(t rule.Type, checkValue string, fn Func) {
	reg.exact[key{t, checkValue}] = fn
}

// RegisterPrefix binds every check value starting with prefix. Exact
// bindings win over prefixes.
func (reg *Registry) RegisterPrefix(t rule.Type, prefix string, fn Func) {
	reg.prefixes = append(reg.prefixes, prefixEntry{t, prefix, fn})
}

// Lookup finds the checker for a rule type and check value.
func (reg *Registry) Lookup(t rule.Type, checkValue string) (Func, bool) {
	if fn, ok := reg.exact[key{t, checkValue}]; ok {
		return fn, true
	}
	for _, p := range reg.prefixes {
		if p.typ == t && strings.HasPrefix(checkValue, p.prefix) {
			return p.fn, true
		}
	}
	return nil, false
}

// Implemented reports whether r reaches a checker.
func (reg *Registry) Implemented(r rule.Rule) bool {
	_, ok := reg.Lookup(r.Type, r.CheckValue)
	return ok
}

// Dispatch runs the checker for r. A rule with no checker is logged, counted
// and yields an empty result.
func (reg *Registry) Dispatch(doc *document.Document, r rule.Rule) (Result, error) {
	fn, ok := reg.Lookup(r.Type, r.CheckValue)
	if !ok {
		reg.log.Info("rule not implemented",
			zap.String("rule", r.Label()),
			zap.String("rule_type", string(r.Type)),
			zap.String("check_value", r.CheckValue))
		if reg.rec != nil {
			reg.rec.RuleUnimplemented(string(r.Type), r.CheckValue)
		}
		return Result{}, nil
	}
	res, err := fn(doc, r)
	if err != nil {
		return Result{}, fmt.Errorf("check.Dispatch: %s: %w", r.Label(), err)
	}
	stamp(res.Issues, r)
	stamp(res.Fixes, r)
	reg.log.Debug("rule applied",
		zap.String("check_value", r.CheckValue),
		zap.Int("issues", len(res.Issues)),
		zap.Int("fixes", len(res.Fixes)))
	return res, nil
}

func stamp(fs []Finding, r rule.Rule) {
	for i := range fs {
		fs[i].RuleID = r.ID
		fs[i].CheckValue = r.CheckValue
	}
}
