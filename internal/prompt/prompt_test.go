package prompt

import (
	"strings"
	"testing"

	"github.com/dshills/docstyle/internal/rule"
	"github.com/dshills/docstyle/internal/schema"
)

func TestBuild(t *testing.T) {
	rules := []rule.Rule{
		{Title: "Use British English spelling - 'colour' not 'color'", Type: rule.TypeLanguage, ExpectedValue: "colour"},
		{Title: "Avoid ampersand (&) - use 'and' instead", Type: rule.TypePunctuation},
		{Title: "Use 'toward' not 'towards'", Type: rule.TypeLanguage},
	}
	text := Build(BuildOpts{Rules: rules, Text: "The color & the center."})

	checks := []string{
		"Mace Control Centre Writing Style Guide",
		"**Language Rules:**",
		"**Punctuation Rules:**",
		"- Use British English spelling - 'colour' not 'color' (expected: colour)",
		"<document>\nThe color & the center.\n</document>",
		"ONLY valid JSON",
		`"corrected_text": string`,
	}
	for _, want := range checks {
		if !strings.Contains(text, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
	lang := strings.Index(text, "**Language Rules:**")
	punct := strings.Index(text, "**Punctuation Rules:**")
	toward := strings.Index(text, "Use 'toward'")
	if !(lang < toward && toward < punct) {
		t.Error("rules not grouped by type in first-seen order")
	}
}

func TestBuildCustomGuide(t *testing.T) {
	text := Build(BuildOpts{Guide: "House Style", Text: "x"})
	if !strings.Contains(text, "specializing in the House Style") {
		t.Error("custom guide missing from prompt")
	}
}

func TestBuildRepair(t *testing.T) {
	errs := []schema.ValidationError{
		{Path: "changes[0].fix", Message: "required"},
	}
	text := BuildRepair(`{"broken": true}`, errs)
	if !strings.Contains(text, "changes[0].fix") {
		t.Error("repair prompt missing error path")
	}
	if !strings.Contains(text, `{"broken": true}`) {
		t.Error("repair prompt missing original output")
	}
}
