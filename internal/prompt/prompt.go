// Package prompt builds the LLM prompts for AI style correction.
package prompt

import (
	"fmt"
	"strings"

	"github.com/dshills/docstyle/internal/rule"
	"github.com/dshills/docstyle/internal/schema"
)

// BuildOpts configures prompt construction.
type BuildOpts struct {
	Rules []rule.Rule
	Text  string
	Guide string
}

// DefaultGuide names the style guide the editor is asked to apply.
const DefaultGuide = "Mace Control Centre Writing Style Guide"

// Build assembles the correction prompt. Rules are grouped by type in the
// order each type first appears.
func Build(opts BuildOpts) string {
	guide := opts.Guide
	if guide == "" {
		guide = DefaultGuide
	}
	var b strings.Builder

	// 1. Role
	fmt.Fprintf(&b, "You are a professional document editor specializing in the %s.\n\n", guide)
	b.WriteString("Your task is to review and correct the following document according to these style rules:\n")

	// 2. Rules by type
	var order []rule.Type
	byType := map[rule.Type][]rule.Rule{}
	for _, r := range opts.Rules {
		if _, seen := byType[r.Type]; !seen {
			order = append(order, r.Type)
		}
		byType[r.Type] = append(byType[r.Type], r)
	}
	for _, t := range order {
		fmt.Fprintf(&b, "\n**%s Rules:**\n", t)
		for _, r := range byType[t] {
			if r.ExpectedValue != "" {
				fmt.Fprintf(&b, "- %s (expected: %s)\n", r.Label(), r.ExpectedValue)
			} else {
				fmt.Fprintf(&b, "- %s\n", r.Label())
			}
		}
	}

	// 3. Document
	b.WriteString("\n**Document Text:**\n<document>\n")
	b.WriteString(opts.Text)
	b.WriteString("\n</document>\n\n")

	// 4. Output contract
	b.WriteString(`**Instructions:**
1. Return the CORRECTED document text. Keep paragraphs separated by one blank line and keep the paragraph count unchanged.
2. Change only what the rules above require.
3. List ALL changes you made.

You MUST output ONLY valid JSON matching the schema below. No markdown, no prose outside JSON.

`)
	b.WriteString(schemaDefinition)
	b.WriteString("\n")
	return b.String()
}

// BuildRepair constructs a follow-up prompt to fix schema validation errors.
func BuildRepair(originalOutput string, errors []schema.ValidationError) string {
	var b strings.Builder
	b.WriteString("The JSON output you returned has validation errors. Fix ONLY the errors listed below and return the corrected JSON.\n\n")
	b.WriteString("## Validation Errors\n\n")
	for _, e := range errors {
		fmt.Fprintf(&b, "- %s: %s\n", e.Path, e.Message)
	}
	b.WriteString("\n## Original Output\n\n```json\n")
	b.WriteString(originalOutput)
	b.WriteString("\n```\n\nReturn ONLY the corrected JSON. No prose.\n")
	return b.String()
}

const schemaDefinition = `## Output JSON Schema

{
  "corrected_text": string,
  "changes": [
    {"issue": string, "fix": string}
  ]
}`
