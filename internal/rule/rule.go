// Package rule defines declarative style rules, their ordering, and the
// built-in rule catalogues.
package rule

import "sort"

// DefaultPriority is assigned to rules whose store record has no priority.
const DefaultPriority = 999

// Rule is one declarative style check. Rules are values; nothing mutates a
// rule once it has been loaded.
type Rule struct {
	ID            string  `yaml:"id,omitempty" json:"id,omitempty"`
	Title         string  `yaml:"title" json:"title"`
	Type          Type    `yaml:"rule_type" json:"rule_type"`
	DocType       DocType `yaml:"doc_type" json:"doc_type"`
	CheckValue    string  `yaml:"check_value" json:"check_value"`
	ExpectedValue string  `yaml:"expected_value" json:"expected_value"`
	AutoFix       bool    `yaml:"auto_fix" json:"auto_fix"`
	UseAI         bool    `yaml:"use_ai" json:"use_ai"`
	Priority      int     `yaml:"priority" json:"priority"`
}

// AppliesTo reports whether r should run against documents of type dt.
func (r Rule) AppliesTo(dt DocType) bool {
	return r.DocType == dt || r.DocType == DocBoth
}

// Label returns the title, falling back to the check value.
func (r Rule) Label() string {
	if r.Title != "" {
		return r.Title
	}
	return r.CheckValue
}

// SortByPriority orders rules by ascending priority. Ties keep source order.
func SortByPriority(rules []Rule) {
	sort.SliceStable(rules, func(i, j int) bool {
		return rules[i].Priority < rules[j].Priority
	})
}

// ForDocType returns the rules applying to dt in priority order.
// The input slice is not modified.
func ForDocType(rules []Rule, dt DocType) []Rule {
	var out []Rule
	for _, r := range rules {
		if r.AppliesTo(dt) {
			out = append(out, r)
		}
	}
	SortByPriority(out)
	return out
}

// Partition splits rules into those folded into the AI correction call and
// those handled by a direct checker. Order is preserved in both.
func Partition(rules []Rule) (ai, hardCoded []Rule) {
	for _, r := range rules {
		if r.UseAI {
			ai = append(ai, r)
		} else {
			hardCoded = append(hardCoded, r)
		}
	}
	return ai, hardCoded
}
