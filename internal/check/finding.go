// Package check holds the style checkers and the registry that routes a rule
// to its checker.
package check

import "fmt"

// Kind distinguishes a detected problem from an applied correction.
type Kind string

const (
	KindIssue Kind = "issue"
	KindFix   Kind = "fix"
)

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	return k == KindIssue || k == KindFix
}

// Finding is one issue or fix produced by a rule. Message is the text shown
// in reports.
type Finding struct {
	RuleID     string `json:"rule_id,omitempty"`
	CheckValue string `json:"check_value"`
	Kind       Kind   `json:"kind"`
	Count      int    `json:"count"`
	Before     string `json:"before,omitempty"`
	After      string `json:"after,omitempty"`
	Message    string `json:"message"`
}

func (f Finding) String() string { return f.Message }

// Result is what one rule contributes to a run.
type Result struct {
	Issues []Finding `json:"issues"`
	Fixes  []Finding `json:"fixes"`
}

// Add appends o to r.
func (r *Result) Add(o Result) {
	r.Issues = append(r.Issues, o.Issues...)
	r.Fixes = append(r.Fixes, o.Fixes...)
}

func (r *Result) issue(count int, before, after, format string, args ...any) {
	r.Issues = append(r.Issues, Finding{
		Kind: KindIssue, Count: count, Before: before, After: after,
		Message: fmt.Sprintf(format, args...),
	})
}

func (r *Result) fix(count int, before, after, format string, args ...any) {
	r.Fixes = append(r.Fixes, Finding{
		Kind: KindFix, Count: count, Before: before, After: after,
		Message: fmt.Sprintf(format, args...),
	})
}

// Messages flattens findings to their report strings.
func Messages(fs []Finding) []string {
	out := make([]string, len(fs))
	for i, f := range fs {
		out[i] = f.Message
	}
	return out
}

// Total sums the counts of fs.
func Total(fs []Finding) int {
	n := 0
	for _, f := range fs {
		n += f.Count
	}
	return n
}
