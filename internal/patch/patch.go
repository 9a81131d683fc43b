// Package patch renders the text a run changed as a unified diff, one
// paragraph per line.
package patch

import (
	"fmt"
	"os"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/dshills/docstyle/internal/document"
)

// Lines returns the paragraph texts of doc, newline terminated.
func Lines(doc *document.Document) []string {
	out := make([]string, len(doc.Paragraphs))
	for i, p := range doc.Paragraphs {
		out[i] = p.Text() + "\n"
	}
	return out
}

// Unified diffs before against after. An unchanged text yields "".
// Formatting-only fixes do not show up.
func Unified(name string, before, after *document.Document) (string, error) {
	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        Lines(before),
		B:        Lines(after),
		FromFile: "a/" + name,
		ToFile:   "b/" + name,
		Context:  1,
	})
	if err != nil {
		return "", fmt.Errorf("patch.Unified: %w", err)
	}
	return diff, nil
}

// WriteFile writes diff to outPath. If diff is empty, no file is created.
func WriteFile(diff, outPath string) error {
	if diff == "" {
		return nil
	}
	if err := os.WriteFile(outPath, []byte(diff), 0644); err != nil {
		return fmt.Errorf("patch.WriteFile: %w", err)
	}
	return nil
}
