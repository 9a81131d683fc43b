package check

import (
	"strings"

	"github.com/dshills/docstyle/internal/apperr"
	"github.com/dshills/docstyle/internal/document"
	"github.com/dshills/docstyle/internal/rule"
)

// AllTextFont checks every run holding visible text. A run with no explicit
// font counts as wrong.
func AllTextFont(doc *document.Document, r rule.Rule) (Result, error) {
	var res Result
	found, fixed := 0, 0
	doc.Runs(func(_ *document.Paragraph, run *document.Run) {
		if strings.TrimSpace(run.Text) == "" || run.Font == r.ExpectedValue {
			return
		}
		found++
		if r.AutoFix {
			run.Font = r.ExpectedValue
			fixed++
		}
	})
	if found > 0 {
		res.issue(found, "", r.ExpectedValue, "Found %d text runs with incorrect font", found)
	}
	if fixed > 0 {
		res.fix(fixed, "", r.ExpectedValue, "Fixed %d text runs to %s", fixed, r.ExpectedValue)
	}
	return res, nil
}

// Heading1Font judges each Heading 1 paragraph by its first run and fixes
// every run. An empty heading reads as having no font; its fix touches
// nothing and carries count 0.
func Heading1Font(doc *document.Document, r rule.Rule) (Result, error) {
	var res Result
	for _, p := range doc.WithStyle(document.StyleHeading1) {
		current := ""
		if len(p.Runs) > 0 {
			current = p.Runs[0].Font
		}
		if current == r.ExpectedValue {
			continue
		}
		shown := current
		if shown == "" {
			shown = "None"
		}
		res.issue(1, current, r.ExpectedValue, "Heading 1 has incorrect font: %s", shown)
		if r.AutoFix {
			for _, run := range p.Runs {
				run.Font = r.ExpectedValue
			}
			res.fix(len(p.Runs), current, r.ExpectedValue, "Fixed Heading 1 font to %s", r.ExpectedValue)
		}
	}
	return res, nil
}

// Heading1Color checks Heading 1 runs that carry an explicit colour. Runs
// inheriting their colour are left alone.
func Heading1Color(doc *document.Document, r rule.Rule) (Result, error) {
	want, err := document.ParseRGB(r.ExpectedValue)
	if err != nil {
		return Result{}, apperr.Wrap("check.Heading1Color", apperr.ErrRule, err)
	}
	var res Result
	for _, p := range doc.WithStyle(document.StyleHeading1) {
		for _, run := range p.Runs {
			if run.Color == nil || *run.Color == want {
				continue
			}
			got := run.Color.Hex()
			res.issue(1, got, want.Hex(), "Heading 1 color incorrect: %s", got)
			if r.AutoFix {
				c := want
				run.Color = &c
				res.fix(1, got, want.Hex(), "Fixed Heading 1 color to %s", want)
			}
		}
	}
	return res, nil
}
