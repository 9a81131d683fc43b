package check

import (
	"strings"

	"github.com/dshills/docstyle/internal/document"
	"github.com/dshills/docstyle/internal/rule"
	"github.com/dshills/docstyle/internal/textfix"
)

// perRun applies a text transform run by run. Matches spanning two runs are
// not seen. With fix nil or auto_fix off only count is used.
func perRun(doc *document.Document, autoFix bool, count func(string) int, fix func(string) (string, int)) (found, fixed int) {
	doc.Runs(func(_ *document.Paragraph, run *document.Run) {
		if run.Text == "" {
			return
		}
		n := count(run.Text)
		if n == 0 {
			return
		}
		found += n
		if autoFix && fix != nil {
			var m int
			run.Text, m = fix(run.Text)
			fixed += m
		}
	})
	return found, fixed
}

// BritishSpelling replaces an American spelling with the British form,
// keeping the case shape of each match. The check value suffix may name
// either spelling.
func BritishSpelling(doc *document.Document, r rule.Rule) (Result, error) {
	american := textfix.ResolveAmerican(strings.TrimPrefix(r.CheckValue, "BritishSpelling_"))
	british := r.ExpectedValue
	if british == "" {
		british = textfix.BritishFor(american)
	}
	var res Result
	if british == "" || strings.EqualFold(american, british) {
		return res, nil
	}
	word := textfix.NewWord(american)
	found, fixed := perRun(doc, r.AutoFix, word.Count,
		func(s string) (string, int) { return word.Replace(s, british) })
	if found > 0 {
		res.issue(found, american, british, "Found %d instances of American spelling '%s'", found, american)
	}
	if fixed > 0 {
		res.fix(fixed, american, british, "Fixed %d instances to British spelling '%s'", fixed, british)
	}
	return res, nil
}

// NoContraction expands a contraction. Matching is literal and case
// sensitive.
func NoContraction(doc *document.Document, r rule.Rule) (Result, error) {
	contraction := textfix.ResolveContraction(strings.TrimPrefix(r.CheckValue, "NoContraction_"))
	expanded := r.ExpectedValue
	if expanded == "" {
		expanded = textfix.Contractions[contraction]
	}
	var res Result
	if contraction == "" || expanded == "" {
		return res, nil
	}
	found, fixed := perRun(doc, r.AutoFix,
		func(s string) int { return strings.Count(s, contraction) },
		func(s string) (string, int) { return textfix.ReplaceLiteral(s, contraction, expanded) })
	if found > 0 {
		res.issue(found, contraction, expanded, "Found %d instances of contraction '%s'", found, contraction)
	}
	if fixed > 0 {
		res.fix(fixed, contraction, expanded, "Fixed %d contractions to '%s'", fixed, expanded)
	}
	return res, nil
}

// Toward rewrites "towards" as "toward".
func Toward(doc *document.Document, r rule.Rule) (Result, error) {
	var res Result
	found, fixed := perRun(doc, r.AutoFix, textfix.CountToward, textfix.Toward)
	if found > 0 {
		res.issue(found, "towards", "toward", "Found %d instances of 'towards'", found)
	}
	if fixed > 0 {
		res.fix(fixed, "towards", "toward", "Fixed %d instances to 'toward'", fixed)
	}
	return res, nil
}

// AvoidEtc only reports.
func AvoidEtc(doc *document.Document, r rule.Rule) (Result, error) {
	var res Result
	found, _ := perRun(doc, false, textfix.CountEtc, nil)
	if found > 0 {
		res.issue(found, "etc.", "", "Found %d instances of 'etc.' - be specific instead", found)
	}
	return res, nil
}

// NoAmpersand replaces each "&" with "and", literally and without spacing.
func NoAmpersand(doc *document.Document, r rule.Rule) (Result, error) {
	var res Result
	found, fixed := perRun(doc, r.AutoFix,
		func(s string) int { return strings.Count(s, "&") },
		textfix.Ampersand)
	if found > 0 {
		res.issue(found, "&", "and", "Found %d ampersands (&)", found)
	}
	if fixed > 0 {
		res.fix(fixed, "&", "and", "Fixed %d ampersands to 'and'", fixed)
	}
	return res, nil
}

// PercentSymbol rewrites "40%" as "40 percent".
func PercentSymbol(doc *document.Document, r rule.Rule) (Result, error) {
	var res Result
	found, fixed := perRun(doc, r.AutoFix,
		func(s string) int { _, n := textfix.Percent(s); return n },
		textfix.Percent)
	if found > 0 {
		res.issue(found, "%", "percent", "Found %d percent symbols (%%)", found)
	}
	if fixed > 0 {
		res.fix(fixed, "%", "percent", "Fixed %d percent symbols to 'percent'", fixed)
	}
	return res, nil
}

// NoApostrophePlurals only reports.
func NoApostrophePlurals(doc *document.Document, r rule.Rule) (Result, error) {
	var res Result
	found, _ := perRun(doc, false, textfix.CountApostrophePlurals, nil)
	if found > 0 {
		res.issue(found, "", "", "Found %d incorrect apostrophes in plurals (e.g., CD's should be CDs)", found)
	}
	return res, nil
}

// NumberCommas groups numbers of four or more digits by thousands,
// leaving plausible years (1900-2099) alone.
func NumberCommas(doc *document.Document, r rule.Rule) (Result, error) {
	var res Result
	found, fixed := perRun(doc, r.AutoFix,
		func(s string) int { _, n := textfix.NumberCommas(s); return n },
		textfix.NumberCommas)
	if found > 0 {
		res.issue(found, "", "", "Found %d numbers missing commas", found)
	}
	if fixed > 0 {
		res.fix(fixed, "", "", "Added commas to %d numbers", fixed)
	}
	return res, nil
}
