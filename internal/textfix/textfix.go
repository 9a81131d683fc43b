// Package textfix holds the pure text transforms used by the style checkers.
// Every transform returns the rewritten text and the number of occurrences it
// found, so callers can count without fixing and fix without recounting.
package textfix

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var (
	towardsRe         = regexp.MustCompile(`(?i)\btowards\b`)
	etcRe             = regexp.MustCompile(`(?i)\betc\.?\b`)
	percentRe         = regexp.MustCompile(`(\d+)%`)
	apostropheRe      = regexp.MustCompile(`\b[A-Z]{2,}'s\b`)
	longNumberRe      = regexp.MustCompile(`\b\d{4,}\b`)
	yearLow, yearHigh = 1900, 2099
)

// Word matches one word case-insensitively on word boundaries. Compile it
// once per rule and reuse it for every run.
type Word struct {
	re *regexp.Regexp
}

// NewWord compiles a matcher for w. An empty w matches nothing.
func NewWord(w string) Word {
	if w == "" {
		return Word{}
	}
	return Word{re: regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(w) + `\b`)}
}

// Count counts the occurrences of the word in text.
func (w Word) Count(text string) int {
	if w.re == nil {
		return 0
	}
	return len(w.re.FindAllStringIndex(text, -1))
}

// Replace replaces each occurrence with repl, carrying over the case shape
// of the match.
func (w Word) Replace(text, repl string) (string, int) {
	if w.re == nil {
		return text, 0
	}
	n := 0
	out := w.re.ReplaceAllStringFunc(text, func(m string) string {
		n++
		return MatchCase(m, repl)
	})
	return out, n
}

// MatchCase shapes repl after original: all upper, leading capital, or lower.
func MatchCase(original, repl string) string {
	switch {
	case isUpper(original):
		return cases.Upper(language.BritishEnglish).String(repl)
	case startsUpper(original):
		return capitalize(repl)
	default:
		return cases.Lower(language.BritishEnglish).String(repl)
	}
}

// isUpper reports whether s has at least one cased letter and no lower-case
// letters.
func isUpper(s string) bool {
	cased := false
	for _, r := range s {
		if unicode.IsLower(r) {
			return false
		}
		if unicode.IsUpper(r) {
			cased = true
		}
	}
	return cased
}

func startsUpper(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	return unicode.IsUpper(r)
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	head := cases.Title(language.BritishEnglish).String(string(r))
	return head + cases.Lower(language.BritishEnglish).String(s[size:])
}

// ReplaceLiteral replaces every case-sensitive occurrence of old with repl.
func ReplaceLiteral(text, old, repl string) (string, int) {
	if old == "" {
		return text, 0
	}
	n := strings.Count(text, old)
	if n == 0 {
		return text, 0
	}
	return strings.ReplaceAll(text, old, repl), n
}

// Toward rewrites "towards" as "toward". The replacement is always lower
// case.
func Toward(text string) (string, int) {
	n := CountToward(text)
	if n == 0 {
		return text, 0
	}
	return towardsRe.ReplaceAllString(text, "toward"), n
}

// CountToward counts "towards" in any case.
func CountToward(text string) int {
	return len(towardsRe.FindAllStringIndex(text, -1))
}

// CountEtc counts "etc" with or without its trailing period.
func CountEtc(text string) int {
	return len(etcRe.FindAllStringIndex(text, -1))
}

// Ampersand replaces each "&" with "and". The substitution is by character,
// not by word: the text before the ampersand is left touching "and", and a
// space is inserted only when a non-space character follows, so "R&D" becomes
// "Rand D".
func Ampersand(text string) (string, int) {
	n := strings.Count(text, "&")
	if n == 0 {
		return text, 0
	}
	var b strings.Builder
	b.Grow(len(text) + 3*n)
	for i := 0; i < len(text); i++ {
		if text[i] != '&' {
			b.WriteByte(text[i])
			continue
		}
		b.WriteString("and")
		if i+1 < len(text) && !isSpaceByte(text[i+1]) {
			b.WriteByte(' ')
		}
	}
	return b.String(), n
}

func isSpaceByte(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

// Percent spells out a percent sign that follows digits.
func Percent(text string) (string, int) {
	n := len(percentRe.FindAllStringIndex(text, -1))
	if n == 0 {
		return text, 0
	}
	return percentRe.ReplaceAllString(text, "${1} percent"), n
}

// CountApostrophePlurals counts acronym plurals written with an apostrophe,
// such as "CD's".
func CountApostrophePlurals(text string) int {
	return len(apostropheRe.FindAllStringIndex(text, -1))
}

// NumberCommas inserts thousands separators into runs of four or more digits.
// Values that read as years (1900 to 2099) are left alone.
func NumberCommas(text string) (string, int) {
	n := 0
	out := longNumberRe.ReplaceAllStringFunc(text, func(m string) string {
		if isYear(m) {
			return m
		}
		n++
		return GroupThousands(m)
	})
	return out, n
}

func isYear(digits string) bool {
	v, err := strconv.Atoi(digits)
	return err == nil && v >= yearLow && v <= yearHigh
}

var groupPrinter = message.NewPrinter(language.English)

// GroupThousands formats a digit string with comma separators.
func GroupThousands(digits string) string {
	if v, err := strconv.ParseInt(digits, 10, 64); err == nil {
		return groupPrinter.Sprintf("%d", v)
	}
	// too large for int64
	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
