// Package document is the in-memory paragraph and run tree the checkers walk.
// Loaders build it from file bytes; savers write the mutated tree back.
package document

import (
	"fmt"
	"strconv"
	"strings"
)

// StyleHeading1 is the display name of the top-level heading style.
const StyleHeading1 = "Heading 1"

// Document is an ordered list of paragraphs.
type Document struct {
	Paragraphs []*Paragraph
}

// Paragraph carries a style name and its runs in order.
type Paragraph struct {
	Style string
	Runs  []*Run
}

// Run is a span of text with uniform formatting. An empty Font and a nil
// Color mean the run inherits from its style.
type Run struct {
	Text  string
	Font  string
	Color *RGB
}

// Text joins the run texts of p.
func (p *Paragraph) Text() string {
	var b strings.Builder
	for _, r := range p.Runs {
		b.WriteString(r.Text)
	}
	return b.String()
}

// AddRun appends an unformatted run holding text.
func (p *Paragraph) AddRun(text string) *Run {
	r := &Run{Text: text}
	p.Runs = append(p.Runs, r)
	return r
}

// SetText puts text into the first run and empties the rest, creating a run
// when p has none. Formatting spans after the first run are lost.
func (p *Paragraph) SetText(text string) {
	if len(p.Runs) == 0 {
		p.AddRun(text)
		return
	}
	p.Runs[0].Text = text
	for _, r := range p.Runs[1:] {
		r.Text = ""
	}
}

// Runs calls fn for every run in document order.
func (d *Document) Runs(fn func(p *Paragraph, r *Run)) {
	for _, p := range d.Paragraphs {
		for _, r := range p.Runs {
			fn(p, r)
		}
	}
}

// WithStyle returns the paragraphs whose style is name.
func (d *Document) WithStyle(name string) []*Paragraph {
	var out []*Paragraph
	for _, p := range d.Paragraphs {
		if p.Style == name {
			out = append(out, p)
		}
	}
	return out
}

// Text returns the non-empty paragraph texts joined by a blank line.
func (d *Document) Text() string {
	var parts []string
	for _, p := range d.NonEmpty() {
		parts = append(parts, p.Text())
	}
	return strings.Join(parts, "\n\n")
}

// NonEmpty returns the paragraphs whose text is not blank.
func (d *Document) NonEmpty() []*Paragraph {
	var out []*Paragraph
	for _, p := range d.Paragraphs {
		if strings.TrimSpace(p.Text()) != "" {
			out = append(out, p)
		}
	}
	return out
}

// RGB is a 24-bit colour.
type RGB struct {
	R, G, B uint8
}

// ParseRGB parses "r,g,b" with each component in 0..255.
func ParseRGB(s string) (RGB, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return RGB{}, fmt.Errorf("document.ParseRGB: want r,g,b, got %q", s)
	}
	var c [3]uint8
	for i, p := range parts {
		n, err := strconv.ParseUint(strings.TrimSpace(p), 10, 8)
		if err != nil {
			return RGB{}, fmt.Errorf("document.ParseRGB: component %d of %q: %w", i, s, err)
		}
		c[i] = uint8(n)
	}
	return RGB{c[0], c[1], c[2]}, nil
}

// ParseHex parses a six digit hex colour such as "003399".
func ParseHex(s string) (RGB, error) {
	s = strings.TrimPrefix(s, "#")
	if len(s) != 6 {
		return RGB{}, fmt.Errorf("document.ParseHex: want 6 hex digits, got %q", s)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return RGB{}, fmt.Errorf("document.ParseHex: %w", err)
	}
	return RGB{uint8(v >> 16), uint8(v >> 8), uint8(v)}, nil
}

// Hex returns the colour as upper-case hex without a leading '#'.
func (c RGB) Hex() string {
	return fmt.Sprintf("%02X%02X%02X", c.R, c.G, c.B)
}

// String renders the colour as a tuple, "(0, 51, 153)".
func (c RGB) String() string {
	return fmt.Sprintf("(%d, %d, %d)", c.R, c.G, c.B)
}
