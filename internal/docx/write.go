package docx

import (
	"encoding/xml"
	"strings"

	"github.com/dshills/docstyle/internal/document"
)

// rPr children that must follow w:color in schema order.
var afterColor = map[string]bool{
	"spacing": true, "w": true, "kern": true, "position": true, "sz": true,
	"szCs": true, "highlight": true, "u": true, "effect": true, "bdr": true,
	"shd": true, "fitText": true, "vertAlign": true, "rtl": true, "cs": true,
	"em": true, "lang": true, "eastAsianLayout": true, "specVanish": true, "oMath": true,
}

// apply pushes document edits into the XML tree. Runs created after load
// are appended to their paragraph; untouched runs keep their markup.
func (f *File) apply() {
	for _, p := range f.doc.Paragraphs {
		pn, ok := f.paras[p]
		if !ok {
			continue
		}
		for _, r := range p.Runs {
			rn, ok := f.runs[r]
			if !ok {
				rn = elem(f.prefix, "r")
				pn.children = append(pn.children, rn)
				f.runs[r] = rn
			}
			before := f.orig[r]
			if r.Text != before.Text {
				f.setText(rn, r.Text)
			}
			if r.Font != before.Font && r.Font != "" {
				f.setFont(rn, r.Font)
			}
			if !sameColor(r.Color, before.Color) {
				f.setColor(rn, r.Color)
			}
			f.orig[r] = *r
		}
	}
}

func sameColor(a, b *document.RGB) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// setText replaces the run content, keeping its properties.
func (f *File) setText(rn *node, text string) {
	var kept []*node
	if rpr := rn.child(f.prefix, "rPr"); rpr != nil {
		kept = append(kept, rpr)
	}
	rn.children = kept

	var seg strings.Builder
	flush := func() {
		if seg.Len() == 0 {
			return
		}
		t := elem(f.prefix, "t", xml.Attr{Name: xml.Name{Space: "xml", Local: "space"}, Value: "preserve"})
		t.children = []*node{{leaf: xml.CharData(seg.String())}}
		rn.children = append(rn.children, t)
		seg.Reset()
	}
	for _, c := range text {
		switch c {
		case '\t':
			flush()
			rn.children = append(rn.children, elem(f.prefix, "tab"))
		case '\n':
			flush()
			rn.children = append(rn.children, elem(f.prefix, "br"))
		default:
			seg.WriteRune(c)
		}
	}
	flush()
}

func (f *File) runProps(rn *node) *node {
	if rpr := rn.child(f.prefix, "rPr"); rpr != nil {
		return rpr
	}
	rpr := elem(f.prefix, "rPr")
	rn.insertAt(0, rpr)
	return rpr
}

func (f *File) setFont(rn *node, font string) {
	rpr := f.runProps(rn)
	fonts := rpr.child(f.prefix, "rFonts")
	if fonts == nil {
		fonts = elem(f.prefix, "rFonts")
		at := 0
		if len(rpr.children) > 0 && rpr.children[0].is(f.prefix, "rStyle") {
			at = 1
		}
		rpr.insertAt(at, fonts)
	}
	fonts.setAttr(f.prefix, "ascii", font)
	fonts.setAttr(f.prefix, "hAnsi", font)
}

// setColor writes an explicit RGB colour. Theme references are dropped
// since Word renders them in preference to w:val.
func (f *File) setColor(rn *node, c *document.RGB) {
	rpr := f.runProps(rn)
	col := rpr.child(f.prefix, "color")
	if c == nil {
		if col != nil {
			rpr.remove(col)
		}
		return
	}
	if col == nil {
		col = elem(f.prefix, "color")
		at := len(rpr.children)
		for i, ch := range rpr.children {
			if ch.start != nil && ch.start.Name.Space == f.prefix && afterColor[ch.start.Name.Local] {
				at = i
				break
			}
		}
		rpr.insertAt(at, col)
	}
	col.dropAttrs("themeColor", "themeTint", "themeShade")
	col.setAttr(f.prefix, "val", c.Hex())
}
