// Package docxtest builds minimal Word packages in memory for tests.
package docxtest

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"
	"testing"
)

// Run describes one w:r. Empty Font and Color leave the property unset.
type Run struct {
	Text  string
	Font  string
	Color string // hex, e.g. "FF0000"
	// ThemeColor and ThemeShade add a theme reference to the colour,
	// e.g. "accent1" and "BF".
	ThemeColor string
	ThemeShade string
}

type paragraph struct {
	styleID string
	runs    []Run
}

// Builder accumulates paragraphs for a package.
type Builder struct {
	paras []paragraph
}

// New returns an empty builder.
func New() *Builder { return &Builder{} }

// Heading1 adds a paragraph styled Heading1.
func (b *Builder) Heading1(runs ...Run) *Builder {
	return b.Paragraph("Heading1", runs...)
}

// Body adds an unstyled paragraph.
func (b *Builder) Body(runs ...Run) *Builder {
	return b.Paragraph("", runs...)
}

// Text adds an unstyled paragraph with a single plain run.
func (b *Builder) Text(s string) *Builder {
	return b.Body(Run{Text: s})
}

// Paragraph adds a paragraph with the given style ID.
func (b *Builder) Paragraph(styleID string, runs ...Run) *Builder {
	b.paras = append(b.paras, paragraph{styleID: styleID, runs: runs})
	return b
}

// DocumentXML renders word/document.xml.
func (b *Builder) DocumentXML() string {
	var s strings.Builder
	s.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n")
	s.WriteString(`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships"><w:body>`)
	for _, p := range b.paras {
		s.WriteString("<w:p>")
		if p.styleID != "" {
			fmt.Fprintf(&s, `<w:pPr><w:pStyle w:val="%s"/></w:pPr>`, p.styleID)
		}
		for _, r := range p.runs {
			s.WriteString("<w:r>")
			if r.Font != "" || r.Color != "" {
				s.WriteString("<w:rPr>")
				if r.Font != "" {
					fmt.Fprintf(&s, `<w:rFonts w:ascii="%s" w:hAnsi="%s"/>`, escape(r.Font), escape(r.Font))
				}
				s.WriteString("<w:b/>")
				if r.Color != "" {
					fmt.Fprintf(&s, `<w:color w:val="%s"`, r.Color)
					if r.ThemeColor != "" {
						fmt.Fprintf(&s, ` w:themeColor="%s"`, r.ThemeColor)
					}
					if r.ThemeShade != "" {
						fmt.Fprintf(&s, ` w:themeShade="%s"`, r.ThemeShade)
					}
					s.WriteString("/>")
				}
				s.WriteString(`<w:sz w:val="24"/>`)
				s.WriteString("</w:rPr>")
			}
			fmt.Fprintf(&s, `<w:t xml:space="preserve">%s</w:t>`, escape(r.Text))
			s.WriteString("</w:r>")
		}
		s.WriteString("</w:p>")
	}
	s.WriteString(`<w:sectPr><w:pgSz w:w="11906" w:h="16838"/></w:sectPr></w:body></w:document>`)
	return s.String()
}

// Bytes returns the package as .docx bytes.
func (b *Builder) Bytes() ([]byte, error) {
	parts := []struct{ name, body string }{
		{"[Content_Types].xml", contentTypes},
		{"_rels/.rels", rootRels},
		{"word/document.xml", b.DocumentXML()},
		{"word/styles.xml", styles},
		{"word/_rels/document.xml.rels", documentRels},
	}
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, p := range parts {
		w, err := zw.Create(p.name)
		if err != nil {
			return nil, err
		}
		if _, err := w.Write([]byte(p.body)); err != nil {
			return nil, err
		}
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Build is Bytes for tests.
func (b *Builder) Build(tb testing.TB) []byte {
	tb.Helper()
	data, err := b.Bytes()
	if err != nil {
		tb.Fatalf("docxtest: %v", err)
	}
	return data
}

// Part extracts a named part from package bytes.
func Part(tb testing.TB, data []byte, name string) string {
	tb.Helper()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		tb.Fatalf("docxtest: open package: %v", err)
	}
	for _, f := range zr.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			tb.Fatalf("docxtest: open %s: %v", name, err)
		}
		defer rc.Close()
		var out bytes.Buffer
		if _, err := out.ReadFrom(rc); err != nil {
			tb.Fatalf("docxtest: read %s: %v", name, err)
		}
		return out.String()
	}
	tb.Fatalf("docxtest: no part %s", name)
	return ""
}

func escape(s string) string {
	var b strings.Builder
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}

const contentTypes = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"><Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/><Default Extension="xml" ContentType="application/xml"/><Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/><Override PartName="/word/styles.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.styles+xml"/></Types>`

const rootRels = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"><Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/></Relationships>`

const documentRels = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"><Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/styles" Target="styles.xml"/></Relationships>`

const styles = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:styles xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:style w:type="paragraph" w:default="1" w:styleId="Normal"><w:name w:val="Normal"/></w:style><w:style w:type="paragraph" w:styleId="Heading1"><w:name w:val="heading 1"/><w:basedOn w:val="Normal"/></w:style><w:style w:type="paragraph" w:styleId="Heading2"><w:name w:val="heading 2"/><w:basedOn w:val="Normal"/></w:style><w:style w:type="paragraph" w:styleId="Quote"><w:name w:val="Quote"/></w:style></w:styles>`
