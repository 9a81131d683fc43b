// Package docx loads WordprocessingML packages into a document.Document and
// writes checker edits back into the original package. Only body-level
// paragraphs and their direct runs are modelled; every other part and
// element passes through unchanged.
package docx

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/dshills/docstyle/internal/apperr"
	"github.com/dshills/docstyle/internal/document"
)

const (
	documentPart = "word/document.xml"
	stylesPart   = "word/styles.xml"

	mainNS = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"
)

// File is a loaded Word package.
type File struct {
	data   []byte
	zr     *zip.Reader
	tree   *node
	prefix string
	doc    *document.Document

	paras map[*document.Paragraph]*node
	runs  map[*document.Run]*node
	orig  map[*document.Run]document.Run
}

// Load parses a .docx package. Bytes that are not a Word package yield an
// error wrapping apperr.ErrUnsupportedFormat.
func Load(data []byte) (*File, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, apperr.Wrap("docx.Load", apperr.ErrUnsupportedFormat, err)
	}
	raw, err := readPart(zr, documentPart)
	if err != nil {
		return nil, apperr.Wrap("docx.Load", apperr.ErrUnsupportedFormat, err)
	}
	tree, err := parseTree(raw)
	if err != nil {
		return nil, apperr.Wrap("docx.Load", apperr.ErrUnsupportedFormat, fmt.Errorf("%s: %w", documentPart, err))
	}

	styles := map[string]string{}
	if sraw, err := readPart(zr, stylesPart); err == nil {
		styles, err = parseStyles(sraw)
		if err != nil {
			return nil, apperr.Wrap("docx.Load", apperr.ErrUnsupportedFormat, fmt.Errorf("%s: %w", stylesPart, err))
		}
	}

	f := &File{
		data:  data,
		zr:    zr,
		tree:  tree,
		paras: map[*document.Paragraph]*node{},
		runs:  map[*document.Run]*node{},
		orig:  map[*document.Run]document.Run{},
	}
	f.prefix = namespacePrefix(tree, mainNS, "w")
	body := f.body()
	if body == nil {
		return nil, apperr.Wrap("docx.Load", apperr.ErrUnsupportedFormat, fmt.Errorf("%s: no body", documentPart))
	}
	f.doc = &document.Document{}
	for _, pn := range body.children {
		if !pn.is(f.prefix, "p") {
			continue
		}
		p := &document.Paragraph{Style: f.paragraphStyle(pn, styles)}
		for _, rn := range pn.children {
			if !rn.is(f.prefix, "r") {
				continue
			}
			r := f.readRun(rn)
			p.Runs = append(p.Runs, r)
			f.runs[r] = rn
			f.orig[r] = *r
		}
		f.doc.Paragraphs = append(f.doc.Paragraphs, p)
		f.paras[p] = pn
	}
	return f, nil
}

// Document returns the paragraph tree. Checkers mutate it in place.
func (f *File) Document() *document.Document { return f.doc }

// Save writes the package with run edits applied. Parts other than the main
// document are copied without recompression.
func (f *File) Save() ([]byte, error) {
	f.apply()
	var part bytes.Buffer
	writeTree(&part, f.tree)

	var out bytes.Buffer
	zw := zip.NewWriter(&out)
	for _, zf := range f.zr.File {
		if zf.Name != documentPart {
			if err := zw.Copy(zf); err != nil {
				return nil, fmt.Errorf("docx.Save: copy %s: %w", zf.Name, err)
			}
			continue
		}
		hdr := zf.FileHeader
		w, err := zw.CreateHeader(&zip.FileHeader{
			Name:     hdr.Name,
			Method:   hdr.Method,
			Modified: hdr.Modified,
		})
		if err != nil {
			return nil, fmt.Errorf("docx.Save: %w", err)
		}
		if _, err := w.Write(part.Bytes()); err != nil {
			return nil, fmt.Errorf("docx.Save: %w", err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("docx.Save: %w", err)
	}
	return out.Bytes(), nil
}

func readPart(zr *zip.Reader, name string) ([]byte, error) {
	for _, zf := range zr.File {
		if zf.Name != name {
			continue
		}
		rc, err := zf.Open()
		if err != nil {
			return nil, err
		}
		defer rc.Close()
		return io.ReadAll(rc)
	}
	return nil, fmt.Errorf("missing part %s", name)
}

// namespacePrefix finds the prefix bound to uri on the root element.
func namespacePrefix(tree *node, uri, fallback string) string {
	for _, c := range tree.children {
		if c.start == nil {
			continue
		}
		for _, a := range c.start.Attr {
			if a.Name.Space == "xmlns" && a.Value == uri {
				return a.Name.Local
			}
		}
		break
	}
	return fallback
}

func (f *File) body() *node {
	for _, c := range f.tree.children {
		if c.is(f.prefix, "document") {
			return c.child(f.prefix, "body")
		}
	}
	return nil
}

func (f *File) paragraphStyle(pn *node, styles map[string]string) string {
	id := ""
	if ppr := pn.child(f.prefix, "pPr"); ppr != nil {
		if ps := ppr.child(f.prefix, "pStyle"); ps != nil {
			id, _ = ps.attr(f.prefix, "val")
		}
	}
	return styleName(id, styles)
}

func (f *File) readRun(rn *node) *document.Run {
	r := &document.Run{}
	var b strings.Builder
	for _, c := range rn.children {
		switch {
		case c.is(f.prefix, "t"):
			b.WriteString(c.text())
		case c.is(f.prefix, "tab"):
			b.WriteByte('\t')
		case c.is(f.prefix, "br"), c.is(f.prefix, "cr"):
			b.WriteByte('\n')
		}
	}
	r.Text = b.String()
	if rpr := rn.child(f.prefix, "rPr"); rpr != nil {
		if fonts := rpr.child(f.prefix, "rFonts"); fonts != nil {
			r.Font, _ = fonts.attr(f.prefix, "ascii")
		}
		if col := rpr.child(f.prefix, "color"); col != nil {
			if v, ok := col.attr(f.prefix, "val"); ok {
				if rgb, err := document.ParseHex(v); err == nil {
					r.Color = &rgb
				}
			}
		}
	}
	return r
}
