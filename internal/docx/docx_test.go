package docx

import (
	"errors"
	"strings"
	"testing"

	"github.com/dshills/docstyle/internal/apperr"
	"github.com/dshills/docstyle/internal/document"
	"github.com/dshills/docstyle/internal/docx/docxtest"
)

func TestLoadModel(t *testing.T) {
	data := docxtest.New().
		Heading1(docxtest.Run{Text: "Intro", Font: "Times New Roman", Color: "FF0000"}).
		Body(docxtest.Run{Text: "Plain "}, docxtest.Run{Text: "bold", Font: "Arial"}).
		Paragraph("Quote", docxtest.Run{Text: "q"}).
		Paragraph("Heading2").
		Build(t)

	f, err := Load(data)
	if err != nil {
		t.Fatal(err)
	}
	doc := f.Document()
	if len(doc.Paragraphs) != 4 {
		t.Fatalf("paragraphs = %d, want 4", len(doc.Paragraphs))
	}
	styles := []string{"Heading 1", "Normal", "Quote", "Heading 2"}
	for i, want := range styles {
		if got := doc.Paragraphs[i].Style; got != want {
			t.Errorf("paragraph %d style = %q, want %q", i, got, want)
		}
	}
	h := doc.Paragraphs[0].Runs[0]
	if h.Text != "Intro" || h.Font != "Times New Roman" {
		t.Errorf("heading run = %+v", h)
	}
	if h.Color == nil || *h.Color != (document.RGB{R: 255}) {
		t.Errorf("heading color = %v", h.Color)
	}
	if doc.Paragraphs[1].Runs[0].Font != "" || doc.Paragraphs[1].Runs[0].Color != nil {
		t.Errorf("plain run has properties: %+v", doc.Paragraphs[1].Runs[0])
	}
	if doc.Paragraphs[1].Text() != "Plain bold" {
		t.Errorf("body text = %q", doc.Paragraphs[1].Text())
	}
	if len(doc.Paragraphs[3].Runs) != 0 {
		t.Error("empty heading has runs")
	}
}

func TestLoadRejectsNonPackages(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"not zip", []byte("%PDF-1.4 not a docx")},
		{"empty", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(tt.data)
			if !errors.Is(err, apperr.ErrUnsupportedFormat) {
				t.Errorf("err = %v, want ErrUnsupportedFormat", err)
			}
		})
	}
}

func TestSaveUnchangedKeepsText(t *testing.T) {
	data := docxtest.New().Text("Fish & chips <daily>").Build(t)
	f, err := Load(data)
	if err != nil {
		t.Fatal(err)
	}
	out, err := f.Save()
	if err != nil {
		t.Fatal(err)
	}
	again, err := Load(out)
	if err != nil {
		t.Fatal(err)
	}
	if got := again.Document().Text(); got != "Fish & chips <daily>" {
		t.Errorf("text after save = %q", got)
	}
	xml := docxtest.Part(t, out, "word/document.xml")
	if !strings.Contains(xml, "Fish &amp; chips &lt;daily&gt;") {
		t.Errorf("text not escaped: %s", xml)
	}
	if !strings.Contains(xml, `<w:pgSz w:w="11906" w:h="16838"/>`) {
		t.Error("section properties lost")
	}
	if docxtest.Part(t, out, "word/styles.xml") != docxtest.Part(t, data, "word/styles.xml") {
		t.Error("styles part changed")
	}
}

func TestSaveAppliesEdits(t *testing.T) {
	data := docxtest.New().
		Heading1(docxtest.Run{Text: "Colour", Font: "Calibri", Color: "FF0000"}).
		Body(docxtest.Run{Text: "first"}, docxtest.Run{Text: "second", Font: "Calibri"}).
		Paragraph("Heading1").
		Build(t)
	f, err := Load(data)
	if err != nil {
		t.Fatal(err)
	}
	doc := f.Document()
	blue := document.RGB{R: 0, G: 51, B: 153}
	h := doc.Paragraphs[0].Runs[0]
	h.Font = "Arial"
	h.Color = &blue
	doc.Paragraphs[1].SetText("replaced\ttext")
	doc.Paragraphs[1].Runs[0].Font = "Arial"
	doc.Paragraphs[2].SetText("new heading")

	out, err := f.Save()
	if err != nil {
		t.Fatal(err)
	}
	reloaded, err := Load(out)
	if err != nil {
		t.Fatal(err)
	}
	rd := reloaded.Document()
	rh := rd.Paragraphs[0].Runs[0]
	if rh.Font != "Arial" || rh.Color == nil || *rh.Color != blue || rh.Text != "Colour" {
		t.Errorf("heading run = %+v", rh)
	}
	if got := rd.Paragraphs[1].Text(); got != "replaced\ttext" {
		t.Errorf("body text = %q", got)
	}
	if rd.Paragraphs[1].Runs[0].Font != "Arial" {
		t.Errorf("unstyled run font = %q", rd.Paragraphs[1].Runs[0].Font)
	}
	if rd.Paragraphs[1].Runs[1].Font != "Calibri" {
		t.Error("cleared run lost its properties")
	}
	if got := rd.Paragraphs[2].Text(); got != "new heading" {
		t.Errorf("new run text = %q", got)
	}

	xml := docxtest.Part(t, out, "word/document.xml")
	if !strings.Contains(xml, `<w:rFonts w:ascii="Arial" w:hAnsi="Arial"/><w:b/><w:color w:val="003399"/><w:sz w:val="24"/>`) {
		t.Errorf("heading properties out of order: %s", xml)
	}
}

func TestSaveColorDropsThemeReference(t *testing.T) {
	data := docxtest.New().
		Heading1(docxtest.Run{Text: "Scope", Color: "2F5496", ThemeColor: "accent1", ThemeShade: "BF"}).
		Build(t)
	if !strings.Contains(docxtest.Part(t, data, "word/document.xml"), `w:themeColor="accent1"`) {
		t.Fatal("fixture lacks the theme colour")
	}
	f, err := Load(data)
	if err != nil {
		t.Fatal(err)
	}
	blue := document.RGB{R: 0, G: 51, B: 153}
	f.Document().Paragraphs[0].Runs[0].Color = &blue

	out, err := f.Save()
	if err != nil {
		t.Fatal(err)
	}
	xml := docxtest.Part(t, out, "word/document.xml")
	if !strings.Contains(xml, `<w:color w:val="003399"/>`) {
		t.Errorf("color not rewritten: %s", xml)
	}
	for _, attr := range []string{"themeColor", "themeShade", "themeTint"} {
		if strings.Contains(xml, attr) {
			t.Errorf("saved run still carries %s: %s", attr, xml)
		}
	}
}

func TestStyleName(t *testing.T) {
	styles := map[string]string{"Heading1": "heading 1", "Normal": "normal", "Custom": "My Style"}
	tests := []struct{ id, want string }{
		{"", "Normal"},
		{"Heading1", "Heading 1"},
		{"Normal", "Normal"},
		{"Custom", "My Style"},
		{"Heading3", "Heading 3"},
		{"Unknown", "Unknown"},
	}
	for _, tt := range tests {
		if got := styleName(tt.id, styles); got != tt.want {
			t.Errorf("styleName(%q) = %q, want %q", tt.id, got, tt.want)
		}
	}
}
