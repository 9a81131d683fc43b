// Package render produces the HTML validation report and its Markdown
// rendition for terminals.
package render

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"time"

	md "github.com/JohannesKaufmann/html-to-markdown"
)

// TimeFormat is the layout of the report timestamp; the zone is always UTC.
const TimeFormat = "2006-01-02 15:04:05"

var reportTmpl = template.Must(template.New("report").Parse(`<html>
<head><meta charset="utf-8"><title>Validation Report - {{.FileName}}</title></head>
<body>
<h1>Style Validation Report</h1>
<p><strong>File:</strong> {{.FileName}}</p>
<p><strong>Date:</strong> {{.Date}} UTC</p>
<h2>Summary</h2>
<p>Issues Found: {{len .Issues}}</p>
<p>Issues Fixed: {{len .Fixes}}</p>
<h2>Issues Detected</h2>
<ul>
{{- range .Issues}}
<li>{{.}}</li>
{{- end}}
</ul>
<h2>Fixes Applied</h2>
<ul>
{{- range .Fixes}}
<li>{{.}}</li>
{{- end}}
</ul>
</body>
</html>
`))

type reportData struct {
	FileName string
	Date     string
	Issues   []string
	Fixes    []string
}

// HTML renders the report for fileName. Every string is escaped, so
// document-derived text cannot inject markup.
func HTML(fileName string, issues, fixes []string, generatedAt time.Time) (string, error) {
	var buf bytes.Buffer
	err := reportTmpl.Execute(&buf, reportData{
		FileName: fileName,
		Date:     generatedAt.UTC().Format(TimeFormat),
		Issues:   issues,
		Fixes:    fixes,
	})
	if err != nil {
		return "", fmt.Errorf("render.HTML: %w", err)
	}
	return buf.String(), nil
}

// Markdown converts a rendered HTML report to Markdown.
func Markdown(html string) (string, error) {
	conv := md.NewConverter("", true, nil)
	out, err := conv.ConvertString(html)
	if err != nil {
		return "", fmt.Errorf("render.Markdown: %w", err)
	}
	return strings.TrimSpace(out) + "\n", nil
}

// ReportName returns the report file name placed next to a document:
// "Plan.docx" becomes "Plan_ValidationReport.html".
func ReportName(fileName string) string {
	base := fileName
	if i := strings.LastIndexByte(base, '.'); i > 0 {
		base = base[:i]
	}
	return base + "_ValidationReport.html"
}
