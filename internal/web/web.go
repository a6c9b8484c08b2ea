// Package web holds the embedded HTML served by the upload flow.
package web

import (
	"embed"
	"fmt"
	"html/template"
	"io"
)

//go:embed templates/*.html
var pageFS embed.FS

//go:embed report/report.html
var reportTemplate string

const (
	PageUpload = "upload.html"
	PageWait   = "wait.html"
	PageError  = "error.html"
)

// ReportTemplate returns the report page with {{key}} placeholders.
func ReportTemplate() string {
	return reportTemplate
}

type WaitData struct {
	JobID      string
	PollMillis int
}

type ErrorData struct {
	JobID string
	Error string
}

// Pages renders the upload, wait and error pages.
type Pages struct {
	tmpl *template.Template
}

func NewPages() (*Pages, error) {
	tmpl, err := template.ParseFS(pageFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse page templates: %w", err)
	}
	return &Pages{tmpl: tmpl}, nil
}

func (p *Pages) Render(w io.Writer, name string, data any) error {
	if err := p.tmpl.ExecuteTemplate(w, name, data); err != nil {
		return fmt.Errorf("failed to render %s: %w", name, err)
	}
	return nil
}
