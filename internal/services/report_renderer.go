package services

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"alfredoptarigan/careermatch/internal/models"
)

const defaultJobTitle = "LinkedIn position"

var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#39;",
)

func escapeHTML(s string) string {
	return htmlEscaper.Replace(s)
}

// ReportRenderer fills {{key}} placeholders of an HTML report template.
type ReportRenderer struct {
	template string
}

func NewReportRenderer(template string) *ReportRenderer {
	return &ReportRenderer{template: template}
}

// Render returns the report page of one job.
func (r *ReportRenderer) Render(report *models.FitReport, jobID, jsonPath, jobTitle string) (string, error) {
	values, err := RenderValues(report, jobID, jsonPath, jobTitle)
	if err != nil {
		return "", err
	}

	pairs := make([]string, 0, len(values)*2)
	for k, v := range values {
		pairs = append(pairs, "{{"+k+"}}", v)
	}
	return strings.NewReplacer(pairs...).Replace(r.template), nil
}

// RenderValues builds the placeholder values of the report template. Every
// value is HTML-escaped except the card fragments, which are built here.
func RenderValues(report *models.FitReport, jobID, jsonPath, jobTitle string) (map[string]string, error) {
	decision := Decide(report)
	highlights := Highlight(report)

	dump, err := prettyJSON(report)
	if err != nil {
		return nil, fmt.Errorf("failed to encode report: %w", err)
	}

	score := max(0, min(100, report.FitScore))
	if jobTitle == "" {
		jobTitle = defaultJobTitle
	}

	return map[string]string{
		"json_file_name":  escapeHTML(filepath.Base(jsonPath)),
		"decision_label":  escapeHTML(decision.Label),
		"decision_reason": escapeHTML(decision.Reason),
		"decision_badge":  escapeHTML(decision.Badge),
		"decision_code":   escapeHTML(string(decision.Code)),
		"fit_score":       strconv.Itoa(score),
		"confidence":      escapeHTML(string(report.Confidence)),
		"next_step":       escapeHTML(decision.NextStep),
		"summary":         escapeHTML(report.Summary),
		"final_note":      escapeHTML(report.FinalNote),
		"json_dump":       escapeHTML(dump),
		"job_title":       escapeHTML(jobTitle),
		"score_bar_class": scoreBarClass(score),
		"job_id":          escapeHTML(jobID),
		"strengths_cards": cards(highlights.Strengths, "pos", "No notable strengths found."),
		"blockers_cards":  cards(highlights.Blockers, "neg", "No major blockers."),
		"strengths_count": fmt.Sprintf("%d/%d", len(highlights.Strengths), highlightLimit),
		"blockers_count":  fmt.Sprintf("%d/%d", len(highlights.Blockers), highlightLimit),
	}, nil
}

func scoreBarClass(score int) string {
	switch {
	case score <= 50:
		return "bar-red"
	case score <= 75:
		return "bar-yellow"
	default:
		return "bar-green"
	}
}

func cards(texts []string, kind, empty string) string {
	if len(texts) == 0 {
		return `<div class="qempty">` + escapeHTML(empty) + `</div>`
	}

	icon := "!"
	if kind == "pos" {
		icon = "✓"
	}

	out := make([]string, 0, len(texts))
	for _, text := range texts {
		out = append(out, fmt.Sprintf(
			`<div class="qitem">  <div class="qicon %s">%s</div>  <div class="qtext">%s</div></div>`,
			kind, icon, escapeHTML(text)))
	}
	return strings.Join(out, "\n")
}
