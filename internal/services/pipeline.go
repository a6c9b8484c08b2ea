package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"alfredoptarigan/careermatch/internal/logger"
	"alfredoptarigan/careermatch/internal/models"
)

const (
	reportJSONFile = "fit_report.json"
	reportHTMLFile = "report.html"
)

type pipeline struct {
	analyzer FitAnalyzer
	storage  StorageService
	renderer *ReportRenderer
	log      *zap.Logger
}

func NewPipeline(analyzer FitAnalyzer, storage StorageService, renderer *ReportRenderer, log *zap.Logger) Pipeline {
	return &pipeline{
		analyzer: analyzer,
		storage:  storage,
		renderer: renderer,
		log:      logger.OrNop(log),
	}
}

// Process implements Pipeline: it analyzes the inputs and writes
// fit_report.json and report.html to the job's output directory.
func (p *pipeline) Process(ctx context.Context, jobID, cvText, jobText, jobTitle string) (*models.Artifacts, error) {
	report, err := p.analyzer.Analyze(ctx, AnalysisInput{
		JobID:    jobID,
		CVText:   cvText,
		JobText:  jobText,
		JobTitle: jobTitle,
	}, p.storage.DebugSink(jobID))
	if err != nil {
		return nil, err
	}

	body, err := prettyJSON(report)
	if err != nil {
		return nil, fmt.Errorf("failed to encode report: %w", err)
	}
	jsonPath, err := p.storage.WriteOutput(jobID, reportJSONFile, []byte(body))
	if err != nil {
		return nil, err
	}

	page, err := p.renderer.Render(report, jobID, jsonPath, jobTitle)
	if err != nil {
		return nil, err
	}
	htmlPath, err := p.storage.WriteOutput(jobID, reportHTMLFile, []byte(page))
	if err != nil {
		return nil, err
	}

	logger.ForJob(p.log, jobID).Info("report written",
		zap.Int("fit_score", report.FitScore),
		zap.String("json_path", jsonPath))

	return &models.Artifacts{JSONPath: jsonPath, HTMLPath: htmlPath}, nil
}
