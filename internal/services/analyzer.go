package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"

	"go.uber.org/zap"

	"alfredoptarigan/careermatch/internal/logger"
	"alfredoptarigan/careermatch/internal/models"
)

const (
	defaultMaxTokens = 3000
	stageTemperature = 0
)

type AnalysisInput struct {
	JobID    string
	CVText   string
	JobText  string
	JobTitle string
}

// SuggestionsOutcome is the result of the second stage. A failed stage keeps
// its error so the caller can decide how to degrade.
type SuggestionsOutcome struct {
	Suggestions *models.FitSuggestions
	Err         error
}

// OrDefault returns the suggestions, or empty suggestions when the stage failed.
func (o SuggestionsOutcome) OrDefault() models.FitSuggestions {
	if o.Err != nil || o.Suggestions == nil {
		return models.EmptySuggestions()
	}
	return *o.Suggestions
}

type FitAnalyzer interface {
	Analyze(ctx context.Context, in AnalysisInput, debug DebugSink) (*models.FitReport, error)
}

type fitAnalyzer struct {
	llm       LLMClient
	prompts   *PromptBuilder
	validator ResponseValidator
	weights   ScoreWeights
	maxTokens int
	log       *zap.Logger
}

func NewFitAnalyzer(
	llm LLMClient,
	prompts *PromptBuilder,
	validator ResponseValidator,
	maxTokens int,
	log *zap.Logger,
) FitAnalyzer {
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	return &fitAnalyzer{
		llm:       llm,
		prompts:   prompts,
		validator: validator,
		weights:   DefaultScoreWeights,
		maxTokens: maxTokens,
		log:       logger.WithProvider(log, llm.Provider(), llm.Model()),
	}
}

// Analyze runs the core fit stage, scores it locally, then runs the
// suggestions stage. Only a core stage failure is returned as an error.
func (a *fitAnalyzer) Analyze(ctx context.Context, in AnalysisInput, debug DebugSink) (*models.FitReport, error) {
	if debug == nil {
		debug = NopDebugSink{}
	}
	log := logger.ForJob(a.log, in.JobID)

	cvText := NormalizeSpacedText(in.CVText)
	jobText := NormalizeSpacedText(in.JobText)
	if cvText == "" {
		return nil, &InputError{Field: "cv_text"}
	}
	if jobText == "" {
		return nil, &InputError{Field: "job_text"}
	}

	log.Info("analyzing fit", zap.Int("cv_chars", len(cvText)), zap.Int("job_chars", len(jobText)))

	core, err := a.fitCore(ctx, log, cvText, jobText, in.JobTitle, debug)
	if err != nil {
		log.Error("core fit stage failed", zap.String(logger.FieldStage, StageFitCore), zap.Error(err))
		return nil, err
	}

	score := a.weights.Score(core.MustHaveMatch, core.NiceToHaveMatch)
	log.Info("core fit computed",
		zap.Int("fit_score", score),
		zap.Int("llm_fit_score", core.FitScore),
		zap.String("confidence", string(core.Confidence)))

	outcome := a.fitSuggestions(ctx, log, cvText, jobText, in.JobTitle, core, debug)
	if outcome.Err != nil {
		debug.Write("fit_suggestions_error.txt", outcome.Err.Error())
		log.Warn("suggestions stage failed, using empty suggestions",
			zap.String(logger.FieldStage, StageFitSuggestions), zap.Error(outcome.Err))
	}

	report := models.MergeReport(*core, outcome.OrDefault(), score)
	return &report, nil
}

func (a *fitAnalyzer) fitCore(ctx context.Context, log *zap.Logger, cvText, jobText, jobTitle string, debug DebugSink) (*models.FitCore, error) {
	prompt := a.prompts.BuildFitCorePrompt(cvText, jobText, jobTitle)

	data, raw, err := a.runStage(ctx, log, StageFitCore, prompt, debug)
	if err != nil {
		return nil, err
	}

	core, err := a.validator.FitCore(data)
	if err != nil {
		return nil, stageValidationError(StageFitCore, raw, err, debug)
	}
	return core, nil
}

func (a *fitAnalyzer) fitSuggestions(ctx context.Context, log *zap.Logger, cvText, jobText, jobTitle string, core *models.FitCore, debug DebugSink) SuggestionsOutcome {
	coreJSON, err := prettyJSON(core)
	if err != nil {
		return SuggestionsOutcome{Err: err}
	}
	prompt := a.prompts.BuildFitSuggestionsPrompt(cvText, jobText, jobTitle, coreJSON)

	data, raw, err := a.runStage(ctx, log, StageFitSuggestions, prompt, debug)
	if err != nil {
		return SuggestionsOutcome{Err: err}
	}

	sugg, err := a.validator.FitSuggestions(data)
	if err != nil {
		return SuggestionsOutcome{Err: stageValidationError(StageFitSuggestions, raw, err, debug)}
	}
	return SuggestionsOutcome{Suggestions: sugg}
}

// runStage calls the LLM, extracts and parses its JSON answer, and records
// every step in the debug sink. It returns the parsed value and raw answer.
func (a *fitAnalyzer) runStage(ctx context.Context, log *zap.Logger, stage string, prompt Prompt, debug DebugSink) (any, string, error) {
	log = log.With(zap.String(logger.FieldStage, stage))

	debug.Write(stage+"_system.txt", prompt.System)
	debug.Write(stage+"_user_prompt.txt", prompt.User)
	log.Debug("calling llm", zap.Int("prompt_chars", len(prompt.User)))

	raw, err := a.llm.Generate(ctx, GenerateRequest{
		SystemPrompt: prompt.System,
		UserPrompt:   prompt.User,
		Temperature:  stageTemperature,
		MaxTokens:    a.maxTokens,
	})
	if err != nil {
		debug.Write(stage+"_transport_error.txt", err.Error())
		return nil, "", &TransportError{Stage: stage, Provider: a.llm.Provider(), Cause: err}
	}
	debug.Write(stage+"_raw.txt", raw)
	log.Debug("llm answered", zap.Int("chars", len(raw)), zap.String("preview", logger.TruncateForLog(raw, 200)))

	candidate, err := ExtractJSON(raw)
	if err != nil {
		var extractionErr *ExtractionError
		if errors.As(err, &extractionErr) {
			extractionErr.Stage = stage
		}
		debug.Write(stage+"_extraction_error.txt", err.Error())
		return nil, raw, err
	}
	debug.Write(stage+"_json_extracted.txt", candidate)

	var data any
	if err := json.Unmarshal([]byte(candidate), &data); err != nil {
		debug.Write(stage+"_parse_error.txt", err.Error())
		return nil, raw, &ParseError{Stage: stage, Raw: candidate, Cause: err}
	}

	return data, raw, nil
}

func stageValidationError(stage, raw string, err error, debug DebugSink) error {
	debug.Write(stage+"_validation_error.txt", err.Error())
	var verr *ValidationError
	if errors.As(err, &verr) {
		verr.Stage = stage
		verr.Raw = raw
	}
	return err
}

// prettyJSON renders v with two-space indentation, keeping non-ASCII and
// HTML characters as they are.
func prettyJSON(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return string(bytes.TrimRight(buf.Bytes(), "\n")), nil
}
