package services

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"strings"
)

//go:embed prompts/*.md
var promptFS embed.FS

const (
	placeholderCVText      = "{{CV_TEXT}}"
	placeholderJobText     = "{{JOB_TEXT}}"
	placeholderJobTitle    = "{{JOB_TITLE}}"
	placeholderFitCoreJSON = "{{FIT_CORE_JSON}}"
)

// Prompt is one rendered system/user message pair.
type Prompt struct {
	System string
	User   string
}

type PromptBuilder struct {
	coreSystem string
	coreUser   string
	suggSystem string
	suggUser   string
}

// NewPromptBuilder loads the prompt templates from dir, or from the embedded
// defaults when dir is empty.
func NewPromptBuilder(dir string) (*PromptBuilder, error) {
	var source fs.FS
	if dir == "" {
		sub, err := fs.Sub(promptFS, "prompts")
		if err != nil {
			return nil, fmt.Errorf("failed to open embedded prompts: %w", err)
		}
		source = sub
	} else {
		source = os.DirFS(dir)
	}

	pb := &PromptBuilder{}
	files := []struct {
		name   string
		target *string
	}{
		{"fit_core_system.md", &pb.coreSystem},
		{"fit_core_user.md", &pb.coreUser},
		{"fit_suggestions_system.md", &pb.suggSystem},
		{"fit_suggestions_user.md", &pb.suggUser},
	}
	for _, f := range files {
		raw, err := fs.ReadFile(source, f.name)
		if err != nil {
			return nil, fmt.Errorf("prompt file missing: %s: %w", f.name, err)
		}
		*f.target = strings.TrimSpace(string(raw))
	}

	return pb, nil
}

// BuildFitCorePrompt renders the first-stage prompt.
func (pb *PromptBuilder) BuildFitCorePrompt(cvText, jobText, jobTitle string) Prompt {
	r := strings.NewReplacer(
		placeholderCVText, cvText,
		placeholderJobText, jobText,
		placeholderJobTitle, jobTitle,
	)
	return Prompt{System: pb.coreSystem, User: r.Replace(pb.coreUser)}
}

// BuildFitSuggestionsPrompt renders the second-stage prompt around the
// pretty-printed first-stage result.
func (pb *PromptBuilder) BuildFitSuggestionsPrompt(cvText, jobText, jobTitle, fitCoreJSON string) Prompt {
	r := strings.NewReplacer(
		placeholderCVText, cvText,
		placeholderJobText, jobText,
		placeholderJobTitle, jobTitle,
		placeholderFitCoreJSON, fitCoreJSON,
	)
	return Prompt{System: pb.suggSystem, User: r.Replace(pb.suggUser)}
}
