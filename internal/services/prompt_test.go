package services

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedPrompts(t *testing.T) {
	pb, err := NewPromptBuilder("")
	require.NoError(t, err)

	core := pb.BuildFitCorePrompt("MY CV", "MY JOB", "Go Engineer")
	assert.NotEmpty(t, core.System)
	assert.Contains(t, core.User, "MY CV")
	assert.Contains(t, core.User, "MY JOB")
	assert.Contains(t, core.User, "Go Engineer")
	assert.NotContains(t, core.User, "{{")

	sugg := pb.BuildFitSuggestionsPrompt("MY CV", "MY JOB", "", `{"fit_score": 1}`)
	assert.Contains(t, sugg.User, `{"fit_score": 1}`)
	assert.NotContains(t, sugg.User, "{{")
}

func TestPromptSubstitutionIsSinglePass(t *testing.T) {
	pb, err := NewPromptBuilder("")
	require.NoError(t, err)

	p := pb.BuildFitCorePrompt("cv mentions {{JOB_TEXT}} literally", "JOB", "")
	assert.Contains(t, p.User, "cv mentions {{JOB_TEXT}} literally")
}

func TestPromptsFromDirectory(t *testing.T) {
	dir := t.TempDir()
	for name, body := range map[string]string{
		"fit_core_system.md":        "core system\n",
		"fit_core_user.md":          "cv={{CV_TEXT}} job={{JOB_TEXT}}",
		"fit_suggestions_system.md": "sugg system",
		"fit_suggestions_user.md":   "core={{FIT_CORE_JSON}}",
	} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
	}

	pb, err := NewPromptBuilder(dir)
	require.NoError(t, err)

	core := pb.BuildFitCorePrompt("a", "b", "")
	assert.Equal(t, Prompt{System: "core system", User: "cv=a job=b"}, core)
	assert.Equal(t, "core={}", pb.BuildFitSuggestionsPrompt("", "", "", "{}").User)
}

func TestPromptsMissingFile(t *testing.T) {
	_, err := NewPromptBuilder(t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "prompt file missing")
}
