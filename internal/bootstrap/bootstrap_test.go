package bootstrap

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"alfredoptarigan/careermatch/internal/config"
	"alfredoptarigan/careermatch/internal/services"
)

func TestNewLLMClientAnthropic(t *testing.T) {
	client, err := NewLLMClient(context.Background(), config.LLMConfig{
		Provider:        config.ProviderAnthropic,
		AnthropicAPIKey: "test-key",
		AnthropicModel:  "claude-test",
	}, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, "anthropic", client.Provider())
	assert.Equal(t, "claude-test", client.Model())
}

func TestNewLLMClientUnknownProvider(t *testing.T) {
	_, err := NewLLMClient(context.Background(), config.LLMConfig{Provider: "openai"}, zap.NewNop())
	assert.ErrorContains(t, err, `unsupported LLM provider "openai"`)
}

func TestNewPipeline(t *testing.T) {
	cfg := &config.Config{LLM: config.LLMConfig{
		Provider:        config.ProviderAnthropic,
		AnthropicAPIKey: "test-key",
		AnthropicModel:  "claude-test",
	}}
	storage := services.NewStorageService(t.TempDir(), t.TempDir(), false, zap.NewNop())

	p, err := NewPipeline(context.Background(), cfg, storage, zap.NewNop())
	require.NoError(t, err)
	assert.NotNil(t, p)

	cfg.LLM.PromptsDir = t.TempDir()
	_, err = NewPipeline(context.Background(), cfg, storage, zap.NewNop())
	assert.ErrorContains(t, err, "failed to load prompts")
}
