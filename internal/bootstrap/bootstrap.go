// Package bootstrap builds the analysis stack shared by the server and the CLI.
package bootstrap

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"alfredoptarigan/careermatch/internal/config"
	"alfredoptarigan/careermatch/internal/services"
	"alfredoptarigan/careermatch/internal/web"
)

// NewLLMClient returns the client of the configured provider.
func NewLLMClient(ctx context.Context, cfg config.LLMConfig, log *zap.Logger) (services.LLMClient, error) {
	switch cfg.Provider {
	case config.ProviderGemini:
		return services.NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, cfg.MaxRetries, cfg.Timeout, log)
	case config.ProviderAnthropic:
		return services.NewAnthropicClient(cfg.AnthropicAPIKey, cfg.AnthropicModel, cfg.MaxRetries, cfg.Timeout, log), nil
	}
	return nil, fmt.Errorf("unsupported LLM provider %q", cfg.Provider)
}

// NewPipeline wires prompts, validation, the LLM client and the report
// renderer into a Pipeline writing through storage.
func NewPipeline(ctx context.Context, cfg *config.Config, storage services.StorageService, log *zap.Logger) (services.Pipeline, error) {
	llm, err := NewLLMClient(ctx, cfg.LLM, log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize LLM client: %w", err)
	}

	prompts, err := services.NewPromptBuilder(cfg.LLM.PromptsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load prompts: %w", err)
	}

	validator, err := services.NewResponseValidator()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize response validator: %w", err)
	}

	analyzer := services.NewFitAnalyzer(llm, prompts, validator, cfg.LLM.MaxTokens, log)
	renderer := services.NewReportRenderer(web.ReportTemplate())
	return services.NewPipeline(analyzer, storage, renderer, log), nil
}
