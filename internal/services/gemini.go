package services

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"alfredoptarigan/careermatch/internal/logger"
)

type geminiClient struct {
	client    *genai.Client
	modelName string
	timeout   time.Duration
	retry     retryPolicy
	log       *zap.Logger
}

// NewGeminiClient returns a Gemini client. A positive timeout bounds every
// attempt, including attempts made under a context without a deadline.
func NewGeminiClient(ctx context.Context, apiKey, model string, maxRetries int, timeout time.Duration, log *zap.Logger) (LLMClient, error) {
	return newGeminiClient(ctx, apiKey, model, maxRetries, timeout, nil, log)
}

func newGeminiClient(ctx context.Context, apiKey, model string, maxRetries int, timeout time.Duration, httpClient *http.Client, log *zap.Logger) (LLMClient, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: httpClient,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &geminiClient{
		client:    client,
		modelName: model,
		timeout:   timeout,
		retry:     retryPolicy{MaxRetries: maxRetries, Delay: 2 * time.Second},
		log:       logger.WithProvider(log, "gemini", model),
	}, nil
}

func (g *geminiClient) Provider() string { return "gemini" }

func (g *geminiClient) Model() string { return g.modelName }

// Generate implements LLMClient.
func (g *geminiClient) Generate(ctx context.Context, req GenerateRequest) (string, error) {
	return g.retry.do(ctx, g.log, func(ctx context.Context) (string, error) {
		if g.timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, g.timeout)
			defer cancel()
		}
		return g.generateOnce(ctx, req)
	})
}

func (g *geminiClient) generateOnce(ctx context.Context, req GenerateRequest) (string, error) {
	temperature := req.Temperature
	config := &genai.GenerateContentConfig{
		Temperature:     &temperature,
		MaxOutputTokens: int32(req.MaxTokens),
	}
	if req.SystemPrompt != "" {
		config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: req.SystemPrompt}},
		}
	}

	start := time.Now()
	resp, err := g.client.Models.GenerateContent(ctx, g.modelName, genai.Text(req.UserPrompt), config)
	if err != nil {
		return "", fmt.Errorf("failed to generate text: %w", err)
	}
	if resp == nil {
		return "", fmt.Errorf("no response generated (nil response)")
	}

	text := resp.Text()
	if text == "" {
		reason := "unknown"
		if len(resp.Candidates) > 0 && resp.Candidates[0] != nil {
			reason = string(resp.Candidates[0].FinishReason)
		}
		return "", fmt.Errorf("no text content in response (finish reason: %s)", reason)
	}

	g.log.Debug("gemini response received",
		zap.Int("chars", len(text)),
		zap.Duration("latency", time.Since(start)),
		zap.String("preview", logger.TruncateForLog(text, 120)))

	return text, nil
}
