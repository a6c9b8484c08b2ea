package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"go.uber.org/zap"

	"alfredoptarigan/careermatch/internal/logger"
)

type anthropicClient struct {
	client    anthropic.Client
	modelName string
	retry     retryPolicy
	log       *zap.Logger
}

func NewAnthropicClient(apiKey, model string, maxRetries int, timeout time.Duration, log *zap.Logger) LLMClient {
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(timeout))
	}

	return &anthropicClient{
		client:    anthropic.NewClient(opts...),
		modelName: model,
		retry:     retryPolicy{MaxRetries: maxRetries, Delay: 2 * time.Second},
		log:       logger.WithProvider(log, "anthropic", model),
	}
}

func (a *anthropicClient) Provider() string { return "anthropic" }

func (a *anthropicClient) Model() string { return a.modelName }

// Generate implements LLMClient.
func (a *anthropicClient) Generate(ctx context.Context, req GenerateRequest) (string, error) {
	return a.retry.do(ctx, a.log, func(ctx context.Context) (string, error) {
		return a.generateOnce(ctx, req)
	})
}

func (a *anthropicClient) generateOnce(ctx context.Context, req GenerateRequest) (string, error) {
	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(a.modelName),
		MaxTokens:   int64(req.MaxTokens),
		Temperature: anthropic.Float(float64(req.Temperature)),
		Messages: []anthropic.MessageParam{{
			Content: []anthropic.ContentBlockParamUnion{{
				OfText: &anthropic.TextBlockParam{Text: req.UserPrompt},
			}},
			Role: anthropic.MessageParamRoleUser,
		}},
	}
	if req.SystemPrompt != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.SystemPrompt}}
	}

	start := time.Now()
	resp, err := a.client.Messages.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("failed to call Claude API: %w", err)
	}

	var sb strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	text := sb.String()
	if text == "" {
		return "", fmt.Errorf("no text content in response (stop reason: %s)", resp.StopReason)
	}

	a.log.Debug("claude response received",
		zap.Int("chars", len(text)),
		zap.Duration("latency", time.Since(start)),
		zap.String("preview", logger.TruncateForLog(text, 120)))

	return text, nil
}
