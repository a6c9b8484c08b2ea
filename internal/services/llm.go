package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

type GenerateRequest struct {
	SystemPrompt string
	UserPrompt   string
	Temperature  float32
	MaxTokens    int
}

// LLMClient is a chat-completion backend. Implementations retry internally;
// callers never retry a failed Generate.
type LLMClient interface {
	Generate(ctx context.Context, req GenerateRequest) (string, error)
	Provider() string
	Model() string
}

// retryPolicy runs a call once plus up to MaxRetries more times.
type retryPolicy struct {
	MaxRetries int
	Delay      time.Duration
}

func (p retryPolicy) do(ctx context.Context, log *zap.Logger, call func(ctx context.Context) (string, error)) (string, error) {
	attempts := p.MaxRetries + 1
	var lastErr error

	for attempt := 1; attempt <= attempts; attempt++ {
		result, err := call(ctx)
		if err == nil {
			return result, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return "", fmt.Errorf("context cancelled: %w", ctx.Err())
		}

		if attempt < attempts {
			log.Warn("llm call failed, retrying",
				zap.Int("attempt", attempt),
				zap.Int("max_attempts", attempts),
				zap.Error(err))

			select {
			case <-ctx.Done():
				return "", fmt.Errorf("context cancelled: %w", ctx.Err())
			case <-time.After(p.Delay * time.Duration(attempt)):
			}
		}
	}

	return "", fmt.Errorf("failed after %d attempts: %w", attempts, lastErr)
}
