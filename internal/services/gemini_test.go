package services

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// stallingTransport never answers; it waits for the request context to end.
type stallingTransport struct {
	mu        sync.Mutex
	deadlines []time.Duration
}

func (s *stallingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()
	s.mu.Lock()
	if deadline, ok := ctx.Deadline(); ok {
		s.deadlines = append(s.deadlines, time.Until(deadline))
	} else {
		s.deadlines = append(s.deadlines, -1)
	}
	s.mu.Unlock()

	<-ctx.Done()
	return nil, ctx.Err()
}

func TestGeminiTimeoutBoundsEveryAttempt(t *testing.T) {
	transport := &stallingTransport{}
	client, err := newGeminiClient(context.Background(), "test-key", "gemini-test", 1, 50*time.Millisecond,
		&http.Client{Transport: transport}, zap.NewNop())
	require.NoError(t, err)
	client.(*geminiClient).retry.Delay = time.Millisecond

	// Workers call the LLM on a context that is never cancelled.
	ctx := context.WithoutCancel(context.Background())

	start := time.Now()
	_, err = client.Generate(ctx, GenerateRequest{UserPrompt: "hello", MaxTokens: 10})
	require.Error(t, err)
	assert.Less(t, time.Since(start), 5*time.Second)

	transport.mu.Lock()
	defer transport.mu.Unlock()
	require.GreaterOrEqual(t, len(transport.deadlines), 2, "every attempt reaches the transport")
	for _, d := range transport.deadlines {
		assert.Greater(t, d, time.Duration(0), "request carries a deadline")
		assert.LessOrEqual(t, d, 50*time.Millisecond)
	}
}

func TestGeminiWithoutTimeoutKeepsCallerDeadline(t *testing.T) {
	transport := &stallingTransport{}
	client, err := newGeminiClient(context.Background(), "test-key", "gemini-test", 0, 0,
		&http.Client{Transport: transport}, zap.NewNop())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err = client.Generate(ctx, GenerateRequest{UserPrompt: "hello", MaxTokens: 10})
	require.Error(t, err)
	transport.mu.Lock()
	defer transport.mu.Unlock()
	require.NotEmpty(t, transport.deadlines)
	assert.Greater(t, transport.deadlines[0], time.Duration(0))
}
