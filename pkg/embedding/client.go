package embedding

import (
	"context"
	"time"

	"ask-engine-be/internal/pkg/logger"
	"ask-engine-be/pkg/backoff"

	gocache "github.com/patrickmn/go-cache"
)

const (
	// DefaultMaxInputChars bounds the text sent to the embedding provider.
	// Titan rejects oversized inputs; we truncate instead of failing.
	DefaultMaxInputChars = 8000

	cacheTTL = 10 * time.Minute
)

// Client is the pipeline-facing embedding entry point: it truncates input,
// retries throttled provider calls, and memoizes vectors for repeat queries.
type Client struct {
	provider      Provider
	invoker       *backoff.Invoker
	retryable     func(error) bool
	maxInputChars int
	cache         *gocache.Cache
	logger        logger.ILogger
}

func NewClient(provider Provider, invoker *backoff.Invoker, retryable func(error) bool, maxInputChars int, log logger.ILogger) *Client {
	if maxInputChars <= 0 {
		maxInputChars = DefaultMaxInputChars
	}
	return &Client{
		provider:      provider,
		invoker:       invoker,
		retryable:     retryable,
		maxInputChars: maxInputChars,
		cache:         gocache.New(cacheTTL, 2*cacheTTL),
		logger:        log,
	}
}

// Embed returns the provider's vector for text, truncated to the input limit.
// Truncation is logged, not an error. Provider errors propagate unchanged
// after the retry budget is spent (or immediately when not retryable).
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	truncated := c.truncate(text)

	if cached, found := c.cache.Get(truncated); found {
		return cached.([]float32), nil
	}

	vector, err := backoff.Invoke(ctx, c.invoker, func(ctx context.Context) ([]float32, error) {
		return c.provider.Embed(ctx, truncated)
	}, c.retryable)
	if err != nil {
		return nil, err
	}

	c.cache.SetDefault(truncated, vector)
	return vector, nil
}

func (c *Client) truncate(text string) string {
	runes := []rune(text)
	if len(runes) <= c.maxInputChars {
		return text
	}
	c.logger.Warn("embedding", "Input truncated to embedding limit", map[string]interface{}{
		"original_chars": len(runes),
		"max_chars":      c.maxInputChars,
	})
	return string(runes[:c.maxInputChars])
}
