package llm

import (
	"context"

	"ask-engine-be/internal/pkg/errs"
	"ask-engine-be/internal/pkg/logger"
	"ask-engine-be/pkg/backoff"
)

// Generator produces the final answer text from an assembled prompt.
type Generator struct {
	provider  Provider
	invoker   *backoff.Invoker
	retryable func(error) bool
	system    string
	maxTokens int
	logger    logger.ILogger
}

func NewGenerator(provider Provider, invoker *backoff.Invoker, retryable func(error) bool, system string, maxTokens int, log logger.ILogger) *Generator {
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	return &Generator{
		provider:  provider,
		invoker:   invoker,
		retryable: retryable,
		system:    system,
		maxTokens: maxTokens,
		logger:    log,
	}
}

// Generate sends the prompt as a single user message and returns the text of
// the first text block. A response without any text block is a FormatError:
// we never return an empty or fabricated answer.
func (g *Generator) Generate(ctx context.Context, prompt string) (string, error) {
	messages := []Message{{Role: "user", Content: prompt}}

	blocks, err := backoff.Invoke(ctx, g.invoker, func(ctx context.Context) ([]ContentBlock, error) {
		return g.provider.Complete(ctx, messages, WithSystem(g.system), WithMaxTokens(g.maxTokens))
	}, g.retryable)
	if err != nil {
		return "", err
	}

	for _, block := range blocks {
		if block.Type == "text" {
			return block.Text, nil
		}
	}

	g.logger.Error("llm", "Generation response carried no text block", map[string]interface{}{
		"block_count": len(blocks),
	})
	return "", errs.NewFormatError("unexpected generation response: no text content block")
}
