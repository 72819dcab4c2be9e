package llm

import (
	"context"
	"errors"
	"testing"
	"time"

	"ask-engine-be/internal/pkg/errs"
	"ask-engine-be/internal/pkg/logger"
	"ask-engine-be/pkg/backoff"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLLMProvider struct {
	blocks  []ContentBlock
	err     error
	calls   int
	gotMsgs []Message
	gotOpts Options
}

func (f *fakeLLMProvider) Complete(_ context.Context, messages []Message, opts ...Option) ([]ContentBlock, error) {
	f.calls++
	f.gotMsgs = messages
	for _, opt := range opts {
		opt(&f.gotOpts)
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.blocks, nil
}

func newGenerator(provider Provider) *Generator {
	inv := backoff.New(backoff.Config{MaxRetries: 2, BaseDelay: time.Microsecond})
	return NewGenerator(provider, inv, func(error) bool { return false }, "test system", 500, logger.NewNopLogger())
}

func TestGenerateReturnsFirstTextBlock(t *testing.T) {
	provider := &fakeLLMProvider{blocks: []ContentBlock{
		{Type: "tool_use"},
		{Type: "text", Text: "The answer."},
		{Type: "text", Text: "Ignored second block."},
	}}
	g := newGenerator(provider)

	answer, err := g.Generate(context.Background(), "prompt")

	require.NoError(t, err)
	assert.Equal(t, "The answer.", answer)
	require.Len(t, provider.gotMsgs, 1)
	assert.Equal(t, "user", provider.gotMsgs[0].Role)
	assert.Equal(t, "prompt", provider.gotMsgs[0].Content)
	assert.Equal(t, "test system", provider.gotOpts.System)
	assert.Equal(t, 500, provider.gotOpts.MaxTokens)
}

func TestGenerateNoTextBlockIsFormatError(t *testing.T) {
	provider := &fakeLLMProvider{blocks: []ContentBlock{{Type: "tool_use"}}}
	g := newGenerator(provider)

	_, err := g.Generate(context.Background(), "prompt")

	var formatErr *errs.FormatError
	require.ErrorAs(t, err, &formatErr)
}

func TestGenerateEmptyBlockListIsFormatError(t *testing.T) {
	provider := &fakeLLMProvider{}
	g := newGenerator(provider)

	_, err := g.Generate(context.Background(), "prompt")

	var formatErr *errs.FormatError
	require.ErrorAs(t, err, &formatErr)
}

func TestGeneratePropagatesProviderError(t *testing.T) {
	boom := errors.New("access denied")
	provider := &fakeLLMProvider{err: boom}
	g := newGenerator(provider)

	_, err := g.Generate(context.Background(), "prompt")

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, provider.calls)
}
