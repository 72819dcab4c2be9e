package llm

import "context"

// Message is a chat message in a provider-agnostic format.
type Message struct {
	Role    string // "user", "assistant", "system"
	Content string
}

// ContentBlock is one typed block of a generation response. Providers return
// blocks as-is; interpreting them (and rejecting block lists without text)
// is the Generator's job.
type ContentBlock struct {
	Type string
	Text string
}

// Option allows optional parameters like MaxTokens or a system prompt.
type Option func(*Options)

type Options struct {
	MaxTokens int
	System    string
}

func WithMaxTokens(n int) Option {
	return func(o *Options) {
		o.MaxTokens = n
	}
}

func WithSystem(system string) Option {
	return func(o *Options) {
		o.System = system
	}
}

// Provider defines the contract for any chat-completion backend.
type Provider interface {
	// Complete sends a chat history to the model and returns its ordered
	// content blocks.
	Complete(ctx context.Context, messages []Message, options ...Option) ([]ContentBlock, error)
}
