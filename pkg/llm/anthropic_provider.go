package llm

import (
	"context"
	"encoding/json"
	"fmt"

	"ask-engine-be/pkg/bedrock"
)

const defaultMaxTokens = 1000

// AnthropicProvider calls Claude models through Bedrock. Bedrock Anthropic
// payloads require an anthropic_version field and content as typed blocks.
type AnthropicProvider struct {
	client           *bedrock.Client
	modelId          string
	anthropicVersion string
}

var _ Provider = &AnthropicProvider{}

func NewAnthropicProvider(client *bedrock.Client, modelId, anthropicVersion string) *AnthropicProvider {
	if modelId == "" {
		modelId = "anthropic.claude-3-5-sonnet-20240620-v1:0"
	}
	if anthropicVersion == "" {
		anthropicVersion = "bedrock-2023-05-31"
	}
	return &AnthropicProvider{
		client:           client,
		modelId:          modelId,
		anthropicVersion: anthropicVersion,
	}
}

type anthropicContentBlock struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

type anthropicMessage struct {
	Role    string                  `json:"role"`
	Content []anthropicContentBlock `json:"content"`
}

type anthropicRequest struct {
	AnthropicVersion string             `json:"anthropic_version"`
	MaxTokens        int                `json:"max_tokens"`
	System           string             `json:"system,omitempty"`
	Messages         []anthropicMessage `json:"messages"`
}

type anthropicResponse struct {
	Content []anthropicContentBlock `json:"content"`
}

func (p *AnthropicProvider) Complete(ctx context.Context, messages []Message, opts ...Option) ([]ContentBlock, error) {
	options := &Options{MaxTokens: defaultMaxTokens}
	for _, opt := range opts {
		opt(options)
	}

	payload := anthropicRequest{
		AnthropicVersion: p.anthropicVersion,
		MaxTokens:        options.MaxTokens,
		System:           options.System,
		Messages:         make([]anthropicMessage, 0, len(messages)),
	}
	for _, msg := range messages {
		role := msg.Role
		if role == "model" {
			role = "assistant"
		}
		payload.Messages = append(payload.Messages, anthropicMessage{
			Role:    role,
			Content: []anthropicContentBlock{{Type: "text", Text: msg.Content}},
		})
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal chat request: %w", err)
	}

	raw, err := p.client.InvokeModel(ctx, p.modelId, body)
	if err != nil {
		return nil, err
	}

	var resp anthropicResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("parse chat response: %w", err)
	}

	blocks := make([]ContentBlock, len(resp.Content))
	for i, b := range resp.Content {
		blocks[i] = ContentBlock{Type: b.Type, Text: b.Text}
	}
	return blocks, nil
}
