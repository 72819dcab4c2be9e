package embedding

import (
	"context"
	"encoding/json"
	"fmt"

	"ask-engine-be/pkg/bedrock"
)

// TitanProvider generates embeddings with Amazon Titan on Bedrock.
type TitanProvider struct {
	client  *bedrock.Client
	modelId string
}

func NewTitanProvider(client *bedrock.Client, modelId string) Provider {
	if modelId == "" {
		modelId = "amazon.titan-embed-text-v1"
	}
	return &TitanProvider{
		client:  client,
		modelId: modelId,
	}
}

type titanRequest struct {
	InputText string `json:"inputText"`
}

type titanResponse struct {
	Embedding []float32 `json:"embedding"`
}

func (p *TitanProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	body, err := json.Marshal(titanRequest{InputText: text})
	if err != nil {
		return nil, fmt.Errorf("marshal embedding request: %w", err)
	}

	raw, err := p.client.InvokeModel(ctx, p.modelId, body)
	if err != nil {
		return nil, err
	}

	var resp titanResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("parse embedding response: %w", err)
	}

	return resp.Embedding, nil
}
