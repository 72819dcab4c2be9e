package rerank

import (
	"context"
	"encoding/json"
	"fmt"

	"ask-engine-be/pkg/bedrock"
)

// Cohere Rerank on Bedrock requires an integer api_version in the payload.
const cohereAPIVersion = 2

// CohereProvider calls Cohere Rerank through Bedrock.
type CohereProvider struct {
	client  *bedrock.Client
	modelId string
}

func NewCohereProvider(client *bedrock.Client, modelId string) Provider {
	if modelId == "" {
		modelId = "cohere.rerank-v3-5:0"
	}
	return &CohereProvider{
		client:  client,
		modelId: modelId,
	}
}

type cohereRequest struct {
	APIVersion int      `json:"api_version"`
	Query      string   `json:"query"`
	Documents  []string `json:"documents"`
	TopN       int      `json:"top_n"`
}

type cohereResponse struct {
	Results []struct {
		Index          int     `json:"index"`
		RelevanceScore float64 `json:"relevance_score"`
	} `json:"results"`
}

func (p *CohereProvider) Rerank(ctx context.Context, query string, documents []string, topN int) ([]Result, error) {
	body, err := json.Marshal(cohereRequest{
		APIVersion: cohereAPIVersion,
		Query:      query,
		Documents:  documents,
		TopN:       topN,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal rerank request: %w", err)
	}

	raw, err := p.client.InvokeModel(ctx, p.modelId, body)
	if err != nil {
		return nil, err
	}

	var resp cohereResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("parse rerank response: %w", err)
	}

	results := make([]Result, len(resp.Results))
	for i, r := range resp.Results {
		results[i] = Result{Index: r.Index, RelevanceScore: r.RelevanceScore}
	}
	return results, nil
}
