package rerank

import "context"

// Result is one scored document index from the rerank provider. Indices
// refer to positions in the submitted document list and may be duplicated
// or out of range in a noisy response; the Reranker sanitizes them.
type Result struct {
	Index          int
	RelevanceScore float64
}

// Provider scores documents against a query with a relevance model.
type Provider interface {
	Rerank(ctx context.Context, query string, documents []string, topN int) ([]Result, error)
}
