package rerank

import (
	"context"
	"sort"

	"ask-engine-be/internal/entity"
	"ask-engine-be/internal/pkg/logger"
	"ask-engine-be/pkg/backoff"
)

// DefaultMaxChunks bounds the context handed to the generation model.
const DefaultMaxChunks = 12

// Reranker reorders candidates by model-scored relevance. It is strictly
// best-effort: any provider or parsing failure falls back to the original
// similarity ordering, truncated to the chunk limit, and never surfaces
// an error to the pipeline.
type Reranker struct {
	provider  Provider
	invoker   *backoff.Invoker
	retryable func(error) bool
	maxChunks int
	logger    logger.ILogger
}

func NewReranker(provider Provider, invoker *backoff.Invoker, retryable func(error) bool, maxChunks int, log logger.ILogger) *Reranker {
	if maxChunks <= 0 {
		maxChunks = DefaultMaxChunks
	}
	return &Reranker{
		provider:  provider,
		invoker:   invoker,
		retryable: retryable,
		maxChunks: maxChunks,
		logger:    log,
	}
}

// Rerank returns at most maxChunks chunks ordered by relevance. Duplicate
// indices keep their highest-scoring occurrence; out-of-range indices are
// dropped; chunks the provider never scored are appended in original order
// with their similarity as a synthetic relevance score.
func (r *Reranker) Rerank(ctx context.Context, query string, chunks []*entity.Chunk) []*entity.Chunk {
	if len(chunks) == 0 {
		return []*entity.Chunk{}
	}

	documents := make([]string, len(chunks))
	for i, c := range chunks {
		documents[i] = c.Content
	}
	topN := r.maxChunks
	if len(documents) < topN {
		topN = len(documents)
	}

	results, err := backoff.Invoke(ctx, r.invoker, func(ctx context.Context) ([]Result, error) {
		return r.provider.Rerank(ctx, query, documents, topN)
	}, r.retryable)
	if err != nil {
		r.logger.Warn("rerank", "Rerank failed, falling back to similarity ordering", map[string]interface{}{
			"error": err.Error(),
		})
		return r.fallback(chunks)
	}

	// Highest score first; stable so provider order breaks ties.
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].RelevanceScore > results[j].RelevanceScore
	})

	ranked := make([]*entity.Chunk, 0, r.maxChunks)
	seen := make(map[int]bool, len(results))
	for _, res := range results {
		if res.Index < 0 || res.Index >= len(chunks) || seen[res.Index] {
			continue
		}
		ranked = append(ranked, annotate(chunks[res.Index], res.RelevanceScore))
		seen[res.Index] = true
	}

	// Fill anything the provider did not cover, preserving original order.
	for i, c := range chunks {
		if len(ranked) >= r.maxChunks {
			break
		}
		if !seen[i] {
			ranked = append(ranked, annotate(c, c.Similarity))
			seen[i] = true
		}
	}

	if len(ranked) > r.maxChunks {
		ranked = ranked[:r.maxChunks]
	}
	return ranked
}

func (r *Reranker) fallback(chunks []*entity.Chunk) []*entity.Chunk {
	n := len(chunks)
	if n > r.maxChunks {
		n = r.maxChunks
	}
	out := make([]*entity.Chunk, n)
	copy(out, chunks[:n])
	return out
}

// annotate copies the chunk so reranking never mutates the caller's set.
func annotate(c *entity.Chunk, score float64) *entity.Chunk {
	copied := *c
	copied.RelevanceScore = &score
	return &copied
}
