package service

import (
	"context"
	"testing"
	"time"

	"ask-engine-be/internal/entity"
	"ask-engine-be/internal/pkg/logger"
	"ask-engine-be/pkg/backoff"
	"ask-engine-be/pkg/embedding"
	"ask-engine-be/pkg/llm"
	"ask-engine-be/pkg/rag/facet"
	"ask-engine-be/pkg/rerank"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRepo struct {
	seeds  []*entity.Chunk
	extras []*entity.Chunk

	retrieveK   int
	expandCalls int
}

func (r *stubRepo) RetrieveSimilar(_ context.Context, _ []float32, k int) ([]*entity.Chunk, error) {
	r.retrieveK = k
	return r.seeds, nil
}

func (r *stubRepo) ExpandByFacets(_ context.Context, _ []float32, _ []uuid.UUID, _ map[string][]string, _ int) ([]*entity.Chunk, error) {
	r.expandCalls++
	return r.extras, nil
}

func (r *stubRepo) LookupFacetValues(context.Context, []uuid.UUID, string) ([]string, error) {
	return nil, nil
}

type stubEmbedProvider struct{}

func (stubEmbedProvider) Embed(context.Context, string) ([]float32, error) {
	return []float32{0.1, 0.2}, nil
}

type stubRerankProvider struct{}

func (stubRerankProvider) Rerank(_ context.Context, _ string, documents []string, _ int) ([]rerank.Result, error) {
	// Identity ordering with descending scores.
	results := make([]rerank.Result, len(documents))
	for i := range documents {
		results[i] = rerank.Result{Index: i, RelevanceScore: 1 - float64(i)*0.1}
	}
	return results, nil
}

type stubLLMProvider struct {
	gotPrompt string
}

func (p *stubLLMProvider) Complete(_ context.Context, messages []llm.Message, _ ...llm.Option) ([]llm.ContentBlock, error) {
	p.gotPrompt = messages[0].Content
	return []llm.ContentBlock{{Type: "text", Text: "grounded answer"}}, nil
}

func chunkWith(source string, similarity float64) *entity.Chunk {
	return &entity.Chunk{
		Id:         uuid.New(),
		Content:    "passage from " + source,
		Source:     source,
		Title:      "title " + source,
		Similarity: similarity,
	}
}

func newTestService(repo *stubRepo, llmProvider llm.Provider) IAskService {
	inv := backoff.New(backoff.Config{MaxRetries: 2, BaseDelay: time.Microsecond})
	noRetry := func(error) bool { return false }
	log := logger.NewNopLogger()

	embedder := embedding.NewClient(stubEmbedProvider{}, inv, noRetry, 1000, log)
	expander := facet.NewExpander(repo, facet.Config{Facets: []string{"source", "title"}, MaxValuesPerFacet: 2}, log)
	reranker := rerank.NewReranker(stubRerankProvider{}, inv, noRetry, 12, log)
	generator := llm.NewGenerator(llmProvider, inv, noRetry, "sys", 500, log)

	return NewAskService(repo, embedder, expander, reranker, generator, nil, nil,
		RetrievalDefaults{K: 5, ExtraLimit: 5, UseFacets: true, UseRerank: true}, log)
}

func TestAskHappyPathRecordsAllStageTimings(t *testing.T) {
	repo := &stubRepo{seeds: []*entity.Chunk{chunkWith("A", 0.95), chunkWith("B", 0.90)}}
	llmProvider := &stubLLMProvider{}
	svc := newTestService(repo, llmProvider)

	resp, err := svc.Ask(context.Background(), "what is a study permit?", AskOptions{})

	require.NoError(t, err)
	assert.Equal(t, "what is a study permit?", resp.Query)
	assert.Equal(t, "grounded answer", resp.Answer)
	require.Len(t, resp.Sources, 2)

	for _, key := range []string{"embedding_ms", "primary_retrieval_ms", "facet_expansion_ms", "rerank_ms", "llm_ms", "total_ms"} {
		assert.Contains(t, resp.Timings, key)
	}
	assert.Contains(t, llmProvider.gotPrompt, "what is a study permit?")
	assert.Contains(t, llmProvider.gotPrompt, "passage from A")
}

func TestAskDeduplicatesExpansionExtras(t *testing.T) {
	seedA := chunkWith("A", 0.95)
	seedB := chunkWith("A", 0.90)
	fresh := chunkWith("A", 0.80)
	repo := &stubRepo{
		seeds: []*entity.Chunk{seedA, seedB},
		// A misbehaving store echoes a seed back; the handler must drop it.
		extras: []*entity.Chunk{seedB, fresh},
	}
	svc := newTestService(repo, &stubLLMProvider{})

	resp, err := svc.Ask(context.Background(), "q", AskOptions{})

	require.NoError(t, err)
	require.Len(t, resp.Sources, 3)
	ids := map[uuid.UUID]int{}
	for _, src := range resp.Sources {
		ids[src.Id]++
	}
	for id, count := range ids {
		assert.Equal(t, 1, count, "id %s appears more than once", id)
	}
}

func TestAskEmptyRetrievalStillAnswers(t *testing.T) {
	repo := &stubRepo{}
	svc := newTestService(repo, &stubLLMProvider{})

	resp, err := svc.Ask(context.Background(), "q", AskOptions{})

	require.NoError(t, err)
	assert.Equal(t, "grounded answer", resp.Answer)
	assert.NotNil(t, resp.Sources)
	assert.Empty(t, resp.Sources)
	// Empty seeds short-circuit expansion before the store.
	assert.Zero(t, repo.expandCalls)
}

func TestAnswerCacheKeyNormalizesQuery(t *testing.T) {
	assert.Equal(t, answerCacheKey("what is a visa?"), answerCacheKey("  What IS A Visa?  "))
	assert.Equal(t, "ask:answer:what is a visa?", answerCacheKey("What is a Visa?"))
}

func TestAskHonorsKOverrideAndToggles(t *testing.T) {
	repo := &stubRepo{seeds: []*entity.Chunk{chunkWith("A", 0.9)}}
	svc := newTestService(repo, &stubLLMProvider{})

	off := false
	resp, err := svc.Ask(context.Background(), "q", AskOptions{K: 9, UseFacets: &off, UseRerank: &off})

	require.NoError(t, err)
	assert.Equal(t, 9, repo.retrieveK)
	assert.Zero(t, repo.expandCalls)
	assert.NotContains(t, resp.Timings, "facet_expansion_ms")
	assert.NotContains(t, resp.Timings, "rerank_ms")
	assert.Contains(t, resp.Timings, "total_ms")
}
