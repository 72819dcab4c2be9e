package service

import (
	"context"
	"encoding/json"
	"math"
	"strings"
	"time"

	"ask-engine-be/internal/dto"
	"ask-engine-be/internal/entity"
	"ask-engine-be/internal/pkg/logger"
	"ask-engine-be/internal/repository/contract"
	"ask-engine-be/pkg/embedding"
	"ask-engine-be/pkg/llm"
	"ask-engine-be/pkg/rag/facet"
	"ask-engine-be/pkg/rag/prompt"
	"ask-engine-be/pkg/rerank"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const answerCacheTTL = 15 * time.Minute

// AskOptions are the per-request pipeline toggles; zero values fall back to
// the configured defaults.
type AskOptions struct {
	K         int
	UseFacets *bool
	UseRerank *bool
}

// RetrievalDefaults are the config-level pipeline settings.
type RetrievalDefaults struct {
	K          int
	ExtraLimit int
	UseFacets  bool
	UseRerank  bool
}

// IAskService runs the retrieval-augmented answering pipeline for one query.
type IAskService interface {
	Ask(ctx context.Context, query string, opts AskOptions) (*dto.AskResponse, error)
}

type askService struct {
	repo      contract.DocumentRepository
	embedder  *embedding.Client
	expander  *facet.Expander
	reranker  *rerank.Reranker
	generator *llm.Generator
	publisher IAnalyticsPublisher
	cache     *redis.Client // nil disables answer caching
	defaults  RetrievalDefaults
	logger    logger.ILogger
}

func NewAskService(
	repo contract.DocumentRepository,
	embedder *embedding.Client,
	expander *facet.Expander,
	reranker *rerank.Reranker,
	generator *llm.Generator,
	publisher IAnalyticsPublisher,
	cache *redis.Client,
	defaults RetrievalDefaults,
	log logger.ILogger,
) IAskService {
	if defaults.K <= 0 {
		defaults.K = 5
	}
	if defaults.ExtraLimit <= 0 {
		defaults.ExtraLimit = 5
	}
	return &askService{
		repo:      repo,
		embedder:  embedder,
		expander:  expander,
		reranker:  reranker,
		generator: generator,
		publisher: publisher,
		cache:     cache,
		defaults:  defaults,
		logger:    log,
	}
}

// Ask executes the pipeline stages strictly in sequence: embed, retrieve,
// expand, rerank, assemble context, generate. Each stage's wall-clock
// duration lands in the timings map; total is measured independently and
// legitimately exceeds the stage sum (prompt assembly is unmeasured).
func (s *askService) Ask(ctx context.Context, query string, opts AskOptions) (*dto.AskResponse, error) {
	if cached := s.cachedAnswer(ctx, query); cached != nil {
		return cached, nil
	}

	k := opts.K
	if k <= 0 {
		k = s.defaults.K
	}
	useFacets := s.defaults.UseFacets
	if opts.UseFacets != nil {
		useFacets = *opts.UseFacets
	}
	useRerank := s.defaults.UseRerank
	if opts.UseRerank != nil {
		useRerank = *opts.UseRerank
	}

	timings := make(map[string]float64)
	totalStart := time.Now()

	stageStart := time.Now()
	queryVector, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, err
	}
	timings["embedding_ms"] = millisSince(stageStart)

	stageStart = time.Now()
	chunks, err := s.repo.RetrieveSimilar(ctx, queryVector, k)
	if err != nil {
		return nil, err
	}
	timings["primary_retrieval_ms"] = millisSince(stageStart)

	if useFacets {
		stageStart = time.Now()
		extras, err := s.expander.Expand(ctx, chunks, queryVector, s.defaults.ExtraLimit)
		if err != nil {
			return nil, err
		}
		timings["facet_expansion_ms"] = millisSince(stageStart)
		chunks = mergeUnique(chunks, extras)
	}

	s.logger.Debug("ask", "Retrieved candidate set", map[string]interface{}{
		"query_chars": len(query),
		"candidates":  len(chunks),
	})

	if useRerank {
		stageStart = time.Now()
		chunks = s.reranker.Rerank(ctx, query, chunks)
		timings["rerank_ms"] = millisSince(stageStart)
	}

	askPrompt := prompt.Build(query, chunks)

	stageStart = time.Now()
	answer, err := s.generator.Generate(ctx, askPrompt)
	if err != nil {
		return nil, err
	}
	timings["llm_ms"] = millisSince(stageStart)

	timings["total_ms"] = millisSince(totalStart)

	response := &dto.AskResponse{
		Query:   query,
		Answer:  answer,
		Sources: toSources(chunks),
		Timings: timings,
	}

	s.storeAnswer(ctx, query, response)
	s.publishAnswered(query, len(chunks), timings)

	return response, nil
}

// mergeUnique appends extras whose id is not already present, preserving
// first-seen order. No id ever appears twice in the candidate set.
func mergeUnique(seeds []*entity.Chunk, extras []*entity.Chunk) []*entity.Chunk {
	seen := make(map[uuid.UUID]bool, len(seeds))
	for _, c := range seeds {
		seen[c.Id] = true
	}
	merged := seeds
	for _, c := range extras {
		if !seen[c.Id] {
			merged = append(merged, c)
			seen[c.Id] = true
		}
	}
	return merged
}

func toSources(chunks []*entity.Chunk) []dto.SourceDTO {
	sources := make([]dto.SourceDTO, len(chunks))
	for i, c := range chunks {
		sources[i] = dto.SourceDTO{
			Id:         c.Id,
			Source:     c.Source,
			Title:      c.Title,
			Similarity: c.Similarity,
		}
	}
	return sources
}

func millisSince(start time.Time) float64 {
	ms := float64(time.Since(start).Microseconds()) / 1000.0
	return math.Round(ms*100) / 100
}

func (s *askService) cachedAnswer(ctx context.Context, query string) *dto.AskResponse {
	if s.cache == nil {
		return nil
	}
	raw, err := s.cache.Get(ctx, answerCacheKey(query)).Result()
	if err != nil {
		return nil // miss or unavailable cache, either way recompute
	}
	var cached dto.AskResponse
	if err := json.Unmarshal([]byte(raw), &cached); err != nil {
		return nil
	}
	return &cached
}

func (s *askService) storeAnswer(ctx context.Context, query string, response *dto.AskResponse) {
	if s.cache == nil {
		return
	}
	payload, err := json.Marshal(response)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, answerCacheKey(query), payload, answerCacheTTL).Err(); err != nil {
		s.logger.Warn("ask", "Failed to cache answer", map[string]interface{}{"error": err.Error()})
	}
}

// answerCacheKey normalizes the query so trivially different spellings of
// the same question share a cache entry.
func answerCacheKey(query string) string {
	return "ask:answer:" + strings.ToLower(strings.TrimSpace(query))
}

func (s *askService) publishAnswered(query string, chunkCount int, timings map[string]float64) {
	if s.publisher == nil {
		return
	}
	evt := &dto.QueryAnsweredEvent{
		RequestId:  uuid.New(),
		Query:      query,
		ChunkCount: chunkCount,
		Timings:    timings,
		AnsweredAt: time.Now(),
	}
	if err := s.publisher.PublishQueryAnswered(evt); err != nil {
		s.logger.Warn("ask", "Failed to publish analytics event", map[string]interface{}{"error": err.Error()})
	}
}
