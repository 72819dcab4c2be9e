package facet

import (
	"context"
	"sort"

	"ask-engine-be/internal/entity"
	"ask-engine-be/internal/pkg/logger"
	"ask-engine-be/internal/repository/contract"

	"github.com/google/uuid"
)

// Config controls which metadata facets drive expansion.
type Config struct {
	// Facets are the enabled facet names (e.g. source, title, section).
	Facets []string
	// MaxValuesPerFacet keeps only the N most frequent values per facet.
	MaxValuesPerFacet int
}

func DefaultConfig() Config {
	return Config{
		Facets:            []string{"source", "title", "section"},
		MaxValuesPerFacet: 2,
	}
}

// seedProjections maps facets already present on the retrieval projection to
// their accessor. Facets missing here (section) are fetched from the store.
var seedProjections = map[string]func(*entity.Chunk) string{
	"source": func(c *entity.Chunk) string { return c.Source },
	"title":  func(c *entity.Chunk) string { return c.Title },
}

// Expander grows a seed candidate set through shared metadata: the most
// frequent facet values across the seeds are treated as lightweight edges to
// topically related chunks the pure vector ranking missed.
type Expander struct {
	repo   contract.DocumentRepository
	cfg    Config
	logger logger.ILogger
}

func NewExpander(repo contract.DocumentRepository, cfg Config, log logger.ILogger) *Expander {
	if cfg.MaxValuesPerFacet <= 0 {
		cfg.MaxValuesPerFacet = 2
	}
	return &Expander{
		repo:   repo,
		cfg:    cfg,
		logger: log,
	}
}

// Expand returns extra chunks sharing dominant facet values with the seeds,
// ordered by similarity to the query vector and excluding every seed id.
// Empty seeds or an empty enabled-facet set are a safe no-op with no store
// query.
func (e *Expander) Expand(ctx context.Context, seeds []*entity.Chunk, queryVector []float32, extraLimit int) ([]*entity.Chunk, error) {
	if len(seeds) == 0 {
		return nil, nil
	}

	seedIds := make([]uuid.UUID, len(seeds))
	for i, s := range seeds {
		seedIds[i] = s.Id
	}

	facetValues := make(map[string][]string, len(e.cfg.Facets))
	for _, facet := range e.cfg.Facets {
		values, err := e.topValues(ctx, facet, seeds, seedIds)
		if err != nil {
			return nil, err
		}
		if len(values) > 0 {
			facetValues[facet] = values
		}
	}

	if len(facetValues) == 0 {
		return nil, nil
	}

	extras, err := e.repo.ExpandByFacets(ctx, queryVector, seedIds, facetValues, extraLimit)
	if err != nil {
		return nil, err
	}

	e.logger.Debug("facet", "Facet expansion complete", map[string]interface{}{
		"seeds":  len(seeds),
		"extras": len(extras),
		"facets": len(facetValues),
	})
	return extras, nil
}

func (e *Expander) topValues(ctx context.Context, facet string, seeds []*entity.Chunk, seedIds []uuid.UUID) ([]string, error) {
	var raw []string
	if accessor, projected := seedProjections[facet]; projected {
		raw = make([]string, 0, len(seeds))
		for _, s := range seeds {
			raw = append(raw, accessor(s))
		}
	} else {
		values, err := e.repo.LookupFacetValues(ctx, seedIds, facet)
		if err != nil {
			return nil, err
		}
		raw = values
	}
	return mostCommon(raw, e.cfg.MaxValuesPerFacet), nil
}

// mostCommon returns up to n non-empty values ordered by descending
// frequency; ties keep first-appearance order.
func mostCommon(values []string, n int) []string {
	counts := make(map[string]int)
	var order []string
	for _, v := range values {
		if v == "" {
			continue
		}
		if counts[v] == 0 {
			order = append(order, v)
		}
		counts[v]++
	}

	// Stable sort keeps first-appearance order on equal counts.
	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})

	if len(order) > n {
		order = order[:n]
	}
	return order
}
