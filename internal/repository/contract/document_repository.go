package contract

import (
	"context"

	"ask-engine-be/internal/entity"

	"github.com/google/uuid"
)

// DocumentRepository is the vector-capable store behind the RAG pipeline.
//
// Both similarity queries rank by cosine distance (`embedding <=> query`),
// with id as a deterministic tie-break on equal distance. Similarity is
// reported as 1 - distance.
type DocumentRepository interface {
	// RetrieveSimilar returns the k nearest chunks to the query vector,
	// most similar first.
	RetrieveSimilar(ctx context.Context, embedding []float32, k int) ([]*entity.Chunk, error)

	// ExpandByFacets returns up to limit chunks whose id is not in excludeIds
	// and whose value on ANY facet matches one of that facet's values,
	// ordered by similarity to the query vector. An empty facetValues map
	// matches nothing and returns no rows.
	ExpandByFacets(ctx context.Context, embedding []float32, excludeIds []uuid.UUID, facetValues map[string][]string, limit int) ([]*entity.Chunk, error)

	// LookupFacetValues fetches the raw values of one facet column for the
	// given ids, for facets not present on the retrieval projection.
	LookupFacetValues(ctx context.Context, ids []uuid.UUID, facet string) ([]string, error)
}
