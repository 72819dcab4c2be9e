package implementation

import (
	"context"
	"fmt"
	"sort"

	"ask-engine-be/internal/entity"
	"ask-engine-be/internal/mapper"
	"ask-engine-be/internal/model"
	"ask-engine-be/internal/repository/contract"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

// facetColumns is the allowlist of metadata columns usable as facets.
// Facet names come from configuration, never from request input, but the
// allowlist keeps them out of raw SQL regardless.
var facetColumns = map[string]string{
	"source":  "source",
	"title":   "title",
	"section": "section",
}

type DocumentRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.DocumentMapper
}

func NewDocumentRepository(db *gorm.DB) contract.DocumentRepository {
	return &DocumentRepositoryImpl{
		db:     db,
		mapper: mapper.NewDocumentMapper(),
	}
}

// scoredRow carries the similarity computed in SQL alongside the projection.
type scoredRow struct {
	model.Document
	Similarity float64
}

func (r *DocumentRepositoryImpl) RetrieveSimilar(ctx context.Context, embedding []float32, k int) ([]*entity.Chunk, error) {
	if k <= 0 {
		k = 5
	}

	queryVector := pgvector.NewVector(embedding)

	// Cosine distance in pgvector is 1 - cosine_similarity, so
	// 1 - (embedding <=> query) recovers the similarity. Ordering by the
	// alias descending is ordering by distance ascending.
	var rows []scoredRow
	err := r.db.WithContext(ctx).
		Table("documents").
		Select("id, content, source, title, 1 - (embedding <=> ?) AS similarity", queryVector).
		Order("similarity DESC").
		Order("id").
		Limit(k).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	return r.toChunks(rows), nil
}

func (r *DocumentRepositoryImpl) ExpandByFacets(ctx context.Context, embedding []float32, excludeIds []uuid.UUID, facetValues map[string][]string, limit int) ([]*entity.Chunk, error) {
	if limit <= 0 {
		limit = 5
	}

	// Stable clause order regardless of map iteration.
	facets := make([]string, 0, len(facetValues))
	for facet, values := range facetValues {
		if len(values) > 0 {
			facets = append(facets, facet)
		}
	}
	sort.Strings(facets)

	// No facet clause means the membership filter matches nothing.
	if len(facets) == 0 {
		return nil, nil
	}

	facetScope := r.db.Session(&gorm.Session{NewDB: true})
	for i, facet := range facets {
		column, ok := facetColumns[facet]
		if !ok {
			return nil, fmt.Errorf("unknown facet %q", facet)
		}
		if i == 0 {
			facetScope = facetScope.Where(column+" IN ?", facetValues[facet])
		} else {
			facetScope = facetScope.Or(column+" IN ?", facetValues[facet])
		}
	}

	queryVector := pgvector.NewVector(embedding)

	query := r.db.WithContext(ctx).
		Table("documents").
		Select("id, content, source, title, 1 - (embedding <=> ?) AS similarity", queryVector)
	if len(excludeIds) > 0 {
		query = query.Where("id NOT IN ?", excludeIds)
	}

	var rows []scoredRow
	err := query.
		Where(facetScope).
		Order("similarity DESC").
		Order("id").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	return r.toChunks(rows), nil
}

func (r *DocumentRepositoryImpl) LookupFacetValues(ctx context.Context, ids []uuid.UUID, facet string) ([]string, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	column, ok := facetColumns[facet]
	if !ok {
		return nil, fmt.Errorf("unknown facet %q", facet)
	}

	var values []string
	err := r.db.WithContext(ctx).
		Table("documents").
		Where("id IN ?", ids).
		Pluck(column, &values).Error
	if err != nil {
		return nil, err
	}

	return values, nil
}

func (r *DocumentRepositoryImpl) toChunks(rows []scoredRow) []*entity.Chunk {
	chunks := make([]*entity.Chunk, len(rows))
	for i := range rows {
		chunks[i] = r.mapper.ToChunk(&rows[i].Document, rows[i].Similarity)
	}
	return chunks
}
