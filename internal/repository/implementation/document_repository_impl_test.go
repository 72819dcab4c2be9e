package implementation

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// newDryRunDB builds SQL without touching a database and captures the
// statement produced by each query.
func newDryRunDB(t *testing.T) (*gorm.DB, *string) {
	t.Helper()

	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN: "host=localhost user=test dbname=test",
	}), &gorm.Config{
		DryRun:               true,
		DisableAutomaticPing: true,
	})
	require.NoError(t, err)

	captured := new(string)
	err = db.Callback().Query().After("gorm:query").Register("capture_sql", func(tx *gorm.DB) {
		*captured = tx.Statement.SQL.String()
	})
	require.NoError(t, err)

	return db, captured
}

func orderClause(t *testing.T, sql string) string {
	t.Helper()
	idx := strings.Index(sql, "ORDER BY")
	require.GreaterOrEqual(t, idx, 0, "query has no ORDER BY: %s", sql)
	return sql[idx:]
}

func TestRetrieveSimilarOrdersByDistance(t *testing.T) {
	db, sql := newDryRunDB(t)
	repo := NewDocumentRepository(db)

	_, err := repo.RetrieveSimilar(context.Background(), []float32{0.1, 0.2}, 5)
	require.NoError(t, err)

	order := orderClause(t, *sql)
	assert.Contains(t, order, "similarity DESC")
	tieBreak := strings.TrimPrefix(order, "ORDER BY ")
	assert.Less(t, strings.Index(tieBreak, "similarity DESC"), strings.Index(tieBreak, "id"),
		"similarity must rank before the id tie-break: %s", order)
	assert.Contains(t, *sql, "LIMIT")
}

func TestExpandByFacetsOrdersByDistanceWithFilters(t *testing.T) {
	db, sql := newDryRunDB(t)
	repo := NewDocumentRepository(db)

	_, err := repo.ExpandByFacets(context.Background(), []float32{0.1},
		[]uuid.UUID{uuid.New(), uuid.New()},
		map[string][]string{"source": {"A"}, "title": {"T"}}, 5)
	require.NoError(t, err)

	assert.Contains(t, *sql, "id NOT IN")
	assert.Contains(t, *sql, "source IN")
	assert.Contains(t, *sql, "title IN")

	order := orderClause(t, *sql)
	assert.Contains(t, order, "similarity DESC")
}

func TestExpandByFacetsRejectsUnknownFacetColumn(t *testing.T) {
	db, _ := newDryRunDB(t)
	repo := NewDocumentRepository(db)

	_, err := repo.ExpandByFacets(context.Background(), []float32{0.1}, nil,
		map[string][]string{"metadata": {"x"}}, 5)

	assert.Error(t, err)
}
