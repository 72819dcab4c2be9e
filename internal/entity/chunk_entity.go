package entity

import (
	"github.com/google/uuid"
)

// Chunk is one retrieved passage of the corpus. Identity is the id; the
// struct is immutable once fetched except for RelevanceScore, which the
// reranker annotates on its own copies.
type Chunk struct {
	Id         uuid.UUID
	Content    string
	Source     string
	Title      string
	Section    string
	Similarity float64

	// RelevanceScore is set during reranking; nil until then.
	RelevanceScore *float64
}
