package mapper

import (
	"ask-engine-be/internal/entity"
	"ask-engine-be/internal/model"
)

type DocumentMapper struct{}

func NewDocumentMapper() *DocumentMapper {
	return &DocumentMapper{}
}

// ToChunk converts a scored document row into its domain chunk.
// Section is intentionally left to the projection: the primary retrieval
// query does not select it, so it stays empty unless expanded later.
func (m *DocumentMapper) ToChunk(doc *model.Document, similarity float64) *entity.Chunk {
	return &entity.Chunk{
		Id:         doc.Id,
		Content:    doc.Content,
		Source:     doc.Source,
		Title:      doc.Title,
		Section:    doc.Section,
		Similarity: similarity,
	}
}
