package dto

import (
	"time"

	"github.com/google/uuid"
)

// AskRequest is the inbound payload. Two shapes are accepted: a direct
// query, or a wrapped serialized-JSON body carrying the same fields
// (function-URL style invocations).
type AskRequest struct {
	Query     string `json:"query" validate:"max=10000"`
	Body      string `json:"body"`
	K         int    `json:"k" validate:"omitempty,gte=1,lte=50"`
	UseFacets *bool  `json:"use_facets"`
	UseRerank *bool  `json:"use_rerank"`
}

// WrappedAskBody is the inner JSON document of AskRequest.Body.
type WrappedAskBody struct {
	Query     string `json:"query"`
	K         int    `json:"k"`
	UseFacets *bool  `json:"use_facets"`
	UseRerank *bool  `json:"use_rerank"`
}

type SourceDTO struct {
	Id         uuid.UUID `json:"id"`
	Source     string    `json:"source"`
	Title      string    `json:"title"`
	Similarity float64   `json:"similarity"`
}

type AskResponse struct {
	Query   string             `json:"query"`
	Answer  string             `json:"answer"`
	Sources []SourceDTO        `json:"sources"`
	Timings map[string]float64 `json:"timings"`
}

// QueryAnsweredEvent is published on the analytics topic after each
// successfully answered request.
type QueryAnsweredEvent struct {
	RequestId  uuid.UUID          `json:"request_id"`
	Query      string             `json:"query"`
	ChunkCount int                `json:"chunk_count"`
	Timings    map[string]float64 `json:"timings"`
	AnsweredAt time.Time          `json:"answered_at"`
}
