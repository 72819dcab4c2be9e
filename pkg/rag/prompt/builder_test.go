package prompt

import (
	"testing"

	"ask-engine-be/internal/entity"

	"github.com/stretchr/testify/assert"
)

func TestBuildJoinsChunksWithBlankLines(t *testing.T) {
	chunks := []*entity.Chunk{
		{Content: "first passage"},
		{Content: "second passage"},
	}

	got := Build("what changed in 2023?", chunks)

	assert.Contains(t, got, "first passage\n\nsecond passage")
	assert.Contains(t, got, "Current Question: what changed in 2023?")
	assert.Contains(t, got, "Answer based on the context provided:")
}

func TestBuildEmptyChunks(t *testing.T) {
	got := Build("anything?", nil)

	assert.Contains(t, got, "Context from knowledge base:\n\n")
	assert.Contains(t, got, "Current Question: anything?")
}
