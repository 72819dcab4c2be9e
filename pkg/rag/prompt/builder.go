package prompt

import (
	"fmt"
	"strings"

	"ask-engine-be/internal/entity"
)

// Build assembles the generation prompt from the final candidate set. An
// empty set still produces a well-formed prompt; the model is instructed by
// the system prompt to answer from its own knowledge when context is thin.
func Build(query string, chunks []*entity.Chunk) string {
	contents := make([]string, len(chunks))
	for i, c := range chunks {
		contents[i] = c.Content
	}
	context := strings.Join(contents, "\n\n")

	return fmt.Sprintf(
		"Context from knowledge base:\n%s\n\nCurrent Question: %s\n\nAnswer based on the context provided:",
		context, query,
	)
}

// System is the default system instruction for answer generation.
const System = "You are an expert Canadian immigration assistant. Do not mention the context provided if not relevant. Use any relevant provided context to answer questions accurately, or find the answer yourself otherwise."
