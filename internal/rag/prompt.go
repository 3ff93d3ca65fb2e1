package rag

import (
	"fmt"
	"strings"

	"product-rag/internal/models"
)

// BuildPrompt assembles the grounded prompt: role instruction, retrieved
// chunk texts verbatim in ranked order, then the question. Pure function.
func BuildPrompt(results []models.SearchResult, question string) string {
	var context strings.Builder
	for _, res := range results {
		context.WriteString(res.Content)
		context.WriteString("\n\n")
	}
	return fmt.Sprintf(models.PromptTemplate, strings.TrimRight(context.String(), "\n"), question)
}
