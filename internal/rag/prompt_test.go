package rag

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"product-rag/internal/models"
)

func TestBuildPrompt(t *testing.T) {
	results := []models.SearchResult{
		{Content: "name: Widget\nprice: 9.99"},
		{Content: "name: Gadget\nprice: 19.99"},
	}
	prompt := BuildPrompt(results, "What is the price of the Widget?")

	assert.Contains(t, prompt, "shopping assistant")
	assert.Contains(t, prompt, "name: Widget\nprice: 9.99")
	assert.Contains(t, prompt, "Question: What is the price of the Widget?")

	// chunks appear verbatim and in ranked order
	widget := strings.Index(prompt, "name: Widget")
	gadget := strings.Index(prompt, "name: Gadget")
	assert.Less(t, widget, gadget)
}

func TestBuildPrompt_Deterministic(t *testing.T) {
	results := []models.SearchResult{{Content: "name: Widget"}}
	assert.Equal(t,
		BuildPrompt(results, "q"),
		BuildPrompt(results, "q"),
	)
}

func TestBuildPrompt_EmptyContext(t *testing.T) {
	prompt := BuildPrompt(nil, "Is anything in stock?")
	assert.Contains(t, prompt, "Question: Is anything in stock?")
	assert.Contains(t, prompt, "Context:")
}
