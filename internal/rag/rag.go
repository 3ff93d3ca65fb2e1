package rag

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"product-rag/internal/config"
	"product-rag/internal/llmservice"
	"product-rag/internal/models"
)

// Fixed user-facing strings. Every query resolves to model text or one of
// these; the transport layer never sees an error.
const (
	msgEmptyQuestion  = "Please enter a message."
	msgNoAnswer       = "I couldn't generate an answer."
	msgRateLimited    = "I'm currently rate-limited."
	msgQuotaExhausted = "I'm out of free quota for the selected model. Switch to a lighter model or enable billing."
	msgFailure        = "Sorry, something went wrong while processing your request."
)

// Embedder embeds the question text. Must be the same model the index was
// built with.
type Embedder interface {
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// Index is the read-only similarity search capability of the vector store.
type Index interface {
	Query(ctx context.Context, embedding []float32, k int) ([]models.SearchResult, error)
}

// Completer invokes a chat model with an assembled prompt.
type Completer interface {
	Complete(ctx context.Context, model, prompt string) (string, error)
}

// Response carries the answer text plus the citations it was grounded on.
// Fallback and degraded answers carry no citations.
type Response struct {
	Question string
	Sources  []string
	Content  string
}

type RAG struct {
	embedder Embedder
	index    Index
	llm      Completer
	cfg      *config.Config
}

func NewRAG(embedder Embedder, index Index, llm Completer, cfg *config.Config) *RAG {
	return &RAG{embedder: embedder, index: index, llm: llm, cfg: cfg}
}

// Retrieve embeds the question and returns up to k of the nearest chunks,
// best match first. An empty index yields an empty result.
func (r *RAG) Retrieve(ctx context.Context, question string, k int) ([]models.SearchResult, error) {
	embedding, err := r.embedder.EmbedQuery(ctx, question)
	if err != nil {
		return nil, err
	}
	return r.index.Query(ctx, embedding, k)
}

// Answer runs one grounded-answer request: retrieve context, assemble the
// prompt, call the primary model, and on a quota-classified failure try the
// fallback model once. It never returns an error; every path resolves to a
// text response so the chat surface can always reply.
func (r *RAG) Answer(ctx context.Context, question string) Response {
	question = strings.TrimSpace(question)
	resp := Response{Question: question}
	if question == "" {
		resp.Content = msgEmptyQuestion
		return resp
	}

	results, err := r.Retrieve(ctx, question, r.cfg.RAG.TopK)
	if err != nil {
		log.Error().Err(err).Msg("Retrieval failed")
		resp.Content = msgFailure
		return resp
	}
	prompt := BuildPrompt(results, question)

	text, err := r.llm.Complete(ctx, r.cfg.LLM.PrimaryModel, prompt)
	if err == nil {
		resp.Sources = sources(results)
		resp.Content = text
		if text == "" {
			resp.Content = msgNoAnswer
		}
		return resp
	}

	if !errors.Is(err, llmservice.ErrQuotaExceeded) {
		log.Error().Err(err).Str("model", r.cfg.LLM.PrimaryModel).Msg("Primary model failed")
		resp.Content = msgFailure
		return resp
	}

	log.Warn().Err(err).
		Str("model", r.cfg.LLM.PrimaryModel).
		Str("fallback", r.cfg.LLM.FallbackModel).
		Msg("Primary model rate-limited, trying fallback")

	text, err = r.llm.Complete(ctx, r.cfg.LLM.FallbackModel, prompt)
	if err != nil {
		log.Error().Err(err).Str("model", r.cfg.LLM.FallbackModel).Msg("Fallback model failed")
		resp.Content = msgQuotaExhausted
		return resp
	}
	resp.Content = text
	if text == "" {
		resp.Content = msgRateLimited
	}
	return resp
}

func sources(results []models.SearchResult) []string {
	var out []string
	for _, res := range results {
		out = append(out, fmt.Sprintf("%s (row %s)", res.Metadata["source"], res.Metadata["row"]))
	}
	return out
}
