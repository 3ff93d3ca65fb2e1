package embedding

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"product-rag/internal/config"

	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/openai"
)

// ServiceError marks a failure of the embedding service boundary
// (transport, auth or quota).
type ServiceError struct {
	Err error
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("embedding service: %v", e.Err)
}

func (e *ServiceError) Unwrap() error { return e.Err }

// Embedder converts text into fixed-dimension vectors. The same model must be
// used at ingestion and query time; two vectors are only comparable when they
// come from the same embedding model.
type Embedder interface {
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)
}

// OpenAIEmbedder implements Embedder against an OpenAI-compatible endpoint
// with the same bounded per-call timeout and retry budget as the chat client.
type OpenAIEmbedder struct {
	embedder   embeddings.Embedder
	maxRetries int
}

// NewEmbedder creates a new embedder
func NewEmbedder(cfg *config.LLMConfig) (*OpenAIEmbedder, error) {
	token := strings.TrimPrefix(cfg.APIKey, "Bearer ")
	if token == "" {
		// local OpenAI-compatible services accept any token
		log.Warn().Str("env", cfg.APIKeyEnv).Msg("No API key found in environment")
		token = "none"
	}

	llm, err := openai.New(
		openai.WithBaseURL(cfg.BaseURL),
		openai.WithToken(token),
		openai.WithEmbeddingModel(cfg.EmbeddingModel),
		openai.WithHTTPClient(&http.Client{Timeout: time.Duration(cfg.TimeoutSecs) * time.Second}),
	)
	if err != nil {
		return nil, err
	}
	impl, err := embeddings.NewEmbedder(llm, embeddings.WithStripNewLines(true))
	if err != nil {
		return nil, err
	}
	return newOpenAIEmbedder(impl, cfg), nil
}

func newOpenAIEmbedder(embedder embeddings.Embedder, cfg *config.LLMConfig) *OpenAIEmbedder {
	return &OpenAIEmbedder{embedder: embedder, maxRetries: cfg.MaxRetries}
}

func (e *OpenAIEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	var vector []float32
	err := e.withRetry(ctx, func() error {
		var err error
		vector, err = e.embedder.EmbedQuery(ctx, text)
		return err
	})
	if err != nil {
		return nil, &ServiceError{Err: err}
	}
	return vector, nil
}

func (e *OpenAIEmbedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	var vectors [][]float32
	err := e.withRetry(ctx, func() error {
		var err error
		vectors, err = e.embedder.EmbedDocuments(ctx, texts)
		return err
	})
	if err != nil {
		return nil, &ServiceError{Err: err}
	}
	if len(vectors) != len(texts) {
		return nil, &ServiceError{Err: fmt.Errorf("got %d vectors for %d texts", len(vectors), len(texts))}
	}
	return vectors, nil
}

// withRetry re-attempts transient failures within the configured budget so a
// flaky endpoint degrades to a terminal error instead of failing the whole
// ingestion run on the first hiccup.
func (e *OpenAIEmbedder) withRetry(ctx context.Context, call func() error) error {
	var lastErr error
	for attempt := 0; attempt <= e.maxRetries; attempt++ {
		lastErr = call()
		if lastErr == nil {
			return nil
		}
		if ctx.Err() != nil {
			break
		}
		if attempt < e.maxRetries {
			log.Warn().Err(lastErr).Int("attempt", attempt+1).Msg("Embedding failed, retrying")
		}
	}
	return lastErr
}
