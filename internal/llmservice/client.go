package llmservice

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"product-rag/internal/config"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// ErrQuotaExceeded tags chat-model failures caused by quota exhaustion or
// rate limiting. Callers dispatch the fallback path on this tag instead of
// inspecting error text themselves.
var ErrQuotaExceeded = errors.New("model quota exceeded")

// quotaMarkers is the known failure surface of the upstream service: an HTTP
// 429, a resource-exhausted status, or "quota" anywhere in the error text.
var quotaMarkers = []string{
	"429",
	"quota",
	"resource_exhausted",
	"resource-exhausted",
	"resource exhausted",
}

// classifyErr is the single place the upstream error surface is translated
// into the pipeline's taxonomy.
func classifyErr(err error) error {
	msg := strings.ToLower(err.Error())
	for _, marker := range quotaMarkers {
		if strings.Contains(msg, marker) {
			return errors.Join(ErrQuotaExceeded, err)
		}
	}
	return err
}

// Client calls an OpenAI-compatible chat endpoint with a bounded per-call
// timeout and a small bounded retry count. The model is chosen per call so
// primary and fallback share one client.
type Client struct {
	llm         llms.Model
	temperature float64
	maxTokens   int
	maxRetries  int
}

// NewClient builds the chat client from config.
func NewClient(cfg *config.LLMConfig) (*Client, error) {
	token := strings.TrimPrefix(cfg.APIKey, "Bearer ")
	if token == "" {
		log.Warn().Str("env", cfg.APIKeyEnv).Msg("No API key found in environment")
		token = "none"
	}

	llm, err := openai.New(
		openai.WithBaseURL(cfg.BaseURL),
		openai.WithToken(token),
		openai.WithModel(cfg.PrimaryModel),
		openai.WithHTTPClient(&http.Client{Timeout: time.Duration(cfg.TimeoutSecs) * time.Second}),
	)
	if err != nil {
		return nil, err
	}
	return newClient(llm, cfg), nil
}

func newClient(llm llms.Model, cfg *config.LLMConfig) *Client {
	return &Client{
		llm:         llm,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		maxRetries:  cfg.MaxRetries,
	}
}

// Complete sends the prompt to the given chat model and returns its text.
// Transient failures are retried up to the configured count; quota-classified
// failures are returned immediately, tagged ErrQuotaExceeded, so the caller
// can fall back without waiting out the retry budget.
func (c *Client) Complete(ctx context.Context, model, prompt string) (string, error) {
	messages := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeHuman, prompt),
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		resp, err := c.llm.GenerateContent(ctx, messages,
			llms.WithModel(model),
			llms.WithTemperature(c.temperature),
			llms.WithMaxTokens(c.maxTokens),
		)
		if err == nil {
			if len(resp.Choices) == 0 {
				return "", nil
			}
			return strings.TrimSpace(resp.Choices[0].Content), nil
		}

		lastErr = classifyErr(err)
		if errors.Is(lastErr, ErrQuotaExceeded) || ctx.Err() != nil {
			break
		}
		if attempt < c.maxRetries {
			log.Warn().Err(err).Str("model", model).Int("attempt", attempt+1).Msg("Chat completion failed, retrying")
		}
	}
	return "", lastErr
}
