package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"product-rag/internal/rag"
)

type stubAnswerer struct {
	questions []string
}

func (s *stubAnswerer) Answer(ctx context.Context, question string) rag.Response {
	s.questions = append(s.questions, question)
	if strings.TrimSpace(question) == "" {
		return rag.Response{Content: "Please enter a message."}
	}
	return rag.Response{Question: question, Content: "The Widget costs $9.99."}
}

func newTestApp(t *testing.T) (*fiber.App, *stubAnswerer) {
	t.Helper()
	answerer := &stubAnswerer{}
	app := fiber.New()
	app.Get("/health", NewHandler(answerer).Health)
	app.Post("/chat", NewHandler(answerer).Chat)
	return app, answerer
}

func postChat(t *testing.T, app *fiber.App, body string) (int, string) {
	t.Helper()
	req := httptest.NewRequest("POST", "/chat", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var parsed struct {
		Response string `json:"response"`
	}
	require.NoError(t, json.Unmarshal(data, &parsed))
	return resp.StatusCode, parsed.Response
}

func TestChat(t *testing.T) {
	app, answerer := newTestApp(t)

	status, response := postChat(t, app, `{"message":"What is the price of the Widget?"}`)
	assert.Equal(t, 200, status)
	assert.Equal(t, "The Widget costs $9.99.", response)
	assert.Equal(t, []string{"What is the price of the Widget?"}, answerer.questions)
}

func TestChat_EmptyMessage(t *testing.T) {
	app, _ := newTestApp(t)

	status, response := postChat(t, app, `{"message":""}`)
	assert.Equal(t, 200, status)
	assert.Equal(t, "Please enter a message.", response)
}

func TestChat_MalformedBodyStillAnswers(t *testing.T) {
	app, _ := newTestApp(t)

	status, response := postChat(t, app, "not json at all")
	assert.Equal(t, 200, status)
	assert.Equal(t, "Please enter a message.", response)
}

func TestHealth(t *testing.T) {
	app, _ := newTestApp(t)

	resp, err := app.Test(httptest.NewRequest("GET", "/health", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, 200, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "ok", string(body))
}
