package api

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"product-rag/internal/rag"
)

// Answerer is the query pipeline as seen from the transport layer: a question
// in, a text-bearing response out, never an error.
type Answerer interface {
	Answer(ctx context.Context, question string) rag.Response
}

// Handler holds the handler dependencies.
type Handler struct {
	rag Answerer
}

func NewHandler(rag Answerer) *Handler {
	return &Handler{rag: rag}
}

func (h *Handler) Health(c *fiber.Ctx) error {
	return c.SendString("ok")
}

type chatRequest struct {
	Message string `json:"message"`
}

type chatResponse struct {
	Response string `json:"response"`
}

// Chat answers one question. The response is always 200 with a body; a
// malformed or empty payload behaves like an empty question.
func (h *Handler) Chat(c *fiber.Ctx) error {
	var req chatRequest
	_ = c.BodyParser(&req)

	resp := h.rag.Answer(c.UserContext(), req.Message)
	return c.JSON(chatResponse{Response: resp.Content})
}
