package api

import (
	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(app *fiber.App, rag Answerer, staticDir string) {
	h := NewHandler(rag)

	app.Get("/health", h.Health)
	app.Post("/chat", h.Chat)
	app.Static("/", staticDir)
}
