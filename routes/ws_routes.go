package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/studybridge/peer_tutor/handlers"
	"github.com/studybridge/peer_tutor/middleware"
)

func WebSocketRoutes(app *fiber.App, h *handlers.WSHandler) {
	app.Use("/ws", h.Upgrade)
	app.Get("/ws", middleware.Protected(), h.Serve())
}
