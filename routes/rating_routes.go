package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/studybridge/peer_tutor/handlers"
	"github.com/studybridge/peer_tutor/middleware"
)

func RatingRoutes(app *fiber.App, h *handlers.RatingHandler) {
	api := app.Group("/api/v1")

	rating := api.Group("/ratings", middleware.Protected())
	rating.Post("", h.Submit)
	rating.Get("", h.List)
	rating.Get("/tutor/:tutorId/stats", h.TutorStats)
}
