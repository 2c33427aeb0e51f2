package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/studybridge/peer_tutor/handlers"
	"github.com/studybridge/peer_tutor/middleware"
)

func TutorRoutes(app *fiber.App, h *handlers.TutorHandler) {
	api := app.Group("/api/v1")

	api.Get("/tutors", h.List)
	api.Put("/tutors/profile", middleware.Protected(), middleware.TutorRequired(), h.UpdateProfile)
	api.Get("/tutors/:tutorId", h.Get)
}
