package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/studybridge/peer_tutor/handlers"
	"github.com/studybridge/peer_tutor/middleware"
)

func BookingRoutes(app *fiber.App, h *handlers.BookingHandler) {
	api := app.Group("/api/v1")

	booking := api.Group("/bookings", middleware.Protected())
	booking.Post("", h.Create)
	booking.Get("", h.List)
	// registered before /:id so "availability" is not parsed as a booking id
	booking.Get("/availability", h.Availability)
	booking.Get("/:id", h.GetByID)
	booking.Put("/:id", h.UpdateStatus)
}
