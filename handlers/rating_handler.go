package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/studybridge/peer_tutor/services"
)

type RatingHandler struct {
	svc *services.RatingService
}

func NewRatingHandler(svc *services.RatingService) *RatingHandler {
	return &RatingHandler{svc: svc}
}

type SubmitRatingRequest struct {
	BookingID string `json:"booking_id" validate:"required,uuid"`
	Rating    int    `json:"rating" validate:"required,min=1,max=5"`
	Review    string `json:"review,omitempty" validate:"omitempty,max=500"`
}

func (h *RatingHandler) Submit(c *fiber.Ctx) error {
	raterID, _ := actor(c)

	var req SubmitRatingRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	bookingID, _ := uuid.Parse(req.BookingID)

	rating, err := h.svc.Submit(c.UserContext(), raterID, bookingID, req.Rating, req.Review)
	if err != nil {
		return fail(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Rating submitted successfully",
		"rating":  ratingView(rating),
	})
}

func (h *RatingHandler) List(c *fiber.Ctx) error {
	var tutorID *uuid.UUID
	if raw := c.Query("tutorId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid tutor id"})
		}
		tutorID = &id
	}

	ratings, err := h.svc.List(c.UserContext(), tutorID, c.QueryInt("limit"))
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(fiber.Map{
		"count":   len(ratings),
		"ratings": ratingViews(ratings),
	})
}

func (h *RatingHandler) TutorStats(c *fiber.Ctx) error {
	tutorID, err := uuid.Parse(c.Params("tutorId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid tutor id"})
	}

	stats, err := h.svc.TutorStats(c.UserContext(), tutorID)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(stats)
}
