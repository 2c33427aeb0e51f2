package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/studybridge/peer_tutor/models"
	"github.com/studybridge/peer_tutor/services"
)

type BookingHandler struct {
	svc *services.BookingService
}

func NewBookingHandler(svc *services.BookingService) *BookingHandler {
	return &BookingHandler{svc: svc}
}

type CreateBookingRequest struct {
	TutorID  string  `json:"tutor_id" validate:"required,uuid"`
	Subject  string  `json:"subject" validate:"required"`
	Date     string  `json:"date" validate:"required,datetime=2006-01-02"`
	TimeSlot string  `json:"time_slot" validate:"required"`
	Duration int     `json:"duration,omitempty" validate:"omitempty,min=15,max=240"`
	Message  *string `json:"message,omitempty" validate:"omitempty,max=500"`
	Location string  `json:"location,omitempty"`
}

func (h *BookingHandler) Create(c *fiber.Ctx) error {
	learnerID, _ := actor(c)

	var req CreateBookingRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	tutorID, _ := uuid.Parse(req.TutorID)
	date, _ := time.Parse("2006-01-02", req.Date)

	booking, err := h.svc.Create(c.UserContext(), learnerID, services.CreateBookingParams{
		TutorID:  tutorID,
		Subject:  req.Subject,
		Date:     date,
		TimeSlot: req.TimeSlot,
		Duration: req.Duration,
		Message:  req.Message,
		Location: req.Location,
	})
	if err != nil {
		return fail(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Booking request sent successfully",
		"booking": bookingView(booking),
	})
}

func (h *BookingHandler) List(c *fiber.Ctx) error {
	userID, role := actor(c)

	filter := services.BookingFilter{
		Status:   models.BookingStatus(c.Query("status")),
		Upcoming: c.Query("upcoming") == "true",
	}

	bookings, err := h.svc.List(c.UserContext(), userID, role, filter)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(fiber.Map{
		"count":    len(bookings),
		"bookings": bookingViews(bookings),
	})
}

func (h *BookingHandler) GetByID(c *fiber.Ctx) error {
	userID, _ := actor(c)

	bookingID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid booking id"})
	}

	booking, err := h.svc.GetByID(c.UserContext(), bookingID, userID)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(bookingView(booking))
}

type UpdateStatusRequest struct {
	Status  string  `json:"status" validate:"required,oneof=accepted rejected cancelled completed"`
	Message *string `json:"message,omitempty" validate:"omitempty,max=500"`
}

func (h *BookingHandler) UpdateStatus(c *fiber.Ctx) error {
	userID, _ := actor(c)

	bookingID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid booking id"})
	}

	var req UpdateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	booking, err := h.svc.UpdateStatus(c.UserContext(), bookingID, userID, models.BookingStatus(req.Status), req.Message)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Booking " + req.Status + " successfully",
		"booking": bookingView(booking),
	})
}

func (h *BookingHandler) Availability(c *fiber.Ctx) error {
	tutorID, err := uuid.Parse(c.Query("tutorId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Tutor ID and date are required"})
	}
	date, err := time.Parse("2006-01-02", c.Query("date"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Tutor ID and date are required"})
	}

	availability, err := h.svc.Availability(c.UserContext(), tutorID, date)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(availability)
}
