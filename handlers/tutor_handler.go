package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/studybridge/peer_tutor/services"
)

type TutorHandler struct {
	svc *services.TutorService
}

func NewTutorHandler(svc *services.TutorService) *TutorHandler {
	return &TutorHandler{svc: svc}
}

func (h *TutorHandler) List(c *fiber.Ctx) error {
	tutors, err := h.svc.ListTutors(c.UserContext(), c.Query("subject"), c.Query("sort"))
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(fiber.Map{
		"count":  len(tutors),
		"tutors": tutorViews(tutors),
	})
}

func (h *TutorHandler) Get(c *fiber.Ctx) error {
	tutorID, err := uuid.Parse(c.Params("tutorId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid tutor id"})
	}

	tutor, err := h.svc.GetTutor(c.UserContext(), tutorID)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(tutorView(tutor))
}

type UpdateTutorProfileRequest struct {
	Subjects    []string `json:"subjects,omitempty" validate:"omitempty,min=1,dive,required"`
	SlotCatalog []string `json:"slot_catalog,omitempty" validate:"omitempty,dive,required"`
}

func (h *TutorHandler) UpdateProfile(c *fiber.Ctx) error {
	tutorID, _ := actor(c)

	var req UpdateTutorProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	tutor, err := h.svc.UpdateProfile(c.UserContext(), tutorID, services.UpdateTutorProfileParams{
		Subjects:    req.Subjects,
		SlotCatalog: req.SlotCatalog,
	})
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(tutor)
}
