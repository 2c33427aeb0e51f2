package handlers

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/studybridge/peer_tutor/errs"
)

var validate = validator.New()

// actor pulls the caller's identity out of the verified JWT.
func actor(c *fiber.Ctx) (uuid.UUID, string) {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	userID, _ := uuid.Parse(claims["user_id"].(string))
	role, _ := claims["role"].(string)
	return userID, role
}

// fail maps a domain error kind onto its HTTP status. Anything unclassified
// is a 500 so real bugs stay visible.
func fail(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	switch errs.KindOf(err) {
	case errs.KindNotFound:
		status = fiber.StatusNotFound
	case errs.KindForbidden:
		status = fiber.StatusForbidden
	case errs.KindInvalid:
		status = fiber.StatusBadRequest
	case errs.KindConflict:
		status = fiber.StatusConflict
	case errs.KindUnavailable:
		status = fiber.StatusServiceUnavailable
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}
