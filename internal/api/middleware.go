package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"

	"github.com/quickai/quickai/internal/models"
)

const userIDKey = "userID"

// requireUser runs after the JWT middleware and lifts the token subject
// into locals. Tokens without a subject are rejected before any handler
// does work.
func (s *Server) requireUser(c *fiber.Ctx) error {
	token, ok := c.Locals("user").(*jwt.Token)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(models.MessageResponse{
			Success: false,
			Message: "Unauthorized",
		})
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(models.MessageResponse{
			Success: false,
			Message: "Unauthorized",
		})
	}
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(models.MessageResponse{
			Success: false,
			Message: "Unauthorized",
		})
	}
	c.Locals(userIDKey, sub)
	return c.Next()
}

func currentUser(c *fiber.Ctx) string {
	userID, _ := c.Locals(userIDKey).(string)
	return userID
}
