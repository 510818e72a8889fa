package api

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/quickai/quickai/internal/models"
)

// handleLogin exchanges email/password for the auth provider's access
// token. All other API routes expect that token as a bearer credential.
func (s *Server) handleLogin(c *fiber.Ctx) error {
	var req models.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, models.NewError(models.KindInvalidInput, "Invalid request body"))
	}
	if req.Email == "" || req.Password == "" {
		return respondError(c, models.NewError(models.KindInvalidInput, "Email and password are required"))
	}

	slog.Info("Authentication attempt", "email", req.Email)

	token, err := s.sessions.Login(c.Context(), req.Email, req.Password)
	if err != nil {
		return respondError(c, err)
	}

	slog.Info("User successfully authenticated", "email", req.Email)

	return c.JSON(models.LoginResponse{
		Success:   true,
		Token:     token,
		TokenType: "Bearer",
	})
}
