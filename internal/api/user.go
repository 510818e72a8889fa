package api

import (
	"github.com/gofiber/fiber/v2"

	"github.com/quickai/quickai/internal/models"
)

func (s *Server) handleGetUserCreations(c *fiber.Ctx) error {
	creations, err := s.svc.UserCreations(c.Context(), currentUser(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(models.CreationsResponse{Success: true, Creations: creations})
}

func (s *Server) handleGetPublishedCreations(c *fiber.Ctx) error {
	creations, err := s.svc.PublishedCreations(c.Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(models.CreationsResponse{Success: true, Creations: creations})
}

func (s *Server) handleToggleLike(c *fiber.Ctx) error {
	var req models.ToggleLikeRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, models.NewError(models.KindInvalidInput, "Invalid request body"))
	}

	message, err := s.svc.ToggleLike(c.Context(), currentUser(c), req.ID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(models.MessageResponse{Success: true, Message: message})
}
