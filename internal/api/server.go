package api

import (
	"context"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	jwtware "github.com/gofiber/jwt/v3"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/quickai/quickai/internal/config"
	"github.com/quickai/quickai/internal/media"
	"github.com/quickai/quickai/internal/models"
)

// CreationAPI is the orchestrator surface the handlers depend on.
type CreationAPI interface {
	GenerateArticle(ctx context.Context, userID, prompt string, length int) (string, error)
	GenerateBlogTitle(ctx context.Context, userID, prompt string) (string, error)
	GenerateImage(ctx context.Context, userID, prompt string, publish bool) (string, error)
	RemoveBackground(ctx context.Context, userID string, image media.Source) (string, error)
	RemoveObject(ctx context.Context, userID string, image media.Source, object string) (string, error)
	ReviewResume(ctx context.Context, userID string, resume []byte) (string, error)
	UserCreations(ctx context.Context, userID string) ([]models.Creation, error)
	PublishedCreations(ctx context.Context) ([]models.Creation, error)
	ToggleLike(ctx context.Context, userID string, id int) (string, error)
}

// SessionService exchanges credentials for an access token.
type SessionService interface {
	Login(ctx context.Context, email, password string) (string, error)
}

type Server struct {
	app      *fiber.App
	cfg      *config.Config
	svc      CreationAPI
	sessions SessionService
	staging  *media.Staging
}

func NewServer(cfg *config.Config, svc CreationAPI, sessions SessionService, staging *media.Staging) *Server {
	app := fiber.New(fiber.Config{
		BodyLimit: int(cfg.Uploads.MaxSize) + 1024*1024,
	})

	// Middleware
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${ip} ${method} ${path} ${status}\n",
	}))
	app.Use(limiter.New(limiter.Config{
		Max:        cfg.Server.MaxRequests,
		Expiration: cfg.Server.RequestTimeout,
	}))

	server := &Server{
		app:      app,
		cfg:      cfg,
		svc:      svc,
		sessions: sessions,
		staging:  staging,
	}

	server.setupRoutes()

	return server
}

func (s *Server) setupRoutes() {
	s.app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(models.MessageResponse{Success: true, Message: "quickai api"})
	})
	s.app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	api := s.app.Group("/api")

	// Public routes
	api.Post("/auth/login", s.handleLogin)

	// Protected routes
	protected := api.Use(jwtware.New(jwtware.Config{
		SigningKey: []byte(s.cfg.Supabase.JWTSecret),
		ErrorHandler: func(c *fiber.Ctx, _ error) error {
			return c.Status(fiber.StatusUnauthorized).JSON(models.MessageResponse{
				Success: false,
				Message: "Unauthorized",
			})
		},
	}))
	protected.Use(s.requireUser)

	ai := protected.Group("/ai")
	ai.Post("/generate-article", s.handleGenerateArticle)
	ai.Post("/generate-blog-title", s.handleGenerateBlogTitle)
	ai.Post("/generate-image", s.handleGenerateImage)
	ai.Post("/remove-image-background", s.handleRemoveBackground)
	ai.Post("/remove-image-object", s.handleRemoveObject)
	ai.Post("/review-resume", s.handleReviewResume)

	user := protected.Group("/user")
	user.Get("/get-user-creations", s.handleGetUserCreations)
	user.Get("/get-published-creations", s.handleGetPublishedCreations)
	user.Post("/toggle-like-creations", s.handleToggleLike)
}

func (s *Server) Start() error {
	return s.app.Listen(s.cfg.Server.Port)
}

func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

// respondError maps the error taxonomy to one consistent status convention.
func respondError(c *fiber.Ctx, err error) error {
	return c.Status(statusForKind(models.KindOf(err))).JSON(models.MessageResponse{
		Success: false,
		Message: models.MessageOf(err),
	})
}

func statusForKind(kind models.Kind) int {
	switch kind {
	case models.KindInvalidInput:
		return fiber.StatusBadRequest
	case models.KindUnauthorized, models.KindAuthResolution:
		return fiber.StatusUnauthorized
	case models.KindPlanRequired:
		return fiber.StatusForbidden
	case models.KindNotFound:
		return fiber.StatusNotFound
	case models.KindUnreadableDocument:
		return fiber.StatusUnprocessableEntity
	case models.KindUpstream, models.KindStorage:
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}
