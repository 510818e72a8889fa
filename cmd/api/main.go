package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"github.com/quickai/quickai/internal/ai"
	"github.com/quickai/quickai/internal/api"
	"github.com/quickai/quickai/internal/auth"
	"github.com/quickai/quickai/internal/cache"
	"github.com/quickai/quickai/internal/config"
	"github.com/quickai/quickai/internal/events"
	"github.com/quickai/quickai/internal/media"
	"github.com/quickai/quickai/internal/repository"
	"github.com/quickai/quickai/internal/service"
	"github.com/quickai/quickai/pkg/database"
	"github.com/quickai/quickai/pkg/kafka"
)

func main() {
	_ = godotenv.Load()
	cfg := config.LoadConfig()
	ctx := context.Background()

	db, err := database.NewClients(cfg.Database.URL, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		slog.Error("Failed to initialize database clients", "error", err)
		os.Exit(1)
	}
	defer db.DB.Close()
	if err := db.CreateCreationsTable(); err != nil {
		slog.Error("Failed to prepare schema", "error", err)
		os.Exit(1)
	}
	slog.Info("Connected to databases")

	resolver := auth.NewSupabaseResolver(cfg.Supabase.URL, cfg.Supabase.ServiceKey)

	gemini, err := ai.NewGeminiClient(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model)
	if err != nil {
		slog.Error("Failed to create Gemini client", "error", err)
		os.Exit(1)
	}
	defer gemini.Close()

	clipdrop := ai.NewClipDropClient(cfg.ClipDrop.APIKey, cfg.ClipDrop.BaseURL, cfg.ClipDrop.Timeout)

	store, err := media.NewCloudinaryStore(cfg.Cloudinary.URL, cfg.Cloudinary.FolderPrefix)
	if err != nil {
		slog.Error("Failed to create media store", "error", err)
		os.Exit(1)
	}

	staging, err := media.NewStaging(cfg.Uploads.TempDir, cfg.Uploads.TTL)
	if err != nil {
		slog.Error("Failed to initialize upload staging", "error", err)
		os.Exit(1)
	}

	// Creation events are optional plumbing; without a broker the service
	// simply skips publishing.
	var publisher service.EventPublisher
	if cfg.Kafka.Broker != "" {
		producer, err := kafka.NewProducer(cfg.Kafka.Broker, cfg.Kafka.RetryMax, cfg.Kafka.RetryBackoff)
		if err != nil {
			slog.Error("Failed to create Kafka producer", "error", err)
			os.Exit(1)
		}
		p := events.NewPublisher(producer, cfg.Kafka.Topic)
		defer p.Close()
		publisher = p
		slog.Info("Connected to Kafka")
	}

	svc := service.NewCreationService(
		resolver,
		gemini,
		clipdrop,
		store,
		repository.NewCreationRepository(db.DB),
		ai.ExtractPDFText,
		publisher,
		cache.NewFeedCache(db.Redis, cfg.Redis.FeedTTL),
		cfg.PlanGates,
	)

	server := api.NewServer(cfg, svc, resolver, staging)
	if err := server.Start(); err != nil {
		slog.Error("Server error", "error", err)
		os.Exit(1)
	}
}
