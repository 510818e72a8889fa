package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"github.com/quickai/quickai/internal/config"
	"github.com/quickai/quickai/internal/worker"
	"github.com/quickai/quickai/pkg/database"
	"github.com/quickai/quickai/pkg/kafka"
)

func main() {
	_ = godotenv.Load()
	cfg := config.LoadConfig()

	if cfg.Kafka.Broker == "" {
		slog.Error("KAFKA_BROKER must be set for the stats worker")
		os.Exit(1)
	}

	db, err := database.NewClients(cfg.Database.URL, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		slog.Error("Failed to initialize database clients", "error", err)
		os.Exit(1)
	}
	defer db.DB.Close()
	slog.Info("Connected to databases")

	consumer, err := kafka.NewConsumer(cfg.Kafka.Broker, cfg.Kafka.Group)
	if err != nil {
		slog.Error("Failed to create Kafka consumer", "error", err)
		os.Exit(1)
	}
	slog.Info("Connected to Kafka")

	w := worker.NewWorker(cfg, db, consumer)
	if err := w.Start(context.Background()); err != nil {
		slog.Error("Worker error", "error", err)
		os.Exit(1)
	}
}
