package worker

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/IBM/sarama"

	"github.com/quickai/quickai/internal/config"
	"github.com/quickai/quickai/internal/models"
	"github.com/quickai/quickai/pkg/database"
)

const statsKeyPrefix = "stats:creations:"

// Worker consumes creation events and maintains Redis aggregate counters
// (per-type, total, published) for the community dashboard.
type Worker struct {
	cfg      *config.Config
	db       *database.Clients
	consumer sarama.ConsumerGroup
	ready    chan bool
}

func NewWorker(cfg *config.Config, db *database.Clients, consumer sarama.ConsumerGroup) *Worker {
	return &Worker{
		cfg:      cfg,
		db:       db,
		consumer: consumer,
		ready:    make(chan bool),
	}
}

func (w *Worker) Start(ctx context.Context) error {
	topics := []string{w.cfg.Kafka.Topic}
	slog.Info("Starting stats worker", "topics", topics)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		for err := range w.consumer.Errors() {
			slog.Error("Kafka consumer error", "error", err)
		}
	}()

	go func() {
		for {
			if err := w.consumer.Consume(ctx, topics, w); err != nil {
				slog.Error("Error from consumer.Consume", "error", err)
			}
			if ctx.Err() != nil {
				return
			}
			// New session after a rebalance
			w.ready = make(chan bool)
		}
	}()

	<-w.ready
	slog.Info("Stats worker ready")

	select {
	case sig := <-sigChan:
		slog.Info("Shutting down stats worker", "signal", sig)
	case <-ctx.Done():
		slog.Info("Context cancelled, shutting down stats worker")
	}
	return w.consumer.Close()
}

// Setup implements sarama.ConsumerGroupHandler.
func (w *Worker) Setup(sarama.ConsumerGroupSession) error {
	close(w.ready)
	return nil
}

// Cleanup implements sarama.ConsumerGroupHandler.
func (w *Worker) Cleanup(sarama.ConsumerGroupSession) error {
	return nil
}

// ConsumeClaim implements sarama.ConsumerGroupHandler.
func (w *Worker) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for msg := range claim.Messages() {
		w.handleMessage(session.Context(), msg)
		session.MarkMessage(msg, "")
	}
	return nil
}

func (w *Worker) handleMessage(ctx context.Context, msg *sarama.ConsumerMessage) {
	var event models.CreationEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		slog.Error("Skipping malformed creation event", "error", err)
		return
	}

	pipe := w.db.Redis.Pipeline()
	pipe.Incr(ctx, statsKeyPrefix+event.Type)
	pipe.Incr(ctx, statsKeyPrefix+"total")
	if event.Publish {
		pipe.Incr(ctx, statsKeyPrefix+"published")
	}
	if _, err := pipe.Exec(ctx); err != nil {
		slog.Error("Failed to update creation stats", "creation_id", event.ID, "error", err)
		return
	}
	slog.Info("Recorded creation event", "creation_id", event.ID, "type", event.Type)
}
