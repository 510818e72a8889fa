package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
)

type Clients struct {
	DB    *sqlx.DB
	Redis *redis.Client
}

func NewClients(dbURL, redisAddr, redisPassword string, redisDB int) (*Clients, error) {
	// Connect to PostgreSQL
	db, err := sqlx.Connect("postgres", dbURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Initialize Redis client
	redisClient := redis.NewClient(&redis.Options{
		Addr:     redisAddr,
		Password: redisPassword,
		DB:       redisDB,
	})

	ctx := context.Background()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Clients{
		DB:    db,
		Redis: redisClient,
	}, nil
}

func (c *Clients) CreateCreationsTable() error {
	schema := `CREATE TABLE IF NOT EXISTS creations (
		id SERIAL PRIMARY KEY,
		user_id TEXT NOT NULL,
		prompt TEXT NOT NULL,
		content TEXT NOT NULL,
		type TEXT NOT NULL,
		publish BOOLEAN NOT NULL DEFAULT FALSE,
		likes TEXT[] NOT NULL DEFAULT '{}',
		created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_creations_owner ON creations (user_id, created_at DESC);
	CREATE INDEX IF NOT EXISTS idx_creations_published ON creations (created_at DESC) WHERE publish;`

	if _, err := c.DB.Exec(schema); err != nil {
		return fmt.Errorf("failed to create creations table: %w", err)
	}
	return nil
}
