package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/quickai/quickai/internal/models"
)

const feedKey = "feed:published"

// FeedCache keeps the public feed in Redis for a short TTL so the hot
// listing does not hit Postgres on every request. All operations are
// best-effort; callers fall back to the database on any miss or error.
type FeedCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewFeedCache(client *redis.Client, ttl time.Duration) *FeedCache {
	return &FeedCache{client: client, ttl: ttl}
}

// Get returns the cached feed, or (nil, false) on miss or decode failure.
func (c *FeedCache) Get(ctx context.Context) ([]models.Creation, bool) {
	raw, err := c.client.Get(ctx, feedKey).Bytes()
	if err != nil {
		return nil, false
	}
	var creations []models.Creation
	if err := json.Unmarshal(raw, &creations); err != nil {
		return nil, false
	}
	return creations, true
}

func (c *FeedCache) Set(ctx context.Context, creations []models.Creation) {
	raw, err := json.Marshal(creations)
	if err != nil {
		return
	}
	c.client.Set(ctx, feedKey, raw, c.ttl)
}

// Invalidate drops the cached feed; called after published inserts and
// like toggles.
func (c *FeedCache) Invalidate(ctx context.Context) {
	c.client.Del(ctx, feedKey)
}
