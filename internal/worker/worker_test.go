package worker

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/IBM/sarama"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quickai/quickai/internal/config"
	"github.com/quickai/quickai/internal/models"
	"github.com/quickai/quickai/pkg/database"
)

func newTestWorker(t *testing.T) (*Worker, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	w := NewWorker(config.LoadConfig(), &database.Clients{Redis: client}, nil)
	return w, mr
}

func eventMessage(t *testing.T, event models.CreationEvent) *sarama.ConsumerMessage {
	t.Helper()
	raw, err := json.Marshal(event)
	require.NoError(t, err)
	return &sarama.ConsumerMessage{Value: raw}
}

func TestHandleMessage(t *testing.T) {
	ctx := context.Background()

	t.Run("increments per-type and total counters", func(t *testing.T) {
		w, mr := newTestWorker(t)

		w.handleMessage(ctx, eventMessage(t, models.CreationEvent{ID: 1, Type: models.TypeArticle}))
		w.handleMessage(ctx, eventMessage(t, models.CreationEvent{ID: 2, Type: models.TypeArticle}))
		w.handleMessage(ctx, eventMessage(t, models.CreationEvent{ID: 3, Type: models.TypeImage, Publish: true}))

		assert.Equal(t, "2", mustGet(t, mr, "stats:creations:article"))
		assert.Equal(t, "3", mustGet(t, mr, "stats:creations:total"))
		assert.Equal(t, "1", mustGet(t, mr, "stats:creations:published"))
	})

	t.Run("unpublished events do not touch the published counter", func(t *testing.T) {
		w, mr := newTestWorker(t)

		w.handleMessage(ctx, eventMessage(t, models.CreationEvent{ID: 1, Type: models.TypeBlogTitle}))

		assert.Equal(t, "1", mustGet(t, mr, "stats:creations:blog-title"))
		assert.False(t, mr.Exists("stats:creations:published"))
	})

	t.Run("malformed payloads are skipped", func(t *testing.T) {
		w, mr := newTestWorker(t)

		w.handleMessage(ctx, &sarama.ConsumerMessage{Value: []byte("not-json")})

		assert.False(t, mr.Exists("stats:creations:total"))
	})
}

func mustGet(t *testing.T, mr *miniredis.Miniredis, key string) string {
	t.Helper()
	val, err := mr.Get(key)
	require.NoError(t, err)
	return val
}
