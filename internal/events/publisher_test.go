package events

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quickai/quickai/internal/models"
)

func TestPublishCreation(t *testing.T) {
	t.Run("publishes a keyed JSON event", func(t *testing.T) {
		producer := mocks.NewSyncProducer(t, nil)
		producer.ExpectSendMessageWithCheckerFunctionAndSucceed(func(raw []byte) error {
			var event models.CreationEvent
			if err := json.Unmarshal(raw, &event); err != nil {
				return err
			}
			if event.ID != 12 || event.Type != models.TypeImage || !event.Publish {
				return errors.New("unexpected event payload")
			}
			return nil
		})

		p := NewPublisher(producer, "creations")
		err := p.PublishCreation(models.CreationEvent{
			ID:      12,
			UserID:  "user-1",
			Type:    models.TypeImage,
			Publish: true,
		})
		require.NoError(t, err)
		assert.NoError(t, p.Close())
	})

	t.Run("broker failure is returned to the caller", func(t *testing.T) {
		producer := mocks.NewSyncProducer(t, nil)
		producer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

		p := NewPublisher(producer, "creations")
		err := p.PublishCreation(models.CreationEvent{ID: 1, UserID: "user-1"})
		assert.Error(t, err)
	})
}
