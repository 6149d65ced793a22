package event_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuanvumaihuynh/digital-store/internal/event"
	"github.com/tuanvumaihuynh/digital-store/internal/model"
	"github.com/tuanvumaihuynh/digital-store/internal/storage/mq"
)

type fakeConsumer struct {
	handlers map[string]mq.HandlerFunc
	running  bool
}

func (c *fakeConsumer) RegisterHandler(topic string, handler mq.HandlerFunc) error {
	if c.handlers == nil {
		c.handlers = map[string]mq.HandlerFunc{}
	}
	c.handlers[topic] = handler
	return nil
}

func (c *fakeConsumer) Run(context.Context) (mq.CleanupFunc, error) {
	c.running = true
	return func() { c.running = false }, nil
}

type fakeCache struct {
	deleted []int64
}

func (c *fakeCache) Get(context.Context, int64) (model.Product, bool, error) {
	return model.Product{}, false, nil
}

func (c *fakeCache) Set(context.Context, model.Product) error { return nil }

func (c *fakeCache) Delete(_ context.Context, id int64) error {
	c.deleted = append(c.deleted, id)
	return nil
}

func TestEventService(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("Should register every product topic and invalidate cache", func(t *testing.T) {
		consumer := &fakeConsumer{}
		productCache := &fakeCache{}
		svc := event.New(logger, consumer, productCache)

		cleanup, err := svc.Run(context.Background())
		require.NoError(t, err)
		assert.True(t, consumer.running)

		for _, topic := range event.ProductTopics {
			require.Contains(t, consumer.handlers, topic)
		}

		require.NoError(t, consumer.handlers[event.TopicProductUpdated](
			context.Background(), event.TopicProductUpdated, []byte(`{"product_id":42,"fields":["price"]}`)))
		require.NoError(t, consumer.handlers[event.TopicProductDeleted](
			context.Background(), event.TopicProductDeleted, []byte(`{"product_id":7}`)))

		assert.Equal(t, []int64{42, 7}, productCache.deleted)

		cleanup()
		assert.False(t, consumer.running)
	})

	t.Run("Should reject malformed payloads", func(t *testing.T) {
		svc := event.New(logger, &fakeConsumer{}, &fakeCache{})
		err := svc.HandleProductMessage(context.Background(), event.TopicProductCreated, []byte("not json"))
		assert.Error(t, err)
	})
}
