package event

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/tuanvumaihuynh/digital-store/internal/storage/cache"
	"github.com/tuanvumaihuynh/digital-store/internal/storage/mq"
)

// Service is the event service.
type Service struct {
	logger       *slog.Logger
	mqConsumer   mq.Consumer
	productCache cache.ProductCache
}

// New creates a new event service.
func New(
	logger *slog.Logger,
	mqConsumer mq.Consumer,
	productCache cache.ProductCache,
) *Service {
	return &Service{
		logger:       logger.With(slog.String("service", "event")),
		mqConsumer:   mqConsumer,
		productCache: productCache,
	}
}

type CleanupFunc func()

func (s *Service) Run(ctx context.Context) (CleanupFunc, error) {
	for _, topic := range ProductTopics {
		if err := s.mqConsumer.RegisterHandler(topic, s.HandleProductMessage); err != nil {
			return nil, fmt.Errorf("register %s event handler: %w", topic, err)
		}
	}

	mqCleanup, err := s.mqConsumer.Run(ctx)
	if err != nil {
		return nil, fmt.Errorf("run mq consumer: %w", err)
	}

	cleanup := func() {
		mqCleanup()
	}

	return cleanup, nil
}

// HandleProductMessage decodes a product event and drops the cached copy of the product.
func (s *Service) HandleProductMessage(ctx context.Context, topic string, payload []byte) error {
	var ev productEvent
	if err := json.Unmarshal(payload, &ev); err != nil {
		return fmt.Errorf("unmarshal %s event: %w", topic, err)
	}

	if err := s.handleProductEvent(ctx, topic, ev); err != nil {
		return fmt.Errorf("handle %s event: %w", topic, err)
	}

	return nil
}
