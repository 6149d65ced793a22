package event

import (
	"context"
	"fmt"
	"log/slog"
)

const (
	TopicProductCreated = "product.created"
	TopicProductUpdated = "product.updated"
	TopicProductDeleted = "product.deleted"
)

// ProductTopics lists every topic a product mutation publishes to.
var ProductTopics = []string{TopicProductCreated, TopicProductUpdated, TopicProductDeleted}

type ProductCreatedEvent struct {
	ProductID      int64   `json:"product_id"`
	Name           string  `json:"product_name"`
	CategoryID     int64   `json:"category_id"`
	Price          float64 `json:"price"`
	StockAvailable *int    `json:"stock_available"`
	FilePath       string  `json:"file_path"`
	CoverImagePath string  `json:"cover_image_path"`
}

type ProductUpdatedEvent struct {
	ProductID int64 `json:"product_id"`
	// Fields names the columns that changed.
	Fields []string `json:"fields"`
}

type ProductDeletedEvent struct {
	ProductID int64 `json:"product_id"`
}

// productEvent is the part every product event shares.
type productEvent struct {
	ProductID int64 `json:"product_id"`
}

func (s *Service) handleProductEvent(ctx context.Context, topic string, ev productEvent) error {
	s.logger.InfoContext(ctx, "handling product event",
		slog.String("topic", topic),
		slog.Int64("product_id", ev.ProductID),
	)

	if err := s.productCache.Delete(ctx, ev.ProductID); err != nil {
		return fmt.Errorf("invalidate product cache: %w", err)
	}

	return nil
}
