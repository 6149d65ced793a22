// Package relay publishes product events recorded in the outbox table to Kafka.
package relay

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/tuanvumaihuynh/digital-store/internal/config"
	"github.com/tuanvumaihuynh/digital-store/internal/metric"
	"github.com/tuanvumaihuynh/digital-store/internal/repository"
	"github.com/tuanvumaihuynh/digital-store/internal/storage/db"
	"github.com/tuanvumaihuynh/digital-store/internal/storage/mq"
	"github.com/tuanvumaihuynh/digital-store/pkg/ptr"
)

type Service struct {
	cfg           config.Relay
	logger        *slog.Logger
	db            db.DB
	outboxMsgRepo repository.OutboxMsgRepository
	mqProducer    mq.Producer
	metrics       *metric.Metrics

	stopChan chan struct{}
}

// NewService creates the relay. metrics may be nil.
func NewService(
	cfg config.Relay,
	logger *slog.Logger,
	db db.DB,
	outboxMsgRepo repository.OutboxMsgRepository,
	mqProducer mq.Producer,
	metrics *metric.Metrics,
) *Service {
	return &Service{
		cfg:           cfg,
		logger:        logger.With(slog.String("service", "relay")),
		db:            db,
		outboxMsgRepo: outboxMsgRepo,
		mqProducer:    mqProducer,
		metrics:       metrics,
		stopChan:      make(chan struct{}),
	}
}

type CleanupFunc func()

// Run polls the outbox every cfg.Interval until the returned cleanup is called.
func (s *Service) Run(ctx context.Context) CleanupFunc {
	ctx, cancel := context.WithCancel(ctx)

	stoppedChan := make(chan struct{})
	go func() {
		defer close(stoppedChan)
		s.loop(ctx)
	}()

	return func() {
		defer cancel()

		close(s.stopChan)
		select {
		case <-stoppedChan:
		case <-time.After(s.cfg.ShutdownTimeout):
			s.logger.WarnContext(ctx, "relay batch did not finish in time, cancelling")
			cancel()
			<-stoppedChan
		}
	}
}

func (s *Service) loop(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopChan:
			return
		case <-ticker.C:
			if _, err := s.RelayBatch(ctx); err != nil {
				s.logger.ErrorContext(ctx, "error relaying outbox msgs", slog.Any("error", err))
			}
		}
	}
}

// RelayBatch publishes one batch of unprocessed outbox messages and records
// the outcome of each one. It returns the number of messages handled.
func (s *Service) RelayBatch(ctx context.Context) (int, error) {
	var handled int

	err := s.db.WithTx(ctx, func(tx db.DB) error {
		repo := s.outboxMsgRepo.WithDB(tx)

		outboxMsgs, err := repo.ListUnprocessedOutboxMsgs(ctx, repository.ListUnprocessedOutboxMsgsParams{
			//nolint:gosec
			BatchSize: int32(s.cfg.BatchSize),
		})
		if err != nil {
			return fmt.Errorf("list unprocessed outbox msgs: %w", err)
		}
		if len(outboxMsgs) == 0 {
			return nil
		}

		s.logger.InfoContext(ctx, "relaying outbox msgs", slog.Int("count", len(outboxMsgs)))

		if err := repo.BulkUpdateOutboxMsgs(ctx, repository.BulkUpdateOutboxMsgsParams{
			Items: s.publish(ctx, outboxMsgs),
		}); err != nil {
			return fmt.Errorf("bulk update outbox msgs: %w", err)
		}

		handled = len(outboxMsgs)
		return nil
	})

	return handled, err
}

// publish produces every message concurrently. Failures are recorded on the
// item instead of aborting the batch.
func (s *Service) publish(ctx context.Context, outboxMsgs []repository.ListUnprocessedOutboxMsgsResult) []repository.BulkUpdateOutboxMsgsItem {
	items := make([]repository.BulkUpdateOutboxMsgsItem, len(outboxMsgs))

	var wg sync.WaitGroup
	for i, msg := range outboxMsgs {
		wg.Go(func() {
			items[i] = repository.BulkUpdateOutboxMsgsItem{ID: msg.ID}

			err := s.mqProducer.Produce(ctx, mq.ProduceMsg{
				Topic:        msg.Topic,
				Headers:      msg.Headers,
				Payload:      msg.Payload,
				PartitionKey: msg.PartitionKey,
			})
			if err != nil {
				s.logger.ErrorContext(ctx,
					"error producing message",
					slog.String("outbox_msg_id", msg.ID.String()),
					slog.String("topic", msg.Topic),
					slog.Any("error", err),
				)
				items[i].Error = ptr.New(err.Error())
				s.count("failed")
				return
			}

			s.count("published")
		})
	}
	wg.Wait()

	return items
}

func (s *Service) count(result string) {
	if s.metrics != nil {
		s.metrics.OutboxMessages.WithLabelValues(result).Inc()
	}
}
