package relay_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuanvumaihuynh/digital-store/internal/config"
	"github.com/tuanvumaihuynh/digital-store/internal/metric"
	"github.com/tuanvumaihuynh/digital-store/internal/relay"
	"github.com/tuanvumaihuynh/digital-store/internal/repository"
	"github.com/tuanvumaihuynh/digital-store/internal/storage/db"
	"github.com/tuanvumaihuynh/digital-store/internal/storage/mq"
)

type fakeDB struct {
	db.DB
}

func (f fakeDB) WithTx(_ context.Context, txFunc func(db.DB) error) error {
	return txFunc(f)
}

type fakeOutboxRepo struct {
	mu      sync.Mutex
	pending []repository.ListUnprocessedOutboxMsgsResult
	updated []repository.BulkUpdateOutboxMsgsItem
	listErr error
}

func (r *fakeOutboxRepo) WithDB(db.DB) repository.OutboxMsgRepository { return r }

func (r *fakeOutboxRepo) CreateOutboxMsg(context.Context, repository.CreateOutboxMsgParams) error {
	return nil
}

func (r *fakeOutboxRepo) ListUnprocessedOutboxMsgs(_ context.Context, params repository.ListUnprocessedOutboxMsgsParams) ([]repository.ListUnprocessedOutboxMsgsResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.listErr != nil {
		return nil, r.listErr
	}
	n := min(int(params.BatchSize), len(r.pending))
	return r.pending[:n], nil
}

func (r *fakeOutboxRepo) BulkUpdateOutboxMsgs(_ context.Context, params repository.BulkUpdateOutboxMsgsParams) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.updated = append(r.updated, params.Items...)
	done := make(map[uuid.UUID]bool, len(params.Items))
	for _, item := range params.Items {
		done[item.ID] = true
	}
	pending := r.pending[:0]
	for _, msg := range r.pending {
		if !done[msg.ID] {
			pending = append(pending, msg)
		}
	}
	r.pending = pending
	return nil
}

type fakeProducer struct {
	mu       sync.Mutex
	produced []mq.ProduceMsg
	failOn   string
}

func (p *fakeProducer) Produce(_ context.Context, msg mq.ProduceMsg) error {
	if msg.Topic == p.failOn {
		return errors.New("broker unavailable")
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.produced = append(p.produced, msg)
	return nil
}

func outboxMsg(topic string) repository.ListUnprocessedOutboxMsgsResult {
	return repository.ListUnprocessedOutboxMsgsResult{
		ID:      uuid.New(),
		Topic:   topic,
		Headers: map[string]string{"correlation_id": "c-1"},
		Payload: []byte(`{"product_id":1}`),
	}
}

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, c.Write(&m))
	return m.GetCounter().GetValue()
}

func TestRelayBatch(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := config.Relay{BatchSize: 10, Interval: time.Millisecond, ShutdownTimeout: time.Second}

	t.Run("Should publish pending messages and record failures", func(t *testing.T) {
		repo := &fakeOutboxRepo{pending: []repository.ListUnprocessedOutboxMsgsResult{
			outboxMsg("product.created"),
			outboxMsg("product.updated"),
			outboxMsg("product.deleted"),
		}}
		producer := &fakeProducer{failOn: "product.deleted"}
		metrics := metric.New(prometheus.NewRegistry())
		svc := relay.NewService(cfg, logger, fakeDB{}, repo, producer, metrics)

		n, err := svc.RelayBatch(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 3, n)

		assert.Len(t, producer.produced, 2)
		require.Len(t, repo.updated, 3)
		for _, item := range repo.updated {
			if item.Error != nil {
				assert.Contains(t, *item.Error, "broker unavailable")
			}
		}
		assert.Empty(t, repo.pending)

		assert.Equal(t, float64(2), counterValue(t, metrics.OutboxMessages.WithLabelValues("published")))
		assert.Equal(t, float64(1), counterValue(t, metrics.OutboxMessages.WithLabelValues("failed")))
	})

	t.Run("Should respect the batch size", func(t *testing.T) {
		repo := &fakeOutboxRepo{pending: []repository.ListUnprocessedOutboxMsgsResult{
			outboxMsg("product.created"),
			outboxMsg("product.created"),
		}}
		svc := relay.NewService(config.Relay{BatchSize: 1}, logger, fakeDB{}, repo, &fakeProducer{}, nil)

		n, err := svc.RelayBatch(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 1, n)
		assert.Len(t, repo.pending, 1)
	})

	t.Run("Should do nothing on an empty outbox", func(t *testing.T) {
		repo := &fakeOutboxRepo{}
		svc := relay.NewService(cfg, logger, fakeDB{}, repo, &fakeProducer{}, nil)

		n, err := svc.RelayBatch(context.Background())
		require.NoError(t, err)
		assert.Zero(t, n)
		assert.Empty(t, repo.updated)
	})

	t.Run("Should return list errors", func(t *testing.T) {
		repo := &fakeOutboxRepo{listErr: errors.New("connection reset")}
		svc := relay.NewService(cfg, logger, fakeDB{}, repo, &fakeProducer{}, nil)

		_, err := svc.RelayBatch(context.Background())
		assert.ErrorContains(t, err, "connection reset")
	})

	t.Run("Should drain the outbox while running", func(t *testing.T) {
		repo := &fakeOutboxRepo{pending: []repository.ListUnprocessedOutboxMsgsResult{outboxMsg("product.created")}}
		producer := &fakeProducer{}
		svc := relay.NewService(cfg, logger, fakeDB{}, repo, producer, nil)

		cleanup := svc.Run(context.Background())
		assert.Eventually(t, func() bool {
			repo.mu.Lock()
			defer repo.mu.Unlock()
			return len(repo.pending) == 0
		}, time.Second, 5*time.Millisecond)
		cleanup()
	})
}
