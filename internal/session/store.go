package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

type Store interface {
	// Load returns the principal stored under id and whether it exists.
	Load(ctx context.Context, id string) (*Principal, bool, error)
	Save(ctx context.Context, id string, p Principal, ttl time.Duration) error
	Delete(ctx context.Context, id string) error
}

var (
	_ Store = (*RedisStore)(nil)
	_ Store = (*MemoryStore)(nil)
)

type RedisStore struct {
	rdb redis.UniversalClient
}

func NewRedisStore(rdb redis.UniversalClient) *RedisStore {
	return &RedisStore{rdb: rdb}
}

func redisKey(id string) string {
	return "session:" + id
}

func (s *RedisStore) Load(ctx context.Context, id string) (*Principal, bool, error) {
	val, err := s.rdb.Get(ctx, redisKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("get session: %w", err)
	}

	var p Principal
	if err := json.Unmarshal(val, &p); err != nil {
		return nil, false, fmt.Errorf("unmarshal session: %w", err)
	}

	return &p, true, nil
}

func (s *RedisStore) Save(ctx context.Context, id string, p Principal, ttl time.Duration) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	if err := s.rdb.Set(ctx, redisKey(id), data, ttl).Err(); err != nil {
		return fmt.Errorf("set session: %w", err)
	}

	return nil
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	if err := s.rdb.Del(ctx, redisKey(id)).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// MemoryStore keeps sessions in process memory. Sessions are lost on restart
// and are not shared between instances.
type MemoryStore struct {
	mu    sync.Mutex
	items map[string]memoryItem
	now   func() time.Time
}

type memoryItem struct {
	principal Principal
	expiresAt time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		items: map[string]memoryItem{},
		now:   time.Now,
	}
}

func (s *MemoryStore) Load(_ context.Context, id string) (*Principal, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.items[id]
	if !ok {
		return nil, false, nil
	}
	if !item.expiresAt.IsZero() && s.now().After(item.expiresAt) {
		delete(s.items, id)
		return nil, false, nil
	}

	p := item.principal
	return &p, true, nil
}

func (s *MemoryStore) Save(_ context.Context, id string, p Principal, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	item := memoryItem{principal: p}
	if ttl > 0 {
		item.expiresAt = s.now().Add(ttl)
	}
	s.items[id] = item

	return nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.items, id)
	return nil
}
