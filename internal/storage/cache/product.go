// Package cache holds read-through caches backed by Redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tuanvumaihuynh/digital-store/internal/model"
)

type ProductCache interface {
	// Get returns the cached product and whether it was found.
	Get(ctx context.Context, id int64) (model.Product, bool, error)
	Set(ctx context.Context, product model.Product) error
	Delete(ctx context.Context, id int64) error
}

var _ ProductCache = (*RedisProductCache)(nil)

type RedisProductCache struct {
	rdb redis.UniversalClient
	ttl time.Duration
}

func NewRedisProductCache(rdb redis.UniversalClient, ttl time.Duration) *RedisProductCache {
	return &RedisProductCache{rdb: rdb, ttl: ttl}
}

func ProductKey(id int64) string {
	return "product:" + strconv.FormatInt(id, 10)
}

func (c *RedisProductCache) Get(ctx context.Context, id int64) (model.Product, bool, error) {
	val, err := c.rdb.Get(ctx, ProductKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return model.Product{}, false, nil
		}
		return model.Product{}, false, fmt.Errorf("get product %d: %w", id, err)
	}

	var p model.Product
	if err := json.Unmarshal(val, &p); err != nil {
		return model.Product{}, false, fmt.Errorf("unmarshal product %d: %w", id, err)
	}

	return p, true, nil
}

func (c *RedisProductCache) Set(ctx context.Context, product model.Product) error {
	data, err := json.Marshal(product)
	if err != nil {
		return fmt.Errorf("marshal product %d: %w", product.ID, err)
	}

	if err := c.rdb.Set(ctx, ProductKey(product.ID), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("set product %d: %w", product.ID, err)
	}

	return nil
}

func (c *RedisProductCache) Delete(ctx context.Context, id int64) error {
	if err := c.rdb.Del(ctx, ProductKey(id)).Err(); err != nil {
		return fmt.Errorf("delete product %d: %w", id, err)
	}
	return nil
}
