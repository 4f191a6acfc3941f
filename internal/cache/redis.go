package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/d60-Lab/yatube/internal/repository"
	"github.com/d60-Lab/yatube/pkg/logger"
)

// RedisFeedCache 以 JSON 形式把分页结果存入 redis，过期由 redis 负责
type RedisFeedCache struct {
	client *redis.Client
}

func NewRedisFeedCache(client *redis.Client) *RedisFeedCache {
	return &RedisFeedCache{client: client}
}

func (c *RedisFeedCache) Get(ctx context.Context, key string) (*repository.Page, bool) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			logger.Warn("feed cache get failed", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}
	var page repository.Page
	if err := json.Unmarshal(data, &page); err != nil {
		logger.Warn("feed cache payload corrupt", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	return &page, true
}

func (c *RedisFeedCache) Put(ctx context.Context, key string, page *repository.Page, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	payload, err := json.Marshal(page)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, key, payload, ttl).Err(); err != nil {
		logger.Warn("feed cache set failed", zap.String("key", key), zap.Error(err))
	}
}
