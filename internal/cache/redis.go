package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/xela07ax/trustlens-engine/internal/domain"
	"github.com/xela07ax/trustlens-engine/internal/infra"
	"go.uber.org/zap"
)

// RedisCache хранит сериализованные результаты в Redis с TTL.
// Протухание отдано самому Redis (EX при записи) — лениво чистить
// ничего не нужно.
type RedisCache struct {
	rdb    *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func NewRedisCache(rdb *redis.Client, ttl time.Duration, logger *zap.Logger) *RedisCache {
	return &RedisCache{
		rdb:    rdb,
		ttl:    ttl,
		logger: logger.Named("result-cache"),
	}
}

func (c *RedisCache) Get(ctx context.Context, key string) (*domain.OrchestrationResult, bool) {
	raw, err := c.rdb.Get(ctx, infra.RedisKeyResultCache(key)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("cache read failed", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}

	var res domain.OrchestrationResult
	if err := json.Unmarshal(raw, &res); err != nil {
		// Битую запись считаем промахом: пересчитаем и перезапишем
		c.logger.Warn("cache entry corrupted", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	return &res, true
}

func (c *RedisCache) Set(ctx context.Context, key string, result *domain.OrchestrationResult) {
	raw, err := json.Marshal(result)
	if err != nil {
		c.logger.Error("cache marshal failed", zap.String("key", key), zap.Error(err))
		return
	}
	if err := c.rdb.Set(ctx, infra.RedisKeyResultCache(key), raw, c.ttl).Err(); err != nil {
		c.logger.Warn("cache write failed", zap.String("key", key), zap.Error(err))
	}
}
