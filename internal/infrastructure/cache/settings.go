// Package cache provides Redis read-through caches in front of the Postgres stores.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"NewsPipeline/internal/ports"
)

const defaultSettingsTTL = 5 * time.Minute

// SettingsCache caches settings values in Redis. Redis failures fall through to the
// wrapped store so a cache outage never blocks a run.
type SettingsCache struct {
	client *redis.Client
	next   ports.SettingsStore
	ttl    time.Duration
	logger *zap.Logger
}

var _ ports.SettingsStore = (*SettingsCache)(nil)

// NewSettingsCache wraps next. The caller owns client.
func NewSettingsCache(client *redis.Client, next ports.SettingsStore, ttl time.Duration, logger *zap.Logger) *SettingsCache {
	if ttl <= 0 {
		ttl = defaultSettingsTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SettingsCache{client: client, next: next, ttl: ttl, logger: logger.Named("settings_cache")}
}

func settingsKey(key string) string {
	return fmt.Sprintf("news_pipeline:settings:%s", key)
}

// Get returns the cached value or loads it from the wrapped store. Empty values are
// cached too so an unset key does not hit the database on every call.
func (c *SettingsCache) Get(ctx context.Context, key string) (string, error) {
	cacheKey := settingsKey(key)

	value, err := c.client.Get(ctx, cacheKey).Result()
	switch {
	case err == nil:
		c.logger.Debug("cache hit for setting", zap.String("key", key))
		return value, nil
	case errors.Is(err, redis.Nil):
		c.logger.Debug("cache miss for setting", zap.String("key", key))
	default:
		c.logger.Warn("redis get failed, reading settings store", zap.String("key", key), zap.Error(err))
	}

	value, err = c.next.Get(ctx, key)
	if err != nil {
		return "", err
	}

	if err := c.client.Set(ctx, cacheKey, value, c.ttl).Err(); err != nil {
		c.logger.Warn("redis set failed", zap.String("key", key), zap.Error(err))
	}
	return value, nil
}
