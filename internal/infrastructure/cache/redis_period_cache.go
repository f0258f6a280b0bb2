package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/erp/garment/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	// PeriodKeyPrefix namespaces period P&L entries in Redis
	PeriodKeyPrefix = "pnl:period:"

	defaultScanBatchSize = 100
)

// RedisPeriodCache stores serialized period P&L reports in Redis
type RedisPeriodCache struct {
	client     *redis.Client
	ownsClient bool // true if we created the client and should close it
	keyPrefix  string
	logger     *zap.Logger
}

// RedisPeriodCacheOption is a functional option for configuring the cache
type RedisPeriodCacheOption func(*RedisPeriodCache)

// WithKeyPrefix overrides the Redis key namespace
func WithKeyPrefix(prefix string) RedisPeriodCacheOption {
	return func(c *RedisPeriodCache) {
		c.keyPrefix = prefix
	}
}

// WithCacheLogger sets the logger for the cache
func WithCacheLogger(logger *zap.Logger) RedisPeriodCacheOption {
	return func(c *RedisPeriodCache) {
		c.logger = logger
	}
}

// NewRedisPeriodCache connects to Redis and verifies the connection
func NewRedisPeriodCache(cfg config.RedisConfig, opts ...RedisPeriodCacheOption) (*RedisPeriodCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	c := NewRedisPeriodCacheWithClient(client, opts...)
	c.ownsClient = true
	return c, nil
}

// NewRedisPeriodCacheWithClient creates a cache with an existing Redis client.
// The caller retains ownership of the client.
func NewRedisPeriodCacheWithClient(client *redis.Client, opts ...RedisPeriodCacheOption) *RedisPeriodCache {
	c := &RedisPeriodCache{
		client:    client,
		keyPrefix: PeriodKeyPrefix,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *RedisPeriodCache) cacheKey(key string) string {
	return c.keyPrefix + key
}

// Get returns the cached payload. A miss is (nil, false, nil).
func (c *RedisPeriodCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := c.client.Get(ctx, c.cacheKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		c.logger.Debug("Cache miss for period report", zap.String("key", key))
		return nil, false, nil
	}
	if err != nil {
		c.logger.Error("Failed to get period report from cache",
			zap.String("key", key),
			zap.Error(err))
		return nil, false, fmt.Errorf("failed to get period report from cache: %w", err)
	}
	return data, true, nil
}

// Set stores a payload with the given TTL. A zero TTL keeps the entry until
// it is invalidated.
func (c *RedisPeriodCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := c.client.Set(ctx, c.cacheKey(key), value, ttl).Err(); err != nil {
		c.logger.Error("Failed to set period report in cache",
			zap.String("key", key),
			zap.Error(err))
		return fmt.Errorf("failed to set period report in cache: %w", err)
	}
	return nil
}

// DeletePrefix removes every entry whose key starts with prefix. SCAN is used
// so large keyspaces do not block Redis.
func (c *RedisPeriodCache) DeletePrefix(ctx context.Context, prefix string) error {
	pattern := c.cacheKey(prefix) + "*"
	var cursor uint64
	var deleted int64
	for {
		keys, next, err := c.client.Scan(ctx, cursor, pattern, defaultScanBatchSize).Result()
		if err != nil {
			c.logger.Error("Failed to scan period report keys", zap.Error(err))
			return fmt.Errorf("failed to scan cache keys: %w", err)
		}
		if len(keys) > 0 {
			n, err := c.client.Del(ctx, keys...).Result()
			if err != nil {
				c.logger.Error("Failed to delete period report keys", zap.Error(err))
				return fmt.Errorf("failed to delete cache keys: %w", err)
			}
			deleted += n
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}
	c.logger.Debug("Invalidated period reports",
		zap.String("prefix", prefix),
		zap.Int64("deleted", deleted))
	return nil
}

// Close releases the Redis client if this cache created it
func (c *RedisPeriodCache) Close() error {
	if !c.ownsClient {
		return nil
	}
	return c.client.Close()
}
