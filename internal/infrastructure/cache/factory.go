package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/erp/garment/internal/infrastructure/config"
	"go.uber.org/zap"
)

// Store is the byte-level cache used for period reports
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	DeletePrefix(ctx context.Context, prefix string) error
	Close() error
}

var (
	_ Store = (*RedisPeriodCache)(nil)
	_ Store = (*InMemoryPeriodCache)(nil)
)

// StoreFactory creates period caches based on configuration
type StoreFactory struct {
	redisConfig           config.RedisConfig
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// StoreFactoryOption is a functional option for configuring the factory
type StoreFactoryOption func(*StoreFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) StoreFactoryOption {
	return func(f *StoreFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether to fall back to the in-memory store
// when Redis is unavailable. Default is true.
func WithInMemoryFallback(allow bool) StoreFactoryOption {
	return func(f *StoreFactory) {
		f.allowInMemoryFallback = allow
	}
}

// NewStoreFactory creates a new factory
func NewStoreFactory(cfg config.RedisConfig, opts ...StoreFactoryOption) *StoreFactory {
	f := &StoreFactory{
		redisConfig:           cfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// CreateStore tries Redis first and falls back to memory when allowed.
// In-memory entries are not shared across instances, so each replica
// recomputes its own reports.
func (f *StoreFactory) CreateStore() (Store, error) {
	store, err := NewRedisPeriodCache(f.redisConfig, WithCacheLogger(f.logger.Named("period_cache")))
	if err == nil {
		f.logger.Info("using Redis period report cache", zap.String("addr", f.redisConfig.Addr()))
		return store, nil
	}

	if !f.allowInMemoryFallback {
		return nil, fmt.Errorf("Redis required for period report cache but unavailable: %w", err)
	}

	f.logger.Warn("Redis unavailable, falling back to in-memory period report cache",
		zap.Error(err),
	)
	return NewInMemoryPeriodCache(), nil
}
