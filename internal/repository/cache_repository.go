package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	appErrors "github.com/mfauzi77/paudhi-backend/pkg/errors"
)

// Cache key prefixes. Dashboard entries are invalidated whenever a report
// transitions in or out of the approved state.
const (
	CacheKeyPublicDashboard = "dashboard:public"
	CacheKeyAdminDashboard  = "dashboard:admin"
	cachePatternDashboard   = "dashboard:*"
)

// CacheRepository wraps Redis for caching aggregate payloads. A nil client
// degrades to pass-through so the API keeps working without Redis.
type CacheRepository struct {
	client *redis.Client
	logger *zap.Logger
}

// NewCacheRepository constructs a cache repository.
func NewCacheRepository(client *redis.Client, logger *zap.Logger) *CacheRepository {
	return &CacheRepository{client: client, logger: logger}
}

// Get retrieves and unmarshals the cached value into the provided destination.
func (r *CacheRepository) Get(ctx context.Context, key string, dest interface{}) error {
	if r.client == nil {
		return appErrors.ErrCacheMiss
	}

	raw, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return appErrors.ErrCacheMiss
		}
		return fmt.Errorf("redis get %s: %w", key, err)
	}

	if err := json.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("unmarshal cache value for %s: %w", key, err)
	}
	return nil
}

// Set marshals the provided value and stores it with the given TTL.
func (r *CacheRepository) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if r.client == nil {
		return nil
	}

	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal cache value for %s: %w", key, err)
	}

	if err := r.client.Set(ctx, key, payload, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// InvalidateDashboards drops every cached dashboard aggregate. Failures are
// logged, not propagated: a stale dashboard must never fail a review.
func (r *CacheRepository) InvalidateDashboards(ctx context.Context) {
	if r.client == nil {
		return
	}

	iter := r.client.Scan(ctx, 0, cachePatternDashboard, 0).Iterator()
	for iter.Next(ctx) {
		if err := r.client.Del(ctx, iter.Val()).Err(); err != nil {
			r.logger.Warn("failed to drop cached dashboard", zap.String("key", iter.Val()), zap.Error(err))
			return
		}
	}
	if err := iter.Err(); err != nil {
		r.logger.Warn("dashboard cache scan failed", zap.Error(err))
	}
}
