package lenders

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/MikeSquared-Agency/Fundable/internal/matching"
	"github.com/MikeSquared-Agency/Fundable/internal/metrics"
)

const cacheKey = "fundable:lenders:v1"

// CachedDirectory keeps a copy of the lender list in Redis. Only reference
// data is cached; match results are always recomputed.
type CachedDirectory struct {
	next   Directory
	rdb    *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

func NewCachedDirectory(next Directory, rdb *redis.Client, ttl time.Duration, logger *slog.Logger) *CachedDirectory {
	return &CachedDirectory{next: next, rdb: rdb, ttl: ttl, logger: logger}
}

// ListLenders serves from Redis when possible. Cache failures fall through to
// the underlying directory.
func (d *CachedDirectory) ListLenders(ctx context.Context) ([]matching.Lender, error) {
	val, err := d.rdb.Get(ctx, cacheKey).Bytes()
	switch {
	case err == nil:
		var lenders []matching.Lender
		if err := json.Unmarshal(val, &lenders); err == nil {
			metrics.DirectoryRequests.WithLabelValues("cache", "hit").Inc()
			return lenders, nil
		}
		d.logger.Warn("discarding corrupt lender cache entry")
	case errors.Is(err, redis.Nil):
		metrics.DirectoryRequests.WithLabelValues("cache", "miss").Inc()
	default:
		metrics.DirectoryRequests.WithLabelValues("cache", "error").Inc()
		d.logger.Warn("lender cache read failed", "error", err)
	}

	lenders, err := d.next.ListLenders(ctx)
	if err != nil {
		return nil, err
	}
	if lenders == nil {
		lenders = []matching.Lender{}
	}
	data, err := json.Marshal(lenders)
	if err != nil {
		return lenders, nil
	}
	if err := d.rdb.Set(ctx, cacheKey, data, d.ttl).Err(); err != nil {
		d.logger.Warn("lender cache write failed", "error", err)
	}
	return lenders, nil
}

// Invalidate drops the cached lender list.
func (d *CachedDirectory) Invalidate(ctx context.Context) error {
	if err := d.rdb.Del(ctx, cacheKey).Err(); err != nil {
		return fmt.Errorf("invalidate lender cache: %w", err)
	}
	return nil
}
