// Package cache provides caching decorators for repository interfaces.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/redis/go-redis/v9"

	"pricehistory_backend/internal/feature/coverage/domain/entity"
	"pricehistory_backend/internal/feature/coverage/usecase"
)

const defaultTTL = 5 * time.Minute

// TTLFunc は書き込み時点でのキャッシュの有効期間を返します。
type TTLFunc func() time.Duration

// FixedTTL は常に d を返す TTLFunc です。
func FixedTTL(d time.Duration) TTLFunc {
	return func() time.Duration { return d }
}

// CachingStatsReader decorates a PriceStatsReader with Redis caching.
// The whole namespace is dropped by Invalidate after each ingestion run.
type CachingStatsReader struct {
	inner     usecase.PriceStatsReader
	rdb       *redis.Client
	ttl       TTLFunc
	namespace string
}

var _ usecase.PriceStatsReader = (*CachingStatsReader)(nil)

// NewCachingStatsReader decorates a PriceStatsReader with Redis caching.
// If ttl is nil, entries live for 5 minutes. If namespace is empty, it uses "coverage".
func NewCachingStatsReader(rdb *redis.Client, ttl TTLFunc, inner usecase.PriceStatsReader, namespace string) *CachingStatsReader {
	if ttl == nil {
		ttl = FixedTTL(defaultTTL)
	}
	if namespace == "" {
		namespace = "coverage"
	}
	return &CachingStatsReader{
		inner:     inner,
		rdb:       rdb,
		ttl:       ttl,
		namespace: namespace,
	}
}

// PriceStats returns cached stats for [from, to], falling back to the inner reader on a miss.
func (c *CachingStatsReader) PriceStats(ctx context.Context, from, to time.Time) ([]entity.PriceStats, error) {
	if c.rdb == nil {
		return c.inner.PriceStats(ctx, from, to)
	}

	key := c.cacheKey(from, to)

	// 1) Check cache
	if b, err := c.rdb.Get(ctx, key).Bytes(); err == nil && len(b) > 0 {
		var out []entity.PriceStats
		if err := json.Unmarshal(b, &out); err == nil {
			return out, nil
		}
		// Delete corrupted cache entry
		_ = c.rdb.Del(ctx, key).Err()
	}

	// 2) Fallback to database
	out, err := c.inner.PriceStats(ctx, from, to)
	if err != nil {
		return nil, err
	}

	// 3) Store in cache (best effort)
	ttl := c.ttl()
	if ttl <= 0 {
		ttl = time.Minute
	}
	if b, err := json.Marshal(out); err == nil {
		if err := c.rdb.Set(ctx, key, b, ttl).Err(); err != nil {
			slog.Warn("failed to cache price stats", "key", key, "error", err)
		}
	}
	return out, nil
}

// Invalidate deletes every cache entry in the namespace.
func (c *CachingStatsReader) Invalidate(ctx context.Context) error {
	if c.rdb == nil {
		return nil
	}
	return c.deleteByPattern(ctx, safe(c.namespace)+":*")
}

// cacheKey hashes the window so keys stay short and fixed-length.
func (c *CachingStatsReader) cacheKey(from, to time.Time) string {
	window := from.UTC().Format(time.DateOnly) + "|" + to.UTC().Format(time.DateOnly)
	return fmt.Sprintf("%s:stats:%016x", safe(c.namespace), xxhash.Sum64String(window))
}

// deleteByPattern deletes all cache keys matching a given pattern using SCAN.
func (c *CachingStatsReader) deleteByPattern(ctx context.Context, pattern string) error {
	var cursor uint64
	for {
		keys, cur, err := c.rdb.Scan(ctx, cursor, pattern, 200).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
				return err
			}
		}
		cursor = cur
		if cursor == 0 {
			break
		}
	}
	return nil
}

// safe escapes characters that are problematic for Redis keys.
func safe(s string) string {
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, ":", "_")
	return s
}
