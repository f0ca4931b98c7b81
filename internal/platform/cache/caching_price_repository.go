// Package cache provides caching implementations for repository interfaces.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"hns_backend/internal/feature/prices/domain/entity"
	"hns_backend/internal/feature/prices/usecase"
)

// CachingPriceRepository decorates a PriceRepository with Redis
// read-through caching. A nil client degrades every operation to a
// plain pass-through, so the service runs unchanged without Redis.
type CachingPriceRepository struct {
	inner     usecase.PriceRepository
	rdb       *redis.Client
	ttl       time.Duration
	namespace string
}

var _ usecase.PriceRepository = (*CachingPriceRepository)(nil)

// NewCachingPriceRepository decorates a PriceRepository with Redis caching.
// If ttl is 0, it defaults to 5 minutes. If namespace is empty, it uses "prices".
func NewCachingPriceRepository(rdb *redis.Client, ttl time.Duration, inner usecase.PriceRepository, namespace string) *CachingPriceRepository {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if namespace == "" {
		namespace = "prices"
	}
	return &CachingPriceRepository{
		inner:     inner,
		rdb:       rdb,
		ttl:       ttl,
		namespace: namespace,
	}
}

// UpsertBatch writes through to the store and invalidates every cached
// read for the touched currencies, plus the currency-unscoped entries.
func (c *CachingPriceRepository) UpsertBatch(ctx context.Context, points []entity.PricePoint) error {
	if err := c.inner.UpsertBatch(ctx, points); err != nil {
		return err
	}
	if c.rdb == nil || len(points) == 0 {
		return nil
	}

	seen := map[string]struct{}{"any": {}}
	for _, p := range points {
		seen[safe(p.Currency)] = struct{}{}
	}
	for scope := range seen {
		// Best effort: a stale cache entry expires by TTL anyway.
		_ = c.deleteByPattern(ctx, c.namespace+":"+scope+":*")
	}
	return nil
}

// Range retrieves a range query result, cache first.
func (c *CachingPriceRepository) Range(ctx context.Context, from, to *int64, currency string) ([]entity.PricePoint, error) {
	key := c.key(currency, "range", bound(from), bound(to))
	if out, ok := c.getList(ctx, key); ok {
		return out, nil
	}

	out, err := c.inner.Range(ctx, from, to, currency)
	if err != nil {
		return nil, err
	}
	c.setJSON(ctx, key, out)
	return out, nil
}

// DailySummary retrieves a daily summary result, cache first.
func (c *CachingPriceRepository) DailySummary(ctx context.Context, from, to int64, currency string) ([]entity.PricePoint, error) {
	key := c.key(currency, "daily", strconv.FormatInt(from, 10), strconv.FormatInt(to, 10))
	if out, ok := c.getList(ctx, key); ok {
		return out, nil
	}

	out, err := c.inner.DailySummary(ctx, from, to, currency)
	if err != nil {
		return nil, err
	}
	c.setJSON(ctx, key, out)
	return out, nil
}

// LatestTimestamp always passes through: the ingestion cursor must
// never be stale.
func (c *CachingPriceRepository) LatestTimestamp(ctx context.Context, currency string) (int64, error) {
	return c.inner.LatestTimestamp(ctx, currency)
}

// Latest retrieves the newest point, cache first. Absence is not cached.
func (c *CachingPriceRepository) Latest(ctx context.Context, currency string) (*entity.PricePoint, error) {
	key := c.key(currency, "latest")
	if p, ok := c.getPoint(ctx, key); ok {
		return p, nil
	}

	p, err := c.inner.Latest(ctx, currency)
	if err != nil {
		return nil, err
	}
	if p != nil {
		c.setJSON(ctx, key, p)
	}
	return p, nil
}

// Extreme retrieves a min/max point, cache first. Absence is not cached.
func (c *CachingPriceRepository) Extreme(ctx context.Context, currency string, dir usecase.ExtremeDirection, since *int64) (*entity.PricePoint, error) {
	key := c.key(currency, "extreme", string(dir), bound(since))
	if p, ok := c.getPoint(ctx, key); ok {
		return p, nil
	}

	p, err := c.inner.Extreme(ctx, currency, dir, since)
	if err != nil {
		return nil, err
	}
	if p != nil {
		c.setJSON(ctx, key, p)
	}
	return p, nil
}

// getList returns a cached point list and whether the lookup hit.
func (c *CachingPriceRepository) getList(ctx context.Context, key string) ([]entity.PricePoint, bool) {
	if c.rdb == nil {
		return nil, false
	}
	b, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil || len(b) == 0 {
		return nil, false
	}
	var out []entity.PricePoint
	if err := json.Unmarshal(b, &out); err != nil {
		// Drop the corrupted entry and fall through to the store.
		_ = c.rdb.Del(ctx, key).Err()
		return nil, false
	}
	return out, true
}

// getPoint returns a cached single point and whether the lookup hit.
func (c *CachingPriceRepository) getPoint(ctx context.Context, key string) (*entity.PricePoint, bool) {
	if c.rdb == nil {
		return nil, false
	}
	b, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil || len(b) == 0 {
		return nil, false
	}
	var p entity.PricePoint
	if err := json.Unmarshal(b, &p); err != nil {
		_ = c.rdb.Del(ctx, key).Err()
		return nil, false
	}
	return &p, true
}

// setJSON stores a value best effort; cache write failures never fail
// the request.
func (c *CachingPriceRepository) setJSON(ctx context.Context, key string, v any) {
	if c.rdb == nil {
		return
	}
	if b, err := json.Marshal(v); err == nil {
		_ = c.rdb.Set(ctx, key, b, c.ttl).Err()
	}
}

// key builds "namespace:currencyScope:part:part..." cache keys. An
// empty currency scopes to "any" so unfiltered queries cache too.
func (c *CachingPriceRepository) key(currency string, parts ...string) string {
	scope := "any"
	if currency != "" {
		scope = safe(currency)
	}
	return fmt.Sprintf("%s:%s:%s", c.namespace, scope, strings.Join(parts, ":"))
}

// bound encodes an optional timestamp bound into a key segment.
func bound(p *int64) string {
	if p == nil {
		return "all"
	}
	return strconv.FormatInt(*p, 10)
}

// deleteByPattern deletes all cache keys matching a given pattern using SCAN.
func (c *CachingPriceRepository) deleteByPattern(ctx context.Context, pattern string) error {
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
