// Package cache provides caching decorators for usecase interfaces.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"stockdash/internal/feature/instruments/domain/entity"
	"stockdash/internal/feature/instruments/transport/handler"
)

// DefaultSearchTTL is how long combined database+vendor search results stay
// cached. Popular queries would otherwise re-trigger the five-exchange
// vendor fan-out on every page view.
const DefaultSearchTTL = 10 * time.Minute

// CachingSearch decorates a SearchUsecase with Redis caching keyed by
// normalized query text. With a nil Redis client it degrades to a
// pass-through.
type CachingSearch struct {
	inner     handler.SearchUsecase
	rdb       *redis.Client
	ttl       time.Duration
	namespace string
}

var _ handler.SearchUsecase = (*CachingSearch)(nil)

// NewCachingSearch decorates a SearchUsecase with Redis caching. If ttl is
// 0 it defaults to 10 minutes; an empty namespace defaults to "search".
func NewCachingSearch(rdb *redis.Client, ttl time.Duration, inner handler.SearchUsecase, namespace string) *CachingSearch {
	if ttl <= 0 {
		ttl = DefaultSearchTTL
	}
	if namespace == "" {
		namespace = "search"
	}
	return &CachingSearch{inner: inner, rdb: rdb, ttl: ttl, namespace: namespace}
}

// Search returns cached results when available and otherwise delegates,
// storing the outcome best effort.
func (c *CachingSearch) Search(ctx context.Context, query string) ([]entity.Instrument, error) {
	if c.rdb == nil {
		return c.inner.Search(ctx, query)
	}

	key := c.cacheKey(query)

	// 1) Check cache
	if b, err := c.rdb.Get(ctx, key).Bytes(); err == nil && len(b) > 0 {
		var out []entity.Instrument
		if err := json.Unmarshal(b, &out); err == nil {
			return out, nil
		}
		// Delete corrupted cache entry
		_ = c.rdb.Del(ctx, key).Err()
	}

	// 2) Fall through to the real search
	out, err := c.inner.Search(ctx, query)
	if err != nil {
		return out, err
	}

	// 3) Store in cache (best effort)
	if b, err := json.Marshal(out); err == nil {
		_ = c.rdb.Set(ctx, key, b, c.ttl).Err()
	}

	return out, nil
}

// cacheKey builds the cache key from normalized query text so "NIFTY" and
// " nifty " share an entry.
func (c *CachingSearch) cacheKey(query string) string {
	return fmt.Sprintf("%s:%s", c.namespace, normalizeQuery(query))
}

func normalizeQuery(q string) string {
	q = strings.ToLower(strings.TrimSpace(q))
	q = strings.ReplaceAll(q, " ", "_")
	q = strings.ReplaceAll(q, ":", "_")
	return q
}
