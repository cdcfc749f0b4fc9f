package cache

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/biey-root/serverless-rest-api/internal/store"
)

const keyPrefix = "todo:list:"

// ListCache caches list pages in Redis, keyed by (limit, cursor). All pages
// are dropped on every successful mutation (cache invalidation on write).
type ListCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewListCache returns a new ListCache.
func NewListCache(rdb *redis.Client, ttl time.Duration) *ListCache {
	return &ListCache{rdb: rdb, ttl: ttl}
}

func pageKey(limit int32, cursor string) string {
	return keyPrefix + strconv.FormatInt(int64(limit), 10) + ":" + cursor
}

// GetPage returns the cached page or nil on miss.
func (c *ListCache) GetPage(ctx context.Context, limit int32, cursor string) (*store.Page, error) {
	b, err := c.rdb.Get(ctx, pageKey(limit, cursor)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var page store.Page
	if err := json.Unmarshal(b, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// SetPage stores the page in cache.
func (c *ListCache) SetPage(ctx context.Context, limit int32, cursor string, page store.Page) error {
	b, err := json.Marshal(page)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, pageKey(limit, cursor), b, c.ttl).Err()
}

// InvalidateAll removes every cached page.
func (c *ListCache) InvalidateAll(ctx context.Context) error {
	iter := c.rdb.Scan(ctx, 0, keyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		if err := c.rdb.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}
