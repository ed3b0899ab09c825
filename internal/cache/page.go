// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// page.go provides a Redis-backed full-page HTML cache for the public
// pages. When the home, post, or category page is rendered, the resulting
// HTML is stored so subsequent anonymous requests skip the DB queries and
// template execution entirely. Content or settings changes invalidate the
// affected keys.
package cache

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// pageKeyPrefix is the Redis key prefix for cached pages.
	pageKeyPrefix = "page:"

	// DefaultPageTTL is how long a rendered page stays cached.
	DefaultPageTTL = 5 * time.Minute
)

// PageCache manages full-page HTML caching in Redis.
type PageCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewPageCache creates a new page cache backed by the given Redis client.
func NewPageCache(client *redis.Client, ttl time.Duration) *PageCache {
	if ttl == 0 {
		ttl = DefaultPageTTL
	}
	return &PageCache{client: client, ttl: ttl}
}

// HomeKey returns the cache key for a home page number.
func HomeKey(page int) string {
	return fmt.Sprintf("home:%d", page)
}

// PostKey returns the cache key for a post page by slug.
func PostKey(slug string) string {
	return "post:" + slug
}

// CategoryKey returns the cache key for a category page by slug and page
// number.
func CategoryKey(slug string, page int) string {
	return fmt.Sprintf("category:%s:%d", slug, page)
}

// Get retrieves cached HTML for a page key. Returns false on miss.
func (pc *PageCache) Get(ctx context.Context, key string) ([]byte, bool) {
	val, err := pc.client.Get(ctx, pageKeyPrefix+key).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		slog.Warn("page cache get error", "key", key, "error", err)
		return nil, false
	}
	return val, true
}

// Set stores rendered HTML for a page key with the configured TTL.
func (pc *PageCache) Set(ctx context.Context, key string, html []byte) {
	if err := pc.client.Set(ctx, pageKeyPrefix+key, html, pc.ttl).Err(); err != nil {
		slog.Warn("page cache set error", "key", key, "error", err)
	}
}

// InvalidatePost removes a single cached post page plus every listing
// page that could include it.
func (pc *PageCache) InvalidatePost(ctx context.Context, slug string) {
	pc.deletePattern(ctx, pageKeyPrefix+"post:"+slug)
	pc.deletePattern(ctx, pageKeyPrefix+"home:*")
	pc.deletePattern(ctx, pageKeyPrefix+"category:*")
}

// InvalidateCategory removes the cached pages for one category.
func (pc *PageCache) InvalidateCategory(ctx context.Context, slug string) {
	pc.deletePattern(ctx, pageKeyPrefix+"category:"+slug+":*")
}

// InvalidateAll removes every cached page. Used when site settings change,
// since the chrome of every page could be affected.
func (pc *PageCache) InvalidateAll(ctx context.Context) {
	pc.deletePattern(ctx, pageKeyPrefix+"*")
}

// deletePattern scans for matching keys and deletes them in batches.
func (pc *PageCache) deletePattern(ctx context.Context, pattern string) {
	var cursor uint64
	var deleted int
	for {
		keys, nextCursor, err := pc.client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			slog.Warn("page cache scan error", "pattern", pattern, "error", err)
			return
		}
		if len(keys) > 0 {
			if err := pc.client.Del(ctx, keys...).Err(); err != nil {
				slog.Warn("page cache delete error", "error", err)
			}
			deleted += len(keys)
		}
		cursor = nextCursor
		if cursor == 0 {
			break
		}
	}
	if deleted > 0 {
		slog.Debug("page cache invalidated", "pattern", pattern, "deleted", deleted)
	}
}
