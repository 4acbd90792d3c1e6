package reports

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const cacheTTL = 5 * time.Minute

// Cache wraps Redis for report results. A nil client disables caching
// entirely; report queries then always hit Postgres, which keeps reports
// available when Redis is down.
type Cache struct {
	rdb *redis.Client
}

// NewCache connects to REDIS_URL and returns a disabled cache when the URL
// is empty or unreachable.
func NewCache(ctx context.Context, url string) *Cache {
	if url == "" {
		slog.Info("report cache disabled, REDIS_URL not set")
		return &Cache{}
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		slog.Warn("report cache disabled, invalid REDIS_URL", "error", err)
		return &Cache{}
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		slog.Warn("report cache disabled, redis unreachable", "error", err)
		return &Cache{}
	}
	slog.Info("report cache connected")
	return &Cache{rdb: client}
}

// Get unmarshals a cached value into dest. A miss, a disabled cache and a
// broken cache all report false.
func (c *Cache) Get(ctx context.Context, key string, dest any) bool {
	if c.rdb == nil {
		return false
	}
	raw, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			slog.Warn("report cache read failed", "key", key, "error", err)
		}
		return false
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		slog.Warn("report cache entry corrupt", "key", key, "error", err)
		return false
	}
	return true
}

// Set stores a value best-effort.
func (c *Cache) Set(ctx context.Context, key string, val any) {
	if c.rdb == nil {
		return
	}
	raw, err := json.Marshal(val)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, key, raw, cacheTTL).Err(); err != nil {
		slog.Warn("report cache write failed", "key", key, "error", err)
	}
}

func (c *Cache) Close() error {
	if c.rdb == nil {
		return nil
	}
	return c.rdb.Close()
}
