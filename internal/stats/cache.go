package stats

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"clanstats-server/internal/shared/redis"
)

const viewCacheTTL = 5 * time.Minute

// Cache keeps the computed view of a period in Redis so repeated reloads
// of the table don't recompute and re-sort on every poll. Every mutation
// path invalidates the affected period's key. All methods are safe on a
// nil receiver, which is how the server runs with Redis disabled.
type Cache struct {
	client *redis.Client
}

func NewCache(client *redis.Client) *Cache {
	if client == nil {
		return nil
	}
	return &Cache{client: client}
}

func viewKey(periodID int) string {
	return fmt.Sprintf("stats:view:%d", periodID)
}

func (c *Cache) Get(ctx context.Context, periodID int) ([]Row, bool) {
	if c == nil {
		return nil, false
	}

	payload, err := c.client.Get(ctx, viewKey(periodID)).Bytes()
	if err != nil {
		return nil, false
	}

	var rows []Row
	if err := json.Unmarshal(payload, &rows); err != nil {
		slog.Warn("Discarding unreadable cached statistics view",
			"component", "stats_cache", "period_id", periodID, "error", err)
		c.Invalidate(ctx, periodID)
		return nil, false
	}

	return rows, true
}

func (c *Cache) Set(ctx context.Context, periodID int, rows []Row) {
	if c == nil {
		return
	}

	payload, err := json.Marshal(rows)
	if err != nil {
		return
	}

	if err := c.client.Set(ctx, viewKey(periodID), payload, viewCacheTTL).Err(); err != nil {
		slog.Warn("Failed to cache statistics view",
			"component", "stats_cache", "period_id", periodID, "error", err)
	}
}

func (c *Cache) Invalidate(ctx context.Context, periodID int) {
	if c == nil {
		return
	}

	if err := c.client.Del(ctx, viewKey(periodID)).Err(); err != nil {
		slog.Warn("Failed to invalidate statistics view cache",
			"component", "stats_cache", "period_id", periodID, "error", err)
	}
}
