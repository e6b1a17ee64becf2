package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// DedupeCache implements ports.DedupeCache. It remembers event ids that
// reached a terminal processed state so redeliveries skip the database.
type DedupeCache struct {
	client goredis.UniversalClient
	prefix string
}

// NewDedupeCache creates a new Redis-backed dedupe cache.
func NewDedupeCache(client goredis.UniversalClient) *DedupeCache {
	return &DedupeCache{
		client: client,
		prefix: "webhook:processed:",
	}
}

// Seen reports whether the event id was marked processed and has not expired.
func (c *DedupeCache) Seen(ctx context.Context, eventID string) (bool, error) {
	n, err := c.client.Exists(ctx, c.prefix+eventID).Result()
	if err != nil {
		return false, fmt.Errorf("redis dedupe exists: %w", err)
	}
	return n > 0, nil
}

// MarkProcessed records the event id for ttl.
func (c *DedupeCache) MarkProcessed(ctx context.Context, eventID string, ttl time.Duration) error {
	if err := c.client.Set(ctx, c.prefix+eventID, 1, ttl).Err(); err != nil {
		return fmt.Errorf("redis dedupe set: %w", err)
	}
	return nil
}
