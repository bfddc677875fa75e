package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// SnapshotCache implements ports.SnapshotCache. The pricing gateway keeps
// its last USD price and FX snapshots here so replicas share one upstream fetch.
type SnapshotCache struct {
	client goredis.UniversalClient
	prefix string
}

// NewSnapshotCache creates a Redis-backed snapshot cache.
func NewSnapshotCache(client goredis.UniversalClient) *SnapshotCache {
	return &SnapshotCache{
		client: client,
		prefix: "snapshot:",
	}
}

// Get returns nil, nil when the key is absent or expired.
func (c *SnapshotCache) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("redis snapshot get: %w", err)
	}
	return val, nil
}

func (c *SnapshotCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := c.client.Set(ctx, c.prefix+key, value, ttl).Err(); err != nil {
		return fmt.Errorf("redis snapshot set: %w", err)
	}
	return nil
}
