// internal/pkg/rolecache/rolecache.go
package rolecache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Role entries are UI hints only. Authorization always checks the verified
// token claims; a stale cache entry must never widen access.
const roleTTL = 5 * time.Minute

// Cache is a read-through cache for user roles backed by Redis.
type Cache struct {
	client *redis.Client
}

func New(client *redis.Client) *Cache {
	return &Cache{client: client}
}

func (c *Cache) key(userID int64) string {
	return fmt.Sprintf("role:%d", userID)
}

// Get returns the cached role for a user, or ok=false on a miss or any
// Redis error (the caller falls back to the authoritative lookup).
func (c *Cache) Get(ctx context.Context, userID int64) (string, bool) {
	role, err := c.client.Get(ctx, c.key(userID)).Result()
	if err != nil {
		return "", false
	}
	return role, true
}

// Set stores the role with the cache TTL. Failures are ignored; the cache
// is advisory.
func (c *Cache) Set(ctx context.Context, userID int64, role string) {
	_ = c.client.Set(ctx, c.key(userID), role, roleTTL).Err()
}

// Invalidate drops the cached role, used when a role change is persisted.
func (c *Cache) Invalidate(ctx context.Context, userID int64) {
	_ = c.client.Del(ctx, c.key(userID)).Err()
}
