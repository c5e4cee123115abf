// Package tokenstore keeps the ids of access tokens revoked before their
// natural expiry.
package tokenstore

import (
	"context"
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
)

type Denylist interface {
	// Revoke remembers jti until expiresAt. Entries in the past are ignored.
	Revoke(ctx context.Context, jti string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

type MemoryDenylist struct {
	cache *cache.Cache
}

func NewMemoryDenylist(cleanupInterval time.Duration) *MemoryDenylist {
	return &MemoryDenylist{
		cache: cache.New(cache.NoExpiration, cleanupInterval),
	}
}

func (d *MemoryDenylist) Revoke(_ context.Context, jti string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}
	d.cache.Set(jti, struct{}{}, ttl)
	return nil
}

func (d *MemoryDenylist) IsRevoked(_ context.Context, jti string) (bool, error) {
	_, found := d.cache.Get(jti)
	return found, nil
}

// Size counts entries, expired-but-not-yet-purged ones included.
func (d *MemoryDenylist) Size() int {
	return d.cache.ItemCount()
}

const redisKeyPrefix = "denylist:"

// RedisDenylist shares revocations between instances.
type RedisDenylist struct {
	rdb *redis.Client
}

func NewRedisDenylist(rdb *redis.Client) *RedisDenylist {
	return &RedisDenylist{rdb: rdb}
}

func (d *RedisDenylist) Revoke(ctx context.Context, jti string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}
	if err := d.rdb.Set(ctx, redisKeyPrefix+jti, 1, ttl).Err(); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

func (d *RedisDenylist) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := d.rdb.Exists(ctx, redisKeyPrefix+jti).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check token revocation: %w", err)
	}
	return n > 0, nil
}
