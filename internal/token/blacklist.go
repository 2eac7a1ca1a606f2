package token

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Blacklist records revoked token IDs until their natural expiry. Entries
// need no explicit removal: a token past its expiry fails validation anyway,
// so the store only has to remember it for the remaining lifetime.
type Blacklist interface {
	Add(ctx context.Context, jti string, ttl time.Duration) error
	Contains(ctx context.Context, jti string) (bool, error)
}

const blacklistKeyPrefix = "praxis:token:blacklist:"

type redisBlacklist struct {
	rdb *redis.Client
}

// NewRedisBlacklist stores revocations in redis, letting key TTLs handle
// purging.
func NewRedisBlacklist(rdb *redis.Client) Blacklist {
	return &redisBlacklist{rdb: rdb}
}

func (b *redisBlacklist) Add(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return b.rdb.Set(ctx, blacklistKeyPrefix+jti, "1", ttl).Err()
}

func (b *redisBlacklist) Contains(ctx context.Context, jti string) (bool, error) {
	n, err := b.rdb.Exists(ctx, blacklistKeyPrefix+jti).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

type memoryBlacklist struct {
	mu      sync.Mutex
	expires map[string]time.Time
	now     func() time.Time
}

// NewMemoryBlacklist keeps revocations in process memory. Expired entries
// are purged lazily whenever the map is touched.
func NewMemoryBlacklist() Blacklist {
	return &memoryBlacklist{
		expires: make(map[string]time.Time),
		now:     time.Now,
	}
}

func (b *memoryBlacklist) Add(_ context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.purgeLocked()
	b.expires[jti] = b.now().Add(ttl)
	return nil
}

func (b *memoryBlacklist) Contains(_ context.Context, jti string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.purgeLocked()
	_, ok := b.expires[jti]
	return ok, nil
}

func (b *memoryBlacklist) purgeLocked() {
	now := b.now()
	for jti, exp := range b.expires {
		if !exp.After(now) {
			delete(b.expires, jti)
		}
	}
}
