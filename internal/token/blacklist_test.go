package token

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryBlacklist(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	bl := NewMemoryBlacklist().(*memoryBlacklist)
	bl.now = func() time.Time { return now }

	ctx := context.Background()
	require.NoError(t, bl.Add(ctx, "jti-1", time.Hour))

	revoked, err := bl.Contains(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, err = bl.Contains(ctx, "jti-unknown")
	require.NoError(t, err)
	assert.False(t, revoked)

	// Entries fall out once their token would have expired anyway.
	now = now.Add(2 * time.Hour)
	revoked, err = bl.Contains(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked)
	assert.Empty(t, bl.expires)
}

func TestMemoryBlacklistIgnoresNonPositiveTTL(t *testing.T) {
	bl := NewMemoryBlacklist()
	ctx := context.Background()
	require.NoError(t, bl.Add(ctx, "jti-1", 0))
	require.NoError(t, bl.Add(ctx, "jti-2", -time.Minute))

	for _, jti := range []string{"jti-1", "jti-2"} {
		revoked, err := bl.Contains(ctx, jti)
		require.NoError(t, err)
		assert.False(t, revoked)
	}
}

func TestRedisBlacklist(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	bl := NewRedisBlacklist(rdb)
	ctx := context.Background()
	require.NoError(t, bl.Add(ctx, "jti-9", time.Hour))

	revoked, err := bl.Contains(ctx, "jti-9")
	require.NoError(t, err)
	assert.True(t, revoked)

	mr.FastForward(2 * time.Hour)
	revoked, err = bl.Contains(ctx, "jti-9")
	require.NoError(t, err)
	assert.False(t, revoked)
}
