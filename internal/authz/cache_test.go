package authz_test

import (
	"context"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/praxis-crm/praxis/internal/authz"
)

type countingSource struct {
	calls  atomic.Int64
	matrix map[string][]string
	err    error
}

func (s *countingSource) PermissionMatrix(context.Context, int64) (map[string][]string, error) {
	s.calls.Add(1)
	if s.err != nil {
		return nil, s.err
	}
	return s.matrix, nil
}

func newCache(t *testing.T, source authz.MatrixSource, ttl time.Duration) (*authz.MatrixCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return authz.NewMatrixCache(rdb, source, ttl, slog.Default()), mr
}

func TestMatrixMissThenHit(t *testing.T) {
	source := &countingSource{matrix: map[string][]string{"USER": {"VIEW"}}}
	cache, _ := newCache(t, source, time.Minute)

	matrix, err := cache.Matrix(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, []string{"VIEW"}, matrix["USER"])
	assert.Equal(t, int64(1), source.calls.Load())

	// Second read is served from redis.
	matrix, err = cache.Matrix(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, []string{"VIEW"}, matrix["USER"])
	assert.Equal(t, int64(1), source.calls.Load())
}

func TestMatrixExpiry(t *testing.T) {
	source := &countingSource{matrix: map[string][]string{"ROLE": {"VIEW"}}}
	cache, mr := newCache(t, source, time.Minute)

	_, err := cache.Matrix(context.Background(), 3)
	require.NoError(t, err)

	mr.FastForward(2 * time.Minute)

	_, err = cache.Matrix(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, int64(2), source.calls.Load())
}

func TestMatrixInvalidate(t *testing.T) {
	source := &countingSource{matrix: map[string][]string{"USER": {"VIEW"}}}
	cache, _ := newCache(t, source, time.Minute)

	_, err := cache.Matrix(context.Background(), 5)
	require.NoError(t, err)

	require.NoError(t, cache.Invalidate(context.Background(), 5))

	_, err = cache.Matrix(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, int64(2), source.calls.Load(), "invalidation must force a source re-fetch")
}

func TestMatrixRedisDownDegradesToSource(t *testing.T) {
	source := &countingSource{matrix: map[string][]string{"USER": {"VIEW"}}}
	cache, mr := newCache(t, source, time.Minute)
	mr.Close()

	matrix, err := cache.Matrix(context.Background(), 11)
	require.NoError(t, err)
	assert.Equal(t, []string{"VIEW"}, matrix["USER"])

	// Every call goes to the source while redis is down.
	_, err = cache.Matrix(context.Background(), 11)
	require.NoError(t, err)
	assert.Equal(t, int64(2), source.calls.Load())
}

func TestMatrixSourceErrorPropagates(t *testing.T) {
	source := &countingSource{err: assert.AnError}
	cache, _ := newCache(t, source, time.Minute)

	_, err := cache.Matrix(context.Background(), 1)
	assert.ErrorIs(t, err, assert.AnError)
}
