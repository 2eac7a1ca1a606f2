package authz

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// MatrixSource produces the authoritative resource-to-actions matrix for an
// identity, typically from the role/permission tables.
type MatrixSource interface {
	PermissionMatrix(ctx context.Context, userID int64) (map[string][]string, error)
}

const matrixKeyPrefix = "praxis:authz:matrix:"

// MatrixCache fronts the MatrixSource with a short-lived redis cache.
// Concurrent misses for the same identity collapse into one source query.
// Role mutations call Invalidate so revocations land within one request.
type MatrixCache struct {
	rdb    *redis.Client
	source MatrixSource
	ttl    time.Duration
	group  singleflight.Group
	logger *slog.Logger
}

// NewMatrixCache builds the cache. A non-positive ttl defaults to a minute.
func NewMatrixCache(rdb *redis.Client, source MatrixSource, ttl time.Duration, logger *slog.Logger) *MatrixCache {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &MatrixCache{rdb: rdb, source: source, ttl: ttl, logger: logger}
}

func matrixKey(userID int64) string {
	return fmt.Sprintf("%s%d", matrixKeyPrefix, userID)
}

// Matrix returns the permission matrix for an identity, from cache when
// fresh. Cache read failures fall through to the source so redis outages
// degrade to slower, not broken.
func (c *MatrixCache) Matrix(ctx context.Context, userID int64) (map[string][]string, error) {
	key := matrixKey(userID)
	if raw, err := c.rdb.Get(ctx, key).Bytes(); err == nil {
		var matrix map[string][]string
		if jsonErr := json.Unmarshal(raw, &matrix); jsonErr == nil {
			return matrix, nil
		}
	} else if err != redis.Nil && c.logger != nil {
		c.logger.Warn("matrix cache read failed", slog.Int64("user_id", userID), slog.Any("error", err))
	}

	value, err, _ := c.group.Do(key, func() (any, error) {
		matrix, err := c.source.PermissionMatrix(ctx, userID)
		if err != nil {
			return nil, err
		}
		if raw, jsonErr := json.Marshal(matrix); jsonErr == nil {
			if setErr := c.rdb.Set(ctx, key, raw, c.ttl).Err(); setErr != nil && c.logger != nil {
				c.logger.Warn("matrix cache write failed", slog.Int64("user_id", userID), slog.Any("error", setErr))
			}
		}
		return matrix, nil
	})
	if err != nil {
		return nil, err
	}
	return value.(map[string][]string), nil
}

// Invalidate drops the cached matrix for one identity.
func (c *MatrixCache) Invalidate(ctx context.Context, userID int64) error {
	return c.rdb.Del(ctx, matrixKey(userID)).Err()
}
