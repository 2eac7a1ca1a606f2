// Package jobs hosts the asynq background tasks: the permission-matrix
// warm-up and the token blacklist sweep, plus the worker, client and health
// endpoint around them.
package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	jobmetrics "github.com/praxis-crm/praxis/internal/jobs"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTypeMatrixWarm refreshes cached permission matrices for recently
	// active identities.
	TaskTypeMatrixWarm = "rbac:warm_matrices"
	// TaskTypeBlacklistSweep audits token blacklist entries, backfilling a
	// TTL on any key that lost one.
	TaskTypeBlacklistSweep = "token:sweep_blacklist"
)

// MatrixWarmer is the slice of the rbac service the warm task needs.
type MatrixWarmer interface {
	WarmMatrices(ctx context.Context, limit int) (int, error)
}

// MatrixWarmPayload bounds one warm run.
type MatrixWarmPayload struct {
	Limit int `json:"limit"`
}

// NewMatrixWarmTask constructs the warm task.
func NewMatrixWarmTask(payload MatrixWarmPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeMatrixWarm, data), nil
}

// NewBlacklistSweepTask constructs the sweep task.
func NewBlacklistSweepTask() *asynq.Task {
	return asynq.NewTask(TaskTypeBlacklistSweep, nil)
}

// Tasks bundles the handlers with their dependencies.
type Tasks struct {
	warmer  MatrixWarmer
	rdb     *redis.Client
	metrics *jobmetrics.Metrics
	logger  *slog.Logger

	// fallbackTTL is applied to blacklist keys found without an expiry so
	// they cannot linger forever.
	fallbackTTL time.Duration
}

// NewTasks wires the task handlers.
func NewTasks(warmer MatrixWarmer, rdb *redis.Client, metrics *jobmetrics.Metrics, logger *slog.Logger, fallbackTTL time.Duration) *Tasks {
	if fallbackTTL <= 0 {
		fallbackTTL = 168 * time.Hour
	}
	return &Tasks{warmer: warmer, rdb: rdb, metrics: metrics, logger: logger, fallbackTTL: fallbackTTL}
}

// HandleMatrixWarm processes TaskTypeMatrixWarm tasks.
func (t *Tasks) HandleMatrixWarm(ctx context.Context, task *asynq.Task) error {
	tracker := t.metrics.Track("matrix_warm")
	var payload MatrixWarmPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		_ = tracker.End(err)
		return asynq.SkipRetry
	}
	if payload.Limit <= 0 {
		payload.Limit = 100
	}
	warmed, err := t.warmer.WarmMatrices(ctx, payload.Limit)
	if err != nil {
		return tracker.End(err)
	}
	t.logger.Info("matrices warmed", slog.Int("count", warmed))
	return tracker.End(nil)
}

// HandleBlacklistSweep processes TaskTypeBlacklistSweep tasks.
func (t *Tasks) HandleBlacklistSweep(ctx context.Context, _ *asynq.Task) error {
	tracker := t.metrics.Track("blacklist_sweep")
	var cursor uint64
	scanned, repaired := 0, 0
	for {
		keys, next, err := t.rdb.Scan(ctx, cursor, "praxis:token:blacklist:*", 200).Result()
		if err != nil {
			return tracker.End(err)
		}
		for _, key := range keys {
			scanned++
			ttl, err := t.rdb.TTL(ctx, key).Result()
			if err != nil {
				return tracker.End(err)
			}
			if ttl == -1 {
				if err := t.rdb.Expire(ctx, key, t.fallbackTTL).Err(); err != nil {
					return tracker.End(err)
				}
				repaired++
			}
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}
	t.logger.Info("blacklist swept", slog.Int("scanned", scanned), slog.Int("repaired", repaired))
	return tracker.End(nil)
}
