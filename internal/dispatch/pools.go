// Package dispatch runs authorized, bound handler invocations either inline
// or on bounded worker pools, and normalizes results for the envelope
// writer. Pools are partitioned by workload class so a slow database cannot
// starve outbound I/O or CPU work.
package dispatch

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/praxis-crm/praxis/internal/apperr"
)

// Observer receives pool lifecycle events for metrics.
type Observer interface {
	PoolAcquired(pool string)
	PoolReleased(pool string)
	PoolTimeout(pool string)
}

// PoolsConfig sizes the three workload pools independently.
type PoolsConfig struct {
	DBSize      int
	IOSize      int
	CPUSize     int
	MaxExecTime time.Duration
}

// Pool is a bounded executor with a maximum execution ceiling. A task that
// exceeds the ceiling is abandoned: the caller gets a timeout error while
// the task's slot is released when it eventually returns, so queued work
// keeps flowing.
type Pool struct {
	name     string
	sem      *semaphore.Weighted
	maxExec  time.Duration
	observer Observer
}

func newPool(name string, size int, maxExec time.Duration, observer Observer) *Pool {
	if size <= 0 {
		size = 1
	}
	if maxExec <= 0 {
		maxExec = 30 * time.Second
	}
	return &Pool{
		name:     name,
		sem:      semaphore.NewWeighted(int64(size)),
		maxExec:  maxExec,
		observer: observer,
	}
}

// Name returns the pool's workload class.
func (p *Pool) Name() string { return p.name }

type outcome struct {
	value any
	err   error
}

// Submit runs fn on the pool and waits for completion or the execution
// ceiling. The provided fn receives a context cancelled at the ceiling so
// well-behaved work stops on its own.
func (p *Pool) Submit(ctx context.Context, fn func(context.Context) (any, error)) (any, error) {
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return nil, apperr.ErrInternal.Wrap(err)
	}
	if p.observer != nil {
		p.observer.PoolAcquired(p.name)
	}

	execCtx, cancel := context.WithTimeout(ctx, p.maxExec)
	defer cancel()

	done := make(chan outcome, 1)
	go func() {
		defer func() {
			p.sem.Release(1)
			if p.observer != nil {
				p.observer.PoolReleased(p.name)
			}
		}()
		value, err := safeRun(execCtx, fn)
		done <- outcome{value: value, err: err}
	}()

	select {
	case out := <-done:
		return out.value, out.err
	case <-execCtx.Done():
		if errors.Is(ctx.Err(), context.Canceled) {
			return nil, apperr.ErrInternal.Wrap(ctx.Err())
		}
		if p.observer != nil {
			p.observer.PoolTimeout(p.name)
		}
		return nil, apperr.ErrTimeout.Wrap(context.DeadlineExceeded)
	}
}

// Pools partitions blocking work by workload class.
type Pools struct {
	db  *Pool
	io  *Pool
	cpu *Pool
}

// NewPools builds the three standard pools. The CPU ceiling is doubled since
// heavy computation legitimately outlives the I/O ceiling.
func NewPools(cfg PoolsConfig, observer Observer) *Pools {
	return &Pools{
		db:  newPool("db", cfg.DBSize, cfg.MaxExecTime, observer),
		io:  newPool("io", cfg.IOSize, cfg.MaxExecTime, observer),
		cpu: newPool("cpu", cfg.CPUSize, 2*cfg.MaxExecTime, observer),
	}
}

// Get selects the pool for a workload class, defaulting to the db pool.
func (ps *Pools) Get(workload string) *Pool {
	switch workload {
	case "io":
		return ps.io
	case "cpu":
		return ps.cpu
	default:
		return ps.db
	}
}
