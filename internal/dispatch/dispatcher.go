package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"

	"github.com/praxis-crm/praxis/internal/apperr"
	"github.com/praxis-crm/praxis/internal/routing"
)

// Dispatcher routes handler invocations to the serving goroutine or a
// bounded worker pool and normalizes whatever comes back. It is the
// production routing.Invoker.
type Dispatcher struct {
	pools  *Pools
	logger *slog.Logger
}

// NewDispatcher builds a dispatcher over the given pools.
func NewDispatcher(pools *Pools, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{pools: pools, logger: logger}
}

// Invoke runs fn according to the declared execution mode. Inline handlers
// run on the calling goroutine; blocking handlers go through the workload
// pool with its execution ceiling. Futures are awaited, panics become
// internal errors, and values pass through untouched.
func (d *Dispatcher) Invoke(ctx context.Context, mode routing.ExecutionMode, workload string, fn func(context.Context) (any, error)) (any, error) {
	run := func(c context.Context) (any, error) {
		return safeRun(c, fn)
	}

	var value any
	var err error
	switch mode {
	case routing.Blocking:
		value, err = d.pools.Get(workload).Submit(ctx, run)
	default:
		value, err = run(ctx)
	}
	if err != nil {
		d.logInvokeFailure(workload, err)
		return nil, err
	}
	if future, ok := value.(*Future); ok {
		value, err = future.Await(ctx)
		if err != nil {
			d.logInvokeFailure(workload, err)
			return nil, err
		}
	}
	return value, nil
}

func (d *Dispatcher) logInvokeFailure(workload string, err error) {
	if d.logger == nil {
		return
	}
	appErr := apperr.From(err)
	if appErr.Kind != apperr.KindInternal && appErr.Kind != apperr.KindTimeout {
		return
	}
	d.logger.Error("dispatch failed",
		slog.String("workload", workload),
		slog.Any("error", err))
}

// safeRun invokes fn and converts panics into internal errors so one bad
// handler cannot take the worker down.
func safeRun(ctx context.Context, fn func(context.Context) (any, error)) (value any, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = apperr.ErrInternal.Wrap(panicError(rec))
			value = nil
		}
	}()
	return fn(ctx)
}

func panicError(rec any) error {
	return fmt.Errorf("panic: %v\n%s", rec, debug.Stack())
}
