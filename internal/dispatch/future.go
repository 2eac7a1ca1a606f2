package dispatch

import (
	"context"

	"github.com/praxis-crm/praxis/internal/apperr"
)

// Future is an asynchronous result a handler may return instead of a plain
// value. The dispatcher awaits it before writing the envelope, so callers
// still observe a single synchronous response.
type Future struct {
	done chan outcome
}

// Async starts fn on its own goroutine and returns a Future for its result.
// Panics inside fn resolve the future with an internal error.
func Async(fn func() (any, error)) *Future {
	f := &Future{done: make(chan outcome, 1)}
	go func() {
		defer func() {
			if rec := recover(); rec != nil {
				f.done <- outcome{err: apperr.ErrInternal.Wrap(panicError(rec))}
			}
		}()
		value, err := fn()
		f.done <- outcome{value: value, err: err}
	}()
	return f
}

// Resolved returns an already-completed future.
func Resolved(value any, err error) *Future {
	f := &Future{done: make(chan outcome, 1)}
	f.done <- outcome{value: value, err: err}
	return f
}

// Await blocks until the future resolves or ctx is done. A context deadline
// surfaces as a timeout error.
func (f *Future) Await(ctx context.Context) (any, error) {
	select {
	case out := <-f.done:
		return out.value, out.err
	case <-ctx.Done():
		if ctx.Err() == context.DeadlineExceeded {
			return nil, apperr.ErrTimeout.Wrap(ctx.Err())
		}
		return nil, apperr.ErrInternal.Wrap(ctx.Err())
	}
}
