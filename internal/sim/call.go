package sim

import (
	"context"
	"errors"
	"sync"
	"time"
)

// callResult is the outcome of one bounded agent call.
type callResult[T any] struct {
	Value    T
	Elapsed  time.Duration
	Err      error
	TimedOut bool
}

// abandonHooks lets the caller track calls left running after their budget.
type abandonHooks struct {
	// Abandoned runs when the driver stops waiting for a call still in flight.
	Abandoned func()
	// Returned runs when such an abandoned call finally returns.
	Returned func()
}

// callWithBudget runs fn in its own goroutine under a context that expires
// after budget and waits for whichever comes first. A call still running at
// the deadline is abandoned and its eventual result dropped. A result that
// arrives after the budget counts as a timeout too. A non-positive budget
// times out without calling fn.
func callWithBudget[T any](ctx context.Context, budget time.Duration, hooks abandonHooks, fn func(context.Context) (T, error)) callResult[T] {
	var res callResult[T]
	if budget <= 0 {
		res.TimedOut = true
		return res
	}
	if err := ctx.Err(); err != nil {
		res.Err = err
		return res
	}

	callCtx, cancel := context.WithTimeout(ctx, budget)
	defer cancel()

	type outcome struct {
		value T
		err   error
	}
	ch := make(chan outcome, 1)

	var (
		mu        sync.Mutex
		finished  bool
		abandoned bool
	)

	start := time.Now()
	go func() {
		var out outcome
		defer func() {
			if r := recover(); r != nil {
				out = outcome{err: &PanicError{Value: r}}
			}
			ch <- out

			mu.Lock()
			finished = true
			late := abandoned
			mu.Unlock()
			if late && hooks.Returned != nil {
				hooks.Returned()
			}
		}()
		out.value, out.err = fn(callCtx)
	}()

	select {
	case out := <-ch:
		res.Elapsed = time.Since(start)
		if res.Elapsed > budget || (errors.Is(out.err, context.DeadlineExceeded) && ctx.Err() == nil) {
			res.TimedOut = true
			return res
		}
		res.Value, res.Err = out.value, out.err
		return res
	case <-callCtx.Done():
		res.Elapsed = time.Since(start)

		mu.Lock()
		running := !finished
		abandoned = running
		mu.Unlock()
		if running && hooks.Abandoned != nil {
			hooks.Abandoned()
		}

		if err := ctx.Err(); err != nil {
			res.Err = err
			return res
		}
		res.TimedOut = true
		return res
	}
}
