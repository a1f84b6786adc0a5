package retry

import (
	"context"
	"sync"
	"time"

	"github.com/vvka-141/transient/pkg/transient"
)

// Future is the eventual result of RunAsync. It completes exactly once.
type Future[T any] struct {
	done  chan struct{}
	once  sync.Once
	value T
	err   error
}

func newFuture[T any]() *Future[T] {
	return &Future[T]{done: make(chan struct{})}
}

func (f *Future[T]) complete(value T, err error) {
	f.once.Do(func() {
		f.value, f.err = value, err
		close(f.done)
	})
}

// Done is closed when the call has reached a terminal state.
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// Result blocks until the call completes and returns its value and error.
func (f *Future[T]) Result() (T, error) {
	<-f.done
	return f.value, f.err
}

// Await is like Result but gives up waiting when ctx is done.
// Giving up does not cancel the call; cancel the context passed to RunAsync for that.
func (f *Future[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Outcome blocks until the call completes and tags its result.
func (f *Future[T]) Outcome() transient.Outcome {
	<-f.done
	return transient.OutcomeOf(f.err)
}

// RunAsync starts the operation with retry logic and returns immediately.
//
// Attempts run on background goroutines and never overlap. No goroutine waits
// during a backoff delay: the next attempt is scheduled with a timer, and a
// cancellation of ctx during the delay completes the Future without another attempt.
// Invalid arguments are reported synchronously.
func RunAsync[T any](ctx context.Context, e *Executor, operation ValueOperation[T]) (*Future[T], error) {
	if err := validate(e, operation == nil); err != nil {
		return nil, err
	}

	r := &asyncRun[T]{
		ctx:       ctx,
		call:      e.newCall(),
		operation: operation,
		future:    newFuture[T](),
	}

	// Canceled before the first attempt: complete without invoking the operation.
	if err := r.call.begin(ctx); err != nil {
		var zero T
		r.future.complete(zero, err)
		return r.future, nil
	}

	go r.attempt()
	return r.future, nil
}

type asyncRun[T any] struct {
	ctx       context.Context
	call      *call
	operation ValueOperation[T]
	future    *Future[T]
}

func (r *asyncRun[T]) attempt() {
	var zero T
	if err := r.call.begin(r.ctx); err != nil {
		r.future.complete(zero, err)
		return
	}

	value, err := r.operation(r.ctx)
	v := r.call.settle(r.ctx, err)
	if v.done {
		if v.err != nil {
			r.future.complete(zero, v.err)
			return
		}
		r.future.complete(value, nil)
		return
	}

	r.suspend(v.delay)
}

// suspend schedules the next attempt after delay. Whichever of the timer and the
// context fires first claims the wakeup; the loser does nothing.
func (r *asyncRun[T]) suspend(delay time.Duration) {
	var (
		mu      sync.Mutex
		claimed bool
		timer   *time.Timer
	)
	claim := func() bool {
		mu.Lock()
		defer mu.Unlock()
		if claimed {
			return false
		}
		claimed = true
		return true
	}

	stopWatch := context.AfterFunc(r.ctx, func() {
		if !claim() {
			return
		}
		mu.Lock()
		t := timer
		mu.Unlock()
		if t != nil {
			t.Stop()
		}
		var zero T
		r.future.complete(zero, r.ctx.Err())
	})

	mu.Lock()
	timer = time.AfterFunc(delay, func() {
		if !claim() {
			return
		}
		stopWatch()
		r.attempt()
	})
	mu.Unlock()
}
