package retry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/vvka-141/transient/pkg/transient"
)

// Operation is a unit of work retried by an Executor.
type Operation func(ctx context.Context) error

// ValueOperation is an Operation that produces a value.
type ValueOperation[T any] func(ctx context.Context) (T, error)

// Executor orchestrates retry attempts with backoff and error classification.
//
// Thread Safety:
// The Executor is safe for concurrent use. Every call derives its own decision
// function from the strategy, so attempt counters and jitter are call-local.
// WithOnRetry() returns a NEW instance with the callback configured; the original
// Executor remains unchanged.
type Executor struct {
	classifier transient.ErrorClassifier
	strategy   transient.BackoffStrategy
	onRetry    transient.RetryHandler

	// sleep waits between attempts of the blocking entry points
	sleep func(ctx context.Context, d time.Duration) error
}

// NewExecutor creates a new retry executor with the given configuration.
// Returns an error wrapping transient.ErrInvalidArgument if classifier or strategy is nil.
func NewExecutor(classifier transient.ErrorClassifier, strategy transient.BackoffStrategy) (*Executor, error) {
	if classifier == nil {
		return nil, fmt.Errorf("%w: classifier cannot be nil", transient.ErrInvalidArgument)
	}
	if strategy == nil {
		return nil, fmt.Errorf("%w: strategy cannot be nil", transient.ErrInvalidArgument)
	}
	return &Executor{
		classifier: classifier,
		strategy:   strategy,
		sleep:      sleepContext,
	}, nil
}

// MustExecutor is like NewExecutor but panics if classifier or strategy is nil.
func MustExecutor(classifier transient.ErrorClassifier, strategy transient.BackoffStrategy) *Executor {
	e, err := NewExecutor(classifier, strategy)
	if err != nil {
		panic(err)
	}
	return e
}

// WithOnRetry returns a new Executor with the specified retry callback.
//
// This method does NOT modify the receiver; it returns a new instance.
//
// Example:
//
//	executor := retry.MustExecutor(classifier, strategy)
//	executor1 := executor.WithOnRetry(callback1) // New instance
//	executor2 := executor.WithOnRetry(callback2) // Another new instance
//	// executor1 and executor2 are independent
func (e *Executor) WithOnRetry(handler transient.RetryHandler) *Executor {
	clone := *e
	clone.onRetry = handler
	return &clone
}

// Strategy returns the backoff strategy of the executor.
func (e *Executor) Strategy() transient.BackoffStrategy {
	return e.strategy
}

// Classifier returns the error classifier of the executor.
func (e *Executor) Classifier() transient.ErrorClassifier {
	return e.classifier
}

// Run runs the operation with retry logic on the calling goroutine.
// Returns nil on success, the permanent or last transient error on failure,
// or a cancellation error (see transient.OutcomeOf).
func (e *Executor) Run(ctx context.Context, operation Operation) error {
	if operation == nil {
		return fmt.Errorf("%w: operation cannot be nil", transient.ErrInvalidArgument)
	}
	_, err := RunValue(ctx, e, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, operation(ctx)
	})
	return err
}

// RunValue runs a value-producing operation with retry logic on the calling goroutine.
// The zero value of T is returned with any error.
func RunValue[T any](ctx context.Context, e *Executor, operation ValueOperation[T]) (T, error) {
	var zero T
	if err := validate(e, operation == nil); err != nil {
		return zero, err
	}

	c := e.newCall()
	for {
		if err := c.begin(ctx); err != nil {
			return zero, err
		}

		value, err := operation(ctx)
		v := c.settle(ctx, err)
		if v.done {
			if v.err != nil {
				return zero, v.err
			}
			return value, nil
		}

		if err := e.sleep(ctx, v.delay); err != nil {
			return zero, err
		}
	}
}

func validate(e *Executor, nilOperation bool) error {
	if e == nil {
		return fmt.Errorf("%w: executor cannot be nil", transient.ErrInvalidArgument)
	}
	if nilOperation {
		return fmt.Errorf("%w: operation cannot be nil", transient.ErrInvalidArgument)
	}
	return nil
}

// call is the per-invocation state of the attempt loop shared by all entry points.
type call struct {
	id       uuid.UUID
	executor *Executor
	decide   transient.Decision

	// attempts is the number of times the operation has been invoked
	attempts int
}

// verdict is what the loop does after an attempt: stop with err, or wait delay.
type verdict struct {
	done  bool
	err   error
	delay time.Duration
}

func (e *Executor) newCall() *call {
	return &call{
		id:       uuid.New(),
		executor: e,
		decide:   e.strategy.NewDecision(),
	}
}

// begin is checked before every attempt.
func (c *call) begin(ctx context.Context) error {
	return ctx.Err()
}

// settle classifies the result of an attempt and decides what happens next.
func (c *call) settle(ctx context.Context, err error) verdict {
	c.attempts++
	if err == nil {
		return verdict{done: true}
	}

	// The operation observed the cancellation itself: never classified, never retried.
	if ctx.Err() != nil && isCancellation(err) {
		return verdict{done: true, err: err}
	}

	var limit *transient.RetryLimitExceededError
	if errors.As(err, &limit) {
		if limit.Err != nil {
			return verdict{done: true, err: limit.Err}
		}
		return verdict{done: true, err: &transient.AbortedError{Attempts: c.attempts}}
	}

	if !c.executor.classifier.IsTransient(err) {
		return verdict{done: true, err: err}
	}

	retryIndex := c.attempts - 1
	retry, delay := c.decide(retryIndex, err)
	if !retry {
		return verdict{done: true, err: err}
	}
	if retryIndex == 0 && c.executor.strategy.FastFirstRetry() {
		delay = 0
	}

	if c.executor.onRetry != nil {
		c.executor.onRetry(transient.RetryEvent{
			CallID:   c.id,
			Strategy: c.executor.strategy.Name(),
			Attempt:  retryIndex + 1,
			Err:      err,
			Delay:    delay,
		})
	}
	return verdict{delay: delay}
}

func isCancellation(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// sleepContext blocks the calling goroutine for d or until ctx is done.
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
