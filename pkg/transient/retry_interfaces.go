package transient

import (
	"time"

	"github.com/google/uuid"
)

// ErrorClassifier determines whether an error is transient (retryable) or permanent.
type ErrorClassifier interface {
	// IsTransient returns true if the error is temporary and the operation should be retried.
	IsTransient(err error) bool
}

// ClassifierFunc adapts an ordinary function to the ErrorClassifier interface.
type ClassifierFunc func(err error) bool

// IsTransient calls f(err).
func (f ClassifierFunc) IsTransient(err error) bool {
	return f(err)
}

// Decision reports whether another attempt should be made after a failure
// and how long to wait before it.
//
// attempt is zero-indexed: 0 is the decision taken after the first failed attempt.
// When retry is false, delay is always zero.
type Decision func(attempt int, lastErr error) (retry bool, delay time.Duration)

// BackoffStrategy describes a retry budget and delay shape.
// Implementations are immutable and safe to share between goroutines.
type BackoffStrategy interface {
	// Name identifies the strategy inside a registry. May be empty outside one.
	Name() string

	// RetryCount returns the maximum number of retries (not counting the first attempt).
	RetryCount() int

	// FastFirstRetry reports whether the first retry is made without waiting.
	FastFirstRetry() bool

	// NewDecision derives an independent decision function for a single call.
	// Each derivation owns its own random source where jitter is involved.
	NewDecision() Decision
}

// RetryEvent is emitted right before the executor waits for the next attempt.
type RetryEvent struct {
	// CallID correlates all events of one Run/RunValue/RunAsync call.
	CallID uuid.UUID

	// Strategy is the name of the strategy that produced the delay.
	Strategy string

	// Attempt is the number of retries performed so far including the upcoming one (1-based).
	Attempt int

	// Err is the transient error that triggered the retry.
	Err error

	// Delay is the time the executor waits before the next attempt.
	Delay time.Duration
}

// RetryHandler receives retry notifications. It is called synchronously on the
// goroutine running the attempt loop and must not block for long.
type RetryHandler func(event RetryEvent)
