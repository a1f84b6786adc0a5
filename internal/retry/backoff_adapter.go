package retry

import (
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/vvka-141/transient/pkg/transient"
)

// BackOffStrategy adapts a github.com/cenkalti/backoff policy.
// A fresh BackOff is built for every call, so the stateful policy is never shared,
// and the retry budget is still bounded by retryCount.
type BackOffStrategy struct {
	strategyBase
	factory func() backoff.BackOff
}

// NewBackOffStrategy creates a strategy that asks factory for a new BackOff per call.
// The call stops retrying when retryCount is reached or the BackOff returns backoff.Stop.
func NewBackOffStrategy(retryCount int, factory func() backoff.BackOff, opts ...StrategyOption) (*BackOffStrategy, error) {
	base, err := newBase(retryCount, opts)
	if err != nil {
		return nil, err
	}
	if factory == nil {
		return nil, fmt.Errorf("%w: backoff factory cannot be nil", transient.ErrInvalidArgument)
	}
	return &BackOffStrategy{strategyBase: base, factory: factory}, nil
}

// NewDecision derives the decision function for one call.
func (s *BackOffStrategy) NewDecision() transient.Decision {
	b := s.factory()
	b.Reset()
	return func(attempt int, _ error) (bool, time.Duration) {
		if s.exhausted(attempt) {
			return false, 0
		}
		next := b.NextBackOff()
		if next == backoff.Stop {
			return false, 0
		}
		return true, next
	}
}

// ExponentialBackOffFactory returns a factory of randomized exponential policies
// that never stop on elapsed time; the retry count bounds them instead.
func ExponentialBackOffFactory(initial, maxInterval time.Duration, multiplier, randomization float64) func() backoff.BackOff {
	return func() backoff.BackOff {
		b := backoff.NewExponentialBackOff()
		b.InitialInterval = initial
		b.MaxInterval = maxInterval
		b.Multiplier = multiplier
		b.RandomizationFactor = randomization
		b.MaxElapsedTime = 0
		return b
	}
}
