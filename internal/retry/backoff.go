package retry

import (
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"github.com/vvka-141/transient/pkg/transient"
)

// strategyBase holds the parameters shared by every strategy variant.
type strategyBase struct {
	name string

	// retryCount is the maximum number of retries (0 = no retries)
	retryCount int

	// fastFirstRetry makes the executor skip the wait before the first retry
	fastFirstRetry bool

	// jitterFunc provides random values [0, 1) for jitter calculation.
	// nil means every derived decision gets its own random source.
	jitterFunc func() float64
}

// Name returns the strategy name.
func (b *strategyBase) Name() string {
	return b.name
}

// RetryCount returns the maximum number of retries.
func (b *strategyBase) RetryCount() int {
	return b.retryCount
}

// FastFirstRetry reports whether the first retry is made without waiting.
func (b *strategyBase) FastFirstRetry() bool {
	return b.fastFirstRetry
}

// exhausted reports whether no retry is left for the zero-based attempt.
func (b *strategyBase) exhausted(attempt int) bool {
	return attempt < 0 || attempt >= b.retryCount
}

// randomSource returns the jitter source for one derived decision.
func (b *strategyBase) randomSource() func() float64 {
	if b.jitterFunc != nil {
		return b.jitterFunc
	}
	// #nosec G404 -- crypto rand not needed for backoff jitter
	rng := rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	return rng.Float64
}

// StrategyOption is a functional option for configuring the shared parts of a strategy.
type StrategyOption func(*strategyBase)

// WithName sets the name used to register the strategy.
func WithName(name string) StrategyOption {
	return func(b *strategyBase) {
		b.name = name
	}
}

// WithFastFirstRetry enables or disables the immediate first retry.
func WithFastFirstRetry(enabled bool) StrategyOption {
	return func(b *strategyBase) {
		b.fastFirstRetry = enabled
	}
}

// WithJitterFunc sets a custom function for generating random jitter values.
// The function is shared by all derived decisions and must be safe for concurrent use.
func WithJitterFunc(f func() float64) StrategyOption {
	return func(b *strategyBase) {
		b.jitterFunc = f
	}
}

func newBase(retryCount int, opts []StrategyOption) (strategyBase, error) {
	b := strategyBase{
		retryCount:     retryCount,
		fastFirstRetry: transient.DefaultFastFirstRetry,
	}
	for _, opt := range opts {
		opt(&b)
	}
	if retryCount < 0 {
		return b, fmt.Errorf("%w: retry count must be >= 0, got %d", transient.ErrInvalidArgument, retryCount)
	}
	return b, nil
}

func nonNegative(field string, d time.Duration) error {
	if d < 0 {
		return fmt.Errorf("%w: %s must be >= 0, got %v", transient.ErrInvalidArgument, field, d)
	}
	return nil
}

// FixedInterval retries a fixed number of times with the same delay.
type FixedInterval struct {
	strategyBase
	interval time.Duration
}

// NewFixedInterval creates a fixed interval strategy.
func NewFixedInterval(retryCount int, interval time.Duration, opts ...StrategyOption) (*FixedInterval, error) {
	base, err := newBase(retryCount, opts)
	if err != nil {
		return nil, err
	}
	if err := nonNegative("interval", interval); err != nil {
		return nil, err
	}
	return &FixedInterval{strategyBase: base, interval: interval}, nil
}

// DefaultFixedInterval returns a fixed interval strategy with the default parameters.
func DefaultFixedInterval(opts ...StrategyOption) *FixedInterval {
	s, err := NewFixedInterval(transient.DefaultRetryCount, transient.DefaultInterval, opts...)
	if err != nil {
		panic(err)
	}
	return s
}

// Interval returns the delay between attempts.
func (s *FixedInterval) Interval() time.Duration {
	return s.interval
}

// NewDecision derives the decision function for one call.
func (s *FixedInterval) NewDecision() transient.Decision {
	return func(attempt int, _ error) (bool, time.Duration) {
		if s.exhausted(attempt) {
			return false, 0
		}
		return true, s.interval
	}
}

// Incremental grows the delay linearly: initialInterval + increment*attempt.
type Incremental struct {
	strategyBase
	initialInterval time.Duration
	increment       time.Duration
}

// NewIncremental creates an incremental strategy.
func NewIncremental(retryCount int, initialInterval, increment time.Duration, opts ...StrategyOption) (*Incremental, error) {
	base, err := newBase(retryCount, opts)
	if err != nil {
		return nil, err
	}
	if err := nonNegative("initial interval", initialInterval); err != nil {
		return nil, err
	}
	if err := nonNegative("increment", increment); err != nil {
		return nil, err
	}
	return &Incremental{strategyBase: base, initialInterval: initialInterval, increment: increment}, nil
}

// DefaultIncremental returns an incremental strategy with the default parameters.
func DefaultIncremental(opts ...StrategyOption) *Incremental {
	s, err := NewIncremental(transient.DefaultRetryCount, transient.DefaultInitialInterval, transient.DefaultIncrement, opts...)
	if err != nil {
		panic(err)
	}
	return s
}

// InitialInterval returns the delay before the first retry.
func (s *Incremental) InitialInterval() time.Duration {
	return s.initialInterval
}

// Increment returns the amount added to the delay on every retry.
func (s *Incremental) Increment() time.Duration {
	return s.increment
}

// NewDecision derives the decision function for one call.
func (s *Incremental) NewDecision() transient.Decision {
	return func(attempt int, _ error) (bool, time.Duration) {
		if s.exhausted(attempt) {
			return false, 0
		}
		return true, s.delay(attempt)
	}
}

func (s *Incremental) delay(attempt int) time.Duration {
	d := float64(s.initialInterval) + float64(s.increment)*float64(attempt)
	if d >= math.MaxInt64 {
		return time.Duration(math.MaxInt64)
	}
	return s.initialInterval + s.increment*time.Duration(attempt)
}

// Jitter bounds relative to deltaBackoff.
const (
	jitterLow    = 0.8
	jitterSpread = 0.4
)

// ExponentialBackoff implements exponential backoff with jitter.
//
// The delay for attempt i is min(maxBackoff, minBackoff + (2^i - 1) * jitter)
// where jitter is drawn uniformly from [0.8, 1.2) * deltaBackoff.
// The first retry therefore waits exactly minBackoff.
type ExponentialBackoff struct {
	strategyBase

	// minBackoff is the delay for the first retry attempt
	minBackoff time.Duration

	// maxBackoff is the maximum delay between attempts
	maxBackoff time.Duration

	// deltaBackoff is the jitter unit scaled exponentially per attempt
	deltaBackoff time.Duration
}

// NewExponentialBackoff creates an exponential backoff strategy.
//
// Example:
//
//	backoff, err := retry.NewExponentialBackoff(5, time.Second, 30*time.Second, 200*time.Millisecond,
//	    retry.WithName("database"),
//	    retry.WithFastFirstRetry(false),
//	)
func NewExponentialBackoff(retryCount int, minBackoff, maxBackoff, deltaBackoff time.Duration, opts ...StrategyOption) (*ExponentialBackoff, error) {
	base, err := newBase(retryCount, opts)
	if err != nil {
		return nil, err
	}
	if err := nonNegative("min backoff", minBackoff); err != nil {
		return nil, err
	}
	if err := nonNegative("delta backoff", deltaBackoff); err != nil {
		return nil, err
	}
	if maxBackoff < minBackoff {
		return nil, fmt.Errorf("%w: max backoff %v must be >= min backoff %v", transient.ErrInvalidArgument, maxBackoff, minBackoff)
	}
	return &ExponentialBackoff{
		strategyBase: base,
		minBackoff:   minBackoff,
		maxBackoff:   maxBackoff,
		deltaBackoff: deltaBackoff,
	}, nil
}

// DefaultExponentialBackoff returns an exponential backoff strategy with the default parameters.
func DefaultExponentialBackoff(opts ...StrategyOption) *ExponentialBackoff {
	s, err := NewExponentialBackoff(transient.DefaultRetryCount,
		transient.DefaultMinBackoff,
		transient.DefaultMaxBackoff,
		transient.DefaultDeltaBackoff,
		opts...,
	)
	if err != nil {
		panic(err)
	}
	return s
}

// MinBackoff returns the minimum delay for tests and debugging.
func (s *ExponentialBackoff) MinBackoff() time.Duration {
	return s.minBackoff
}

// MaxBackoff returns the maximum delay for tests and debugging.
func (s *ExponentialBackoff) MaxBackoff() time.Duration {
	return s.maxBackoff
}

// DeltaBackoff returns the jitter unit for tests and debugging.
func (s *ExponentialBackoff) DeltaBackoff() time.Duration {
	return s.deltaBackoff
}

// NewDecision derives the decision function for one call with its own random source.
func (s *ExponentialBackoff) NewDecision() transient.Decision {
	random := s.randomSource()
	return func(attempt int, _ error) (bool, time.Duration) {
		if s.exhausted(attempt) {
			return false, 0
		}
		return true, s.delay(attempt, random())
	}
}

func (s *ExponentialBackoff) delay(attempt int, r float64) time.Duration {
	delayNs := float64(s.minBackoff)
	if jitter := float64(s.deltaBackoff) * (jitterLow + jitterSpread*r); jitter > 0 {
		delayNs += jitter * (math.Exp2(float64(attempt)) - 1)
	}

	// Cap at maxBackoff (also covers +Inf for very large attempts)
	if delayNs >= float64(s.maxBackoff) {
		return s.maxBackoff
	}
	return time.Duration(delayNs)
}
