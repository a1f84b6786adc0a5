package config

import (
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/vvka-141/transient/internal/retry"
	"github.com/vvka-141/transient/pkg/transient"
)

// Build creates a registry holding the built-in strategies plus the configured
// ones. A configured strategy replaces a built-in one of the same name.
// opts are applied to every configured strategy after its own settings.
func (c *Config) Build(opts ...retry.StrategyOption) (*retry.Registry, error) {
	builtin := retry.BuiltinRegistry()

	byName := make(map[string]transient.BackoffStrategy)
	var order []string
	for _, name := range builtin.Names() {
		s, err := builtin.Resolve(name)
		if err != nil {
			return nil, err
		}
		byName[name] = s
		order = append(order, name)
	}

	seen := make(map[string]bool, len(c.Strategies))
	for _, sc := range c.Strategies {
		if seen[sc.Name] {
			return nil, fmt.Errorf("%w: duplicate strategy %q", transient.ErrInvalidConfig, sc.Name)
		}
		seen[sc.Name] = true

		s, err := sc.Build(opts...)
		if err != nil {
			return nil, err
		}
		if _, exists := byName[sc.Name]; !exists {
			order = append(order, sc.Name)
		}
		byName[sc.Name] = s
	}

	strategies := make([]transient.BackoffStrategy, 0, len(order))
	for _, name := range order {
		strategies = append(strategies, byName[name])
	}

	r, err := retry.NewRegistry(strategies, c.DefaultName(), c.Technologies)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", transient.ErrInvalidConfig, err)
	}
	if _, err := r.Resolve(""); err != nil {
		return nil, fmt.Errorf("%w: default strategy: %v", transient.ErrInvalidConfig, err)
	}
	for key, name := range c.Technologies {
		if _, err := r.Resolve(name); err != nil {
			return nil, fmt.Errorf("%w: technology %q: %v", transient.ErrInvalidConfig, key, err)
		}
	}
	return r, nil
}

// Build creates the strategy described by sc.
func (sc StrategyConfig) Build(opts ...retry.StrategyOption) (transient.BackoffStrategy, error) {
	p := parser{name: sc.Name}

	retryCount := transient.DefaultRetryCount
	if sc.RetryCount != nil {
		retryCount = *sc.RetryCount
	}
	base := []retry.StrategyOption{retry.WithName(sc.Name)}
	if sc.FastFirstRetry != nil {
		base = append(base, retry.WithFastFirstRetry(*sc.FastFirstRetry))
	}
	opts = append(base, opts...)

	var (
		s   transient.BackoffStrategy
		err error
	)
	switch sc.Kind {
	case KindFixed:
		interval := p.duration("interval", sc.Interval, transient.DefaultInterval)
		if p.err != nil {
			return nil, p.err
		}
		s, err = retry.NewFixedInterval(retryCount, interval, opts...)

	case KindIncremental:
		initial := p.duration("initial_interval", sc.InitialInterval, transient.DefaultInitialInterval)
		increment := p.duration("increment", sc.Increment, transient.DefaultIncrement)
		if p.err != nil {
			return nil, p.err
		}
		s, err = retry.NewIncremental(retryCount, initial, increment, opts...)

	case KindExponential:
		minBackoff := p.duration("min_backoff", sc.MinBackoff, transient.DefaultMinBackoff)
		maxBackoff := p.duration("max_backoff", sc.MaxBackoff, transient.DefaultMaxBackoff)
		delta := p.duration("delta_backoff", sc.DeltaBackoff, transient.DefaultDeltaBackoff)
		if p.err != nil {
			return nil, p.err
		}
		s, err = retry.NewExponentialBackoff(retryCount, minBackoff, maxBackoff, delta, opts...)

	case KindBackOff:
		initial := p.duration("initial_interval", sc.InitialInterval, backoff.DefaultInitialInterval)
		maxInterval := p.duration("max_interval", sc.MaxInterval, backoff.DefaultMaxInterval)
		if p.err != nil {
			return nil, p.err
		}
		multiplier := backoff.DefaultMultiplier
		if sc.Multiplier != nil {
			multiplier = *sc.Multiplier
		}
		randomization := backoff.DefaultRandomizationFactor
		if sc.RandomizationFactor != nil {
			randomization = *sc.RandomizationFactor
		}
		s, err = retry.NewBackOffStrategy(retryCount,
			retry.ExponentialBackOffFactory(initial, maxInterval, multiplier, randomization), opts...)

	default:
		return nil, fmt.Errorf("%w: strategy %q: unknown kind %q", transient.ErrInvalidConfig, sc.Name, sc.Kind)
	}

	if err != nil {
		return nil, fmt.Errorf("%w: strategy %q: %v", transient.ErrInvalidConfig, sc.Name, err)
	}
	return s, nil
}

// parser collects the first duration parse error.
type parser struct {
	name string
	err  error
}

func (p *parser) duration(field, value string, fallback time.Duration) time.Duration {
	if value == "" || p.err != nil {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		p.err = fmt.Errorf("%w: strategy %q: %s: %v", transient.ErrInvalidConfig, p.name, field, err)
		return fallback
	}
	return d
}
