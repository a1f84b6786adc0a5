package retry

import (
	"fmt"
	"maps"
	"slices"

	"github.com/vvka-141/transient/pkg/transient"
)

// Registry holds named strategies, a default name and technology defaults.
// It is an immutable snapshot: replacing strategies means building a new Registry.
type Registry struct {
	strategies   map[string]transient.BackoffStrategy
	defaultName  string
	technologies map[string]string
}

// NewRegistry creates a registry from named strategies.
//
// Strategy names must be non-empty and unique. defaultName and the technology
// mapping are not checked here; they are resolved lazily.
func NewRegistry(strategies []transient.BackoffStrategy, defaultName string, technologies map[string]string) (*Registry, error) {
	r := &Registry{
		strategies:   make(map[string]transient.BackoffStrategy, len(strategies)),
		defaultName:  defaultName,
		technologies: maps.Clone(technologies),
	}
	if r.technologies == nil {
		r.technologies = map[string]string{}
	}

	for i, s := range strategies {
		if s == nil {
			return nil, fmt.Errorf("%w: strategy %d is nil", transient.ErrInvalidArgument, i)
		}
		name := s.Name()
		if name == "" {
			return nil, fmt.Errorf("%w: strategy %d has no name", transient.ErrInvalidArgument, i)
		}
		if _, exists := r.strategies[name]; exists {
			return nil, fmt.Errorf("%w: duplicate strategy name %q", transient.ErrInvalidArgument, name)
		}
		r.strategies[name] = s
	}
	return r, nil
}

// Resolve returns the strategy registered under name.
// An empty name selects the default strategy.
func (r *Registry) Resolve(name string) (transient.BackoffStrategy, error) {
	if name == "" {
		return r.resolveDefault()
	}
	s, ok := r.strategies[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", transient.ErrStrategyNotFound, name)
	}
	return s, nil
}

func (r *Registry) resolveDefault() (transient.BackoffStrategy, error) {
	if r.defaultName == "" {
		return nil, transient.ErrNoDefaultStrategy
	}
	s, ok := r.strategies[r.defaultName]
	if !ok {
		return nil, fmt.Errorf("%w: %q is not registered", transient.ErrNoDefaultStrategy, r.defaultName)
	}
	return s, nil
}

// ResolveForTechnology returns the strategy preferred for a technology key,
// falling back to the default strategy when the key has no mapping.
func (r *Registry) ResolveForTechnology(key string) (transient.BackoffStrategy, error) {
	name, ok := r.technologies[key]
	if !ok {
		return r.resolveDefault()
	}
	return r.Resolve(name)
}

// BuildPolicy creates an executor pairing classifier with the named strategy.
func (r *Registry) BuildPolicy(classifier transient.ErrorClassifier, name string) (*Executor, error) {
	s, err := r.Resolve(name)
	if err != nil {
		return nil, err
	}
	return NewExecutor(classifier, s)
}

// BuildPolicyForTechnology creates an executor pairing classifier with the
// strategy preferred for a technology key.
func (r *Registry) BuildPolicyForTechnology(classifier transient.ErrorClassifier, key string) (*Executor, error) {
	s, err := r.ResolveForTechnology(key)
	if err != nil {
		return nil, err
	}
	return NewExecutor(classifier, s)
}

// DefaultName returns the name of the default strategy.
func (r *Registry) DefaultName() string {
	return r.defaultName
}

// Names returns the registered strategy names in sorted order.
func (r *Registry) Names() []string {
	return slices.Sorted(maps.Keys(r.strategies))
}

// Technologies returns a copy of the technology to strategy-name mapping.
func (r *Registry) Technologies() map[string]string {
	return maps.Clone(r.technologies)
}

// BuiltinRegistry returns a registry with the default exponential, fixed and
// incremental strategies, the exponential one being the default.
func BuiltinRegistry() *Registry {
	r, err := NewRegistry([]transient.BackoffStrategy{
		DefaultExponentialBackoff(WithName(transient.DefaultStrategyName)),
		DefaultFixedInterval(WithName(transient.FixedStrategyName)),
		DefaultIncremental(WithName(transient.IncrementalStrategyName)),
	}, transient.DefaultStrategyName, nil)
	if err != nil {
		panic(err)
	}
	return r
}
