package retry

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/vvka-141/transient/pkg/transient"
)

// RegistryHolder is an explicitly initialized slot for a Registry.
// Set is guarded against accidental replacement; Get is lock-free.
type RegistryHolder struct {
	mu       sync.Mutex
	registry atomic.Pointer[Registry]
}

// Set publishes registry. When failIfAlreadySet is true and a registry was
// already published, it returns transient.ErrRegistryAlreadySet.
func (h *RegistryHolder) Set(registry *Registry, failIfAlreadySet bool) error {
	if registry == nil {
		return fmt.Errorf("%w: registry cannot be nil", transient.ErrInvalidArgument)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if failIfAlreadySet && h.registry.Load() != nil {
		return transient.ErrRegistryAlreadySet
	}
	h.registry.Store(registry)
	return nil
}

// Get returns the published registry or transient.ErrRegistryNotSet.
func (h *RegistryHolder) Get() (*Registry, error) {
	r := h.registry.Load()
	if r == nil {
		return nil, transient.ErrRegistryNotSet
	}
	return r, nil
}

// Reset clears the holder. Intended for test teardown.
func (h *RegistryHolder) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.registry.Store(nil)
}

var defaultHolder RegistryHolder

// SetDefaultRegistry publishes the process-wide default registry.
func SetDefaultRegistry(registry *Registry, failIfAlreadySet bool) error {
	return defaultHolder.Set(registry, failIfAlreadySet)
}

// DefaultRegistry returns the process-wide default registry.
func DefaultRegistry() (*Registry, error) {
	return defaultHolder.Get()
}

// ResetDefaultRegistry clears the process-wide default registry.
func ResetDefaultRegistry() {
	defaultHolder.Reset()
}

// Policy builds an executor from the default registry using the named strategy
// ("" for the registry default).
func Policy(classifier transient.ErrorClassifier, name string) (*Executor, error) {
	r, err := DefaultRegistry()
	if err != nil {
		return nil, err
	}
	return r.BuildPolicy(classifier, name)
}

// PolicyForTechnology builds an executor from the default registry using the
// strategy preferred for a technology key.
func PolicyForTechnology(classifier transient.ErrorClassifier, key string) (*Executor, error) {
	r, err := DefaultRegistry()
	if err != nil {
		return nil, err
	}
	return r.BuildPolicyForTechnology(classifier, key)
}
