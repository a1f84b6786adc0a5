package classify

import (
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/vvka-141/transient/pkg/transient"
)

// Always treats every non-nil error as transient.
var Always = transient.ClassifierFunc(func(err error) bool {
	return err != nil
})

// Never treats every error as permanent.
var Never = transient.ClassifierFunc(func(error) bool {
	return false
})

// Any reports an error as transient when at least one classifier does.
func Any(classifiers ...transient.ErrorClassifier) transient.ErrorClassifier {
	return transient.ClassifierFunc(func(err error) bool {
		for _, c := range classifiers {
			if c.IsTransient(err) {
				return true
			}
		}
		return false
	})
}

// Backend names accepted by Lookup.
const (
	BackendPostgres = "postgres"
	BackendNetwork  = "network"
	BackendNATS     = "nats"
	BackendAlways   = "always"
	BackendNever    = "never"
)

var (
	backendsMu sync.RWMutex
	backends   = map[string]func() transient.ErrorClassifier{
		BackendPostgres: func() transient.ErrorClassifier { return NewPostgres() },
		BackendNetwork:  func() transient.ErrorClassifier { return NewNetwork() },
		BackendNATS:     func() transient.ErrorClassifier { return NewNATS() },
		BackendAlways:   func() transient.ErrorClassifier { return Always },
		BackendNever:    func() transient.ErrorClassifier { return Never },
	}
)

// Register adds a named classifier constructor so it can be selected with Lookup.
// Registering an existing name replaces it.
func Register(name string, factory func() transient.ErrorClassifier) {
	backendsMu.Lock()
	defer backendsMu.Unlock()
	backends[strings.ToLower(name)] = factory
}

// Lookup returns a new classifier for a backend name.
func Lookup(name string) (transient.ErrorClassifier, error) {
	backendsMu.RLock()
	factory, ok := backends[strings.ToLower(name)]
	backendsMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: unknown classifier backend %q (available: %s)",
			transient.ErrInvalidArgument, name, strings.Join(Backends(), ", "))
	}
	return factory(), nil
}

// Backends returns the registered backend names in sorted order.
func Backends() []string {
	backendsMu.RLock()
	defer backendsMu.RUnlock()
	names := make([]string, 0, len(backends))
	for name := range backends {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
