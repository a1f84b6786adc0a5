package retry

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vvka-141/transient/pkg/transient"
)

func testRegistry(t *testing.T) (*Registry, map[string]transient.BackoffStrategy) {
	t.Helper()
	strategies := map[string]transient.BackoffStrategy{
		"default": DefaultExponentialBackoff(WithName("default")),
		"db":      fixed(t, 3, 2*time.Second, WithName("db")),
		"queue":   DefaultIncremental(WithName("queue")),
	}
	r, err := NewRegistry(
		[]transient.BackoffStrategy{strategies["default"], strategies["db"], strategies["queue"]},
		"default",
		map[string]string{
			transient.TechnologyDatabaseConnection: "db",
			transient.TechnologyMessagingRequest:   "queue",
			transient.TechnologyCache:              "missing",
		},
	)
	require.NoError(t, err)
	return r, strategies
}

func TestRegistry_Resolve(t *testing.T) {
	r, strategies := testRegistry(t)

	s, err := r.Resolve("db")
	require.NoError(t, err)
	assert.Same(t, strategies["db"], s)

	s, err = r.Resolve("")
	require.NoError(t, err)
	assert.Same(t, strategies["default"], s)

	_, err = r.Resolve("nope")
	assert.ErrorIs(t, err, transient.ErrStrategyNotFound)
	assert.ErrorIs(t, err, transient.ErrInvalidArgument)
}

func TestRegistry_ResolveForTechnology(t *testing.T) {
	r, strategies := testRegistry(t)

	s, err := r.ResolveForTechnology(transient.TechnologyDatabaseConnection)
	require.NoError(t, err)
	assert.Same(t, strategies["db"], s)

	s, err = r.ResolveForTechnology(transient.TechnologyMessagingRequest)
	require.NoError(t, err)
	assert.Same(t, strategies["queue"], s)

	// Unmapped key falls back to the default strategy.
	s, err = r.ResolveForTechnology(transient.TechnologyDatabaseCommand)
	require.NoError(t, err)
	assert.Same(t, strategies["default"], s)

	// Mapped to a name that is not registered.
	_, err = r.ResolveForTechnology(transient.TechnologyCache)
	assert.ErrorIs(t, err, transient.ErrStrategyNotFound)
}

func TestRegistry_NoDefault(t *testing.T) {
	tests := []struct {
		name        string
		defaultName string
	}{
		{"empty", ""},
		{"unregistered", "ghost"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := NewRegistry([]transient.BackoffStrategy{DefaultFixedInterval(WithName("a"))}, tt.defaultName, nil)
			require.NoError(t, err)

			_, err = r.Resolve("")
			assert.ErrorIs(t, err, transient.ErrNoDefaultStrategy)
			assert.ErrorIs(t, err, transient.ErrInvalidOperation)

			_, err = r.ResolveForTechnology("anything")
			assert.ErrorIs(t, err, transient.ErrNoDefaultStrategy)

			s, err := r.Resolve("a")
			require.NoError(t, err)
			assert.Equal(t, "a", s.Name())
		})
	}
}

func TestNewRegistry_Invalid(t *testing.T) {
	tests := []struct {
		name       string
		strategies []transient.BackoffStrategy
	}{
		{"nil_strategy", []transient.BackoffStrategy{nil}},
		{"unnamed", []transient.BackoffStrategy{DefaultFixedInterval()}},
		{"duplicate", []transient.BackoffStrategy{
			DefaultFixedInterval(WithName("x")),
			DefaultIncremental(WithName("x")),
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRegistry(tt.strategies, "", nil)
			assert.ErrorIs(t, err, transient.ErrInvalidArgument)
		})
	}
}

func TestRegistry_BuildPolicy(t *testing.T) {
	r, strategies := testRegistry(t)

	e, err := r.BuildPolicy(alwaysTransient, "db")
	require.NoError(t, err)
	assert.Same(t, strategies["db"], e.Strategy())

	e, err = r.BuildPolicyForTechnology(alwaysTransient, transient.TechnologyMessagingRequest)
	require.NoError(t, err)
	assert.Same(t, strategies["queue"], e.Strategy())

	_, err = r.BuildPolicy(nil, "db")
	assert.ErrorIs(t, err, transient.ErrInvalidArgument)

	_, err = r.BuildPolicy(alwaysTransient, "nope")
	assert.True(t, errors.Is(err, transient.ErrStrategyNotFound))
}

func TestRegistry_Snapshot(t *testing.T) {
	technologies := map[string]string{transient.TechnologyCache: "default"}
	r, err := NewRegistry([]transient.BackoffStrategy{DefaultFixedInterval(WithName("default"))}, "default", technologies)
	require.NoError(t, err)

	technologies[transient.TechnologyCache] = "changed"
	assert.Equal(t, "default", r.Technologies()[transient.TechnologyCache])

	copied := r.Technologies()
	copied["new"] = "x"
	assert.NotContains(t, r.Technologies(), "new")
	assert.Equal(t, "default", r.DefaultName())
}

func TestBuiltinRegistry(t *testing.T) {
	r := BuiltinRegistry()

	assert.Equal(t, []string{"default", "fixed", "incremental"}, r.Names())
	assert.Equal(t, transient.DefaultStrategyName, r.DefaultName())

	s, err := r.Resolve("")
	require.NoError(t, err)
	exp, ok := s.(*ExponentialBackoff)
	require.True(t, ok, "default strategy should be exponential, got %T", s)
	assert.Equal(t, time.Second, exp.MinBackoff())
}
