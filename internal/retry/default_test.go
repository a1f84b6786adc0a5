package retry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vvka-141/transient/pkg/transient"
)

func TestRegistryHolder(t *testing.T) {
	var h RegistryHolder

	_, err := h.Get()
	assert.ErrorIs(t, err, transient.ErrRegistryNotSet)
	assert.ErrorIs(t, err, transient.ErrInvalidOperation)

	first := BuiltinRegistry()
	require.NoError(t, h.Set(first, true))
	got, err := h.Get()
	require.NoError(t, err)
	assert.Same(t, first, got)

	second := BuiltinRegistry()
	assert.ErrorIs(t, h.Set(second, true), transient.ErrRegistryAlreadySet)
	got, _ = h.Get()
	assert.Same(t, first, got, "guarded Set must not replace the registry")

	require.NoError(t, h.Set(second, false))
	got, _ = h.Get()
	assert.Same(t, second, got)

	assert.ErrorIs(t, h.Set(nil, false), transient.ErrInvalidArgument)

	h.Reset()
	_, err = h.Get()
	assert.ErrorIs(t, err, transient.ErrRegistryNotSet)
}

func TestDefaultRegistry_Policy(t *testing.T) {
	ResetDefaultRegistry()
	t.Cleanup(ResetDefaultRegistry)

	_, err := Policy(alwaysTransient, "")
	assert.ErrorIs(t, err, transient.ErrRegistryNotSet)
	_, err = PolicyForTechnology(alwaysTransient, transient.TechnologyCache)
	assert.ErrorIs(t, err, transient.ErrRegistryNotSet)

	r, strategies := testRegistry(t)
	require.NoError(t, SetDefaultRegistry(r, true))

	got, err := DefaultRegistry()
	require.NoError(t, err)
	assert.Same(t, r, got)

	e, err := Policy(alwaysTransient, "")
	require.NoError(t, err)
	assert.Same(t, strategies["default"], e.Strategy())

	e, err = PolicyForTechnology(alwaysTransient, transient.TechnologyDatabaseConnection)
	require.NoError(t, err)
	assert.Same(t, strategies["db"], e.Strategy())
}
