package tool

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRegistry(t *testing.T) {
	t.Run("indexes descriptors by name", func(t *testing.T) {
		registry, err := NewRegistry(
			&Descriptor{Name: "getWeather", Handler: echoHandler},
			&Descriptor{Name: "getTime", Handler: echoHandler},
		)
		require.NoError(t, err)
		assert.Equal(t, 2, registry.Len())

		d, err := registry.Get("getWeather")
		require.NoError(t, err)
		assert.Equal(t, "getWeather", d.Name)
	})

	t.Run("rejects duplicate names", func(t *testing.T) {
		_, err := NewRegistry(
			&Descriptor{Name: "getWeather", Handler: echoHandler},
			&Descriptor{Name: "getWeather", Handler: echoHandler},
		)
		assert.ErrorIs(t, err, ErrDuplicateTool)
	})

	t.Run("rejects invalid descriptors", func(t *testing.T) {
		_, err := NewRegistry(&Descriptor{Name: "broken"})
		assert.ErrorIs(t, err, ErrInvalidDescriptor)
	})

	t.Run("empty registry", func(t *testing.T) {
		registry, err := NewRegistry()
		require.NoError(t, err)
		assert.Equal(t, 0, registry.Len())
		assert.Empty(t, registry.Specs())

		_, err = registry.Get("anything")
		assert.ErrorIs(t, err, ErrUnknownTool)
	})
}

func TestRegistrySpecs(t *testing.T) {
	registry, err := NewRegistry(
		&Descriptor{Name: "zulu", Handler: echoHandler},
		&Descriptor{Name: "alpha", Handler: echoHandler},
		&Descriptor{Name: "mike", Handler: echoHandler},
	)
	require.NoError(t, err)

	specs := registry.Specs()
	require.Len(t, specs, 3)

	// Stable name order regardless of registration order.
	assert.Equal(t, "alpha", specs[0].Name)
	assert.Equal(t, "mike", specs[1].Name)
	assert.Equal(t, "zulu", specs[2].Name)

	// Returned slice is a copy.
	specs[0].Name = "mutated"
	assert.Equal(t, "alpha", registry.Specs()[0].Name)
}
