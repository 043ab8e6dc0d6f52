package tool

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/servitor/schema"
)

func echoHandler(ctx context.Context, args map[string]any) (string, error) {
	return "ok", nil
}

func TestDescriptorValidate(t *testing.T) {
	t.Run("valid descriptor", func(t *testing.T) {
		d := &Descriptor{Name: "getWeather", Handler: echoHandler}
		require.NoError(t, d.Validate())
	})

	t.Run("missing name", func(t *testing.T) {
		d := &Descriptor{Handler: echoHandler}
		assert.ErrorIs(t, d.Validate(), ErrInvalidDescriptor)
	})

	t.Run("missing handler", func(t *testing.T) {
		d := &Descriptor{Name: "getWeather"}
		assert.ErrorIs(t, d.Validate(), ErrInvalidDescriptor)
	})

	t.Run("untyped parameter", func(t *testing.T) {
		d := &Descriptor{
			Name:       "getWeather",
			Handler:    echoHandler,
			Parameters: []Parameter{{Name: "city"}},
		}
		assert.ErrorIs(t, d.Validate(), ErrInvalidDescriptor)
	})
}

func TestDescriptorSpec(t *testing.T) {
	unit, err := schema.Enum(
		schema.Constant{Name: "CELSIUS"},
		schema.Constant{Name: "FAHRENHEIT"},
	)
	require.NoError(t, err)

	d := &Descriptor{
		Name:        "getWeather",
		Description: "Returns the current weather for a city",
		Parameters: []Parameter{
			{Name: "city", Type: schema.String(), Description: "City name", Required: true},
			{Name: "unit", Type: unit},
			{Name: "days", Type: schema.Int()},
		},
		Handler: echoHandler,
	}

	spec := d.Spec()
	assert.Equal(t, "getWeather", spec.Name)
	assert.Equal(t, "Returns the current weather for a city", spec.Description)
	assert.Equal(t, "object", spec.Parameters["type"])
	assert.Equal(t, []string{"city"}, spec.Parameters["required"])

	properties, ok := spec.Parameters["properties"].(map[string]any)
	require.True(t, ok)

	city, ok := properties["city"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "string", city["type"])
	assert.Equal(t, "City name", city["description"])

	unitProp, ok := properties["unit"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, []string{"CELSIUS", "FAHRENHEIT"}, unitProp["enum"])

	days, ok := properties["days"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "integer", days["type"])
}

func TestJSONSchemaNesting(t *testing.T) {
	address, err := schema.Object("Address",
		schema.Field{Name: "street", Type: schema.String()},
		schema.Field{Name: "number", Type: schema.Int()},
	)
	require.NoError(t, err)

	fragment := jsonSchema(schema.List(address))
	assert.Equal(t, "array", fragment["type"])

	items, ok := fragment["items"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "object", items["type"])

	properties, ok := items["properties"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, properties, "street")
	assert.Contains(t, properties, "number")
}

func TestCoerceArgs(t *testing.T) {
	d := &Descriptor{
		Name: "getWeather",
		Parameters: []Parameter{
			{Name: "city", Type: schema.String(), Required: true},
			{Name: "days", Type: schema.Int()},
		},
		Handler: echoHandler,
	}

	t.Run("coerces declared types", func(t *testing.T) {
		args, err := d.coerceArgs(`{"city": "Munich", "days": 3}`)
		require.NoError(t, err)
		assert.Equal(t, "Munich", args["city"])
		assert.Equal(t, int64(3), args["days"])
	})

	t.Run("optional argument may be absent", func(t *testing.T) {
		args, err := d.coerceArgs(`{"city": "Munich"}`)
		require.NoError(t, err)
		assert.NotContains(t, args, "days")
	})

	t.Run("missing required argument", func(t *testing.T) {
		_, err := d.coerceArgs(`{"days": 3}`)
		assert.ErrorIs(t, err, ErrBadArguments)
	})

	t.Run("unknown arguments ignored", func(t *testing.T) {
		args, err := d.coerceArgs(`{"city": "Munich", "zip": "80331"}`)
		require.NoError(t, err)
		assert.NotContains(t, args, "zip")
	})

	t.Run("malformed payload", func(t *testing.T) {
		_, err := d.coerceArgs(`{"city": `)
		assert.ErrorIs(t, err, ErrBadArguments)
	})

	t.Run("type mismatch", func(t *testing.T) {
		_, err := d.coerceArgs(`{"city": "Munich", "days": "three"}`)
		assert.ErrorIs(t, err, ErrBadArguments)
	})

	t.Run("empty payload with no required parameters", func(t *testing.T) {
		optional := &Descriptor{
			Name:       "ping",
			Parameters: []Parameter{{Name: "note", Type: schema.String()}},
			Handler:    echoHandler,
		}
		args, err := optional.coerceArgs("")
		require.NoError(t, err)
		assert.Empty(t, args)
	})
}
