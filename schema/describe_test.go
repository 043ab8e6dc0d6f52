package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func weatherEnum(t *testing.T) *Type {
	t.Helper()
	enum, err := Enum(
		Constant{Name: "SUNNY", Description: "A clear day with bright sunlight and few or no clouds"},
		Constant{Name: "CLOUDY", Description: "The sky is covered with clouds with no rain"},
		Constant{Name: "RAINY", Description: "Precipitation in the form of rain, with cloudy skies and wet conditions"},
		Constant{Name: "SNOWY", Description: "Snowfall occurs, covering the ground in white"},
	)
	require.NoError(t, err)
	return enum
}

func addressObject(t *testing.T) *Type {
	t.Helper()
	obj, err := Object("Address",
		Field{Name: "streetNumber", Type: Int()},
		Field{Name: "street", Type: String()},
		Field{Name: "city", Type: String()},
	)
	require.NoError(t, err)
	return obj
}

func TestInstructionString(t *testing.T) {
	assert.Equal(t, "", String().Instruction())
}

func TestInstructionPrimitives(t *testing.T) {
	assert.Equal(t, "You must answer strictly in the following format: integer", Int().Instruction())
	assert.Equal(t, "You must answer strictly in the following format: floating point number", Float().Instruction())
	assert.Equal(t, "You must answer strictly in the following format: true or false", Bool().Instruction())
}

func TestInstructionTemporal(t *testing.T) {
	assert.Equal(t, "You must answer strictly in the following format: 2006-01-02", Date().Instruction())
	assert.Equal(t, "You must answer strictly in the following format: 15:04:05", Time().Instruction())
	assert.Equal(t, "You must answer strictly in the following format: 2006-01-02T15:04:05", DateTime().Instruction())
}

func TestInstructionEnum(t *testing.T) {
	t.Run("without descriptions", func(t *testing.T) {
		enum, err := Enum(
			Constant{Name: "POSITIVE"},
			Constant{Name: "NEUTRAL"},
			Constant{Name: "NEGATIVE"},
		)
		require.NoError(t, err)

		assert.Equal(t,
			"You must answer strictly with one of these enums:\n"+
				"POSITIVE\n"+
				"NEUTRAL\n"+
				"NEGATIVE",
			enum.Instruction())
	})

	t.Run("with descriptions in declaration order", func(t *testing.T) {
		got := weatherEnum(t).Instruction()
		assert.Equal(t,
			"You must answer strictly with one of these enums:\n"+
				"SUNNY - A clear day with bright sunlight and few or no clouds\n"+
				"CLOUDY - The sky is covered with clouds with no rain\n"+
				"RAINY - Precipitation in the form of rain, with cloudy skies and wet conditions\n"+
				"SNOWY - Snowfall occurs, covering the ground in white",
			got)
	})

	t.Run("deterministic across calls", func(t *testing.T) {
		enum := weatherEnum(t)
		assert.Equal(t, enum.Instruction(), enum.Instruction())
	})
}

func TestInstructionObject(t *testing.T) {
	t.Run("fields in declaration order", func(t *testing.T) {
		assert.Equal(t,
			"You must answer strictly in the following JSON format: {\n"+
				`"streetNumber": (type: integer),`+"\n"+
				`"street": (type: string),`+"\n"+
				`"city": (type: string)`+"\n"+
				"}",
			addressObject(t).Instruction())
	})

	t.Run("field descriptions and nested objects", func(t *testing.T) {
		person, err := Object("Person",
			Field{Name: "firstName", Type: String()},
			Field{Name: "birthDate", Type: Date()},
			Field{Name: "steps", Type: List(String()), Description: "each step should be described in 4 words"},
			Field{Name: "address", Type: addressObject(t)},
		)
		require.NoError(t, err)

		assert.Equal(t,
			"You must answer strictly in the following JSON format: {\n"+
				`"firstName": (type: string),`+"\n"+
				`"birthDate": (type: date string (2023-12-31)),`+"\n"+
				`"steps": (each step should be described in 4 words; type: array of string),`+"\n"+
				`"address": (type: Address: {`+"\n"+
				`"streetNumber": (type: integer),`+"\n"+
				`"street": (type: string),`+"\n"+
				`"city": (type: string)`+"\n"+
				"})\n"+
				"}",
			person.Instruction())
	})
}

func TestInstructionList(t *testing.T) {
	assert.Equal(t, "You must put every item on a separate line.", List(String()).Instruction())

	objList := List(addressObject(t))
	assert.Equal(t,
		"You must answer strictly in the following JSON format: [{\n"+
			`"streetNumber": (type: integer),`+"\n"+
			`"street": (type: string),`+"\n"+
			`"city": (type: string)`+"\n"+
			"}]",
		objList.Instruction())
}

func TestConstruction(t *testing.T) {
	t.Run("enum requires constants", func(t *testing.T) {
		_, err := Enum()
		assert.ErrorIs(t, err, ErrNoConstants)
	})

	t.Run("object requires fields", func(t *testing.T) {
		_, err := Object("Empty")
		assert.ErrorIs(t, err, ErrNoFields)
	})

	t.Run("duplicate field names rejected", func(t *testing.T) {
		_, err := Object("Dup",
			Field{Name: "x", Type: String()},
			Field{Name: "x", Type: Int()},
		)
		assert.ErrorIs(t, err, ErrDuplicateField)
	})
}
