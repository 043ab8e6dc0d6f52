package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepairJSON(t *testing.T) {
	t.Run("valid JSON unchanged", func(t *testing.T) {
		in := `{"name": "Klaus", "age": 42, "tags": ["a, b", "c"]}`
		assert.Equal(t, in, repairJSON(in))
	})

	t.Run("missing opening quote on key", func(t *testing.T) {
		assert.Equal(t, `{"name": "Klaus", "age": 42}`,
			repairJSON(`{name": "Klaus", age": 42}`))
	})

	t.Run("single-quoted strings", func(t *testing.T) {
		assert.Equal(t, `{"name": "Klaus", "city": "Munich"}`,
			repairJSON(`{'name': 'Klaus', 'city': 'Munich'}`))
	})

	t.Run("double quote inside single-quoted string is escaped", func(t *testing.T) {
		assert.Equal(t, `{"quote": "he said \"hi\""}`,
			repairJSON(`{'quote': 'he said "hi"'}`))
	})

	t.Run("trailing comma in object", func(t *testing.T) {
		assert.Equal(t, `{"name": "Klaus"}`,
			repairJSON(`{"name": "Klaus",}`))
	})

	t.Run("trailing comma in array", func(t *testing.T) {
		assert.Equal(t, "{\"tags\": [\"a\", \"b\"\n]}",
			repairJSON("{\"tags\": [\"a\", \"b\",\n]}"))
	})

	t.Run("comma inside string survives", func(t *testing.T) {
		in := `{"text": "one, }"}`
		assert.Equal(t, in, repairJSON(in))
	})

	t.Run("apostrophe inside double-quoted string survives", func(t *testing.T) {
		in := `{"text": "it's fine"}`
		assert.Equal(t, in, repairJSON(in))
	})
}

func TestParseRepairsSloppyJSON(t *testing.T) {
	person := MustObject("Person",
		Field{Name: "name", Type: String()},
		Field{Name: "age", Type: Int()},
	)

	t.Run("trailing comma and single quotes", func(t *testing.T) {
		v, err := person.Parse(`{'name': 'Klaus', 'age': 42,}`)
		require.NoError(t, err)
		fields := v.(map[string]any)
		assert.Equal(t, "Klaus", fields["name"])
		assert.Equal(t, int64(42), fields["age"])
	})

	t.Run("unquoted key", func(t *testing.T) {
		v, err := person.Parse(`{name": "Klaus", "age": 42}`)
		require.NoError(t, err)
		assert.Equal(t, "Klaus", v.(map[string]any)["name"])
	})
}
