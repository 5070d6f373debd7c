package schema_test

import (
	"encoding/json"
	"reflect"
	"testing"

	"github.com/obstack/obtools/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type queryInput struct {
	SQL    string `json:"sql" jsonschema:"title=sql,description=The read-only SQL statement to execute."`
	Format string `json:"format,omitempty" jsonschema:"title=format,description=The output format.,default=json"`
}

type nestedInput struct {
	Table   string   `json:"table" jsonschema:"description=Table name."`
	Columns []column `json:"columns,omitempty"`
}

type column struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

func TestNew(t *testing.T) {
	s, err := schema.New(reflect.TypeOf(queryInput{}))
	require.NoError(t, err)
	require.NotNil(t, s.Parameters)

	js, err := json.Marshal(s.Parameters)
	require.NoError(t, err)

	var def map[string]any
	require.NoError(t, json.Unmarshal(js, &def))
	assert.Equal(t, "object", def["type"])

	props := def["properties"].(map[string]any)
	require.Contains(t, props, "sql")
	require.Contains(t, props, "format")
	sqlProp := props["sql"].(map[string]any)
	assert.Equal(t, "string", sqlProp["type"])
	assert.Equal(t, "The read-only SQL statement to execute.", sqlProp["description"])

	required := def["required"].([]any)
	assert.Contains(t, required, "sql")
	assert.NotContains(t, required, "format")

	// cached on repeat use
	s2, err := schema.New(reflect.TypeOf(queryInput{}))
	require.NoError(t, err)
	assert.Same(t, s, s2)
}

func TestNewNested(t *testing.T) {
	s, err := schema.New(reflect.TypeOf(nestedInput{}))
	require.NoError(t, err)

	js := s.String()
	assert.Contains(t, js, `"table"`)
	assert.Contains(t, js, `"columns"`)
	// nested definition refs must be inlined
	assert.NotContains(t, js, "$defs")
}

func TestFromAny(t *testing.T) {
	s, err := schema.FromAny(map[string]any{
		"type": "object",
		"properties": map[string]any{
			"query": map[string]any{"type": "string"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "object", s.Type)
}
