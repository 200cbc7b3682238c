package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/umlgen/internal/llm"
)

type person struct {
	Name  string `json:"name"`
	Age   int    `json:"age"`
	Grade string `json:"grade,omitempty"`
}

func testSchema() *llm.Schema {
	return &llm.Schema{
		Name:        "extract-test-person",
		Description: "A test object",
		Definition: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"name":  map[string]any{"type": "string"},
				"age":   map[string]any{"type": "integer", "minimum": 0},
				"grade": map[string]any{"type": "string", "enum": []any{"A", "B", "C"}},
			},
			"required": []any{"name", "age"},
		},
	}
}

func TestStripFences(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", `{"a":1}`, `{"a":1}`},
		{"json fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"bare fence", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"surrounding whitespace", "  \n```json\n{\"a\":1}\n```\n\n", `{"a":1}`},
		{"multiline body", "```json\n{\n  \"a\": 1,\n  \"b\": 2\n}\n```", "{\n  \"a\": 1,\n  \"b\": 2\n}"},
		{"empty", "", ""},
		{"fences only", "```\n```", ""},
		{"no closing fence", "```json\n{\"a\":1}", `{"a":1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StripFences(tt.in))
		})
	}
}

func TestStripFences_Idempotent(t *testing.T) {
	in := "```json\n{\"a\":1}\n```"
	once := StripFences(in)
	assert.Equal(t, once, StripFences(once))
}

func TestExtract_CleanJSON(t *testing.T) {
	got := Extract[person](`{"name":"Alice","age":10,"grade":"A"}`, testSchema())
	require.NotNil(t, got)
	assert.Equal(t, person{Name: "Alice", Age: 10, Grade: "A"}, *got)
}

func TestExtract_FencedEqualsClean(t *testing.T) {
	clean := `{"name":"Bob","age":8}`
	a := Extract[person](clean, testSchema())
	b := Extract[person]("```json\n"+clean+"\n```", testSchema())
	require.NotNil(t, a)
	require.NotNil(t, b)
	assert.Equal(t, *a, *b)
}

func TestExtract_Refusal(t *testing.T) {
	assert.Nil(t, Extract[person]("I cannot help with that.", testSchema()))
}

func TestExtract_SchemaMismatch(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"missing required", `{"name":"Charlie"}`},
		{"wrong type", `{"name":"Dave","age":"ten"}`},
		{"enum violation", `{"name":"Eve","age":9,"grade":"Z"}`},
		{"negative", `{"name":"Frank","age":-1}`},
		{"array", `[{"name":"Gina","age":3}]`},
		{"empty", "   "},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Nil(t, Extract[person](tt.raw, testSchema()))
		})
	}
}

func TestExtract_NilSchemaSkipsValidation(t *testing.T) {
	got := Extract[person](`{"name":"Hal"}`, nil)
	require.NotNil(t, got)
	assert.Equal(t, "Hal", got.Name)
}

func TestValidate_ReturnsDocument(t *testing.T) {
	doc, err := Validate("```json\n{\"name\":\"Ivy\",\"age\":1}\n```", testSchema())
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"Ivy","age":1}`, string(doc))

	_, err = Validate(`{"name":"Ivy"}`, testSchema())
	assert.ErrorContains(t, err, "schema validation failed")
}

func TestCompiledSchema_Cached(t *testing.T) {
	s := testSchema()
	a, err := compiledSchema(s)
	require.NoError(t, err)
	b, err := compiledSchema(s)
	require.NoError(t, err)
	assert.Same(t, a, b)
}
