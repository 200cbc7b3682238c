// Package extract turns free-form model text into validated records.
// Failure is a normal outcome here: every function reports it as a nil
// result, never as an error or a panic.
package extract

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/abhisek/umlgen/internal/llm"
)

// schemaCache caches compiled JSON schemas by name.
var schemaCache sync.Map // map[string]*jsonschema.Schema

// StripFences removes surrounding whitespace and a Markdown code fence,
// optionally language-tagged, from raw. Text without fences is only
// trimmed, so StripFences is idempotent.
func StripFences(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}

	// Drop the opening fence line, including any language tag.
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	} else {
		s = strings.TrimPrefix(s, "```")
	}

	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// Extract parses raw into a T after stripping fences and, when schema is
// non-nil, validating the document against it. It returns nil when the
// text is not JSON, fails validation, or does not decode into T.
func Extract[T any](raw string, schema *llm.Schema) *T {
	doc, err := Validate(raw, schema)
	if err != nil {
		return nil
	}

	var out T
	if err := json.Unmarshal(doc, &out); err != nil {
		return nil
	}
	return &out
}

// Validate strips fences from raw and checks it against schema. It returns
// the JSON document on success so callers can inspect why extraction failed.
func Validate(raw string, schema *llm.Schema) (json.RawMessage, error) {
	text := StripFences(raw)
	if text == "" {
		return nil, fmt.Errorf("empty response")
	}

	var parsed any
	if err := json.Unmarshal([]byte(text), &parsed); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	if _, ok := parsed.(map[string]any); !ok {
		return nil, fmt.Errorf("expected a JSON object, got %T", parsed)
	}

	if schema != nil {
		compiled, err := compiledSchema(schema)
		if err != nil {
			return nil, fmt.Errorf("compile schema %q: %w", schema.Name, err)
		}
		if err := compiled.Validate(parsed); err != nil {
			return nil, fmt.Errorf("schema validation failed: %w", err)
		}
	}

	return json.RawMessage(text), nil
}

// compiledSchema returns a cached compiled schema or compiles and caches it.
func compiledSchema(schema *llm.Schema) (*jsonschema.Schema, error) {
	if cached, ok := schemaCache.Load(schema.Name); ok {
		return cached.(*jsonschema.Schema), nil
	}

	// The jsonschema library expects a parsed JSON value (any), not raw bytes.
	// Marshal then unmarshal to get a clean any representation.
	defBytes, err := json.Marshal(schema.Definition)
	if err != nil {
		return nil, fmt.Errorf("marshal schema definition: %w", err)
	}
	var defParsed any
	if err := json.Unmarshal(defBytes, &defParsed); err != nil {
		return nil, fmt.Errorf("parse schema definition: %w", err)
	}

	c := jsonschema.NewCompiler()
	schemaURL := fmt.Sprintf("schema://%s.json", schema.Name)
	if err := c.AddResource(schemaURL, defParsed); err != nil {
		return nil, fmt.Errorf("add resource: %w", err)
	}

	compiled, err := c.Compile(schemaURL)
	if err != nil {
		return nil, fmt.Errorf("compile: %w", err)
	}

	schemaCache.Store(schema.Name, compiled)
	return compiled, nil
}
