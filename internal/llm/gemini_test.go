package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"google.golang.org/genai"
)

func TestGeminiModelMapping(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"gemini-flash", "gemini-2.0-flash"},
		{"gemini-pro", "gemini-2.5-pro"},
		{"gemini-2.5-flash", "gemini-2.5-flash"}, // Pass-through
	}
	for _, tt := range tests {
		got := resolveModel(tt.input, geminiModels)
		if got != tt.expected {
			t.Errorf("resolveModel(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestBuildGeminiSchema(t *testing.T) {
	def := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"name":  map[string]any{"type": "string"},
			"age":   map[string]any{"type": "integer"},
			"grade": map[string]any{"type": "string", "enum": []any{"A", "B", "C"}},
			"scores": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "integer"},
			},
		},
		"required": []any{"name", "age"},
	}

	schema := buildGeminiSchema(def)

	if schema.Type != "OBJECT" {
		t.Fatalf("expected OBJECT type, got %s", schema.Type)
	}
	if len(schema.Properties) != 4 {
		t.Fatalf("expected 4 properties, got %d", len(schema.Properties))
	}
	if schema.Properties["name"].Type != "STRING" {
		t.Fatalf("expected STRING for name, got %s", schema.Properties["name"].Type)
	}
	if schema.Properties["age"].Type != "INTEGER" {
		t.Fatalf("expected INTEGER for age, got %s", schema.Properties["age"].Type)
	}
	if len(schema.Properties["grade"].Enum) != 3 {
		t.Fatalf("expected 3 enum values, got %d", len(schema.Properties["grade"].Enum))
	}
	if schema.Properties["scores"].Type != "ARRAY" {
		t.Fatalf("expected ARRAY for scores, got %s", schema.Properties["scores"].Type)
	}
	if schema.Properties["scores"].Items.Type != "INTEGER" {
		t.Fatalf("expected INTEGER for scores items, got %s", schema.Properties["scores"].Items.Type)
	}
	if len(schema.Required) != 2 {
		t.Fatalf("expected 2 required fields, got %d", len(schema.Required))
	}
}

func TestBuildGeminiSchemaBounds(t *testing.T) {
	def := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"score":      map[string]any{"type": "number", "minimum": 0, "maximum": 2.0},
			"objectives": map[string]any{"type": "array", "minItems": 1, "items": map[string]any{"type": "string"}},
			"free":       map[string]any{"type": "mystery"},
		},
		"required": []string{"score"},
	}

	schema := buildGeminiSchema(def)

	score := schema.Properties["score"]
	if score.Minimum == nil || *score.Minimum != 0 {
		t.Fatalf("expected minimum 0, got %v", score.Minimum)
	}
	if score.Maximum == nil || *score.Maximum != 2 {
		t.Fatalf("expected maximum 2, got %v", score.Maximum)
	}
	if mi := schema.Properties["objectives"].MinItems; mi == nil || *mi != 1 {
		t.Fatalf("expected minItems 1, got %v", mi)
	}
	if schema.Properties["free"].Type != genai.TypeString {
		t.Fatalf("unknown types should fall back to STRING, got %s", schema.Properties["free"].Type)
	}
	if len(schema.Required) != 1 || schema.Required[0] != "score" {
		t.Fatalf("expected required [score], got %v", schema.Required)
	}
}

func TestGeminiStopReasonDefaultsToEnd(t *testing.T) {
	if got := mapGeminiStopReason(&genai.GenerateContentResponse{}); got != "end" {
		t.Fatalf("expected 'end', got %q", got)
	}
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{FinishReason: genai.FinishReasonMaxTokens}},
	}
	if got := mapGeminiStopReason(resp); got != "max_tokens" {
		t.Fatalf("expected 'max_tokens', got %q", got)
	}
}

func TestGeminiErrorMapping(t *testing.T) {
	tests := []struct {
		code int
		want string
	}{
		{401, "auth"},
		{429, "rate_limit"},
		{400, "rejected"},
		{503, "transient"},
	}
	for _, tt := range tests {
		err := mapGeminiError(genai.APIError{Code: tt.code, Message: "boom"})
		if got := ErrorClass(err); got != tt.want {
			t.Errorf("code %d: class = %q, want %q", tt.code, got, tt.want)
		}
	}
}

func TestGeminiRequiresAPIKey(t *testing.T) {
	if _, err := NewGeminiProvider(context.Background(), GeminiConfig{}, "gemini-2.5-flash"); err == nil {
		t.Fatal("expected error without API key")
	}
}

func newTestGeminiProvider(t *testing.T, handler http.HandlerFunc) *GeminiProvider {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	p, err := NewGeminiProvider(context.Background(), GeminiConfig{
		APIKey:  "test-key",
		BaseURL: server.URL,
	}, "gemini-2.5-flash")
	if err != nil {
		t.Fatalf("new gemini provider: %v", err)
	}
	return p
}

func TestGeminiProvider_HappyPath(t *testing.T) {
	var gotPath string
	handler := func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"candidates": []map[string]any{
				{
					"content": map[string]any{
						"role":  "model",
						"parts": []map[string]any{{"text": `{"title":"Library system"}`}},
					},
					"finishReason": "STOP",
				},
			},
			"usageMetadata": map[string]any{
				"promptTokenCount":     10,
				"candidatesTokenCount": 5,
				"totalTokenCount":      15,
			},
		})
	}

	p := newTestGeminiProvider(t, handler)
	resp, err := p.Generate(context.Background(), Request{
		System:   "You are an exercise author.",
		Messages: []Message{{Role: RoleUser, Content: "Generate an exercise."}},
		Schema: &Schema{
			Name:       "uml-exercise",
			Definition: map[string]any{"type": "object"},
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Text != `{"title":"Library system"}` {
		t.Fatalf("unexpected text: %q", resp.Text)
	}
	if resp.Usage.TotalTokens != 15 {
		t.Fatalf("expected 15 total tokens, got %d", resp.Usage.TotalTokens)
	}
	if !strings.Contains(gotPath, "gemini-2.5-flash:generateContent") {
		t.Fatalf("unexpected request path %q", gotPath)
	}
}

func TestGeminiProvider_RateLimit(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{
				"code":    429,
				"message": "Resource has been exhausted",
				"status":  "RESOURCE_EXHAUSTED",
			},
		})
	}

	p := newTestGeminiProvider(t, handler)
	_, err := p.Generate(context.Background(), Request{
		Messages: []Message{{Role: RoleUser, Content: "test"}},
	})
	var rl *ErrRateLimit
	if !errors.As(err, &rl) {
		t.Fatalf("expected ErrRateLimit, got: %T (%v)", err, err)
	}
}
