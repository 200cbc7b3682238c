package exercise

import (
	"context"
	"fmt"

	"github.com/abhisek/umlgen/internal/extract"
	"github.com/abhisek/umlgen/internal/llm"
)

// Config controls generation calls.
type Config struct {
	// MaxTokens is the token budget for the LLM response.
	MaxTokens int

	// Temperature controls LLM output randomness (0.0-1.0).
	Temperature float64
}

// DefaultConfig returns recommended defaults.
func DefaultConfig() Config {
	return Config{
		MaxTokens:   2048,
		Temperature: 0.7,
	}
}

// Generation is the outcome of one generation call. Exercise is nil when
// the reply could not be extracted; Raw always holds the reply text.
type Generation struct {
	Prompt   string
	Raw      string
	Exercise *GeneratedExercise
	Model    string
	Usage    llm.Usage
}

// Generator produces exercises with a single provider.
type Generator struct {
	provider llm.Provider
	config   Config
}

// New creates a Generator for the given provider.
func New(provider llm.Provider, cfg Config) *Generator {
	return &Generator{provider: provider, config: cfg}
}

// Generate builds the prompt for p, calls the provider and extracts the
// exercise. Provider errors are returned; an unparseable reply is not an
// error.
func (g *Generator) Generate(ctx context.Context, p ParameterSet) (*Generation, error) {
	ctx = llm.WithPurpose(ctx, llm.PurposeGenerate)

	prompt := BuildGenerationPrompt(p)
	req := llm.UserRequest(SystemPrompt, prompt)
	req.Schema = ExerciseSchema
	req.MaxTokens = g.config.MaxTokens
	req.Temperature = g.config.Temperature

	resp, err := g.provider.Generate(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("exercise generation failed: %w", err)
	}

	out := &Generation{
		Prompt: prompt,
		Raw:    resp.Text,
		Model:  resp.Model,
		Usage:  resp.Usage,
	}
	if ex := extract.Extract[GeneratedExercise](resp.Text, ExerciseSchema); ex != nil {
		ex.Metadata = MetadataFor(p)
		out.Exercise = ex
	}
	return out, nil
}
