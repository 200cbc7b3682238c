package rubric

import (
	"context"
	"fmt"

	"github.com/abhisek/umlgen/internal/exercise"
	"github.com/abhisek/umlgen/internal/extract"
	"github.com/abhisek/umlgen/internal/llm"
)

// EvaluationResult is a scored exercise. Items and Justifications come
// from the model; Dimensions and FullScore are computed locally.
type EvaluationResult struct {
	Items          map[string]float64 `json:"items"`
	Justifications map[string]string  `json:"justifications"`
	Dimensions     map[string]float64 `json:"dimensions"`
	FullScore      float64            `json:"fullScore"`
}

// evaluationOutput is the raw LLM response. Any totals the model adds are
// not decoded.
type evaluationOutput struct {
	Items          map[string]float64 `json:"items"`
	Justifications map[string]string  `json:"justifications"`
}

// EvaluatorConfig holds configuration for the evaluator.
type EvaluatorConfig struct {
	MaxTokens int
	Policy    AbsentItemPolicy
}

// DefaultEvaluatorConfig returns sensible defaults.
func DefaultEvaluatorConfig() EvaluatorConfig {
	return EvaluatorConfig{
		MaxTokens: 2048,
		Policy:    ExcludeAbsent,
	}
}

// Evaluation is the outcome of one evaluation call. Result is nil when the
// reply could not be extracted.
type Evaluation struct {
	Prompt string
	Raw    string
	Result *EvaluationResult
}

// Evaluator scores exercises with a single provider.
type Evaluator struct {
	provider llm.Provider
	cfg      EvaluatorConfig
}

// NewEvaluator creates an Evaluator.
func NewEvaluator(provider llm.Provider, cfg EvaluatorConfig) *Evaluator {
	return &Evaluator{provider: provider, cfg: cfg}
}

// Evaluate asks the model for per-item scores and aggregates them. The
// call runs at temperature 0.
func (e *Evaluator) Evaluate(ctx context.Context, ex exercise.GeneratedExercise, p exercise.ParameterSet) (*Evaluation, error) {
	ctx = llm.WithPurpose(ctx, llm.PurposeEvaluate)

	prompt := BuildEvaluationPrompt(ex, p)
	req := llm.UserRequest(SystemPrompt, prompt)
	req.Schema = EvaluationSchema
	req.MaxTokens = e.cfg.MaxTokens

	resp, err := e.provider.Generate(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("exercise evaluation failed: %w", err)
	}

	out := &Evaluation{Prompt: prompt, Raw: resp.Text}
	raw := extract.Extract[evaluationOutput](resp.Text, EvaluationSchema)
	if raw == nil {
		return out, nil
	}
	out.Result = newResult(raw, e.cfg.Policy)
	return out, nil
}

// newResult keeps only catalog items and computes the aggregate scores.
func newResult(raw *evaluationOutput, policy AbsentItemPolicy) *EvaluationResult {
	res := &EvaluationResult{
		Items:          make(map[string]float64),
		Justifications: make(map[string]string),
	}
	for code, score := range raw.Items {
		if DimensionOf(code) == "" {
			continue
		}
		res.Items[code] = score
	}
	for code, why := range raw.Justifications {
		if DimensionOf(code) == "" {
			continue
		}
		res.Justifications[code] = why
	}

	scores := AggregateWith(res.Items, policy)
	res.Dimensions = scores.Dimensions
	res.FullScore = scores.FullScore
	return res
}
