package rubric

import "github.com/abhisek/umlgen/internal/llm"

// EvaluationSchema defines the JSON shape of an evaluation reply. Item
// keys are not required individually; unscored items follow the
// AbsentItemPolicy.
var EvaluationSchema = &llm.Schema{
	Name:        "uml-exercise-evaluation",
	Description: "Per-item rubric scores with a justification for each score",
	Definition:  evaluationDefinition(),
}

func evaluationDefinition() map[string]any {
	scoreProps := make(map[string]any)
	reasonProps := make(map[string]any)
	for _, d := range dimensions {
		for _, it := range d.Items {
			scoreProps[it.Code] = map[string]any{
				"type":        "number",
				"minimum":     MinItemScore,
				"maximum":     MaxItemScore,
				"description": it.Description,
			}
			reasonProps[it.Code] = map[string]any{"type": "string"}
		}
	}

	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"items": map[string]any{
				"type":        "object",
				"properties":  scoreProps,
				"description": "Score per item code, an integer from 0 to 2",
			},
			"justifications": map[string]any{
				"type":        "object",
				"properties":  reasonProps,
				"description": "One sentence per item code explaining its score",
			},
		},
		"required": []any{"items", "justifications"},
	}
}
