package exercise

import "github.com/abhisek/umlgen/internal/llm"

// ExerciseSchema defines the JSON shape of a generated exercise. Metadata
// is optional because it is overwritten with the parameter echo.
var ExerciseSchema = &llm.Schema{
	Name:        "uml-exercise",
	Description: "A UML modeling exercise for software engineering students",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"title": map[string]any{
				"type":        "string",
				"minLength":   1,
				"description": "Short title naming the domain of the exercise",
			},
			"learningObjectives": map[string]any{
				"type":        "array",
				"minItems":    1,
				"items":       map[string]any{"type": "string"},
				"description": "What the student practices, one objective per entry",
			},
			"problemDescription": map[string]any{
				"type":        "string",
				"minLength":   1,
				"description": "The domain text the student models as a diagram",
			},
			"metadata": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"difficultyLevel": map[string]any{"type": "string"},
					"length":          map[string]any{"type": "string"},
					"studyGoalId":     map[string]any{"type": "string"},
					"diagramType":     map[string]any{"type": "string"},
				},
			},
		},
		"required": []any{"title", "learningObjectives", "problemDescription"},
	},
}
