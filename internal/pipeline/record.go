package pipeline

import (
	"encoding/json"
	"fmt"

	"github.com/abhisek/umlgen/internal/store"
)

// Record converts r into a storable generation record. ID and CreatedAt
// are left for the repository to assign.
func (r *Result) Record() (*store.GenerationRecord, error) {
	rec := &store.GenerationRecord{
		Model:        r.Params.Model,
		ExerciseType: r.Params.ExerciseType,
		Difficulty:   r.Params.Difficulty,
		StudyGoal:    r.Params.StudyGoal,
		Length:       r.Params.Length,
		Evaluate:     r.Evaluate,
		Prompt:       r.Prompt,
		Response:     r.Raw,
		Parsed:       r.Parsed(),
	}
	if r.Exercise != nil {
		b, err := json.Marshal(r.Exercise)
		if err != nil {
			return nil, fmt.Errorf("encode exercise: %w", err)
		}
		rec.Exercise = b
	}
	if r.Evaluation != nil {
		b, err := json.Marshal(r.Evaluation)
		if err != nil {
			return nil, fmt.Errorf("encode evaluation: %w", err)
		}
		rec.Evaluation = b
	}
	return rec, nil
}
