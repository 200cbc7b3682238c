// Package exercise turns a ParameterSet into a UML modeling exercise via an
// LLM call.
package exercise

// ParameterSet is the user's choice of model and exercise shape. JSON keys
// follow the form fields of the web client.
type ParameterSet struct {
	// Model is a catalog model identifier, e.g. "gemini-2.5-flash".
	Model string `json:"param_model" validate:"required"`

	// ExerciseType is the UML diagram kind. Only "Class diagram" today.
	ExerciseType string `json:"param_ex_type" validate:"required,exercisetype"`

	Difficulty string `json:"param_dif_level" validate:"required,oneof=Easy Medium Hard"`

	// StudyGoal is a misconception code from the study goal catalog.
	StudyGoal string `json:"param_study_goal" validate:"required,studygoal"`

	Length string `json:"param_length" validate:"required,oneof=Short Medium Long"`
}

// GeneratedExercise is the structured exercise recovered from model output.
type GeneratedExercise struct {
	Title              string   `json:"title"`
	LearningObjectives []string `json:"learningObjectives"`
	ProblemDescription string   `json:"problemDescription"`
	Metadata           Metadata `json:"metadata"`
}

// Metadata echoes the ParameterSet that produced an exercise.
type Metadata struct {
	DifficultyLevel string `json:"difficultyLevel"`
	Length          string `json:"length"`
	StudyGoalID     string `json:"studyGoalId"`
	DiagramType     string `json:"diagramType"`
}

// MetadataFor returns the metadata echo of p. Whatever the model reported
// is replaced with this value after extraction.
func MetadataFor(p ParameterSet) Metadata {
	return Metadata{
		DifficultyLevel: p.Difficulty,
		Length:          p.Length,
		StudyGoalID:     p.StudyGoal,
		DiagramType:     p.ExerciseType,
	}
}
