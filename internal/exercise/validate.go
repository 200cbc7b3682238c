package exercise

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FieldError describes one invalid ParameterSet field.
type FieldError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// ValidationError reports every invalid field of a ParameterSet. It is
// returned before any prompt is built or provider is called.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.Field + " " + f.Reason
	}
	return "invalid parameters: " + strings.Join(parts, "; ")
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report wire names so messages match what the client sent.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})

	must(v.RegisterValidation("studygoal", func(fl validator.FieldLevel) bool {
		return GetStudyGoal(fl.Field().String()) != nil
	}))
	must(v.RegisterValidation("exercisetype", func(fl validator.FieldLevel) bool {
		return isExerciseType(fl.Field().String())
	}))
	return v
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}

// Validate checks that every field is present and belongs to its catalog.
func (p ParameterSet) Validate() error {
	err := validate.Struct(p)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate parameters: %w", err)
	}

	out := &ValidationError{Fields: make([]FieldError, 0, len(verrs))}
	for _, fe := range verrs {
		out.Fields = append(out.Fields, FieldError{
			Field:  fe.Field(),
			Reason: reasonFor(fe),
		})
	}
	return out
}

func reasonFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "oneof":
		return fmt.Sprintf("must be one of [%s], got %q", strings.ReplaceAll(fe.Param(), " ", ", "), fe.Value())
	case "studygoal":
		codes := make([]string, len(seedStudyGoals))
		for i, g := range seedStudyGoals {
			codes[i] = g.Code
		}
		return fmt.Sprintf("must be a study goal code [%s], got %q", strings.Join(codes, ", "), fe.Value())
	case "exercisetype":
		return fmt.Sprintf("must be one of [%s], got %q", strings.Join(ExerciseTypes, ", "), fe.Value())
	}
	return "is invalid"
}
