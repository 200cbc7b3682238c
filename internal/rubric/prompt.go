package rubric

import (
	"bytes"
	"strings"
	"text/template"

	"github.com/abhisek/umlgen/internal/exercise"
)

// SystemPrompt sets the reviewer role for evaluation calls.
const SystemPrompt = `You are an experienced software engineering instructor reviewing UML modeling exercises written for students.

Instructions:
- Score every rubric item independently with an integer from 0 to 2: 0 = not met, 1 = partially met, 2 = fully met.
- Give one short sentence of justification per item.
- Do not compute dimension totals or an overall score.
- Respond with a single JSON object and nothing else.`

var evaluationTemplate = template.Must(template.New("evaluation").Funcs(template.FuncMap{
	"join": strings.Join,
}).Parse(`Evaluate the following UML exercise.

Requested parameters:
- Exercise type: {{.Params.ExerciseType}}
- Difficulty level: {{.Params.Difficulty}}
- Study goal: {{.Params.StudyGoal}}{{with .Goal}} ({{.Name}}: {{.Description}}){{end}}
- Length: {{.Params.Length}}

Exercise:
Title: {{.Exercise.Title}}
Learning objectives:
{{range .Exercise.LearningObjectives}}- {{.}}
{{end}}Problem description:
{{.Exercise.ProblemDescription}}

Rubric (item scores 0-2):
{{range .Dimensions}}{{.Code}} - {{.Name}}
{{range .Items}}  {{.Code}}: {{.Description}}
{{end}}{{end}}
Return ONLY a JSON object of this form, with all of {{join .Codes ", "}}:
{
  "items": {"T1": 0|1|2, ...},
  "justifications": {"T1": "one sentence", ...}
}`))

// BuildEvaluationPrompt renders the user prompt for scoring ex, which was
// generated from p.
func BuildEvaluationPrompt(ex exercise.GeneratedExercise, p exercise.ParameterSet) string {
	var buf bytes.Buffer
	_ = evaluationTemplate.Execute(&buf, struct {
		Params     exercise.ParameterSet
		Goal       *exercise.StudyGoal
		Exercise   exercise.GeneratedExercise
		Dimensions []Dimension
		Codes      []string
	}{
		Params:     p,
		Goal:       exercise.GetStudyGoal(p.StudyGoal),
		Exercise:   ex,
		Dimensions: dimensions,
		Codes:      ItemCodes(),
	})
	return buf.String()
}
