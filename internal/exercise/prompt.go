package exercise

import (
	"bytes"
	"text/template"
)

// SystemPrompt sets the assistant role for generation calls.
const SystemPrompt = `You are an assistant that generates UML modeling exercises for students in software engineering.

Rules:
- Write a realistic domain description the student can model without outside knowledge.
- Do not include the solution diagram or name the expected classes explicitly.
- Steer the description so that a student holding the targeted misconception is likely to make that mistake.
- Match the requested difficulty and length.
- Respond with a single JSON object and nothing else. No Markdown, no code fences, no commentary.`

var generationTemplate = template.Must(template.New("generation").Parse(`Create a UML modeling exercise with these parameters:

Exercise type: {{.Params.ExerciseType}}
Difficulty level: {{.Params.Difficulty}}
Study goal: {{.Params.StudyGoal}}{{with .Goal}} ({{.Name}}: {{.Description}}){{end}}
Length: {{.Params.Length}}

Length guide: Short is one paragraph, Medium is two to three paragraphs, Long is four or more paragraphs.

Return ONLY a JSON object matching this schema:
{
  "title": string,
  "learningObjectives": array of strings (at least one entry),
  "problemDescription": string,
  "metadata": {
    "difficultyLevel": "{{.Params.Difficulty}}",
    "length": "{{.Params.Length}}",
    "studyGoalId": "{{.Params.StudyGoal}}",
    "diagramType": "{{.Params.ExerciseType}}"
  }
}`))

// BuildGenerationPrompt renders the user prompt for p. Every field value
// of p appears verbatim. p is expected to be valid.
func BuildGenerationPrompt(p ParameterSet) string {
	var buf bytes.Buffer
	// Execute only fails on template or writer errors; neither can occur here.
	_ = generationTemplate.Execute(&buf, struct {
		Params ParameterSet
		Goal   *StudyGoal
	}{Params: p, Goal: GetStudyGoal(p.StudyGoal)})
	return buf.String()
}
