package rubric

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/umlgen/internal/exercise"
	"github.com/abhisek/umlgen/internal/llm"
)

func allItems(score float64) map[string]float64 {
	items := make(map[string]float64)
	for _, c := range ItemCodes() {
		items[c] = score
	}
	return items
}

func testExercise() exercise.GeneratedExercise {
	return exercise.GeneratedExercise{
		Title:              "Library loans",
		LearningObjectives: []string{"Model collections as associations"},
		ProblemDescription: "A library lends books to members.",
	}
}

func testParams() exercise.ParameterSet {
	return exercise.ParameterSet{
		Model:        "gemini-2.5-flash",
		ExerciseType: "Class diagram",
		Difficulty:   "Easy",
		StudyGoal:    "LIS",
		Length:       "Short",
	}
}

func TestCatalog(t *testing.T) {
	codes := ItemCodes()
	require.Len(t, codes, 15)

	counts := map[string]int{}
	for _, c := range codes {
		counts[DimensionOf(c)]++
	}
	assert.Equal(t, map[string]int{"T": 2, "D": 4, "S": 3, "L": 2, "P": 4}, counts)
	assert.Equal(t, "", DimensionOf("X9"))

	for _, d := range Dimensions() {
		for _, it := range d.Items {
			assert.Equal(t, d.Code, it.Dimension)
		}
	}
}

func TestAggregate_AllOnes(t *testing.T) {
	s := Aggregate(allItems(1))
	assert.Equal(t, map[string]float64{"T": 1, "D": 1, "S": 1, "L": 1, "P": 1}, s.Dimensions)
	assert.InDelta(t, 5.0, s.FullScore, 1e-9)
}

func TestAggregate_Bounds(t *testing.T) {
	assert.InDelta(t, 10.0, Aggregate(allItems(2)).FullScore, 1e-9)
	assert.InDelta(t, 0.0, Aggregate(allItems(0)).FullScore, 1e-9)
}

func TestAggregate_SingleDimension(t *testing.T) {
	s := Aggregate(map[string]float64{"T1": 2, "T2": 2})
	assert.Equal(t, map[string]float64{"T": 2}, s.Dimensions)
	assert.InDelta(t, 2.0, s.FullScore, 1e-9)
}

func TestAggregate_ExcludesAbsentItems(t *testing.T) {
	s := Aggregate(map[string]float64{"D1": 2, "D3": 1})
	assert.InDelta(t, 1.5, s.Dimensions["D"], 1e-9)
	assert.NotContains(t, s.Dimensions, "T")
}

func TestAggregate_ScoreAbsentAsZero(t *testing.T) {
	s := AggregateWith(map[string]float64{"D1": 2, "D3": 1}, ScoreAbsentAsZero)
	assert.InDelta(t, 0.75, s.Dimensions["D"], 1e-9)
	assert.Len(t, s.Dimensions, 5)
	assert.InDelta(t, 0.75, s.FullScore, 1e-9)
}

func TestAggregate_IgnoresUnknownAndClamps(t *testing.T) {
	s := Aggregate(map[string]float64{"T1": 5, "T2": -1, "X1": 2, "total": 10})
	assert.Equal(t, map[string]float64{"T": 1}, s.Dimensions)
	assert.InDelta(t, 1.0, s.FullScore, 1e-9)
}

func TestAggregate_OrderInvariant(t *testing.T) {
	// Map insertion order varies the iteration order between runs.
	want := Aggregate(map[string]float64{"T1": 2, "S2": 1, "P4": 0, "L1": 2, "D3": 1})
	for i := 0; i < 50; i++ {
		items := map[string]float64{}
		for _, k := range []string{"D3", "L1", "P4", "S2", "T1"} {
			items[k] = map[string]float64{"T1": 2, "S2": 1, "P4": 0, "L1": 2, "D3": 1}[k]
		}
		assert.Equal(t, want, Aggregate(items))
	}
}

func TestBuildEvaluationPrompt(t *testing.T) {
	prompt := BuildEvaluationPrompt(testExercise(), testParams())

	for _, c := range ItemCodes() {
		assert.Contains(t, prompt, c+":")
	}
	for _, d := range Dimensions() {
		assert.Contains(t, prompt, d.Code+" - "+d.Name)
	}
	assert.Contains(t, prompt, "Library loans")
	assert.Contains(t, prompt, "A library lends books to members.")
	assert.Contains(t, prompt, "- Model collections as associations")
	assert.Contains(t, prompt, `"justifications"`)
	assert.Contains(t, prompt, "LIS")
	assert.NotContains(t, prompt, "fullScore")
}

func evaluationJSON(t *testing.T, items map[string]float64) string {
	t.Helper()
	why := map[string]string{}
	for k := range items {
		why[k] = "ok"
	}
	b, err := json.Marshal(map[string]any{"items": items, "justifications": why, "fullScore": 99})
	require.NoError(t, err)
	return string(b)
}

func TestEvaluate_AllOnes(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Text: evaluationJSON(t, allItems(1))})
	ev, err := NewEvaluator(mock, DefaultEvaluatorConfig()).Evaluate(context.Background(), testExercise(), testParams())
	require.NoError(t, err)
	require.NotNil(t, ev.Result)

	assert.Equal(t, map[string]float64{"T": 1, "D": 1, "S": 1, "L": 1, "P": 1}, ev.Result.Dimensions)
	assert.InDelta(t, 5.0, ev.Result.FullScore, 1e-9)
	assert.Len(t, ev.Result.Justifications, 15)

	req, ok := mock.LastCall()
	require.True(t, ok)
	assert.Equal(t, 0.0, req.Temperature)
	assert.Same(t, EvaluationSchema, req.Schema)
	assert.Equal(t, SystemPrompt, req.System)
}

func TestEvaluate_DropsUnknownCodes(t *testing.T) {
	raw := `{"items":{"T1":2,"Z9":2},"justifications":{"T1":"clear","Z9":"?"}}`
	mock := llm.NewMockProvider(llm.MockResponse{Text: raw})
	ev, err := NewEvaluator(mock, DefaultEvaluatorConfig()).Evaluate(context.Background(), testExercise(), testParams())
	require.NoError(t, err)
	require.NotNil(t, ev.Result)
	assert.Equal(t, map[string]float64{"T1": 2}, ev.Result.Items)
	assert.Equal(t, map[string]string{"T1": "clear"}, ev.Result.Justifications)
}

func TestEvaluate_Unparseable(t *testing.T) {
	for _, raw := range []string{
		"I cannot help with that.",
		`{"items":{"T1":"two"},"justifications":{}}`,
		`{"items":{"T1":3},"justifications":{}}`,
		`{"justifications":{}}`,
	} {
		mock := llm.NewMockProvider(llm.MockResponse{Text: raw})
		ev, err := NewEvaluator(mock, DefaultEvaluatorConfig()).Evaluate(context.Background(), testExercise(), testParams())
		require.NoError(t, err, raw)
		assert.Nil(t, ev.Result, raw)
		assert.Equal(t, raw, ev.Raw)
	}
}

func TestEvaluate_ProviderError(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Err: &llm.ErrMalformedResponse{}})
	_, err := NewEvaluator(mock, DefaultEvaluatorConfig()).Evaluate(context.Background(), testExercise(), testParams())
	var malformed *llm.ErrMalformedResponse
	assert.True(t, errors.As(err, &malformed))
}

func TestEvaluationResultJSON(t *testing.T) {
	res := newResult(&evaluationOutput{Items: map[string]float64{"L1": 2}}, ExcludeAbsent)
	b, err := json.Marshal(res)
	require.NoError(t, err)
	assert.JSONEq(t, `{"items":{"L1":2},"justifications":{},"dimensions":{"L":2},"fullScore":2}`, string(b))
}

func TestPolicyString(t *testing.T) {
	assert.Equal(t, "exclude-absent", ExcludeAbsent.String())
	assert.Equal(t, "score-absent-as-zero", ScoreAbsentAsZero.String())
}
