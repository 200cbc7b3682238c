package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/abhisek/umlgen/internal/exercise"
	"github.com/abhisek/umlgen/internal/llm"
	"github.com/abhisek/umlgen/internal/rubric"
)

const exerciseJSON = `{
  "title": "Library loans",
  "learningObjectives": ["Model collections as associations"],
  "problemDescription": "A library lends books to members. Each member may borrow several books at once.",
  "metadata": {"difficultyLevel": "Hard", "length": "Long", "studyGoalId": "MUL", "diagramType": "Class diagram"}
}`

func allOnesEvaluation(t *testing.T) string {
	t.Helper()
	items := map[string]int{}
	why := map[string]string{}
	for _, c := range rubric.ItemCodes() {
		items[c] = 1
		why[c] = "partially met"
	}
	b, err := json.Marshal(map[string]any{"items": items, "justifications": why})
	require.NoError(t, err)
	return string(b)
}

func scenarioParams() exercise.ParameterSet {
	return exercise.ParameterSet{
		Model:        "gemini-2.5-flash",
		ExerciseType: "Class diagram",
		Difficulty:   "Easy",
		StudyGoal:    "LIS",
		Length:       "Short",
	}
}

// newRegistry builds a real registry whose gemini models are backed by
// the given mocks.
func newRegistry(t *testing.T, mocks map[string]*llm.MockProvider) *llm.Registry {
	t.Helper()
	cfg := llm.DefaultConfig()
	cfg.Gemini.APIKey = "test-key"
	cfg.Retry = llm.RetryConfig{MaxAttempts: 3, InitialWait: time.Millisecond, MaxWait: 2 * time.Millisecond, Multiplier: 2}

	factory := func(_ context.Context, pc llm.ProviderConfig) (llm.Provider, error) {
		if m, ok := mocks[pc.Model]; ok {
			return m, nil
		}
		return llm.NewMockProviderFor(pc.Upstream), nil
	}
	r, err := llm.NewRegistry(context.Background(), cfg, llm.WithFactory(factory))
	require.NoError(t, err)
	return r
}

func TestGenerate_WithoutEvaluation(t *testing.T) {
	mock := llm.NewMockProviderFor("gemini-2.5-flash", llm.MockResponse{Text: exerciseJSON})
	svc := NewService(newRegistry(t, map[string]*llm.MockProvider{"gemini-2.5-flash": mock}), DefaultConfig(), nil)

	res, err := svc.Generate(context.Background(), scenarioParams(), false)
	require.NoError(t, err)
	assert.True(t, res.Parsed())
	assert.Nil(t, res.Evaluation)
	assert.Equal(t, 1, mock.CallCount())

	b, err := json.Marshal(res)
	require.NoError(t, err)
	var body map[string]any
	require.NoError(t, json.Unmarshal(b, &body))
	assert.Contains(t, body, "response")
	assert.NotContains(t, body, "evaluation")
	assert.Equal(t, true, body["parsed"])

	// Metadata is the echo of the input, not what the model said.
	meta := body["response"].(map[string]any)["metadata"].(map[string]any)
	assert.Equal(t, "Easy", meta["difficultyLevel"])
	assert.Equal(t, "LIS", meta["studyGoalId"])
	assert.Equal(t, "Short", meta["length"])
}

func TestGenerate_WithEvaluation(t *testing.T) {
	mock := llm.NewMockProviderFor("gemini-2.5-flash",
		llm.MockResponse{Text: exerciseJSON},
		llm.MockResponse{Text: "```json\n" + allOnesEvaluation(t) + "\n```"},
	)
	svc := NewService(newRegistry(t, map[string]*llm.MockProvider{"gemini-2.5-flash": mock}), DefaultConfig(), nil)

	res, err := svc.Generate(context.Background(), scenarioParams(), true)
	require.NoError(t, err)
	require.NotNil(t, res.Evaluation)

	assert.Equal(t, map[string]float64{"T": 1, "D": 1, "S": 1, "L": 1, "P": 1}, res.Evaluation.Dimensions)
	assert.InDelta(t, 5.0, res.Evaluation.FullScore, 1e-9)
	assert.Equal(t, "gemini-2.5-flash", res.EvaluationModel)
	assert.NotEmpty(t, res.EvaluationPrompt)
	assert.Equal(t, 2, mock.CallCount())

	b, err := json.Marshal(res)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"fullScore":5`)
}

func TestGenerate_EvaluationModelOverride(t *testing.T) {
	gen := llm.NewMockProviderFor("gemini-2.5-flash", llm.MockResponse{Text: exerciseJSON})
	eval := llm.NewMockProviderFor("gemini-2.0-flash", llm.MockResponse{Text: allOnesEvaluation(t)})
	reg := newRegistry(t, map[string]*llm.MockProvider{"gemini-2.5-flash": gen, "gemini-2.0-flash": eval})

	cfg := DefaultConfig()
	cfg.EvaluationModel = "gemini-2.0-flash"
	res, err := NewService(reg, cfg, nil).Generate(context.Background(), scenarioParams(), true)
	require.NoError(t, err)
	require.NotNil(t, res.Evaluation)
	assert.Equal(t, 1, gen.CallCount())
	assert.Equal(t, 1, eval.CallCount())
}

func TestGenerate_UnparsedSkipsEvaluation(t *testing.T) {
	mock := llm.NewMockProviderFor("gemini-2.5-flash", llm.MockResponse{Text: "I cannot help with that."})
	svc := NewService(newRegistry(t, map[string]*llm.MockProvider{"gemini-2.5-flash": mock}), DefaultConfig(), nil)

	res, err := svc.Generate(context.Background(), scenarioParams(), true)
	require.NoError(t, err)
	assert.False(t, res.Parsed())
	assert.Nil(t, res.Evaluation)
	assert.Equal(t, 1, mock.CallCount())

	b, err := json.Marshal(res)
	require.NoError(t, err)
	assert.JSONEq(t, `{"response":"I cannot help with that.","parsed":false}`, string(b))
}

func TestGenerate_EvaluationFailureKeepsGeneration(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	mock := llm.NewMockProviderFor("gemini-2.5-flash",
		llm.MockResponse{Text: exerciseJSON},
		llm.MockResponse{Err: &llm.ErrAuth{StatusCode: 401}},
	)
	svc := NewService(newRegistry(t, map[string]*llm.MockProvider{"gemini-2.5-flash": mock}), DefaultConfig(), zap.New(core))

	res, err := svc.Generate(context.Background(), scenarioParams(), true)
	require.NoError(t, err)
	assert.True(t, res.Parsed())
	assert.Nil(t, res.Evaluation)
	assert.Equal(t, 1, logs.FilterMessage("evaluation failed").Len())
}

func TestGenerate_UnparseableEvaluationOmitted(t *testing.T) {
	mock := llm.NewMockProviderFor("gemini-2.5-flash",
		llm.MockResponse{Text: exerciseJSON},
		llm.MockResponse{Text: "Overall this is a 7/10."},
	)
	svc := NewService(newRegistry(t, map[string]*llm.MockProvider{"gemini-2.5-flash": mock}), DefaultConfig(), nil)

	res, err := svc.Generate(context.Background(), scenarioParams(), true)
	require.NoError(t, err)
	assert.Nil(t, res.Evaluation)
	assert.NotEmpty(t, res.EvaluationPrompt)
}

func TestGenerate_ValidationBeforeProviderCall(t *testing.T) {
	mock := llm.NewMockProviderFor("gemini-2.5-flash", llm.MockResponse{Text: exerciseJSON})
	svc := NewService(newRegistry(t, map[string]*llm.MockProvider{"gemini-2.5-flash": mock}), DefaultConfig(), nil)

	p := scenarioParams()
	p.Difficulty = "Impossible"
	_, err := svc.Generate(context.Background(), p, false)

	var verr *exercise.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, 0, mock.CallCount())
}

func TestGenerate_UnknownModel(t *testing.T) {
	svc := NewService(newRegistry(t, nil), DefaultConfig(), nil)

	p := scenarioParams()
	p.Model = "gpt-4"
	_, err := svc.Generate(context.Background(), p, false)

	var unknown *llm.ErrUnknownModel
	require.True(t, errors.As(err, &unknown))
	assert.Equal(t, "gpt-4", unknown.Model)
}

func TestGenerate_RateLimitSurfacesAfterRetries(t *testing.T) {
	rl := func() llm.MockResponse { return llm.MockResponse{Err: &llm.ErrRateLimit{}} }
	mock := llm.NewMockProviderFor("gemini-2.5-flash", rl(), rl(), rl(), rl())
	svc := NewService(newRegistry(t, map[string]*llm.MockProvider{"gemini-2.5-flash": mock}), DefaultConfig(), nil)

	_, err := svc.Generate(context.Background(), scenarioParams(), false)
	var rateErr *llm.ErrRateLimit
	require.True(t, errors.As(err, &rateErr))
	assert.Equal(t, 3, mock.CallCount())
}

// echoProviders serves the same stateless provider for every model.
type echoProviders struct{ p llm.Provider }

func (e echoProviders) Provider(string) (llm.Provider, error) { return e.p, nil }

func TestGenerate_Concurrent(t *testing.T) {
	svc := NewService(echoProviders{p: constProvider(exerciseJSON)}, DefaultConfig(), nil)

	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := svc.Generate(context.Background(), scenarioParams(), false)
			if err == nil && !res.Parsed() {
				err = errors.New("not parsed")
			}
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		assert.NoError(t, err)
	}
}

type constProvider string

func (c constProvider) Generate(context.Context, llm.Request) (*llm.Response, error) {
	return &llm.Response{Text: string(c), StopReason: "end"}, nil
}

func (c constProvider) ModelID() string { return "const" }

func TestResult_Record(t *testing.T) {
	mock := llm.NewMockProviderFor("gemini-2.5-flash",
		llm.MockResponse{Text: exerciseJSON},
		llm.MockResponse{Text: allOnesEvaluation(t)},
	)
	svc := NewService(newRegistry(t, map[string]*llm.MockProvider{"gemini-2.5-flash": mock}), DefaultConfig(), nil)

	res, err := svc.Generate(context.Background(), scenarioParams(), true)
	require.NoError(t, err)

	rec, err := res.Record()
	require.NoError(t, err)
	assert.Equal(t, "gemini-2.5-flash", rec.Model)
	assert.Equal(t, "LIS", rec.StudyGoal)
	assert.True(t, rec.Evaluate)
	assert.True(t, rec.Parsed)
	assert.Equal(t, exerciseJSON, rec.Response)
	assert.Contains(t, string(rec.Exercise), `"studyGoalId":"LIS"`)
	assert.Contains(t, string(rec.Evaluation), `"fullScore":5`)
}

func TestResult_RecordUnparsed(t *testing.T) {
	res := &Result{Params: scenarioParams(), Prompt: "p", Raw: "raw text"}
	rec, err := res.Record()
	require.NoError(t, err)
	assert.False(t, rec.Parsed)
	assert.Nil(t, rec.Exercise)
	assert.Nil(t, rec.Evaluation)
}
