// Package pipeline runs exercise generation followed by optional rubric
// evaluation.
package pipeline

import (
	"context"
	"encoding/json"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"github.com/abhisek/umlgen/internal/exercise"
	"github.com/abhisek/umlgen/internal/llm"
	"github.com/abhisek/umlgen/internal/observability"
	"github.com/abhisek/umlgen/internal/rubric"
)

// Providers resolves a model identifier to a ready provider.
// *llm.Registry satisfies it.
type Providers interface {
	Provider(model string) (llm.Provider, error)
}

// Config controls the pipeline.
type Config struct {
	// EvaluationModel scores exercises. Empty means the generation model.
	EvaluationModel string

	Exercise  exercise.Config
	Evaluator rubric.EvaluatorConfig
}

// DefaultConfig returns recommended defaults.
func DefaultConfig() Config {
	return Config{
		Exercise:  exercise.DefaultConfig(),
		Evaluator: rubric.DefaultEvaluatorConfig(),
	}
}

// Result is the outcome of one Generate call.
type Result struct {
	Params exercise.ParameterSet

	// Evaluate records whether evaluation was requested.
	Evaluate bool

	// Prompt is the generation prompt sent to the model.
	Prompt string

	// Raw is the model's reply text, kept even when Exercise is set.
	Raw string

	// Exercise is nil when the reply could not be extracted.
	Exercise *exercise.GeneratedExercise

	// Evaluation is nil when evaluation was not requested or failed.
	Evaluation *rubric.EvaluationResult

	EvaluationPrompt string
	EvaluationModel  string
}

// Parsed reports whether the reply was extracted into an exercise.
func (r *Result) Parsed() bool {
	return r.Exercise != nil
}

// Response is the exercise when parsed, otherwise the raw text.
func (r *Result) Response() any {
	if r.Exercise != nil {
		return r.Exercise
	}
	return r.Raw
}

// MarshalJSON renders {"response", "parsed", "evaluation"?}.
func (r *Result) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Response   any                      `json:"response"`
		Parsed     bool                     `json:"parsed"`
		Evaluation *rubric.EvaluationResult `json:"evaluation,omitempty"`
	}{
		Response:   r.Response(),
		Parsed:     r.Parsed(),
		Evaluation: r.Evaluation,
	})
}

// Service runs the pipeline. It holds no per-request state and is safe
// for concurrent use.
type Service struct {
	providers Providers
	cfg       Config
	logger    *zap.Logger
}

// NewService creates a Service. A nil logger discards output.
func NewService(providers Providers, cfg Config, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{providers: providers, cfg: cfg, logger: logger}
}

// Generate validates params, generates an exercise and, when evaluate is
// set and the exercise was extracted, scores it. Validation, resolution
// and generation provider errors are returned. Evaluation failures are
// logged and leave Result.Evaluation nil.
func (s *Service) Generate(ctx context.Context, params exercise.ParameterSet, evaluate bool) (*Result, error) {
	ctx, span := otel.Tracer("umlgen/pipeline").Start(ctx, "generate")
	defer span.End()
	span.SetAttributes(
		attribute.String("umlgen.model", params.Model),
		attribute.String("umlgen.study_goal", params.StudyGoal),
		attribute.Bool("umlgen.evaluate", evaluate),
	)
	logger := observability.WithTrace(ctx, s.logger)

	res, err := s.generate(ctx, logger, params, evaluate)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(
		attribute.Bool("umlgen.parsed", res.Parsed()),
		attribute.Bool("umlgen.evaluated", res.Evaluation != nil),
	)
	return res, nil
}

func (s *Service) generate(ctx context.Context, logger *zap.Logger, params exercise.ParameterSet, evaluate bool) (*Result, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	provider, err := s.providers.Provider(params.Model)
	if err != nil {
		return nil, err
	}

	gen, err := exercise.New(provider, s.cfg.Exercise).Generate(ctx, params)
	if err != nil {
		return nil, err
	}

	res := &Result{
		Params:   params,
		Evaluate: evaluate,
		Prompt:   gen.Prompt,
		Raw:      gen.Raw,
		Exercise: gen.Exercise,
	}
	if gen.Exercise == nil {
		logger.Warn("exercise reply could not be parsed",
			zap.String("model", params.Model),
			zap.Int("raw_len", len(gen.Raw)),
		)
	}

	if !evaluate || gen.Exercise == nil {
		return res, nil
	}

	s.evaluate(ctx, logger, res)
	return res, nil
}

// evaluate fills res.Evaluation when scoring succeeds.
func (s *Service) evaluate(ctx context.Context, logger *zap.Logger, res *Result) {
	model := s.cfg.EvaluationModel
	if model == "" {
		model = res.Params.Model
	}
	res.EvaluationModel = model

	provider, err := s.providers.Provider(model)
	if err != nil {
		logger.Warn("evaluation skipped", zap.String("model", model), zap.Error(err))
		return
	}

	ev, err := rubric.NewEvaluator(provider, s.cfg.Evaluator).Evaluate(ctx, *res.Exercise, res.Params)
	if err != nil {
		logger.Warn("evaluation failed", zap.String("model", model), zap.Error(err))
		return
	}
	res.EvaluationPrompt = ev.Prompt
	if ev.Result == nil {
		logger.Warn("evaluation reply could not be parsed", zap.String("model", model))
		return
	}
	res.Evaluation = ev.Result
	logger.Info("exercise evaluated",
		zap.String("model", model),
		zap.Float64("full_score", ev.Result.FullScore),
	)
}

