package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/abhisek/umlgen/internal/store"
)

var tracer = otel.Tracer("umlgen/llm")

// Instrumentation bundles the sinks every provider call reports to.
// Zero values are valid: a nil Logger logs nothing and a nil Events repo
// skips event persistence.
type Instrumentation struct {
	Logger *zap.Logger
	Events store.EventRepo
}

// InstrumentedProvider is a decorator that logs, measures, traces, and
// records every LLM request.
type InstrumentedProvider struct {
	inner  Provider
	kind   Kind
	logger *zap.Logger
	events store.EventRepo
}

// WithInstrumentation wraps a Provider with logging, metrics, tracing, and
// event recording.
func WithInstrumentation(p Provider, kind Kind, inst Instrumentation) Provider {
	logger := inst.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InstrumentedProvider{
		inner:  p,
		kind:   kind,
		logger: logger.With(zap.String("kind", kind.String()), zap.String("model", p.ModelID())),
		events: inst.Events,
	}
}

func (l *InstrumentedProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	purpose := PurposeFrom(ctx)
	model := l.inner.ModelID()

	ctx, span := tracer.Start(ctx, "chat "+model,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("gen_ai.operation.name", "chat"),
			attribute.String("gen_ai.provider.name", l.kind.String()),
			attribute.String("gen_ai.request.model", model),
			attribute.Int("gen_ai.request.max_tokens", req.MaxTokens),
			attribute.Float64("gen_ai.request.temperature", req.Temperature),
			attribute.String("umlgen.purpose", purpose),
		),
	)
	defer span.End()

	resp, err := l.inner.Generate(ctx, req)

	elapsed := time.Since(start)
	CallLatency().WithLabelValues(l.kind.String(), model, purpose).Observe(elapsed.Seconds())

	data := store.LLMRequestEventData{
		Provider:    l.kind.String(),
		Model:       model,
		Purpose:     purpose,
		LatencyMs:   elapsed.Milliseconds(),
		Success:     err == nil,
		RequestBody: serializeRequest(req),
	}

	if resp != nil {
		data.InputTokens = resp.Usage.InputTokens
		data.OutputTokens = resp.Usage.OutputTokens
		if resp.Model != "" {
			data.Model = resp.Model
		}
		data.ResponseBody = resp.Text

		span.SetAttributes(
			attribute.String("gen_ai.response.model", data.Model),
			attribute.Int("gen_ai.usage.input_tokens", resp.Usage.InputTokens),
			attribute.Int("gen_ai.usage.output_tokens", resp.Usage.OutputTokens),
			attribute.StringSlice("gen_ai.response.finish_reasons", []string{resp.StopReason}),
		)
		TokensProcessed().WithLabelValues(l.kind.String(), model, "input").Add(float64(resp.Usage.InputTokens))
		TokensProcessed().WithLabelValues(l.kind.String(), model, "output").Add(float64(resp.Usage.OutputTokens))

		l.logger.Info("llm call completed",
			zap.String("purpose", purpose),
			zap.Duration("latency", elapsed),
			zap.Int("input_tokens", resp.Usage.InputTokens),
			zap.Int("output_tokens", resp.Usage.OutputTokens),
			zap.String("stop_reason", resp.StopReason),
		)
	}

	if err != nil {
		class := ErrorClass(err)
		data.ErrorMessage = err.Error()
		span.RecordError(err)
		span.SetStatus(codes.Error, class)
		span.SetAttributes(attribute.String("error.type", class))
		CallFailures().WithLabelValues(l.kind.String(), model, class).Inc()

		l.logger.Warn("llm call failed",
			zap.String("purpose", purpose),
			zap.Duration("latency", elapsed),
			zap.String("class", class),
			zap.Error(err),
		)
	}

	// Record the event but don't fail the request if recording fails.
	if l.events != nil {
		if logErr := l.events.AppendLLMRequest(context.WithoutCancel(ctx), data); logErr != nil {
			l.logger.Warn("failed to record LLM request event", zap.Error(logErr))
		}
	}

	return resp, err
}

func (l *InstrumentedProvider) ModelID() string {
	return l.inner.ModelID()
}

// serializeRequest builds a readable representation of the LLM request.
func serializeRequest(req Request) string {
	var b strings.Builder

	if req.System != "" {
		b.WriteString("[system]\n")
		b.WriteString(req.System)
		b.WriteString("\n\n")
	}

	for _, m := range req.Messages {
		b.WriteString(fmt.Sprintf("[%s]\n", m.Role))
		b.WriteString(m.Content)
		b.WriteString("\n\n")
	}

	if req.Schema != nil {
		schemaDef, err := json.Marshal(req.Schema.Definition)
		if err == nil {
			b.WriteString(fmt.Sprintf("[schema: %s]\n", req.Schema.Name))
			b.WriteString(string(schemaDef))
			b.WriteString("\n")
		}
	}

	return b.String()
}
