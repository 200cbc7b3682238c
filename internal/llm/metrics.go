package llm

import (
	"context"
	"errors"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce       sync.Once
	llmCallSeconds     *prometheus.HistogramVec
	llmCallFailures    *prometheus.CounterVec
	llmTokensProcessed *prometheus.CounterVec
)

// RegisterMetrics initialises the Prometheus collectors for provider calls.
func RegisterMetrics() {
	registerOnce.Do(func() {
		llmCallSeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "umlgen_llm_call_duration_seconds",
			Help:    "Latency distribution of single LLM provider calls.",
			Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 20, 45, 60},
		}, []string{"kind", "model", "purpose"})

		llmCallFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "umlgen_llm_call_failures_total",
			Help: "Total number of failed LLM provider calls by error class.",
		}, []string{"kind", "model", "class"})

		llmTokensProcessed = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "umlgen_llm_tokens_total",
			Help: "Tokens consumed by LLM provider calls.",
		}, []string{"kind", "model", "direction"})

		prometheus.MustRegister(llmCallSeconds, llmCallFailures, llmTokensProcessed)
	})
}

// CallLatency exposes the provider call latency histogram.
func CallLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return llmCallSeconds
}

// CallFailures exposes the provider failure counter.
func CallFailures() *prometheus.CounterVec {
	RegisterMetrics()
	return llmCallFailures
}

// TokensProcessed exposes the token counter.
func TokensProcessed() *prometheus.CounterVec {
	RegisterMetrics()
	return llmTokensProcessed
}

// ErrorClass names the taxonomy bucket of err for metrics and logs.
func ErrorClass(err error) string {
	var (
		auth     *ErrAuth
		rl       *ErrRateLimit
		unavail  *ErrProviderUnavailable
		bad      *ErrMalformedResponse
		rejected *ErrRequestRejected
		unknown  *ErrUnknownModel
	)
	switch {
	case err == nil:
		return ""
	case errors.As(err, &auth):
		return "auth"
	case errors.As(err, &rl):
		return "rate_limit"
	case errors.As(err, &bad):
		return "malformed"
	case errors.As(err, &rejected):
		return "rejected"
	case errors.As(err, &unavail):
		return "transient"
	case errors.As(err, &unknown):
		return "unknown_model"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	}
	return "other"
}
