package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

// ErrNotFound is returned when a record lookup by ID finds nothing.
var ErrNotFound = errors.New("record not found")

// QueryOpts configures record queries with filtering and pagination.
type QueryOpts struct {
	Limit   int       // max results (0 = unlimited)
	Model   string    // exact model match (empty = any)
	Purpose string    // exact purpose match, LLM events only (empty = any)
	From    time.Time // created_at >= From
	To      time.Time // created_at <= To
}

// GenerationRecord is one stored exercise generation: the parameters that
// were sent, the prompt built from them, and what came back.
type GenerationRecord struct {
	ID           string
	CreatedAt    time.Time
	Model        string
	ExerciseType string
	Difficulty   string
	StudyGoal    string
	Length       string
	Evaluate     bool
	Prompt       string
	// Response is the raw model text.
	Response string
	Parsed   bool
	// Exercise is the extracted exercise JSON, nil when extraction failed.
	Exercise json.RawMessage
	// Evaluation is the aggregated evaluation JSON, nil when omitted.
	Evaluation json.RawMessage
}

// GenerationRepo persists generation records.
type GenerationRepo interface {
	// Save stores a record. ID and CreatedAt are assigned when empty.
	Save(ctx context.Context, rec *GenerationRecord) error

	// List returns records newest first.
	List(ctx context.Context, opts QueryOpts) ([]GenerationRecord, error)

	// Get returns the record with the given ID or ErrNotFound.
	Get(ctx context.Context, id string) (*GenerationRecord, error)
}

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMRequestEventRecord is a stored LLM event.
type LLMRequestEventRecord struct {
	ID        int
	Timestamp time.Time
	LLMRequestEventData
}

// LLMUsageStats aggregates calls and tokens for one purpose.
type LLMUsageStats struct {
	Purpose      string  `sql:"purpose"`
	Calls        int     `sql:"calls"`
	InputTokens  int     `sql:"input_tokens"`
	OutputTokens int     `sql:"output_tokens"`
	AvgLatencyMs float64 `sql:"avg_latency_ms"`
}

// LLMModelUsage aggregates calls and tokens for one model.
type LLMModelUsage struct {
	Model        string `sql:"model"`
	Calls        int    `sql:"calls"`
	InputTokens  int    `sql:"input_tokens"`
	OutputTokens int    `sql:"output_tokens"`
}

// EventRepo provides append and query access to LLM call events.
type EventRepo interface {
	// AppendLLMRequest records an LLM API call event.
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error

	// QueryLLMEvents returns events newest first.
	QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMRequestEventRecord, error)

	// GetLLMEvent returns one event, or nil if it does not exist.
	GetLLMEvent(ctx context.Context, id int) (*LLMRequestEventRecord, error)

	// LLMUsageByPurpose aggregates successful and failed calls per purpose.
	LLMUsageByPurpose(ctx context.Context) ([]LLMUsageStats, error)

	// LLMUsageByModel aggregates calls per model for cost estimation.
	LLMUsageByModel(ctx context.Context) ([]LLMModelUsage, error)
}
