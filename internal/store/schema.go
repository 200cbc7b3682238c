package store

import (
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

// Table and column names.
const (
	GenerationsTable = "generations"
	LLMEventsTable   = "llm_request_events"
)

var (
	generationsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString, Size: 36},
		{Name: "created_at", Type: field.TypeTime},
		{Name: "model", Type: field.TypeString},
		{Name: "exercise_type", Type: field.TypeString},
		{Name: "difficulty", Type: field.TypeString},
		{Name: "study_goal", Type: field.TypeString},
		{Name: "length", Type: field.TypeString},
		{Name: "evaluate", Type: field.TypeBool, Default: false},
		{Name: "prompt", Type: field.TypeString, Size: 2147483647},
		{Name: "response", Type: field.TypeString, Size: 2147483647},
		{Name: "parsed", Type: field.TypeBool, Default: false},
		{Name: "exercise", Type: field.TypeString, Size: 2147483647, Nullable: true},
		{Name: "evaluation", Type: field.TypeString, Size: 2147483647, Nullable: true},
	}
	// GenerationsTableSchema stores one row per /api/generate call.
	GenerationsTableSchema = &schema.Table{
		Name:       GenerationsTable,
		Columns:    generationsColumns,
		PrimaryKey: []*schema.Column{generationsColumns[0]},
		Indexes: []*schema.Index{
			{Name: "generation_created_at", Columns: []*schema.Column{generationsColumns[1]}},
			{Name: "generation_model", Columns: []*schema.Column{generationsColumns[2]}},
		},
	}

	llmEventsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "created_at", Type: field.TypeTime},
		{Name: "provider", Type: field.TypeString},
		{Name: "model", Type: field.TypeString},
		{Name: "purpose", Type: field.TypeString},
		{Name: "input_tokens", Type: field.TypeInt, Default: 0},
		{Name: "output_tokens", Type: field.TypeInt, Default: 0},
		{Name: "latency_ms", Type: field.TypeInt64, Default: 0},
		{Name: "success", Type: field.TypeBool},
		{Name: "error_message", Type: field.TypeString, Default: ""},
		{Name: "request_body", Type: field.TypeString, Size: 2147483647, Default: ""},
		{Name: "response_body", Type: field.TypeString, Size: 2147483647, Default: ""},
	}
	// LLMEventsTableSchema stores one row per provider call.
	LLMEventsTableSchema = &schema.Table{
		Name:       LLMEventsTable,
		Columns:    llmEventsColumns,
		PrimaryKey: []*schema.Column{llmEventsColumns[0]},
		Indexes: []*schema.Index{
			{Name: "llmrequestevent_purpose", Columns: []*schema.Column{llmEventsColumns[4]}},
			{Name: "llmrequestevent_created_at", Columns: []*schema.Column{llmEventsColumns[1]}},
		},
	}

	// Tables holds every table the store migrates.
	Tables = []*schema.Table{
		GenerationsTableSchema,
		LLMEventsTableSchema,
	}
)
