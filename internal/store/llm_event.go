package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

var llmEventSelectColumns = []string{
	"id", "created_at", "provider", "model", "purpose", "input_tokens", "output_tokens",
	"latency_ms", "success", "error_message", "request_body", "response_body",
}

// eventRepo implements EventRepo with the ent SQL builder. The
// autoincrement ID gives events a global append order.
type eventRepo struct {
	db      *sql.DB
	dialect string
}

func (r *eventRepo) AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error {
	query, args := entsql.Dialect(r.dialect).
		Insert(LLMEventsTable).
		Columns(llmEventSelectColumns[1:]...).
		Values(
			time.Now().UTC(), data.Provider, data.Model, data.Purpose,
			data.InputTokens, data.OutputTokens, data.LatencyMs, data.Success,
			data.ErrorMessage, data.RequestBody, data.ResponseBody,
		).
		Query()

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save LLM request event: %w", err)
	}
	return nil
}

func (r *eventRepo) QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMRequestEventRecord, error) {
	b := entsql.Dialect(r.dialect)
	sel := b.Select(llmEventSelectColumns...).
		From(b.Table(LLMEventsTable)).
		OrderBy(entsql.Desc("id"))

	if opts.Purpose != "" {
		sel.Where(entsql.EQ("purpose", opts.Purpose))
	}
	if opts.Model != "" {
		sel.Where(entsql.EQ("model", opts.Model))
	}
	if !opts.From.IsZero() {
		sel.Where(entsql.GTE("created_at", opts.From))
	}
	if !opts.To.IsZero() {
		sel.Where(entsql.LTE("created_at", opts.To))
	}
	if opts.Limit > 0 {
		sel.Limit(opts.Limit)
	}

	query, args := sel.Query()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query LLM events: %w", err)
	}
	defer rows.Close()

	var out []LLMRequestEventRecord
	for rows.Next() {
		e, err := scanLLMEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *e)
	}
	return out, rows.Err()
}

func (r *eventRepo) GetLLMEvent(ctx context.Context, id int) (*LLMRequestEventRecord, error) {
	b := entsql.Dialect(r.dialect)
	query, args := b.Select(llmEventSelectColumns...).
		From(b.Table(LLMEventsTable)).
		Where(entsql.EQ("id", id)).
		Query()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("get LLM event: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}
	return scanLLMEvent(rows)
}

func (r *eventRepo) LLMUsageByPurpose(ctx context.Context) ([]LLMUsageStats, error) {
	b := entsql.Dialect(r.dialect)
	query, args := b.Select(
		"purpose",
		entsql.As(entsql.Count("*"), "calls"),
		entsql.As(entsql.Sum("input_tokens"), "input_tokens"),
		entsql.As(entsql.Sum("output_tokens"), "output_tokens"),
		entsql.As(entsql.Avg("latency_ms"), "avg_latency_ms"),
	).
		From(b.Table(LLMEventsTable)).
		GroupBy("purpose").
		OrderBy("purpose").
		Query()

	var stats []LLMUsageStats
	if err := r.scanAll(ctx, query, args, &stats); err != nil {
		return nil, fmt.Errorf("usage by purpose: %w", err)
	}
	return stats, nil
}

func (r *eventRepo) LLMUsageByModel(ctx context.Context) ([]LLMModelUsage, error) {
	b := entsql.Dialect(r.dialect)
	query, args := b.Select(
		"model",
		entsql.As(entsql.Count("*"), "calls"),
		entsql.As(entsql.Sum("input_tokens"), "input_tokens"),
		entsql.As(entsql.Sum("output_tokens"), "output_tokens"),
	).
		From(b.Table(LLMEventsTable)).
		GroupBy("model").
		OrderBy("model").
		Query()

	var usage []LLMModelUsage
	if err := r.scanAll(ctx, query, args, &usage); err != nil {
		return nil, fmt.Errorf("usage by model: %w", err)
	}
	return usage, nil
}

func (r *eventRepo) scanAll(ctx context.Context, query string, args []any, v any) error {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return err
	}
	defer rows.Close()
	return entsql.ScanSlice(rows, v)
}

func scanLLMEvent(rows *sql.Rows) (*LLMRequestEventRecord, error) {
	var e LLMRequestEventRecord
	err := rows.Scan(
		&e.ID, &e.Timestamp, &e.Provider, &e.Model, &e.Purpose, &e.InputTokens,
		&e.OutputTokens, &e.LatencyMs, &e.Success, &e.ErrorMessage,
		&e.RequestBody, &e.ResponseBody,
	)
	if err != nil {
		return nil, fmt.Errorf("scan LLM event: %w", err)
	}
	return &e, nil
}
