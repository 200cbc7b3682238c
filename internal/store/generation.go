package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"
)

var generationSelectColumns = []string{
	"id", "created_at", "model", "exercise_type", "difficulty", "study_goal",
	"length", "evaluate", "prompt", "response", "parsed", "exercise", "evaluation",
}

// generationRepo implements GenerationRepo with the ent SQL builder.
type generationRepo struct {
	db      *sql.DB
	dialect string
}

func (r *generationRepo) Save(ctx context.Context, rec *GenerationRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	query, args := entsql.Dialect(r.dialect).
		Insert(GenerationsTable).
		Columns(generationSelectColumns...).
		Values(
			rec.ID, rec.CreatedAt, rec.Model, rec.ExerciseType, rec.Difficulty,
			rec.StudyGoal, rec.Length, rec.Evaluate, rec.Prompt, rec.Response,
			rec.Parsed, nullableJSON(rec.Exercise), nullableJSON(rec.Evaluation),
		).
		Query()

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save generation: %w", err)
	}
	return nil
}

func (r *generationRepo) List(ctx context.Context, opts QueryOpts) ([]GenerationRecord, error) {
	b := entsql.Dialect(r.dialect)
	sel := b.Select(generationSelectColumns...).
		From(b.Table(GenerationsTable)).
		OrderBy(entsql.Desc("created_at"))

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
		return nil, fmt.Errorf("list generations: %w", err)
	}
	defer rows.Close()

	var out []GenerationRecord
	for rows.Next() {
		rec, err := scanGeneration(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *rec)
	}
	return out, rows.Err()
}

func (r *generationRepo) Get(ctx context.Context, id string) (*GenerationRecord, error) {
	b := entsql.Dialect(r.dialect)
	query, args := b.Select(generationSelectColumns...).
		From(b.Table(GenerationsTable)).
		Where(entsql.EQ("id", id)).
		Query()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("get generation: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("get generation: %w", err)
		}
		return nil, ErrNotFound
	}
	return scanGeneration(rows)
}

func scanGeneration(rows *sql.Rows) (*GenerationRecord, error) {
	var (
		rec                  GenerationRecord
		exercise, evaluation sql.NullString
	)
	err := rows.Scan(
		&rec.ID, &rec.CreatedAt, &rec.Model, &rec.ExerciseType, &rec.Difficulty,
		&rec.StudyGoal, &rec.Length, &rec.Evaluate, &rec.Prompt, &rec.Response,
		&rec.Parsed, &exercise, &evaluation,
	)
	if err != nil {
		return nil, fmt.Errorf("scan generation: %w", err)
	}
	if exercise.Valid {
		rec.Exercise = []byte(exercise.String)
	}
	if evaluation.Valid {
		rec.Evaluation = []byte(evaluation.String)
	}
	return &rec, nil
}

func nullableJSON(raw []byte) any {
	if len(raw) == 0 {
		return nil
	}
	return string(raw)
}
