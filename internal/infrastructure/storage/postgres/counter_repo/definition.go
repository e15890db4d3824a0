package counter_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"numera/internal/core/apperror"
	"numera/internal/domain/counters"
)

const (
	definitionTable = "counter_definitions"
	segmentTable    = "counter_definition_segments"
)

// definitionRow maps the counter_definitions table.
type definitionRow struct {
	Code        string `db:"code"`
	Description string `db:"description"`
	ResetPolicy int    `db:"reset_policy"`
	Level       int    `db:"definition_level"`
	Kind        int    `db:"number_kind"`
	TotalLength int    `db:"total_length"`
	PadScope    bool   `db:"pad_scope"`
}

// segmentRow maps one ordered row of counter_definition_segments.
type segmentRow struct {
	Position int    `db:"position"`
	Kind     int    `db:"kind"`
	Length   int    `db:"length"`
	Constant string `db:"constant_value"`
}

// DefinitionRepo implements counters.DefinitionSource. Definitions are
// configuration data: this repo only reads them for allocations, plus a
// Save used by the seed tool.
type DefinitionRepo struct {
	db DB
}

// Ensure compile-time interface compliance.
var _ counters.DefinitionSource = (*DefinitionRepo)(nil)

// NewDefinitionRepo creates a counter definition repository.
func NewDefinitionRepo(db DB) *DefinitionRepo {
	return &DefinitionRepo{db: db}
}

// Get loads the definition and its ordered segments.
func (r *DefinitionRepo) Get(ctx context.Context, code string) (*counters.Definition, error) {
	querier := r.db.GetQuerier(ctx)

	q := builder().
		Select("code", "description", "reset_policy", "definition_level", "number_kind", "total_length", "pad_scope").
		From(definitionTable).
		Where(squirrel.Eq{"code": code})

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var row definitionRow
	if err := pgxscan.Get(ctx, querier, &row, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("counter definition", code)
		}
		return nil, apperror.NewDatabase("load counter definition", err).
			WithDetail("counter", code)
	}

	segments, err := r.loadSegments(ctx, code)
	if err != nil {
		return nil, err
	}

	return &counters.Definition{
		Code:        row.Code,
		Description: row.Description,
		ResetPolicy: counters.ResetPolicy(row.ResetPolicy),
		Level:       counters.DefinitionLevel(row.Level),
		Kind:        counters.NumberKind(row.Kind),
		TotalLength: row.TotalLength,
		PadScope:    row.PadScope,
		Segments:    toSegments(segments),
	}, nil
}

func (r *DefinitionRepo) loadSegments(ctx context.Context, code string) ([]segmentRow, error) {
	querier := r.db.GetQuerier(ctx)

	q := builder().
		Select("position", "kind", "length", "constant_value").
		From(segmentTable).
		Where(squirrel.Eq{"code": code}).
		OrderBy("position")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var rows []segmentRow
	if err := pgxscan.Select(ctx, querier, &rows, sql, args...); err != nil {
		return nil, apperror.NewDatabase("load counter segments", err).
			WithDetail("counter", code)
	}

	return rows, nil
}

// Save upserts a definition and replaces its segments, inside one
// transaction. Used by the seed tool and migrations, never by allocations.
func (r *DefinitionRepo) Save(ctx context.Context, def *counters.Definition) error {
	if err := def.Validate(ctx); err != nil {
		return err
	}

	return r.db.RunInTransaction(ctx, func(ctx context.Context) error {
		querier := r.db.GetQuerier(ctx)

		_, err := querier.Exec(ctx, `
			INSERT INTO counter_definitions (code, description, reset_policy, definition_level, number_kind, total_length, pad_scope)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			ON CONFLICT (code) DO UPDATE SET
				description = EXCLUDED.description,
				reset_policy = EXCLUDED.reset_policy,
				definition_level = EXCLUDED.definition_level,
				number_kind = EXCLUDED.number_kind,
				total_length = EXCLUDED.total_length,
				pad_scope = EXCLUDED.pad_scope
		`, def.Code, def.Description, int(def.ResetPolicy), int(def.Level), int(def.Kind), def.TotalLength, def.PadScope)
		if err != nil {
			return apperror.NewDatabase("save counter definition", err).
				WithDetail("counter", def.Code)
		}

		del := builder().Delete(segmentTable).Where(squirrel.Eq{"code": def.Code})
		sql, args, err := del.ToSql()
		if err != nil {
			return fmt.Errorf("build delete: %w", err)
		}
		if _, err := querier.Exec(ctx, sql, args...); err != nil {
			return apperror.NewDatabase("clear counter segments", err).
				WithDetail("counter", def.Code)
		}

		for i, seg := range def.Segments {
			ins := builder().
				Insert(segmentTable).
				Columns("code", "position", "kind", "length", "constant_value").
				Values(def.Code, i, int(seg.Kind), seg.Length, seg.Constant)
			sql, args, err := ins.ToSql()
			if err != nil {
				return fmt.Errorf("build insert: %w", err)
			}
			if _, err := querier.Exec(ctx, sql, args...); err != nil {
				return apperror.NewDatabase("save counter segment", err).
					WithDetail("counter", def.Code).
					WithDetail("segment", i)
			}
		}

		return nil
	})
}

func toSegments(rows []segmentRow) []counters.Segment {
	segments := make([]counters.Segment, 0, len(rows))
	for _, row := range rows {
		segments = append(segments, counters.Segment{
			Kind:     counters.SegmentKind(row.Kind),
			Length:   row.Length,
			Constant: row.Constant,
		})
	}
	return segments
}
