// Package counter_repo provides PostgreSQL persistence for the counter
// subsystem: definition rows, sequence value rows and the site directory.
package counter_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"numera/internal/core/apperror"
	appctx "numera/internal/core/context"
	"numera/internal/core/id"
	"numera/internal/domain/counters"
)

const valueTable = "counter_values"

// ValueRepo implements counters.ValueStore against the counter_values table.
//
// Allocation is a single UPSERT with RETURNING: the insert claims 1 for a
// fresh key tuple, the conflict branch bumps the stored value under the
// row lock Postgres takes for the update. Two allocators contending for
// the same tuple serialize on that lock; distinct tuples touch distinct
// rows and never block each other. This holds across processes because
// the lock lives in the database, not in memory.
type ValueRepo struct {
	db DB
}

// Ensure compile-time interface compliance.
var _ counters.ValueStore = (*ValueRepo)(nil)

// NewValueRepo creates a counter value repository.
func NewValueRepo(db DB) *ValueRepo {
	return &ValueRepo{db: db}
}

// Allocate atomically claims the next sequence value for key.
// A fresh key tuple is inserted with value 1 and 1 is returned.
func (r *ValueRepo) Allocate(ctx context.Context, key counters.Key) (int64, error) {
	querier := r.db.GetQuerier(ctx)
	actor := appctx.GetActorCode(ctx)
	now := time.Now().UTC()

	var value int64
	err := querier.QueryRow(ctx, `
		INSERT INTO counter_values (code, scope, period, complement, value, created_by, updated_by, created_at, updated_at, uid)
		VALUES ($1, $2, $3, $4, 1, $5, $5, $6, $6, $7)
		ON CONFLICT (code, scope, period, complement)
		DO UPDATE SET value = counter_values.value + 1, updated_by = $5, updated_at = $6
		RETURNING value
	`, key.Code, key.Scope, key.Period, key.Complement, actor, now, id.New()).Scan(&value)

	if err != nil {
		return 0, apperror.NewDatabase("allocate counter value", err).
			WithDetail("counter", key.Code).
			WithDetail("scope", key.Scope).
			WithDetail("period", key.Period)
	}

	return value, nil
}

// Peek reads the last allocated value without consuming one.
func (r *ValueRepo) Peek(ctx context.Context, key counters.Key) (int64, bool, error) {
	q := builder().
		Select("value").
		From(valueTable).
		Where(squirrel.Eq{
			"code":       key.Code,
			"scope":      key.Scope,
			"period":     key.Period,
			"complement": key.Complement,
		})

	sql, args, err := q.ToSql()
	if err != nil {
		return 0, false, fmt.Errorf("build query: %w", err)
	}

	var value int64
	querier := r.db.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &value, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return 0, false, nil
		}
		return 0, false, apperror.NewDatabase("peek counter value", err).
			WithDetail("counter", key.Code)
	}

	return value, true, nil
}

// Set forces the sequence position for key so the next Allocate returns
// value+1. Intended for migrations from the legacy tables.
func (r *ValueRepo) Set(ctx context.Context, key counters.Key, value int64) error {
	querier := r.db.GetQuerier(ctx)
	actor := appctx.GetActorCode(ctx)
	now := time.Now().UTC()

	_, err := querier.Exec(ctx, `
		INSERT INTO counter_values (code, scope, period, complement, value, created_by, updated_by, created_at, updated_at, uid)
		VALUES ($1, $2, $3, $4, $5, $6, $6, $7, $7, $8)
		ON CONFLICT (code, scope, period, complement)
		DO UPDATE SET value = EXCLUDED.value, updated_by = $6, updated_at = $7
	`, key.Code, key.Scope, key.Period, key.Complement, value, actor, now, id.New())

	if err != nil {
		return apperror.NewDatabase("set counter value", err).
			WithDetail("counter", key.Code).
			WithDetail("value", value)
	}

	return nil
}

// builder returns a squirrel builder with PostgreSQL placeholder format.
func builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}
