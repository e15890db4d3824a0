package counter_repo

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"numera/internal/core/apperror"
	"numera/internal/domain/counters"
	"numera/internal/infrastructure/storage/postgres"
)

// Mock objects

type mockRow struct {
	val int64
	err error
}

func (m *mockRow) Scan(dest ...any) error {
	if m.err != nil {
		return m.err
	}
	if len(dest) > 0 {
		if ptr, ok := dest[0].(*int64); ok {
			*ptr = m.val
		}
	}
	return nil
}

// mockQuerier simulates the counter_values upsert: rows keyed by the
// (code, scope, period, complement) tuple, incremented on conflict.
type mockQuerier struct {
	mu     sync.Mutex
	rows   map[string]int64
	failed error
}

func tupleKey(args []any) string {
	// Allocate and Set both pass code, scope, period, complement first.
	return fmt.Sprintf("%v|%v|%v|%v", args[0], args[1], args[2], args[3])
}

func (m *mockQuerier) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failed != nil {
		return &mockRow{err: m.failed}
	}
	if m.rows == nil {
		m.rows = make(map[string]int64)
	}
	k := tupleKey(args)
	m.rows[k]++
	return &mockRow{val: m.rows[k]}
}

func (m *mockQuerier) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failed != nil {
		return pgconn.CommandTag{}, m.failed
	}
	if m.rows == nil {
		m.rows = make(map[string]int64)
	}
	// Set passes the forced value as args[4].
	if v, ok := args[4].(int64); ok {
		m.rows[tupleKey(args)] = v
	}
	return pgconn.CommandTag{}, nil
}

func (m *mockQuerier) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, errors.New("not implemented")
}

// fakeDB hands out the mock querier and runs transaction bodies inline.
type fakeDB struct {
	q postgres.Querier
}

func (f *fakeDB) GetQuerier(ctx context.Context) postgres.Querier {
	return f.q
}

func (f *fakeDB) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func TestValueRepo_Allocate(t *testing.T) {
	ctx := context.Background()
	q := &mockQuerier{}
	repo := NewValueRepo(&fakeDB{q: q})

	key := counters.Key{Code: "SFACT", Scope: "LIS01", Period: 25}

	for want := int64(1); want <= 3; want++ {
		got, err := repo.Allocate(ctx, key)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != want {
			t.Errorf("expected %d, got %d", want, got)
		}
	}
}

func TestValueRepo_Allocate_DistinctKeys(t *testing.T) {
	ctx := context.Background()
	q := &mockQuerier{}
	repo := NewValueRepo(&fakeDB{q: q})

	a, err := repo.Allocate(ctx, counters.Key{Code: "SFACT", Scope: "LIS01", Period: 25})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := repo.Allocate(ctx, counters.Key{Code: "SFACT", Scope: "POR01", Period: 25})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	c, err := repo.Allocate(ctx, counters.Key{Code: "SFACT", Scope: "LIS01", Period: 24})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if a != 1 || b != 1 || c != 1 {
		t.Errorf("expected independent sequences, got %d %d %d", a, b, c)
	}
}

func TestValueRepo_Allocate_DatabaseError(t *testing.T) {
	ctx := context.Background()
	q := &mockQuerier{failed: errors.New("connection reset")}
	repo := NewValueRepo(&fakeDB{q: q})

	_, err := repo.Allocate(ctx, counters.Key{Code: "SFACT"})
	if err == nil {
		t.Fatal("expected error")
	}
	if !apperror.HasCode(err, apperror.CodeDatabase) {
		t.Errorf("expected database error code, got %v", err)
	}
}

func TestValueRepo_Set(t *testing.T) {
	ctx := context.Background()
	q := &mockQuerier{}
	repo := NewValueRepo(&fakeDB{q: q})

	key := counters.Key{Code: "LOT", Scope: "PT1", Period: 0}

	if err := repo.Set(ctx, key, 500); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// The next allocation continues from the forced position.
	got, err := repo.Allocate(ctx, key)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 501 {
		t.Errorf("expected 501, got %d", got)
	}
}
