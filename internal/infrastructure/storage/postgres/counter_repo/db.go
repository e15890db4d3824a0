package counter_repo

import (
	"context"

	"numera/internal/infrastructure/storage/postgres"
)

// DB is the slice of *postgres.TxManager the repositories use. Tests
// inject fakes; production code passes the real transaction manager.
type DB interface {
	GetQuerier(ctx context.Context) postgres.Querier
	RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

var _ DB = (*postgres.TxManager)(nil)
