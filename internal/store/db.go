package store

import (
	"context"
	"database/sql"
)

// DBTX abstracts the database handle the stores run queries against.
// Both *sql.DB and *sql.Tx satisfy it, so a store can execute directly
// against the pool or participate in a caller-managed transaction via
// its WithTx method.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}
