package store

import (
	"context"
	"database/sql"

	"github.com/mnemo-app/mnemo-api/internal/domain"
)

// ReviewLogStore defines the interface for the append-only grading history.
// The scheduling core only writes to it, inside the same transaction as the
// item update it describes; nothing in this module reads it back.
type ReviewLogStore interface {
	// Append records one grading event.
	Append(ctx context.Context, log *domain.ReviewLog) error

	// WithTx returns a new ReviewLogStore instance that uses the provided
	// transaction. The transaction is created and managed by the caller.
	WithTx(tx *sql.Tx) ReviewLogStore
}
