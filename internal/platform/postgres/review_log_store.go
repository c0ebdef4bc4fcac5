package postgres

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/mnemo-app/mnemo-api/internal/domain"
	"github.com/mnemo-app/mnemo-api/internal/platform/logger"
	"github.com/mnemo-app/mnemo-api/internal/store"
)

// PostgresReviewLogStore implements the store.ReviewLogStore interface
// using a PostgreSQL database as the storage backend.
type PostgresReviewLogStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresReviewLogStore creates a new PostgreSQL implementation of the
// ReviewLogStore interface.
// If logger is nil, a default logger will be used.
func NewPostgresReviewLogStore(db store.DBTX, logger *slog.Logger) *PostgresReviewLogStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresReviewLogStore{
		db:     db,
		logger: logger.With(slog.String("component", "review_log_store")),
	}
}

// Ensure PostgresReviewLogStore implements store.ReviewLogStore interface
var _ store.ReviewLogStore = (*PostgresReviewLogStore)(nil)

// Append implements store.ReviewLogStore.Append
// Returns store.ErrInvalidEntity if the referenced item does not exist.
func (s *PostgresReviewLogStore) Append(ctx context.Context, entry *domain.ReviewLog) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := entry.Validate(); err != nil {
		log.Warn("review log validation failed during append",
			slog.String("error", err.Error()),
			slog.String("log_id", entry.ID.String()))
		return err
	}

	query := `
		INSERT INTO review_logs (id, user_id, item_id, grade, state_before,
			state_after, interval_before, interval_after, ease_factor_before,
			ease_factor_after, answered_in_millis, reviewed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := s.db.ExecContext(
		ctx,
		query,
		entry.ID,
		entry.UserID,
		entry.ItemID,
		entry.Grade,
		entry.StateBefore,
		entry.StateAfter,
		entry.IntervalBefore,
		entry.IntervalAfter,
		entry.EaseFactorBefore,
		entry.EaseFactorAfter,
		entry.AnsweredInMillis,
		entry.ReviewedAt,
	)
	if err != nil {
		log.Error("failed to append review log",
			slog.String("error", err.Error()),
			slog.String("item_id", entry.ItemID.String()))
		return MapError(err)
	}

	log.Debug("review log appended",
		slog.String("item_id", entry.ItemID.String()),
		slog.String("grade", string(entry.Grade)))
	return nil
}

// WithTx implements store.ReviewLogStore.WithTx
// It returns a new ReviewLogStore instance that uses the provided transaction.
func (s *PostgresReviewLogStore) WithTx(tx *sql.Tx) store.ReviewLogStore {
	return &PostgresReviewLogStore{
		db:     tx,
		logger: s.logger,
	}
}
