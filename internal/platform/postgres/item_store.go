package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/mnemo-app/mnemo-api/internal/domain"
	"github.com/mnemo-app/mnemo-api/internal/platform/logger"
	"github.com/mnemo-app/mnemo-api/internal/store"
)

// itemColumns is the column list shared by every review item SELECT so scans
// stay aligned with a single source of truth.
const itemColumns = `id, user_id, card_id, direction, state, interval_days,
	ease_factor, repetitions, step_index, due_at, first_reviewed_at,
	category, created_at, updated_at`

// PostgresItemStore implements the store.ItemStore interface
// using a PostgreSQL database as the storage backend.
type PostgresItemStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresItemStore creates a new PostgreSQL implementation of the
// ItemStore interface. It accepts a database connection or transaction that
// should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresItemStore(db store.DBTX, logger *slog.Logger) *PostgresItemStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresItemStore{
		db:     db,
		logger: logger.With(slog.String("component", "item_store")),
	}
}

// Ensure PostgresItemStore implements store.ItemStore interface
var _ store.ItemStore = (*PostgresItemStore)(nil)

// CreateMultiple implements store.ItemStore.CreateMultiple
// It saves a batch of review items, validating each before any insert.
func (s *PostgresItemStore) CreateMultiple(ctx context.Context, items []*domain.ReviewItem) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if len(items) == 0 {
		return nil
	}

	for _, item := range items {
		if err := item.Validate(); err != nil {
			log.Warn("review item validation failed during create",
				slog.String("error", err.Error()),
				slog.String("item_id", item.ID.String()))
			return err
		}
	}

	query := `
		INSERT INTO review_items (id, user_id, card_id, direction, state,
			interval_days, ease_factor, repetitions, step_index, due_at,
			first_reviewed_at, category, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`

	for _, item := range items {
		_, err := s.db.ExecContext(
			ctx,
			query,
			item.ID,
			item.UserID,
			item.CardID,
			item.Direction,
			item.State,
			item.Interval,
			item.EaseFactor,
			item.Repetitions,
			item.StepIndex,
			item.DueAt,
			item.FirstReviewedAt,
			item.Category,
			item.CreatedAt,
			item.UpdatedAt,
		)
		if err != nil {
			log.Error("failed to create review item",
				slog.String("error", err.Error()),
				slog.String("item_id", item.ID.String()),
				slog.String("card_id", item.CardID.String()))
			return MapError(err)
		}
	}

	log.Debug("review items created",
		slog.Int("count", len(items)),
		slog.String("user_id", items[0].UserID.String()))
	return nil
}

// GetByID implements store.ItemStore.GetByID
// Returns store.ErrItemNotFound if the item does not exist for the user.
func (s *PostgresItemStore) GetByID(
	ctx context.Context,
	userID, itemID uuid.UUID,
) (*domain.ReviewItem, error) {
	query := fmt.Sprintf(
		"SELECT %s FROM review_items WHERE id = $1 AND user_id = $2",
		itemColumns,
	)
	return s.queryOne(ctx, query, itemID, userID)
}

// GetForUpdate implements store.ItemStore.GetForUpdate
// It acquires a row-level lock, so it must run inside a transaction.
// Returns store.ErrItemNotFound if the item does not exist for the user.
func (s *PostgresItemStore) GetForUpdate(
	ctx context.Context,
	userID, itemID uuid.UUID,
) (*domain.ReviewItem, error) {
	query := fmt.Sprintf(
		"SELECT %s FROM review_items WHERE id = $1 AND user_id = $2 FOR UPDATE",
		itemColumns,
	)
	return s.queryOne(ctx, query, itemID, userID)
}

func (s *PostgresItemStore) queryOne(
	ctx context.Context,
	query string,
	args ...interface{},
) (*domain.ReviewItem, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	item, err := scanItem(s.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrItemNotFound
		}
		log.Error("failed to get review item",
			slog.String("error", err.Error()))
		return nil, MapError(err)
	}

	return item, nil
}

// Update implements store.ItemStore.Update
// Returns store.ErrItemNotFound if the item does not exist.
func (s *PostgresItemStore) Update(ctx context.Context, item *domain.ReviewItem) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := item.Validate(); err != nil {
		log.Warn("review item validation failed during update",
			slog.String("error", err.Error()),
			slog.String("item_id", item.ID.String()))
		return err
	}

	item.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE review_items
		SET state = $1, interval_days = $2, ease_factor = $3,
			repetitions = $4, step_index = $5, due_at = $6,
			first_reviewed_at = $7, category = $8, updated_at = $9
		WHERE id = $10 AND user_id = $11
	`

	result, err := s.db.ExecContext(
		ctx,
		query,
		item.State,
		item.Interval,
		item.EaseFactor,
		item.Repetitions,
		item.StepIndex,
		item.DueAt,
		item.FirstReviewedAt,
		item.Category,
		item.UpdatedAt,
		item.ID,
		item.UserID,
	)
	if err != nil {
		log.Error("failed to update review item",
			slog.String("error", err.Error()),
			slog.String("item_id", item.ID.String()))
		return MapError(err)
	}

	if err := CheckRowsAffected(result, "review item"); err != nil {
		return store.ErrItemNotFound
	}

	log.Debug("review item updated",
		slog.String("item_id", item.ID.String()),
		slog.String("state", string(item.State)))
	return nil
}

// FindDueByState implements store.ItemStore.FindDueByState
// Results are ordered by due time ascending, oldest due first.
func (s *PostgresItemStore) FindDueByState(
	ctx context.Context,
	userID uuid.UUID,
	state domain.ItemState,
	now time.Time,
) ([]*domain.ReviewItem, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM review_items
		WHERE user_id = $1 AND state = $2 AND due_at <= $3
		ORDER BY due_at ASC
	`, itemColumns)

	return s.queryMany(ctx, query, userID, state, now)
}

// FindNew implements store.ItemStore.FindNew
// No ordering is applied; the caller shuffles the full pool.
func (s *PostgresItemStore) FindNew(
	ctx context.Context,
	userID uuid.UUID,
) ([]*domain.ReviewItem, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM review_items
		WHERE user_id = $1 AND state = $2
	`, itemColumns)

	return s.queryMany(ctx, query, userID, domain.ItemStateNew)
}

func (s *PostgresItemStore) queryMany(
	ctx context.Context,
	query string,
	args ...interface{},
) ([]*domain.ReviewItem, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query review items",
			slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var items []*domain.ReviewItem
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			log.Error("failed to scan review item row",
				slog.String("error", err.Error()))
			return nil, MapError(err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	return items, nil
}

// CountIntroducedSince implements store.ItemStore.CountIntroducedSince
// An item counts as introduced once its first_reviewed_at is set, which
// happens exactly when it leaves the NEW state.
func (s *PostgresItemStore) CountIntroducedSince(
	ctx context.Context,
	userID uuid.UUID,
	since time.Time,
) (int, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT COUNT(*) FROM review_items
		WHERE user_id = $1 AND first_reviewed_at >= $2
	`

	var count int
	err := s.db.QueryRowContext(ctx, query, userID, since).Scan(&count)
	if err != nil {
		log.Error("failed to count introduced items",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return 0, MapError(err)
	}

	return count, nil
}

// WithTx implements store.ItemStore.WithTx
// It returns a new ItemStore instance that uses the provided transaction.
func (s *PostgresItemStore) WithTx(tx *sql.Tx) store.ItemStore {
	return &PostgresItemStore{
		db:     tx,
		logger: s.logger,
	}
}

// rowScanner abstracts *sql.Row and *sql.Rows for a shared scan routine.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanItem(row rowScanner) (*domain.ReviewItem, error) {
	var item domain.ReviewItem
	var firstReviewedAt sql.NullTime

	err := row.Scan(
		&item.ID,
		&item.UserID,
		&item.CardID,
		&item.Direction,
		&item.State,
		&item.Interval,
		&item.EaseFactor,
		&item.Repetitions,
		&item.StepIndex,
		&item.DueAt,
		&firstReviewedAt,
		&item.Category,
		&item.CreatedAt,
		&item.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if firstReviewedAt.Valid {
		t := firstReviewedAt.Time
		item.FirstReviewedAt = &t
	}

	return &item, nil
}
