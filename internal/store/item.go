package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/mnemo-app/mnemo-api/internal/domain"
)

// ItemStore defines the interface for review item persistence. It covers both
// single-item access used when grading and the bulk queries the queue builder
// composes a session from.
type ItemStore interface {
	// CreateMultiple saves multiple review items. Callers creating a card's
	// forward and reverse facets together must run this inside a transaction
	// via WithTx and RunInTransaction so the pair is atomic.
	CreateMultiple(ctx context.Context, items []*domain.ReviewItem) error

	// GetByID retrieves an item by its unique ID.
	// Returns ErrItemNotFound if the item does not exist.
	GetByID(ctx context.Context, userID, itemID uuid.UUID) (*domain.ReviewItem, error)

	// GetForUpdate retrieves an item with a row-level lock (SELECT FOR
	// UPDATE). Use inside a transaction when grading, so concurrent grades
	// of the same item are serialised by the store.
	// Returns ErrItemNotFound if the item does not exist.
	GetForUpdate(ctx context.Context, userID, itemID uuid.UUID) (*domain.ReviewItem, error)

	// Update persists a modified item. The item's ID identifies the row.
	// Returns ErrItemNotFound if the item does not exist.
	Update(ctx context.Context, item *domain.ReviewItem) error

	// FindDueByState returns the user's items in the given state whose due
	// time is at or before now, ordered by due time ascending.
	FindDueByState(
		ctx context.Context,
		userID uuid.UUID,
		state domain.ItemState,
		now time.Time,
	) ([]*domain.ReviewItem, error)

	// FindNew returns all of the user's never-seen items as one logical set.
	// The queue builder shuffles the full pool itself, so no ordering is
	// guaranteed or required.
	FindNew(ctx context.Context, userID uuid.UUID) ([]*domain.ReviewItem, error)

	// CountIntroducedSince returns how many of the user's items left the NEW
	// state at or after the given time. Used to enforce the daily new-item
	// budget.
	CountIntroducedSince(ctx context.Context, userID uuid.UUID, since time.Time) (int, error)

	// WithTx returns a new ItemStore instance that uses the provided
	// transaction. The transaction is created and managed by the caller.
	WithTx(tx *sql.Tx) ItemStore
}
