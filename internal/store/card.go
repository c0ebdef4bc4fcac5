package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/mnemo-app/mnemo-api/internal/domain"
)

// CardStore defines the interface for card content persistence. Card content
// editing flows are owned by the outer application; the scheduling core only
// needs to create cards alongside their review items and resolve the content
// an item presents.
type CardStore interface {
	// Create saves a new card. Run inside a transaction together with
	// ItemStore.CreateMultiple so a card and its two facets appear together.
	Create(ctx context.Context, card *domain.Card) error

	// GetByID retrieves a card by its unique ID.
	// Returns ErrCardNotFound if the card does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Card, error)

	// GetByIDs retrieves the cards for a set of IDs, keyed by ID. Missing
	// IDs are simply absent from the result, not an error.
	GetByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*domain.Card, error)

	// WithTx returns a new CardStore instance that uses the provided
	// transaction. The transaction is created and managed by the caller.
	WithTx(tx *sql.Tx) CardStore
}
