package store

import (
	"context"

	"github.com/google/uuid"

	"github.com/mnemo-app/mnemo-api/internal/domain"
)

// SchedulerConfigStore defines the interface for per-user scheduling
// configuration persistence.
type SchedulerConfigStore interface {
	// GetOrCreate retrieves the user's scheduler configuration, creating and
	// returning the defaults if none exists yet. The returned snapshot is
	// the caller's to use for one scheduling call or queue build; it is not
	// kept in sync with later updates.
	GetOrCreate(ctx context.Context, userID uuid.UUID) (*domain.SchedulerConfig, error)

	// Update persists a modified configuration.
	// Returns ErrConfigNotFound if no configuration exists for the user.
	Update(ctx context.Context, cfg *domain.SchedulerConfig) error
}
