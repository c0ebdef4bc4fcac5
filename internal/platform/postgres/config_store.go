package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/mnemo-app/mnemo-api/internal/domain"
	"github.com/mnemo-app/mnemo-api/internal/platform/logger"
	"github.com/mnemo-app/mnemo-api/internal/store"
)

// PostgresSchedulerConfigStore implements the store.SchedulerConfigStore
// interface using a PostgreSQL database as the storage backend. The step
// ladders and excluded category list are stored as JSONB columns.
type PostgresSchedulerConfigStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresSchedulerConfigStore creates a new PostgreSQL implementation of
// the SchedulerConfigStore interface.
// If logger is nil, a default logger will be used.
func NewPostgresSchedulerConfigStore(
	db store.DBTX,
	logger *slog.Logger,
) *PostgresSchedulerConfigStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresSchedulerConfigStore{
		db:     db,
		logger: logger.With(slog.String("component", "scheduler_config_store")),
	}
}

// Ensure PostgresSchedulerConfigStore implements store.SchedulerConfigStore interface
var _ store.SchedulerConfigStore = (*PostgresSchedulerConfigStore)(nil)

const configColumns = `user_id, new_per_day, max_reviews_per_day,
	learning_steps, relearning_steps, graduating_interval, easy_interval,
	starting_ease, easy_bonus, interval_modifier, maximum_interval,
	lapse_recovery_percent, excluded_categories, created_at, updated_at`

// GetOrCreate implements store.SchedulerConfigStore.GetOrCreate
// If no configuration exists for the user, the defaults are inserted and
// returned. A concurrent first call may win the insert; the loser re-reads.
func (s *PostgresSchedulerConfigStore) GetOrCreate(
	ctx context.Context,
	userID uuid.UUID,
) (*domain.SchedulerConfig, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	cfg, err := s.get(ctx, userID)
	if err == nil {
		return cfg, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		log.Error("failed to get scheduler config",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, MapError(err)
	}

	defaults := domain.DefaultSchedulerConfig(userID)
	if err := s.insert(ctx, defaults); err != nil {
		if IsUniqueViolation(err) {
			// Lost the race to another first caller; their row is ours.
			return s.GetOrCreate(ctx, userID)
		}
		log.Error("failed to create default scheduler config",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, MapError(err)
	}

	log.Info("default scheduler config created",
		slog.String("user_id", userID.String()))
	return defaults, nil
}

// Update implements store.SchedulerConfigStore.Update
// Returns store.ErrConfigNotFound if no configuration exists for the user.
func (s *PostgresSchedulerConfigStore) Update(
	ctx context.Context,
	cfg *domain.SchedulerConfig,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := cfg.Validate(); err != nil {
		log.Warn("scheduler config validation failed during update",
			slog.String("error", err.Error()),
			slog.String("user_id", cfg.UserID.String()))
		return err
	}

	learning, relearning, excluded, err := marshalConfigLists(cfg)
	if err != nil {
		return err
	}

	cfg.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE scheduler_configs
		SET new_per_day = $1, max_reviews_per_day = $2, learning_steps = $3,
			relearning_steps = $4, graduating_interval = $5, easy_interval = $6,
			starting_ease = $7, easy_bonus = $8, interval_modifier = $9,
			maximum_interval = $10, lapse_recovery_percent = $11,
			excluded_categories = $12, updated_at = $13
		WHERE user_id = $14
	`

	result, err := s.db.ExecContext(
		ctx,
		query,
		cfg.NewPerDay,
		cfg.MaxReviewsPerDay,
		learning,
		relearning,
		cfg.GraduatingInterval,
		cfg.EasyInterval,
		cfg.StartingEase,
		cfg.EasyBonus,
		cfg.IntervalModifier,
		cfg.MaximumInterval,
		cfg.LapseRecoveryPercent,
		excluded,
		cfg.UpdatedAt,
		cfg.UserID,
	)
	if err != nil {
		log.Error("failed to update scheduler config",
			slog.String("error", err.Error()),
			slog.String("user_id", cfg.UserID.String()))
		return MapError(err)
	}

	if err := CheckRowsAffected(result, "scheduler config"); err != nil {
		return store.ErrConfigNotFound
	}

	log.Info("scheduler config updated",
		slog.String("user_id", cfg.UserID.String()))
	return nil
}

func (s *PostgresSchedulerConfigStore) get(
	ctx context.Context,
	userID uuid.UUID,
) (*domain.SchedulerConfig, error) {
	query := fmt.Sprintf(
		"SELECT %s FROM scheduler_configs WHERE user_id = $1",
		configColumns,
	)

	var cfg domain.SchedulerConfig
	var learning, relearning, excluded []byte

	err := s.db.QueryRowContext(ctx, query, userID).Scan(
		&cfg.UserID,
		&cfg.NewPerDay,
		&cfg.MaxReviewsPerDay,
		&learning,
		&relearning,
		&cfg.GraduatingInterval,
		&cfg.EasyInterval,
		&cfg.StartingEase,
		&cfg.EasyBonus,
		&cfg.IntervalModifier,
		&cfg.MaximumInterval,
		&cfg.LapseRecoveryPercent,
		&excluded,
		&cfg.CreatedAt,
		&cfg.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(learning, &cfg.LearningSteps); err != nil {
		return nil, fmt.Errorf("failed to decode learning steps: %w", err)
	}
	if err := json.Unmarshal(relearning, &cfg.RelearningSteps); err != nil {
		return nil, fmt.Errorf("failed to decode relearning steps: %w", err)
	}
	if len(excluded) > 0 {
		if err := json.Unmarshal(excluded, &cfg.ExcludedCategories); err != nil {
			return nil, fmt.Errorf("failed to decode excluded categories: %w", err)
		}
	}

	return &cfg, nil
}

func (s *PostgresSchedulerConfigStore) insert(
	ctx context.Context,
	cfg *domain.SchedulerConfig,
) error {
	learning, relearning, excluded, err := marshalConfigLists(cfg)
	if err != nil {
		return err
	}

	query := fmt.Sprintf(`
		INSERT INTO scheduler_configs (%s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`, configColumns)

	_, err = s.db.ExecContext(
		ctx,
		query,
		cfg.UserID,
		cfg.NewPerDay,
		cfg.MaxReviewsPerDay,
		learning,
		relearning,
		cfg.GraduatingInterval,
		cfg.EasyInterval,
		cfg.StartingEase,
		cfg.EasyBonus,
		cfg.IntervalModifier,
		cfg.MaximumInterval,
		cfg.LapseRecoveryPercent,
		excluded,
		cfg.CreatedAt,
		cfg.UpdatedAt,
	)
	return err
}

func marshalConfigLists(cfg *domain.SchedulerConfig) ([]byte, []byte, []byte, error) {
	learning, err := json.Marshal(cfg.LearningSteps)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to encode learning steps: %w", err)
	}

	relearning, err := json.Marshal(cfg.RelearningSteps)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to encode relearning steps: %w", err)
	}

	excluded, err := json.Marshal(cfg.ExcludedCategories)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to encode excluded categories: %w", err)
	}

	return learning, relearning, excluded, nil
}
