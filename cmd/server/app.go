package main

import (
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/mnemo-app/mnemo-api/internal/config"
	"github.com/mnemo-app/mnemo-api/internal/domain/srs"
	"github.com/mnemo-app/mnemo-api/internal/platform/postgres"
	"github.com/mnemo-app/mnemo-api/internal/queue"
	"github.com/mnemo-app/mnemo-api/internal/service/review"
	"github.com/mnemo-app/mnemo-api/internal/session"
	"github.com/mnemo-app/mnemo-api/internal/store"
)

// application bundles the server's wired dependencies.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	itemStore   store.ItemStore
	cardStore   store.CardStore
	configStore store.SchedulerConfigStore
	logStore    store.ReviewLogStore

	reviewService review.Service
	sessions      *session.Registry

	// returnHorizon is SessionConfig.ReturnHorizonMinutes as a duration.
	returnHorizon time.Duration
}

// newApplication connects to the database and wires every service together.
func newApplication(cfg *config.Config) (*application, error) {
	logger := slog.Default()

	db, err := setupAppDatabase(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to set up database: %w", err)
	}

	itemStore := postgres.NewPostgresItemStore(db, logger)
	cardStore := postgres.NewPostgresCardStore(db, logger)
	configStore := postgres.NewPostgresSchedulerConfigStore(db, logger)
	logStore := postgres.NewPostgresReviewLogStore(db, logger)

	builder := queue.NewBuilder(itemStore, logger)
	reviewService := review.NewService(
		db,
		itemStore,
		cardStore,
		configStore,
		logStore,
		srs.NewService(),
		builder,
		logger,
	)

	return &application{
		config:        cfg,
		logger:        logger,
		db:            db,
		itemStore:     itemStore,
		cardStore:     cardStore,
		configStore:   configStore,
		logStore:      logStore,
		reviewService: reviewService,
		sessions:      session.NewRegistry(),
		returnHorizon: time.Duration(cfg.Session.ReturnHorizonMinutes) * time.Minute,
	}, nil
}

// cleanup releases resources on shutdown.
func (app *application) cleanup() {
	if err := app.db.Close(); err != nil {
		app.logger.Error("Failed to close database connection", "error", err)
	}
}
