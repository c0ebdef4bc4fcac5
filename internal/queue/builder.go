// Package queue assembles the set of review items a user should see in one
// session: everything already due, plus a capped, uniformly sampled batch of
// never-seen items subject to the daily budget and category opt-outs.
package queue

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/mnemo-app/mnemo-api/internal/domain"
	"github.com/mnemo-app/mnemo-api/internal/platform/logger"
	"github.com/mnemo-app/mnemo-api/internal/store"
)

// Stats summarises what a queue build selected.
type Stats struct {
	DueCount          int `json:"due_count"`
	NewCount          int `json:"new_count"`
	LearningCount     int `json:"learning_count"`
	Total             int `json:"total"`
	NewRemainingToday int `json:"new_remaining_today"`
}

// Builder composes session queues from the item store. It classifies items by
// their persisted state only; all state transitions belong to the scheduling
// engine.
type Builder struct {
	items  store.ItemStore
	logger *slog.Logger
}

// NewBuilder creates a queue builder backed by the given item store.
// If logger is nil, the default logger is used.
func NewBuilder(items store.ItemStore, logger *slog.Logger) *Builder {
	if items == nil {
		panic("items store cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Builder{
		items:  items,
		logger: logger.With(slog.String("component", "queue_builder")),
	}
}

// BuildQueue assembles the user's session queue for the given moment: due
// review items, due learning and relearning items, and, budget permitting,
// a uniform sample of the full new-item pool. extraNew raises the new-item
// target past the daily budget for "continue past the daily limit" flows.
//
// The caller must have provisioned the scheduler config beforehand; store
// failures propagate to the caller unretried.
func (b *Builder) BuildQueue(
	ctx context.Context,
	userID uuid.UUID,
	cfg *domain.SchedulerConfig,
	now time.Time,
	extraNew int,
) ([]*domain.ReviewItem, Stats, error) {
	log := logger.FromContextOrDefault(ctx, b.logger)

	dayStart := startOfDay(now)

	// The four reads are independent of each other; fan them out.
	var (
		dueReview, dueLearning, dueRelearning []*domain.ReviewItem
		introducedToday                       int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		dueReview, err = b.items.FindDueByState(gctx, userID, domain.ItemStateReview, now)
		return err
	})
	g.Go(func() error {
		var err error
		dueLearning, err = b.items.FindDueByState(gctx, userID, domain.ItemStateLearning, now)
		return err
	})
	g.Go(func() error {
		var err error
		dueRelearning, err = b.items.FindDueByState(gctx, userID, domain.ItemStateRelearning, now)
		return err
	})
	g.Go(func() error {
		var err error
		introducedToday, err = b.items.CountIntroducedSince(gctx, userID, dayStart)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, Stats{}, fmt.Errorf("failed to load due items: %w", err)
	}

	if cfg.MaxReviewsPerDay > 0 && len(dueReview) > cfg.MaxReviewsPerDay {
		dueReview = dueReview[:cfg.MaxReviewsPerDay]
	}

	remainingNew := cfg.NewPerDay - introducedToday
	if remainingNew < 0 {
		remainingNew = 0
	}
	targetNew := remainingNew + extraNew

	var selectedNew []*domain.ReviewItem
	if targetNew > 0 {
		pool, err := b.items.FindNew(ctx, userID)
		if err != nil {
			return nil, Stats{}, fmt.Errorf("failed to load new items: %w", err)
		}

		filtered := pool[:0:0]
		for _, item := range pool {
			if !cfg.ExcludesCategory(item.Category) {
				filtered = append(filtered, item)
			}
		}

		// Shuffle the whole filtered pool, not just a page of it, so the
		// forward and reverse facets of one card (adjacent in storage) do
		// not systematically show up back to back.
		rand.Shuffle(len(filtered), func(i, j int) {
			filtered[i], filtered[j] = filtered[j], filtered[i]
		})

		if targetNew > len(filtered) {
			targetNew = len(filtered)
		}
		selectedNew = filtered[:targetNew]
	}

	items := make([]*domain.ReviewItem, 0,
		len(dueReview)+len(dueLearning)+len(dueRelearning)+len(selectedNew))
	items = append(items, dueReview...)
	items = append(items, dueLearning...)
	items = append(items, dueRelearning...)
	items = append(items, selectedNew...)

	newRemaining := remainingNew - len(selectedNew)
	if newRemaining < 0 {
		newRemaining = 0
	}

	stats := Stats{
		DueCount:          len(dueReview),
		NewCount:          len(selectedNew),
		LearningCount:     len(dueLearning) + len(dueRelearning),
		Total:             len(items),
		NewRemainingToday: newRemaining,
	}

	log.Debug("queue built",
		slog.String("user_id", userID.String()),
		slog.Int("due", stats.DueCount),
		slog.Int("learning", stats.LearningCount),
		slog.Int("new", stats.NewCount),
		slog.Int("new_remaining_today", stats.NewRemainingToday))

	return items, stats, nil
}

func startOfDay(now time.Time) time.Time {
	yy, mm, dd := now.UTC().Date()
	return time.Date(yy, mm, dd, 0, 0, 0, 0, time.UTC)
}
