package review

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/mnemo-app/mnemo-api/internal/domain"
	"github.com/mnemo-app/mnemo-api/internal/domain/srs"
	"github.com/mnemo-app/mnemo-api/internal/platform/logger"
	"github.com/mnemo-app/mnemo-api/internal/queue"
	"github.com/mnemo-app/mnemo-api/internal/store"
)

// Verify interface compliance at compile time
var _ Service = (*serviceImpl)(nil)

// serviceImpl implements the Service interface.
type serviceImpl struct {
	db         *sql.DB
	items      store.ItemStore
	cards      store.CardStore
	configs    store.SchedulerConfigStore
	logs       store.ReviewLogStore
	srsService srs.Service
	builder    *queue.Builder
	logger     *slog.Logger
	now        func() time.Time
}

// NewService creates a new review Service implementation.
func NewService(
	db *sql.DB,
	items store.ItemStore,
	cards store.CardStore,
	configs store.SchedulerConfigStore,
	logs store.ReviewLogStore,
	srsService srs.Service,
	builder *queue.Builder,
	logger *slog.Logger,
) Service {
	if db == nil {
		panic("db cannot be nil")
	}
	if items == nil {
		panic("items store cannot be nil")
	}
	if cards == nil {
		panic("cards store cannot be nil")
	}
	if configs == nil {
		panic("configs store cannot be nil")
	}
	if logs == nil {
		panic("logs store cannot be nil")
	}
	if srsService == nil {
		panic("srsService cannot be nil")
	}
	if builder == nil {
		panic("builder cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &serviceImpl{
		db:         db,
		items:      items,
		cards:      cards,
		configs:    configs,
		logs:       logs,
		srsService: srsService,
		builder:    builder,
		logger:     logger.With(slog.String("component", "review_service")),
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// SubmitAnswer implements Service.SubmitAnswer.
// It grades one item and persists the new schedule and a review log entry in
// a single transaction, with the item row locked throughout.
func (s *serviceImpl) SubmitAnswer(
	ctx context.Context,
	userID uuid.UUID,
	itemID uuid.UUID,
	answer ReviewAnswer,
) (*domain.ReviewItem, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	log.Debug("processing review answer",
		slog.String("user_id", userID.String()),
		slog.String("item_id", itemID.String()),
		slog.String("grade", string(answer.Grade)))

	if !answer.Grade.IsValid() {
		log.Warn("invalid review grade",
			slog.String("user_id", userID.String()),
			slog.String("item_id", itemID.String()),
			slog.String("grade", string(answer.Grade)))
		return nil, ErrInvalidAnswer
	}

	// The config snapshot is read outside the transaction; a concurrent
	// settings change applies from the next answer onward.
	cfg, err := s.configs.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, NewSubmitAnswerError("failed to load scheduler config", err)
	}

	now := s.now()
	var updated *domain.ReviewItem

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txItems := s.items.WithTx(tx)

		item, err := txItems.GetForUpdate(ctx, userID, itemID)
		if err != nil {
			if errors.Is(err, store.ErrItemNotFound) {
				log.Warn("review item not found for answer",
					slog.String("user_id", userID.String()),
					slog.String("item_id", itemID.String()))
				return ErrItemNotFound
			}
			return fmt.Errorf("failed to get review item: %w", err)
		}

		entry := &domain.ReviewLog{
			ID:               uuid.New(),
			UserID:           userID,
			ItemID:           itemID,
			Grade:            answer.Grade,
			StateBefore:      item.State,
			IntervalBefore:   item.Interval,
			EaseFactorBefore: item.EaseFactor,
			AnsweredInMillis: answer.AnsweredInMillis,
			ReviewedAt:       now,
		}

		result, err := s.srsService.Schedule(item, answer.Grade, cfg, now)
		if err != nil {
			return fmt.Errorf("failed to compute next schedule: %w", err)
		}

		applyResult(item, result)
		if item.FirstReviewedAt == nil {
			// First grading of this item: it leaves the NEW state now.
			t := now
			item.FirstReviewedAt = &t
		}

		entry.StateAfter = item.State
		entry.IntervalAfter = item.Interval
		entry.EaseFactorAfter = item.EaseFactor

		if err := txItems.Update(ctx, item); err != nil {
			return fmt.Errorf("failed to update review item: %w", err)
		}

		if err := s.logs.WithTx(tx).Append(ctx, entry); err != nil {
			return fmt.Errorf("failed to append review log: %w", err)
		}

		updated = item
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrItemNotFound) || errors.Is(err, ErrInvalidAnswer) {
			return nil, err
		}
		log.Error("failed to submit answer",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()),
			slog.String("item_id", itemID.String()))
		return nil, NewSubmitAnswerError("transaction failed", err)
	}

	log.Info("review answer processed",
		slog.String("user_id", userID.String()),
		slog.String("item_id", itemID.String()),
		slog.String("grade", string(answer.Grade)),
		slog.String("new_state", string(updated.State)),
		slog.Time("due_at", updated.DueAt))
	return updated, nil
}

// BuildSessionQueue implements Service.BuildSessionQueue.
func (s *serviceImpl) BuildSessionQueue(
	ctx context.Context,
	userID uuid.UUID,
	extraNew int,
) ([]*domain.ReviewItem, queue.Stats, error) {
	cfg, err := s.configs.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, queue.Stats{}, NewBuildQueueError("failed to load scheduler config", err)
	}

	items, stats, err := s.builder.BuildQueue(ctx, userID, cfg, s.now(), extraNew)
	if err != nil {
		return nil, queue.Stats{}, NewBuildQueueError("failed to build queue", err)
	}

	return items, stats, nil
}

// CreateCard implements Service.CreateCard.
// The card and both of its review items are created atomically.
func (s *serviceImpl) CreateCard(
	ctx context.Context,
	userID uuid.UUID,
	content NewCardContent,
) (*domain.Card, []*domain.ReviewItem, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	card, err := domain.NewCard(userID, content.Front, content.Back, content.Category)
	if err != nil {
		return nil, nil, err
	}

	forward, err := domain.NewReviewItem(userID, card.ID, domain.DirectionForward, card.Category)
	if err != nil {
		return nil, nil, err
	}
	reverse, err := domain.NewReviewItem(userID, card.ID, domain.DirectionReverse, card.Category)
	if err != nil {
		return nil, nil, err
	}
	items := []*domain.ReviewItem{forward, reverse}

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		if err := s.cards.WithTx(tx).Create(ctx, card); err != nil {
			return fmt.Errorf("failed to create card: %w", err)
		}
		if err := s.items.WithTx(tx).CreateMultiple(ctx, items); err != nil {
			return fmt.Errorf("failed to create review items: %w", err)
		}
		return nil
	})
	if err != nil {
		log.Error("failed to create card",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, nil, NewCreateCardError("transaction failed", err)
	}

	log.Info("card created with review items",
		slog.String("card_id", card.ID.String()),
		slog.String("user_id", userID.String()))
	return card, items, nil
}

// PostponeItem implements Service.PostponeItem.
func (s *serviceImpl) PostponeItem(
	ctx context.Context,
	userID uuid.UUID,
	itemID uuid.UUID,
	days int,
) (*domain.ReviewItem, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if days < 1 {
		return nil, ErrInvalidPostpone
	}

	now := s.now()
	var updated *domain.ReviewItem

	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txItems := s.items.WithTx(tx)

		item, err := txItems.GetForUpdate(ctx, userID, itemID)
		if err != nil {
			if errors.Is(err, store.ErrItemNotFound) {
				return ErrItemNotFound
			}
			return fmt.Errorf("failed to get review item: %w", err)
		}

		result, err := s.srsService.Postpone(item, days, now)
		if err != nil {
			return fmt.Errorf("failed to postpone item: %w", err)
		}

		applyResult(item, result)
		if err := txItems.Update(ctx, item); err != nil {
			return fmt.Errorf("failed to update review item: %w", err)
		}

		updated = item
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrItemNotFound) {
			return nil, err
		}
		log.Error("failed to postpone review item",
			slog.String("error", err.Error()),
			slog.String("item_id", itemID.String()))
		return nil, err
	}

	log.Info("review item postponed",
		slog.String("item_id", itemID.String()),
		slog.Int("days", days),
		slog.Time("due_at", updated.DueAt))
	return updated, nil
}

// GetCards implements Service.GetCards.
func (s *serviceImpl) GetCards(
	ctx context.Context,
	ids []uuid.UUID,
) (map[uuid.UUID]*domain.Card, error) {
	return s.cards.GetByIDs(ctx, ids)
}

// Config implements Service.Config.
func (s *serviceImpl) Config(
	ctx context.Context,
	userID uuid.UUID,
) (*domain.SchedulerConfig, error) {
	return s.configs.GetOrCreate(ctx, userID)
}

// UpdateConfig implements Service.UpdateConfig.
func (s *serviceImpl) UpdateConfig(ctx context.Context, cfg *domain.SchedulerConfig) error {
	return s.configs.Update(ctx, cfg)
}

// applyResult copies an engine result onto the item. The result is the only
// way scheduling state changes.
func applyResult(item *domain.ReviewItem, result srs.Result) {
	item.State = result.State
	item.Interval = result.Interval
	item.EaseFactor = result.EaseFactor
	item.Repetitions = result.Repetitions
	item.StepIndex = result.StepIndex
	item.DueAt = result.DueAt
}
