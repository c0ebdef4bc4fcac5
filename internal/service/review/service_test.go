package review

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mnemo-app/mnemo-api/internal/domain"
	"github.com/mnemo-app/mnemo-api/internal/domain/srs"
	"github.com/mnemo-app/mnemo-api/internal/queue"
	"github.com/mnemo-app/mnemo-api/internal/store"
)

// fakeItemStore implements store.ItemStore in memory for tests that never
// open a transaction.
type fakeItemStore struct {
	due   map[domain.ItemState][]*domain.ReviewItem
	pool  []*domain.ReviewItem
	intro int
}

var _ store.ItemStore = (*fakeItemStore)(nil)

func (f *fakeItemStore) CreateMultiple(_ context.Context, items []*domain.ReviewItem) error {
	f.pool = append(f.pool, items...)
	return nil
}

func (f *fakeItemStore) GetByID(_ context.Context, _, _ uuid.UUID) (*domain.ReviewItem, error) {
	return nil, store.ErrItemNotFound
}

func (f *fakeItemStore) GetForUpdate(_ context.Context, _, _ uuid.UUID) (*domain.ReviewItem, error) {
	return nil, store.ErrItemNotFound
}

func (f *fakeItemStore) Update(_ context.Context, _ *domain.ReviewItem) error {
	return nil
}

func (f *fakeItemStore) FindDueByState(
	_ context.Context,
	_ uuid.UUID,
	state domain.ItemState,
	_ time.Time,
) ([]*domain.ReviewItem, error) {
	return f.due[state], nil
}

func (f *fakeItemStore) FindNew(_ context.Context, _ uuid.UUID) ([]*domain.ReviewItem, error) {
	return f.pool, nil
}

func (f *fakeItemStore) CountIntroducedSince(
	_ context.Context,
	_ uuid.UUID,
	_ time.Time,
) (int, error) {
	return f.intro, nil
}

func (f *fakeItemStore) WithTx(_ *sql.Tx) store.ItemStore { return f }

// fakeConfigStore returns a fixed config for every user.
type fakeConfigStore struct {
	cfg     *domain.SchedulerConfig
	updated *domain.SchedulerConfig
}

var _ store.SchedulerConfigStore = (*fakeConfigStore)(nil)

func (f *fakeConfigStore) GetOrCreate(
	_ context.Context,
	userID uuid.UUID,
) (*domain.SchedulerConfig, error) {
	if f.cfg != nil {
		return f.cfg, nil
	}
	return domain.DefaultSchedulerConfig(userID), nil
}

func (f *fakeConfigStore) Update(_ context.Context, cfg *domain.SchedulerConfig) error {
	f.updated = cfg
	return nil
}

type fakeCardStore struct {
	cards map[uuid.UUID]*domain.Card
}

var _ store.CardStore = (*fakeCardStore)(nil)

func (f *fakeCardStore) Create(_ context.Context, card *domain.Card) error {
	if f.cards == nil {
		f.cards = make(map[uuid.UUID]*domain.Card)
	}
	f.cards[card.ID] = card
	return nil
}

func (f *fakeCardStore) GetByID(_ context.Context, id uuid.UUID) (*domain.Card, error) {
	card, ok := f.cards[id]
	if !ok {
		return nil, store.ErrCardNotFound
	}
	return card, nil
}

func (f *fakeCardStore) GetByIDs(
	_ context.Context,
	ids []uuid.UUID,
) (map[uuid.UUID]*domain.Card, error) {
	out := make(map[uuid.UUID]*domain.Card)
	for _, id := range ids {
		if card, ok := f.cards[id]; ok {
			out[id] = card
		}
	}
	return out, nil
}

func (f *fakeCardStore) WithTx(_ *sql.Tx) store.CardStore { return f }

type fakeLogStore struct {
	entries []*domain.ReviewLog
}

var _ store.ReviewLogStore = (*fakeLogStore)(nil)

func (f *fakeLogStore) Append(_ context.Context, entry *domain.ReviewLog) error {
	f.entries = append(f.entries, entry)
	return nil
}

func (f *fakeLogStore) WithTx(_ *sql.Tx) store.ReviewLogStore { return f }

func newTestService(t *testing.T, items *fakeItemStore, configs *fakeConfigStore) Service {
	t.Helper()

	// sql.Open does not connect; the handle only backs paths these tests
	// never reach.
	db, err := sql.Open("pgx", "postgres://localhost:5432/unused")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return NewService(
		db,
		items,
		&fakeCardStore{},
		configs,
		&fakeLogStore{},
		srs.NewService(),
		queue.NewBuilder(items, nil),
		nil,
	)
}

func TestSubmitAnswerValidation(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, &fakeItemStore{}, &fakeConfigStore{})

	_, err := svc.SubmitAnswer(
		context.Background(),
		uuid.New(),
		uuid.New(),
		ReviewAnswer{Grade: domain.Grade("perfect")},
	)
	assert.ErrorIs(t, err, ErrInvalidAnswer)
}

func TestPostponeItemValidation(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, &fakeItemStore{}, &fakeConfigStore{})

	_, err := svc.PostponeItem(context.Background(), uuid.New(), uuid.New(), 0)
	assert.ErrorIs(t, err, ErrInvalidPostpone)
}

func TestBuildSessionQueue(t *testing.T) {
	t.Parallel()

	userID := uuid.New()

	dueItem := &domain.ReviewItem{ID: uuid.New(), State: domain.ItemStateReview}
	newItems := make([]*domain.ReviewItem, 4)
	for i := range newItems {
		newItems[i] = &domain.ReviewItem{ID: uuid.New(), State: domain.ItemStateNew}
	}

	items := &fakeItemStore{
		due:  map[domain.ItemState][]*domain.ReviewItem{domain.ItemStateReview: {dueItem}},
		pool: newItems,
	}
	cfg := domain.DefaultSchedulerConfig(userID)
	cfg.NewPerDay = 2

	svc := newTestService(t, items, &fakeConfigStore{cfg: cfg})

	queueItems, stats, err := svc.BuildSessionQueue(context.Background(), userID, 0)
	require.NoError(t, err)

	assert.Len(t, queueItems, 3, "one due review plus two budgeted new items")
	assert.Equal(t, 1, stats.DueCount)
	assert.Equal(t, 2, stats.NewCount)
}

func TestServiceErrorWrapping(t *testing.T) {
	t.Parallel()

	inner := store.ErrItemNotFound
	err := NewSubmitAnswerError("failed", inner)

	assert.ErrorIs(t, err, store.ErrItemNotFound)

	var svcErr *ServiceError
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, "submit_answer", svcErr.Operation)
}

func TestUpdateConfigPassthrough(t *testing.T) {
	t.Parallel()

	configs := &fakeConfigStore{}
	svc := newTestService(t, &fakeItemStore{}, configs)

	cfg := domain.DefaultSchedulerConfig(uuid.New())
	cfg.NewPerDay = 5

	require.NoError(t, svc.UpdateConfig(context.Background(), cfg))
	assert.Same(t, cfg, configs.updated)
}
