package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mnemo-app/mnemo-api/internal/domain"
	"github.com/mnemo-app/mnemo-api/internal/store"
	"github.com/mnemo-app/mnemo-api/internal/testdb"
)

// seedCardWithItems inserts a card and both of its review facets inside the
// test transaction.
func seedCardWithItems(
	t *testing.T,
	tx *sql.Tx,
	userID uuid.UUID,
	category string,
) (*domain.Card, []*domain.ReviewItem) {
	t.Helper()

	ctx := context.Background()

	card, err := domain.NewCard(userID, "front text", "back text", category)
	require.NoError(t, err)
	require.NoError(t, NewPostgresCardStore(tx, nil).Create(ctx, card))

	forward, err := domain.NewReviewItem(userID, card.ID, domain.DirectionForward, category)
	require.NoError(t, err)
	reverse, err := domain.NewReviewItem(userID, card.ID, domain.DirectionReverse, category)
	require.NoError(t, err)

	items := []*domain.ReviewItem{forward, reverse}
	require.NoError(t, NewPostgresItemStore(tx, nil).CreateMultiple(ctx, items))
	return card, items
}

func TestItemStoreRoundTrip(t *testing.T) {
	db := testdb.MustOpen(t)

	testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
		ctx := context.Background()
		userID := uuid.New()
		itemStore := NewPostgresItemStore(tx, nil)

		_, items := seedCardWithItems(t, tx, userID, "geography")
		forward := items[0]

		t.Run("get by ID", func(t *testing.T) {
			got, err := itemStore.GetByID(ctx, userID, forward.ID)
			require.NoError(t, err)
			assert.Equal(t, forward.ID, got.ID)
			assert.Equal(t, domain.ItemStateNew, got.State)
			assert.Nil(t, got.FirstReviewedAt)
		})

		t.Run("wrong user is not found", func(t *testing.T) {
			_, err := itemStore.GetByID(ctx, uuid.New(), forward.ID)
			assert.ErrorIs(t, err, store.ErrItemNotFound)
		})

		t.Run("update persists schedule and introduction time", func(t *testing.T) {
			now := time.Now().UTC().Truncate(time.Millisecond)

			forward.State = domain.ItemStateLearning
			forward.DueAt = now.Add(10 * time.Minute)
			forward.FirstReviewedAt = &now
			require.NoError(t, itemStore.Update(ctx, forward))

			got, err := itemStore.GetByID(ctx, userID, forward.ID)
			require.NoError(t, err)
			assert.Equal(t, domain.ItemStateLearning, got.State)
			require.NotNil(t, got.FirstReviewedAt)
			assert.WithinDuration(t, now, *got.FirstReviewedAt, time.Second)

			count, err := itemStore.CountIntroducedSince(ctx, userID, now.Add(-time.Minute))
			require.NoError(t, err)
			assert.Equal(t, 1, count)
		})

		t.Run("find new excludes introduced items", func(t *testing.T) {
			pool, err := itemStore.FindNew(ctx, userID)
			require.NoError(t, err)
			require.Len(t, pool, 1)
			assert.Equal(t, items[1].ID, pool[0].ID)
		})

		t.Run("find due by state", func(t *testing.T) {
			due, err := itemStore.FindDueByState(
				ctx, userID, domain.ItemStateLearning, time.Now().UTC().Add(time.Hour))
			require.NoError(t, err)
			require.Len(t, due, 1)
			assert.Equal(t, forward.ID, due[0].ID)
		})

		t.Run("update of missing item is not found", func(t *testing.T) {
			ghost := *forward
			ghost.ID = uuid.New()
			assert.ErrorIs(t, itemStore.Update(ctx, &ghost), store.ErrItemNotFound)
		})
	})
}

func TestItemStoreDuplicateFacet(t *testing.T) {
	db := testdb.MustOpen(t)

	testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
		ctx := context.Background()
		userID := uuid.New()

		card, _ := seedCardWithItems(t, tx, userID, "")

		// A second forward item for the same card violates the facet
		// uniqueness constraint.
		dup, err := domain.NewReviewItem(userID, card.ID, domain.DirectionForward, "")
		require.NoError(t, err)

		err = NewPostgresItemStore(tx, nil).CreateMultiple(ctx, []*domain.ReviewItem{dup})
		assert.ErrorIs(t, err, store.ErrDuplicate)
	})
}

func TestSchedulerConfigStoreGetOrCreate(t *testing.T) {
	db := testdb.MustOpen(t)

	testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
		ctx := context.Background()
		userID := uuid.New()
		configStore := NewPostgresSchedulerConfigStore(tx, nil)

		cfg, err := configStore.GetOrCreate(ctx, userID)
		require.NoError(t, err)
		assert.Equal(t, 20, cfg.NewPerDay)
		assert.Equal(t, []float64{1, 10}, cfg.LearningSteps)

		cfg.NewPerDay = 5
		cfg.ExcludedCategories = []string{"kanji"}
		require.NoError(t, configStore.Update(ctx, cfg))

		again, err := configStore.GetOrCreate(ctx, userID)
		require.NoError(t, err)
		assert.Equal(t, 5, again.NewPerDay)
		assert.Equal(t, []string{"kanji"}, again.ExcludedCategories)
	})
}
