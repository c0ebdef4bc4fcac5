package srs

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mnemo-app/mnemo-api/internal/domain"
)

func TestServiceSchedule(t *testing.T) {
	t.Parallel()
	svc := NewService()
	cfg := testConfig()
	now := time.Now().UTC()

	t.Run("valid inputs defer to the engine", func(t *testing.T) {
		item := newItem(domain.ItemStateReview, 10, 2.5, 3, 0)

		result, err := svc.Schedule(item, domain.GradeGood, cfg, now)
		require.NoError(t, err)
		assert.Equal(t, Schedule(item, domain.GradeGood, cfg, now), result)
	})

	t.Run("nil item is rejected", func(t *testing.T) {
		_, err := svc.Schedule(nil, domain.GradeGood, cfg, now)
		assert.ErrorIs(t, err, ErrNilItem)
	})

	t.Run("nil config is rejected", func(t *testing.T) {
		item := newItem(domain.ItemStateReview, 10, 2.5, 3, 0)
		_, err := svc.Schedule(item, domain.GradeGood, nil, now)
		assert.ErrorIs(t, err, ErrNilConfig)
	})

	t.Run("unknown grade is rejected", func(t *testing.T) {
		item := newItem(domain.ItemStateReview, 10, 2.5, 3, 0)
		_, err := svc.Schedule(item, domain.Grade("perfect"), cfg, now)
		assert.ErrorIs(t, err, ErrBadGrade)
	})
}

func TestServicePostpone(t *testing.T) {
	t.Parallel()
	svc := NewService()
	now := time.Now().UTC()

	item := &domain.ReviewItem{
		ID:          uuid.New(),
		UserID:      uuid.New(),
		CardID:      uuid.New(),
		Direction:   domain.DirectionForward,
		State:       domain.ItemStateReview,
		Interval:    12,
		EaseFactor:  2.2,
		Repetitions: 4,
		DueAt:       now,
	}

	t.Run("moves only the due time", func(t *testing.T) {
		result, err := svc.Postpone(item, 3, now)
		require.NoError(t, err)

		assert.True(t, result.DueAt.Equal(now.AddDate(0, 0, 3)))
		assert.Equal(t, item.State, result.State)
		assert.Equal(t, item.Interval, result.Interval)
		assert.Equal(t, item.EaseFactor, result.EaseFactor)
		assert.Equal(t, item.Repetitions, result.Repetitions)
	})

	t.Run("rejects non-positive days", func(t *testing.T) {
		_, err := svc.Postpone(item, 0, now)
		assert.ErrorIs(t, err, ErrBadPostpone)
	})

	t.Run("rejects nil item", func(t *testing.T) {
		_, err := svc.Postpone(nil, 1, now)
		assert.ErrorIs(t, err, ErrNilItem)
	})
}
