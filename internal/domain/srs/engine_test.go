package srs

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mnemo-app/mnemo-api/internal/domain"
)

const floatTolerance = 1e-9

func testConfig() *domain.SchedulerConfig {
	cfg := domain.DefaultSchedulerConfig(uuid.New())
	cfg.LearningSteps = []float64{1, 10}
	cfg.RelearningSteps = []float64{10}
	cfg.GraduatingInterval = 1
	cfg.EasyInterval = 4
	cfg.StartingEase = 2.5
	cfg.EasyBonus = 1.3
	cfg.IntervalModifier = 1.0
	cfg.MaximumInterval = 36500
	return cfg
}

func newItem(state domain.ItemState, interval, ease float64, reps, step int) *domain.ReviewItem {
	return &domain.ReviewItem{
		ID:          uuid.New(),
		UserID:      uuid.New(),
		CardID:      uuid.New(),
		Direction:   domain.DirectionForward,
		State:       state,
		Interval:    interval,
		EaseFactor:  ease,
		Repetitions: reps,
		StepIndex:   step,
	}
}

func TestScheduleLearningLadder(t *testing.T) {
	t.Parallel()
	cfg := testConfig()
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	testCases := []struct {
		name      string
		item      *domain.ReviewItem
		grade     domain.Grade
		wantState domain.ItemState
		wantStep  int
		wantDue   time.Time
	}{
		{
			name:      "new item graded again starts the ladder",
			item:      newItem(domain.ItemStateNew, 0, 2.5, 0, 0),
			grade:     domain.GradeAgain,
			wantState: domain.ItemStateLearning,
			wantStep:  0,
			wantDue:   now.Add(1 * time.Minute),
		},
		{
			name:      "hard at step zero averages the first two steps",
			item:      newItem(domain.ItemStateNew, 0, 2.5, 0, 0),
			grade:     domain.GradeHard,
			wantState: domain.ItemStateLearning,
			wantStep:  0,
			wantDue:   now.Add(6 * time.Minute), // round(avg(1, 10))
		},
		{
			name:      "good advances to the next step",
			item:      newItem(domain.ItemStateNew, 0, 2.5, 0, 0),
			grade:     domain.GradeGood,
			wantState: domain.ItemStateLearning,
			wantStep:  1,
			wantDue:   now.Add(10 * time.Minute),
		},
		{
			name:      "hard above step zero moves one step back",
			item:      newItem(domain.ItemStateLearning, 0, 2.5, 0, 1),
			grade:     domain.GradeHard,
			wantState: domain.ItemStateLearning,
			wantStep:  0,
			wantDue:   now.Add(1 * time.Minute),
		},
		{
			name:      "again above step zero resets to step zero",
			item:      newItem(domain.ItemStateLearning, 0, 2.5, 0, 1),
			grade:     domain.GradeAgain,
			wantState: domain.ItemStateLearning,
			wantStep:  0,
			wantDue:   now.Add(1 * time.Minute),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			result := Schedule(tc.item, tc.grade, cfg, now)

			assert.Equal(t, tc.wantState, result.State)
			assert.Equal(t, tc.wantStep, result.StepIndex)
			assert.True(t, result.DueAt.Equal(tc.wantDue),
				"due at %v, want %v", result.DueAt, tc.wantDue)
		})
	}
}

func TestScheduleLearningGraduation(t *testing.T) {
	t.Parallel()
	cfg := testConfig()
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	t.Run("good at the last step graduates", func(t *testing.T) {
		item := newItem(domain.ItemStateLearning, 0, 2.5, 0, 1)
		result := Schedule(item, domain.GradeGood, cfg, now)

		assert.Equal(t, domain.ItemStateReview, result.State)
		assert.InDelta(t, cfg.GraduatingInterval, result.Interval, floatTolerance)
		assert.Equal(t, 1, result.Repetitions)
		assert.Equal(t, 0, result.StepIndex)
		assert.True(t, result.DueAt.Equal(now.Add(24*time.Hour)))
	})

	t.Run("easy graduates immediately from any step", func(t *testing.T) {
		item := newItem(domain.ItemStateNew, 0, 2.5, 0, 0)
		result := Schedule(item, domain.GradeEasy, cfg, now)

		assert.Equal(t, domain.ItemStateReview, result.State)
		assert.InDelta(t, cfg.EasyInterval, result.Interval, floatTolerance)
		assert.Equal(t, 1, result.Repetitions)
	})

	t.Run("empty ladder graduates on good", func(t *testing.T) {
		empty := testConfig()
		empty.LearningSteps = nil

		item := newItem(domain.ItemStateNew, 0, 2.5, 0, 0)
		result := Schedule(item, domain.GradeGood, empty, now)

		assert.Equal(t, domain.ItemStateReview, result.State)
		assert.InDelta(t, empty.GraduatingInterval, result.Interval, floatTolerance)
	})

	t.Run("empty ladder graduates even on again", func(t *testing.T) {
		empty := testConfig()
		empty.LearningSteps = nil

		item := newItem(domain.ItemStateNew, 0, 2.5, 0, 0)
		result := Schedule(item, domain.GradeAgain, empty, now)

		assert.Equal(t, domain.ItemStateReview, result.State)
	})

	t.Run("single step ladder averages the step with itself", func(t *testing.T) {
		single := testConfig()
		single.LearningSteps = []float64{5}

		item := newItem(domain.ItemStateNew, 0, 2.5, 0, 0)
		result := Schedule(item, domain.GradeHard, single, now)

		assert.Equal(t, domain.ItemStateLearning, result.State)
		assert.True(t, result.DueAt.Equal(now.Add(5*time.Minute)))
	})
}

func TestScheduleReview(t *testing.T) {
	t.Parallel()
	cfg := testConfig()
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	testCases := []struct {
		name         string
		grade        domain.Grade
		wantState    domain.ItemState
		wantInterval float64
		wantEase     float64
		wantReps     int
	}{
		{
			name:         "hard grows by the fixed factor and drops ease",
			grade:        domain.GradeHard,
			wantState:    domain.ItemStateReview,
			wantInterval: 12.0, // 10 * 1.2
			wantEase:     2.35,
			wantReps:     3, // unchanged
		},
		{
			name:         "good grows by the ease factor",
			grade:        domain.GradeGood,
			wantState:    domain.ItemStateReview,
			wantInterval: 25.0, // 10 * 2.5
			wantEase:     2.5,
			wantReps:     4,
		},
		{
			name:         "easy grows by ease times the bonus and raises ease",
			grade:        domain.GradeEasy,
			wantState:    domain.ItemStateReview,
			wantInterval: 32.5, // 10 * 2.5 * 1.3
			wantEase:     2.65,
			wantReps:     4,
		},
		{
			name:         "again lapses into relearning",
			grade:        domain.GradeAgain,
			wantState:    domain.ItemStateRelearning,
			wantInterval: 10.0, // prior interval carried through the lapse
			wantEase:     2.3,
			wantReps:     0,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			item := newItem(domain.ItemStateReview, 10, 2.5, 3, 0)
			result := Schedule(item, tc.grade, cfg, now)

			assert.Equal(t, tc.wantState, result.State)
			assert.InDelta(t, tc.wantInterval, result.Interval, floatTolerance)
			assert.InDelta(t, tc.wantEase, result.EaseFactor, floatTolerance)
			assert.Equal(t, tc.wantReps, result.Repetitions)
		})
	}

	t.Run("lapse is due at the first relearning step", func(t *testing.T) {
		item := newItem(domain.ItemStateReview, 10, 2.5, 3, 0)
		result := Schedule(item, domain.GradeAgain, cfg, now)

		assert.True(t, result.DueAt.Equal(now.Add(10*time.Minute)))
		assert.Equal(t, 0, result.StepIndex)
	})

	t.Run("interval modifier scales growth", func(t *testing.T) {
		modified := testConfig()
		modified.IntervalModifier = 0.5

		item := newItem(domain.ItemStateReview, 10, 2.5, 3, 0)
		result := Schedule(item, domain.GradeGood, modified, now)

		assert.InDelta(t, 12.5, result.Interval, floatTolerance)
	})
}

func TestScheduleEaseFloor(t *testing.T) {
	t.Parallel()
	cfg := testConfig()
	now := time.Now().UTC()

	for _, grade := range []domain.Grade{domain.GradeAgain, domain.GradeHard} {
		item := newItem(domain.ItemStateReview, 10, 1.3, 3, 0)
		result := Schedule(item, grade, cfg, now)

		assert.GreaterOrEqual(t, result.EaseFactor, domain.MinEaseFactor,
			"grade %s must not push ease below the floor", grade)
	}
}

func TestScheduleIntervalCap(t *testing.T) {
	t.Parallel()
	cfg := testConfig()
	cfg.MaximumInterval = 30
	now := time.Now().UTC()

	item := newItem(domain.ItemStateReview, 20, 2.5, 5, 0)
	result := Schedule(item, domain.GradeEasy, cfg, now)

	assert.InDelta(t, 30, result.Interval, floatTolerance)
	assert.True(t, result.DueAt.Equal(now.Add(30*24*time.Hour)))
}

func TestScheduleRelearning(t *testing.T) {
	t.Parallel()
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	t.Run("graduation with zero recovery resets to one day", func(t *testing.T) {
		cfg := testConfig()
		cfg.LapseRecoveryPercent = 0

		item := newItem(domain.ItemStateRelearning, 40, 2.3, 0, 0)
		result := Schedule(item, domain.GradeGood, cfg, now)

		assert.Equal(t, domain.ItemStateReview, result.State)
		assert.InDelta(t, 1.0, result.Interval, floatTolerance)
		assert.Equal(t, 0, result.Repetitions)
	})

	t.Run("graduation with full recovery restores the prior interval", func(t *testing.T) {
		cfg := testConfig()
		cfg.LapseRecoveryPercent = 100

		item := newItem(domain.ItemStateRelearning, 40, 2.3, 0, 0)
		result := Schedule(item, domain.GradeGood, cfg, now)

		assert.InDelta(t, 40.0, result.Interval, floatTolerance)
	})

	t.Run("graduation caps at the maximum interval", func(t *testing.T) {
		cfg := testConfig()
		cfg.LapseRecoveryPercent = 100
		cfg.MaximumInterval = 25

		item := newItem(domain.ItemStateRelearning, 40, 2.3, 0, 0)
		result := Schedule(item, domain.GradeGood, cfg, now)

		assert.InDelta(t, 25.0, result.Interval, floatTolerance)
	})

	t.Run("hard at step zero with one step uses the prior interval in minutes", func(t *testing.T) {
		cfg := testConfig()
		cfg.RelearningSteps = []float64{10}

		item := newItem(domain.ItemStateRelearning, 2, 2.3, 0, 0)
		result := Schedule(item, domain.GradeHard, cfg, now)

		// round(avg(10, 2*1440)) minutes
		wantDelay := time.Duration(1445) * time.Minute
		assert.Equal(t, domain.ItemStateRelearning, result.State)
		assert.True(t, result.DueAt.Equal(now.Add(wantDelay)),
			"due at %v, want %v", result.DueAt, now.Add(wantDelay))
	})

	t.Run("again restarts the relearning ladder without touching ease", func(t *testing.T) {
		cfg := testConfig()
		cfg.RelearningSteps = []float64{10, 20}

		item := newItem(domain.ItemStateRelearning, 40, 2.3, 0, 1)
		result := Schedule(item, domain.GradeAgain, cfg, now)

		assert.Equal(t, domain.ItemStateRelearning, result.State)
		assert.Equal(t, 0, result.StepIndex)
		assert.InDelta(t, 2.3, result.EaseFactor, floatTolerance)
		assert.True(t, result.DueAt.Equal(now.Add(10*time.Minute)))
	})

	t.Run("easy graduates from any relearning step", func(t *testing.T) {
		cfg := testConfig()
		cfg.RelearningSteps = []float64{10, 20}
		cfg.LapseRecoveryPercent = 50

		item := newItem(domain.ItemStateRelearning, 40, 2.3, 0, 0)
		result := Schedule(item, domain.GradeEasy, cfg, now)

		assert.Equal(t, domain.ItemStateReview, result.State)
		assert.InDelta(t, 20.0, result.Interval, floatTolerance)
	})
}

func TestScheduleLapseWithoutRelearningSteps(t *testing.T) {
	t.Parallel()
	cfg := testConfig()
	cfg.RelearningSteps = nil
	cfg.LapseRecoveryPercent = 50
	now := time.Now().UTC()

	item := newItem(domain.ItemStateReview, 10, 2.5, 3, 0)
	result := Schedule(item, domain.GradeAgain, cfg, now)

	// With no ladder the lapse resolves immediately back into review.
	assert.Equal(t, domain.ItemStateReview, result.State)
	assert.InDelta(t, 5.0, result.Interval, floatTolerance)
	assert.InDelta(t, 2.3, result.EaseFactor, floatTolerance)
	assert.Equal(t, 0, result.Repetitions)
}

func TestScheduleIsPure(t *testing.T) {
	t.Parallel()
	cfg := testConfig()
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	item := newItem(domain.ItemStateReview, 10, 2.5, 3, 0)

	first := Schedule(item, domain.GradeGood, cfg, now)
	second := Schedule(item, domain.GradeGood, cfg, now)

	require.Equal(t, first, second)
}

func TestScheduleGoodGrowthProperty(t *testing.T) {
	t.Parallel()
	cfg := testConfig()
	now := time.Now().UTC()

	for _, interval := range []float64{1, 2.5, 10, 100, 3000} {
		for _, ease := range []float64{1.3, 2.0, 2.5, 3.1} {
			item := newItem(domain.ItemStateReview, interval, ease, 1, 0)
			result := Schedule(item, domain.GradeGood, cfg, now)

			want := interval * ease * cfg.IntervalModifier
			if want > cfg.MaximumInterval {
				want = cfg.MaximumInterval
			}
			assert.InDelta(t, want, result.Interval, floatTolerance)
			assert.LessOrEqual(t, result.Interval, cfg.MaximumInterval)
		}
	}
}
