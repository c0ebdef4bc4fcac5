package srs

import (
	"math"
	"time"

	"github.com/mnemo-app/mnemo-api/internal/domain"
)

const minutesPerDay = 24 * 60

// Ease factor adjustments applied in the REVIEW state.
const (
	againEaseDelta = -0.20
	hardEaseDelta  = -0.15
	easyEaseDelta  = 0.15
)

// hardIntervalFactor is the interval multiplier for Hard reviews; Hard growth
// deliberately ignores the ease factor.
const hardIntervalFactor = 1.2

// Result is the engine's pure output: the complete next scheduling state of
// an item after one grading event. The caller is responsible for persisting
// it and for recording a history event.
type Result struct {
	State       domain.ItemState `json:"state"`
	Interval    float64          `json:"interval"` // days
	EaseFactor  float64          `json:"ease_factor"`
	Repetitions int              `json:"repetitions"`
	StepIndex   int              `json:"step_index"`
	DueAt       time.Time        `json:"due_at"`
}

// Schedule computes the next scheduling state for item after it was graded.
// It is a pure function: no I/O, no randomness, identical inputs always yield
// identical results. The config is treated as an immutable snapshot and now
// is supplied explicitly so callers control the clock.
//
// The function is total over well-formed configuration. Degenerate step
// ladders (empty or single-element) are not errors: an empty ladder graduates
// the item immediately, and the Hard-at-step-0 average falls back to the only
// step (learning) or to the prior review interval in minutes (relearning).
func Schedule(
	item *domain.ReviewItem,
	grade domain.Grade,
	cfg *domain.SchedulerConfig,
	now time.Time,
) Result {
	switch item.State {
	case domain.ItemStateReview:
		return scheduleReview(item, grade, cfg, now)
	case domain.ItemStateRelearning:
		return scheduleSteps(item, grade, cfg, now, cfg.RelearningSteps, true)
	default:
		// NEW and LEARNING share the learning-step ladder.
		return scheduleSteps(item, grade, cfg, now, cfg.LearningSteps, false)
	}
}

// scheduleSteps handles the short-interval ladder shared by the NEW, LEARNING
// and RELEARNING states. The relearning flag selects the relearning-specific
// behavior: graduation restores a fraction of the pre-lapse interval, and the
// Hard fallback at step 0 uses the prior review interval.
func scheduleSteps(
	item *domain.ReviewItem,
	grade domain.Grade,
	cfg *domain.SchedulerConfig,
	now time.Time,
	steps []float64,
	relearning bool,
) Result {
	state := domain.ItemStateLearning
	if relearning {
		state = domain.ItemStateRelearning
	}

	ease := item.EaseFactor
	if ease < domain.MinEaseFactor {
		ease = cfg.StartingEase
	}

	switch grade {
	case domain.GradeAgain:
		if !relearning {
			ease = cfg.StartingEase
		}
		if len(steps) == 0 {
			return graduate(item, cfg, now, relearning, false, ease)
		}
		return stepResult(item, state, 0, steps[0], ease, 0, now)

	case domain.GradeHard:
		if len(steps) == 0 {
			return graduate(item, cfg, now, relearning, false, ease)
		}
		if item.StepIndex <= 0 {
			// Average of the Again and Good delays. With a single-step
			// ladder the second operand falls back to the step itself, or
			// for relearning to the prior review interval in minutes, so
			// Hard stays meaningful at step 0.
			second := steps[0]
			if len(steps) > 1 {
				second = steps[1]
			} else if relearning && item.Interval > 0 {
				second = item.Interval * minutesPerDay
			}
			delay := math.Round((steps[0] + second) / 2)
			return stepResult(item, state, 0, delay, ease, item.Repetitions, now)
		}
		// Hard moves one step back.
		prev := item.StepIndex - 1
		if prev >= len(steps) {
			prev = len(steps) - 1
		}
		return stepResult(item, state, prev, steps[prev], ease, item.Repetitions, now)

	case domain.GradeEasy:
		return graduate(item, cfg, now, relearning, true, ease)

	default: // Good
		if item.StepIndex >= len(steps)-1 {
			return graduate(item, cfg, now, relearning, false, ease)
		}
		next := item.StepIndex + 1
		return stepResult(item, state, next, steps[next], ease, item.Repetitions, now)
	}
}

// scheduleReview handles the long-interval steady state.
func scheduleReview(
	item *domain.ReviewItem,
	grade domain.Grade,
	cfg *domain.SchedulerConfig,
	now time.Time,
) Result {
	switch grade {
	case domain.GradeAgain:
		ease := math.Max(domain.MinEaseFactor, item.EaseFactor+againEaseDelta)
		if len(cfg.RelearningSteps) == 0 {
			// No relearning ladder: the lapse resolves immediately.
			return lapseGraduate(item, cfg, now, ease)
		}
		return stepResult(item, domain.ItemStateRelearning, 0, cfg.RelearningSteps[0], ease, 0, now)

	case domain.GradeHard:
		ease := math.Max(domain.MinEaseFactor, item.EaseFactor+hardEaseDelta)
		interval := capInterval(item.Interval*hardIntervalFactor*cfg.IntervalModifier, cfg)
		return reviewResult(interval, ease, item.Repetitions, now)

	case domain.GradeEasy:
		ease := item.EaseFactor + easyEaseDelta
		interval := capInterval(item.Interval*item.EaseFactor*cfg.EasyBonus*cfg.IntervalModifier, cfg)
		return reviewResult(interval, ease, item.Repetitions+1, now)

	default: // Good
		interval := capInterval(item.Interval*item.EaseFactor*cfg.IntervalModifier, cfg)
		return reviewResult(interval, item.EaseFactor, item.Repetitions+1, now)
	}
}

// graduate moves an item out of its step ladder into the REVIEW state.
// Learning items receive the graduating (or easy) interval and their first
// repetition; relearning items recover a configured fraction of the interval
// they held before the lapse.
func graduate(
	item *domain.ReviewItem,
	cfg *domain.SchedulerConfig,
	now time.Time,
	relearning, easy bool,
	ease float64,
) Result {
	if relearning {
		return lapseGraduate(item, cfg, now, ease)
	}

	interval := cfg.GraduatingInterval
	if easy {
		interval = cfg.EasyInterval
	}
	interval = capInterval(interval, cfg)
	return Result{
		State:       domain.ItemStateReview,
		Interval:    interval,
		EaseFactor:  ease,
		Repetitions: 1,
		StepIndex:   0,
		DueAt:       now.Add(daysToDuration(interval)),
	}
}

// lapseGraduate returns a lapsed item to REVIEW with a fraction of its prior
// interval, never less than one day.
func lapseGraduate(
	item *domain.ReviewItem,
	cfg *domain.SchedulerConfig,
	now time.Time,
	ease float64,
) Result {
	interval := math.Max(1, item.Interval*cfg.LapseRecoveryPercent/100)
	interval = capInterval(interval, cfg)
	return Result{
		State:       domain.ItemStateReview,
		Interval:    interval,
		EaseFactor:  ease,
		Repetitions: 0,
		StepIndex:   0,
		DueAt:       now.Add(daysToDuration(interval)),
	}
}

// stepResult builds the result for staying inside a step ladder. The carried
// interval is the item's prior review interval; the step delay is expressed
// through DueAt only.
func stepResult(
	item *domain.ReviewItem,
	state domain.ItemState,
	stepIndex int,
	delayMinutes float64,
	ease float64,
	repetitions int,
	now time.Time,
) Result {
	return Result{
		State:       state,
		Interval:    item.Interval,
		EaseFactor:  ease,
		Repetitions: repetitions,
		StepIndex:   stepIndex,
		DueAt:       now.Add(time.Duration(delayMinutes * float64(time.Minute))),
	}
}

// reviewResult builds the result for staying in the REVIEW state.
func reviewResult(interval, ease float64, repetitions int, now time.Time) Result {
	return Result{
		State:       domain.ItemStateReview,
		Interval:    interval,
		EaseFactor:  ease,
		Repetitions: repetitions,
		StepIndex:   0,
		DueAt:       now.Add(daysToDuration(interval)),
	}
}

// capInterval clamps an interval at the configured maximum. Clamping is never
// an error.
func capInterval(interval float64, cfg *domain.SchedulerConfig) float64 {
	if interval > cfg.MaximumInterval {
		return cfg.MaximumInterval
	}
	return interval
}

func daysToDuration(days float64) time.Duration {
	return time.Duration(days * float64(24*time.Hour))
}
