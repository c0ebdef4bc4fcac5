package srs

import (
	"errors"
	"time"

	"github.com/mnemo-app/mnemo-api/internal/domain"
)

// Common errors
var (
	ErrNilItem     = errors.New("review item cannot be nil")
	ErrNilConfig   = errors.New("scheduler config cannot be nil")
	ErrBadGrade    = errors.New("invalid grade")
	ErrBadPostpone = errors.New("postpone days must be at least 1")
)

// Service defines the interface for scheduling operations. It exists so the
// review service can depend on an abstraction; the engine itself stays a
// plain function.
type Service interface {
	// Schedule computes the item's next scheduling state for a grade.
	Schedule(
		item *domain.ReviewItem,
		grade domain.Grade,
		cfg *domain.SchedulerConfig,
		now time.Time,
	) (Result, error)

	// Postpone pushes the item's due time forward by a number of days
	// without otherwise touching its schedule.
	Postpone(item *domain.ReviewItem, days int, now time.Time) (Result, error)
}

type defaultService struct{}

// NewService returns the standard implementation of the Service interface.
func NewService() Service {
	return defaultService{}
}

// Schedule implements the Service interface. It validates inputs and defers
// to the pure engine function.
func (defaultService) Schedule(
	item *domain.ReviewItem,
	grade domain.Grade,
	cfg *domain.SchedulerConfig,
	now time.Time,
) (Result, error) {
	if item == nil {
		return Result{}, ErrNilItem
	}
	if cfg == nil {
		return Result{}, ErrNilConfig
	}
	if !grade.IsValid() {
		return Result{}, ErrBadGrade
	}

	return Schedule(item, grade, cfg, now), nil
}

// Postpone implements the Service interface.
func (defaultService) Postpone(item *domain.ReviewItem, days int, now time.Time) (Result, error) {
	if item == nil {
		return Result{}, ErrNilItem
	}
	if days < 1 {
		return Result{}, ErrBadPostpone
	}

	return Result{
		State:       item.State,
		Interval:    item.Interval,
		EaseFactor:  item.EaseFactor,
		Repetitions: item.Repetitions,
		StepIndex:   item.StepIndex,
		DueAt:       item.DueAt.AddDate(0, 0, days),
	}, nil
}
