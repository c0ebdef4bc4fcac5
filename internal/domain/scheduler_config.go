package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// SchedulerConfig validation errors
var (
	// ErrConfigUserIDEmpty is returned when the config's user ID is empty or nil.
	ErrConfigUserIDEmpty = errors.New("scheduler config user ID cannot be empty")

	// ErrConfigInvalidNewPerDay is returned when the daily new-item budget is negative.
	ErrConfigInvalidNewPerDay = errors.New("new per day must be greater than or equal to 0")

	// ErrConfigInvalidStartingEase is returned when the starting ease is below the floor.
	ErrConfigInvalidStartingEase = errors.New("starting ease must be at least 1.3")

	// ErrConfigInvalidStep is returned when a learning or relearning step is
	// zero or negative.
	ErrConfigInvalidStep = errors.New("learning steps must be greater than 0")

	// ErrConfigInvalidInterval is returned when an interval setting is zero or negative.
	ErrConfigInvalidInterval = errors.New("intervals must be greater than 0")

	// ErrConfigInvalidRecovery is returned when the lapse recovery percentage
	// is outside 0-100.
	ErrConfigInvalidRecovery = errors.New("lapse recovery percent must be between 0 and 100")
)

// SchedulerConfig holds one user's scheduling parameters. It is loaded (or
// created with defaults) per user and treated as an immutable snapshot for the
// duration of a single scheduling call or queue build.
type SchedulerConfig struct {
	UserID uuid.UUID `json:"user_id"`

	// NewPerDay caps how many never-seen items are introduced per day.
	NewPerDay int `json:"new_per_day"`

	// MaxReviewsPerDay optionally caps the due-review set per queue build.
	// Zero means no cap.
	MaxReviewsPerDay int `json:"max_reviews_per_day"`

	// LearningSteps and RelearningSteps are ordered minute delays for the
	// short-interval ladders.
	LearningSteps   []float64 `json:"learning_steps"`
	RelearningSteps []float64 `json:"relearning_steps"`

	// GraduatingInterval is the interval in days assigned when an item first
	// leaves learning via Good; EasyInterval when it leaves via Easy.
	GraduatingInterval float64 `json:"graduating_interval"`
	EasyInterval       float64 `json:"easy_interval"`

	// StartingEase is the ease factor assigned while an item is learning.
	StartingEase float64 `json:"starting_ease"`

	// EasyBonus multiplies the interval growth of Easy reviews.
	EasyBonus float64 `json:"easy_bonus"`

	// IntervalModifier scales all review interval growth globally.
	IntervalModifier float64 `json:"interval_modifier"`

	// MaximumInterval caps every review interval, in days.
	MaximumInterval float64 `json:"maximum_interval"`

	// LapseRecoveryPercent (0-100) is the fraction of the pre-lapse interval
	// restored when a relearning item graduates back to review.
	LapseRecoveryPercent float64 `json:"lapse_recovery_percent"`

	// ExcludedCategories lists card categories the user has opted out of for
	// new-item introduction.
	ExcludedCategories []string `json:"excluded_categories,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DefaultSchedulerConfig returns the configuration a user starts with before
// any customisation.
func DefaultSchedulerConfig(userID uuid.UUID) *SchedulerConfig {
	now := time.Now().UTC()
	return &SchedulerConfig{
		UserID:               userID,
		NewPerDay:            20,
		MaxReviewsPerDay:     0,
		LearningSteps:        []float64{1, 10},
		RelearningSteps:      []float64{10},
		GraduatingInterval:   1,
		EasyInterval:         4,
		StartingEase:         2.5,
		EasyBonus:            1.3,
		IntervalModifier:     1.0,
		MaximumInterval:      36500,
		LapseRecoveryPercent: 0,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
}

// Validate checks if the SchedulerConfig has valid data.
// Returns an error if any field fails validation.
func (c *SchedulerConfig) Validate() error {
	if c.UserID == uuid.Nil {
		return ErrConfigUserIDEmpty
	}

	if c.NewPerDay < 0 {
		return ErrConfigInvalidNewPerDay
	}

	if c.StartingEase < MinEaseFactor {
		return ErrConfigInvalidStartingEase
	}

	for _, step := range c.LearningSteps {
		if step <= 0 {
			return ErrConfigInvalidStep
		}
	}
	for _, step := range c.RelearningSteps {
		if step <= 0 {
			return ErrConfigInvalidStep
		}
	}

	if c.GraduatingInterval <= 0 || c.EasyInterval <= 0 ||
		c.IntervalModifier <= 0 || c.MaximumInterval <= 0 || c.EasyBonus <= 0 {
		return ErrConfigInvalidInterval
	}

	if c.LapseRecoveryPercent < 0 || c.LapseRecoveryPercent > 100 {
		return ErrConfigInvalidRecovery
	}

	return nil
}

// ExcludesCategory reports whether the given card category is in the user's
// excluded set. The empty category is never excluded.
func (c *SchedulerConfig) ExcludesCategory(category string) bool {
	if category == "" {
		return false
	}
	for _, excluded := range c.ExcludedCategories {
		if excluded == category {
			return true
		}
	}
	return false
}
