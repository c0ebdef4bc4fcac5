package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// ReviewLog validation errors
var (
	// ErrLogIDEmpty is returned when a review log ID is empty or nil.
	ErrLogIDEmpty = errors.New("review log ID cannot be empty")

	// ErrLogItemIDEmpty is returned when a review log item ID is empty or nil.
	ErrLogItemIDEmpty = errors.New("review log item ID cannot be empty")
)

// ReviewLog is one append-only grading event: which grade was given, how the
// item's schedule looked before and after, and how long the answer took.
// Logs are written by the review service when an answer is submitted and are
// never read back by the scheduling core.
type ReviewLog struct {
	ID               uuid.UUID `json:"id"`
	UserID           uuid.UUID `json:"user_id"`
	ItemID           uuid.UUID `json:"item_id"`
	Grade            Grade     `json:"grade"`
	StateBefore      ItemState `json:"state_before"`
	StateAfter       ItemState `json:"state_after"`
	IntervalBefore   float64   `json:"interval_before"`
	IntervalAfter    float64   `json:"interval_after"`
	EaseFactorBefore float64   `json:"ease_factor_before"`
	EaseFactorAfter  float64   `json:"ease_factor_after"`
	AnsweredInMillis int64     `json:"answered_in_millis"`
	ReviewedAt       time.Time `json:"reviewed_at"`
}

// Validate checks if the ReviewLog has valid data.
func (l *ReviewLog) Validate() error {
	if l.ID == uuid.Nil {
		return ErrLogIDEmpty
	}

	if l.UserID == uuid.Nil {
		return ErrItemUserIDEmpty
	}

	if l.ItemID == uuid.Nil {
		return ErrLogItemIDEmpty
	}

	if !l.Grade.IsValid() {
		return ErrInvalidGrade
	}

	return nil
}
