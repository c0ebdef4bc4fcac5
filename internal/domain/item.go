package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// ReviewDirection identifies which presentation of the underlying card a
// ReviewItem schedules.
type ReviewDirection string

// Possible review directions.
const (
	// DirectionForward shows the card front and asks for the back.
	DirectionForward ReviewDirection = "forward"

	// DirectionReverse shows the card back and asks for the front.
	DirectionReverse ReviewDirection = "reverse"
)

// MinEaseFactor is the floor below which an item's ease factor never drops.
const MinEaseFactor = 1.3

// ReviewItem validation errors
var (
	// ErrItemIDEmpty is returned when an item ID is empty or nil.
	ErrItemIDEmpty = errors.New("review item ID cannot be empty")

	// ErrItemUserIDEmpty is returned when an item's user ID is empty or nil.
	ErrItemUserIDEmpty = errors.New("review item user ID cannot be empty")

	// ErrItemCardIDEmpty is returned when an item's card ID is empty or nil.
	ErrItemCardIDEmpty = errors.New("review item card ID cannot be empty")

	// ErrItemInvalidDirection is returned when the direction is not
	// forward or reverse.
	ErrItemInvalidDirection = errors.New("review item direction must be forward or reverse")

	// ErrItemInvalidInterval is returned when the interval is negative.
	ErrItemInvalidInterval = errors.New("interval must be greater than or equal to 0")

	// ErrItemInvalidEaseFactor is returned when the ease factor is below the floor.
	ErrItemInvalidEaseFactor = errors.New("ease factor must be at least 1.3")

	// ErrItemInvalidStepIndex is returned when the step index is negative.
	ErrItemInvalidStepIndex = errors.New("step index must be greater than or equal to 0")
)

// ReviewItem is one direction-specific facet of a card moving through the
// spaced repetition schedule. Two items exist per card (forward and reverse);
// each carries its own scheduling state and is mutated only by applying a
// srs.Result produced by the scheduling engine.
//
// While the item is in the learning or relearning state, Interval continues to
// hold the last REVIEW-state interval in days (zero if the item has never
// graduated). The short minute-scale delay of the current step is expressed
// through DueAt alone. Relearning graduation and the Hard-at-step-0 fallback
// both need the prior review interval, so it must survive a lapse.
type ReviewItem struct {
	ID              uuid.UUID       `json:"id"`
	UserID          uuid.UUID       `json:"user_id"`
	CardID          uuid.UUID       `json:"card_id"`
	Direction       ReviewDirection `json:"direction"`
	State           ItemState       `json:"state"`
	Interval        float64         `json:"interval"`    // days; sub-day resolution allowed
	EaseFactor      float64         `json:"ease_factor"` // >= MinEaseFactor
	Repetitions     int             `json:"repetitions"` // successful REVIEW reviews since last lapse
	StepIndex       int             `json:"step_index"`  // position in the learning/relearning ladder
	DueAt           time.Time       `json:"due_at"`
	FirstReviewedAt *time.Time      `json:"first_reviewed_at,omitempty"` // set when the item leaves NEW
	Category        string          `json:"category,omitempty"`          // denormalised from the owning card
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// NewReviewItem creates the scheduling state for one facet of a freshly
// authored card. The item starts in the NEW state, immediately due, with the
// default ease factor.
func NewReviewItem(userID, cardID uuid.UUID, direction ReviewDirection, category string) (*ReviewItem, error) {
	now := time.Now().UTC()
	item := &ReviewItem{
		ID:         uuid.New(),
		UserID:     userID,
		CardID:     cardID,
		Direction:  direction,
		State:      ItemStateNew,
		Interval:   0,
		EaseFactor: 2.5,
		DueAt:      now,
		Category:   category,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := item.Validate(); err != nil {
		return nil, err
	}

	return item, nil
}

// Validate checks if the ReviewItem has valid data.
// Returns an error if any field fails validation.
func (i *ReviewItem) Validate() error {
	if i.ID == uuid.Nil {
		return ErrItemIDEmpty
	}

	if i.UserID == uuid.Nil {
		return ErrItemUserIDEmpty
	}

	if i.CardID == uuid.Nil {
		return ErrItemCardIDEmpty
	}

	if i.Direction != DirectionForward && i.Direction != DirectionReverse {
		return ErrItemInvalidDirection
	}

	if !i.State.IsValid() {
		return ErrInvalidItemState
	}

	if i.Interval < 0 {
		return ErrItemInvalidInterval
	}

	if i.EaseFactor < MinEaseFactor {
		return ErrItemInvalidEaseFactor
	}

	if i.StepIndex < 0 {
		return ErrItemInvalidStepIndex
	}

	return nil
}
