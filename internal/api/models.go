package api

import (
	"time"

	"github.com/mnemo-app/mnemo-api/internal/domain"
	"github.com/mnemo-app/mnemo-api/internal/queue"
	"github.com/mnemo-app/mnemo-api/internal/session"
)

// GradeRequest is the body of a grade submission.
type GradeRequest struct {
	Grade            string `json:"grade"             validate:"required,oneof=again hard good easy"`
	AnsweredInMillis int64  `json:"answered_in_millis" validate:"gte=0"`
}

// ExtendRequest asks for more items after a session completed.
type ExtendRequest struct {
	ExtraNew int `json:"extra_new" validate:"gte=0"`
}

// PostponeRequest pushes an item's due date forward.
type PostponeRequest struct {
	Days int `json:"days" validate:"required,gte=1"`
}

// CreateCardRequest is the body for authoring a new card.
type CreateCardRequest struct {
	Front    string `json:"front"    validate:"required"`
	Back     string `json:"back"     validate:"required"`
	Category string `json:"category"`
}

// UpdateConfigRequest carries the editable scheduling parameters.
type UpdateConfigRequest struct {
	NewPerDay            int       `json:"new_per_day"             validate:"gte=0"`
	MaxReviewsPerDay     int       `json:"max_reviews_per_day"     validate:"gte=0"`
	LearningSteps        []float64 `json:"learning_steps"          validate:"dive,gt=0"`
	RelearningSteps      []float64 `json:"relearning_steps"        validate:"dive,gt=0"`
	GraduatingInterval   float64   `json:"graduating_interval"     validate:"gt=0"`
	EasyInterval         float64   `json:"easy_interval"           validate:"gt=0"`
	StartingEase         float64   `json:"starting_ease"           validate:"gte=1.3"`
	EasyBonus            float64   `json:"easy_bonus"              validate:"gt=0"`
	IntervalModifier     float64   `json:"interval_modifier"       validate:"gt=0"`
	MaximumInterval      float64   `json:"maximum_interval"        validate:"gt=0"`
	LapseRecoveryPercent float64   `json:"lapse_recovery_percent"  validate:"gte=0,lte=100"`
	ExcludedCategories   []string  `json:"excluded_categories"`
}

// CurrentItemResponse is the facet currently on display: the prompt always,
// the answer only once revealed.
type CurrentItemResponse struct {
	ItemID    string  `json:"item_id"`
	CardID    string  `json:"card_id"`
	Direction string  `json:"direction"`
	State     string  `json:"state"`
	Category  string  `json:"category,omitempty"`
	Prompt    string  `json:"prompt"`
	Answer    *string `json:"answer,omitempty"`
}

// SessionStateResponse describes the session as the client should render it.
type SessionStateResponse struct {
	Phase          string               `json:"phase"`
	Current        *CurrentItemResponse `json:"current,omitempty"`
	AnswerShown    bool                 `json:"answer_shown"`
	CardsRemaining int                  `json:"cards_remaining"`
	Counters       session.Counters     `json:"counters"`
	Stats          *queue.Stats         `json:"stats,omitempty"`
}

// ItemResponse is the API shape of one review item's schedule.
type ItemResponse struct {
	ID          string    `json:"id"`
	CardID      string    `json:"card_id"`
	Direction   string    `json:"direction"`
	State       string    `json:"state"`
	Interval    float64   `json:"interval"`
	EaseFactor  float64   `json:"ease_factor"`
	Repetitions int       `json:"repetitions"`
	DueAt       time.Time `json:"due_at"`
}

// CardResponse is the API shape of a card with its review items.
type CardResponse struct {
	ID        string         `json:"id"`
	Front     string         `json:"front"`
	Back      string         `json:"back"`
	Category  string         `json:"category,omitempty"`
	Items     []ItemResponse `json:"items,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

func toItemResponse(item *domain.ReviewItem) ItemResponse {
	return ItemResponse{
		ID:          item.ID.String(),
		CardID:      item.CardID.String(),
		Direction:   string(item.Direction),
		State:       string(item.State),
		Interval:    item.Interval,
		EaseFactor:  item.EaseFactor,
		Repetitions: item.Repetitions,
		DueAt:       item.DueAt,
	}
}

func toCardResponse(card *domain.Card, items []*domain.ReviewItem) CardResponse {
	resp := CardResponse{
		ID:        card.ID.String(),
		Front:     card.Front,
		Back:      card.Back,
		Category:  card.Category,
		CreatedAt: card.CreatedAt,
	}
	for _, item := range items {
		resp.Items = append(resp.Items, toItemResponse(item))
	}
	return resp
}

// promptAndAnswer picks the shown and hidden side of a card for an item's
// direction.
func promptAndAnswer(card *domain.Card, direction domain.ReviewDirection) (string, string) {
	if direction == domain.DirectionReverse {
		return card.Back, card.Front
	}
	return card.Front, card.Back
}
