// Package review provides the transactional service tying the scheduling
// engine to persistence: answering an item inside a transaction, building
// session queues, creating cards with their review items, and postponing.
package review

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/mnemo-app/mnemo-api/internal/domain"
	"github.com/mnemo-app/mnemo-api/internal/queue"
)

// ReviewAnswer represents a user's answer to one review item.
type ReviewAnswer struct {
	// Grade is the self-assessed recall quality.
	Grade domain.Grade `json:"grade"`

	// AnsweredInMillis is how long the user took before grading, for the
	// review log. Zero when the client does not report it.
	AnsweredInMillis int64 `json:"answered_in_millis"`
}

// NewCardContent is the user-authored content of a card to create.
type NewCardContent struct {
	Front    string `json:"front"    validate:"required"`
	Back     string `json:"back"     validate:"required"`
	Category string `json:"category"`
}

// Service provides the review operations exposed over the API.
type Service interface {
	// SubmitAnswer grades one review item and persists the resulting
	// schedule, all within a single transaction. The item row is locked for
	// the duration so concurrent grades of the same item serialise.
	//
	// Returns ErrItemNotFound if the item does not exist for the user and
	// ErrInvalidAnswer if the grade is not one of again/hard/good/easy.
	SubmitAnswer(
		ctx context.Context,
		userID uuid.UUID,
		itemID uuid.UUID,
		answer ReviewAnswer,
	) (*domain.ReviewItem, error)

	// BuildSessionQueue composes the items for a new review session:
	// everything due plus up to the remaining daily budget of new items,
	// shuffled. extraNew lets the user pull new items beyond the budget
	// when extending a finished session.
	BuildSessionQueue(
		ctx context.Context,
		userID uuid.UUID,
		extraNew int,
	) ([]*domain.ReviewItem, queue.Stats, error)

	// CreateCard saves a card together with its forward and reverse review
	// items in one transaction.
	CreateCard(
		ctx context.Context,
		userID uuid.UUID,
		content NewCardContent,
	) (*domain.Card, []*domain.ReviewItem, error)

	// PostponeItem pushes an item's due time forward by whole days without
	// otherwise touching its schedule.
	//
	// Returns ErrItemNotFound if the item does not exist for the user.
	PostponeItem(
		ctx context.Context,
		userID uuid.UUID,
		itemID uuid.UUID,
		days int,
	) (*domain.ReviewItem, error)

	// GetCards resolves the card content behind a set of review items,
	// keyed by card ID.
	GetCards(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*domain.Card, error)

	// Config returns the user's scheduler configuration, creating defaults
	// on first access.
	Config(ctx context.Context, userID uuid.UUID) (*domain.SchedulerConfig, error)

	// UpdateConfig persists changed scheduling parameters.
	UpdateConfig(ctx context.Context, cfg *domain.SchedulerConfig) error
}

// Common error types for the review service
var (
	// ErrItemNotFound indicates that the review item does not exist for the user.
	ErrItemNotFound = errors.New("review item not found")

	// ErrInvalidAnswer indicates an invalid grade was provided.
	ErrInvalidAnswer = errors.New("invalid answer")

	// ErrInvalidPostpone indicates a postpone of less than one day.
	ErrInvalidPostpone = errors.New("postpone days must be at least 1")
)

// ServiceError wraps errors from the review service with the operation that
// failed, so consumers can differentiate with errors.As instead of string
// matching.
type ServiceError struct {
	// Operation is the operation that failed (e.g., "submit_answer").
	Operation string
	// Message is a human-readable description of the error.
	Message string
	// Err is the underlying error that caused the failure.
	Err error
}

// Error implements the error interface for ServiceError.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s operation failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("%s operation failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewSubmitAnswerError returns a new ServiceError for the submit_answer operation.
func NewSubmitAnswerError(message string, err error) *ServiceError {
	return &ServiceError{Operation: "submit_answer", Message: message, Err: err}
}

// NewBuildQueueError returns a new ServiceError for the build_queue operation.
func NewBuildQueueError(message string, err error) *ServiceError {
	return &ServiceError{Operation: "build_queue", Message: message, Err: err}
}

// NewCreateCardError returns a new ServiceError for the create_card operation.
func NewCreateCardError(message string, err error) *ServiceError {
	return &ServiceError{Operation: "create_card", Message: message, Err: err}
}
