package api

import (
	"errors"
	"net/http"

	"github.com/mnemo-app/mnemo-api/internal/domain"
	"github.com/mnemo-app/mnemo-api/internal/service/review"
	"github.com/mnemo-app/mnemo-api/internal/session"
	"github.com/mnemo-app/mnemo-api/internal/store"
)

// MapErrorToStatusCode maps service and store errors to HTTP status codes.
// Unknown errors map to 500.
func MapErrorToStatusCode(err error) int {
	switch {
	case errors.Is(err, review.ErrItemNotFound),
		errors.Is(err, store.ErrItemNotFound),
		errors.Is(err, store.ErrCardNotFound),
		errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound

	case errors.Is(err, review.ErrInvalidAnswer),
		errors.Is(err, review.ErrInvalidPostpone),
		errors.Is(err, domain.ErrInvalidGrade),
		errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest

	case errors.Is(err, session.ErrNoCurrentItem):
		return http.StatusConflict

	case errors.Is(err, session.ErrSessionClosed):
		return http.StatusGone

	case errors.Is(err, store.ErrDuplicate):
		return http.StatusConflict

	case errors.Is(err, store.ErrInvalidEntity):
		return http.StatusUnprocessableEntity

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a client-safe message for an error. Anything
// unrecognised collapses to a generic message so internals never leak.
func GetSafeErrorMessage(err error) string {
	switch {
	case errors.Is(err, review.ErrItemNotFound),
		errors.Is(err, store.ErrItemNotFound):
		return "Review item not found"

	case errors.Is(err, store.ErrCardNotFound):
		return "Card not found"

	case errors.Is(err, review.ErrInvalidAnswer),
		errors.Is(err, domain.ErrInvalidGrade):
		return "Invalid grade: must be one of again, hard, good, easy"

	case errors.Is(err, review.ErrInvalidPostpone):
		return "Postpone days must be at least 1"

	case errors.Is(err, session.ErrNoCurrentItem):
		return "No item is currently being reviewed"

	case errors.Is(err, session.ErrSessionClosed):
		return "The review session has ended"

	case errors.Is(err, store.ErrDuplicate):
		return "The entity already exists"

	case errors.Is(err, store.ErrInvalidEntity):
		return "The request references an unknown entity"

	case errors.Is(err, domain.ErrValidation):
		return "Validation failed"

	default:
		return "An unexpected error occurred"
	}
}
