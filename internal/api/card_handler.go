package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/mnemo-app/mnemo-api/internal/api/shared"
	"github.com/mnemo-app/mnemo-api/internal/platform/logger"
	"github.com/mnemo-app/mnemo-api/internal/service/review"
)

// CardHandler handles card authoring, postponing, and scheduler settings.
type CardHandler struct {
	reviews review.Service
	logger  *slog.Logger
}

// NewCardHandler creates a new CardHandler.
func NewCardHandler(reviews review.Service, logger *slog.Logger) *CardHandler {
	if reviews == nil {
		panic("reviews service cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &CardHandler{
		reviews: reviews,
		logger:  logger.With(slog.String("component", "card_handler")),
	}
}

// CreateCard handles POST /users/{userID}/cards requests.
// A card is created together with its forward and reverse review items.
func (h *CardHandler) CreateCard(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := parseUserID(w, r)
	if !ok {
		return
	}

	var req CreateCardRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest,
			"Card front and back are required")
		return
	}

	card, items, err := h.reviews.CreateCard(r.Context(), userID, review.NewCardContent{
		Front:    req.Front,
		Back:     req.Back,
		Category: req.Category,
	})
	if err != nil {
		shared.RespondWithErrorAndLog(w, r,
			MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	log.Info("card created",
		slog.String("card_id", card.ID.String()),
		slog.String("user_id", userID.String()))

	shared.RespondWithJSON(w, r, http.StatusCreated, toCardResponse(card, items))
}

// PostponeItem handles POST /users/{userID}/items/{itemID}/postpone requests.
func (h *CardHandler) PostponeItem(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := parseUserID(w, r)
	if !ok {
		return
	}

	itemID, err := uuid.Parse(chi.URLParam(r, "itemID"))
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid item ID")
		return
	}

	var req PostponeRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest,
			GetSafeErrorMessage(review.ErrInvalidPostpone))
		return
	}

	item, err := h.reviews.PostponeItem(r.Context(), userID, itemID, req.Days)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r,
			MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	log.Info("review item postponed",
		slog.String("item_id", itemID.String()),
		slog.Int("days", req.Days))

	shared.RespondWithJSON(w, r, http.StatusOK, toItemResponse(item))
}

// GetConfig handles GET /users/{userID}/config requests.
func (h *CardHandler) GetConfig(w http.ResponseWriter, r *http.Request) {
	userID, ok := parseUserID(w, r)
	if !ok {
		return
	}

	cfg, err := h.reviews.Config(r.Context(), userID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r,
			MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, cfg)
}

// UpdateConfig handles PUT /users/{userID}/config requests.
func (h *CardHandler) UpdateConfig(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := parseUserID(w, r)
	if !ok {
		return
	}

	var req UpdateConfigRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid scheduler settings")
		return
	}

	cfg, err := h.reviews.Config(r.Context(), userID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r,
			MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	cfg.NewPerDay = req.NewPerDay
	cfg.MaxReviewsPerDay = req.MaxReviewsPerDay
	cfg.LearningSteps = req.LearningSteps
	cfg.RelearningSteps = req.RelearningSteps
	cfg.GraduatingInterval = req.GraduatingInterval
	cfg.EasyInterval = req.EasyInterval
	cfg.StartingEase = req.StartingEase
	cfg.EasyBonus = req.EasyBonus
	cfg.IntervalModifier = req.IntervalModifier
	cfg.MaximumInterval = req.MaximumInterval
	cfg.LapseRecoveryPercent = req.LapseRecoveryPercent
	cfg.ExcludedCategories = req.ExcludedCategories

	if err := h.reviews.UpdateConfig(r.Context(), cfg); err != nil {
		shared.RespondWithErrorAndLog(w, r,
			MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	log.Info("scheduler config updated", slog.String("user_id", userID.String()))
	shared.RespondWithJSON(w, r, http.StatusOK, cfg)
}

func parseUserID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	userID, err := uuid.Parse(chi.URLParam(r, "userID"))
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid user ID")
		return uuid.Nil, false
	}
	return userID, true
}
