package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/mnemo-app/mnemo-api/internal/api/shared"
	"github.com/mnemo-app/mnemo-api/internal/domain"
	"github.com/mnemo-app/mnemo-api/internal/platform/logger"
	"github.com/mnemo-app/mnemo-api/internal/queue"
	"github.com/mnemo-app/mnemo-api/internal/service/review"
	"github.com/mnemo-app/mnemo-api/internal/session"
)

// SessionHandler drives a user's in-memory review session over HTTP. The
// session itself lives in the registry; persistence goes through the review
// service.
type SessionHandler struct {
	reviews  review.Service
	sessions *session.Registry

	// horizon bounds how far ahead a just-graded item may be due and still
	// stay inside the running session.
	horizon time.Duration

	logger *slog.Logger
	now    func() time.Time
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(
	reviews review.Service,
	sessions *session.Registry,
	horizon time.Duration,
	logger *slog.Logger,
) *SessionHandler {
	if reviews == nil {
		panic("reviews service cannot be nil")
	}
	if sessions == nil {
		panic("session registry cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &SessionHandler{
		reviews:  reviews,
		sessions: sessions,
		horizon:  horizon,
		logger:   logger.With(slog.String("component", "session_handler")),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// StartSession handles POST /users/{userID}/session requests.
// It builds a fresh queue and replaces any session already running.
func (h *SessionHandler) StartSession(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := parseUserID(w, r)
	if !ok {
		return
	}

	items, stats, err := h.reviews.BuildSessionQueue(r.Context(), userID, 0)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r,
			MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	mgr := session.NewManager(session.WithLogger(log))
	mgr.Init(items)
	h.sessions.Put(userID, mgr)

	log.Info("review session started",
		slog.String("user_id", userID.String()),
		slog.Int("queue_size", len(items)))

	h.respondWithState(w, r, userID, mgr, &stats)
}

// GetState handles GET /users/{userID}/session requests.
func (h *SessionHandler) GetState(w http.ResponseWriter, r *http.Request) {
	userID, mgr, ok := h.activeSession(w, r)
	if !ok {
		return
	}

	h.respondWithState(w, r, userID, mgr, nil)
}

// RevealAnswer handles POST /users/{userID}/session/reveal requests.
func (h *SessionHandler) RevealAnswer(w http.ResponseWriter, r *http.Request) {
	userID, mgr, ok := h.activeSession(w, r)
	if !ok {
		return
	}

	mgr.RevealAnswer()
	h.respondWithState(w, r, userID, mgr, nil)
}

// SubmitGrade handles POST /users/{userID}/session/grade requests.
// The answer is persisted first; only a successful write advances the
// session, so a failed request can simply be retried.
func (h *SessionHandler) SubmitGrade(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, mgr, ok := h.activeSession(w, r)
	if !ok {
		return
	}

	var req GradeRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest,
			"Invalid grade: must be one of again, hard, good, easy")
		return
	}

	current := mgr.Current()
	if current == nil {
		shared.RespondWithError(w, r, http.StatusConflict,
			GetSafeErrorMessage(session.ErrNoCurrentItem))
		return
	}

	grade := domain.Grade(req.Grade)
	updated, err := h.reviews.SubmitAnswer(r.Context(), userID, current.ID, review.ReviewAnswer{
		Grade:            grade,
		AnsweredInMillis: req.AnsweredInMillis,
	})
	if err != nil {
		shared.RespondWithErrorAndLog(w, r,
			MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	if _, err := mgr.Grade(grade); err != nil {
		shared.RespondWithErrorAndLog(w, r,
			MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	// Items due again within the horizon stay in this sitting.
	if updated.DueAt.Before(h.now().Add(h.horizon)) {
		mgr.ScheduleReturn(updated, updated.DueAt, grade == domain.GradeAgain)
	}

	log.Debug("session grade applied",
		slog.String("user_id", userID.String()),
		slog.String("item_id", updated.ID.String()),
		slog.String("grade", string(grade)))

	h.respondWithState(w, r, userID, mgr, nil)
}

// ExtendSession handles POST /users/{userID}/session/extend requests.
// It pulls extra new items beyond the daily budget into a finished session.
func (h *SessionHandler) ExtendSession(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, mgr, ok := h.activeSession(w, r)
	if !ok {
		return
	}

	var req ExtendRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "extra_new must not be negative")
		return
	}

	items, stats, err := h.reviews.BuildSessionQueue(r.Context(), userID, req.ExtraNew)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r,
			MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	mgr.Extend(items)

	log.Info("review session extended",
		slog.String("user_id", userID.String()),
		slog.Int("added", len(items)))

	h.respondWithState(w, r, userID, mgr, &stats)
}

// EndSession handles DELETE /users/{userID}/session requests.
func (h *SessionHandler) EndSession(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := parseUserID(w, r)
	if !ok {
		return
	}

	h.sessions.Remove(userID)

	log.Info("review session ended", slog.String("user_id", userID.String()))
	w.WriteHeader(http.StatusNoContent)
}

func (h *SessionHandler) activeSession(
	w http.ResponseWriter,
	r *http.Request,
) (uuid.UUID, *session.Manager, bool) {
	userID, ok := parseUserID(w, r)
	if !ok {
		return uuid.Nil, nil, false
	}

	mgr := h.sessions.Get(userID)
	if mgr == nil {
		shared.RespondWithError(w, r, http.StatusNotFound, "No active review session")
		return uuid.Nil, nil, false
	}

	return userID, mgr, true
}

func (h *SessionHandler) respondWithState(
	w http.ResponseWriter,
	r *http.Request,
	userID uuid.UUID,
	mgr *session.Manager,
	stats *queue.Stats,
) {
	resp := SessionStateResponse{
		Phase:          string(mgr.Phase()),
		AnswerShown:    mgr.AnswerShown(),
		CardsRemaining: mgr.CardsRemaining(),
		Counters:       mgr.Counters(),
		Stats:          stats,
	}

	if current := mgr.Current(); current != nil {
		item := &CurrentItemResponse{
			ItemID:    current.ID.String(),
			CardID:    current.CardID.String(),
			Direction: string(current.Direction),
			State:     string(current.State),
			Category:  current.Category,
		}

		cards, err := h.reviews.GetCards(r.Context(), []uuid.UUID{current.CardID})
		if err != nil {
			shared.RespondWithErrorAndLog(w, r,
				MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
			return
		}
		if card, ok := cards[current.CardID]; ok {
			prompt, answer := promptAndAnswer(card, current.Direction)
			item.Prompt = prompt
			if mgr.AnswerShown() {
				item.Answer = &answer
			}
		}

		resp.Current = item
	}

	shared.RespondWithJSON(w, r, http.StatusOK, resp)
}
