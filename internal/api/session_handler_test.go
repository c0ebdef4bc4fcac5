package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mnemo-app/mnemo-api/internal/domain"
	"github.com/mnemo-app/mnemo-api/internal/queue"
	"github.com/mnemo-app/mnemo-api/internal/service/review"
	"github.com/mnemo-app/mnemo-api/internal/session"
)

// fakeReviewService implements review.Service with canned data.
type fakeReviewService struct {
	queueItems []*domain.ReviewItem
	cards      map[uuid.UUID]*domain.Card
	submitErr  error
	submitted  []domain.Grade
}

var _ review.Service = (*fakeReviewService)(nil)

func (f *fakeReviewService) SubmitAnswer(
	_ context.Context,
	userID uuid.UUID,
	itemID uuid.UUID,
	answer review.ReviewAnswer,
) (*domain.ReviewItem, error) {
	if f.submitErr != nil {
		return nil, f.submitErr
	}
	f.submitted = append(f.submitted, answer.Grade)

	for _, item := range f.queueItems {
		if item.ID == itemID {
			updated := *item
			updated.State = domain.ItemStateLearning
			updated.DueAt = time.Now().UTC().Add(time.Minute)
			return &updated, nil
		}
	}
	return nil, review.ErrItemNotFound
}

func (f *fakeReviewService) BuildSessionQueue(
	_ context.Context,
	_ uuid.UUID,
	_ int,
) ([]*domain.ReviewItem, queue.Stats, error) {
	return f.queueItems, queue.Stats{Total: len(f.queueItems)}, nil
}

func (f *fakeReviewService) CreateCard(
	_ context.Context,
	userID uuid.UUID,
	content review.NewCardContent,
) (*domain.Card, []*domain.ReviewItem, error) {
	card, err := domain.NewCard(userID, content.Front, content.Back, content.Category)
	if err != nil {
		return nil, nil, err
	}
	return card, nil, nil
}

func (f *fakeReviewService) PostponeItem(
	_ context.Context,
	_ uuid.UUID,
	_ uuid.UUID,
	_ int,
) (*domain.ReviewItem, error) {
	return nil, review.ErrItemNotFound
}

func (f *fakeReviewService) GetCards(
	_ context.Context,
	ids []uuid.UUID,
) (map[uuid.UUID]*domain.Card, error) {
	out := make(map[uuid.UUID]*domain.Card)
	for _, id := range ids {
		if card, ok := f.cards[id]; ok {
			out[id] = card
		}
	}
	return out, nil
}

func (f *fakeReviewService) Config(
	_ context.Context,
	userID uuid.UUID,
) (*domain.SchedulerConfig, error) {
	return domain.DefaultSchedulerConfig(userID), nil
}

func (f *fakeReviewService) UpdateConfig(_ context.Context, _ *domain.SchedulerConfig) error {
	return nil
}

func newSessionTestServer(t *testing.T, svc review.Service) *httptest.Server {
	t.Helper()

	registry := session.NewRegistry()
	handler := NewSessionHandler(svc, registry, time.Hour, nil)

	r := chi.NewRouter()
	r.Route("/users/{userID}/session", func(r chi.Router) {
		r.Post("/", handler.StartSession)
		r.Get("/", handler.GetState)
		r.Delete("/", handler.EndSession)
		r.Post("/reveal", handler.RevealAnswer)
		r.Post("/grade", handler.SubmitGrade)
		r.Post("/extend", handler.ExtendSession)
	})

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func testCardAndItem(t *testing.T, userID uuid.UUID) (*domain.Card, *domain.ReviewItem) {
	t.Helper()

	card, err := domain.NewCard(userID, "bonjour", "hello", "french")
	require.NoError(t, err)
	item, err := domain.NewReviewItem(userID, card.ID, domain.DirectionForward, card.Category)
	require.NoError(t, err)
	return card, item
}

func decodeState(t *testing.T, resp *http.Response) SessionStateResponse {
	t.Helper()

	defer func() { _ = resp.Body.Close() }()
	var state SessionStateResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&state))
	return state
}

func TestSessionLifecycle(t *testing.T) {
	userID := uuid.New()
	card, item := testCardAndItem(t, userID)

	svc := &fakeReviewService{
		queueItems: []*domain.ReviewItem{item},
		cards:      map[uuid.UUID]*domain.Card{card.ID: card},
	}
	srv := newSessionTestServer(t, svc)
	base := fmt.Sprintf("%s/users/%s/session", srv.URL, userID)

	// Start: the first item is on display, answer hidden.
	resp, err := http.Post(base, "application/json", nil)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	state := decodeState(t, resp)
	assert.Equal(t, "reviewing", state.Phase)
	require.NotNil(t, state.Current)
	assert.Equal(t, "bonjour", state.Current.Prompt)
	assert.Nil(t, state.Current.Answer)
	require.NotNil(t, state.Stats)
	assert.Equal(t, 1, state.Stats.Total)

	// Reveal: the answer becomes visible.
	resp, err = http.Post(base+"/reveal", "application/json", nil)
	require.NoError(t, err)
	state = decodeState(t, resp)
	assert.True(t, state.AnswerShown)
	require.NotNil(t, state.Current)
	require.NotNil(t, state.Current.Answer)
	assert.Equal(t, "hello", *state.Current.Answer)

	// Grade good: the item comes due in a minute, which is inside the
	// horizon, so the session waits for it instead of completing.
	body, _ := json.Marshal(GradeRequest{Grade: "good"})
	resp, err = http.Post(base+"/grade", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	state = decodeState(t, resp)
	assert.Equal(t, "waiting", state.Phase)
	assert.Equal(t, 1, state.Counters.Reviewed)
	assert.Equal(t, []domain.Grade{domain.GradeGood}, svc.submitted)

	// End: the session is gone.
	req, _ := http.NewRequest(http.MethodDelete, base, nil)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, err = http.Get(base)
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestSubmitGradeValidation(t *testing.T) {
	userID := uuid.New()
	card, item := testCardAndItem(t, userID)

	svc := &fakeReviewService{
		queueItems: []*domain.ReviewItem{item},
		cards:      map[uuid.UUID]*domain.Card{card.ID: card},
	}
	srv := newSessionTestServer(t, svc)
	base := fmt.Sprintf("%s/users/%s/session", srv.URL, userID)

	resp, err := http.Post(base, "application/json", nil)
	require.NoError(t, err)
	_ = resp.Body.Close()

	body, _ := json.Marshal(GradeRequest{Grade: "perfect"})
	resp, err = http.Post(base+"/grade", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Empty(t, svc.submitted)
}

func TestSessionWithoutStart(t *testing.T) {
	svc := &fakeReviewService{}
	srv := newSessionTestServer(t, svc)

	resp, err := http.Get(fmt.Sprintf("%s/users/%s/session", srv.URL, uuid.New()))
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestSessionInvalidUserID(t *testing.T) {
	svc := &fakeReviewService{}
	srv := newSessionTestServer(t, svc)

	resp, err := http.Post(srv.URL+"/users/not-a-uuid/session", "application/json", nil)
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
