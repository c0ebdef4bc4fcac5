package session

import (
	"errors"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mnemo-app/mnemo-api/internal/domain"
)

// Phase describes where a session sits in its lifecycle. It is a pure
// function of the session's pools and counters, recomputed after every
// mutation.
type Phase string

// Session phases.
const (
	// PhaseLoading means the session has not been initialized yet.
	PhaseLoading Phase = "loading"

	// PhaseEmpty means the session was initialized with nothing to review.
	PhaseEmpty Phase = "empty"

	// PhaseReviewing means an item is being shown, or one is ready to be.
	PhaseReviewing Phase = "reviewing"

	// PhaseWaiting means nothing is ready right now but items will
	// resurface when their in-session delay elapses.
	PhaseWaiting Phase = "waiting"

	// PhaseComplete means every item in the session has been exhausted.
	PhaseComplete Phase = "complete"
)

// Manager errors.
var (
	// ErrNoCurrentItem is returned when grading without an item on display.
	ErrNoCurrentItem = errors.New("no current item to grade")

	// ErrSessionClosed is returned when operating on a torn-down session.
	ErrSessionClosed = errors.New("session is closed")
)

// Counters accumulates per-session review statistics.
type Counters struct {
	// TotalSeen is the number of distinct items shown this session.
	TotalSeen int `json:"total_seen"`

	// Reviewed is the number of grading events, counting repeats.
	Reviewed int `json:"reviewed"`

	// AgainCount is how many grading events were Again.
	AgainCount int `json:"again_count"`

	// ReReviewed is how many graded items had previously been failed with
	// Again and came back around within this session.
	ReReviewed int `json:"re_reviewed"`
}

// waitingEntry pairs an item with the wall-clock moment it becomes available
// to show again.
type waitingEntry struct {
	item        *domain.ReviewItem
	availableAt time.Time
}

// Manager is the in-session queue state machine. All exported methods are
// safe to call concurrently with timer fires; both run under one mutex.
type Manager struct {
	mu     sync.Mutex
	now    func() time.Time
	logger *slog.Logger

	initialized bool
	closed      bool

	current *domain.ReviewItem
	ready   []*domain.ReviewItem
	waiting []waitingEntry

	answerShown  bool
	seen         map[uuid.UUID]bool
	againFlagged map[uuid.UUID]bool

	counters Counters
	phase    Phase

	// One timer aimed at the soonest waiting entry replaces the
	// timer-per-item design; timerGen invalidates fires scheduled before
	// the waiting set last changed.
	timer    *time.Timer
	timerGen uint64
}

// Option configures a Manager.
type Option func(*Manager)

// WithClock replaces the manager's time source. Tests use this to pin the
// clock; delays handed to timers are still measured against this source.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// WithLogger attaches a logger to the manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger.With(slog.String("component", "session_manager"))
	}
}

// NewManager creates an uninitialized session manager in the loading phase.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		now:          time.Now,
		logger:       slog.Default(),
		seen:         make(map[uuid.UUID]bool),
		againFlagged: make(map[uuid.UUID]bool),
		phase:        PhaseLoading,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Init seeds the session with its initial batch of items. The first item
// becomes current, the rest form the ready pool. Init is idempotent: once a
// session is initialized, later calls are ignored even if the source batch
// changed.
func (m *Manager) Init(items []*domain.ReviewItem) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.initialized || m.closed {
		return
	}
	m.initialized = true

	if len(items) > 0 {
		m.current = items[0]
		m.markSeenLocked(m.current)
		m.ready = append(m.ready, items[1:]...)
	}

	m.recomputePhaseLocked()
}

// RevealAnswer flags that the current item's answer has been shown. It has
// no other effect on session state.
func (m *Manager) RevealAnswer() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.answerShown = true
}

// Grade records a grading event for the current item and rotates the next
// ready item into its place. It returns the graded item so the caller can
// run the scheduling engine and, if the new due time falls inside the
// in-session horizon, hand the item back via ScheduleReturn.
//
// When an Again grade leaves nothing current, ready, or waiting, the session
// holds in the waiting phase rather than completing: the caller is expected
// to schedule the graded item's return immediately.
func (m *Manager) Grade(grade domain.Grade) (*domain.ReviewItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil, ErrSessionClosed
	}
	if m.current == nil {
		return nil, ErrNoCurrentItem
	}

	graded := m.current
	if len(m.ready) > 0 {
		m.current = m.ready[0]
		m.ready = m.ready[1:]
		m.markSeenLocked(m.current)
	} else {
		m.current = nil
	}

	m.counters.Reviewed++
	if grade == domain.GradeAgain {
		m.counters.AgainCount++
	}
	if m.againFlagged[graded.ID] {
		m.counters.ReReviewed++
		delete(m.againFlagged, graded.ID)
	}

	m.answerShown = false
	m.recomputePhaseLocked()
	if grade == domain.GradeAgain && m.phase == PhaseComplete {
		m.phase = PhaseWaiting
	}

	return graded, nil
}

// ScheduleReturn holds a just-graded item in the session to resurface when
// availableAt arrives. The caller invokes it only when the item's new due
// time is close enough to matter within this sitting; items due later simply
// fall out of session scope. wasAgain marks the item so a later re-grade
// counts toward the re-reviewed counter.
func (m *Manager) ScheduleReturn(item *domain.ReviewItem, availableAt time.Time, wasAgain bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed || item == nil {
		return
	}

	entry := waitingEntry{item: item, availableAt: availableAt}
	idx := sort.Search(len(m.waiting), func(i int) bool {
		return m.waiting[i].availableAt.After(availableAt)
	})
	m.waiting = append(m.waiting, waitingEntry{})
	copy(m.waiting[idx+1:], m.waiting[idx:])
	m.waiting[idx] = entry

	if wasAgain {
		m.againFlagged[item.ID] = true
	}

	m.recomputePhaseLocked()
	m.rescheduleTimerLocked()
}

// Extend appends externally fetched items, e.g. when the user continues past
// the daily limit. With no current item the first new item takes the display
// immediately; otherwise everything joins the back of the ready pool. Calling
// with an empty batch is a no-op.
func (m *Manager) Extend(items []*domain.ReviewItem) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed || len(items) == 0 {
		return
	}

	if m.current == nil {
		m.current = items[0]
		m.markSeenLocked(m.current)
		m.ready = append(m.ready, items[1:]...)
	} else {
		m.ready = append(m.ready, items...)
	}

	m.recomputePhaseLocked()
}

// Close tears the session down, cancelling any pending timer. A timer that
// already fired concurrently becomes a no-op. Close is idempotent.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true
	m.timerGen++
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
}

// Phase returns the session's current phase.
func (m *Manager) Phase() Phase {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.phase
}

// Current returns the item on display, or nil.
func (m *Manager) Current() *domain.ReviewItem {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// AnswerShown reports whether the current item's answer has been revealed.
func (m *Manager) AnswerShown() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.answerShown
}

// Counters returns a copy of the session's counters.
func (m *Manager) Counters() Counters {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.counters
}

// CardsRemaining returns how many items are still in play: the current item,
// everything ready, and everything waiting to resurface.
func (m *Manager) CardsRemaining() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cardsRemainingLocked()
}

func (m *Manager) cardsRemainingLocked() int {
	n := len(m.ready) + len(m.waiting)
	if m.current != nil {
		n++
	}
	return n
}

func (m *Manager) markSeenLocked(item *domain.ReviewItem) {
	if !m.seen[item.ID] {
		m.seen[item.ID] = true
		m.counters.TotalSeen++
	}
}

// recomputePhaseLocked derives the phase from the pools and counters.
func (m *Manager) recomputePhaseLocked() {
	if !m.initialized {
		m.phase = PhaseLoading
		return
	}

	switch {
	case m.current != nil:
		m.phase = PhaseReviewing
	case len(m.ready) > 0:
		m.phase = PhaseReviewing
	case len(m.waiting) > 0:
		m.phase = PhaseWaiting
	case m.counters.TotalSeen > 0:
		m.phase = PhaseComplete
	default:
		m.phase = PhaseEmpty
	}
}

// rescheduleTimerLocked replaces the pending timer with one aimed at the
// soonest waiting entry. The previous timer is always cancelled first and its
// generation invalidated, so a concurrent fire of the old timer cannot act.
func (m *Manager) rescheduleTimerLocked() {
	m.timerGen++
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}

	if m.closed || len(m.waiting) == 0 {
		return
	}

	gen := m.timerGen
	delay := m.waiting[0].availableAt.Sub(m.now())
	if delay < 0 {
		delay = 0
	}
	m.timer = time.AfterFunc(delay, func() {
		m.fire(gen)
	})
}

// fire releases every waiting entry whose availability has arrived. Stale
// fires, scheduled before the waiting set last changed or arriving after
// Close, are no-ops.
func (m *Manager) fire(gen uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed || gen != m.timerGen {
		return
	}

	now := m.now()
	for len(m.waiting) > 0 && !m.waiting[0].availableAt.After(now) {
		entry := m.waiting[0]
		m.waiting = m.waiting[1:]

		if m.current == nil {
			m.current = entry.item
			m.markSeenLocked(entry.item)
		} else {
			// Recently-failed items resurface before never-seen ones
			// already queued.
			m.ready = append([]*domain.ReviewItem{entry.item}, m.ready...)
		}
	}

	m.recomputePhaseLocked()
	m.rescheduleTimerLocked()
}
