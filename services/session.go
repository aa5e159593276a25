package services

import (
	"strconv"
	"sync"
	"time"

	"focargo/logger"
	"focargo/metrics"
	"focargo/models"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

// SessionSnapshot is a consistent read of a session, safe to serialize.
type SessionSnapshot struct {
	ID       string              `json:"session_id"`
	State    models.UserProgress `json:"state"`
	Quiz     QuizSnapshot        `json:"quiz"`
	View     models.AppView      `json:"view"`
	Location models.LatLng       `json:"location"`
}

// Session owns one user's progress, quiz controller and active view. Every transition
// runs to completion under mu and swaps in a new progress value.
type Session struct {
	ID string

	mu                 sync.Mutex
	state              models.UserProgress
	quiz               *QuizController
	view               models.AppView
	location           models.LatLng
	generation         uint64 // bumped on navigation and teardown
	inviteSeq          uint64
	scanInFlight       bool
	lastClassification *models.ClassificationResult
	lastSeen           time.Time
	closed             bool

	hub         *eventHub
	limiter     *rate.Limiter
	sched       Scheduler
	inviteDelay time.Duration
	now         func() time.Time
	log         *logger.Logger
}

func (s *Session) inviteKey() string { return "quiz-invite:" + s.ID }

func (s *Session) Snapshot() SessionSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() SessionSnapshot {
	return SessionSnapshot{
		ID:       s.ID,
		State:    s.state,
		Quiz:     s.quiz.Snapshot(),
		View:     s.view,
		Location: s.location,
	}
}

// State returns the current progress value.
func (s *Session) State() models.UserProgress {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) View() models.AppView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view
}

func (s *Session) Location() models.LatLng {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.location
}

func (s *Session) QuizState() QuizState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.quiz.State()
}

// LastClassification is the result of the latest applied scan, if any.
func (s *Session) LastClassification() *models.ClassificationResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastClassification
}

func (s *Session) Subscribe() (<-chan SessionEvent, func()) {
	return s.hub.subscribe()
}

func (s *Session) Touch() {
	s.mu.Lock()
	s.lastSeen = s.now()
	s.mu.Unlock()
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

// AllowAI consumes one token of the session's AI request budget.
func (s *Session) AllowAI() bool {
	return s.limiter.Allow()
}

// Navigate switches the active view. Any AI call started before it is discarded on return.
func (s *Session) Navigate(view models.AppView) (models.AppView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return s.view, ErrSessionClosed
	}
	if view == s.view {
		return view, nil
	}
	s.view = view
	s.generation++
	s.publish(EventView, view)
	return view, nil
}

func (s *Session) SetLocation(loc models.LatLng) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	s.location = loc
	return nil
}

// BeginScan reserves the session for one classification and returns the generation
// the result must be applied under.
func (s *Session) BeginScan() (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, ErrSessionClosed
	}
	if s.scanInFlight {
		return 0, ErrBusy
	}
	s.scanInFlight = true
	return s.generation, nil
}

// AbortScan releases the scan reservation after a failed classification.
func (s *Session) AbortScan(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scanInFlight = false
	if !s.closed && message != "" {
		s.publish(EventNotification, Notification{Kind: "error", Message: message})
	}
}

// FinishScan credits a classification started under gen. A result that comes back after
// navigation or teardown is dropped with ErrStaleResponse / ErrSessionClosed.
func (s *Session) FinishScan(gen uint64, result *models.ClassificationResult) (models.UserProgress, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scanInFlight = false
	if s.closed {
		return s.state, ErrSessionClosed
	}
	if gen != s.generation {
		return s.state, ErrStaleResponse
	}

	s.state = ApplyClassification(s.state, result.EcoinsEarned, result.Material, result.Category)
	s.lastClassification = result
	s.publish(EventState, s.state)
	s.publish(EventNotification, Notification{Kind: "success", Message: "+" + strconv.Itoa(result.EcoinsEarned) + " Ecoins"})
	s.itemsChangedLocked()
	return s.state, nil
}

// AttachImage sets the archived image URL on the activity item that a scan produced.
// It reports false when the item is no longer in the history.
func (s *Session) AttachImage(activityID, imageURL string) (models.UserProgress, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return s.state, false
	}
	for i := range s.state.History {
		if s.state.History[i].ID != activityID {
			continue
		}
		next := s.state.Clone()
		next.History[i].ImageURL = imageURL
		s.state = next
		s.publish(EventState, s.state)
		return s.state, true
	}
	return s.state, false
}

// PendingInvitation returns nil when a quiz invitation is waiting to be accepted.
func (s *Session) PendingInvitation() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	if st := s.quiz.State(); st != QuizInvitationPending {
		return transitionError("accept", st)
	}
	return nil
}

// itemsChangedLocked restarts the invitation timer for the new item count.
// A pending timer from an older count is always cancelled first.
func (s *Session) itemsChangedLocked() {
	s.inviteSeq++
	s.sched.Cancel(s.inviteKey())
	if !EligibleForInvitation(s.state.ItemsIdentified) || s.quiz.State() != QuizIdle {
		return
	}
	seq := s.inviteSeq
	if err := s.sched.After(s.inviteKey(), s.inviteDelay, func() { s.fireInvitation(seq) }); err != nil {
		s.log.Warn("failed to schedule quiz invitation", "error", err.Error())
	}
}

func (s *Session) fireInvitation(seq uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || seq != s.inviteSeq {
		return
	}
	if err := s.quiz.Invite(); err != nil {
		s.log.Debug("quiz invitation skipped", "reason", err.Error())
		return
	}
	s.publish(EventQuizInvitation, s.quiz.Snapshot())
}

func (s *Session) DeclineQuiz() (QuizSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return QuizSnapshot{}, ErrSessionClosed
	}
	if err := s.quiz.Decline(); err != nil {
		return s.quiz.Snapshot(), err
	}
	snap := s.quiz.Snapshot()
	s.publish(EventQuiz, snap)
	return snap, nil
}

// BeginQuiz accepts the pending invitation and returns the generation prompt.
func (s *Session) BeginQuiz() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return "", ErrSessionClosed
	}
	prompt, err := s.quiz.Accept(s.state)
	if err != nil {
		return "", err
	}
	s.publish(EventQuiz, s.quiz.Snapshot())
	return prompt, nil
}

// CompleteQuiz stores the generated quiz, or returns the controller to idle when
// generation failed (genErr is handed back unchanged).
func (s *Session) CompleteQuiz(quiz *models.QuizData, genErr error) (QuizSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return QuizSnapshot{}, ErrSessionClosed
	}
	if s.quiz.State() != QuizGenerating {
		return s.quiz.Snapshot(), ErrStaleResponse
	}
	if genErr != nil {
		_ = s.quiz.GenerationFailed()
		s.publish(EventNotification, Notification{Kind: "error", Message: QuizFailedMessage})
		s.publish(EventQuiz, s.quiz.Snapshot())
		return s.quiz.Snapshot(), genErr
	}
	if err := s.quiz.Generated(quiz); err != nil {
		return s.quiz.Snapshot(), err
	}
	snap := s.quiz.Snapshot()
	s.publish(EventQuiz, snap)
	return snap, nil
}

func (s *Session) AnswerQuiz(optionID string) (models.UserProgress, models.AnswerFeedback, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return s.state, models.AnswerFeedback{}, ErrSessionClosed
	}
	next, fb, err := s.quiz.Answer(s.state, optionID, s.now())
	if err != nil {
		return s.state, fb, err
	}
	s.state = next
	s.publish(EventState, s.state)
	s.publish(EventQuiz, s.quiz.Snapshot())
	return s.state, fb, nil
}

func (s *Session) CloseQuiz() (QuizSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return QuizSnapshot{}, ErrSessionClosed
	}
	if err := s.quiz.Close(); err != nil {
		return s.quiz.Snapshot(), err
	}
	snap := s.quiz.Snapshot()
	s.publish(EventQuiz, snap)
	return snap, nil
}

// Redeem spends Ecoins on item; the state is untouched when the balance is short.
func (s *Session) Redeem(item models.MarketItem) (models.UserProgress, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return s.state, ErrSessionClosed
	}
	next, err := ApplyRedemption(s.state, item)
	if err != nil {
		return s.state, err
	}
	s.state = next
	s.publish(EventState, s.state)
	return s.state, nil
}

func (s *Session) publish(typ string, data interface{}) {
	s.hub.publish(SessionEvent{Type: typ, Data: data})
}

// teardown stops timers, invalidates in-flight AI calls and closes streams.
func (s *Session) teardown() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.generation++
	s.inviteSeq++
	s.mu.Unlock()

	s.sched.Cancel(s.inviteKey())
	s.hub.close()
}

type SessionConfig struct {
	InviteDelay     time.Duration
	AIRatePerMinute int
}

// SessionStore keeps live sessions in memory. Nothing is persisted.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	sched    Scheduler
	cfg      SessionConfig
	now      func() time.Time
	log      *logger.Logger
}

func NewSessionStore(sched Scheduler, cfg SessionConfig, log *logger.Logger) *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*Session),
		sched:    sched,
		cfg:      cfg,
		now:      time.Now,
		log:      log.With("service", "SessionStore"),
	}
}

// GetOrCreate returns the session for id, creating it when missing. Ids that are not
// UUIDs are replaced with a fresh one; the caller must echo the returned session's ID.
func (st *SessionStore) GetOrCreate(id string) (*Session, bool) {
	if _, err := uuid.Parse(id); err != nil {
		id = uuid.NewString()
	}

	st.mu.Lock()
	if sess, ok := st.sessions[id]; ok {
		st.mu.Unlock()
		sess.Touch()
		return sess, false
	}
	sess := st.newSession(id)
	st.sessions[id] = sess
	n := len(st.sessions)
	st.mu.Unlock()

	metrics.SetActiveSessions(n)
	st.log.Info("session created", "session_id", id)
	return sess, true
}

func (st *SessionStore) newSession(id string) *Session {
	limit := rate.Inf
	burst := 1
	if st.cfg.AIRatePerMinute > 0 {
		limit = rate.Limit(float64(st.cfg.AIRatePerMinute) / 60)
		burst = st.cfg.AIRatePerMinute
	}
	return &Session{
		ID:          id,
		state:       models.NewUserProgress(),
		quiz:        NewQuizController(),
		view:        models.ViewHome,
		location:    models.SaoPauloCenter,
		lastSeen:    st.now(),
		hub:         newEventHub(),
		limiter:     rate.NewLimiter(limit, burst),
		sched:       st.sched,
		inviteDelay: st.cfg.InviteDelay,
		now:         st.now,
		log:         st.log.With("session_id", id),
	}
}

func (st *SessionStore) Get(id string) (*Session, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	sess, ok := st.sessions[id]
	return sess, ok
}

// Teardown removes the session and releases its timer and streams.
func (st *SessionStore) Teardown(id string) bool {
	st.mu.Lock()
	sess, ok := st.sessions[id]
	delete(st.sessions, id)
	n := len(st.sessions)
	st.mu.Unlock()

	if !ok {
		return false
	}
	sess.teardown()
	metrics.SetActiveSessions(n)
	st.log.Info("session torn down", "session_id", id)
	return true
}

// Sweep tears down sessions not seen for longer than idle. Returns how many went.
func (st *SessionStore) Sweep(idle time.Duration) int {
	cutoff := st.now().Add(-idle)

	st.mu.RLock()
	var stale []string
	for id, sess := range st.sessions {
		if sess.idleSince().Before(cutoff) {
			stale = append(stale, id)
		}
	}
	st.mu.RUnlock()

	removed := 0
	for _, id := range stale {
		if st.Teardown(id) {
			removed++
		}
	}
	return removed
}

func (st *SessionStore) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}

// Close tears down every session.
func (st *SessionStore) Close() {
	st.mu.RLock()
	ids := make([]string, 0, len(st.sessions))
	for id := range st.sessions {
		ids = append(ids, id)
	}
	st.mu.RUnlock()
	for _, id := range ids {
		st.Teardown(id)
	}
}
