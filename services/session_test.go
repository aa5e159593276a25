package services

import (
	"testing"
	"time"

	"focargo/logger"
	"focargo/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*SessionStore, *fakeScheduler) {
	t.Helper()
	sched := newFakeScheduler()
	store := NewSessionStore(sched, SessionConfig{InviteDelay: 2 * time.Second}, logger.Nop())
	t.Cleanup(store.Close)
	return store, sched
}

func classification(ecoins int, category string) *models.ClassificationResult {
	return &models.ClassificationResult{Material: "Item " + category, Category: category, EcoinsEarned: ecoins, ConfidenceScore: 90}
}

func scanOnce(t *testing.T, sess *Session, ecoins int) models.UserProgress {
	t.Helper()
	gen, err := sess.BeginScan()
	require.NoError(t, err)
	state, err := sess.FinishScan(gen, classification(ecoins, "Plástico"))
	require.NoError(t, err)
	return state
}

func TestSessionStore_GetOrCreate(t *testing.T) {
	store, _ := newTestStore(t)

	sess, created := store.GetOrCreate("")
	require.True(t, created)
	assert.NotEmpty(t, sess.ID)
	assert.Equal(t, 150, sess.State().Balance)
	assert.Equal(t, models.ViewHome, sess.View())
	assert.Equal(t, models.SaoPauloCenter, sess.Location())
	assert.Equal(t, QuizIdle, sess.QuizState())

	again, created := store.GetOrCreate(sess.ID)
	assert.False(t, created)
	assert.Same(t, sess, again)

	other, created := store.GetOrCreate("not-a-uuid")
	assert.True(t, created)
	assert.NotEqual(t, "not-a-uuid", other.ID)
	assert.Equal(t, 2, store.Len())
}

func TestSession_ScanCreditsState(t *testing.T) {
	store, _ := newTestStore(t)
	sess, _ := store.GetOrCreate("")

	state := scanOnce(t, sess, 20)
	assert.Equal(t, 170, state.Balance)
	assert.Equal(t, 13, state.ItemsIdentified)
	assert.Equal(t, 170, sess.State().Balance)
	require.NotNil(t, sess.LastClassification())
}

func TestSession_ScanBusy(t *testing.T) {
	store, _ := newTestStore(t)
	sess, _ := store.GetOrCreate("")

	_, err := sess.BeginScan()
	require.NoError(t, err)
	_, err = sess.BeginScan()
	assert.ErrorIs(t, err, ErrBusy)

	sess.AbortScan(ScanFailedMessage)
	_, err = sess.BeginScan()
	assert.NoError(t, err)
}

func TestSession_StaleScanDiscardedAfterNavigation(t *testing.T) {
	store, _ := newTestStore(t)
	sess, _ := store.GetOrCreate("")

	gen, err := sess.BeginScan()
	require.NoError(t, err)
	_, err = sess.Navigate(models.ViewMap)
	require.NoError(t, err)

	_, err = sess.FinishScan(gen, classification(20, "Vidro"))
	assert.ErrorIs(t, err, ErrStaleResponse)
	assert.Equal(t, 150, sess.State().Balance)
	assert.Equal(t, 12, sess.State().ItemsIdentified)

	// the reservation is released either way
	_, err = sess.BeginScan()
	assert.NoError(t, err)
}

func TestSession_RenavigatingToSameViewKeepsScan(t *testing.T) {
	store, _ := newTestStore(t)
	sess, _ := store.GetOrCreate("")
	_, err := sess.Navigate(models.ViewScan)
	require.NoError(t, err)

	gen, err := sess.BeginScan()
	require.NoError(t, err)
	view, err := sess.Navigate(models.ViewScan)
	require.NoError(t, err)
	assert.Equal(t, models.ViewScan, view)

	state, err := sess.FinishScan(gen, classification(20, "Vidro"))
	require.NoError(t, err)
	assert.Equal(t, 170, state.Balance)
}

func TestSession_ScanAfterTeardownDiscarded(t *testing.T) {
	store, sched := newTestStore(t)
	sess, _ := store.GetOrCreate("")

	gen, err := sess.BeginScan()
	require.NoError(t, err)
	require.True(t, store.Teardown(sess.ID))

	_, err = sess.FinishScan(gen, classification(20, "Vidro"))
	assert.ErrorIs(t, err, ErrSessionClosed)
	assert.Equal(t, 150, sess.State().Balance)
	_, ok := store.Get(sess.ID)
	assert.False(t, ok)
	assert.False(t, sched.has(sess.inviteKey()))
}

func TestSession_InvitationAfterThirdItem(t *testing.T) {
	store, sched := newTestStore(t)
	sess, _ := store.GetOrCreate("")
	key := sess.inviteKey()

	scanOnce(t, sess, 10) // 13
	scanOnce(t, sess, 10) // 14
	assert.False(t, sched.has(key))

	scanOnce(t, sess, 10) // 15
	require.True(t, sched.has(key))
	assert.Equal(t, 2*time.Second, sched.delays[key])
	assert.Equal(t, QuizIdle, sess.QuizState(), "not before the delay")

	require.True(t, sched.fire(key))
	assert.Equal(t, QuizInvitationPending, sess.QuizState())
}

func TestSession_NewerItemCancelsPendingInvitation(t *testing.T) {
	store, sched := newTestStore(t)
	sess, _ := store.GetOrCreate("")
	key := sess.inviteKey()

	scanOnce(t, sess, 10)
	scanOnce(t, sess, 10)
	scanOnce(t, sess, 10) // 15, timer armed
	stale, ok := sched.take(key)
	require.True(t, ok)

	scanOnce(t, sess, 10) // 16
	assert.False(t, sched.has(key))

	// a callback that raced past cancellation must not open an invitation
	stale()
	assert.Equal(t, QuizIdle, sess.QuizState())
}

func TestSession_TeardownCancelsInvitation(t *testing.T) {
	store, sched := newTestStore(t)
	sess, _ := store.GetOrCreate("")
	key := sess.inviteKey()

	scanOnce(t, sess, 10)
	scanOnce(t, sess, 10)
	scanOnce(t, sess, 10)
	stale, ok := sched.take(key)
	require.True(t, ok)
	require.NoError(t, sched.After(key, time.Second, stale))

	store.Teardown(sess.ID)
	assert.False(t, sched.has(key))
	assert.Contains(t, sched.cancelled, key)

	stale()
	assert.Equal(t, QuizIdle, sess.QuizState())
}

func TestSession_NoInvitationWhileQuizBusy(t *testing.T) {
	store, sched := newTestStore(t)
	sess, _ := store.GetOrCreate("")
	key := sess.inviteKey()

	for i := 0; i < 3; i++ {
		scanOnce(t, sess, 10) // 15
	}
	require.True(t, sched.fire(key))
	require.Equal(t, QuizInvitationPending, sess.QuizState())

	for i := 0; i < 3; i++ {
		scanOnce(t, sess, 10) // 18, eligible but a quiz is pending
	}
	assert.False(t, sched.has(key))
}

func TestSession_QuizFlow(t *testing.T) {
	store, sched := newTestStore(t)
	sess, _ := store.GetOrCreate("")
	for i := 0; i < 3; i++ {
		scanOnce(t, sess, 10)
	}
	require.True(t, sched.fire(sess.inviteKey()))

	prompt, err := sess.BeginQuiz()
	require.NoError(t, err)
	assert.Contains(t, prompt, "Items Identified: 15")

	q := sampleQuiz()
	snap, err := sess.CompleteQuiz(&q, nil)
	require.NoError(t, err)
	assert.Equal(t, QuizActive, snap.State)

	before := sess.State().Balance
	state, fb, err := sess.AnswerQuiz("B")
	require.NoError(t, err)
	assert.True(t, fb.IsCorrect)
	assert.Equal(t, before+25, state.Balance)
	assert.Equal(t, QuizFeedback, sess.QuizState())

	_, _, err = sess.AnswerQuiz("B")
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = sess.CloseQuiz()
	require.NoError(t, err)
	assert.Equal(t, QuizIdle, sess.QuizState())
}

func TestSession_QuizGenerationFailure(t *testing.T) {
	store, sched := newTestStore(t)
	sess, _ := store.GetOrCreate("")
	for i := 0; i < 3; i++ {
		scanOnce(t, sess, 10)
	}
	require.True(t, sched.fire(sess.inviteKey()))
	before := sess.State()

	_, err := sess.BeginQuiz()
	require.NoError(t, err)
	snap, err := sess.CompleteQuiz(nil, ErrMalformedResponse)
	assert.ErrorIs(t, err, ErrMalformedResponse)
	assert.Equal(t, QuizIdle, snap.State)
	assert.Equal(t, before, sess.State())
}

func TestSession_DeclineOnlyWhenInvited(t *testing.T) {
	store, _ := newTestStore(t)
	sess, _ := store.GetOrCreate("")

	_, err := sess.DeclineQuiz()
	assert.ErrorIs(t, err, ErrInvalidTransition)
	_, err = sess.BeginQuiz()
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestSession_Events(t *testing.T) {
	store, _ := newTestStore(t)
	sess, _ := store.GetOrCreate("")
	events, unsubscribe := sess.Subscribe()
	defer unsubscribe()
	assert.Equal(t, 1, sess.hub.subscribers())

	_, err := sess.Navigate(models.ViewImpact)
	require.NoError(t, err)
	scanOnce(t, sess, 10)

	var types []string
	for len(types) < 3 {
		select {
		case ev := <-events:
			types = append(types, ev.Type)
		case <-time.After(time.Second):
			t.Fatalf("got only %v", types)
		}
	}
	assert.Equal(t, []string{EventView, EventState, EventNotification}, types)

	store.Teardown(sess.ID)
	_, open := <-events
	assert.False(t, open, "stream closes on teardown")
}

func TestSessionStore_Sweep(t *testing.T) {
	store, _ := newTestStore(t)
	now := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	old, _ := store.GetOrCreate("")
	now = now.Add(3 * time.Hour)
	fresh, _ := store.GetOrCreate("")

	removed := store.Sweep(2 * time.Hour)
	assert.Equal(t, 1, removed)
	_, ok := store.Get(old.ID)
	assert.False(t, ok)
	_, ok = store.Get(fresh.ID)
	assert.True(t, ok)
}

func TestSession_RateLimit(t *testing.T) {
	sched := newFakeScheduler()
	store := NewSessionStore(sched, SessionConfig{AIRatePerMinute: 2}, logger.Nop())
	sess, _ := store.GetOrCreate("")

	assert.True(t, sess.AllowAI())
	assert.True(t, sess.AllowAI())
	assert.False(t, sess.AllowAI())
}

func TestSession_ZeroRateIsUnlimited(t *testing.T) {
	store := NewSessionStore(newFakeScheduler(), SessionConfig{AIRatePerMinute: 0}, logger.Nop())
	t.Cleanup(store.Close)
	sess, _ := store.GetOrCreate("")

	for i := 0; i < 100; i++ {
		require.True(t, sess.AllowAI())
	}
}

func TestSession_UnsubscribeReleasesStream(t *testing.T) {
	store, _ := newTestStore(t)
	sess, _ := store.GetOrCreate("")

	_, first := sess.Subscribe()
	_, second := sess.Subscribe()
	assert.Equal(t, 2, sess.hub.subscribers())

	first()
	first()
	assert.Equal(t, 1, sess.hub.subscribers())
	second()
	assert.Equal(t, 0, sess.hub.subscribers())
}
