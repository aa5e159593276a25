package services

import (
	"context"
	"encoding/base64"
	"errors"
	"sync"
	"testing"

	"focargo/logger"
	"focargo/models"

	"github.com/gosimple/slug"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGateway struct {
	mu          sync.Mutex
	result      *models.ClassificationResult
	quiz        *models.QuizData
	err         error
	beforeReply func()
	classifyN   int
	quizN       int
	lastImage   ImagePayload
}

func (f *fakeGateway) Classify(_ context.Context, img ImagePayload) (*models.ClassificationResult, error) {
	f.mu.Lock()
	f.classifyN++
	f.lastImage = img
	hook := f.beforeReply
	f.mu.Unlock()
	if hook != nil {
		hook()
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func (f *fakeGateway) GenerateQuiz(_ context.Context, _ string) (*models.QuizData, error) {
	f.mu.Lock()
	f.quizN++
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return f.quiz, nil
}

type fakeArchive struct {
	keys []string
	err  error
}

func (a *fakeArchive) Put(_ context.Context, key, _ string, _ []byte) (string, error) {
	if a.err != nil {
		return "", a.err
	}
	a.keys = append(a.keys, key)
	return "https://cdn.test/" + key, nil
}

func pngDataURI() string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte("fake-png"))
}

func newTestRecycling(t *testing.T, gw Gateway, archive *fakeArchive) (*RecyclingService, *SessionStore, *fakeScheduler) {
	t.Helper()
	store, sched := newTestStore(t)
	var svc *RecyclingService
	if archive != nil {
		svc = NewRecyclingService(gw, archive, newTestCatalog(t), logger.Nop())
	} else {
		svc = NewRecyclingService(gw, nil, newTestCatalog(t), logger.Nop())
	}
	return svc, store, sched
}

func TestRecycling_Scan(t *testing.T) {
	gw := &fakeGateway{result: classification(20, "Plástico Reciclável")}
	archive := &fakeArchive{}
	svc, store, _ := newTestRecycling(t, gw, archive)
	sess, _ := store.GetOrCreate("")

	res, err := svc.Scan(context.Background(), sess, pngDataURI())
	require.NoError(t, err)
	assert.Equal(t, 170, res.State.Balance)
	assert.Equal(t, 13, res.State.ItemsIdentified)
	assert.Equal(t, "image/png", gw.lastImage.MimeType)
	assert.Equal(t, []byte("fake-png"), gw.lastImage.Data)

	require.Len(t, archive.keys, 1)
	assert.Regexp(t, `^scans/`+sess.ID+`/[0-9a-f-]{36}\.png$`, archive.keys[0])
	assert.Equal(t, "https://cdn.test/"+archive.keys[0], res.State.History[0].ImageURL)
}

func TestRecycling_ScanGatewayFailureLeavesStateUnchanged(t *testing.T) {
	for _, gwErr := range []error{ErrEmptyResponse, ErrMalformedResponse, &GatewayHTTPError{StatusCode: 500}, errors.New("connection reset")} {
		gw := &fakeGateway{err: gwErr}
		svc, store, _ := newTestRecycling(t, gw, nil)
		sess, _ := store.GetOrCreate("")
		before := sess.State()

		_, err := svc.Scan(context.Background(), sess, pngDataURI())
		assert.ErrorIs(t, err, gwErr)
		assert.Equal(t, before, sess.State())
		assert.Len(t, sess.State().History, 3)
		assert.Equal(t, 1, gw.classifyN)

		// not left busy
		_, err = sess.BeginScan()
		assert.NoError(t, err)
	}
}

func TestRecycling_ScanRejectsBadImage(t *testing.T) {
	gw := &fakeGateway{result: classification(20, "Vidro")}
	svc, store, _ := newTestRecycling(t, gw, nil)
	sess, _ := store.GetOrCreate("")

	_, err := svc.Scan(context.Background(), sess, "not a data uri")
	assert.ErrorIs(t, err, ErrInvalidImage)
	assert.Equal(t, 0, gw.classifyN)
}

func TestRecycling_ScanArchiveFailureDoesNotFailScan(t *testing.T) {
	gw := &fakeGateway{result: classification(15, "Metal")}
	svc, store, _ := newTestRecycling(t, gw, &fakeArchive{err: errors.New("bucket down")})
	sess, _ := store.GetOrCreate("")

	res, err := svc.Scan(context.Background(), sess, pngDataURI())
	require.NoError(t, err)
	assert.Equal(t, 165, res.State.Balance)
	assert.Empty(t, res.State.History[0].ImageURL)
}

func TestRecycling_ScanDiscardedWhenUserNavigatesAway(t *testing.T) {
	gw := &fakeGateway{result: classification(20, "Vidro")}
	svc, store, _ := newTestRecycling(t, gw, nil)
	sess, _ := store.GetOrCreate("")
	gw.beforeReply = func() { _, _ = sess.Navigate(models.ViewMap) }

	_, err := svc.Scan(context.Background(), sess, pngDataURI())
	assert.ErrorIs(t, err, ErrStaleResponse)
	assert.Equal(t, 150, sess.State().Balance)
}

func TestRecycling_DiscardedScanIsNotArchived(t *testing.T) {
	gw := &fakeGateway{result: classification(20, "Vidro")}
	archive := &fakeArchive{}
	svc, store, _ := newTestRecycling(t, gw, archive)
	sess, _ := store.GetOrCreate("")
	gw.beforeReply = func() { store.Teardown(sess.ID) }

	_, err := svc.Scan(context.Background(), sess, pngDataURI())
	assert.ErrorIs(t, err, ErrSessionClosed)
	assert.Empty(t, archive.keys)
}

func TestRecycling_ScanImageURLPublished(t *testing.T) {
	gw := &fakeGateway{result: classification(20, "Plástico")}
	archive := &fakeArchive{}
	svc, store, _ := newTestRecycling(t, gw, archive)
	sess, _ := store.GetOrCreate("")

	res, err := svc.Scan(context.Background(), sess, pngDataURI())
	require.NoError(t, err)
	require.Len(t, archive.keys, 1)
	assert.Equal(t, res.State.History[0], sess.State().History[0])
	assert.Equal(t, "https://cdn.test/"+archive.keys[0], sess.State().History[0].ImageURL)
}

func TestRecycling_QuizRoundTrip(t *testing.T) {
	q := sampleQuiz()
	gw := &fakeGateway{result: classification(10, "Papel"), quiz: &q}
	svc, store, sched := newTestRecycling(t, gw, nil)
	sess, _ := store.GetOrCreate("")

	for i := 0; i < 3; i++ {
		_, err := svc.Scan(context.Background(), sess, pngDataURI())
		require.NoError(t, err)
	}
	require.True(t, sched.fire(sess.inviteKey()))

	snap, err := svc.AcceptQuiz(context.Background(), sess)
	require.NoError(t, err)
	assert.Equal(t, QuizActive, snap.State)
	require.NotNil(t, snap.Quiz)

	balance := sess.State().Balance
	state, fb, err := svc.AnswerQuiz(sess, "A")
	require.NoError(t, err)
	assert.False(t, fb.IsCorrect)
	assert.Equal(t, balance, state.Balance)
	assert.Equal(t, []string{"plastic"}, state.QuizStats.WeakMaterials)
}

func TestRecycling_AcceptQuizFailureReturnsToIdle(t *testing.T) {
	gw := &fakeGateway{result: classification(10, "Papel")}
	svc, store, sched := newTestRecycling(t, gw, nil)
	sess, _ := store.GetOrCreate("")
	for i := 0; i < 3; i++ {
		_, err := svc.Scan(context.Background(), sess, pngDataURI())
		require.NoError(t, err)
	}
	require.True(t, sched.fire(sess.inviteKey()))

	gw.err = ErrEmptyResponse
	_, err := svc.AcceptQuiz(context.Background(), sess)
	assert.ErrorIs(t, err, ErrEmptyResponse)
	assert.Equal(t, QuizIdle, sess.QuizState())
	assert.Equal(t, 1, gw.quizN)
}

func TestRecycling_Redeem(t *testing.T) {
	svc, store, _ := newTestRecycling(t, &fakeGateway{}, nil)
	sess, _ := store.GetOrCreate("")
	ctx := context.Background()

	_, _, err := svc.Redeem(ctx, sess, slug.Make("Kit Canudos Inox"))
	assert.ErrorIs(t, err, ErrInsufficientBalance)
	assert.Equal(t, 150, sess.State().Balance)

	state, item, err := svc.Redeem(ctx, sess, slug.Make("Doação para ONG"))
	require.NoError(t, err)
	assert.Equal(t, 100, item.Cost)
	assert.Equal(t, 50, state.Balance)
	assert.Equal(t, -100, state.History[0].Reward)

	_, _, err = svc.Redeem(ctx, sess, "missing")
	assert.ErrorIs(t, err, ErrItemNotFound)
}
