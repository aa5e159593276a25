// services/recycling_service.go
package services

import (
	"context"
	"fmt"

	"focargo/logger"
	"focargo/metrics"
	"focargo/models"
	"focargo/utils"

	"github.com/google/uuid"
)

// ScanResult is what a successful scan hands back to the client.
type ScanResult struct {
	Classification *models.ClassificationResult `json:"classification"`
	State          models.UserProgress          `json:"state"`
}

// RecyclingService runs the AI-backed user actions: scan, quiz generation and
// answering, and market redemptions.
type RecyclingService struct {
	Gateway Gateway
	Archive utils.Archive
	Catalog *CatalogService
	Log     *logger.Logger
}

func NewRecyclingService(gw Gateway, archive utils.Archive, catalog *CatalogService, log *logger.Logger) *RecyclingService {
	if archive == nil {
		archive = utils.NopArchive{}
	}
	return &RecyclingService{
		Gateway: gw,
		Archive: archive,
		Catalog: catalog,
		Log:     log.With("service", "RecyclingService"),
	}
}

// Scan classifies a photo and credits the session. Any gateway failure leaves the
// progress untouched and is returned as-is.
func (r *RecyclingService) Scan(ctx context.Context, sess *Session, imageDataURI string) (*ScanResult, error) {
	img, err := utils.ParseDataURI(imageDataURI)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}

	gen, err := sess.BeginScan()
	if err != nil {
		return nil, err
	}

	result, err := r.Gateway.Classify(ctx, ImagePayload{MimeType: img.MimeType, Data: img.Data})
	if err != nil {
		sess.AbortScan(ScanFailedMessage)
		r.Log.Warn("classification failed", "session_id", sess.ID, "error", err.Error())
		return nil, err
	}

	state, err := sess.FinishScan(gen, result)
	if err != nil {
		r.Log.Info("classification discarded", "session_id", sess.ID, "reason", err.Error())
		return nil, err
	}

	// Only accepted scans reach the bucket.
	if imageURL := r.archive(ctx, sess.ID, img); imageURL != "" {
		if patched, ok := sess.AttachImage(state.History[0].ID, imageURL); ok {
			state = patched
		}
	}

	metrics.RecordClassification(string(MaterialKeyFor(result.Category)), result.EcoinsEarned)
	r.Log.Info("item classified",
		"session_id", sess.ID,
		"material", result.Material,
		"ecoins", result.EcoinsEarned,
		"items_identified", state.ItemsIdentified,
	)
	return &ScanResult{Classification: result, State: state}, nil
}

// archive stores the scan image when a bucket is configured. Failures only get logged.
func (r *RecyclingService) archive(ctx context.Context, sessionID string, img utils.DataURI) string {
	key := fmt.Sprintf("scans/%s/%s.%s", sessionID, uuid.NewString(), utils.ExtensionFor(img.MimeType))
	url, err := r.Archive.Put(ctx, key, img.MimeType, img.Data)
	if err != nil {
		r.Log.Warn("scan archive upload failed", "session_id", sessionID, "key", key, "error", err.Error())
		return ""
	}
	return url
}

// AcceptQuiz accepts the pending invitation and generates the quiz. On failure the
// controller is back to idle and the gateway error is returned.
func (r *RecyclingService) AcceptQuiz(ctx context.Context, sess *Session) (QuizSnapshot, error) {
	prompt, err := sess.BeginQuiz()
	if err != nil {
		return QuizSnapshot{}, err
	}

	quiz, genErr := r.Gateway.GenerateQuiz(ctx, prompt)
	if genErr != nil {
		r.Log.Warn("quiz generation failed", "session_id", sess.ID, "error", genErr.Error())
	}
	return sess.CompleteQuiz(quiz, genErr)
}

func (r *RecyclingService) AnswerQuiz(sess *Session, optionID string) (models.UserProgress, models.AnswerFeedback, error) {
	reward := 0
	if snap := sess.Snapshot().Quiz; snap.Quiz != nil {
		reward = snap.Quiz.EcoinsReward
	}
	state, fb, err := sess.AnswerQuiz(optionID)
	if err != nil {
		return state, fb, err
	}
	if !fb.IsCorrect {
		reward = 0
	}
	metrics.RecordQuizAnswer(fb.IsCorrect, reward)
	return state, fb, nil
}

// Redeem exchanges Ecoins for the market item identified by code.
func (r *RecyclingService) Redeem(ctx context.Context, sess *Session, code string) (models.UserProgress, *models.MarketItem, error) {
	item, err := r.Catalog.MarketItem(ctx, code)
	if err != nil {
		metrics.RecordRedemption("unknown", "not_found")
		return sess.State(), nil, err
	}
	state, err := sess.Redeem(*item)
	if err != nil {
		metrics.RecordRedemption(code, "rejected")
		return state, item, err
	}
	metrics.RecordRedemption(code, "ok")
	r.Log.Info("market item redeemed", "session_id", sess.ID, "code", code, "cost", item.Cost, "balance", state.Balance)
	return state, item, nil
}
