package services

import (
	"math"
	"strings"
	"time"

	"focargo/models"

	"github.com/google/uuid"
	"github.com/gosimple/unidecode"
	"golang.org/x/text/cases"
)

// Per-item environmental deltas credited by every classification.
const (
	CO2DeltaKg        = 0.15
	CooperativeDelta  = 0.35
	ClassifiedIcon    = "✨"
	JustNowLabel      = "just now"
	RedemptionIcon    = "🎁"
	quizTimestampForm = time.RFC3339
)

type categoryRule struct {
	keywords []string
	key      models.MaterialKey
}

// categoryRules is evaluated top to bottom; the first rule with a matching keyword wins.
var categoryRules = []categoryRule{
	{keywords: []string{"plást", "plast"}, key: models.MaterialPlastic},
	{keywords: []string{"vidro", "glass"}, key: models.MaterialGlass},
	{keywords: []string{"metal", "alum"}, key: models.MaterialMetal},
	{keywords: []string{"papel", "paper"}, key: models.MaterialPaper},
}

// MaterialKeyFor buckets a free-text category ("Plástico Reciclável", "Lata de alumínio")
// into one of the fixed material keys. Matching is a case-insensitive substring test,
// retried on the accent-folded text so "PLASTICO" and "aluminio" still match.
func MaterialKeyFor(categoryHint string) models.MaterialKey {
	folded := cases.Fold().String(categoryHint)
	ascii := unidecode.Unidecode(folded)
	for _, rule := range categoryRules {
		for _, kw := range rule.keywords {
			if strings.Contains(folded, kw) || strings.Contains(ascii, unidecode.Unidecode(kw)) {
				return rule.key
			}
		}
	}
	return models.MaterialOther
}

// round2 rounds half away from zero to 2 decimals. Every accumulator goes through it.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// UserLevel is the quiz difficulty a user is ready for.
func UserLevel(itemsIdentified int) models.Difficulty {
	switch {
	case itemsIdentified <= 10:
		return models.DifficultyBeginner
	case itemsIdentified <= 30:
		return models.DifficultyIntermediate
	default:
		return models.DifficultyAdvanced
	}
}

// ApplyClassification credits one identified item. The input state is left untouched;
// the caller swaps in the returned value. Not deduplicated: applying twice counts twice.
func ApplyClassification(state models.UserProgress, rewardAmount int, materialLabel, categoryHint string) models.UserProgress {
	key := MaterialKeyFor(categoryHint)
	next := state.Clone()

	next.Balance += rewardAmount
	next.ItemsIdentified++
	next.CO2Saved = round2(next.CO2Saved + CO2DeltaKg)
	next.CO2SavedTotal = round2(next.CO2SavedTotal + CO2DeltaKg)
	next.CooperativeIncomeTotal = round2(next.CooperativeIncomeTotal + CooperativeDelta)
	next.MaterialCounts[key]++

	item := models.ActivityItem{
		ID:        activityID(),
		Icon:      ClassifiedIcon,
		Text:      materialLabel,
		Reward:    rewardAmount,
		Timestamp: JustNowLabel,
	}
	next.History = append([]models.ActivityItem{item}, next.History...)
	return next
}

// ApplyQuizAnswer records an answer to quiz. Balance only moves on a correct answer;
// a wrong answer marks the quiz material as weak.
func ApplyQuizAnswer(state models.UserProgress, quiz models.QuizData, selectedID string, now time.Time) (models.UserProgress, models.AnswerFeedback) {
	correct := selectedID == quiz.CorrectAnswerID
	next := state.Clone()

	next.QuizStats.Answered++
	if correct {
		next.Balance += quiz.EcoinsReward
		next.QuizStats.Correct++
	} else {
		next.QuizStats.Incorrect++
		next.QuizStats.WeakMaterials = append(next.QuizStats.WeakMaterials, quiz.MaterialCategory)
	}
	next.QuizHistory = append(next.QuizHistory, models.QuizHistoryItem{
		Question:  quiz.Question,
		Correct:   correct,
		Material:  quiz.MaterialCategory,
		Timestamp: now.UTC().Format(quizTimestampForm),
	})
	return next, models.AnswerFeedback{IsCorrect: correct, SelectedID: selectedID}
}

// ApplyRedemption spends cost Ecoins on a market item.
func ApplyRedemption(state models.UserProgress, item models.MarketItem) (models.UserProgress, error) {
	if item.Cost < 0 || state.Balance < item.Cost {
		return state, ErrInsufficientBalance
	}
	next := state.Clone()
	next.Balance -= item.Cost
	next.History = append([]models.ActivityItem{{
		ID:        activityID(),
		Icon:      RedemptionIcon,
		Text:      item.Title,
		Reward:    -item.Cost,
		Timestamp: JustNowLabel,
	}}, next.History...)
	return next, nil
}

// activityID is a time-ordered unique id (UUIDv7).
func activityID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
