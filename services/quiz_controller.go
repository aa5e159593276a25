package services

import (
	"strconv"
	"strings"
	"time"

	"focargo/models"
)

// QuizState is a node of the quiz lifecycle:
//
//	idle -> invitation_pending -> generating -> active -> feedback -> idle
//
// with invitation_pending -> idle on decline and generating -> idle on failure.
type QuizState string

const (
	QuizIdle              QuizState = "idle"
	QuizInvitationPending QuizState = "invitation_pending"
	QuizGenerating        QuizState = "generating"
	QuizActive            QuizState = "active"
	QuizFeedback          QuizState = "feedback"
)

const (
	quizEvery            = 3
	noWeakMaterials      = "nenhum ainda"
	strongMaterialsHint  = "plástico, metal"
	maxWeakMaterialsHint = 3
)

// EligibleForInvitation reports whether reaching itemsIdentified earns a quiz invitation.
func EligibleForInvitation(itemsIdentified int) bool {
	return itemsIdentified > 0 && itemsIdentified%quizEvery == 0
}

// BuildQuizPrompt fills the quiz template from the user's progress.
func BuildQuizPrompt(p models.UserProgress) string {
	weak := p.QuizStats.WeakMaterials
	if len(weak) > maxWeakMaterialsHint {
		weak = weak[:maxWeakMaterialsHint]
	}
	weakText := strings.Join(weak, ", ")
	if weakText == "" {
		weakText = noWeakMaterials
	}
	return strings.NewReplacer(
		"{userLevel}", string(UserLevel(p.ItemsIdentified)),
		"{weakMaterials}", weakText,
		"{strongMaterials}", strongMaterialsHint,
		"{itemCount}", strconv.Itoa(p.ItemsIdentified),
	).Replace(QuizGenerationPrompt)
}

// QuizSnapshot is the client-facing view of the controller.
type QuizSnapshot struct {
	State    QuizState              `json:"state"`
	Quiz     *models.QuizData       `json:"quiz,omitempty"`
	Feedback *models.AnswerFeedback `json:"feedback,omitempty"`
}

// QuizController holds at most one quiz session. It is not safe for concurrent use;
// Session serializes access.
type QuizController struct {
	state    QuizState
	quiz     *models.QuizData
	feedback *models.AnswerFeedback
}

func NewQuizController() *QuizController {
	return &QuizController{state: QuizIdle}
}

func (c *QuizController) State() QuizState { return c.state }

func (c *QuizController) Snapshot() QuizSnapshot {
	snap := QuizSnapshot{State: c.state}
	if c.quiz != nil {
		q := *c.quiz
		q.Options = append([]models.QuizOption(nil), c.quiz.Options...)
		snap.Quiz = &q
	}
	if c.feedback != nil {
		f := *c.feedback
		snap.Feedback = &f
	}
	return snap
}

// Invite opens an invitation. Only an idle controller can be invited.
func (c *QuizController) Invite() error {
	if c.state != QuizIdle {
		return transitionError("invite", c.state)
	}
	c.state = QuizInvitationPending
	return nil
}

func (c *QuizController) Decline() error {
	if c.state != QuizInvitationPending {
		return transitionError("decline", c.state)
	}
	c.state = QuizIdle
	return nil
}

// Accept moves to generating and returns the prompt to send to the AI service.
func (c *QuizController) Accept(p models.UserProgress) (string, error) {
	if c.state != QuizInvitationPending {
		return "", transitionError("accept", c.state)
	}
	c.state = QuizGenerating
	return BuildQuizPrompt(p), nil
}

func (c *QuizController) Generated(q *models.QuizData) error {
	if c.state != QuizGenerating {
		return transitionError("present a quiz", c.state)
	}
	c.quiz = q
	c.feedback = nil
	c.state = QuizActive
	return nil
}

func (c *QuizController) GenerationFailed() error {
	if c.state != QuizGenerating {
		return transitionError("fail generation", c.state)
	}
	c.state = QuizIdle
	return nil
}

// Answer scores optionID against the active quiz and returns the updated progress.
func (c *QuizController) Answer(p models.UserProgress, optionID string, now time.Time) (models.UserProgress, models.AnswerFeedback, error) {
	if c.state != QuizActive || c.quiz == nil {
		return p, models.AnswerFeedback{}, transitionError("answer", c.state)
	}
	if !c.hasOption(optionID) {
		return p, models.AnswerFeedback{}, ErrUnknownOption
	}
	next, fb := ApplyQuizAnswer(p, *c.quiz, optionID, now)
	c.feedback = &fb
	c.state = QuizFeedback
	return next, fb, nil
}

// Close dismisses the quiz. From active it abandons the question without scoring.
func (c *QuizController) Close() error {
	if c.state != QuizFeedback && c.state != QuizActive {
		return transitionError("close", c.state)
	}
	c.quiz = nil
	c.feedback = nil
	c.state = QuizIdle
	return nil
}

func (c *QuizController) hasOption(id string) bool {
	for _, o := range c.quiz.Options {
		if o.ID == id {
			return true
		}
	}
	return false
}
