// handlers/scan_routes.go
package handlers

import (
	"focargo/middleware"
	"focargo/services"

	"github.com/gofiber/fiber/v2"
)

type scanRequest struct {
	Image string `json:"image" validate:"required"` // data:image/...;base64,...
}

type answerRequest struct {
	OptionID string `json:"option_id" validate:"required"`
}

// SetupRecyclingRoutes registers the scan and quiz actions. AI-backed routes are rate limited
// per session.
func SetupRecyclingRoutes(r fiber.Router, svc *services.RecyclingService) {
	r.Post("/scan", middleware.AIRateLimit(), func(c *fiber.Ctx) error {
		var req scanRequest
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "invalid request body", err)
		}
		if err := services.Validate(&req); err != nil {
			return badRequest(c, "image is required", err)
		}

		result, err := svc.Scan(c.UserContext(), middleware.SessionFrom(c), req.Image)
		if err != nil {
			return fail(c, err, fiber.StatusBadGateway, services.ScanFailedMessage)
		}
		return c.JSON(result)
	})

	quiz := r.Group("/quiz")

	quiz.Post("/decline", func(c *fiber.Ctx) error {
		snap, err := middleware.SessionFrom(c).DeclineQuiz()
		if err != nil {
			return fail(c, err, fiber.StatusInternalServerError, "")
		}
		return c.JSON(snap)
	})

	quiz.Post("/accept", middleware.RequireQuizInvitation(), middleware.AIRateLimit(), func(c *fiber.Ctx) error {
		snap, err := svc.AcceptQuiz(c.UserContext(), middleware.SessionFrom(c))
		if err != nil {
			return fail(c, err, fiber.StatusBadGateway, services.QuizFailedMessage)
		}
		return c.JSON(snap)
	})

	quiz.Post("/answer", func(c *fiber.Ctx) error {
		var req answerRequest
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "invalid request body", err)
		}
		if err := services.Validate(&req); err != nil {
			return badRequest(c, "option_id is required", err)
		}

		sess := middleware.SessionFrom(c)
		state, feedback, err := svc.AnswerQuiz(sess, req.OptionID)
		if err != nil {
			return fail(c, err, fiber.StatusInternalServerError, "")
		}
		return c.JSON(fiber.Map{
			"state":    state,
			"feedback": feedback,
			"quiz":     sess.Snapshot().Quiz,
		})
	})

	quiz.Post("/close", func(c *fiber.Ctx) error {
		snap, err := middleware.SessionFrom(c).CloseQuiz()
		if err != nil {
			return fail(c, err, fiber.StatusInternalServerError, "")
		}
		return c.JSON(snap)
	})
}
