package middleware

import (
	"focargo/services"

	"github.com/gofiber/fiber/v2"
)

// AIRateLimit rejects AI-backed requests once the session's per-minute budget is spent.
func AIRateLimit() fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess := SessionFrom(c)
		if sess != nil && !sess.AllowAI() {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Muitas análises seguidas. Aguarde um momento.",
				"cause": services.ErrRateLimited.Error(),
			})
		}
		return c.Next()
	}
}

// RequireQuizInvitation answers 409 unless the session has an invitation to accept.
// It runs ahead of AIRateLimit so a rejected accept does not spend AI budget.
func RequireQuizInvitation() fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess := SessionFrom(c)
		if sess == nil {
			return c.Next()
		}
		if err := sess.PendingInvitation(); err != nil {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": err.Error(),
				"cause": err.Error(),
			})
		}
		return c.Next()
	}
}
