package middleware

import (
	"time"

	"focargo/logger"

	"github.com/gofiber/fiber/v2"
)

// RequestLogger logs one line per request with the resolved session, if any.
func RequestLogger(log *logger.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}
		kv := []interface{}{
			"method", c.Method(),
			"path", c.Path(),
			"status", status,
			"elapsed", time.Since(start).String(),
		}
		if sess := SessionFrom(c); sess != nil {
			kv = append(kv, "session_id", sess.ID)
		}
		if status >= fiber.StatusInternalServerError {
			log.Warn("request failed", kv...)
		} else {
			log.Debug("request", kv...)
		}
		return err
	}
}
