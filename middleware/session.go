// middleware/session.go
package middleware

import (
	"strings"

	"focargo/services"

	"github.com/gofiber/fiber/v2"
)

const (
	SessionHeader     = "X-Session-ID"
	SessionQueryParam = "session_id"
	sessionLocalsKey  = "session"
)

// SessionContextMiddleware resolves the caller's session from the X-Session-ID header
// (or the session_id query param, for EventSource clients that cannot set headers),
// creating one when missing. The effective id is echoed back in the response header.
func SessionContextMiddleware(store *services.SessionStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := strings.TrimSpace(c.Get(SessionHeader))
		if id == "" {
			id = strings.TrimSpace(c.Query(SessionQueryParam))
		}

		sess, _ := store.GetOrCreate(id)
		c.Set(SessionHeader, sess.ID)
		c.Locals(sessionLocalsKey, sess)
		return c.Next()
	}
}

// SessionFrom returns the session attached by SessionContextMiddleware.
func SessionFrom(c *fiber.Ctx) *services.Session {
	sess, _ := c.Locals(sessionLocalsKey).(*services.Session)
	return sess
}
