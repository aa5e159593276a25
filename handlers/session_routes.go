// handlers/session_routes.go
package handlers

import (
	"focargo/middleware"
	"focargo/models"
	"focargo/services"

	"github.com/gofiber/fiber/v2"
)

type viewRequest struct {
	View string `json:"view"`
}

type locationRequest struct {
	Lat *float64 `json:"lat" validate:"required,gte=-90,lte=90"`
	Lng *float64 `json:"lng" validate:"required,gte=-180,lte=180"`
}

// SetupSessionRoutes registers session lifecycle, navigation and the event stream.
// r must already carry SessionContextMiddleware.
func SetupSessionRoutes(r fiber.Router, store *services.SessionStore, catalog services.Catalog) {
	r.Get("/session", func(c *fiber.Ctx) error {
		return c.JSON(middleware.SessionFrom(c).Snapshot())
	})

	r.Delete("/session", func(c *fiber.Ctx) error {
		store.Teardown(middleware.SessionFrom(c).ID)
		return c.SendStatus(fiber.StatusNoContent)
	})

	r.Put("/session/view", func(c *fiber.Ctx) error {
		sess := middleware.SessionFrom(c)
		var req viewRequest
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "invalid request body", err)
		}
		if _, err := sess.Navigate(models.ParseView(req.View)); err != nil {
			return fail(c, err, fiber.StatusInternalServerError, "")
		}
		screen, err := services.ScreenFor(c.UserContext(), catalog, sess)
		if err != nil {
			return fail(c, err, fiber.StatusInternalServerError, "failed to load screen")
		}
		return c.JSON(screen)
	})

	r.Get("/session/screen", func(c *fiber.Ctx) error {
		screen, err := services.ScreenFor(c.UserContext(), catalog, middleware.SessionFrom(c))
		if err != nil {
			return fail(c, err, fiber.StatusInternalServerError, "failed to load screen")
		}
		return c.JSON(screen)
	})

	r.Put("/session/location", func(c *fiber.Ctx) error {
		var req locationRequest
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "invalid request body", err)
		}
		if err := services.Validate(&req); err != nil {
			return badRequest(c, "lat and lng must be valid coordinates", err)
		}
		loc := models.LatLng{Lat: *req.Lat, Lng: *req.Lng}
		if err := middleware.SessionFrom(c).SetLocation(loc); err != nil {
			return fail(c, err, fiber.StatusInternalServerError, "")
		}
		return c.JSON(fiber.Map{"location": loc})
	})

	r.Get("/session/stream", func(c *fiber.Ctx) error {
		return services.StreamSessionSSE(c, middleware.SessionFrom(c))
	})
}
