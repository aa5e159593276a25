// handlers/catalog_routes.go
package handlers

import (
	"focargo/middleware"
	"focargo/models"
	"focargo/services"

	"github.com/gofiber/fiber/v2"
)

// SetupCatalogRoutes registers the map, market, learn, social and impact reads plus redemption.
func SetupCatalogRoutes(r fiber.Router, catalog *services.CatalogService, svc *services.RecyclingService) {
	r.Get("/points", func(c *fiber.Ctx) error {
		limit := c.QueryInt("limit", 0)
		if limit < 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "limit must not be negative"})
		}
		sess := middleware.SessionFrom(c)
		origin := sess.Location()
		points, err := catalog.Nearest(c.UserContext(), origin, limit)
		if err != nil {
			return fail(c, err, fiber.StatusInternalServerError, "failed to load collection points")
		}
		return c.JSON(fiber.Map{"origin": origin, "points": points})
	})

	r.Get("/points/search", func(c *fiber.Ctx) error {
		origin := middleware.SessionFrom(c).Location()
		points, err := catalog.Search(c.UserContext(), c.Query("q"), origin)
		if err != nil {
			return fail(c, err, fiber.StatusInternalServerError, "failed to search collection points")
		}
		return c.JSON(fiber.Map{"origin": origin, "points": points})
	})

	r.Get("/market", func(c *fiber.Ctx) error {
		items, err := catalog.MarketItems(c.UserContext())
		if err != nil {
			return fail(c, err, fiber.StatusInternalServerError, "failed to load market")
		}
		return c.JSON(fiber.Map{
			"balance": middleware.SessionFrom(c).State().Balance,
			"items":   items,
		})
	})

	r.Post("/market/:code/redeem", func(c *fiber.Ctx) error {
		state, item, err := svc.Redeem(c.UserContext(), middleware.SessionFrom(c), c.Params("code"))
		if err != nil {
			return fail(c, err, fiber.StatusInternalServerError, "failed to redeem item")
		}
		return c.JSON(fiber.Map{"state": state, "item": item})
	})

	r.Get("/learn", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"tracks": models.LearningTracks})
	})

	r.Get("/social", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"feed": models.SocialFeed})
	})

	r.Get("/impact", func(c *fiber.Ctx) error {
		return c.JSON(services.ImpactFor(middleware.SessionFrom(c).State()))
	})
}
