package services

import (
	"context"

	"focargo/models"

	"github.com/gofiber/fiber/v2"
)

const (
	minScanReward = 10
	maxScanReward = 30
	recentHistory = 5
)

// Catalog is the read side of CatalogService used to compose screens.
type Catalog interface {
	Nearest(ctx context.Context, origin models.LatLng, limit int) ([]models.PointDistance, error)
	MarketItems(ctx context.Context) ([]models.MarketItem, error)
}

// Screen is the payload the client renders for the active view.
type Screen struct {
	View models.AppView `json:"view"`
	Data interface{}    `json:"data"`
}

type RewardRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// ScreenFor composes the active view of sess.
func ScreenFor(ctx context.Context, catalog Catalog, sess *Session) (Screen, error) {
	snap := sess.Snapshot()
	p := snap.State
	screen := Screen{View: snap.View}

	switch snap.View {
	case models.ViewScan:
		screen.Data = fiber.Map{
			"reward_range":        RewardRange{Min: minScanReward, Max: maxScanReward},
			"last_classification": sess.LastClassification(),
			"quiz":                snap.Quiz,
		}
	case models.ViewMap:
		points, err := catalog.Nearest(ctx, snap.Location, 0)
		if err != nil {
			return screen, err
		}
		screen.Data = fiber.Map{"origin": snap.Location, "points": points}
	case models.ViewImpact:
		screen.Data = ImpactFor(p)
	case models.ViewProfile:
		screen.Data = fiber.Map{
			"level":            UserLevel(p.ItemsIdentified),
			"balance":          p.Balance,
			"items_identified": p.ItemsIdentified,
			"material_counts":  p.MaterialCounts,
			"quiz_stats":       p.QuizStats,
			"quiz_history":     p.QuizHistory,
		}
	case models.ViewMarket:
		items, err := catalog.MarketItems(ctx)
		if err != nil {
			return screen, err
		}
		screen.Data = fiber.Map{"balance": p.Balance, "items": items}
	case models.ViewSocial:
		screen.Data = fiber.Map{"feed": models.SocialFeed}
	case models.ViewLearn:
		screen.Data = fiber.Map{"tracks": models.LearningTracks}
	default:
		recent := p.History
		if len(recent) > recentHistory {
			recent = recent[:recentHistory]
		}
		screen.Data = fiber.Map{
			"balance":                  p.Balance,
			"items_identified":         p.ItemsIdentified,
			"co2_saved":                p.CO2Saved,
			"cooperative_income_total": p.CooperativeIncomeTotal,
			"recent":                   recent,
			"quiz":                     snap.Quiz,
		}
	}
	return screen, nil
}
