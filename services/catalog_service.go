// services/catalog_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"focargo/models"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/gosimple/unidecode"
	"golang.org/x/text/cases"
	"gorm.io/gorm"
)

// CatalogService serves the reference data behind the map and market screens.
type CatalogService struct {
	DB *gorm.DB
}

func NewCatalogService(db *gorm.DB) *CatalogService {
	return &CatalogService{DB: db}
}

// Seed inserts the built-in collection points and market items that are not there yet.
// Rows are matched by slug, so running it on every start is safe.
func (s *CatalogService) Seed(ctx context.Context) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, seed := range models.CollectionPointSeed {
			p := seed
			p.ID = uuid.NewString()
			p.Slug = slug.Make(p.Name)
			var existing models.CollectionPoint
			if err := tx.Where(models.CollectionPoint{Slug: p.Slug}).Attrs(p).FirstOrCreate(&existing).Error; err != nil {
				return fmt.Errorf("seed collection point %s: %w", p.Slug, err)
			}
		}
		for _, seed := range models.MarketSeed {
			item := seed
			item.ID = uuid.NewString()
			item.Code = slug.Make(item.Title)
			item.Active = true
			var existing models.MarketItem
			if err := tx.Where(models.MarketItem{Code: item.Code}).Attrs(item).FirstOrCreate(&existing).Error; err != nil {
				return fmt.Errorf("seed market item %s: %w", item.Code, err)
			}
		}
		return nil
	})
}

func (s *CatalogService) Points(ctx context.Context) ([]models.CollectionPoint, error) {
	var points []models.CollectionPoint
	if err := s.DB.WithContext(ctx).Order("name ASC").Find(&points).Error; err != nil {
		return nil, err
	}
	return points, nil
}

// Nearest returns collection points by ascending distance from origin.
// limit <= 0 returns all of them.
func (s *CatalogService) Nearest(ctx context.Context, origin models.LatLng, limit int) ([]models.PointDistance, error) {
	points, err := s.Points(ctx)
	if err != nil {
		return nil, err
	}
	out := byDistance(points, origin)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Search matches query against name, address and materials, ignoring case and accents.
// A blank query is rejected before touching the database.
func (s *CatalogService) Search(ctx context.Context, query string, origin models.LatLng) ([]models.PointDistance, error) {
	needle := foldForSearch(query)
	if needle == "" {
		return nil, ErrEmptyQuery
	}
	points, err := s.Points(ctx)
	if err != nil {
		return nil, err
	}

	matched := make([]models.CollectionPoint, 0, len(points))
	for _, p := range points {
		fields := append([]string{p.Name, p.Address}, p.AcceptedMaterials...)
		fields = append(fields, p.SpecialMaterials...)
		for _, f := range fields {
			if strings.Contains(foldForSearch(f), needle) {
				matched = append(matched, p)
				break
			}
		}
	}
	return byDistance(matched, origin), nil
}

func (s *CatalogService) MarketItems(ctx context.Context) ([]models.MarketItem, error) {
	var items []models.MarketItem
	if err := s.DB.WithContext(ctx).Where("active = ?", true).Order("cost ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *CatalogService) MarketItem(ctx context.Context, code string) (*models.MarketItem, error) {
	var item models.MarketItem
	err := s.DB.WithContext(ctx).Where("code = ? AND active = ?", code, true).First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrItemNotFound
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func byDistance(points []models.CollectionPoint, origin models.LatLng) []models.PointDistance {
	out := make([]models.PointDistance, 0, len(points))
	for _, p := range points {
		out = append(out, models.PointDistance{
			CollectionPoint: p,
			DistanceKm:      round2(HaversineKm(origin, p.Location())),
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].DistanceKm < out[j].DistanceKm })
	return out
}

func foldForSearch(s string) string {
	return unidecode.Unidecode(cases.Fold().String(strings.TrimSpace(s)))
}
