// Package recommend derives coarse listing preferences from a user's saved
// searches and blends matching results with popularity-ranked fallbacks.
package recommend

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"real-estate-marketplace/internal/models"
	"real-estate-marketplace/internal/query"
	"real-estate-marketplace/internal/search"

	"gorm.io/gorm"
)

// pricePadding widens the preferred price range by 20% on each flank.
const pricePadding = 0.2

// Preferences is the envelope extracted across a user's saved searches.
type Preferences struct {
	Cities        []string
	PropertyTypes []string
	Bedrooms      []int
	MinPrice      *float64
	MaxPrice      *float64
}

// Empty reports whether no usable preference was found.
func (p Preferences) Empty() bool {
	return len(p.Cities) == 0 && len(p.PropertyTypes) == 0 &&
		len(p.Bedrooms) == 0 && p.MinPrice == nil && p.MaxPrice == nil
}

// Engine produces listing recommendations.
type Engine struct {
	db       *gorm.DB
	executor *search.Executor
	logger   *slog.Logger
}

// NewEngine creates a recommendation engine.
func NewEngine(db *gorm.DB, executor *search.Executor, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{db: db, executor: executor, logger: logger}
}

// ForUser returns up to count recommended active listings: preference
// matches first, padded with popularity-ranked listings (view count
// descending) until count is reached or supply runs out.
func (e *Engine) ForUser(ctx context.Context, userID string, count int) ([]models.Listing, error) {
	if count <= 0 {
		count = 10
	}
	if count > query.MaxLimit {
		count = query.MaxLimit
	}

	var searches []models.SavedSearch
	err := e.db.WithContext(ctx).
		Where("user_id = ? AND active = ?", userID, true).
		Find(&searches).Error
	if err != nil {
		return nil, fmt.Errorf("load saved searches: %w", err)
	}

	prefs := ExtractPreferences(searches)

	var items []models.Listing
	if !prefs.Empty() {
		result, err := e.executor.Execute(ctx, prefs.Plan(count))
		if err != nil {
			// Preference matching is best effort; popularity padding still runs.
			e.logger.Warn("preference search failed",
				"component", "recommend", "user_id", userID, "error", err)
		} else {
			items = result.Items
		}
	}

	if len(items) >= count {
		return items[:count], nil
	}

	popular, err := e.popularExcluding(ctx, listingIDs(items), count-len(items))
	if err != nil {
		if len(items) > 0 {
			e.logger.Warn("popularity padding failed",
				"component", "recommend", "user_id", userID, "error", err)
			return items, nil
		}
		return nil, err
	}
	return append(items, popular...), nil
}

// popularExcluding returns active listings ranked by engagement, skipping
// already-selected ids.
func (e *Engine) popularExcluding(ctx context.Context, exclude []string, limit int) ([]models.Listing, error) {
	db := e.db.WithContext(ctx).Model(&models.Listing{}).
		Where("status = ?", models.ListingStatusActive)
	if len(exclude) > 0 {
		db = db.Where("id NOT IN ?", exclude)
	}

	var listings []models.Listing
	err := db.Order("view_count DESC").
		Limit(limit).
		Preload("Images").
		Find(&listings).Error
	if err != nil {
		return nil, fmt.Errorf("popular listings: %w", err)
	}
	return listings, nil
}

// ExtractPreferences builds the preference envelope across saved searches:
// union of cities, property types and bedroom counts, and the widest price
// range padded by 20% on each flank.
func ExtractPreferences(searches []models.SavedSearch) Preferences {
	var prefs Preferences
	cities := make(map[string]bool)
	types := make(map[string]bool)
	bedrooms := make(map[int]bool)

	for _, saved := range searches {
		params := make(map[string][]string)
		if err := json.Unmarshal([]byte(saved.Params), &params); err != nil {
			continue
		}
		parsed := query.ParseFilterParams(params)

		if parsed.City != "" && !cities[parsed.City] {
			cities[parsed.City] = true
			prefs.Cities = append(prefs.Cities, parsed.City)
		}
		for _, t := range parsed.PropertyTypes {
			if !types[t] {
				types[t] = true
				prefs.PropertyTypes = append(prefs.PropertyTypes, t)
			}
		}
		for _, b := range parsed.Bedrooms {
			if !bedrooms[b] {
				bedrooms[b] = true
				prefs.Bedrooms = append(prefs.Bedrooms, b)
			}
		}
		if parsed.MinPrice != nil && (prefs.MinPrice == nil || *parsed.MinPrice < *prefs.MinPrice) {
			v := *parsed.MinPrice
			prefs.MinPrice = &v
		}
		if parsed.MaxPrice != nil && (prefs.MaxPrice == nil || *parsed.MaxPrice > *prefs.MaxPrice) {
			v := *parsed.MaxPrice
			prefs.MaxPrice = &v
		}
	}

	if prefs.MinPrice != nil {
		v := *prefs.MinPrice * (1 - pricePadding)
		prefs.MinPrice = &v
	}
	if prefs.MaxPrice != nil {
		v := *prefs.MaxPrice * (1 + pricePadding)
		prefs.MaxPrice = &v
	}
	return prefs
}

// Plan renders the envelope as a single membership-style plan over active
// listings: city/type/bedroom membership plus the padded price range,
// ranked by engagement.
func (p Preferences) Plan(limit int) query.Plan {
	b := query.NewBuilder().
		Where(query.Compare{Column: "status", Op: query.OpEq, Value: string(models.ListingStatusActive)})
	if len(p.Cities) > 0 {
		b = b.Where(query.In{Column: "city", Values: toValues(p.Cities)})
	}
	if len(p.PropertyTypes) > 0 {
		b = b.Where(query.In{Column: "property_type", Values: toValues(p.PropertyTypes)})
	}
	if len(p.Bedrooms) > 0 {
		b = b.Where(query.In{Column: "bedrooms", Values: toValues(p.Bedrooms)})
	}
	if p.MinPrice != nil {
		b = b.Where(query.Compare{Column: "price", Op: query.OpGte, Value: *p.MinPrice})
	}
	if p.MaxPrice != nil {
		b = b.Where(query.Compare{Column: "price", Op: query.OpLte, Value: *p.MaxPrice})
	}
	return b.SortBy(query.SortPopular).Paginate(1, limit).Build()
}

func toValues[T any](in []T) []interface{} {
	out := make([]interface{}, len(in))
	for i, v := range in {
		out[i] = v
	}
	return out
}

func listingIDs(items []models.Listing) []string {
	ids := make([]string, len(items))
	for i := range items {
		ids[i] = items[i].ID
	}
	return ids
}
