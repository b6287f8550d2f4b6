package search

import (
	"context"
	"fmt"
	"strings"

	"real-estate-marketplace/internal/models"
	"real-estate-marketplace/internal/query"

	"gorm.io/gorm"
)

// GormBackend renders query plans to GORM/MySQL statements. Geo radius uses
// ST_Distance_Sphere in meters; amenity intersection renders one EXISTS per
// requested amenity.
type GormBackend struct {
	db *gorm.DB
}

// NewGormBackend creates a backend over an open GORM handle.
func NewGormBackend(db *gorm.DB) *GormBackend {
	return &GormBackend{db: db}
}

// Find runs an unscored plan: filtered find with sort, skip and limit. The
// total is computed by re-running the same predicate set without skip/limit.
func (b *GormBackend) Find(ctx context.Context, plan query.Plan) ([]models.Listing, int64, error) {
	base := b.applyPredicates(b.db.WithContext(ctx).Model(&models.Listing{}), plan.Predicates())

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count query: %w", err)
	}

	var listings []models.Listing
	err := base.Session(&gorm.Session{}).
		Order(orderClause(plan.Sort())).
		Offset(plan.Offset()).
		Limit(plan.Limit()).
		Preload("Images").
		Find(&listings).Error
	if err != nil {
		return nil, 0, fmt.Errorf("find query: %w", err)
	}

	return listings, total, nil
}

// Aggregate runs a scored plan: base filters, free-text match over the text
// fields, a computed relevance column, score-aware sort, pagination. The
// total re-runs every stage except skip/limit as a count.
func (b *GormBackend) Aggregate(ctx context.Context, plan query.Plan) ([]models.Listing, int64, error) {
	score := plan.Score()
	if score == nil {
		return b.Find(ctx, plan)
	}

	base := b.applyPredicates(b.db.WithContext(ctx).Model(&models.Listing{}), plan.Predicates())
	base = applyTextMatch(base, score.Term)

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("scored count query: %w", err)
	}

	contains := containsPattern(score.Term)
	scoreExpr := fmt.Sprintf(
		"? + (CASE WHEN LOWER(title) LIKE ? THEN %d ELSE 0 END) + (CASE WHEN LOWER(city) LIKE ? THEN %d ELSE 0 END) AS relevance",
		score.TitleWeight, score.CityWeight)

	var listings []models.Listing
	err := base.Session(&gorm.Session{}).
		Select("listings.*, "+scoreExpr, score.BaseWeight, contains, contains).
		Order(scoredOrderClause(plan.Sort())).
		Offset(plan.Offset()).
		Limit(plan.Limit()).
		Preload("Images").
		Find(&listings).Error
	if err != nil {
		return nil, 0, fmt.Errorf("scored find query: %w", err)
	}

	return listings, total, nil
}

// applyPredicates renders each plan predicate onto the query. Predicates
// AND-combine; order is irrelevant to the final statement semantics.
func (b *GormBackend) applyPredicates(db *gorm.DB, predicates []query.Predicate) *gorm.DB {
	for _, p := range predicates {
		switch pred := p.(type) {
		case query.Compare:
			db = db.Where(fmt.Sprintf("%s %s ?", pred.Column, pred.Op), pred.Value)
		case query.Substring:
			db = db.Where(fmt.Sprintf("LOWER(%s) LIKE ?", pred.Column), containsPattern(pred.Term))
		case query.In:
			db = db.Where(fmt.Sprintf("%s IN ?", pred.Column), pred.Values)
		case query.AmenitiesAll:
			// Intersection semantics: one EXISTS per amenity, AND-combined.
			for _, name := range pred.Names {
				db = db.Where(
					"EXISTS (SELECT 1 FROM listing_amenities a WHERE a.listing_id = listings.id AND a.name = ?)",
					name)
			}
		case query.GeoWithin:
			db = db.Where(
				"ST_Distance_Sphere(POINT(longitude, latitude), POINT(?, ?)) <= ?",
				pred.Longitude, pred.Latitude, pred.RadiusKm*1000)
		case query.NearPlace:
			db = db.Where(
				"EXISTS (SELECT 1 FROM listing_places p WHERE p.listing_id = listings.id AND LOWER(p.name) LIKE ? AND p.distance_km <= ?)",
				containsPattern(pred.Name), pred.MaxDistanceKm)
		}
	}
	return db
}

// applyTextMatch restricts to rows where any text field contains the term.
func applyTextMatch(db *gorm.DB, term string) *gorm.DB {
	pattern := containsPattern(term)
	clauses := make([]string, len(query.TextFields))
	args := make([]interface{}, len(query.TextFields))
	for i, field := range query.TextFields {
		clauses[i] = fmt.Sprintf("LOWER(%s) LIKE ?", field)
		args[i] = pattern
	}
	return db.Where(strings.Join(clauses, " OR "), args...)
}

// orderClause maps a sort key to SQL for unscored plans. Relevance without
// a text term degenerates to recency.
func orderClause(key query.SortKey) string {
	switch key {
	case query.SortPriceLow:
		return "price ASC"
	case query.SortPriceHigh:
		return "price DESC"
	case query.SortAreaLarge:
		return "area_sqft DESC"
	case query.SortAreaSmall:
		return "area_sqft ASC"
	case query.SortOldest:
		return "created_at ASC"
	case query.SortPopular:
		return "view_count DESC"
	default:
		return "created_at DESC"
	}
}

// scoredOrderClause maps a sort key to SQL for scored plans: relevance means
// score descending with recency as tie-breaker, other keys keep their usual
// meaning.
func scoredOrderClause(key query.SortKey) string {
	if key == query.SortRelevance {
		return "relevance DESC, created_at DESC"
	}
	return orderClause(key)
}

func containsPattern(term string) string {
	return "%" + strings.ToLower(strings.TrimSpace(term)) + "%"
}
