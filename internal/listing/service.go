// Package listing implements the lifecycle side of the marketplace: agent
// submissions, role-gated status transitions, engagement counters and the
// featured window.
package listing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"real-estate-marketplace/internal/apperr"
	"real-estate-marketplace/internal/auth"
	"real-estate-marketplace/internal/history"
	"real-estate-marketplace/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Service handles listing lifecycle operations.
type Service struct {
	db      *gorm.DB
	history *history.Service
	logger  *slog.Logger
}

// NewService creates a listing service.
func NewService(db *gorm.DB, hist *history.Service, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{db: db, history: hist, logger: logger}
}

// CreateInput carries the agent-supplied fields of a new listing.
type CreateInput struct {
	Title        string   `json:"title" binding:"required"`
	Description  string   `json:"description"`
	Price        float64  `json:"price" binding:"required"`
	Address      string   `json:"address"`
	City         string   `json:"city" binding:"required"`
	Locality     string   `json:"locality"`
	State        string   `json:"state"`
	Country      string   `json:"country"`
	PostalCode   string   `json:"postal_code"`
	Longitude    float64  `json:"longitude"`
	Latitude     float64  `json:"latitude"`
	Bedrooms     int      `json:"bedrooms"`
	Bathrooms    int      `json:"bathrooms"`
	AreaSqft     float64  `json:"area_sqft"`
	PropertyType string   `json:"property_type" binding:"required"`
	Furnishing   string   `json:"furnishing"`
	Facing       string   `json:"facing"`
	Parking      int      `json:"parking"`
	AgeYears     int      `json:"age_years"`
	Amenities    []string `json:"amenities"`
	ImageURLs    []string `json:"image_urls"`
}

// Create validates and persists a new listing in draft status owned by the
// actor. Coordinates outside the valid range and non-positive price or area
// are validation errors, not silently dropped: structural listing data is
// held to a stricter standard than search filters.
func (s *Service) Create(ctx context.Context, actor auth.Actor, in CreateInput) (*models.Listing, error) {
	if actor.Role != auth.RoleAgent && actor.Role != auth.RoleAdmin {
		return nil, apperr.Authorization("only agents may create listings")
	}
	if in.Price <= 0 {
		return nil, apperr.Validation("price must be positive")
	}
	if in.AreaSqft <= 0 {
		return nil, apperr.Validation("area must be positive")
	}
	if in.Longitude < -180 || in.Longitude > 180 || in.Latitude < -90 || in.Latitude > 90 {
		return nil, apperr.Validation("coordinates out of range")
	}

	listing := &models.Listing{
		ID:           uuid.NewString(),
		Title:        in.Title,
		Description:  in.Description,
		Price:        in.Price,
		Address:      in.Address,
		City:         in.City,
		Locality:     in.Locality,
		State:        in.State,
		Country:      in.Country,
		PostalCode:   in.PostalCode,
		Longitude:    in.Longitude,
		Latitude:     in.Latitude,
		Bedrooms:     in.Bedrooms,
		Bathrooms:    in.Bathrooms,
		AreaSqft:     in.AreaSqft,
		PropertyType: in.PropertyType,
		Furnishing:   in.Furnishing,
		Facing:       in.Facing,
		Parking:      in.Parking,
		AgeYears:     in.AgeYears,
		Status:       models.ListingStatusDraft,
		OwnerID:      actor.ID,
	}
	for _, name := range in.Amenities {
		listing.Amenities = append(listing.Amenities, models.ListingAmenity{Name: name, ListingID: listing.ID})
	}
	for i, url := range in.ImageURLs {
		listing.Images = append(listing.Images, models.ListingImage{
			ListingID: listing.ID,
			URL:       url,
			IsPrimary: i == 0,
			Position:  i,
		})
	}

	if err := s.db.WithContext(ctx).Create(listing).Error; err != nil {
		return nil, fmt.Errorf("create listing: %w", err)
	}
	s.history.RecordNew(ctx, listing.ID)
	return listing, nil
}

// Get returns a listing with its related records.
func (s *Service) Get(ctx context.Context, id string) (*models.Listing, error) {
	var listing models.Listing
	err := s.db.WithContext(ctx).
		Preload("Amenities").
		Preload("Places").
		Preload("Images").
		Where("id = ?", id).
		First(&listing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("listing %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get listing: %w", err)
	}
	return &listing, nil
}

// RecordView bumps the view counter with an atomic store-side increment;
// concurrent viewers never lose updates. The caller may render the
// pre-increment count.
func (s *Service) RecordView(ctx context.Context, id string) {
	err := s.db.WithContext(ctx).Model(&models.Listing{}).
		Where("id = ?", id).
		UpdateColumn("view_count", gorm.Expr("view_count + 1")).Error
	if err != nil {
		s.logger.Warn("view count increment failed",
			"component", "listing", "id", id, "error", err)
	}
}

// engagementColumns maps track-event names to their counter columns.
var engagementColumns = map[string]string{
	"inquiry":  "inquiry_count",
	"share":    "share_count",
	"favorite": "favorite_count",
}

// TrackEngagement bumps one engagement counter atomically.
func (s *Service) TrackEngagement(ctx context.Context, id, event string) error {
	column, ok := engagementColumns[event]
	if !ok {
		return apperr.Validation("unknown engagement event %q", event)
	}
	res := s.db.WithContext(ctx).Model(&models.Listing{}).
		Where("id = ?", id).
		UpdateColumn(column, gorm.Expr(column+" + 1"))
	if res.Error != nil {
		return fmt.Errorf("track engagement: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("listing %s not found", id)
	}
	return nil
}

// ChangeStatus applies a status transition on behalf of an actor. Invalid
// target states and impossible edges are validation errors; permitted edges
// the actor may not use are authorization errors. The two are distinct
// failure kinds with distinct response statuses.
func (s *Service) ChangeStatus(ctx context.Context, actor auth.Actor, id string, target models.ListingStatus) (*models.Listing, error) {
	if !models.IsValidStatus(target) {
		return nil, apperr.Validation("unknown status %q", target)
	}

	listing, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if !models.CanTransition(listing.Status, target) {
		return nil, apperr.Validation("cannot transition %s to %s", listing.Status, target)
	}

	isOwner := listing.OwnerID == actor.ID
	if models.RequiresModerator(listing.Status, target) {
		if !actor.IsModerator() {
			return nil, apperr.Authorization("status %s requires a moderator", target)
		}
	} else if !actor.IsModerator() && !isOwner {
		return nil, apperr.Authorization("not the owner of listing %s", id)
	}

	now := time.Now()
	updates := map[string]interface{}{"status": target}
	if actor.IsModerator() {
		updates["moderated_by"] = actor.ID
		updates["moderated_at"] = &now
	}
	if target == models.ListingStatusArchived {
		updates["archived_at"] = &now
	}

	if err := s.db.WithContext(ctx).Model(&models.Listing{}).
		Where("id = ?", id).
		Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("update status: %w", err)
	}

	s.history.RecordStatusChange(ctx, id, listing.Status, target)
	s.logger.Info("listing status changed",
		"component", "listing", "id", id,
		"from", listing.Status, "to", target, "actor", actor.ID)

	listing.Status = target
	if target == models.ListingStatusArchived {
		listing.ArchivedAt = &now
	}
	return listing, nil
}

// UpdatePrice changes the price, recording the drift for the change feed.
// Only the owner or a moderator may reprice.
func (s *Service) UpdatePrice(ctx context.Context, actor auth.Actor, id string, price float64) (*models.Listing, error) {
	if price <= 0 {
		return nil, apperr.Validation("price must be positive")
	}
	listing, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if listing.OwnerID != actor.ID && !actor.IsModerator() {
		return nil, apperr.Authorization("not the owner of listing %s", id)
	}

	old := listing.Price
	if err := s.db.WithContext(ctx).Model(&models.Listing{}).
		Where("id = ?", id).
		Update("price", price).Error; err != nil {
		return nil, fmt.Errorf("update price: %w", err)
	}
	s.history.RecordPriceChange(ctx, id, old, price)

	listing.Price = price
	return listing, nil
}

// ByOwner lists an owner's listings across all non-archived states.
func (s *Service) ByOwner(ctx context.Context, ownerID string) ([]models.Listing, error) {
	var listings []models.Listing
	err := s.db.WithContext(ctx).
		Where("owner_id = ? AND status != ?", ownerID, models.ListingStatusArchived).
		Order("created_at DESC").
		Preload("Images").
		Find(&listings).Error
	if err != nil {
		return nil, fmt.Errorf("list by owner: %w", err)
	}
	return listings, nil
}

// ExpireFeaturedWindows clears the featured flag on listings whose window
// has closed. Returns the number of rows touched.
func (s *Service) ExpireFeaturedWindows(ctx context.Context, now time.Time) (int64, error) {
	res := s.db.WithContext(ctx).Model(&models.Listing{}).
		Where("featured = ? AND featured_until IS NOT NULL AND featured_until < ?", true, now).
		Update("featured", false)
	if res.Error != nil {
		return 0, fmt.Errorf("expire featured windows: %w", res.Error)
	}
	return res.RowsAffected, nil
}
