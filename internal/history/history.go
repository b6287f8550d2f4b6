// Package history records listing changes for the moderation feed and the
// price-drop timeline.
package history

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"real-estate-marketplace/internal/models"

	"gorm.io/gorm"
)

// Service writes and reads the listing change log.
type Service struct {
	db     *gorm.DB
	logger *slog.Logger
}

// NewService creates a history service.
func NewService(db *gorm.DB, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{db: db, logger: logger}
}

// record writes one change row. Recording is best effort: the change feed
// must never fail the operation that produced the change.
func (s *Service) record(ctx context.Context, change models.ListingChange) {
	change.DetectedAt = time.Now()
	if err := s.db.WithContext(ctx).Create(&change).Error; err != nil {
		s.logger.Warn("change record failed",
			"component", "history",
			"listing_id", change.ListingID,
			"change_type", change.ChangeType,
			"error", err)
	}
}

// RecordNew records a newly created listing.
func (s *Service) RecordNew(ctx context.Context, listingID string) {
	s.record(ctx, models.ListingChange{
		ListingID:  listingID,
		ChangeType: models.ChangeTypeNew,
	})
}

// RecordPriceChange records a reprice with its signed magnitude.
func (s *Service) RecordPriceChange(ctx context.Context, listingID string, oldPrice, newPrice float64) {
	magnitude := newPrice - oldPrice
	s.record(ctx, models.ListingChange{
		ListingID:       listingID,
		ChangeType:      models.ChangeTypePrice,
		OldValue:        strconv.FormatFloat(oldPrice, 'f', 2, 64),
		NewValue:        strconv.FormatFloat(newPrice, 'f', 2, 64),
		ChangeMagnitude: &magnitude,
	})
}

// RecordStatusChange records a status transition.
func (s *Service) RecordStatusChange(ctx context.Context, listingID string, from, to models.ListingStatus) {
	s.record(ctx, models.ListingChange{
		ListingID:  listingID,
		ChangeType: models.ChangeTypeStatus,
		OldValue:   string(from),
		NewValue:   string(to),
	})
}

// Recent returns changes detected in the last `since` window, newest first.
func (s *Service) Recent(ctx context.Context, since time.Duration, limit int) ([]models.ListingChange, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	cutoff := time.Now().Add(-since)

	var changes []models.ListingChange
	err := s.db.WithContext(ctx).
		Where("detected_at >= ?", cutoff).
		Order("detected_at DESC").
		Limit(limit).
		Find(&changes).Error
	if err != nil {
		return nil, fmt.Errorf("recent changes: %w", err)
	}
	return changes, nil
}

// PriceDrops returns recent price changes whose magnitude is negative.
func (s *Service) PriceDrops(ctx context.Context, since time.Duration, limit int) ([]models.ListingChange, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	cutoff := time.Now().Add(-since)

	var changes []models.ListingChange
	err := s.db.WithContext(ctx).
		Where("change_type = ? AND detected_at >= ? AND change_magnitude < 0",
			models.ChangeTypePrice, cutoff).
		Order("detected_at DESC").
		Limit(limit).
		Find(&changes).Error
	if err != nil {
		return nil, fmt.Errorf("price drops: %w", err)
	}
	return changes, nil
}
