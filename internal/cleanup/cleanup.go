// Package cleanup physically purges listings that have sat in the archived
// state past the retention window, leaving an audit trail in delete_logs.
package cleanup

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"real-estate-marketplace/internal/models"

	"gorm.io/gorm"
)

// Service handles physical deletion of old archived listings.
type Service struct {
	db     *gorm.DB
	logger *slog.Logger
}

// NewService creates a cleanup service.
func NewService(db *gorm.DB, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{db: db, logger: logger}
}

// Config holds configuration for one cleanup run.
type Config struct {
	RetentionDays    int  // days an archived listing is kept before physical deletion
	MaxDeletionCount int  // safety limit on rows deleted in one run
	DryRun           bool // log what would be deleted without deleting
}

// DefaultConfig returns the default cleanup configuration.
func DefaultConfig() Config {
	return Config{
		RetentionDays:    90,
		MaxDeletionCount: 10000,
		DryRun:           false,
	}
}

// Result holds the outcome of a cleanup run.
type Result struct {
	TargetCount  int       `json:"target_count"`
	DeletedCount int       `json:"deleted_count"`
	ErrorCount   int       `json:"error_count"`
	DryRun       bool      `json:"dry_run"`
	ExecutedAt   time.Time `json:"executed_at"`
	DeletedIDs   []string  `json:"deleted_ids"`
	Errors       []string  `json:"errors,omitempty"`
}

// FindExpired returns archived listings whose archived_at is older than
// retentionDays.
func (s *Service) FindExpired(ctx context.Context, retentionDays int) ([]models.Listing, error) {
	cutoff := time.Now().AddDate(0, 0, -retentionDays)

	var listings []models.Listing
	err := s.db.WithContext(ctx).
		Where("status = ? AND archived_at IS NOT NULL AND archived_at < ?",
			models.ListingStatusArchived, cutoff).
		Find(&listings).Error
	if err != nil {
		return nil, fmt.Errorf("find expired listings: %w", err)
	}

	s.logger.Info("expired listings located",
		"component", "cleanup",
		"count", len(listings),
		"cutoff", cutoff.Format("2006-01-02"))
	return listings, nil
}

// Purge deletes expired archived listings along with their child rows.
// Each listing is deleted in its own transaction with a delete-log row
// written first, so a partial run never loses the audit trail.
func (s *Service) Purge(ctx context.Context, cfg Config) (*Result, error) {
	result := &Result{
		DryRun:     cfg.DryRun,
		ExecutedAt: time.Now(),
	}

	expired, err := s.FindExpired(ctx, cfg.RetentionDays)
	if err != nil {
		return nil, err
	}
	result.TargetCount = len(expired)

	if result.TargetCount == 0 {
		return result, nil
	}
	if result.TargetCount > cfg.MaxDeletionCount {
		return nil, fmt.Errorf("safety check failed: %d listings exceed max deletion limit of %d",
			result.TargetCount, cfg.MaxDeletionCount)
	}

	s.logger.Info("cleanup starting",
		"component", "cleanup",
		"targets", result.TargetCount,
		"retention_days", cfg.RetentionDays,
		"dry_run", cfg.DryRun)

	for _, l := range expired {
		if cfg.DryRun {
			s.logger.Info("would delete listing",
				"component", "cleanup", "id", l.ID, "title", l.Title)
			result.DeletedIDs = append(result.DeletedIDs, l.ID)
			result.DeletedCount++
			continue
		}

		if err := s.purgeOne(ctx, l); err != nil {
			msg := fmt.Sprintf("delete listing %s: %v", l.ID, err)
			s.logger.Error("listing purge failed",
				"component", "cleanup", "id", l.ID, "error", err)
			result.Errors = append(result.Errors, msg)
			result.ErrorCount++
			continue
		}

		result.DeletedIDs = append(result.DeletedIDs, l.ID)
		result.DeletedCount++
	}

	s.logger.Info("cleanup finished",
		"component", "cleanup",
		"deleted", result.DeletedCount,
		"targets", result.TargetCount,
		"errors", result.ErrorCount,
		"dry_run", cfg.DryRun)
	return result, nil
}

// purgeOne removes one listing and its child rows inside a transaction.
func (s *Service) purgeOne(ctx context.Context, l models.Listing) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		archivedAt := l.CreatedAt
		if l.ArchivedAt != nil {
			archivedAt = *l.ArchivedAt
		}
		logEntry := models.DeleteLog{
			ListingID:  l.ID,
			Title:      l.Title,
			OwnerID:    l.OwnerID,
			ArchivedAt: archivedAt,
			Reason:     models.DeleteReasonExpired,
		}
		if err := tx.Create(&logEntry).Error; err != nil {
			return fmt.Errorf("create delete log: %w", err)
		}

		if err := tx.Where("listing_id = ?", l.ID).Delete(&models.ListingAmenity{}).Error; err != nil {
			return fmt.Errorf("delete amenities: %w", err)
		}
		if err := tx.Where("listing_id = ?", l.ID).Delete(&models.ListingPlace{}).Error; err != nil {
			return fmt.Errorf("delete places: %w", err)
		}
		if err := tx.Where("listing_id = ?", l.ID).Delete(&models.ListingImage{}).Error; err != nil {
			return fmt.Errorf("delete images: %w", err)
		}
		if err := tx.Delete(&models.Listing{}, "id = ?", l.ID).Error; err != nil {
			return fmt.Errorf("delete listing: %w", err)
		}
		return nil
	})
}

// Stats returns deletion statistics for the admin dashboard.
func (s *Service) Stats(ctx context.Context) (map[string]interface{}, error) {
	stats := make(map[string]interface{})
	db := s.db.WithContext(ctx)

	var totalDeleted int64
	if err := db.Model(&models.DeleteLog{}).Count(&totalDeleted).Error; err != nil {
		return nil, err
	}
	stats["total_deleted"] = totalDeleted

	var reasonCounts []struct {
		Reason string
		Count  int64
	}
	if err := db.Model(&models.DeleteLog{}).
		Select("reason, count(*) as count").
		Group("reason").
		Scan(&reasonCounts).Error; err != nil {
		return nil, err
	}
	byReason := make(map[string]int64)
	for _, rc := range reasonCounts {
		byReason[rc.Reason] = rc.Count
	}
	stats["by_reason"] = byReason

	var recentDeleted int64
	thirtyDaysAgo := time.Now().AddDate(0, 0, -30)
	if err := db.Model(&models.DeleteLog{}).
		Where("deleted_at >= ?", thirtyDaysAgo).
		Count(&recentDeleted).Error; err != nil {
		return nil, err
	}
	stats["deleted_last_30_days"] = recentDeleted

	var currentlyArchived int64
	if err := db.Model(&models.Listing{}).
		Where("status = ?", models.ListingStatusArchived).
		Count(&currentlyArchived).Error; err != nil {
		return nil, err
	}
	stats["currently_archived"] = currentlyArchived

	return stats, nil
}

// RecentDeleteLogs returns the newest delete log entries.
func (s *Service) RecentDeleteLogs(ctx context.Context, limit int) ([]models.DeleteLog, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var logs []models.DeleteLog
	err := s.db.WithContext(ctx).
		Order("deleted_at DESC").
		Limit(limit).
		Find(&logs).Error
	return logs, err
}
