// Package scheduler runs the daily maintenance jobs: the saved-search alert
// sweep and the featured-window expiry pass.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"real-estate-marketplace/internal/config"
	"real-estate-marketplace/internal/listing"
	"real-estate-marketplace/internal/savedsearch"

	"github.com/robfig/cron/v3"
)

// Scheduler handles scheduled maintenance tasks.
type Scheduler struct {
	cron      *cron.Cron
	searches  *savedsearch.Store
	listings  *listing.Service
	config    *config.Config
	logger    *slog.Logger
	isRunning bool
}

// NewScheduler creates a scheduler.
func NewScheduler(searches *savedsearch.Store, listings *listing.Service, cfg *config.Config, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		cron:     cron.New(),
		searches: searches,
		listings: listings,
		config:   cfg,
		logger:   logger,
	}
}

// Start registers the daily jobs and starts the cron loop.
func (s *Scheduler) Start() error {
	if !s.config.Alerts.Enabled {
		s.logger.Info("alert sweep disabled in configuration", "component", "scheduler")
		return nil
	}

	cronSpec := s.parseDailyRunTime(s.config.Alerts.SweepTime)

	_, err := s.cron.AddFunc(cronSpec, func() {
		s.logger.Info("daily sweep starting", "component", "scheduler")
		if err := s.runDailySweep(); err != nil {
			s.logger.Error("daily sweep failed", "component", "scheduler", "error", err)
		} else {
			s.logger.Info("daily sweep completed", "component", "scheduler")
		}
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	s.isRunning = true
	s.logger.Info("scheduler started",
		"component", "scheduler",
		"sweep_time", s.config.Alerts.SweepTime,
		"cron", cronSpec)
	return nil
}

// Stop stops the scheduler.
func (s *Scheduler) Stop() {
	if s.isRunning {
		s.cron.Stop()
		s.isRunning = false
		s.logger.Info("scheduler stopped", "component", "scheduler")
	}
}

// runDailySweep expires stale featured windows and re-runs every due saved
// search, logging result-count drift for the alert channel.
func (s *Scheduler) runDailySweep() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	expired, err := s.listings.ExpireFeaturedWindows(ctx, time.Now())
	if err != nil {
		s.logger.Error("featured window expiry failed", "component", "scheduler", "error", err)
	} else if expired > 0 {
		s.logger.Info("featured windows expired", "component", "scheduler", "count", expired)
	}

	due, err := s.searches.DueForAlerts(ctx, time.Now())
	if err != nil {
		return fmt.Errorf("load due saved searches: %w", err)
	}
	s.logger.Info("due saved searches found", "component", "scheduler", "count", len(due))

	successCount := 0
	errorCount := 0
	driftCount := 0

	for i := range due {
		saved := due[i]
		previous, current, err := s.searches.RunForAlert(ctx, &saved)
		if err != nil {
			s.logger.Error("saved-search alert run failed",
				"component", "scheduler", "id", saved.ID, "error", err)
			errorCount++
			continue
		}
		if current != previous {
			driftCount++
			s.logger.Info("saved-search results changed",
				"component", "scheduler",
				"id", saved.ID,
				"user_id", saved.UserID,
				"name", saved.Name,
				"previous", previous,
				"current", current,
				"frequency", saved.AlertFrequency)
		}
		successCount++
	}

	s.logger.Info("alert sweep finished",
		"component", "scheduler",
		"success", successCount,
		"errors", errorCount,
		"changed", driftCount)
	return nil
}

// RunNow immediately executes the daily sweep (for manual trigger).
func (s *Scheduler) RunNow() error {
	s.logger.Info("manual sweep trigger", "component", "scheduler")
	return s.runDailySweep()
}

// parseDailyRunTime converts HH:MM format to cron specification.
// Example: "06:00" -> "0 6 * * *" (run at 6:00 AM every day).
func (s *Scheduler) parseDailyRunTime(timeStr string) string {
	var hour, minute int
	n, _ := fmt.Sscanf(timeStr, "%d:%d", &hour, &minute)
	if n == 2 && hour >= 0 && hour < 24 && minute >= 0 && minute < 60 {
		return fmt.Sprintf("%d %d * * *", minute, hour)
	}

	s.logger.Warn("sweep time parse failed, using default 06:00",
		"component", "scheduler", "value", timeStr)
	return "0 6 * * *"
}
