package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"real-estate-marketplace/internal/cleanup"
	"real-estate-marketplace/internal/history"
	"real-estate-marketplace/internal/models"
	"real-estate-marketplace/internal/ratelimit"
	"real-estate-marketplace/internal/scheduler"
	"real-estate-marketplace/internal/search"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// AdminHandler handles admin-related requests.
type AdminHandler struct {
	db             *gorm.DB
	scheduler      *scheduler.Scheduler
	historyService *history.Service
	cleanupService *cleanup.Service
	suggest        *search.SuggestClient
	limiter        *ratelimit.Limiter
	logger         *slog.Logger
}

// NewAdminHandler creates a new admin handler.
func NewAdminHandler(db *gorm.DB, sched *scheduler.Scheduler, hist *history.Service, clean *cleanup.Service, suggest *search.SuggestClient, limiter *ratelimit.Limiter, logger *slog.Logger) *AdminHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AdminHandler{
		db:             db,
		scheduler:      sched,
		historyService: hist,
		cleanupService: clean,
		suggest:        suggest,
		limiter:        limiter,
		logger:         logger,
	}
}

// GetStats returns system statistics.
func (h *AdminHandler) GetStats(c *gin.Context) {
	stats := make(map[string]interface{})

	byStatus := make(map[string]int64)
	var rows []struct {
		Status string
		Count  int64
	}
	if err := h.db.Model(&models.Listing{}).
		Select("status, count(*) as count").
		Group("status").
		Scan(&rows).Error; err == nil {
		var total int64
		for _, r := range rows {
			byStatus[r.Status] = r.Count
			total += r.Count
		}
		byStatus["total"] = total
	}
	stats["listings"] = byStatus

	last24h := time.Now().AddDate(0, 0, -1)
	var createdRecently int64
	h.db.Model(&models.Listing{}).Where("created_at >= ?", last24h).Count(&createdRecently)
	stats["recent_activity"] = map[string]interface{}{
		"created_last_24h": createdRecently,
	}

	last7days := time.Now().AddDate(0, 0, -7)
	var recentChanges int64
	h.db.Model(&models.ListingChange{}).Where("detected_at >= ?", last7days).Count(&recentChanges)
	stats["changes"] = map[string]interface{}{
		"last_7_days": recentChanges,
	}

	var savedCount int64
	h.db.Model(&models.SavedSearch{}).Where("active = ?", true).Count(&savedCount)
	stats["saved_searches"] = map[string]interface{}{
		"active": savedCount,
	}

	deleteStats, err := h.cleanupService.Stats(c.Request.Context())
	if err != nil {
		h.logger.Warn("delete stats unavailable", "component", "handlers", "error", err)
	} else {
		stats["deletions"] = deleteStats
	}

	if h.limiter != nil {
		stats["rate_limit"] = h.limiter.GetStats()
	}
	if h.suggest != nil {
		stats["suggest_index_healthy"] = h.suggest.Healthy()
	}

	c.JSON(http.StatusOK, stats)
}

// GetModerationQueue returns pending listings oldest first.
func (h *AdminHandler) GetModerationQueue(c *gin.Context) {
	limit := 50
	if v := c.Query("limit"); v != "" {
		if n, err := parsePositiveInt(v); err == nil && n <= 200 {
			limit = n
		}
	}

	var pending []models.Listing
	err := h.db.Where("status = ?", models.ListingStatusPending).
		Order("created_at ASC").
		Limit(limit).
		Preload("Images").
		Find(&pending).Error
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"pending": pending, "count": len(pending)})
}

// GetRecentChanges returns the change feed over the last N days.
func (h *AdminHandler) GetRecentChanges(c *gin.Context) {
	days := 7
	if v := c.Query("days"); v != "" {
		if n, err := parsePositiveInt(v); err == nil && n <= 90 {
			days = n
		}
	}
	limit := 50
	if v := c.Query("limit"); v != "" {
		if n, err := parsePositiveInt(v); err == nil {
			limit = n
		}
	}

	changes, err := h.historyService.Recent(c.Request.Context(), time.Duration(days)*24*time.Hour, limit)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"changes": changes, "count": len(changes), "days": days})
}

// RunCleanup executes an archived-listing purge.
func (h *AdminHandler) RunCleanup(c *gin.Context) {
	var req struct {
		RetentionDays    int  `json:"retention_days"`
		MaxDeletionCount int  `json:"max_deletion_count"`
		DryRun           bool `json:"dry_run"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	cfg := cleanup.DefaultConfig()
	if req.RetentionDays > 0 {
		cfg.RetentionDays = req.RetentionDays
	}
	if req.MaxDeletionCount > 0 {
		cfg.MaxDeletionCount = req.MaxDeletionCount
	}
	cfg.DryRun = req.DryRun

	result, err := h.cleanupService.Purge(c.Request.Context(), cfg)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetDeleteLogs returns recent delete log entries.
func (h *AdminHandler) GetDeleteLogs(c *gin.Context) {
	limit := 50
	if v := c.Query("limit"); v != "" {
		if n, err := parsePositiveInt(v); err == nil {
			limit = n
		}
	}

	logs, err := h.cleanupService.RecentDeleteLogs(c.Request.Context(), limit)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"delete_logs": logs, "count": len(logs)})
}

// TriggerSweep manually runs the daily maintenance sweep.
func (h *AdminHandler) TriggerSweep(c *gin.Context) {
	if h.scheduler == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Scheduler not available"})
		return
	}

	go func() {
		if err := h.scheduler.RunNow(); err != nil {
			h.logger.Error("manual sweep failed", "component", "handlers", "error", err)
		}
	}()

	c.JSON(http.StatusAccepted, gin.H{"message": "Sweep started"})
}

// ReindexSuggest rebuilds the suggest index from active listings.
func (h *AdminHandler) ReindexSuggest(c *gin.Context) {
	if h.suggest == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Suggest index not configured"})
		return
	}

	var active []models.Listing
	if err := h.db.Where("status = ?", models.ListingStatusActive).Find(&active).Error; err != nil {
		respondError(c, h.logger, err)
		return
	}

	if err := h.suggest.IndexListings(active); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"indexed": len(active)})
}
