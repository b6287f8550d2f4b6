package handlers

import (
	"log/slog"
	"net/http"

	"real-estate-marketplace/internal/auth"
	"real-estate-marketplace/internal/models"
	"real-estate-marketplace/internal/recommend"
	"real-estate-marketplace/internal/savedsearch"

	"github.com/gin-gonic/gin"
)

// SavedSearchHandler serves saved-search and recommendation endpoints.
type SavedSearchHandler struct {
	store     *savedsearch.Store
	recommend *recommend.Engine
	logger    *slog.Logger
}

// NewSavedSearchHandler creates a saved-search handler.
func NewSavedSearchHandler(store *savedsearch.Store, rec *recommend.Engine, logger *slog.Logger) *SavedSearchHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &SavedSearchHandler{store: store, recommend: rec, logger: logger}
}

// Create handles POST /api/saved-searches.
func (h *SavedSearchHandler) Create(c *gin.Context) {
	actor, ok := auth.FromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	var req struct {
		Name           string                 `json:"name" binding:"required"`
		Description    string                 `json:"description"`
		Params         map[string]interface{} `json:"params"`
		AlertFrequency string                 `json:"alert_frequency"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	saved, err := h.store.Save(c.Request.Context(), actor.ID, req.Name, req.Params,
		models.AlertFrequency(req.AlertFrequency), req.Description)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, saved)
}

// List handles GET /api/saved-searches.
func (h *SavedSearchHandler) List(c *gin.Context) {
	actor, ok := auth.FromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	entries, err := h.store.List(c.Request.Context(), actor.ID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"saved_searches": entries, "count": len(entries)})
}

// Execute handles POST /api/saved-searches/:id/execute.
func (h *SavedSearchHandler) Execute(c *gin.Context) {
	actor, ok := auth.FromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	result, err := h.store.Execute(c.Request.Context(), actor.ID, c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Deactivate handles POST /api/saved-searches/:id/deactivate.
func (h *SavedSearchHandler) Deactivate(c *gin.Context) {
	actor, ok := auth.FromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	if err := h.store.Deactivate(c.Request.Context(), actor.ID, c.Param("id")); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deactivated": true})
}

// Delete handles DELETE /api/saved-searches/:id.
func (h *SavedSearchHandler) Delete(c *gin.Context) {
	actor, ok := auth.FromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	if err := h.store.Delete(c.Request.Context(), actor.ID, c.Param("id")); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

// Recommendations handles GET /api/recommendations.
func (h *SavedSearchHandler) Recommendations(c *gin.Context) {
	actor, ok := auth.FromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	count := 10
	if v := c.Query("count"); v != "" {
		if n, err := parsePositiveInt(v); err == nil {
			count = n
		}
	}

	items, err := h.recommend.ForUser(c.Request.Context(), actor.ID, count)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"recommendations": items, "count": len(items)})
}
