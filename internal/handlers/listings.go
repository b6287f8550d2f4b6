package handlers

import (
	"log/slog"
	"net/http"

	"real-estate-marketplace/internal/auth"
	"real-estate-marketplace/internal/listing"
	"real-estate-marketplace/internal/models"
	"real-estate-marketplace/internal/search"

	"github.com/gin-gonic/gin"
)

// ListingHandler serves the listing lifecycle endpoints.
type ListingHandler struct {
	service *listing.Service
	suggest *search.SuggestClient
	logger  *slog.Logger
}

// NewListingHandler creates a listing handler.
func NewListingHandler(service *listing.Service, suggest *search.SuggestClient, logger *slog.Logger) *ListingHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ListingHandler{service: service, suggest: suggest, logger: logger}
}

// Create handles POST /api/listings.
func (h *ListingHandler) Create(c *gin.Context) {
	actor, ok := auth.FromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	var in listing.CreateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	created, err := h.service.Create(c.Request.Context(), actor, in)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// Get handles GET /api/listings/:id and records the view.
func (h *ListingHandler) Get(c *gin.Context) {
	id := c.Param("id")
	l, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if l.IsPublic() {
		h.service.RecordView(c.Request.Context(), id)
	}
	c.JSON(http.StatusOK, l)
}

// ChangeStatus handles PATCH /api/listings/:id/status.
func (h *ListingHandler) ChangeStatus(c *gin.Context) {
	actor, ok := auth.FromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updated, err := h.service.ChangeStatus(c.Request.Context(), actor, c.Param("id"), models.ListingStatus(req.Status))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	h.syncSuggestIndex(updated)
	c.JSON(http.StatusOK, updated)
}

// UpdatePrice handles PATCH /api/listings/:id/price.
func (h *ListingHandler) UpdatePrice(c *gin.Context) {
	actor, ok := auth.FromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	var req struct {
		Price float64 `json:"price" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updated, err := h.service.UpdatePrice(c.Request.Context(), actor, c.Param("id"), req.Price)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	h.syncSuggestIndex(updated)
	c.JSON(http.StatusOK, updated)
}

// Track handles POST /api/listings/:id/track.
func (h *ListingHandler) Track(c *gin.Context) {
	var req struct {
		Event string `json:"event" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.service.TrackEngagement(c.Request.Context(), c.Param("id"), req.Event); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tracked": req.Event})
}

// MyListings handles GET /api/me/listings.
func (h *ListingHandler) MyListings(c *gin.Context) {
	actor, ok := auth.FromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	listings, err := h.service.ByOwner(c.Request.Context(), actor.ID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"listings": listings, "count": len(listings)})
}

// syncSuggestIndex keeps the suggest index aligned with listing visibility.
// Index failures are logged and ignored; suggestions lag at worst.
func (h *ListingHandler) syncSuggestIndex(l *models.Listing) {
	if h.suggest == nil {
		return
	}
	var err error
	if l.Status == models.ListingStatusActive {
		err = h.suggest.IndexListing(l)
	} else {
		err = h.suggest.RemoveListing(l.ID)
	}
	if err != nil {
		h.logger.Warn("suggest index sync failed",
			"component", "handlers", "id", l.ID, "error", err)
	}
}
