package handlers

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"real-estate-marketplace/internal/query"
	"real-estate-marketplace/internal/search"

	"github.com/gin-gonic/gin"
)

// SearchHandler serves the public listing search surface.
type SearchHandler struct {
	executor *search.Executor
	facets   *search.FacetEngine
	suggest  *search.SuggestClient
	logger   *slog.Logger
}

// NewSearchHandler creates a search handler.
func NewSearchHandler(executor *search.Executor, facets *search.FacetEngine, suggest *search.SuggestClient, logger *slog.Logger) *SearchHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &SearchHandler{executor: executor, facets: facets, suggest: suggest, logger: logger}
}

// Search handles GET /api/listings. Unknown and malformed parameters are
// dropped, never rejected, and execution failures degrade instead of
// surfacing a server error.
func (h *SearchHandler) Search(c *gin.Context) {
	raw := map[string][]string(c.Request.URL.Query())
	params := query.ParseFilterParams(raw)
	plan := query.BuildPublicPlan(params)

	result := h.executor.ExecuteWithFallback(c.Request.Context(), plan, raw)
	c.JSON(http.StatusOK, result)
}

// Facets handles GET /api/listings/facets. Each facet branch degrades
// independently; the endpoint itself always succeeds.
func (h *SearchHandler) Facets(c *gin.Context) {
	textTerm := strings.TrimSpace(c.Query("q"))
	facets := h.facets.Compute(c.Request.Context(), textTerm)
	c.JSON(http.StatusOK, gin.H{"facets": facets})
}

// Suggest handles GET /api/listings/suggest. An unavailable suggest index
// returns an empty list, not an error.
func (h *SearchHandler) Suggest(c *gin.Context) {
	q := strings.TrimSpace(c.Query("q"))
	if len(q) < 2 {
		c.JSON(http.StatusOK, gin.H{"suggestions": []search.SuggestDoc{}})
		return
	}

	limit := int64(10)
	if v, err := strconv.ParseInt(c.Query("limit"), 10, 64); err == nil && v > 0 && v <= 25 {
		limit = v
	}

	docs, err := h.suggest.Suggest(q, limit)
	if err != nil || docs == nil {
		docs = []search.SuggestDoc{}
	}
	c.JSON(http.StatusOK, gin.H{"suggestions": docs})
}
