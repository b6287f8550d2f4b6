package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"real-estate-marketplace/internal/apperr"

	"github.com/gin-gonic/gin"
)

// respondError maps an application error onto its HTTP status. Internal
// errors are logged and masked; client-caused errors pass their message
// through.
func respondError(c *gin.Context, logger *slog.Logger, err error) {
	status := apperr.HTTPStatus(err)

	var appErr *apperr.Error
	if errors.As(err, &appErr) && status < 500 {
		c.JSON(status, gin.H{"error": appErr.Message})
		return
	}

	logger.Error("request failed",
		"component", "handlers",
		"path", c.FullPath(),
		"error", err)
	c.JSON(status, gin.H{"error": "Internal server error"})
}

// parsePositiveInt parses a positive integer query value.
func parsePositiveInt(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	if n <= 0 {
		return 0, fmt.Errorf("value must be positive: %d", n)
	}
	return n, nil
}
