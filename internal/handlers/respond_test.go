package handlers

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"real-estate-marketplace/internal/apperr"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func respondWith(err error) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	respondError(c, logger, err)
	return w
}

func TestRespondErrorClientKindsPassMessageThrough(t *testing.T) {
	w := respondWith(apperr.Validation("price must be positive"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "price must be positive")

	w = respondWith(apperr.NotFound("listing x not found"))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = respondWith(apperr.DuplicateName("name taken"))
	assert.Equal(t, http.StatusConflict, w.Code)

	w = respondWith(apperr.Authorization("not yours"))
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRespondErrorMasksInternalErrors(t *testing.T) {
	w := respondWith(errors.New("dsn=root:hunter2@tcp"))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "hunter2")
	assert.Contains(t, w.Body.String(), "Internal server error")
}

func TestParsePositiveInt(t *testing.T) {
	n, err := parsePositiveInt("25")
	assert.NoError(t, err)
	assert.Equal(t, 25, n)

	_, err = parsePositiveInt("0")
	assert.Error(t, err)
	_, err = parsePositiveInt("abc")
	assert.Error(t, err)
}
