package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatusMapping(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(Validation("bad input")))
	assert.Equal(t, http.StatusForbidden, HTTPStatus(Authorization("no")))
	assert.Equal(t, http.StatusNotFound, HTTPStatus(NotFound("missing")))
	assert.Equal(t, http.StatusConflict, HTTPStatus(DuplicateName("taken")))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(errors.New("boom")))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(Degraded("down", errors.New("cause"))))
}

func TestKindSurvivesWrapping(t *testing.T) {
	err := fmt.Errorf("outer: %w", NotFound("listing %s not found", "x"))
	assert.True(t, IsKind(err, KindNotFound))
	assert.Equal(t, KindNotFound, KindOf(err))
	assert.Equal(t, http.StatusNotFound, HTTPStatus(err))
}

func TestDegradedUnwrapsCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Degraded("query failed", cause)
	assert.ErrorIs(t, err, cause)
	assert.True(t, IsKind(err, KindDegraded))
}

func TestKindOfPlainError(t *testing.T) {
	assert.Equal(t, KindInternal, KindOf(errors.New("x")))
	assert.False(t, IsKind(errors.New("x"), KindValidation))
}
