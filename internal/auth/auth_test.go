package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func testRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/whoami", Middleware(testSecret), func(c *gin.Context) {
		actor, _ := FromContext(c)
		c.JSON(http.StatusOK, gin.H{"id": actor.ID, "role": string(actor.Role)})
	})
	r.GET("/admin", Middleware(testSecret), RequireAdmin(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return r
}

func doRequest(r *gin.Engine, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestMiddlewareRejectsMissingToken(t *testing.T) {
	w := doRequest(testRouter(), "/whoami", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestMiddlewareRejectsBadSignature(t *testing.T) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "u1"})
	signed, err := token.SignedString([]byte("wrong-secret"))
	require.NoError(t, err)

	w := doRequest(testRouter(), "/whoami", signed)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestMiddlewareRejectsMissingSubject(t *testing.T) {
	w := doRequest(testRouter(), "/whoami", signToken(t, jwt.MapClaims{"role": "admin"}))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestMiddlewareExtractsActor(t *testing.T) {
	token := signToken(t, jwt.MapClaims{
		"sub":  "user-42",
		"role": "agent",
		"exp":  time.Now().Add(time.Hour).Unix(),
	})

	w := doRequest(testRouter(), "/whoami", token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "user-42")
	assert.Contains(t, w.Body.String(), "agent")
}

func TestMiddlewareUnknownRoleDefaultsToUser(t *testing.T) {
	token := signToken(t, jwt.MapClaims{"sub": "u1", "role": "superuser"})
	w := doRequest(testRouter(), "/whoami", token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"role":"user"`)
}

func TestMiddlewareRejectsExpiredToken(t *testing.T) {
	token := signToken(t, jwt.MapClaims{
		"sub": "u1",
		"exp": time.Now().Add(-time.Hour).Unix(),
	})
	w := doRequest(testRouter(), "/whoami", token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireAdmin(t *testing.T) {
	r := testRouter()

	w := doRequest(r, "/admin", signToken(t, jwt.MapClaims{"sub": "u1", "role": "agent"}))
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doRequest(r, "/admin", signToken(t, jwt.MapClaims{"sub": "u1", "role": "admin"}))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestIsModerator(t *testing.T) {
	assert.True(t, Actor{Role: RoleAdmin}.IsModerator())
	assert.False(t, Actor{Role: RoleAgent}.IsModerator())
	assert.False(t, Actor{Role: RoleUser}.IsModerator())
}
