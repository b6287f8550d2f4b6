// Package auth turns bearer tokens into the Actor identity the rest of the
// API consumes. The core treats the actor as an opaque input; only id and
// role matter downstream.
package auth

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// Role is the coarse permission level of an authenticated actor.
type Role string

const (
	RoleUser  Role = "user"
	RoleAgent Role = "agent"
	RoleAdmin Role = "admin"
)

// Actor is the authenticated identity attached to a request context.
type Actor struct {
	ID   string
	Role Role
}

// IsModerator reports whether the actor may perform moderation-only status
// transitions.
func (a Actor) IsModerator() bool {
	return a.Role == RoleAdmin
}

const contextKey = "actor"

// Middleware validates the Authorization bearer token and stores the Actor
// on the gin context.
func Middleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "No bearer token"})
			return
		}
		tokenStr := strings.TrimPrefix(authHeader, "Bearer ")

		token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}
		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid claims"})
			return
		}

		sub, _ := claims["sub"].(string)
		if sub == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing subject"})
			return
		}
		role := RoleUser
		if r, _ := claims["role"].(string); r != "" {
			switch Role(r) {
			case RoleAgent:
				role = RoleAgent
			case RoleAdmin:
				role = RoleAdmin
			}
		}

		c.Set(contextKey, Actor{ID: sub, Role: role})
		c.Next()
	}
}

// RequireAdmin aborts with 403 for non-admin actors. Must run after
// Middleware.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := FromContext(c)
		if !ok || actor.Role != RoleAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Admin access only"})
			return
		}
		c.Next()
	}
}

// FromContext returns the Actor stored by Middleware.
func FromContext(c *gin.Context) (Actor, bool) {
	v, exists := c.Get(contextKey)
	if !exists {
		return Actor{}, false
	}
	actor, ok := v.(Actor)
	return actor, ok
}
