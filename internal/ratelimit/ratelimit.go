// Package ratelimit throttles public API traffic per client IP using token
// buckets.
package ratelimit

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// staleAfter is how long an idle client entry survives before eviction.
const staleAfter = 10 * time.Minute

// Limiter enforces a per-client request rate across the public API.
type Limiter struct {
	perMinute int
	burst     int
	enabled   bool

	clients map[string]*client
	mu      sync.Mutex

	allowed  int64
	rejected int64
}

type client struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewLimiter creates a limiter allowing requestsPerMinute sustained requests
// per client with the given burst.
func NewLimiter(requestsPerMinute, burst int, enabled bool) *Limiter {
	if requestsPerMinute < 1 {
		requestsPerMinute = 60
	}
	if burst < 1 {
		burst = requestsPerMinute
	}
	return &Limiter{
		perMinute: requestsPerMinute,
		burst:     burst,
		enabled:   enabled,
		clients:   make(map[string]*client),
	}
}

// Allow reports whether a request from key may proceed.
func (l *Limiter) Allow(key string) bool {
	if !l.enabled {
		return true
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	c, ok := l.clients[key]
	if !ok {
		c = &client{
			limiter: rate.NewLimiter(rate.Limit(float64(l.perMinute)/60.0), l.burst),
		}
		l.clients[key] = c
	}
	c.lastSeen = now
	l.evict(now)

	if c.limiter.Allow() {
		l.allowed++
		return true
	}
	l.rejected++
	return false
}

// evict drops entries idle longer than staleAfter. Caller holds the lock.
func (l *Limiter) evict(now time.Time) {
	for key, c := range l.clients {
		if now.Sub(c.lastSeen) > staleAfter {
			delete(l.clients, key)
		}
	}
}

// Stats contains limiter statistics for the admin dashboard.
type Stats struct {
	Enabled        bool  `json:"enabled"`
	LimitPerMinute int   `json:"limit_per_minute"`
	Burst          int   `json:"burst"`
	ActiveClients  int   `json:"active_clients"`
	Allowed        int64 `json:"allowed"`
	Rejected       int64 `json:"rejected"`
}

// GetStats returns current limiter statistics.
func (l *Limiter) GetStats() Stats {
	if !l.enabled {
		return Stats{Enabled: false}
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.evict(time.Now())

	return Stats{
		Enabled:        true,
		LimitPerMinute: l.perMinute,
		Burst:          l.burst,
		ActiveClients:  len(l.clients),
		Allowed:        l.allowed,
		Rejected:       l.rejected,
	}
}

// Reset clears all tracked clients and counters.
func (l *Limiter) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.clients = make(map[string]*client)
	l.allowed = 0
	l.rejected = 0
}

// Middleware rejects over-limit requests with 429.
func (l *Limiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !l.Allow(c.ClientIP()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "Rate limit exceeded",
			})
			return
		}
		c.Next()
	}
}
