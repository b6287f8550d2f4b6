package search

import (
	"sync"
	"time"
)

const defaultBreakerReset = 30 * time.Second

// Breaker stops hitting the suggest index once it starts failing, so a down
// Meilisearch never adds latency to every search page load.
type Breaker struct {
	failureThreshold int
	resetTimeout     time.Duration

	consecutiveFailures int
	isOpen              bool
	lastFailureTime     time.Time

	mutex sync.Mutex
}

// NewBreaker creates a breaker that opens after failureThreshold
// consecutive failures and half-opens after resetTimeout.
func NewBreaker(failureThreshold int, resetTimeout time.Duration) *Breaker {
	if failureThreshold < 1 {
		failureThreshold = 1
	}
	return &Breaker{
		failureThreshold: failureThreshold,
		resetTimeout:     resetTimeout,
	}
}

// RecordSuccess records a successful request and closes the breaker.
func (cb *Breaker) RecordSuccess() {
	cb.mutex.Lock()
	defer cb.mutex.Unlock()

	cb.consecutiveFailures = 0
	cb.isOpen = false
}

// RecordFailure records a failed request, opening the breaker once the
// consecutive-failure threshold is reached.
func (cb *Breaker) RecordFailure() {
	cb.mutex.Lock()
	defer cb.mutex.Unlock()

	cb.consecutiveFailures++
	cb.lastFailureTime = time.Now()
	if cb.consecutiveFailures >= cb.failureThreshold {
		cb.isOpen = true
	}
}

// CanProceed checks if requests are allowed.
func (cb *Breaker) CanProceed() bool {
	cb.mutex.Lock()
	defer cb.mutex.Unlock()

	if !cb.isOpen {
		return true
	}

	// Half-open after the reset timeout has passed
	if time.Since(cb.lastFailureTime) > cb.resetTimeout {
		cb.isOpen = false
		cb.consecutiveFailures = 0
		return true
	}

	return false
}
