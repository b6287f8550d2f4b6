package ratelimit

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDisabledLimiterAlwaysAllows(t *testing.T) {
	l := NewLimiter(1, 1, false)
	for i := 0; i < 100; i++ {
		assert.True(t, l.Allow("1.2.3.4"))
	}
	assert.False(t, l.GetStats().Enabled)
}

func TestBurstExhaustion(t *testing.T) {
	l := NewLimiter(60, 3, true)

	assert.True(t, l.Allow("1.2.3.4"))
	assert.True(t, l.Allow("1.2.3.4"))
	assert.True(t, l.Allow("1.2.3.4"))
	assert.False(t, l.Allow("1.2.3.4"))
}

func TestClientsAreIndependent(t *testing.T) {
	l := NewLimiter(60, 1, true)

	assert.True(t, l.Allow("1.2.3.4"))
	assert.False(t, l.Allow("1.2.3.4"))
	assert.True(t, l.Allow("5.6.7.8"))
}

func TestStatsCountAllowedAndRejected(t *testing.T) {
	l := NewLimiter(60, 2, true)

	l.Allow("a")
	l.Allow("a")
	l.Allow("a")

	stats := l.GetStats()
	assert.True(t, stats.Enabled)
	assert.Equal(t, int64(2), stats.Allowed)
	assert.Equal(t, int64(1), stats.Rejected)
	assert.Equal(t, 1, stats.ActiveClients)
}

func TestReset(t *testing.T) {
	l := NewLimiter(60, 1, true)
	l.Allow("a")
	l.Allow("a")
	l.Reset()

	stats := l.GetStats()
	assert.Equal(t, int64(0), stats.Allowed)
	assert.Equal(t, 0, stats.ActiveClients)
	assert.True(t, l.Allow("a"))
}

func TestDefaultsForInvalidConfig(t *testing.T) {
	l := NewLimiter(0, 0, true)
	assert.Equal(t, 60, l.GetStats().LimitPerMinute)
	assert.Equal(t, 60, l.GetStats().Burst)
}
