package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDueForAlertNeverRunIsDue(t *testing.T) {
	s := SavedSearch{Active: true, AlertFrequency: AlertDaily}
	assert.True(t, s.DueForAlert(time.Now()))
}

func TestDueForAlertFrequencyOff(t *testing.T) {
	s := SavedSearch{Active: true, AlertFrequency: AlertNever}
	assert.False(t, s.DueForAlert(time.Now()))
}

func TestDueForAlertInactive(t *testing.T) {
	s := SavedSearch{Active: false, AlertFrequency: AlertDaily}
	assert.False(t, s.DueForAlert(time.Now()))
}

func TestDueForAlertIntervals(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		frequency AlertFrequency
		elapsed   time.Duration
		due       bool
	}{
		{AlertDaily, 23 * time.Hour, false},
		{AlertDaily, 25 * time.Hour, true},
		{AlertWeekly, 6 * 24 * time.Hour, false},
		{AlertWeekly, 8 * 24 * time.Hour, true},
		{AlertMonthly, 29 * 24 * time.Hour, false},
		{AlertMonthly, 31 * 24 * time.Hour, true},
	}
	for _, tc := range cases {
		last := now.Add(-tc.elapsed)
		s := SavedSearch{Active: true, AlertFrequency: tc.frequency, LastExecutedAt: &last}
		assert.Equal(t, tc.due, s.DueForAlert(now), "%s after %s", tc.frequency, tc.elapsed)
	}
}

func TestIsValidAlertFrequency(t *testing.T) {
	assert.True(t, IsValidAlertFrequency(AlertDaily))
	assert.True(t, IsValidAlertFrequency(AlertNever))
	assert.False(t, IsValidAlertFrequency("hourly"))
}
