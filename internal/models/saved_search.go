package models

import "time"

// AlertFrequency は保存検索の通知間隔
type AlertFrequency string

const (
	AlertDaily   AlertFrequency = "daily"
	AlertWeekly  AlertFrequency = "weekly"
	AlertMonthly AlertFrequency = "monthly"
	AlertNever   AlertFrequency = "never"
)

// IsValidAlertFrequency reports whether f is a known frequency.
func IsValidAlertFrequency(f AlertFrequency) bool {
	switch f {
	case AlertDaily, AlertWeekly, AlertMonthly, AlertNever:
		return true
	}
	return false
}

// SavedSearch is a named, replayable filter-parameter set owned by one user.
// Params holds the raw query-parameter map as JSON; it is parsed through the
// same filter pipeline as a live search on every replay.
type SavedSearch struct {
	ID             string         `gorm:"type:varchar(36);primaryKey" json:"id"`
	UserID         string         `gorm:"type:varchar(36);not null;index:idx_saved_user" json:"user_id"`
	Name           string         `gorm:"type:varchar(100);not null;index:idx_saved_user" json:"name"`
	Description    string         `gorm:"type:text" json:"description,omitempty"`
	Params         string         `gorm:"type:text;not null" json:"-"`
	AlertFrequency AlertFrequency `gorm:"type:varchar(10);not null;default:'never'" json:"alert_frequency"`
	Active         bool           `gorm:"not null;default:true;index" json:"active"`

	LastExecutedAt  *time.Time `gorm:"type:datetime" json:"last_executed_at,omitempty"`
	LastResultCount int64      `gorm:"type:bigint;not null;default:0" json:"last_result_count"`

	CreatedAt time.Time `gorm:"type:datetime;not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"type:datetime;not null;autoUpdateTime" json:"updated_at"`
}

func (SavedSearch) TableName() string {
	return "saved_searches"
}

// DueForAlert reports whether the search should be re-executed for alerting
// at time now, based on its frequency and last execution. A search that has
// never run is due immediately unless alerts are off.
func (s *SavedSearch) DueForAlert(now time.Time) bool {
	if !s.Active || s.AlertFrequency == AlertNever {
		return false
	}
	if s.LastExecutedAt == nil {
		return true
	}
	var interval time.Duration
	switch s.AlertFrequency {
	case AlertDaily:
		interval = 24 * time.Hour
	case AlertWeekly:
		interval = 7 * 24 * time.Hour
	case AlertMonthly:
		interval = 30 * 24 * time.Hour
	default:
		return false
	}
	return now.Sub(*s.LastExecutedAt) >= interval
}
