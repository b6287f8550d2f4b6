package models

import "time"

// ChangeType classifies a recorded listing change.
type ChangeType string

const (
	ChangeTypeNew    ChangeType = "new"
	ChangeTypePrice  ChangeType = "price"
	ChangeTypeStatus ChangeType = "status"
)

// ListingChange records one observed change to a listing, kept for the
// moderation feed and price-drop history.
type ListingChange struct {
	ID              uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	ListingID       string     `gorm:"type:varchar(36);not null;index" json:"listing_id"`
	ChangeType      ChangeType `gorm:"type:varchar(20);not null;index" json:"change_type"`
	OldValue        string     `gorm:"type:varchar(100)" json:"old_value,omitempty"`
	NewValue        string     `gorm:"type:varchar(100)" json:"new_value,omitempty"`
	ChangeMagnitude *float64   `gorm:"type:decimal(14,2)" json:"change_magnitude,omitempty"`
	DetectedAt      time.Time  `gorm:"type:datetime;not null;index" json:"detected_at"`
}

func (ListingChange) TableName() string {
	return "listing_changes"
}

// DeleteReason explains why a listing was physically purged.
type DeleteReason string

const (
	DeleteReasonExpired DeleteReason = "archived_expired"
	DeleteReasonManual  DeleteReason = "manual"
)

// DeleteLog is an audit record written before a listing row is purged.
type DeleteLog struct {
	ID         uint         `gorm:"primaryKey;autoIncrement" json:"id"`
	ListingID  string       `gorm:"type:varchar(36);not null;index" json:"listing_id"`
	Title      string       `gorm:"type:varchar(200)" json:"title"`
	OwnerID    string       `gorm:"type:varchar(36)" json:"owner_id"`
	ArchivedAt time.Time    `gorm:"type:datetime" json:"archived_at"`
	Reason     DeleteReason `gorm:"type:varchar(30);not null" json:"reason"`
	DeletedAt  time.Time    `gorm:"type:datetime;not null;autoCreateTime" json:"deleted_at"`
}

func (DeleteLog) TableName() string {
	return "delete_logs"
}
