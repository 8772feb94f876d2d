package models

import (
	"time"
)

const (
	UsageStatusReported = "reported"
	UsageStatusFailed   = "failed"
)

// UsageRecord is written exactly once per billable pay-as-you-go session,
// mirroring the metered usage event sent to the billing provider.
type UsageRecord struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	UserID          uint      `gorm:"not null;index" json:"user_id"`
	SessionID       uint      `gorm:"not null;uniqueIndex" json:"session_id"`
	Status          string    `gorm:"type:varchar(20);not null" json:"status"`
	ProviderEventID string    `gorm:"type:varchar(191);default:''" json:"provider_event_id"`
	CreatedAt       time.Time `gorm:"autoCreateTime" json:"created_at"`
}
