package models

import (
	"time"

	"gorm.io/gorm"
)

// FreeTrial marks one-time trial consumption for a phone number that has no
// account. One row per normalized number, created once, never mutated.
type FreeTrial struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Phone     string    `gorm:"uniqueIndex;type:varchar(32);not null" json:"phone"`
	UsedAt    time.Time `gorm:"type:timestamp;not null" json:"used_at"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// ConsumeFreeTrial records trial usage for a normalized phone number.
func ConsumeFreeTrial(db *gorm.DB, phone string) (*FreeTrial, error) {
	trial := &FreeTrial{
		Phone:  phone,
		UsedAt: time.Now(),
	}
	if err := db.Create(trial).Error; err != nil {
		return nil, err
	}
	return trial, nil
}
