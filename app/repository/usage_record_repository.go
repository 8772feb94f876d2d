package repository

import (
	"github.com/lberndt/helpline/app/models"
	"gorm.io/gorm"
)

type usageRecordRepository struct {
	db *gorm.DB
}

// NewUsageRecordRepository creates a new usage record repository instance
func NewUsageRecordRepository(db *gorm.DB) UsageRecordRepository {
	return &usageRecordRepository{db: db}
}

// Create inserts a usage record
func (r *usageRecordRepository) Create(record *models.UsageRecord) error {
	return r.db.Create(record).Error
}

// ExistsForSession reports whether a session was already billed. The unique
// index on session_id backs the exactly-once guarantee.
func (r *usageRecordRepository) ExistsForSession(sessionID uint) (bool, error) {
	var count int64
	err := r.db.Model(&models.UsageRecord{}).
		Where("session_id = ?", sessionID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
