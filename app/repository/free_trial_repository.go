package repository

import (
	"time"

	"github.com/lberndt/helpline/app/models"
	"gorm.io/gorm"
)

type freeTrialRepository struct {
	db *gorm.DB
}

// NewFreeTrialRepository creates a new free trial repository instance
func NewFreeTrialRepository(db *gorm.DB) FreeTrialRepository {
	return &freeTrialRepository{db: db}
}

// GetByPhone retrieves the trial record for a normalized phone number.
func (r *freeTrialRepository) GetByPhone(normalized string) (*models.FreeTrial, error) {
	var trial models.FreeTrial
	err := r.db.Where("phone = ?", normalized).First(&trial).Error
	if err != nil {
		return nil, err
	}
	return &trial, nil
}

// Create records trial consumption for a normalized phone number. The unique
// index on phone makes a second insert for the same number fail.
func (r *freeTrialRepository) Create(normalized string) (*models.FreeTrial, error) {
	trial := &models.FreeTrial{
		Phone:  normalized,
		UsedAt: time.Now(),
	}
	if err := r.db.Create(trial).Error; err != nil {
		return nil, err
	}
	return trial, nil
}
