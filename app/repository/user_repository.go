package repository

import (
	"github.com/lberndt/helpline/app/models"
	"github.com/lberndt/helpline/internal/pkg/phone"
	"gorm.io/gorm"
)

// userRepository implements the UserRepository interface
type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new user repository instance
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// GetByID retrieves a user by their ID
func (r *userRepository) GetByID(id uint) (*models.User, error) {
	var user models.User
	err := r.db.First(&user, id).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByPhone retrieves a user by their normalized phone number. Stored
// numbers may keep a country-code prefix, so the match is suffix-based.
func (r *userRepository) GetByPhone(normalized string) (*models.User, error) {
	if normalized == "" {
		return nil, gorm.ErrRecordNotFound
	}
	var user models.User
	err := r.db.Where("phone LIKE ?", phone.LikePattern(normalized)).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}
