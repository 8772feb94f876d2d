package repository

import (
	"time"

	"github.com/lberndt/helpline/app/models"
	"gorm.io/gorm"
)

type helpSessionRepository struct {
	db *gorm.DB
}

// NewHelpSessionRepository creates a new help session repository instance
func NewHelpSessionRepository(db *gorm.DB) HelpSessionRepository {
	return &helpSessionRepository{db: db}
}

// GetByID retrieves a session by its ID
func (r *helpSessionRepository) GetByID(id uint) (*models.HelpSession, error) {
	var session models.HelpSession
	err := r.db.First(&session, id).Error
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// GetByUUID retrieves a session by its public token
func (r *helpSessionRepository) GetByUUID(uuid string) (*models.HelpSession, error) {
	var session models.HelpSession
	err := r.db.Where("uuid = ?", uuid).First(&session).Error
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// GetByCallSID resolves a provider call SID to its session. Status and
// recording callbacks only carry the SID.
func (r *helpSessionRepository) GetByCallSID(callSID string) (*models.HelpSession, error) {
	if callSID == "" {
		return nil, gorm.ErrRecordNotFound
	}
	var session models.HelpSession
	err := r.db.Where("call_sid = ?", callSID).First(&session).Error
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// FindActiveByUserID returns the user's single open thread, if any.
func (r *helpSessionRepository) FindActiveByUserID(userID uint) (*models.HelpSession, error) {
	var session models.HelpSession
	err := r.db.Where("user_id = ? AND completed = ? AND status IN ?",
		userID, false, models.ActiveSessionStatuses).
		Order("updated_at DESC").
		First(&session).Error
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// LatestOpenSession returns the most recently updated open thread across all
// users. Used to route bare admin replies.
func (r *helpSessionRepository) LatestOpenSession() (*models.HelpSession, error) {
	var session models.HelpSession
	err := r.db.Where("completed = ? AND status IN ?", false, models.ActiveSessionStatuses).
		Order("updated_at DESC").
		First(&session).Error
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// HasSessionSince reports whether any session (regardless of completion)
// was created for the user after the given time.
func (r *helpSessionRepository) HasSessionSince(userID uint, since time.Time) (bool, error) {
	var count int64
	err := r.db.Model(&models.HelpSession{}).
		Where("user_id = ? AND created_at > ?", userID, since).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// CountCompletedInRange counts completed sessions created within [from, to).
func (r *helpSessionRepository) CountCompletedInRange(userID uint, from, to time.Time) (int64, error) {
	var count int64
	err := r.db.Model(&models.HelpSession{}).
		Where("user_id = ? AND completed = ? AND created_at >= ? AND created_at < ?",
			userID, true, from, to).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

// Create creates a new session
func (r *helpSessionRepository) Create(session *models.HelpSession) error {
	return r.db.Create(session).Error
}

// Update saves session changes
func (r *helpSessionRepository) Update(session *models.HelpSession) error {
	return r.db.Save(session).Error
}

// AppendMessage inserts a message row and keeps the session's last message
// and updated timestamp in sync with the thread.
func (r *helpSessionRepository) AppendMessage(session *models.HelpSession, msg *models.Message) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		msg.SessionID = session.ID
		if err := tx.Create(msg).Error; err != nil {
			return err
		}
		session.LastMessage = msg.Body
		return tx.Model(session).Updates(map[string]any{
			"last_message": msg.Body,
			"updated_at":   time.Now(),
		}).Error
	})
}
