package repository

import (
	"time"

	"github.com/lberndt/helpline/app/models"
)

// UserRepository defines the read-side access to the external account table.
type UserRepository interface {
	GetByID(id uint) (*models.User, error)
	GetByPhone(normalized string) (*models.User, error)
}

// FreeTrialRepository stores one-time trial consumption per phone number.
type FreeTrialRepository interface {
	GetByPhone(normalized string) (*models.FreeTrial, error)
	Create(normalized string) (*models.FreeTrial, error)
}

// HelpSessionRepository defines the interface for conversation threads and
// their messages.
type HelpSessionRepository interface {
	GetByID(id uint) (*models.HelpSession, error)
	GetByUUID(uuid string) (*models.HelpSession, error)
	GetByCallSID(callSID string) (*models.HelpSession, error)
	FindActiveByUserID(userID uint) (*models.HelpSession, error)
	LatestOpenSession() (*models.HelpSession, error)
	HasSessionSince(userID uint, since time.Time) (bool, error)
	CountCompletedInRange(userID uint, from, to time.Time) (int64, error)
	Create(session *models.HelpSession) error
	Update(session *models.HelpSession) error
	AppendMessage(session *models.HelpSession, msg *models.Message) error
}

// UsageRecordRepository persists one record per billable session.
type UsageRecordRepository interface {
	Create(record *models.UsageRecord) error
	ExistsForSession(sessionID uint) (bool, error)
}
