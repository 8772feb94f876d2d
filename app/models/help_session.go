package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ChannelPhone = "phone"
	ChannelSMS   = "sms"

	SessionStatusPending   = "pending"
	SessionStatusActive    = "active"
	SessionStatusOngoing   = "ongoing"
	SessionStatusOpen      = "open"
	SessionStatusResolved  = "resolved"
	SessionStatusCancelled = "cancelled"

	PriorityHigh   = "high"
	PriorityMedium = "medium"
	PriorityLow    = "low"
)

// ActiveSessionStatuses is the set of statuses that count as an open thread.
var ActiveSessionStatuses = []string{
	SessionStatusPending,
	SessionStatusActive,
	SessionStatusOngoing,
	SessionStatusOpen,
}

// HelpSession is a conversation thread between a user and a representative.
// At most one non-completed session exists per user; when the contact
// switches channel the open session's Type is updated in place.
type HelpSession struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	UUID         string         `gorm:"type:varchar(36);uniqueIndex;not null" json:"uuid"`
	UserID       uint           `gorm:"not null;index" json:"user_id"`
	User         User           `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Type         string         `gorm:"type:varchar(10);not null" json:"type" validate:"oneof=phone sms"`
	Status       string         `gorm:"type:varchar(20);not null;default:'ongoing';index" json:"status"`
	Completed    bool           `gorm:"default:false;index" json:"completed"`
	Priority     string         `gorm:"type:varchar(10);not null;default:'low'" json:"priority" validate:"oneof=high medium low"`
	LastMessage  string         `gorm:"type:text" json:"last_message"`
	CallSID      string         `gorm:"type:varchar(64);index;default:''" json:"-"`
	RecordingURL string         `gorm:"type:varchar(512);default:''" json:"recording_url"`
	CreatedAt    time.Time      `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`

	Messages []Message `gorm:"foreignKey:SessionID" json:"messages,omitempty"`
}

// BeforeCreate assigns the public token.
func (s *HelpSession) BeforeCreate(tx *gorm.DB) error {
	if s.UUID == "" {
		s.UUID = uuid.NewString()
	}
	return nil
}

// IsActive reports whether the session still counts as the user's open thread.
func (s *HelpSession) IsActive() bool {
	if s.Completed {
		return false
	}
	for _, st := range ActiveSessionStatuses {
		if s.Status == st {
			return true
		}
	}
	return false
}
