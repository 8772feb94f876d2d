package models

import (
	"time"
)

// Message is one entry in a help session thread. Append-only.
type Message struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	SessionID uint      `gorm:"not null;index" json:"session_id"`
	Body      string    `gorm:"type:text;not null" json:"body"`
	FromAdmin bool      `gorm:"default:false" json:"from_admin"`
	IsRead    bool      `gorm:"default:false" json:"is_read"`
	MediaURL  string    `gorm:"type:varchar(512);default:''" json:"media_url,omitempty"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}
