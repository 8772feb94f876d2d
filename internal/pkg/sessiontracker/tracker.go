// Package sessiontracker maintains the single open conversation thread per
// user across the phone and SMS channels.
package sessiontracker

import (
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/lberndt/helpline/app/models"
	"github.com/lberndt/helpline/app/repository"
)

// ErrThrottled is returned when a pay-as-you-go user tries to open a new
// session within 24 hours of the previous one. Nothing is recorded in that
// case; the caller tells the contact to wait and notifies the admin.
var ErrThrottled = errors.New("session creation throttled, last session less than 24h old")

// CreationThrottle bounds billing exposure for metered users independent of
// the monthly quota.
const CreationThrottle = 24 * time.Hour

// Result describes the resolved thread for an inbound event.
type Result struct {
	Session *models.HelpSession
	// Created is true for a fresh thread, false for a continuation. Only
	// fresh threads get the numbered-session confirmation and billing.
	Created bool
}

// Tracker finds or creates active sessions. The find-or-create runs inside a
// transaction holding a row lock on the user, so two concurrent events for
// the same contact cannot open two threads.
type Tracker struct {
	db  *gorm.DB
	now func() time.Time
}

// NewTracker creates a tracker on the given DB handle.
func NewTracker(db *gorm.DB) *Tracker {
	return &Tracker{db: db, now: time.Now}
}

// FindOrCreateActiveSession resolves the user's open thread for an inbound
// event and appends the triggering message to it.
//
// An existing open thread is reused as a continuation; if the inbound channel
// differs from the thread's, the channel is switched in place. A new thread
// is created with status ongoing and a plan-derived priority, except for
// pay-as-you-go users with any session created within the last 24 hours:
// there ErrThrottled is returned and nothing is written.
func (t *Tracker) FindOrCreateActiveSession(userID uint, plan, channel, text string) (*Result, error) {
	var result *Result

	err := t.db.Transaction(func(tx *gorm.DB) error {
		// Serialize concurrent events for the same contact.
		var user models.User
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&user, userID).Error; err != nil {
			return err
		}

		sessions := repository.NewHelpSessionRepository(tx)

		session, err := sessions.FindActiveByUserID(userID)
		if err == nil {
			if session.Type != channel {
				session.Type = channel
				if err := tx.Model(session).Update("type", channel).Error; err != nil {
					return err
				}
			}
			if err := sessions.AppendMessage(session, &models.Message{Body: text}); err != nil {
				return err
			}
			result = &Result{Session: session, Created: false}
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		if plan == models.PlanPayAsYouGo {
			recent, err := sessions.HasSessionSince(userID, t.now().Add(-CreationThrottle))
			if err != nil {
				return err
			}
			if recent {
				return ErrThrottled
			}
		}

		session = &models.HelpSession{
			UserID:      userID,
			Type:        channel,
			Status:      models.SessionStatusOngoing,
			Priority:    models.SessionPriority(plan),
			LastMessage: text,
		}
		if err := sessions.Create(session); err != nil {
			return err
		}
		if err := sessions.AppendMessage(session, &models.Message{Body: text}); err != nil {
			return err
		}

		result = &Result{Session: session, Created: true}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}
