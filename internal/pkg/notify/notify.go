// Package notify sends outbound status texts to the admin and the contact.
// Sends are best effort: failures are logged and never abort the webhook
// response that triggered them.
package notify

import (
	"context"
	"fmt"

	"github.com/gofiber/fiber/v2/log"

	"github.com/lberndt/helpline/app/models"
	"github.com/lberndt/helpline/internal/pkg/entitlements"
)

// Deny reasons reported to the admin.
const (
	ReasonTrialUsed    = "already used free trial"
	ReasonSessionLimit = "session limit"
	ReasonThrottled    = "new session within 24h"
)

// Messenger sends a text message to a destination number.
type Messenger interface {
	SendSMS(ctx context.Context, to, body string) error
	SendMMS(ctx context.Context, to, body, mediaURL string) error
}

// Dispatcher fans out notifications through the messaging provider.
type Dispatcher struct {
	messenger   Messenger
	adminNumber string
}

// NewDispatcher creates a dispatcher targeting the given admin number.
func NewDispatcher(messenger Messenger, adminNumber string) *Dispatcher {
	return &Dispatcher{messenger: messenger, adminNumber: adminNumber}
}

// Admin sends a status text to the admin number.
func (d *Dispatcher) Admin(ctx context.Context, body string) {
	if err := d.messenger.SendSMS(ctx, d.adminNumber, body); err != nil {
		log.Errorf("notify: admin message failed: %v", err)
	}
}

// AdminMedia sends a status text with a media link to the admin number.
func (d *Dispatcher) AdminMedia(ctx context.Context, body, mediaURL string) {
	if err := d.messenger.SendMMS(ctx, d.adminNumber, body, mediaURL); err != nil {
		log.Errorf("notify: admin media message failed: %v", err)
	}
}

// Contact sends a text to the contact.
func (d *Dispatcher) Contact(ctx context.Context, to, body string) {
	if err := d.messenger.SendSMS(ctx, to, body); err != nil {
		log.Errorf("notify: contact message to %s failed: %v", to, err)
	}
}

// AdminTrialStarted labels a forwarded free-trial contact.
func AdminTrialStarted(contact, channel string) string {
	return fmt.Sprintf("[free trial] %s contacted support via %s and was connected.", contact, channel)
}

// AdminDenied reports a not-forwarded contact with the deny reason.
func AdminDenied(contact, reason string) string {
	return fmt.Sprintf("Not forwarded: %s (%s).", contact, reason)
}

// AdminForwarded summarizes a connected contact with its plan context.
func AdminForwarded(name, contact string, ent entitlements.Entitlement) string {
	return fmt.Sprintf("%s (%s) contacted support. Plan: %s.", name, contact, planContext(ent))
}

func planContext(ent entitlements.Entitlement) string {
	switch ent.Plan {
	case models.PlanSubscription:
		return "subscription, unlimited"
	case models.PlanPayAsYouGo:
		if ent.Billable() {
			return "pay-as-you-go, billing active"
		}
		return fmt.Sprintf("pay-as-you-go, %d free session(s) left", ent.FreeSessionsRemaining)
	default:
		return fmt.Sprintf("free, %d free session(s) left", ent.FreeSessionsRemaining)
	}
}

// SessionConfirmation names which numbered free session a fresh thread is.
// Sent only on the first message of a new session, never on continuations.
func SessionConfirmation(ent entitlements.Entitlement) string {
	if ent.Plan == models.PlanSubscription {
		return "You are connected with support. Your plan includes unlimited sessions."
	}
	if ent.Plan == models.PlanPayAsYouGo && ent.Billable() {
		return "You are connected with support. This session will be billed to your account."
	}

	// The session being opened consumes one of the free allowance.
	number := ent.SessionsUsedThisMonth + 1
	switch {
	case number >= models.FreeSessionsPerMonth:
		return fmt.Sprintf("You are connected with support. This is the final of your %d free sessions this month.",
			models.FreeSessionsPerMonth)
	case number == 1:
		return fmt.Sprintf("You are connected with support. This is the first of your %d free sessions this month.",
			models.FreeSessionsPerMonth)
	default:
		return fmt.Sprintf("You are connected with support. This is session %d of your %d free sessions this month.",
			number, models.FreeSessionsPerMonth)
	}
}
