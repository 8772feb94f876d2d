// Package decision orchestrates the entitlement resolver, the session
// tracker, the free-trial ledger and the notification dispatcher into one of
// the mutually exclusive handling outcomes per inbound call or SMS event.
// The engine is provider-agnostic: it returns outcome values and leaves the
// voice/message markup to the controllers.
package decision

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/lberndt/helpline/app/models"
	"github.com/lberndt/helpline/app/repository"
	"github.com/lberndt/helpline/internal/pkg/config"
	"github.com/lberndt/helpline/internal/pkg/entitlements"
	"github.com/lberndt/helpline/internal/pkg/notify"
	"github.com/lberndt/helpline/internal/pkg/phone"
	"github.com/lberndt/helpline/internal/pkg/sessiontracker"
)

// TrialAcceptDigit is the key a caller presses to accept the trial offer.
const TrialAcceptDigit = "2"

// Kind enumerates the handling outcomes of one inbound event.
type Kind int

const (
	// KindOfferTrial asks an unregistered caller to confirm the free trial.
	// Voice only; SMS consumes the trial immediately.
	KindOfferTrial Kind = iota
	// KindTrialStarted connects the contact on their one-time trial.
	KindTrialStarted
	// KindTrialDeclined ends the call after the caller did not accept.
	KindTrialDeclined
	// KindTrialDenied rejects a contact whose trial is already consumed.
	KindTrialDenied
	// KindQuotaDenied rejects a free-plan contact with no sessions left.
	KindQuotaDenied
	// KindThrottled rejects a pay-as-you-go contact inside the 24h window.
	KindThrottled
	// KindConnect forwards an entitled contact to the representative.
	KindConnect
	// KindError degrades to the generic technical-error reply.
	KindError
)

// Outcome is the decision for one inbound event plus everything the
// controller needs to render the provider response.
type Outcome struct {
	Kind        Kind
	Entitlement entitlements.Entitlement
	Session     *models.HelpSession
	// NewSession is true when this event opened a fresh thread.
	NewSession bool
	// Confirmation is the numbered-session text for the contact. Set only
	// for fresh threads; continuations stay silent.
	Confirmation string
	// ForwardTo is the representative number for KindConnect/KindTrialStarted.
	ForwardTo string
}

// Resolver resolves a contact to its entitlement.
type Resolver interface {
	Resolve(contact string) entitlements.Entitlement
}

// Tracker finds or creates the single active session for a user.
type Tracker interface {
	FindOrCreateActiveSession(userID uint, plan, channel, text string) (*sessiontracker.Result, error)
}

// UsageReporter meters a billable session.
type UsageReporter interface {
	ReportSession(user *models.User, session *models.HelpSession)
}

// Notifier sends status texts to the admin and the contact.
type Notifier interface {
	Admin(ctx context.Context, body string)
	Contact(ctx context.Context, to, body string)
}

// OfferStore parks a pending trial offer between the inbound-call webhook
// and its gather callback.
type OfferStore interface {
	PutTrialOffer(callSID, contact string) error
	TakeTrialOffer(callSID string) (string, error)
}

// Engine is the call/SMS decision engine.
type Engine struct {
	cfg      *config.Config
	resolver Resolver
	tracker  Tracker
	trials   repository.FreeTrialRepository
	notifier Notifier
	meter    UsageReporter
	offers   OfferStore
}

// NewEngine wires the decision engine. The configuration is explicit; the
// engine reads no ambient state.
func NewEngine(
	cfg *config.Config,
	resolver Resolver,
	tracker Tracker,
	trials repository.FreeTrialRepository,
	notifier Notifier,
	meter UsageReporter,
	offers OfferStore,
) *Engine {
	return &Engine{
		cfg:      cfg,
		resolver: resolver,
		tracker:  tracker,
		trials:   trials,
		notifier: notifier,
		meter:    meter,
		offers:   offers,
	}
}

// HandleInboundCall decides the outcome for a fresh inbound call.
func (e *Engine) HandleInboundCall(ctx context.Context, from, callSID string) Outcome {
	contact := phone.Normalize(from)
	ent := e.resolver.Resolve(contact)

	// Registered status takes precedence over any stale trial record.
	if ent.Registered {
		return e.handleRegistered(ctx, ent, contact, models.ChannelPhone, "Inbound call")
	}

	if e.trialConsumed(contact) {
		e.notifier.Admin(ctx, notify.AdminDenied(contact, notify.ReasonTrialUsed))
		return Outcome{Kind: KindTrialDenied}
	}

	// Voice waits for an explicit digit confirmation before consuming the
	// one-time trial.
	if err := e.offers.PutTrialOffer(callSID, contact); err != nil {
		log.Errorf("decision: parking trial offer for call %s failed: %v", callSID, err)
	}
	return Outcome{Kind: KindOfferTrial}
}

// HandleTrialConfirm decides the outcome for the trial gather callback.
func (e *Engine) HandleTrialConfirm(ctx context.Context, from, callSID, digits string) Outcome {
	contact, err := e.offers.TakeTrialOffer(callSID)
	if err != nil {
		// Offer state expired or cache unavailable; the provider still
		// replays the caller number, so fall back to it.
		contact = phone.Normalize(from)
	}

	if digits != TrialAcceptDigit {
		return Outcome{Kind: KindTrialDeclined}
	}

	// Re-check eligibility: the contact may have registered or consumed the
	// trial on another channel while the menu was playing.
	ent := e.resolver.Resolve(contact)
	if ent.Registered {
		return e.handleRegistered(ctx, ent, contact, models.ChannelPhone, "Inbound call")
	}
	if e.trialConsumed(contact) {
		e.notifier.Admin(ctx, notify.AdminDenied(contact, notify.ReasonTrialUsed))
		return Outcome{Kind: KindTrialDenied}
	}

	return e.startTrial(ctx, contact, models.ChannelPhone)
}

// HandleInboundSMS decides the outcome for an inbound text message.
func (e *Engine) HandleInboundSMS(ctx context.Context, from, body string) Outcome {
	contact := phone.Normalize(from)
	ent := e.resolver.Resolve(contact)

	if ent.Registered {
		return e.handleRegistered(ctx, ent, contact, models.ChannelSMS, body)
	}

	if e.trialConsumed(contact) {
		e.notifier.Admin(ctx, notify.AdminDenied(contact, notify.ReasonTrialUsed))
		return Outcome{Kind: KindTrialDenied}
	}

	// SMS consumes the trial immediately; there is no digit to wait for.
	out := e.startTrial(ctx, contact, models.ChannelSMS)
	if out.Kind == KindTrialStarted {
		e.notifier.Admin(ctx, fmt.Sprintf("Message from %s: %s", contact, body))
	}
	return out
}

func (e *Engine) startTrial(ctx context.Context, contact, channel string) Outcome {
	if _, err := e.trials.Create(contact); err != nil {
		log.Errorf("decision: recording free trial for %s failed: %v", contact, err)
		return Outcome{Kind: KindError}
	}
	e.notifier.Admin(ctx, notify.AdminTrialStarted(contact, channel))
	return Outcome{Kind: KindTrialStarted, ForwardTo: e.cfg.ForwardNumber}
}

func (e *Engine) handleRegistered(ctx context.Context, ent entitlements.Entitlement, contact, channel, text string) Outcome {
	if !ent.HasQuota() {
		e.notifier.Admin(ctx, notify.AdminDenied(contact, notify.ReasonSessionLimit))
		return Outcome{Kind: KindQuotaDenied, Entitlement: ent}
	}

	res, err := e.tracker.FindOrCreateActiveSession(ent.User.ID, ent.Plan, channel, text)
	if err != nil {
		if errors.Is(err, sessiontracker.ErrThrottled) {
			e.notifier.Admin(ctx, notify.AdminDenied(contact, notify.ReasonThrottled))
			return Outcome{Kind: KindThrottled, Entitlement: ent}
		}
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// User row vanished between resolve and track.
			log.Errorf("decision: user %d gone during session tracking", ent.User.ID)
		} else {
			log.Errorf("decision: session tracking for user %d failed: %v", ent.User.ID, err)
		}
		return Outcome{Kind: KindError, Entitlement: ent}
	}

	out := Outcome{
		Kind:        KindConnect,
		Entitlement: ent,
		Session:     res.Session,
		NewSession:  res.Created,
		ForwardTo:   e.cfg.ForwardNumber,
	}

	admin := notify.AdminForwarded(ent.User.Name, contact, ent)
	if channel == models.ChannelSMS {
		admin += " Message: " + text
	}
	e.notifier.Admin(ctx, admin)

	if res.Created {
		out.Confirmation = notify.SessionConfirmation(ent)
		if ent.Billable() {
			e.meter.ReportSession(ent.User, res.Session)
		}
	}

	return out
}

// trialConsumed reports whether the contact's one-time trial is used up.
// A lookup error counts as not consumed (fail open on read).
func (e *Engine) trialConsumed(contact string) bool {
	_, err := e.trials.GetByPhone(contact)
	if err == nil {
		return true
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Errorf("decision: trial lookup for %s failed: %v", contact, err)
	}
	return false
}
