package controllers

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/lberndt/helpline/app/models"
	"github.com/lberndt/helpline/app/repository"
	"github.com/lberndt/helpline/internal/pkg/cache"
	"github.com/lberndt/helpline/internal/pkg/config"
	"github.com/lberndt/helpline/internal/pkg/constants"
	"github.com/lberndt/helpline/internal/pkg/decision"
	"github.com/lberndt/helpline/internal/pkg/notify"
	"github.com/lberndt/helpline/internal/pkg/phone"
	"github.com/lberndt/helpline/internal/pkg/twiml"
)

// VoiceController handles the inbound-call webhook surface.
type VoiceController struct {
	cfg      *config.Config
	engine   *decision.Engine
	sessions repository.HelpSessionRepository
	users    repository.UserRepository
	notifier *notify.Dispatcher
}

// NewVoiceController wires the voice webhook handlers.
func NewVoiceController(
	cfg *config.Config,
	engine *decision.Engine,
	sessions repository.HelpSessionRepository,
	users repository.UserRepository,
	notifier *notify.Dispatcher,
) *VoiceController {
	return &VoiceController{
		cfg:      cfg,
		engine:   engine,
		sessions: sessions,
		users:    users,
		notifier: notifier,
	}
}

// HandleInboundCall answers a fresh inbound call.
func (v *VoiceController) HandleInboundCall(c *fiber.Ctx) error {
	from := c.FormValue("From")
	callSID := c.FormValue("CallSid")

	out := v.engine.HandleInboundCall(c.Context(), from, callSID)
	return v.renderOutcome(c, out, callSID)
}

// HandleTrialConfirm handles the digit press from the trial-offer menu.
func (v *VoiceController) HandleTrialConfirm(c *fiber.Ctx) error {
	from := c.FormValue("From")
	callSID := c.FormValue("CallSid")
	digits := c.FormValue("Digits")

	out := v.engine.HandleTrialConfirm(c.Context(), from, callSID, digits)
	return v.renderOutcome(c, out, callSID)
}

// HandleWhisper plays the pre-connect announcement to the representative.
func (v *VoiceController) HandleWhisper(c *fiber.Ctx) error {
	callSID := c.FormValue("CallSid")

	session, err := v.sessionForCall(callSID)
	if err != nil {
		// Trial callers have no session yet.
		return respondVoice(c, twiml.VoiceSay("Incoming free trial caller."))
	}

	label := "support caller"
	if user, err := v.users.GetByID(session.UserID); err == nil {
		label = fmt.Sprintf("%s, %s plan", user.Name, user.Plan())
	}
	return respondVoice(c, twiml.VoiceSay(fmt.Sprintf("Incoming %s priority call from %s.", session.Priority, label)))
}

// HandleNoAnswer is the dial action: it runs after the bridge attempt ends.
func (v *VoiceController) HandleNoAnswer(c *fiber.Ctx) error {
	dialStatus := c.FormValue("DialCallStatus")
	callSID := c.FormValue("CallSid")
	from := c.FormValue("From")

	switch dialStatus {
	case "no-answer", "busy", "failed":
		contact := phone.Normalize(from)
		v.notifier.Admin(c.Context(), fmt.Sprintf("Missed call from %s (%s).", contact, dialStatus))
		if session, err := v.sessionForCall(callSID); err == nil {
			if err := v.sessions.AppendMessage(session, &models.Message{Body: "Missed call, representative did not answer."}); err != nil {
				log.Errorf("voice: recording missed call on session %s failed: %v", session.UUID, err)
			}
		}
		return respondVoice(c, twiml.VoiceSayHangup(
			"Sorry, our representative is not available right now. You will receive a text message shortly."))
	default:
		// Bridge completed normally.
		return respondVoice(c, twiml.Render(twiml.Hangup{}))
	}
}

// HandleCallStatus closes the loop on terminal call states.
func (v *VoiceController) HandleCallStatus(c *fiber.Ctx) error {
	callSID := c.FormValue("CallSid")
	status := c.FormValue("CallStatus")

	switch status {
	case "completed", "failed", "busy", "no-answer", "canceled":
		if session, err := v.sessionForCall(callSID); err == nil {
			if err := v.sessions.AppendMessage(session, &models.Message{Body: "Call ended (" + status + ")."}); err != nil {
				log.Errorf("voice: recording call status on session %s failed: %v", session.UUID, err)
			}
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Errorf("voice: session lookup for call %s failed: %v", callSID, err)
		}
	}

	return respondVoice(c, twiml.Empty())
}

func (v *VoiceController) renderOutcome(c *fiber.Ctx, out decision.Outcome, callSID string) error {
	switch out.Kind {
	case decision.KindOfferTrial:
		return respondVoice(c, twiml.Render(
			twiml.Gather{
				Action:    constants.VoiceTrialConfirmRoute,
				Method:    fiber.MethodPost,
				NumDigits: 1,
				Timeout:   10,
				Verbs:     []any{twiml.Say{Text: msgTrialOffer}},
			},
			twiml.Say{Text: "We did not receive a response. Goodbye."},
			twiml.Hangup{},
		))

	case decision.KindTrialStarted:
		return respondVoice(c, v.renderDial(out, msgTrialWelcome, callSID))

	case decision.KindTrialDeclined:
		return respondVoice(c, twiml.VoiceSayHangup(msgTrialDeclined))

	case decision.KindTrialDenied:
		return respondVoice(c, twiml.VoiceSayHangup(msgTrialUsed))

	case decision.KindQuotaDenied:
		return respondVoice(c, twiml.VoiceSayHangup(msgQuotaUsed))

	case decision.KindThrottled:
		return respondVoice(c, twiml.VoiceSayHangup(msgThrottled))

	case decision.KindConnect:
		v.bindCall(out, callSID)
		if out.NewSession && out.Entitlement.User != nil {
			v.notifier.Contact(c.Context(), out.Entitlement.User.Phone, out.Confirmation)
		}
		return respondVoice(c, v.renderDial(out, msgConnecting, callSID))

	default:
		return respondVoice(c, twiml.VoiceSayHangup(msgTechnicalError))
	}
}

// renderDial bridges the caller to the representative with recording enabled
// and the whisper announcement played to the callee first.
func (v *VoiceController) renderDial(out decision.Outcome, announce, callSID string) string {
	return twiml.Render(
		twiml.Say{Text: announce},
		twiml.Dial{
			Action:                       constants.VoiceNoAnswerRoute,
			Timeout:                      20,
			Record:                       "record-from-answer",
			RecordingStatusCallback:      constants.VoiceRecordingRoute,
			RecordingStatusCallbackEvent: "completed",
			Number: twiml.Number{
				URL:  constants.VoiceWhisperRoute,
				Text: out.ForwardTo,
			},
		},
	)
}

// bindCall links the provider call to the session for later callbacks.
func (v *VoiceController) bindCall(out decision.Outcome, callSID string) {
	if out.Session == nil || callSID == "" {
		return
	}
	if err := cache.BindCallSession(callSID, out.Session.UUID); err != nil {
		log.Warnf("voice: caching call binding for %s failed: %v", callSID, err)
	}
	out.Session.CallSID = callSID
	if err := v.sessions.Update(out.Session); err != nil {
		log.Errorf("voice: persisting call SID on session %s failed: %v", out.Session.UUID, err)
	}
}

// sessionForCall resolves a call SID to its session, trying the cache first.
func (v *VoiceController) sessionForCall(callSID string) (*models.HelpSession, error) {
	if uuid, err := cache.LookupCallSession(callSID); err == nil {
		if session, err := v.sessions.GetByUUID(uuid); err == nil {
			return session, nil
		}
	}
	return v.sessions.GetByCallSID(callSID)
}
