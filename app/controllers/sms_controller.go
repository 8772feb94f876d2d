package controllers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/lberndt/helpline/app/models"
	"github.com/lberndt/helpline/app/repository"
	"github.com/lberndt/helpline/internal/pkg/config"
	"github.com/lberndt/helpline/internal/pkg/decision"
	"github.com/lberndt/helpline/internal/pkg/notify"
	"github.com/lberndt/helpline/internal/pkg/phone"
)

// SMSController handles the inbound-message webhook surface.
type SMSController struct {
	cfg      *config.Config
	engine   *decision.Engine
	users    repository.UserRepository
	sessions repository.HelpSessionRepository
	notifier *notify.Dispatcher
}

// NewSMSController wires the SMS webhook handlers.
func NewSMSController(
	cfg *config.Config,
	engine *decision.Engine,
	users repository.UserRepository,
	sessions repository.HelpSessionRepository,
	notifier *notify.Dispatcher,
) *SMSController {
	return &SMSController{
		cfg:      cfg,
		engine:   engine,
		users:    users,
		sessions: sessions,
		notifier: notifier,
	}
}

// HandleInboundSMS decides and answers an inbound text message.
func (s *SMSController) HandleInboundSMS(c *fiber.Ctx) error {
	from := c.FormValue("From")
	body := strings.TrimSpace(c.FormValue("Body"))

	out := s.engine.HandleInboundSMS(c.Context(), from, body)

	switch out.Kind {
	case decision.KindTrialStarted:
		return respondMessage(c, "Your free trial session has started. A representative will reply shortly.")
	case decision.KindTrialDenied:
		return respondMessage(c, msgTrialUsed)
	case decision.KindQuotaDenied:
		return respondMessage(c, msgQuotaUsed)
	case decision.KindThrottled:
		return respondMessage(c, msgThrottled)
	case decision.KindConnect:
		// Numbered-session confirmation on fresh threads only; continuations
		// are acknowledged silently.
		return respondMessage(c, out.Confirmation)
	default:
		return respondMessage(c, msgTechnicalError)
	}
}

// HandleAdminReply relays a text from the admin number back to a contact.
// A leading run of digits targets that contact's number; a bare text answers
// the most recently updated open session. Messages from any other sender are
// ignored with an empty acknowledgment.
func (s *SMSController) HandleAdminReply(c *fiber.Ctx) error {
	from := phone.Normalize(c.FormValue("From"))
	body := strings.TrimSpace(c.FormValue("Body"))

	if from == "" || from != phone.Normalize(s.cfg.AdminNumber) {
		// Not the admin; do not leak anything to the sender.
		return respondMessage(c, "")
	}
	if body == "" {
		return respondMessage(c, "")
	}

	target, text := splitAdminReply(body)

	session, user, err := s.resolveReplyTarget(target)
	if err != nil {
		log.Warnf("sms: admin reply could not be routed (target %q): %v", target, err)
		return respondMessage(c, "No open session found for that reply.")
	}

	if err := s.sessions.AppendMessage(session, &models.Message{Body: text, FromAdmin: true}); err != nil {
		log.Errorf("sms: recording admin reply on session %s failed: %v", session.UUID, err)
	}
	s.notifier.Contact(c.Context(), user.Phone, text)

	return respondMessage(c, "")
}

// splitAdminReply separates an optional leading phone target from the text.
func splitAdminReply(body string) (target, text string) {
	head, rest, found := strings.Cut(body, " ")
	if !found {
		return "", body
	}
	digits := phone.Normalize(head)
	if len(digits) >= 7 && head == strings.Map(keepPhoneRune, head) {
		return digits, strings.TrimSpace(rest)
	}
	return "", body
}

func keepPhoneRune(r rune) rune {
	switch {
	case r >= '0' && r <= '9', r == '+', r == '-', r == '(', r == ')', r == '.':
		return r
	}
	return -1
}

func (s *SMSController) resolveReplyTarget(target string) (*models.HelpSession, *models.User, error) {
	if target == "" {
		session, err := s.sessions.LatestOpenSession()
		if err != nil {
			return nil, nil, err
		}
		user, err := s.users.GetByID(session.UserID)
		if err != nil {
			return nil, nil, err
		}
		return session, user, nil
	}

	user, err := s.users.GetByPhone(target)
	if err != nil {
		return nil, nil, err
	}
	session, err := s.sessions.FindActiveByUserID(user.ID)
	if err != nil {
		return nil, nil, err
	}
	return session, user, nil
}
