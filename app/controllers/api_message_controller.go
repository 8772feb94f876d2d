package controllers

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/lberndt/helpline/app/models"
	"github.com/lberndt/helpline/app/repository"
	"github.com/lberndt/helpline/internal/pkg/notify"
	"github.com/lberndt/helpline/internal/pkg/phone"
)

// SendMessageRequest is the payload of the external send API.
type SendMessageRequest struct {
	To   string `json:"to" validate:"required,min=7,max=32"`
	Body string `json:"body" validate:"required,max=1600"`
}

// APIMessageController exposes the SMS-send API for external systems.
type APIMessageController struct {
	users     repository.UserRepository
	sessions  repository.HelpSessionRepository
	messenger notify.Messenger
}

// NewAPIMessageController wires the send API handler.
func NewAPIMessageController(
	users repository.UserRepository,
	sessions repository.HelpSessionRepository,
	messenger notify.Messenger,
) *APIMessageController {
	return &APIMessageController{
		users:     users,
		sessions:  sessions,
		messenger: messenger,
	}
}

// HandleSendMessage sends a text to a destination number. When the
// destination belongs to a registered user with an open session, the message
// is recorded on that thread as an admin message.
func (a *APIMessageController) HandleSendMessage(c *fiber.Ctx) error {
	var req SendMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "Invalid JSON body"})
	}
	if err := validator.New().Struct(&req); err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": "validation_failed", "message": err.Error()})
	}

	if err := a.messenger.SendSMS(c.Context(), req.To, req.Body); err != nil {
		log.Errorf("api: message to %s failed: %v", req.To, err)
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "send_failed", "message": "Messaging provider rejected the message"})
	}

	recorded := a.recordOnOpenSession(req)

	return c.JSON(fiber.Map{"status": "sent", "recorded": recorded})
}

func (a *APIMessageController) recordOnOpenSession(req SendMessageRequest) bool {
	user, err := a.users.GetByPhone(phone.Normalize(req.To))
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Errorf("api: user lookup for %s failed: %v", req.To, err)
		}
		return false
	}
	session, err := a.sessions.FindActiveByUserID(user.ID)
	if err != nil {
		return false
	}
	if err := a.sessions.AppendMessage(session, &models.Message{Body: req.Body, FromAdmin: true}); err != nil {
		log.Errorf("api: message append on session %s failed: %v", session.UUID, err)
		return false
	}
	return true
}
