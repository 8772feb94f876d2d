package controllers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/lberndt/helpline/internal/pkg/twiml"
)

// Spoken/text fragments shared by the webhook handlers.
const (
	msgTechnicalError = "We hit a technical error, please try again in a moment."
	msgTrialOffer     = "Welcome to support. We don't recognize your number. Press 2 to start your one-time free trial session with a representative."
	msgTrialUsed      = "You have already used your free trial. Please visit our website to sign up for a plan."
	msgTrialDeclined  = "No problem. Visit our website any time to sign up for a plan. Goodbye."
	msgQuotaUsed      = "You have used all 3 free sessions this month. Please visit our website to upgrade your plan."
	msgThrottled      = "Please wait 24 hours between support sessions, or visit our website to upgrade your plan."
	msgConnecting     = "Connecting you with a representative now."
	msgTrialWelcome   = "Your free trial session has started. Connecting you with a representative now."
)

// respondVoice writes a voice-markup response. The provider always gets a
// well-formed document, whatever happened inside the handler.
func respondVoice(c *fiber.Ctx, markup string) error {
	c.Set(fiber.HeaderContentType, twiml.ContentType)
	return c.SendString(markup)
}

// respondMessage writes a messaging-markup response; an empty body renders
// the bare acknowledgment.
func respondMessage(c *fiber.Ctx, body string) error {
	c.Set(fiber.HeaderContentType, twiml.ContentType)
	if body == "" {
		return c.SendString(twiml.Empty())
	}
	return c.SendString(twiml.Render(twiml.Message{Text: body}))
}
