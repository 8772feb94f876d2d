package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/lberndt/helpline/internal/pkg/constants"
	"github.com/lberndt/helpline/internal/pkg/middleware"
)

// WebhookRouter wires the telephony/messaging provider callbacks. The paths
// are byte-exact: they match the provider console configuration.
type WebhookRouter struct {
	deps *Dependencies
}

func NewWebhookRouter(deps *Dependencies) *WebhookRouter {
	return &WebhookRouter{deps: deps}
}

func (w WebhookRouter) InstallRouter(app *fiber.App) {
	app.Use("/webhook", middleware.WebhookSignatureMiddleware(w.deps.Cfg))

	app.Post(constants.VoiceInboundRoute, w.deps.Voice.HandleInboundCall)
	app.Post(constants.VoiceTrialConfirmRoute, w.deps.Voice.HandleTrialConfirm)
	app.Post(constants.VoiceNoAnswerRoute, w.deps.Voice.HandleNoAnswer)
	app.Post(constants.VoiceWhisperRoute, w.deps.Voice.HandleWhisper)
	app.Post(constants.VoiceStatusRoute, w.deps.Voice.HandleCallStatus)
	app.Post(constants.VoiceRecordingRoute, w.deps.Recording.HandleRecordingStatus)

	app.Post(constants.SMSInboundRoute, w.deps.SMS.HandleInboundSMS)
	app.Post(constants.SMSAdminReplyRoute, w.deps.SMS.HandleAdminReply)
}
