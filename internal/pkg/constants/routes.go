package constants

// Webhook route constants. The telephony provider is configured with these
// exact paths; changing one here requires updating the provider console.
const (
	VoiceInboundRoute      = "/webhook/voice"
	VoiceTrialConfirmRoute = "/webhook/voice/trial"
	VoiceNoAnswerRoute     = "/webhook/voice/no-answer"
	VoiceWhisperRoute      = "/webhook/voice/whisper"
	VoiceStatusRoute       = "/webhook/voice/status"
	VoiceRecordingRoute    = "/webhook/voice/recording"
	SMSInboundRoute        = "/webhook/sms"
	SMSAdminReplyRoute     = "/webhook/sms/admin"

	// External-system send API
	APIMessagesRoute = "/api/v1/messages"
)
