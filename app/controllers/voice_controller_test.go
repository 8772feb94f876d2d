package controllers

import (
	"net/url"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lberndt/helpline/app/models"
	"github.com/lberndt/helpline/internal/pkg/config"
	"github.com/lberndt/helpline/internal/pkg/decision"
	"github.com/lberndt/helpline/internal/pkg/notify"
)

func voiceApp(users *stubUsers, sessions *stubSessions, messenger *recordingMessenger) (*fiber.App, *VoiceController) {
	cfg := &config.Config{
		ServiceNumber: "+15550001111",
		ForwardNumber: "+15550002222",
		AdminNumber:   "+15550003333",
	}
	ctrl := NewVoiceController(cfg, nil, sessions, users, notify.NewDispatcher(messenger, cfg.AdminNumber))

	app := fiber.New()
	app.Post("/webhook/voice/whisper", ctrl.HandleWhisper)
	app.Post("/webhook/voice/no-answer", ctrl.HandleNoAnswer)
	app.Post("/webhook/voice/status", ctrl.HandleCallStatus)
	return app, ctrl
}

func TestHandleWhisperKnownSession(t *testing.T) {
	user := &models.User{ID: 5, Name: "Morgan", Phone: "+15551234567", SubscriptionID: "sub_123"}
	session := &models.HelpSession{
		ID:       2,
		UUID:     "s-2",
		UserID:   5,
		Type:     models.ChannelPhone,
		Status:   models.SessionStatusOngoing,
		Priority: models.PriorityHigh,
		CallSID:  "CA100",
	}

	users := &stubUsers{byID: map[uint]*models.User{5: user}}
	sessions := &stubSessions{byCallSID: map[string]*models.HelpSession{"CA100": session}}
	app, _ := voiceApp(users, sessions, &recordingMessenger{})

	status, body := postForm(t, app, "/webhook/voice/whisper", url.Values{
		"CallSid": {"CA100"},
	})

	assert.Equal(t, fiber.StatusOK, status)
	assert.Contains(t, body, "Incoming high priority call from Morgan, subscription plan.")
}

func TestHandleWhisperUnknownCall(t *testing.T) {
	app, _ := voiceApp(&stubUsers{}, &stubSessions{}, &recordingMessenger{})

	status, body := postForm(t, app, "/webhook/voice/whisper", url.Values{
		"CallSid": {"CA404"},
	})

	assert.Equal(t, fiber.StatusOK, status)
	assert.Contains(t, body, "Incoming free trial caller.")
}

func TestHandleNoAnswerMissedCall(t *testing.T) {
	session := &models.HelpSession{ID: 8, UUID: "s-8", UserID: 3, Type: models.ChannelPhone, Status: models.SessionStatusOngoing}
	sessions := &stubSessions{byCallSID: map[string]*models.HelpSession{"CA200": session}}
	messenger := &recordingMessenger{}
	app, _ := voiceApp(&stubUsers{}, sessions, messenger)

	status, body := postForm(t, app, "/webhook/voice/no-answer", url.Values{
		"CallSid":        {"CA200"},
		"From":           {"+15551234567"},
		"DialCallStatus": {"no-answer"},
	})

	assert.Equal(t, fiber.StatusOK, status)
	assert.Contains(t, body, "representative is not available")
	assert.Contains(t, body, "<Hangup>")

	require.Len(t, messenger.to, 1)
	assert.Equal(t, "+15550003333", messenger.to[0])
	assert.Contains(t, messenger.body[0], "Missed call from 5551234567")

	require.Len(t, sessions.appended, 1)
	assert.Equal(t, "Missed call, representative did not answer.", sessions.appended[0].Body)
	assert.False(t, sessions.appended[0].FromAdmin)
}

func TestHandleNoAnswerCompletedBridge(t *testing.T) {
	messenger := &recordingMessenger{}
	app, _ := voiceApp(&stubUsers{}, &stubSessions{}, messenger)

	status, body := postForm(t, app, "/webhook/voice/no-answer", url.Values{
		"CallSid":        {"CA201"},
		"From":           {"+15551234567"},
		"DialCallStatus": {"completed"},
	})

	assert.Equal(t, fiber.StatusOK, status)
	assert.Contains(t, body, "<Hangup>")
	assert.NotContains(t, body, "<Say>")
	assert.Empty(t, messenger.to)
}

func TestHandleCallStatusTerminal(t *testing.T) {
	session := &models.HelpSession{ID: 6, UUID: "s-6", UserID: 2, Type: models.ChannelPhone, Status: models.SessionStatusOngoing}
	sessions := &stubSessions{byCallSID: map[string]*models.HelpSession{"CA300": session}}
	app, _ := voiceApp(&stubUsers{}, sessions, &recordingMessenger{})

	status, body := postForm(t, app, "/webhook/voice/status", url.Values{
		"CallSid":    {"CA300"},
		"CallStatus": {"completed"},
	})

	assert.Equal(t, fiber.StatusOK, status)
	assert.Contains(t, body, "<Response></Response>")
	require.Len(t, sessions.appended, 1)
	assert.Equal(t, "Call ended (completed).", sessions.appended[0].Body)
}

func TestHandleCallStatusInProgressIgnored(t *testing.T) {
	sessions := &stubSessions{}
	app, _ := voiceApp(&stubUsers{}, sessions, &recordingMessenger{})

	status, body := postForm(t, app, "/webhook/voice/status", url.Values{
		"CallSid":    {"CA301"},
		"CallStatus": {"in-progress"},
	})

	assert.Equal(t, fiber.StatusOK, status)
	assert.Contains(t, body, "<Response></Response>")
	assert.Empty(t, sessions.appended)
}

func TestRenderDial(t *testing.T) {
	t.Parallel()

	_, ctrl := voiceApp(&stubUsers{}, &stubSessions{}, &recordingMessenger{})

	out := decision.Outcome{ForwardTo: "+15550002222"}
	markup := ctrl.renderDial(out, "Connecting you now.", "CA500")

	assert.Contains(t, markup, "<Say>Connecting you now.</Say>")
	assert.Contains(t, markup, `action="/webhook/voice/no-answer"`)
	assert.Contains(t, markup, `record="record-from-answer"`)
	assert.Contains(t, markup, `recordingStatusCallback="/webhook/voice/recording"`)
	assert.Contains(t, markup, `url="/webhook/voice/whisper"`)
	assert.Contains(t, markup, ">+15550002222</Number>")
}
