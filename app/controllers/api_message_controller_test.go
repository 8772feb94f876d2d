package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lberndt/helpline/app/models"
	"github.com/lberndt/helpline/internal/pkg/notify"
)

type failingMessenger struct{}

func (failingMessenger) SendSMS(context.Context, string, string) error {
	return errors.New("provider rejected")
}

func (failingMessenger) SendMMS(context.Context, string, string, string) error {
	return errors.New("provider rejected")
}

func messageAPIApp(users *stubUsers, sessions *stubSessions, messenger notify.Messenger) *fiber.App {
	ctrl := NewAPIMessageController(users, sessions, messenger)

	app := fiber.New()
	app.Post("/api/v1/messages", ctrl.HandleSendMessage)
	return app
}

func postJSON(t *testing.T, app *fiber.App, path, body string) (int, map[string]any) {
	t.Helper()

	req := httptest.NewRequest(fiber.MethodPost, path, strings.NewReader(body))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var parsed map[string]any
	require.NoError(t, json.Unmarshal(raw, &parsed))
	return resp.StatusCode, parsed
}

func TestHandleSendMessageRecordsOnOpenSession(t *testing.T) {
	user := &models.User{ID: 11, Name: "Riley", Phone: "+15551234567"}
	session := &models.HelpSession{ID: 4, UUID: "s-4", UserID: 11, Type: models.ChannelSMS, Status: models.SessionStatusOngoing}

	users := &stubUsers{byPhone: map[string]*models.User{"5551234567": user}}
	sessions := &stubSessions{active: session}
	messenger := &recordingMessenger{}
	app := messageAPIApp(users, sessions, messenger)

	status, body := postJSON(t, app, "/api/v1/messages", `{"to":"+15551234567","body":"your appointment is confirmed"}`)

	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "sent", body["status"])
	assert.Equal(t, true, body["recorded"])

	require.Len(t, messenger.to, 1)
	assert.Equal(t, "+15551234567", messenger.to[0])

	require.Len(t, sessions.appended, 1)
	assert.Equal(t, "your appointment is confirmed", sessions.appended[0].Body)
	assert.True(t, sessions.appended[0].FromAdmin)
}

func TestHandleSendMessageUnknownRecipient(t *testing.T) {
	messenger := &recordingMessenger{}
	app := messageAPIApp(&stubUsers{}, &stubSessions{}, messenger)

	status, body := postJSON(t, app, "/api/v1/messages", `{"to":"+15559999999","body":"hello"}`)

	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "sent", body["status"])
	assert.Equal(t, false, body["recorded"])
	require.Len(t, messenger.to, 1)
}

func TestHandleSendMessageInvalidJSON(t *testing.T) {
	app := messageAPIApp(&stubUsers{}, &stubSessions{}, &recordingMessenger{})

	status, body := postJSON(t, app, "/api/v1/messages", `{"to":`)

	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "bad_request", body["error"])
}

func TestHandleSendMessageValidation(t *testing.T) {
	app := messageAPIApp(&stubUsers{}, &stubSessions{}, &recordingMessenger{})

	status, body := postJSON(t, app, "/api/v1/messages", `{"to":"123","body":""}`)

	assert.Equal(t, fiber.StatusUnprocessableEntity, status)
	assert.Equal(t, "validation_failed", body["error"])
}

func TestHandleSendMessageProviderFailure(t *testing.T) {
	sessions := &stubSessions{}
	app := messageAPIApp(&stubUsers{}, sessions, failingMessenger{})

	status, body := postJSON(t, app, "/api/v1/messages", `{"to":"+15551234567","body":"hello"}`)

	assert.Equal(t, fiber.StatusBadGateway, status)
	assert.Equal(t, "send_failed", body["error"])
	assert.Empty(t, sessions.appended)
}
