package controllers

import (
	"context"
	"io"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lberndt/helpline/app/models"
	"github.com/lberndt/helpline/internal/pkg/config"
	"github.com/lberndt/helpline/internal/pkg/notify"
)

type stubUsers struct {
	byID    map[uint]*models.User
	byPhone map[string]*models.User
}

func (s *stubUsers) GetByID(id uint) (*models.User, error) {
	if u, ok := s.byID[id]; ok {
		return u, nil
	}
	return nil, fiber.ErrNotFound
}

func (s *stubUsers) GetByPhone(normalized string) (*models.User, error) {
	if u, ok := s.byPhone[normalized]; ok {
		return u, nil
	}
	return nil, fiber.ErrNotFound
}

type stubSessions struct {
	active    *models.HelpSession
	latest    *models.HelpSession
	byCallSID map[string]*models.HelpSession
	appended  []*models.Message
}

func (s *stubSessions) GetByID(uint) (*models.HelpSession, error)     { return nil, fiber.ErrNotFound }
func (s *stubSessions) GetByUUID(string) (*models.HelpSession, error) { return nil, fiber.ErrNotFound }

func (s *stubSessions) GetByCallSID(callSID string) (*models.HelpSession, error) {
	if session, ok := s.byCallSID[callSID]; ok {
		return session, nil
	}
	return nil, fiber.ErrNotFound
}

func (s *stubSessions) FindActiveByUserID(userID uint) (*models.HelpSession, error) {
	if s.active != nil && s.active.UserID == userID {
		return s.active, nil
	}
	return nil, fiber.ErrNotFound
}

func (s *stubSessions) LatestOpenSession() (*models.HelpSession, error) {
	if s.latest != nil {
		return s.latest, nil
	}
	return nil, fiber.ErrNotFound
}

func (s *stubSessions) HasSessionSince(uint, time.Time) (bool, error)            { return false, nil }
func (s *stubSessions) CountCompletedInRange(uint, time.Time, time.Time) (int64, error) {
	return 0, nil
}
func (s *stubSessions) Create(*models.HelpSession) error { return nil }
func (s *stubSessions) Update(*models.HelpSession) error { return nil }

func (s *stubSessions) AppendMessage(_ *models.HelpSession, msg *models.Message) error {
	s.appended = append(s.appended, msg)
	return nil
}

type recordingMessenger struct {
	to   []string
	body []string
}

func (m *recordingMessenger) SendSMS(_ context.Context, to, body string) error {
	m.to = append(m.to, to)
	m.body = append(m.body, body)
	return nil
}

func (m *recordingMessenger) SendMMS(_ context.Context, to, body, _ string) error {
	m.to = append(m.to, to)
	m.body = append(m.body, body)
	return nil
}

func adminReplyApp(users *stubUsers, sessions *stubSessions, messenger *recordingMessenger) *fiber.App {
	cfg := &config.Config{
		ServiceNumber: "+15550001111",
		ForwardNumber: "+15550002222",
		AdminNumber:   "+15550003333",
	}
	ctrl := NewSMSController(cfg, nil, users, sessions, notify.NewDispatcher(messenger, cfg.AdminNumber))

	app := fiber.New()
	app.Post("/webhook/sms/admin", ctrl.HandleAdminReply)
	return app
}

func postForm(t *testing.T, app *fiber.App, path string, form url.Values) (int, string) {
	t.Helper()

	req := httptest.NewRequest(fiber.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationForm)

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func TestSplitAdminReply(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		body       string
		wantTarget string
		wantText   string
	}{
		{
			name:       "bare text has no target",
			body:       "your refund went through",
			wantTarget: "",
			wantText:   "your refund went through",
		},
		{
			name:       "leading digits target a contact",
			body:       "5551234567 your refund went through",
			wantTarget: "5551234567",
			wantText:   "your refund went through",
		},
		{
			name:       "formatted number is normalized",
			body:       "+1 (555) 123-4567",
			wantTarget: "",
			wantText:   "+1 (555) 123-4567",
		},
		{
			name:       "plus prefixed number with text",
			body:       "+15551234567 on my way",
			wantTarget: "5551234567",
			wantText:   "on my way",
		},
		{
			name:       "short numeric word stays in the text",
			body:       "2 more minutes",
			wantTarget: "",
			wantText:   "2 more minutes",
		},
		{
			name:       "word with digits is not a target",
			body:       "order12345678 shipped",
			wantTarget: "",
			wantText:   "order12345678 shipped",
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			target, text := splitAdminReply(tc.body)
			assert.Equal(t, tc.wantTarget, target)
			assert.Equal(t, tc.wantText, text)
		})
	}
}

func TestHandleAdminReplyIgnoresOtherSenders(t *testing.T) {
	sessions := &stubSessions{}
	messenger := &recordingMessenger{}
	app := adminReplyApp(&stubUsers{}, sessions, messenger)

	status, body := postForm(t, app, "/webhook/sms/admin", url.Values{
		"From": {"+15559999999"},
		"Body": {"5551234567 hi"},
	})

	assert.Equal(t, fiber.StatusOK, status)
	assert.Contains(t, body, "<Response></Response>")
	assert.Empty(t, sessions.appended)
	assert.Empty(t, messenger.to)
}

func TestHandleAdminReplyTargetedContact(t *testing.T) {
	user := &models.User{ID: 7, Name: "Dana", Phone: "+15551234567"}
	session := &models.HelpSession{ID: 3, UUID: "s-3", UserID: 7, Type: models.ChannelSMS, Status: models.SessionStatusOngoing}

	users := &stubUsers{byPhone: map[string]*models.User{"5551234567": user}}
	sessions := &stubSessions{active: session}
	messenger := &recordingMessenger{}
	app := adminReplyApp(users, sessions, messenger)

	status, _ := postForm(t, app, "/webhook/sms/admin", url.Values{
		"From": {"+15550003333"},
		"Body": {"+15551234567 your ticket is resolved"},
	})

	assert.Equal(t, fiber.StatusOK, status)
	require.Len(t, sessions.appended, 1)
	assert.Equal(t, "your ticket is resolved", sessions.appended[0].Body)
	assert.True(t, sessions.appended[0].FromAdmin)
	require.Len(t, messenger.to, 1)
	assert.Equal(t, user.Phone, messenger.to[0])
	assert.Equal(t, "your ticket is resolved", messenger.body[0])
}

func TestHandleAdminReplyDefaultsToLatestSession(t *testing.T) {
	user := &models.User{ID: 4, Name: "Avery", Phone: "+15557654321"}
	session := &models.HelpSession{ID: 9, UUID: "s-9", UserID: 4, Type: models.ChannelSMS, Status: models.SessionStatusOngoing}

	users := &stubUsers{byID: map[uint]*models.User{4: user}}
	sessions := &stubSessions{latest: session}
	messenger := &recordingMessenger{}
	app := adminReplyApp(users, sessions, messenger)

	status, _ := postForm(t, app, "/webhook/sms/admin", url.Values{
		"From": {"+15550003333"},
		"Body": {"thanks for waiting"},
	})

	assert.Equal(t, fiber.StatusOK, status)
	require.Len(t, sessions.appended, 1)
	assert.Equal(t, "thanks for waiting", sessions.appended[0].Body)
	require.Len(t, messenger.to, 1)
	assert.Equal(t, user.Phone, messenger.to[0])
}

func TestHandleAdminReplyUnroutableTarget(t *testing.T) {
	sessions := &stubSessions{}
	messenger := &recordingMessenger{}
	app := adminReplyApp(&stubUsers{}, sessions, messenger)

	status, body := postForm(t, app, "/webhook/sms/admin", url.Values{
		"From": {"+15550003333"},
		"Body": {"5550000000 hello"},
	})

	assert.Equal(t, fiber.StatusOK, status)
	assert.Contains(t, body, "No open session found")
	assert.Empty(t, sessions.appended)
	assert.Empty(t, messenger.to)
}
