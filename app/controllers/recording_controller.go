package controllers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/lberndt/helpline/app/models"
	"github.com/lberndt/helpline/app/repository"
	"github.com/lberndt/helpline/internal/pkg/cache"
	"github.com/lberndt/helpline/internal/pkg/notify"
	"github.com/lberndt/helpline/internal/pkg/recordings"
	"github.com/lberndt/helpline/internal/pkg/twiml"
)

// RecordingController archives finished call recordings.
type RecordingController struct {
	sessions repository.HelpSessionRepository
	archiver *recordings.Archiver
	notifier *notify.Dispatcher
}

// NewRecordingController wires the recording status handler.
func NewRecordingController(
	sessions repository.HelpSessionRepository,
	archiver *recordings.Archiver,
	notifier *notify.Dispatcher,
) *RecordingController {
	return &RecordingController{
		sessions: sessions,
		archiver: archiver,
		notifier: notifier,
	}
}

// HandleRecordingStatus stores a completed recording in object storage and
// attaches the durable URL to the session. Every failure degrades to skip;
// the provider always receives a well-formed acknowledgment.
func (r *RecordingController) HandleRecordingStatus(c *fiber.Ctx) error {
	callSID := c.FormValue("CallSid")
	status := c.FormValue("RecordingStatus")
	recordingURL := c.FormValue("RecordingUrl")

	if status != "completed" || recordingURL == "" {
		return respondVoice(c, twiml.Empty())
	}

	session, err := r.sessionForCall(callSID)
	if err != nil {
		log.Warnf("recording: no session for call %s, recording skipped", callSID)
		return respondVoice(c, twiml.Empty())
	}

	durable := r.archiver.Archive(c.Context(), session.UUID, recordingURL)
	if durable == "" {
		// Archival disabled or failed; keep the provider URL.
		durable = recordingURL
	}

	session.RecordingURL = durable
	if err := r.sessions.Update(session); err != nil {
		log.Errorf("recording: persisting URL on session %s failed: %v", session.UUID, err)
	}
	if err := r.sessions.AppendMessage(session, &models.Message{Body: "Call recording available.", MediaURL: durable}); err != nil {
		log.Errorf("recording: message append on session %s failed: %v", session.UUID, err)
	}
	r.notifier.AdminMedia(c.Context(), "Call recording for session "+session.UUID, durable)

	return respondVoice(c, twiml.Empty())
}

func (r *RecordingController) sessionForCall(callSID string) (*models.HelpSession, error) {
	if uuid, err := cache.LookupCallSession(callSID); err == nil {
		if session, err := r.sessions.GetByUUID(uuid); err == nil {
			return session, nil
		}
	}
	return r.sessions.GetByCallSID(callSID)
}
