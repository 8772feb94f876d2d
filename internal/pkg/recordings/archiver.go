// Package recordings moves finished call recordings from the telephony
// provider into durable object storage.
package recordings

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2/log"

	"github.com/lberndt/helpline/internal/pkg/s3media"
	"github.com/lberndt/helpline/internal/pkg/twilio"
)

// Downloader fetches a recording body from the provider.
type Downloader interface {
	FetchRecording(ctx context.Context, recordingURL string) ([]byte, error)
}

// Uploader stores a blob and returns its durable public URL.
type Uploader interface {
	Upload(ctx context.Context, objectKey string, data []byte) (string, error)
}

// Archiver downloads recordings with a bounded timeout and re-uploads them.
// Any failure degrades to skip: the provider URL is simply not replaced.
type Archiver struct {
	downloader Downloader
	uploader   Uploader
	cfg        *s3media.Config
}

// NewArchiver creates an archiver; uploader may be nil when archival is
// disabled, in which case Archive always skips.
func NewArchiver(downloader Downloader, uploader Uploader, cfg *s3media.Config) *Archiver {
	return &Archiver{downloader: downloader, uploader: uploader, cfg: cfg}
}

// Archive fetches the recording and stores it under the session's key.
// Returns the durable URL, or "" when the recording was skipped.
func (a *Archiver) Archive(ctx context.Context, sessionUUID, recordingURL string) string {
	if a.uploader == nil || recordingURL == "" {
		return ""
	}

	// The status callback must not block on a slow download.
	ctx, cancel := context.WithTimeout(ctx, twilio.RecordingTimeout)
	defer cancel()

	data, err := a.downloader.FetchRecording(ctx, recordingURL)
	if err != nil {
		log.Warnf("recordings: download for session %s skipped: %v", sessionUUID, err)
		return ""
	}

	key := a.cfg.ObjectKey(sessionUUID, time.Now())
	url, err := a.uploader.Upload(ctx, key, data)
	if err != nil {
		log.Warnf("recordings: upload for session %s skipped: %v", sessionUUID, err)
		return ""
	}
	return url
}
