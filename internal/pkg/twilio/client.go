// Package twilio is a thin REST client for the telephony/messaging provider:
// outbound SMS and recording downloads. Webhook handling lives in the
// controllers; call control is expressed as response markup (see twiml).
package twilio

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// RecordingTimeout bounds the recording download so a status callback never
// holds the webhook response open for long. Failures degrade to skip.
const RecordingTimeout = 8 * time.Second

// Client calls the provider REST API with account-SID basic auth.
type Client struct {
	accountSID string
	authToken  string
	from       string
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a provider client sending from the given service number.
func NewClient(accountSID, authToken, from string) *Client {
	return &Client{
		accountSID: accountSID,
		authToken:  authToken,
		from:       from,
		baseURL:    fmt.Sprintf("https://api.twilio.com/2010-04-01/Accounts/%s", accountSID),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// SendSMS sends a text message from the service number.
func (c *Client) SendSMS(ctx context.Context, to, body string) error {
	return c.send(ctx, to, body, "")
}

// SendMMS sends a text message with a media attachment.
func (c *Client) SendMMS(ctx context.Context, to, body, mediaURL string) error {
	return c.send(ctx, to, body, mediaURL)
}

func (c *Client) send(ctx context.Context, to, body, mediaURL string) error {
	form := url.Values{}
	form.Set("From", c.from)
	form.Set("To", to)
	form.Set("Body", body)
	if mediaURL != "" {
		form.Set("MediaUrl", mediaURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/Messages.json", strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.SetBasicAuth(c.accountSID, c.authToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send message to %s: %w", to, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("send message to %s: provider returned %s: %s", to, resp.Status, snippet)
	}
	return nil
}

// FetchRecording downloads a call recording. The caller's context should
// carry the RecordingTimeout bound.
func (c *Client) FetchRecording(ctx context.Context, recordingURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, recordingURL+".mp3", nil)
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(c.accountSID, c.authToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch recording: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch recording: provider returned %s", resp.Status)
	}
	return io.ReadAll(resp.Body)
}
