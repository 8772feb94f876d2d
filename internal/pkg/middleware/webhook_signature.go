package middleware

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base64"
	"sort"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/lberndt/helpline/internal/pkg/config"
)

// WebhookSignatureMiddleware validates the provider's X-Twilio-Signature on
// webhook requests: base64 HMAC-SHA1 over the full callback URL with all
// POST parameters appended in sorted key order. With no auth token
// configured (local development) validation is skipped.
func WebhookSignatureMiddleware(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if cfg.TwilioAuthToken == "" {
			return c.Next()
		}

		signature := c.Get("X-Twilio-Signature")
		if signature == "" {
			return c.SendStatus(fiber.StatusForbidden)
		}

		expected := computeSignature(cfg.TwilioAuthToken, cfg.CallbackURL(c.Path()), formParams(c))
		if !hmac.Equal([]byte(signature), []byte(expected)) {
			log.Warnf("webhook signature mismatch for %s", c.Path())
			return c.SendStatus(fiber.StatusForbidden)
		}

		return c.Next()
	}
}

func formParams(c *fiber.Ctx) map[string]string {
	params := map[string]string{}
	args := c.Context().PostArgs()
	args.VisitAll(func(key, value []byte) {
		params[string(key)] = string(value)
	})
	return params
}

func computeSignature(authToken, url string, params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(url)
	for _, k := range keys {
		b.WriteString(k)
		b.WriteString(params[k])
	}

	mac := hmac.New(sha1.New, []byte(authToken))
	mac.Write([]byte(b.String()))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}
