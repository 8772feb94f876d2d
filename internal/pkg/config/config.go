package config

import (
	"errors"
	"strings"

	"github.com/lberndt/helpline/internal/pkg/env"
)

// Config carries the runtime settings the webhook handlers and the decision
// engine need. It is loaded once at startup and passed down explicitly so the
// core never reads ambient environment state.
type Config struct {
	// Telephony
	ServiceNumber   string // number the provider routes inbound events to
	ForwardNumber   string // representative the calls are bridged to
	AdminNumber     string // admin/operator notification target
	PublicBaseURL   string // externally reachable base URL for callback routes
	TwilioAccountID string
	TwilioAuthToken string

	// Billing (metered pay-as-you-go)
	StripeSecretKey string
	StripeMeterName string

	// External send API
	ServiceAPIKey string
}

// LoadConfig reads the configuration from environment variables.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		ServiceNumber:   env.GetEnv("SERVICE_NUMBER", ""),
		ForwardNumber:   env.GetEnv("FORWARD_NUMBER", ""),
		AdminNumber:     env.GetEnv("ADMIN_NUMBER", ""),
		PublicBaseURL:   strings.TrimRight(env.GetEnv("PUBLIC_BASE_URL", ""), "/"),
		TwilioAccountID: env.GetEnv("TWILIO_ACCOUNT_SID", ""),
		TwilioAuthToken: env.GetEnv("TWILIO_AUTH_TOKEN", ""),
		StripeSecretKey: env.GetEnv("STRIPE_SECRET_KEY", ""),
		StripeMeterName: env.GetEnv("STRIPE_METER_NAME", "support_sessions"),
		ServiceAPIKey:   env.GetEnv("SERVICE_API_KEY", ""),
	}

	if cfg.ServiceNumber == "" {
		return nil, errors.New("SERVICE_NUMBER is required")
	}
	if cfg.ForwardNumber == "" {
		return nil, errors.New("FORWARD_NUMBER is required")
	}
	if cfg.AdminNumber == "" {
		return nil, errors.New("ADMIN_NUMBER is required")
	}

	return cfg, nil
}

// CallbackURL joins the public base URL with a webhook route path.
func (c *Config) CallbackURL(route string) string {
	return c.PublicBaseURL + route
}
