package notify

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lberndt/helpline/app/models"
	"github.com/lberndt/helpline/internal/pkg/entitlements"
)

func TestSessionConfirmationNumbering(t *testing.T) {
	free := func(used int) entitlements.Entitlement {
		return entitlements.Entitlement{
			Registered:            true,
			Plan:                  models.PlanFree,
			SessionsUsedThisMonth: used,
			FreeSessionsRemaining: models.FreeSessionsPerMonth - used,
		}
	}

	assert.Contains(t, SessionConfirmation(free(0)), "first of your 3 free sessions")
	assert.Contains(t, SessionConfirmation(free(1)), "session 2 of your 3 free sessions")
	assert.Contains(t, SessionConfirmation(free(2)), "final of your 3 free sessions")
}

func TestSessionConfirmationUnlimitedAndBilled(t *testing.T) {
	sub := entitlements.Entitlement{Plan: models.PlanSubscription, Unlimited: true}
	assert.Contains(t, SessionConfirmation(sub), "unlimited")

	payg := entitlements.Entitlement{Plan: models.PlanPayAsYouGo, Unlimited: true}
	assert.Contains(t, SessionConfirmation(payg), "billed")
}

func TestAdminMessages(t *testing.T) {
	assert.Equal(t, "Not forwarded: 5551234567 (session limit).",
		AdminDenied("5551234567", ReasonSessionLimit))
	assert.Contains(t, AdminTrialStarted("5551234567", models.ChannelPhone), "[free trial]")

	ent := entitlements.Entitlement{
		Plan:                  models.PlanPayAsYouGo,
		SessionsUsedThisMonth: 5,
	}
	assert.Contains(t, AdminForwarded("Dana", "5551234567", ent), "billing active")
}
