// Package entitlements turns a contact's account state into an access
// decision input: plan type, sessions consumed this month, remaining free
// allowance.
package entitlements

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/lberndt/helpline/app/models"
	"github.com/lberndt/helpline/app/repository"
)

// Entitlement is the resolved plan and quota state for a contact at the time
// of one inbound event. It is never cached across events.
type Entitlement struct {
	Registered            bool
	User                  *models.User
	Plan                  string
	SessionsUsedThisMonth int
	FreeSessionsRemaining int
	Unlimited             bool
}

// HasQuota reports whether the contact may start a new session this month.
// The pay-as-you-go 24h throttle is checked separately by the session
// tracker; here payg is unlimited because overage is metered, not denied.
func (e Entitlement) HasQuota() bool {
	if e.Unlimited {
		return true
	}
	return e.FreeSessionsRemaining > 0
}

// Billable reports whether the NEXT accepted session must be metered.
// Only pay-as-you-go sessions beyond the free allowance bill.
func (e Entitlement) Billable() bool {
	return e.Plan == models.PlanPayAsYouGo && e.FreeSessionsRemaining == 0
}

// Resolver resolves entitlements against the account and session stores.
type Resolver struct {
	users    repository.UserRepository
	sessions repository.HelpSessionRepository
	now      func() time.Time
}

// NewResolver creates a resolver on top of the given repositories.
func NewResolver(users repository.UserRepository, sessions repository.HelpSessionRepository) *Resolver {
	return &Resolver{users: users, sessions: sessions, now: time.Now}
}

// Resolve looks up the normalized contact and derives its entitlement.
//
// Failure policy: a user lookup error resolves to the unregistered path, a
// session count error resolves to the free plan with the full allowance
// remaining. Errors never grant unlimited access.
func (r *Resolver) Resolve(contact string) Entitlement {
	user, err := r.users.GetByPhone(contact)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Errorf("entitlements: user lookup for %s failed: %v", contact, err)
		}
		return Entitlement{Registered: false}
	}

	ent := Entitlement{
		Registered: true,
		User:       user,
		Plan:       user.Plan(),
	}

	from, to := monthRange(r.now())
	used, err := r.sessions.CountCompletedInRange(user.ID, from, to)
	if err != nil {
		log.Errorf("entitlements: session count for user %d failed: %v", user.ID, err)
		// Fail closed on quota: capped free plan, full allowance.
		return Entitlement{
			Registered:            true,
			User:                  user,
			Plan:                  models.PlanFree,
			FreeSessionsRemaining: models.FreeSessionsPerMonth,
		}
	}
	ent.SessionsUsedThisMonth = int(used)

	switch ent.Plan {
	case models.PlanSubscription:
		ent.Unlimited = true
	case models.PlanPayAsYouGo:
		ent.Unlimited = true
		ent.FreeSessionsRemaining = remaining(ent.SessionsUsedThisMonth)
	default:
		ent.FreeSessionsRemaining = remaining(ent.SessionsUsedThisMonth)
	}

	return ent
}

func remaining(used int) int {
	left := models.FreeSessionsPerMonth - used
	if left < 0 {
		return 0
	}
	return left
}

// monthRange returns [first day of the current month, first day of the next).
func monthRange(now time.Time) (time.Time, time.Time) {
	from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	return from, from.AddDate(0, 1, 0)
}
