package models

import (
	"time"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

const (
	// Plan types derived from the billing flags on the account record.
	PlanSubscription = "subscription"
	PlanPayAsYouGo   = "payg"
	PlanFree         = "free"

	// FreeSessionsPerMonth is the monthly allowance shared by the free plan
	// (hard cap) and the pay-as-you-go plan (free before metering starts).
	FreeSessionsPerMonth = 3
)

// User is an account from the external account system. This service only
// reads it; creation and plan changes happen elsewhere.
type User struct {
	ID                uint           `gorm:"primaryKey" json:"id"`
	Name              string         `gorm:"type:varchar(150)" json:"name" validate:"required,min=1,max=150"`
	Email             string         `gorm:"uniqueIndex;type:varchar(200)" json:"email" validate:"required,email,max=200"`
	Phone             string         `gorm:"type:varchar(32);index" json:"phone" validate:"required,max=32"`
	SubscriptionID    string         `gorm:"type:varchar(191);default:''" json:"-"`
	UsageID           string         `gorm:"type:varchar(191);default:''" json:"-"`
	BillingCustomerID string         `gorm:"type:varchar(191);default:''" json:"-"`
	CreatedAt         time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt         gorm.DeletedAt `gorm:"index" json:"-"`
}

func (u *User) Validate() error {
	v := validator.New()

	return v.Struct(u)
}

// Plan derives the plan type from the billing membership fields:
// a subscription id means unlimited access, a usage id means metered
// pay-as-you-go, neither means the capped free plan.
func (u *User) Plan() string {
	if u.SubscriptionID != "" {
		return PlanSubscription
	}
	if u.UsageID != "" {
		return PlanPayAsYouGo
	}
	return PlanFree
}

// SessionPriority maps the plan type to the queue priority of new sessions.
func SessionPriority(plan string) string {
	switch plan {
	case PlanSubscription:
		return PriorityHigh
	case PlanPayAsYouGo:
		return PriorityMedium
	default:
		return PriorityLow
	}
}
