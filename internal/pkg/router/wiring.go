package router

import (
	"github.com/lberndt/helpline/app/repository"
	"github.com/lberndt/helpline/internal/pkg/cache"
	"github.com/lberndt/helpline/internal/pkg/config"
	"github.com/lberndt/helpline/internal/pkg/metering"
)

func newMeter(cfg *config.Config, repos *repository.Repositories) *metering.Meter {
	metering.InitStripe(cfg.StripeSecretKey)
	return metering.NewMeter(repos.UsageRecord, cfg.StripeMeterName)
}

// offerCache adapts the redis-backed call state to the decision engine's
// offer store.
type offerCache struct{}

func (offerCache) PutTrialOffer(callSID, contact string) error {
	return cache.PutTrialOffer(callSID, contact)
}

func (offerCache) TakeTrialOffer(callSID string) (string, error) {
	return cache.TakeTrialOffer(callSID)
}
