package cache

import (
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// Short-lived state bridging separate webhook callbacks of one call. The
// provider only replays the call SID, so the trial-offer contact and the
// session binding are parked here between requests.
const (
	trialOfferTTL  = 10 * time.Minute
	callBindingTTL = 4 * time.Hour
)

// ErrNotFound is returned when no state is parked for the given call.
var ErrNotFound = errors.New("cache: no state for call")

// PutTrialOffer remembers which contact a trial was offered to on this call.
func PutTrialOffer(callSID, contact string) error {
	return Set("trial-offer:"+callSID, contact, trialOfferTTL)
}

// TakeTrialOffer retrieves and clears the offered contact for a call.
func TakeTrialOffer(callSID string) (string, error) {
	key := "trial-offer:" + callSID
	contact, err := Get(key)
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrNotFound
		}
		return "", err
	}
	_ = Delete(key)
	return contact, nil
}

// BindCallSession links a call SID to a session UUID for later callbacks.
func BindCallSession(callSID, sessionUUID string) error {
	return Set("call-session:"+callSID, sessionUUID, callBindingTTL)
}

// LookupCallSession resolves a call SID to its session UUID.
func LookupCallSession(callSID string) (string, error) {
	uuid, err := Get("call-session:" + callSID)
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrNotFound
		}
		return "", err
	}
	return uuid, nil
}
