package entitlements

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/lberndt/helpline/app/models"
)

type stubUserRepo struct {
	user *models.User
	err  error
}

func (s *stubUserRepo) GetByID(id uint) (*models.User, error) { return s.user, s.err }
func (s *stubUserRepo) GetByPhone(p string) (*models.User, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.user, nil
}

type stubSessionRepo struct {
	completed int64
	countErr  error

	countedFrom time.Time
	countedTo   time.Time
}

func (s *stubSessionRepo) GetByID(uint) (*models.HelpSession, error)         { return nil, gorm.ErrRecordNotFound }
func (s *stubSessionRepo) GetByUUID(string) (*models.HelpSession, error)     { return nil, gorm.ErrRecordNotFound }
func (s *stubSessionRepo) GetByCallSID(string) (*models.HelpSession, error)  { return nil, gorm.ErrRecordNotFound }
func (s *stubSessionRepo) FindActiveByUserID(uint) (*models.HelpSession, error) {
	return nil, gorm.ErrRecordNotFound
}
func (s *stubSessionRepo) LatestOpenSession() (*models.HelpSession, error) {
	return nil, gorm.ErrRecordNotFound
}
func (s *stubSessionRepo) HasSessionSince(uint, time.Time) (bool, error) { return false, nil }
func (s *stubSessionRepo) CountCompletedInRange(userID uint, from, to time.Time) (int64, error) {
	s.countedFrom, s.countedTo = from, to
	return s.completed, s.countErr
}
func (s *stubSessionRepo) Create(*models.HelpSession) error { return nil }
func (s *stubSessionRepo) Update(*models.HelpSession) error { return nil }
func (s *stubSessionRepo) AppendMessage(*models.HelpSession, *models.Message) error {
	return nil
}

func newResolverAt(t *testing.T, users *stubUserRepo, sessions *stubSessionRepo, at time.Time) *Resolver {
	t.Helper()
	r := NewResolver(users, sessions)
	r.now = func() time.Time { return at }
	return r
}

func TestResolveUnregistered(t *testing.T) {
	r := NewResolver(&stubUserRepo{err: gorm.ErrRecordNotFound}, &stubSessionRepo{})

	ent := r.Resolve("5551234567")

	assert.False(t, ent.Registered)
	assert.False(t, ent.Unlimited)
	assert.False(t, ent.HasQuota())
}

func TestResolveUserLookupErrorDegradesToUnregistered(t *testing.T) {
	r := NewResolver(&stubUserRepo{err: errors.New("connection refused")}, &stubSessionRepo{})

	ent := r.Resolve("5551234567")

	assert.False(t, ent.Registered)
	assert.False(t, ent.Unlimited)
}

func TestResolveFreePlanQuota(t *testing.T) {
	user := &models.User{ID: 7, Phone: "5551234567"}

	for used, wantRemaining := range map[int64]int{0: 3, 2: 1, 3: 0, 5: 0} {
		r := NewResolver(&stubUserRepo{user: user}, &stubSessionRepo{completed: used})
		ent := r.Resolve("5551234567")

		require.True(t, ent.Registered)
		assert.Equal(t, models.PlanFree, ent.Plan)
		assert.Equal(t, int(used), ent.SessionsUsedThisMonth)
		assert.Equal(t, wantRemaining, ent.FreeSessionsRemaining)
		assert.False(t, ent.Unlimited)
		assert.Equal(t, wantRemaining > 0, ent.HasQuota())
		assert.False(t, ent.Billable())
	}
}

func TestResolveSubscriptionNeverDenied(t *testing.T) {
	user := &models.User{ID: 7, Phone: "5551234567", SubscriptionID: "sub_123"}

	for _, used := range []int64{0, 3, 50} {
		r := NewResolver(&stubUserRepo{user: user}, &stubSessionRepo{completed: used})
		ent := r.Resolve("5551234567")

		assert.Equal(t, models.PlanSubscription, ent.Plan)
		assert.True(t, ent.Unlimited)
		assert.True(t, ent.HasQuota())
		assert.False(t, ent.Billable())
	}
}

func TestResolvePayAsYouGoBillableAfterFreeAllowance(t *testing.T) {
	user := &models.User{ID: 7, Phone: "5551234567", UsageID: "ui_123"}

	r := NewResolver(&stubUserRepo{user: user}, &stubSessionRepo{completed: 2})
	ent := r.Resolve("5551234567")
	assert.Equal(t, models.PlanPayAsYouGo, ent.Plan)
	assert.True(t, ent.HasQuota())
	assert.False(t, ent.Billable(), "sessions 1-3 are free")

	r = NewResolver(&stubUserRepo{user: user}, &stubSessionRepo{completed: 3})
	ent = r.Resolve("5551234567")
	assert.True(t, ent.HasQuota(), "payg is never quota-denied")
	assert.True(t, ent.Billable(), "4th and later sessions are metered")
}

func TestResolveCountErrorFailsClosedOnQuota(t *testing.T) {
	user := &models.User{ID: 7, Phone: "5551234567", SubscriptionID: "sub_123"}
	r := NewResolver(&stubUserRepo{user: user}, &stubSessionRepo{countErr: errors.New("timeout")})

	ent := r.Resolve("5551234567")

	require.True(t, ent.Registered)
	assert.Equal(t, models.PlanFree, ent.Plan, "an error never grants unlimited access")
	assert.False(t, ent.Unlimited)
	assert.Equal(t, models.FreeSessionsPerMonth, ent.FreeSessionsRemaining)
}

func TestResolveCountsCurrentCalendarMonth(t *testing.T) {
	user := &models.User{ID: 7, Phone: "5551234567"}
	sessions := &stubSessionRepo{}
	at := time.Date(2025, time.March, 15, 10, 30, 0, 0, time.UTC)

	r := newResolverAt(t, &stubUserRepo{user: user}, sessions, at)
	r.Resolve("5551234567")

	assert.Equal(t, time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC), sessions.countedFrom)
	assert.Equal(t, time.Date(2025, time.April, 1, 0, 0, 0, 0, time.UTC), sessions.countedTo)
}
