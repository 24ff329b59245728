package loyalty

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"travel-workers/internal/common/kvstore"
	"travel-workers/internal/common/logger"
	"travel-workers/internal/common/notify"
	"travel-workers/internal/events"
	"travel-workers/internal/models"
)

var testNow = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

func newTestLedger(t *testing.T, opts ...Option) (*Ledger, *kvstore.MemoryStore) {
	t.Helper()
	store := kvstore.NewMemoryStore()
	var seq int64
	base := []Option{
		WithClock(func() time.Time { return testNow }),
		WithIDGenerator(func() string { return fmt.Sprintf("tx-%d", atomic.AddInt64(&seq, 1)) }),
	}
	return NewLedger(store, logger.NewTestLogger(t), append(base, opts...)...), store
}

func TestLedger_GetLoyaltyDataCreatesDefault(t *testing.T) {
	ctx := context.Background()
	l, store := newTestLedger(t)

	acct := l.GetLoyaltyData(ctx, "u1")
	assert.Equal(t, "u1", acct.UserID)
	assert.Zero(t, acct.TotalPoints)
	assert.Equal(t, "bronze", acct.Tier)
	assert.Empty(t, acct.EarnedBadges)
	assert.Empty(t, acct.History)
	assert.Regexp(t, `^TRV[0-9A-F]{8}$`, acct.ReferralCode)
	assert.Equal(t, "2026-03-14T09:30:00Z", acct.CreatedAt)

	_, found, err := store.Get(ctx, "travel:loyalty:v1:u1")
	require.NoError(t, err)
	assert.True(t, found)

	again := l.GetLoyaltyData(ctx, "u1")
	assert.Equal(t, acct.ReferralCode, again.ReferralCode)
}

func TestLedger_StorageFailures(t *testing.T) {
	ctx := context.Background()
	l, store := newTestLedger(t)
	store.FailWith = errors.New("connection refused")

	acct := l.GetLoyaltyData(ctx, "u1")
	assert.Equal(t, "u1", acct.UserID)
	assert.False(t, l.SaveLoyaltyData(ctx, acct))

	res, err := l.AwardPoints(ctx, 100, "Promo", nil, "u1")
	assert.ErrorIs(t, err, ErrStorageUnavailable)
	assert.False(t, res.Success)
	assert.False(t, IsBusinessRule(err))
}

func TestLedger_CorruptAccountIsNotOverwritten(t *testing.T) {
	ctx := context.Background()
	l, store := newTestLedger(t)
	require.NoError(t, store.Set(ctx, AccountKey("u1"), []byte(`{"totalPoints":`)))

	assert.Zero(t, l.GetLoyaltyData(ctx, "u1").TotalPoints)

	_, err := l.AwardPoints(ctx, 10, "Promo", nil, "u1")
	assert.ErrorIs(t, err, ErrStorageUnavailable)

	raw, _, _ := store.Get(ctx, AccountKey("u1"))
	assert.Equal(t, `{"totalPoints":`, string(raw))
}

func TestLedger_CalculatePointsFromBooking(t *testing.T) {
	ctx := context.Background()
	l, _ := newTestLedger(t)

	got := l.CalculatePointsFromBooking(ctx, 420.7, "bronze-user")
	assert.Equal(t, PointsBreakdown{
		BasePoints:   420,
		BonusPoints:  21,
		TotalPoints:  441,
		CashbackRate: 0.05,
		Tier:         "Bronze",
	}, got)

	_, err := l.AwardPoints(ctx, 6000, "Seed", nil, "silver-user")
	require.NoError(t, err)
	silver := l.CalculatePointsFromBooking(ctx, 1000, "silver-user")
	assert.Equal(t, 70, silver.BonusPoints)
	assert.Equal(t, 1070, silver.TotalPoints)
	assert.Equal(t, "Silver", silver.Tier)
}

func TestPointsFor_BonusUsesDecimalRate(t *testing.T) {
	tests := []struct {
		name      string
		amount    float64
		total     int
		wantBonus int
	}{
		{name: "bronze", amount: 420.7, total: 0, wantBonus: 21},
		{name: "silver", amount: 100, total: 5000, wantBonus: 7},
		{name: "gold", amount: 30, total: 15000, wantBonus: 3},
		{name: "platinum 60 is 9 not 8", amount: 60, total: 50000, wantBonus: 9},
		{name: "platinum rounds down", amount: 66, total: 50000, wantBonus: 9},
		{name: "below one point", amount: 0.9, total: 50000, wantBonus: 0},
		{name: "negative amount", amount: -20, total: 0, wantBonus: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := pointsFor(tt.amount, tt.total)
			assert.Equal(t, tt.wantBonus, got.BonusPoints)
			assert.Equal(t, got.BasePoints+got.BonusPoints, got.TotalPoints)
		})
	}
}

func TestLedger_AwardPoints(t *testing.T) {
	ctx := context.Background()
	l, _ := newTestLedger(t)

	res, err := l.AwardPoints(ctx, 441, "Booking: bk-1", map[string]interface{}{"bookingId": "bk-1"}, "u1")
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, 441, res.NewBalance)
	assert.Equal(t, 441, res.TotalPoints)
	assert.Nil(t, res.TierUpgrade)
	require.NotNil(t, res.Transaction)
	assert.Equal(t, "tx-1", res.Transaction.ID)
	assert.Equal(t, TransactionEarn, res.Transaction.Type)
	assert.Equal(t, "2026-03-14T09:30:00Z", res.Transaction.Timestamp)

	acct := l.GetLoyaltyData(ctx, "u1")
	assert.Equal(t, "bronze", acct.Tier)
	assert.InDelta(t, 8.82, acct.TierProgress, 1e-9)
}

func TestLedger_AwardPointsRejectsBadInput(t *testing.T) {
	l, _ := newTestLedger(t)

	res, err := l.AwardPoints(context.Background(), 0, "nothing", nil, "u1")
	assert.ErrorIs(t, err, ErrInvalidAmount)
	assert.Equal(t, "Invalid points amount", res.Error)

	_, err = l.AwardPoints(context.Background(), 10, "x", nil, "")
	assert.ErrorIs(t, err, ErrMissingUserID)
}

func TestLedger_TierUpgradeBoundary(t *testing.T) {
	ctx := context.Background()
	l, _ := newTestLedger(t)

	_, err := l.AwardPoints(ctx, 4990, "Seed", nil, "u1")
	require.NoError(t, err)

	res, err := l.AwardPoints(ctx, 20, "Promo", nil, "u1")
	require.NoError(t, err)
	assert.Equal(t, &TierUpgrade{From: "bronze", To: "silver"}, res.TierUpgrade)
	assert.Equal(t, "silver", l.GetLoyaltyData(ctx, "u1").Tier)
}

func TestLedger_TierIsMonotonic(t *testing.T) {
	ctx := context.Background()
	l, _ := newTestLedger(t)

	tierIndex := func(id string) int {
		for i, tr := range Tiers {
			if tr.ID == id {
				return i
			}
		}
		return -1
	}

	lastTier, lastTotal := 0, 0
	for _, amount := range []int{1, 4000, 999, 1, 9000, 35000, 1, 100000} {
		_, err := l.AwardPoints(ctx, amount, "step", nil, "u1")
		require.NoError(t, err)
		acct := l.GetLoyaltyData(ctx, "u1")

		assert.GreaterOrEqual(t, tierIndex(acct.Tier), lastTier)
		assert.Greater(t, acct.TotalPoints, lastTotal)
		lastTier, lastTotal = tierIndex(acct.Tier), acct.TotalPoints
	}
	assert.Equal(t, "platinum", l.GetLoyaltyData(ctx, "u1").Tier)
}

func TestLedger_RedeemPoints(t *testing.T) {
	ctx := context.Background()
	l, _ := newTestLedger(t)
	_, err := l.AwardPoints(ctx, 1000, "Seed", nil, "u1")
	require.NoError(t, err)

	res, err := l.RedeemPoints(ctx, 1500, "Voucher", nil, "u1")
	assert.ErrorIs(t, err, ErrInsufficientPoints)
	assert.False(t, res.Success)
	assert.Equal(t, "Insufficient points", res.Error)
	assert.Equal(t, 1000, l.GetLoyaltyData(ctx, "u1").AvailablePoints)

	res, err = l.RedeemPoints(ctx, 400, "Voucher", map[string]interface{}{"voucher": "V-1"}, "u1")
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, 600, res.NewBalance)
	assert.InDelta(t, 4.0, res.RedemptionValue, 1e-9)
	assert.Equal(t, -400, res.Transaction.Amount)
	assert.Equal(t, TransactionRedeem, res.Transaction.Type)

	acct := l.GetLoyaltyData(ctx, "u1")
	assert.Equal(t, 1000, acct.TotalPoints)
	assert.Equal(t, 600, acct.AvailablePoints)
	require.Len(t, acct.History, 2)
	assert.Equal(t, TransactionRedeem, acct.History[0].Type)
	assert.Equal(t, TransactionEarn, acct.History[1].Type)

	_, err = l.RedeemPoints(ctx, 600, "All of it", nil, "u1")
	require.NoError(t, err)
	assert.Zero(t, l.GetLoyaltyData(ctx, "u1").AvailablePoints)
}

func TestLedger_AwardBadgeIsIdempotent(t *testing.T) {
	ctx := context.Background()
	l, _ := newTestLedger(t)

	first, err := l.AwardBadge(ctx, "explorer", "u1")
	require.NoError(t, err)
	assert.True(t, first.Success)
	assert.Equal(t, 250, first.PointsAwarded)
	assert.Equal(t, "Explorer", first.Badge.Name)

	second, err := l.AwardBadge(ctx, "explorer", "u1")
	assert.ErrorIs(t, err, ErrBadgeAlreadyEarned)
	assert.False(t, second.Success)
	assert.Equal(t, "Badge already earned", second.Error)

	acct := l.GetLoyaltyData(ctx, "u1")
	assert.Equal(t, 250, acct.TotalPoints)
	assert.Equal(t, []string{"explorer"}, acct.EarnedBadges)
	assert.Equal(t, "Badge: Explorer", acct.History[0].Reason)

	_, err = l.AwardBadge(ctx, "unicorn", "u1")
	assert.ErrorIs(t, err, ErrBadgeNotFound)
}

func TestLedger_CheckBadgeEligibility(t *testing.T) {
	ctx := context.Background()
	l, _ := newTestLedger(t)

	tests := []struct {
		name     string
		activity string
		bookings int
		want     string
	}{
		{name: "first booking", activity: ActivityBookingCompleted, bookings: 1, want: "wanderer"},
		{name: "between milestones", activity: ActivityBookingCompleted, bookings: 6},
		{name: "fifth booking", activity: ActivityBookingCompleted, bookings: 5, want: "explorer"},
		{name: "fifth booking again", activity: ActivityBookingCompleted, bookings: 5},
		{name: "other activity", activity: "review_posted", bookings: 10},
		{name: "twenty fifth", activity: ActivityBookingCompleted, bookings: 25, want: "globetrotter"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := l.CheckBadgeEligibility(ctx, tt.activity, ActivityData{TotalBookings: tt.bookings}, "u1")
			require.NoError(t, err)
			if tt.want == "" {
				assert.Nil(t, res)
				return
			}
			require.NotNil(t, res)
			assert.Equal(t, tt.want, res.Badge.ID)
		})
	}

	// 10 was never hit exactly, so adventurer is not awarded
	assert.False(t, l.GetLoyaltyData(ctx, "u1").HasBadge("adventurer"))
}

func TestLedger_RewardBooking(t *testing.T) {
	ctx := context.Background()
	l, _ := newTestLedger(t)
	booking := models.Booking{ID: "bk-1", Amount: 420.7, UserID: "u1", Type: "hotel", CheckInDate: "2026-04-01"}

	res, err := l.RewardBooking(ctx, booking)
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, 441, res.Points.TotalPoints)
	assert.Equal(t, 1, res.TotalBookings)
	require.NotNil(t, res.BadgeAwarded)
	assert.Equal(t, "wanderer", res.BadgeAwarded.ID)
	assert.Equal(t, 541, res.TotalPoints)
	assert.Equal(t, "Booking: bk-1", res.Transaction.Reason)

	dup, err := l.RewardBooking(ctx, booking)
	assert.ErrorIs(t, err, ErrBookingAlreadyRewarded)
	assert.Equal(t, "Booking already rewarded", dup.Error)
	assert.Equal(t, 541, dup.TotalPoints)

	bad, err := l.RewardBooking(ctx, models.Booking{ID: "bk-2", UserID: "u1"})
	assert.ErrorIs(t, err, ErrMissingBookingFields)
	assert.Equal(t, "Missing required booking fields", bad.Error)
	assert.False(t, bad.Success)
}

func TestLedger_RewardBookingTierUpgradeSpansBadge(t *testing.T) {
	ctx := context.Background()
	l, _ := newTestLedger(t)

	// 4760 base + 238 bonus leaves the user 2 points short of silver; the
	// wanderer badge pushes them over
	res, err := l.RewardBooking(ctx, models.Booking{ID: "bk-1", Amount: 4760, UserID: "u1"})
	require.NoError(t, err)
	assert.Equal(t, 4998, res.Points.TotalPoints)
	assert.Equal(t, &TierUpgrade{From: "bronze", To: "silver"}, res.TierUpgrade)
}

func TestLedger_Referrals(t *testing.T) {
	ctx := context.Background()
	l, _ := newTestLedger(t, WithReferralBonus(500))

	_, err := l.ConvertReferral(ctx, "u1", "friend@example.com")
	assert.ErrorIs(t, err, ErrReferralNotFound)

	added, err := l.AddReferral(ctx, "u1", "friend@example.com")
	require.NoError(t, err)
	assert.Equal(t, ReferralPending, added.Status)

	_, err = l.AddReferral(ctx, "u1", "friend@example.com")
	assert.ErrorIs(t, err, ErrReferralExists)

	conv, err := l.ConvertReferral(ctx, "u1", "friend@example.com")
	require.NoError(t, err)
	assert.Equal(t, ReferralConverted, conv.Status)
	assert.Equal(t, 500, conv.PointsAwarded)
	assert.Equal(t, 500, conv.TotalEarned)
	require.NotNil(t, conv.BadgeAwarded)
	assert.Equal(t, 700, conv.NewBalance)

	acct := l.GetLoyaltyData(ctx, "u1")
	assert.Empty(t, acct.Referrals.Pending)
	require.Len(t, acct.Referrals.Converted, 1)
	assert.Equal(t, "2026-03-14T09:30:00Z", acct.Referrals.Converted[0].ConvertedAt)

	_, err = l.ConvertReferral(ctx, "u1", "friend@example.com")
	assert.ErrorIs(t, err, ErrReferralNotFound)
}

func TestLedger_PublishesEvents(t *testing.T) {
	ctx := context.Background()
	bus := events.NewBus(logger.NewTestLogger(t))
	var kinds []events.Kind
	bus.Subscribe(func(_ context.Context, e events.Event) error {
		kinds = append(kinds, e.Kind)
		return nil
	})
	l, store := newTestLedger(t, WithEventBus(bus))

	_, err := l.AwardPoints(ctx, 5000, "Seed", nil, "u1")
	require.NoError(t, err)
	_, err = l.RedeemPoints(ctx, 100, "Voucher", nil, "u1")
	require.NoError(t, err)
	assert.Equal(t, []events.Kind{events.PointsEarned, events.TierUpgraded, events.PointsRedeemed}, kinds)

	// nothing is published when the write fails
	store.FailWith = errors.New("down")
	kinds = nil
	_, _ = l.AwardPoints(ctx, 10, "Promo", nil, "u1")
	assert.Empty(t, kinds)
}

func TestLedger_SubscribersRunOutsideUserLock(t *testing.T) {
	ctx := context.Background()
	bus := events.NewBus(logger.NewTestLogger(t))
	l, _ := newTestLedger(t, WithEventBus(bus))

	var balances []int
	bus.Subscribe(func(ctx context.Context, e events.Event) error {
		if e.Kind != events.PointsEarned {
			return nil
		}
		read := make(chan int, 1)
		go func() { read <- l.GetLoyaltyData(ctx, e.UserID).AvailablePoints }()
		select {
		case b := <-read:
			balances = append(balances, b)
		case <-time.After(time.Second):
			return errors.New("user still locked during publish")
		}
		return nil
	})

	_, err := l.AwardPoints(ctx, 40, "Promo", nil, "u1")
	require.NoError(t, err)
	assert.Equal(t, []int{40}, balances)
}

type stalledNotifier struct{ release chan struct{} }

func (s *stalledNotifier) Notify(ctx context.Context, _ models.Notification) error {
	select {
	case <-s.release:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func TestLedger_SlowNotifierDoesNotDelayWrites(t *testing.T) {
	ctx := context.Background()
	log := logger.NewTestLogger(t)
	bus := events.NewBus(log)
	stalled := &stalledNotifier{release: make(chan struct{})}
	d := notify.NewDispatcher(stalled, log)
	d.Attach(bus)
	l, _ := newTestLedger(t, WithEventBus(bus))

	start := time.Now()
	res, err := l.AwardPoints(ctx, 10, "Promo", nil, "u1")
	require.NoError(t, err)
	assert.True(t, res.Success)
	_, err = l.RedeemPoints(ctx, 5, "Voucher", nil, "u1")
	require.NoError(t, err)
	assert.Less(t, time.Since(start), 500*time.Millisecond)

	close(stalled.release)
	require.NoError(t, d.Close(ctx))
}

func TestLedger_ConcurrentAwardsAreSerialised(t *testing.T) {
	ctx := context.Background()
	l, _ := newTestLedger(t)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = l.AwardPoints(ctx, 10, "Promo", nil, "u1")
		}()
	}
	wg.Wait()

	acct := l.GetLoyaltyData(ctx, "u1")
	assert.Equal(t, 500, acct.TotalPoints)
	assert.Len(t, acct.History, 50)
}

func TestLedger_PersistedDocumentShape(t *testing.T) {
	ctx := context.Background()
	l, store := newTestLedger(t)
	_, err := l.AwardPoints(ctx, 441, "Booking: bk-1", nil, "u1")
	require.NoError(t, err)

	raw, ok, err := store.Get(ctx, "travel:loyalty:v1:u1")
	require.NoError(t, err)
	require.True(t, ok)

	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &doc))
	for _, key := range []string{"userId", "totalPoints", "availablePoints", "tier", "tierProgress", "earnedBadges", "history", "referralCode", "referrals", "createdAt", "updatedAt"} {
		assert.Contains(t, doc, key)
	}
}

func TestLedger_GetSummary(t *testing.T) {
	ctx := context.Background()
	l, _ := newTestLedger(t)
	for i := 0; i < 5; i++ {
		_, err := l.AwardPoints(ctx, 100, "Promo", nil, "u1")
		require.NoError(t, err)
	}
	_, err := l.AwardBadge(ctx, "wanderer", "u1")
	require.NoError(t, err)

	s := l.GetSummary(ctx, "u1", 3)
	assert.Len(t, s.Account.History, 3)
	assert.Equal(t, "bronze", s.Tier.ID)
	assert.Equal(t, 4400, s.NextTier.PointsNeeded)
	require.Len(t, s.Badges, 1)
	assert.Equal(t, "Wanderer", s.Badges[0].Name)
}
