package loyalty

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"travel-workers/internal/common/kvstore"
	"travel-workers/internal/common/logger"
	"travel-workers/internal/events"
)

// RedemptionRate converts points to currency: 100 points = 1 unit.
const RedemptionRate = 0.01

// DefaultReferralBonus is awarded to the referrer when a referral converts.
const DefaultReferralBonus = 500

const maxRewardedBookings = 500

type Ledger struct {
	store         kvstore.Store
	logger        logger.Logger
	bus           *events.Bus
	now           func() time.Time
	newID         func() string
	referralBonus int
	locks         *userLocks
}

type Option func(*Ledger)

func WithClock(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

func WithIDGenerator(newID func() string) Option {
	return func(l *Ledger) { l.newID = newID }
}

// WithEventBus publishes ledger events after each successful write.
func WithEventBus(bus *events.Bus) Option {
	return func(l *Ledger) { l.bus = bus }
}

func WithReferralBonus(points int) Option {
	return func(l *Ledger) {
		if points > 0 {
			l.referralBonus = points
		}
	}
}

func NewLedger(store kvstore.Store, log logger.Logger, opts ...Option) *Ledger {
	l := &Ledger{
		store:         store,
		logger:        log.WithFields(map[string]interface{}{"component": "loyalty-ledger"}),
		now:           time.Now,
		newID:         func() string { return uuid.New().String() },
		referralBonus: DefaultReferralBonus,
		locks:         newUserLocks(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *Ledger) timestamp() string {
	return l.now().UTC().Format(time.RFC3339)
}

func (l *Ledger) referralCode() string {
	id := strings.ReplaceAll(uuid.New().String(), "-", "")
	return "TRV" + strings.ToUpper(id[:8])
}

func (l *Ledger) newAccount(userID string) *Account {
	ts := l.timestamp()
	a := &Account{
		UserID:       userID,
		ReferralCode: l.referralCode(),
		CreatedAt:    ts,
		UpdatedAt:    ts,
	}
	a.normalize()
	return a
}

// load reads the account. found is false when no document exists; err is
// set when the backend failed or the document is corrupt.
func (l *Ledger) load(ctx context.Context, userID string) (acct *Account, found bool, err error) {
	raw, ok, err := l.store.Get(ctx, AccountKey(userID))
	if err != nil {
		return nil, false, err
	}
	if !ok {
		return l.newAccount(userID), false, nil
	}
	var a Account
	if err := json.Unmarshal(raw, &a); err != nil {
		return nil, false, fmt.Errorf("decode account %s: %w", userID, err)
	}
	if a.UserID == "" {
		a.UserID = userID
	}
	a.normalize()
	return &a, true, nil
}

// loadForUpdate refuses to continue on storage errors so a transient read
// failure cannot overwrite an existing account with a fresh one.
func (l *Ledger) loadForUpdate(ctx context.Context, userID string) (*Account, error) {
	acct, _, err := l.load(ctx, userID)
	if err != nil {
		l.logger.Error("failed to load loyalty account", map[string]interface{}{
			"userId": userID,
			"error":  err,
		})
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return acct, nil
}

// GetLoyaltyData returns the user's account, creating and persisting a
// default one on first access. It never fails: storage problems are logged
// and an unsaved default account is returned.
func (l *Ledger) GetLoyaltyData(ctx context.Context, userID string) *Account {
	unlock := l.locks.lock(userID)
	defer unlock()

	acct, found, err := l.load(ctx, userID)
	if err != nil {
		l.logger.Warn("loyalty data unavailable, using defaults", map[string]interface{}{
			"userId": userID,
			"error":  err,
		})
		return l.newAccount(userID)
	}
	if !found {
		l.SaveLoyaltyData(ctx, acct)
	}
	return acct
}

// SaveLoyaltyData writes the whole account and reports success.
func (l *Ledger) SaveLoyaltyData(ctx context.Context, acct *Account) bool {
	acct.UpdatedAt = l.timestamp()
	raw, err := json.Marshal(acct)
	if err != nil {
		l.logger.Error("failed to encode loyalty account", map[string]interface{}{
			"userId": acct.UserID,
			"error":  err,
		})
		return false
	}
	if err := l.store.Set(ctx, AccountKey(acct.UserID), raw); err != nil {
		l.logger.Error("failed to save loyalty account", map[string]interface{}{
			"userId": acct.UserID,
			"error":  err,
		})
		return false
	}
	return true
}

// mutation collects the events produced while an account is being changed.
type mutation struct {
	acct   *Account
	events []events.Event
	saved  bool
}

// begin takes the user's lock for a read-modify-write. The returned release
// func unlocks first and then publishes the events of a committed mutation.
func (l *Ledger) begin(ctx context.Context, userID string) (*mutation, func()) {
	unlock := l.locks.lock(userID)
	m := &mutation{}
	return m, func() {
		unlock()
		if !m.saved {
			return
		}
		for _, e := range m.events {
			l.bus.Publish(ctx, e)
		}
	}
}

// earn applies an earn transaction in memory.
func (m *mutation) earn(id, ts string, amount int, reason string, metadata map[string]interface{}) (*Transaction, *TierUpgrade) {
	a := m.acct
	oldTier := a.Tier

	tx := Transaction{
		ID:        id,
		Type:      TransactionEarn,
		Amount:    amount,
		Reason:    reason,
		Metadata:  metadata,
		Timestamp: ts,
	}
	a.TotalPoints += amount
	a.AvailablePoints += amount
	a.History = append([]Transaction{tx}, a.History...)
	a.Tier = GetUserTier(a.TotalPoints).ID
	a.TierProgress = TierProgress(a.TotalPoints)

	m.events = append(m.events, events.Event{
		Kind:    events.PointsEarned,
		UserID:  a.UserID,
		Points:  amount,
		Balance: a.AvailablePoints,
		Reason:  reason,
	})

	var upgrade *TierUpgrade
	if a.Tier != oldTier {
		upgrade = &TierUpgrade{From: oldTier, To: a.Tier}
		m.events = append(m.events, events.Event{
			Kind:     events.TierUpgraded,
			UserID:   a.UserID,
			FromTier: oldTier,
			ToTier:   a.Tier,
			Balance:  a.AvailablePoints,
		})
	}
	return &tx, upgrade
}

// awardBadge adds the badge and its points in memory.
func (l *Ledger) awardBadge(m *mutation, badge Badge) *TierUpgrade {
	m.acct.EarnedBadges = append(m.acct.EarnedBadges, badge.ID)
	m.events = append(m.events, events.Event{
		Kind:    events.BadgeEarned,
		UserID:  m.acct.UserID,
		BadgeID: badge.ID,
		Badge:   badge.Name,
		Points:  badge.Points,
	})
	_, upgrade := m.earn(l.newID(), l.timestamp(), badge.Points, "Badge: "+badge.Name,
		map[string]interface{}{"badgeId": badge.ID})
	return upgrade
}

// commit persists the account. Its events go out when the lock is released.
func (l *Ledger) commit(ctx context.Context, m *mutation) error {
	if !l.SaveLoyaltyData(ctx, m.acct) {
		return fmt.Errorf("%w: save failed", ErrStorageUnavailable)
	}
	m.saved = true
	return nil
}

func mergeUpgrades(first, second *TierUpgrade) *TierUpgrade {
	switch {
	case first == nil:
		return second
	case second == nil:
		return first
	default:
		return &TierUpgrade{From: first.From, To: second.To}
	}
}

// CalculatePointsFromBooking prices a booking at the tier the user holds
// before the booking's own points are added.
func (l *Ledger) CalculatePointsFromBooking(ctx context.Context, bookingAmount float64, userID string) PointsBreakdown {
	return pointsFor(bookingAmount, l.GetLoyaltyData(ctx, userID).TotalPoints)
}

func pointsFor(bookingAmount float64, currentTotal int) PointsBreakdown {
	base := 0
	if bookingAmount > 0 {
		base = int(math.Floor(bookingAmount))
	}
	tier := GetUserTier(currentTotal)
	// bonus is floor of the decimal product: 60 points at 0.15 is 9, even
	// though the float64 product is 8.999999999999998
	bonus := int(math.Floor(float64(base)*tier.CashbackRate + 1e-9))
	return PointsBreakdown{
		BasePoints:   base,
		BonusPoints:  bonus,
		TotalPoints:  base + bonus,
		CashbackRate: tier.CashbackRate,
		Tier:         tier.Name,
	}
}

func (l *Ledger) AwardPoints(ctx context.Context, amount int, reason string, metadata map[string]interface{}, userID string) (*AwardResult, error) {
	if userID == "" {
		return &AwardResult{Error: ErrMissingUserID.Error()}, ErrMissingUserID
	}
	if amount <= 0 {
		return &AwardResult{Error: ErrInvalidAmount.Error()}, ErrInvalidAmount
	}

	m, release := l.begin(ctx, userID)
	defer release()

	acct, err := l.loadForUpdate(ctx, userID)
	if err != nil {
		return &AwardResult{Error: err.Error()}, err
	}

	m.acct = acct
	tx, upgrade := m.earn(l.newID(), l.timestamp(), amount, reason, metadata)
	if err := l.commit(ctx, m); err != nil {
		return &AwardResult{Error: err.Error()}, err
	}

	l.logger.Info("points awarded", map[string]interface{}{
		"userId":      userID,
		"amount":      amount,
		"reason":      reason,
		"totalPoints": acct.TotalPoints,
		"tier":        acct.Tier,
	})
	return &AwardResult{
		Success:     true,
		NewBalance:  acct.AvailablePoints,
		TotalPoints: acct.TotalPoints,
		TierUpgrade: upgrade,
		Transaction: tx,
	}, nil
}

// RedeemPoints spends available points. Partial redemptions are refused.
func (l *Ledger) RedeemPoints(ctx context.Context, amount int, purpose string, metadata map[string]interface{}, userID string) (*RedeemResult, error) {
	if userID == "" {
		return &RedeemResult{Error: ErrMissingUserID.Error()}, ErrMissingUserID
	}
	if amount <= 0 {
		return &RedeemResult{Error: ErrInvalidAmount.Error()}, ErrInvalidAmount
	}

	m, release := l.begin(ctx, userID)
	defer release()

	acct, err := l.loadForUpdate(ctx, userID)
	if err != nil {
		return &RedeemResult{Error: err.Error()}, err
	}
	if acct.AvailablePoints < amount {
		return &RedeemResult{
			Error:      ErrInsufficientPoints.Error(),
			NewBalance: acct.AvailablePoints,
		}, ErrInsufficientPoints
	}

	tx := Transaction{
		ID:        l.newID(),
		Type:      TransactionRedeem,
		Amount:    -amount,
		Reason:    purpose,
		Metadata:  metadata,
		Timestamp: l.timestamp(),
	}
	acct.AvailablePoints -= amount
	acct.History = append([]Transaction{tx}, acct.History...)

	m.acct = acct
	m.events = append(m.events, events.Event{
		Kind:    events.PointsRedeemed,
		UserID:  userID,
		Points:  amount,
		Balance: acct.AvailablePoints,
		Reason:  purpose,
	})
	if err := l.commit(ctx, m); err != nil {
		return &RedeemResult{Error: err.Error()}, err
	}

	l.logger.Info("points redeemed", map[string]interface{}{
		"userId":  userID,
		"amount":  amount,
		"purpose": purpose,
		"balance": acct.AvailablePoints,
	})
	return &RedeemResult{
		Success:         true,
		NewBalance:      acct.AvailablePoints,
		RedemptionValue: float64(amount) * RedemptionRate,
		Transaction:     &tx,
	}, nil
}

func (l *Ledger) AwardBadge(ctx context.Context, badgeID, userID string) (*BadgeResult, error) {
	if userID == "" {
		return &BadgeResult{Error: ErrMissingUserID.Error()}, ErrMissingUserID
	}
	badge, ok := BadgeByID(badgeID)
	if !ok {
		return &BadgeResult{Error: ErrBadgeNotFound.Error()}, ErrBadgeNotFound
	}

	m, release := l.begin(ctx, userID)
	defer release()

	acct, err := l.loadForUpdate(ctx, userID)
	if err != nil {
		return &BadgeResult{Error: err.Error()}, err
	}
	if acct.HasBadge(badge.ID) {
		return &BadgeResult{
			Error:      ErrBadgeAlreadyEarned.Error(),
			NewBalance: acct.AvailablePoints,
		}, ErrBadgeAlreadyEarned
	}

	m.acct = acct
	l.awardBadge(m, badge)
	if err := l.commit(ctx, m); err != nil {
		return &BadgeResult{Error: err.Error()}, err
	}

	l.logger.Info("badge awarded", map[string]interface{}{
		"userId":  userID,
		"badgeId": badge.ID,
	})
	return &BadgeResult{
		Success:       true,
		Badge:         &badge,
		PointsAwarded: badge.Points,
		NewBalance:    acct.AvailablePoints,
	}, nil
}

// CheckBadgeEligibility awards the milestone badge for an activity, if the
// activity hits one exactly and the badge is not yet earned. It returns nil
// when there is nothing to award.
func (l *Ledger) CheckBadgeEligibility(ctx context.Context, activityType string, data ActivityData, userID string) (*BadgeResult, error) {
	badgeID, ok := milestoneBadge(activityType, data)
	if !ok {
		return nil, nil
	}
	res, err := l.AwardBadge(ctx, badgeID, userID)
	if errors.Is(err, ErrBadgeAlreadyEarned) {
		return nil, nil
	}
	return res, err
}
