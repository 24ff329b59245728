package loyalty

import (
	"errors"
)

const accountKeyPrefix = "travel:loyalty:v1:"

// AccountKey is the storage key of a user's account document.
func AccountKey(userID string) string {
	return accountKeyPrefix + userID
}

// Business-rule failures. Their messages are shown to users verbatim.
var (
	ErrInsufficientPoints     = errors.New("Insufficient points")
	ErrInvalidAmount          = errors.New("Invalid points amount")
	ErrBadgeNotFound          = errors.New("Badge not found")
	ErrBadgeAlreadyEarned     = errors.New("Badge already earned")
	ErrMissingBookingFields   = errors.New("Missing required booking fields")
	ErrBookingAlreadyRewarded = errors.New("Booking already rewarded")
	ErrReferralNotFound       = errors.New("Referral not found")
	ErrReferralExists         = errors.New("Referral already exists")
	ErrMissingUserID          = errors.New("User id is required")
	ErrMissingReferee         = errors.New("Referee is required")
)

// ErrStorageUnavailable is returned by mutating operations when the account
// could not be read or written. Nothing was changed.
var ErrStorageUnavailable = errors.New("loyalty storage unavailable")

// IsBusinessRule reports whether err is one of the user-facing rule errors.
func IsBusinessRule(err error) bool {
	for _, e := range []error{
		ErrInsufficientPoints, ErrInvalidAmount, ErrBadgeNotFound,
		ErrBadgeAlreadyEarned, ErrMissingBookingFields, ErrBookingAlreadyRewarded,
		ErrReferralNotFound, ErrReferralExists, ErrMissingUserID, ErrMissingReferee,
	} {
		if errors.Is(err, e) {
			return true
		}
	}
	return false
}

const (
	TransactionEarn   = "earn"
	TransactionRedeem = "redeem"
)

// Transaction is immutable once appended. Amount is negative for redemptions.
type Transaction struct {
	ID        string                 `json:"id"`
	Type      string                 `json:"type"`
	Amount    int                    `json:"amount"`
	Reason    string                 `json:"reason"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp string                 `json:"timestamp"`
}

type Referral struct {
	Referee     string `json:"referee"`
	CreatedAt   string `json:"createdAt"`
	ConvertedAt string `json:"convertedAt,omitempty"`
}

type Referrals struct {
	Pending     []Referral `json:"pending"`
	Converted   []Referral `json:"converted"`
	TotalEarned int        `json:"totalEarned"`
}

// Account is the persisted per-user ledger document. TotalPoints never
// decreases; redemptions only lower AvailablePoints.
type Account struct {
	UserID           string        `json:"userId"`
	TotalPoints      int           `json:"totalPoints"`
	AvailablePoints  int           `json:"availablePoints"`
	Tier             string        `json:"tier"`
	TierProgress     float64       `json:"tierProgress"`
	EarnedBadges     []string      `json:"earnedBadges"`
	History          []Transaction `json:"history"`
	ReferralCode     string        `json:"referralCode"`
	Referrals        Referrals     `json:"referrals"`
	TotalBookings    int           `json:"totalBookings"`
	RewardedBookings []string      `json:"rewardedBookings,omitempty"`
	CreatedAt        string        `json:"createdAt"`
	UpdatedAt        string        `json:"updatedAt"`
}

func (a *Account) HasBadge(id string) bool {
	for _, b := range a.EarnedBadges {
		if b == id {
			return true
		}
	}
	return false
}

func (a *Account) bookingRewarded(id string) bool {
	for _, b := range a.RewardedBookings {
		if b == id {
			return true
		}
	}
	return false
}

func (a *Account) pendingReferral(referee string) int {
	for i, r := range a.Referrals.Pending {
		if r.Referee == referee {
			return i
		}
	}
	return -1
}

func (a *Account) knowsReferee(referee string) bool {
	if a.pendingReferral(referee) >= 0 {
		return true
	}
	for _, r := range a.Referrals.Converted {
		if r.Referee == referee {
			return true
		}
	}
	return false
}

// normalize fills slices a hand-edited or older document may lack and
// re-derives the tier fields from TotalPoints.
func (a *Account) normalize() {
	if a.EarnedBadges == nil {
		a.EarnedBadges = []string{}
	}
	if a.History == nil {
		a.History = []Transaction{}
	}
	if a.Referrals.Pending == nil {
		a.Referrals.Pending = []Referral{}
	}
	if a.Referrals.Converted == nil {
		a.Referrals.Converted = []Referral{}
	}
	a.Tier = GetUserTier(a.TotalPoints).ID
	a.TierProgress = TierProgress(a.TotalPoints)
}

// TierUpgrade records a tier change caused by an earn.
type TierUpgrade struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// PointsBreakdown is the reward for a booking amount at the user's current tier.
type PointsBreakdown struct {
	BasePoints   int     `json:"basePoints"`
	BonusPoints  int     `json:"bonusPoints"`
	TotalPoints  int     `json:"totalPoints"`
	CashbackRate float64 `json:"cashbackRate"`
	Tier         string  `json:"tier"`
}

type AwardResult struct {
	Success     bool         `json:"success"`
	Error       string       `json:"error,omitempty"`
	NewBalance  int          `json:"newBalance"`
	TotalPoints int          `json:"totalPoints"`
	TierUpgrade *TierUpgrade `json:"tierUpgrade"`
	Transaction *Transaction `json:"transaction,omitempty"`
}

type RedeemResult struct {
	Success         bool         `json:"success"`
	Error           string       `json:"error,omitempty"`
	NewBalance      int          `json:"newBalance"`
	RedemptionValue float64      `json:"redemptionValue"`
	Transaction     *Transaction `json:"transaction,omitempty"`
}

type BadgeResult struct {
	Success       bool   `json:"success"`
	Error         string `json:"error,omitempty"`
	Badge         *Badge `json:"badge,omitempty"`
	PointsAwarded int    `json:"pointsAwarded"`
	NewBalance    int    `json:"newBalance"`
}

type BookingResult struct {
	Success       bool            `json:"success"`
	Error         string          `json:"error,omitempty"`
	BookingID     string          `json:"bookingId,omitempty"`
	Points        PointsBreakdown `json:"points"`
	NewBalance    int             `json:"newBalance"`
	TotalPoints   int             `json:"totalPoints"`
	TotalBookings int             `json:"totalBookings"`
	TierUpgrade   *TierUpgrade    `json:"tierUpgrade"`
	BadgeAwarded  *Badge          `json:"badgeAwarded,omitempty"`
	Transaction   *Transaction    `json:"transaction,omitempty"`
}

type ReferralResult struct {
	Success       bool   `json:"success"`
	Error         string `json:"error,omitempty"`
	Referee       string `json:"referee"`
	Status        string `json:"status"`
	PointsAwarded int    `json:"pointsAwarded"`
	NewBalance    int    `json:"newBalance"`
	TotalEarned   int    `json:"totalEarned"`
	BadgeAwarded  *Badge `json:"badgeAwarded,omitempty"`
}
