// internal/workers/loyalty/get-loyalty-summary/models.go
package getloyaltysummary

import "travel-workers/internal/loyalty"

type Input struct {
	UserID string `json:"userId"`
	// BookingAmount, when set, adds a points preview for a booking of that size.
	BookingAmount float64 `json:"bookingAmount,omitempty"`
	Recent        int     `json:"recentTransactions,omitempty"`
}

type Output struct {
	UserID          string                   `json:"userId"`
	AvailablePoints int                      `json:"availablePoints"`
	TotalPoints     int                      `json:"totalPoints"`
	Tier            loyalty.Tier             `json:"tier"`
	TierProgress    float64                  `json:"tierProgress"`
	NextTier        loyalty.NextTierInfo     `json:"nextTier"`
	Badges          []loyalty.Badge          `json:"badges"`
	ReferralCode    string                   `json:"referralCode"`
	TotalBookings   int                      `json:"totalBookings"`
	History         []loyalty.Transaction    `json:"history"`
	PointsPreview   *loyalty.PointsBreakdown `json:"pointsPreview,omitempty"`
}
