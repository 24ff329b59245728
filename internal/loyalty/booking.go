package loyalty

import (
	"context"
	"fmt"

	"travel-workers/internal/common/validation"
	"travel-workers/internal/models"
)

// RewardBooking is the entry point for booking-completion notices. It prices
// the booking at the user's current tier, awards the points, bumps the
// completed-booking counter and awards any milestone badge, all in one write.
// A booking id is rewarded at most once per account.
func (l *Ledger) RewardBooking(ctx context.Context, booking models.Booking) (*BookingResult, error) {
	if v := validation.ValidateBooking(booking); !v.Valid {
		l.logger.Warn("booking rejected", map[string]interface{}{
			"bookingId": booking.ID,
			"fields":    v.Fields(),
		})
		return &BookingResult{
			Error:     ErrMissingBookingFields.Error(),
			BookingID: booking.ID,
		}, fmt.Errorf("%w: %s", ErrMissingBookingFields, v.Error())
	}

	m, release := l.begin(ctx, booking.UserID)
	defer release()

	acct, err := l.loadForUpdate(ctx, booking.UserID)
	if err != nil {
		return &BookingResult{Error: err.Error(), BookingID: booking.ID}, err
	}
	if acct.bookingRewarded(booking.ID) {
		return &BookingResult{
			Error:         ErrBookingAlreadyRewarded.Error(),
			BookingID:     booking.ID,
			NewBalance:    acct.AvailablePoints,
			TotalPoints:   acct.TotalPoints,
			TotalBookings: acct.TotalBookings,
		}, ErrBookingAlreadyRewarded
	}

	points := pointsFor(booking.Amount, acct.TotalPoints)
	m.acct = acct

	var tx *Transaction
	var upgrade *TierUpgrade
	if points.TotalPoints > 0 {
		tx, upgrade = m.earn(l.newID(), l.timestamp(), points.TotalPoints, "Booking: "+booking.ID, map[string]interface{}{
			"bookingId":    booking.ID,
			"bookingType":  booking.Type,
			"checkInDate":  booking.CheckInDate,
			"amount":       booking.Amount,
			"basePoints":   points.BasePoints,
			"bonusPoints":  points.BonusPoints,
			"cashbackRate": points.CashbackRate,
		})
	}

	acct.TotalBookings++
	acct.RewardedBookings = append(acct.RewardedBookings, booking.ID)
	if n := len(acct.RewardedBookings); n > maxRewardedBookings {
		acct.RewardedBookings = acct.RewardedBookings[n-maxRewardedBookings:]
	}

	var awarded *Badge
	if id, ok := milestoneBadge(ActivityBookingCompleted, ActivityData{TotalBookings: acct.TotalBookings}); ok && !acct.HasBadge(id) {
		badge, _ := BadgeByID(id)
		upgrade = mergeUpgrades(upgrade, l.awardBadge(m, badge))
		awarded = &badge
	}

	if err := l.commit(ctx, m); err != nil {
		return &BookingResult{Error: err.Error(), BookingID: booking.ID}, err
	}

	l.logger.Info("booking rewarded", map[string]interface{}{
		"userId":        booking.UserID,
		"bookingId":     booking.ID,
		"points":        points.TotalPoints,
		"totalBookings": acct.TotalBookings,
		"tier":          acct.Tier,
	})
	return &BookingResult{
		Success:       true,
		BookingID:     booking.ID,
		Points:        points,
		NewBalance:    acct.AvailablePoints,
		TotalPoints:   acct.TotalPoints,
		TotalBookings: acct.TotalBookings,
		TierUpgrade:   upgrade,
		BadgeAwarded:  awarded,
		Transaction:   tx,
	}, nil
}
