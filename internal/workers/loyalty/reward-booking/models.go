// internal/workers/loyalty/reward-booking/models.go
package rewardbooking

import (
	"travel-workers/internal/loyalty"
	"travel-workers/internal/models"
)

// Input is the booking-completion notice {id, amount, userId, type,
// checkInDate}. Processes that prefix the fields (bookingId, bookingType)
// are accepted too; the plain names win when both are set.
type Input struct {
	ID          string  `json:"id"`
	Amount      float64 `json:"amount"`
	UserID      string  `json:"userId"`
	Type        string  `json:"type,omitempty"`
	CheckInDate string  `json:"checkInDate,omitempty"`

	BookingID   string `json:"bookingId,omitempty"`
	BookingType string `json:"bookingType,omitempty"`
}

func (in Input) toBooking() models.Booking {
	return models.Booking{
		ID:          firstNonEmpty(in.ID, in.BookingID),
		Amount:      in.Amount,
		UserID:      in.UserID,
		Type:        firstNonEmpty(in.Type, in.BookingType),
		CheckInDate: in.CheckInDate,
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

type Output struct {
	loyalty.BookingResult
	ErrorCode string `json:"errorCode,omitempty"`
}
