// internal/models/booking.go
package models

// Booking is the completion notice the loyalty ledger is rewarded from.
type Booking struct {
	ID          string  `json:"id"`
	Amount      float64 `json:"amount"`
	UserID      string  `json:"userId"`
	Type        string  `json:"type,omitempty"`
	CheckInDate string  `json:"checkInDate,omitempty"`
}
