// internal/models/notification.go
package models

// Notification types raised by the loyalty ledger.
const (
	NotificationPointsEarned = "points_earned"
	NotificationTierUpgrade  = "tier_upgrade"
	NotificationBadgeEarned  = "badge_earned"
)

type Notification struct {
	ID        string                 `json:"id"`
	UserID    string                 `json:"userId"`
	Type      string                 `json:"type"`
	Title     string                 `json:"title"`
	Body      string                 `json:"body"`
	Payload   map[string]interface{} `json:"payload,omitempty"`
	CreatedAt string                 `json:"createdAt"`
}
