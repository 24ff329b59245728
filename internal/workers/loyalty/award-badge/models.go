// internal/workers/loyalty/award-badge/models.go
package awardbadge

import "travel-workers/internal/loyalty"

// Input names a badge directly, or an activity whose milestone decides it.
type Input struct {
	UserID        string `json:"userId"`
	BadgeID       string `json:"badgeId,omitempty"`
	ActivityType  string `json:"activityType,omitempty"`
	TotalBookings int    `json:"totalBookings,omitempty"`
}

type Output struct {
	loyalty.BadgeResult
	Awarded   bool   `json:"awarded"`
	ErrorCode string `json:"errorCode,omitempty"`
}
