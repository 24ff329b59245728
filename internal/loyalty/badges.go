package loyalty

type Badge struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Points      int    `json:"points"`
}

var Badges = []Badge{
	{ID: "wanderer", Name: "Wanderer", Description: "Completed your first booking", Points: 100},
	{ID: "explorer", Name: "Explorer", Description: "Completed 5 bookings", Points: 250},
	{ID: "adventurer", Name: "Adventurer", Description: "Completed 10 bookings", Points: 500},
	{ID: "globetrotter", Name: "Globetrotter", Description: "Completed 25 bookings", Points: 1000},
	{ID: "ambassador", Name: "Ambassador", Description: "A friend you referred made their first booking", Points: 200},
}

// ActivityBookingCompleted is the activity type that drives booking milestones.
const ActivityBookingCompleted = "booking_completed"

// bookingMilestones awards on exact counts only. A count that skips a
// milestone never earns that badge later.
var bookingMilestones = map[int]string{
	1:  "wanderer",
	5:  "explorer",
	10: "adventurer",
	25: "globetrotter",
}

func BadgeByID(id string) (Badge, bool) {
	for _, b := range Badges {
		if b.ID == id {
			return b, true
		}
	}
	return Badge{}, false
}

// milestoneBadge returns the badge id for an activity, if any.
func milestoneBadge(activityType string, data ActivityData) (string, bool) {
	if activityType != ActivityBookingCompleted {
		return "", false
	}
	id, ok := bookingMilestones[data.TotalBookings]
	return id, ok
}

// ActivityData carries the counters CheckBadgeEligibility inspects.
type ActivityData struct {
	TotalBookings int `json:"totalBookings"`
}
