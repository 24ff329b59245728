// Package loyalty implements the points ledger: tier-scaled booking rewards,
// redemptions, milestone badges and referral bonuses, persisted one JSON
// document per user.
package loyalty

import "fmt"

type Tier struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	MinPoints    int      `json:"minPoints"`
	CashbackRate float64  `json:"cashbackRate"`
	Benefits     []string `json:"benefits"`
}

// Tiers is ordered by MinPoints ascending. Bronze is the fallback tier.
var Tiers = []Tier{
	{
		ID:           "bronze",
		Name:         "Bronze",
		MinPoints:    0,
		CashbackRate: 0.05,
		Benefits: []string{
			"5% points back on every booking",
			"Member-only deals",
			"Birthday bonus points",
		},
	},
	{
		ID:           "silver",
		Name:         "Silver",
		MinPoints:    5000,
		CashbackRate: 0.07,
		Benefits: []string{
			"7% points back on every booking",
			"Priority email support",
			"Free cancellation on selected stays",
			"Early access to sales",
		},
	},
	{
		ID:           "gold",
		Name:         "Gold",
		MinPoints:    15000,
		CashbackRate: 0.10,
		Benefits: []string{
			"10% points back on every booking",
			"Dedicated travel consultant",
			"Room upgrades when available",
			"Late checkout",
			"Airport lounge day passes",
		},
	},
	{
		ID:           "platinum",
		Name:         "Platinum",
		MinPoints:    50000,
		CashbackRate: 0.15,
		Benefits: []string{
			"15% points back on every booking",
			"24/7 concierge",
			"Guaranteed upgrades",
			"Complimentary airport transfers",
			"Exclusive experiences",
		},
	},
}

// GetUserTier returns the highest tier whose threshold totalPoints reaches.
func GetUserTier(totalPoints int) Tier {
	tier := Tiers[0]
	for _, t := range Tiers {
		if t.MinPoints <= totalPoints {
			tier = t
		}
	}
	return tier
}

func nextTier(current Tier) (Tier, bool) {
	for i, t := range Tiers {
		if t.ID == current.ID && i+1 < len(Tiers) {
			return Tiers[i+1], true
		}
	}
	return Tier{}, false
}

// TierProgress is the percentage travelled from the current tier's threshold
// to the next one, clamped to [0, 100]. It is 100 at the top tier.
func TierProgress(totalPoints int) float64 {
	current := GetUserTier(totalPoints)
	next, ok := nextTier(current)
	if !ok {
		return 100
	}
	p := 100 * float64(totalPoints-current.MinPoints) / float64(next.MinPoints-current.MinPoints)
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}

type NextTierInfo struct {
	IsMaxTier    bool    `json:"isMaxTier"`
	Message      string  `json:"message,omitempty"`
	CurrentTier  Tier    `json:"currentTier"`
	NextTier     *Tier   `json:"nextTier,omitempty"`
	PointsNeeded int     `json:"pointsNeeded,omitempty"`
	Progress     float64 `json:"progress"`
}

func GetNextTierInfo(currentPoints int) NextTierInfo {
	current := GetUserTier(currentPoints)
	next, ok := nextTier(current)
	if !ok {
		return NextTierInfo{
			IsMaxTier:   true,
			Message:     fmt.Sprintf("You have reached %s, our highest tier", current.Name),
			CurrentTier: current,
			Progress:    100,
		}
	}
	return NextTierInfo{
		CurrentTier:  current,
		NextTier:     &next,
		PointsNeeded: next.MinPoints - currentPoints,
		Progress:     TierProgress(currentPoints),
	}
}
