package loyalty

import "context"

// Summary is the read model returned to clients.
type Summary struct {
	Account  *Account     `json:"account"`
	Tier     Tier         `json:"tier"`
	NextTier NextTierInfo `json:"nextTier"`
	Badges   []Badge      `json:"badges"`
}

// GetSummary loads the account and expands its tier and badges. History is
// truncated to recent entries when recent > 0.
func (l *Ledger) GetSummary(ctx context.Context, userID string, recent int) *Summary {
	acct := l.GetLoyaltyData(ctx, userID)
	if recent > 0 && len(acct.History) > recent {
		acct.History = acct.History[:recent]
	}

	badges := make([]Badge, 0, len(acct.EarnedBadges))
	for _, id := range acct.EarnedBadges {
		if b, ok := BadgeByID(id); ok {
			badges = append(badges, b)
		}
	}

	return &Summary{
		Account:  acct,
		Tier:     GetUserTier(acct.TotalPoints),
		NextTier: GetNextTierInfo(acct.TotalPoints),
		Badges:   badges,
	}
}
