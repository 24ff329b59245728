package loyalty

import (
	"context"
	"strings"
)

const (
	ReferralPending   = "pending"
	ReferralConverted = "converted"
)

// AddReferral records referee as a pending referral of userID.
func (l *Ledger) AddReferral(ctx context.Context, userID, referee string) (*ReferralResult, error) {
	referee = strings.TrimSpace(referee)
	if userID == "" {
		return &ReferralResult{Error: ErrMissingUserID.Error(), Referee: referee}, ErrMissingUserID
	}
	if referee == "" {
		return &ReferralResult{Error: ErrMissingReferee.Error()}, ErrMissingReferee
	}

	m, release := l.begin(ctx, userID)
	defer release()

	acct, err := l.loadForUpdate(ctx, userID)
	if err != nil {
		return &ReferralResult{Error: err.Error(), Referee: referee}, err
	}
	if acct.knowsReferee(referee) {
		return &ReferralResult{Error: ErrReferralExists.Error(), Referee: referee}, ErrReferralExists
	}

	acct.Referrals.Pending = append(acct.Referrals.Pending, Referral{
		Referee:   referee,
		CreatedAt: l.timestamp(),
	})
	m.acct = acct
	if err := l.commit(ctx, m); err != nil {
		return &ReferralResult{Error: err.Error(), Referee: referee}, err
	}

	return &ReferralResult{
		Success:     true,
		Referee:     referee,
		Status:      ReferralPending,
		NewBalance:  acct.AvailablePoints,
		TotalEarned: acct.Referrals.TotalEarned,
	}, nil
}

// ConvertReferral marks a pending referral as converted and pays the
// referral bonus. The first conversion also earns the ambassador badge.
func (l *Ledger) ConvertReferral(ctx context.Context, userID, referee string) (*ReferralResult, error) {
	referee = strings.TrimSpace(referee)
	if userID == "" {
		return &ReferralResult{Error: ErrMissingUserID.Error(), Referee: referee}, ErrMissingUserID
	}

	m, release := l.begin(ctx, userID)
	defer release()

	acct, err := l.loadForUpdate(ctx, userID)
	if err != nil {
		return &ReferralResult{Error: err.Error(), Referee: referee}, err
	}
	idx := acct.pendingReferral(referee)
	if idx < 0 {
		return &ReferralResult{Error: ErrReferralNotFound.Error(), Referee: referee}, ErrReferralNotFound
	}

	ref := acct.Referrals.Pending[idx]
	ref.ConvertedAt = l.timestamp()
	acct.Referrals.Pending = append(acct.Referrals.Pending[:idx:idx], acct.Referrals.Pending[idx+1:]...)
	acct.Referrals.Converted = append(acct.Referrals.Converted, ref)
	acct.Referrals.TotalEarned += l.referralBonus

	m.acct = acct
	m.earn(l.newID(), l.timestamp(), l.referralBonus, "Referral: "+referee, map[string]interface{}{
		"referee": referee,
	})

	var awarded *Badge
	if badge, ok := BadgeByID("ambassador"); ok && !acct.HasBadge(badge.ID) {
		l.awardBadge(m, badge)
		awarded = &badge
	}

	if err := l.commit(ctx, m); err != nil {
		return &ReferralResult{Error: err.Error(), Referee: referee}, err
	}

	l.logger.Info("referral converted", map[string]interface{}{
		"userId":  userID,
		"referee": referee,
		"bonus":   l.referralBonus,
	})
	return &ReferralResult{
		Success:       true,
		Referee:       referee,
		Status:        ReferralConverted,
		PointsAwarded: l.referralBonus,
		NewBalance:    acct.AvailablePoints,
		TotalEarned:   acct.Referrals.TotalEarned,
		BadgeAwarded:  awarded,
	}, nil
}
