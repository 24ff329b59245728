package loyalty

import (
	"errors"

	apperrors "travel-workers/internal/common/errors"
)

var ruleCodes = []struct {
	err  error
	code apperrors.ErrorCode
}{
	{ErrInsufficientPoints, apperrors.ErrCodeInsufficientPoints},
	{ErrInvalidAmount, apperrors.ErrCodeInvalidAmount},
	{ErrBadgeNotFound, apperrors.ErrCodeBadgeNotFound},
	{ErrBadgeAlreadyEarned, apperrors.ErrCodeBadgeAlreadyEarned},
	{ErrBookingAlreadyRewarded, apperrors.ErrCodeBookingRewarded},
	{ErrReferralNotFound, apperrors.ErrCodeReferralNotFound},
	{ErrReferralExists, apperrors.ErrCodeReferralExists},
}

// ToStandardError maps a ledger error onto the shared job error codes.
func ToStandardError(err error) *apperrors.StandardError {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrStorageUnavailable):
		return apperrors.NewStorageUnavailableError("loyalty", err)
	case errors.Is(err, ErrMissingBookingFields):
		return apperrors.NewInvalidBookingError(err.Error())
	case errors.Is(err, ErrMissingUserID), errors.Is(err, ErrMissingReferee):
		return apperrors.NewInvalidInputError(err.Error())
	}
	for _, rc := range ruleCodes {
		if errors.Is(err, rc.err) {
			return apperrors.NewBusinessRuleError(rc.code, rc.err.Error())
		}
	}
	return apperrors.Normalize(err)
}
