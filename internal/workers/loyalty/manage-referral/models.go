// internal/workers/loyalty/manage-referral/models.go
package managereferral

import "travel-workers/internal/loyalty"

const (
	ActionAdd     = "add"
	ActionConvert = "convert"
)

type Input struct {
	Action  string `json:"action"`
	UserID  string `json:"userId"`
	Referee string `json:"referee"`
}

type Output struct {
	loyalty.ReferralResult
	ErrorCode string `json:"errorCode,omitempty"`
}
