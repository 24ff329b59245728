// internal/workers/loyalty/redeem-points/models.go
package redeempoints

import "travel-workers/internal/loyalty"

type Input struct {
	UserID   string                 `json:"userId"`
	Amount   int                    `json:"amount"`
	Purpose  string                 `json:"purpose"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

type Output struct {
	loyalty.RedeemResult
	ErrorCode string `json:"errorCode,omitempty"`
}
