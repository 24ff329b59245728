// internal/workers/loyalty/redeem-points/config.go
package redeempoints

import "time"

type Config struct {
	Timeout time.Duration
	// MaxPerRedemption caps a single redemption; zero means no cap.
	MaxPerRedemption int
}

func LoadConfig() *Config {
	return &Config{Timeout: 10 * time.Second}
}
