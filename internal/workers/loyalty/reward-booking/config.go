// internal/workers/loyalty/reward-booking/config.go
package rewardbooking

import "time"

type Config struct {
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{Timeout: 10 * time.Second}
}
