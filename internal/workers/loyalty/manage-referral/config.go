// internal/workers/loyalty/manage-referral/config.go
package managereferral

import "time"

type Config struct {
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{Timeout: 10 * time.Second}
}
