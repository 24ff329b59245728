// internal/workers/loyalty/award-badge/config.go
package awardbadge

import "time"

type Config struct {
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{Timeout: 10 * time.Second}
}
