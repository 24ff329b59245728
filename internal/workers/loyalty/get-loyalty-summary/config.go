// internal/workers/loyalty/get-loyalty-summary/config.go
package getloyaltysummary

import "time"

type Config struct {
	Timeout     time.Duration
	RecentLimit int
}

func LoadConfig() *Config {
	return &Config{
		Timeout:     5 * time.Second,
		RecentLimit: 10,
	}
}
