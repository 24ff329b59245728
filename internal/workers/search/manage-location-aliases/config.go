// internal/workers/search/manage-location-aliases/config.go
package managelocationaliases

import "time"

type Config struct {
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{Timeout: 5 * time.Second}
}
