// internal/workers/search/interpret-search-query/config.go
package interpretsearchquery

import "time"

type Config struct {
	Timeout       time.Duration
	MaxQueryLen   int
	EnableAliases bool
}

func LoadConfig() *Config {
	return &Config{
		Timeout:       5 * time.Second,
		MaxQueryLen:   256,
		EnableAliases: true,
	}
}
