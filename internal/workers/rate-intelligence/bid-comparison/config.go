// internal/workers/rate-intelligence/bid-comparison/config.go
package bidcomparison

import "time"

type Config struct {
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 10 * time.Second,
	}
}
