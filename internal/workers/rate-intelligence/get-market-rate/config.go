// internal/workers/rate-intelligence/get-market-rate/config.go
package getmarketrate

import "time"

type Config struct {
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 10 * time.Second,
	}
}
