// internal/workers/rate-intelligence/budget-recommendation/config.go
package budgetrecommendation

import "time"

type Config struct {
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 10 * time.Second,
	}
}
