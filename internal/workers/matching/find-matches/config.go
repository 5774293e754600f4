// internal/workers/matching/find-matches/config.go
package findmatches

import "time"

type Config struct {
	// Timeout bounds the whole job, including candidate fetch.
	Timeout time.Duration
	// MaxRunTimeout caps the scoring budget a job may request via timeoutMs.
	MaxRunTimeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout:       30 * time.Second,
		MaxRunTimeout: 20 * time.Second,
	}
}
