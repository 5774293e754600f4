// internal/common/config/config.go
package config

import (
	"fmt"
	"time"

	"talent-matching-workers/internal/common/observability"
	"talent-matching-workers/internal/models"
	"talent-matching-workers/internal/scoring"
)

// Config is the main application configuration struct.
type Config struct {
	App              AppConfig               `mapstructure:"app"`
	Camunda          CamundaConfig           `mapstructure:"camunda"`
	Database         DatabaseConfig          `mapstructure:"database"`
	Workers          map[string]WorkerConfig `mapstructure:"workers"`
	Matching         MatchingConfig          `mapstructure:"matching"`
	RateIntelligence RateIntelligenceConfig  `mapstructure:"rate_intelligence"`
	Integrations     IntegrationConfig       `mapstructure:"integrations"`
	Observability    observability.Config    `mapstructure:"observability"`
	Health           HealthConfig            `mapstructure:"health"`
	Logging          LoggingConfig           `mapstructure:"logging"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type CamundaConfig struct {
	BrokerAddress  string `mapstructure:"broker_address"`
	MaxJobsActive  int    `mapstructure:"max_jobs_active"`
	Timeout        int    `mapstructure:"timeout"`         // milliseconds
	RequestTimeout int    `mapstructure:"request_timeout"` // milliseconds
	TLS            bool   `mapstructure:"tls"`
}

type DatabaseConfig struct {
	Postgres      PostgresConfig      `mapstructure:"postgres"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
	Redis         RedisConfig         `mapstructure:"redis"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
	MigrateOnStart bool   `mapstructure:"migrate_on_start"`
}

// GetDSN returns the PostgreSQL connection string
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type ElasticsearchConfig struct {
	Addresses  []string `mapstructure:"addresses"`
	Username   string   `mapstructure:"username"`
	Password   string   `mapstructure:"password"`
	SSLEnabled bool     `mapstructure:"ssl_enabled"`
	URL        string   `mapstructure:"url"`
}

// GetURL returns the first address or the URL field
func (e ElasticsearchConfig) GetURL() string {
	if e.URL != "" {
		return e.URL
	}
	if len(e.Addresses) > 0 {
		return e.Addresses[0]
	}
	return ""
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// WorkerConfig holds the core settings applicable to every worker.
type WorkerConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	MaxJobsActive int  `mapstructure:"max_jobs_active"`
	Timeout       int  `mapstructure:"timeout"`     // milliseconds
	MaxRetries    int  `mapstructure:"max_retries"` // For error handling
}

// --- Domain Configuration ---

const (
	CandidateStorePostgres      = "postgres"
	CandidateStoreElasticsearch = "elasticsearch"
)

// MatchingConfig holds settings for matching runs.
type MatchingConfig struct {
	CandidateStore     string         `mapstructure:"candidate_store"` // postgres | elasticsearch
	CandidateIndex     string         `mapstructure:"candidate_index"`
	PoolSize           int            `mapstructure:"pool_size"`
	MaxCandidates      int            `mapstructure:"max_candidates"`
	Timeout            int            `mapstructure:"timeout"` // milliseconds
	ExpiringWindowDays int            `mapstructure:"expiring_window_days"`
	ProfileCacheTTL    int            `mapstructure:"profile_cache_ttl"` // seconds
	Retry              RetryConfig    `mapstructure:"retry"`
	Tuning             scoring.Tuning `mapstructure:"tuning"`
}

type RetryConfig struct {
	MaxRetries int `mapstructure:"max_retries"`
	BaseDelay  int `mapstructure:"base_delay"` // milliseconds
	MaxDelay   int `mapstructure:"max_delay"`  // milliseconds
}

// RateIntelligenceConfig holds settings for market-rate lookups and the
// segment cache warmer.
type RateIntelligenceConfig struct {
	MinSampleSize         int                      `mapstructure:"min_sample_size"`
	CacheTTL              int                      `mapstructure:"cache_ttl"` // seconds
	ObservationWindowDays int                      `mapstructure:"observation_window_days"`
	WarmSchedule          string                   `mapstructure:"warm_schedule"`
	WarmTopN              int                      `mapstructure:"warm_top_n"`
	WarmTimeout           int                      `mapstructure:"warm_timeout"` // milliseconds
	HotSegments           []models.MarketRateQuery `mapstructure:"hot_segments"`
}

// IntegrationConfig holds settings for external services.
type IntegrationConfig struct {
	AWS struct {
		Region string `mapstructure:"region"`
		SNS    struct {
			Enabled          bool   `mapstructure:"enabled"`
			MatchRunTopicARN string `mapstructure:"match_run_topic_arn"`
		} `mapstructure:"sns"`
	} `mapstructure:"aws"`
}

type HealthConfig struct {
	Port int `mapstructure:"port"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

// Days converts a day count from config to time.Duration.
func Days(n int) time.Duration {
	return time.Duration(n) * 24 * time.Hour
}
