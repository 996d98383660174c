package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/wealthsim/advisor/internal/feasibility"
	"github.com/wealthsim/advisor/internal/planner"
)

// Config is the advisor service configuration.
type Config struct {
	Server    ServerConfig        `yaml:"server"`
	Postgres  PostgresConfig      `yaml:"postgres"`
	Redis     RedisConfig         `yaml:"redis"`
	Scheduler SchedulerConfig     `yaml:"scheduler"`
	RateLimit RateLimitConfig     `yaml:"rate_limit"`
	Weights   feasibility.Weights `yaml:"weights"`
	Planner   planner.Config      `yaml:"planner"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host         string        `yaml:"host"`
	Port         int           `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	IdleTimeout  time.Duration `yaml:"idle_timeout"`
}

// PostgresConfig selects the profile store backend. An empty DSN keeps
// profiles in memory.
type PostgresConfig struct {
	DSN     string        `yaml:"dsn"`
	Timeout time.Duration `yaml:"timeout"`
}

// RedisConfig selects the cache backend. An empty address keeps the cache
// in process.
type RedisConfig struct {
	Addr     string        `yaml:"addr"`
	ScoreTTL time.Duration `yaml:"score_ttl"`
}

// SchedulerConfig controls the periodic re-prioritization job.
type SchedulerConfig struct {
	Enabled bool   `yaml:"enabled"`
	Spec    string `yaml:"spec"` // cron format, e.g. "0 6 * * *"
}

// RateLimitConfig bounds request throughput on the HTTP API.
type RateLimitConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	Burst             int     `yaml:"burst"`
}

// Default returns the production defaults.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Host:         "127.0.0.1",
			Port:         8080,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		Postgres: PostgresConfig{
			Timeout: 5 * time.Second,
		},
		Redis: RedisConfig{
			ScoreTTL: 5 * time.Minute,
		},
		Scheduler: SchedulerConfig{
			Enabled: false,
			Spec:    "0 6 * * *",
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 20,
			Burst:             40,
		},
		Weights: feasibility.DefaultWeights(),
		Planner: planner.DefaultConfig(),
	}
}

// Load reads configuration from a YAML file over the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config YAML: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// Validate checks the loaded configuration.
func (c Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server port out of range: %d", c.Server.Port)
	}
	if c.RateLimit.RequestsPerSecond <= 0 {
		return fmt.Errorf("requests_per_second must be positive")
	}
	if c.RateLimit.Burst <= 0 {
		return fmt.Errorf("rate limit burst must be positive")
	}
	if err := c.Weights.Validate(); err != nil {
		return err
	}
	if c.Planner.EmergencyLiquidityMin < 0 || c.Planner.MinReallocation < 0 {
		return fmt.Errorf("planner thresholds must be non-negative")
	}
	return nil
}
