package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config represents the client core configuration.
type Config struct {
	UserAPIBaseURL       string        `env:"USER_API_BASE_URL"`
	ConnectionAPIBaseURL string        `env:"CONNECTION_API_BASE_URL"`
	ImageBaseURL         string        `env:"IMAGE_BASE_URL"`
	RequestTimeout       time.Duration `env:"REQUEST_TIMEOUT"`
	ProbeTimeout         time.Duration `env:"PROBE_TIMEOUT"`
	ProfileCacheTTL      time.Duration `env:"PROFILE_CACHE_TTL"`
	MaxProbeConcurrency  int64         `env:"MAX_PROBE_CONCURRENCY"`
	LogLevel             string        `env:"LOG_LEVEL"`
	LogFormat            string        `env:"LOG_FORMAT"` // text|json
}

// DefaultConfig returns the default configuration for the client core.
func DefaultConfig() Config {
	return Config{
		UserAPIBaseURL:       "http://localhost:8092/api/v1/users",
		ConnectionAPIBaseURL: "http://localhost:8093/api/v1/connections",
		ImageBaseURL:         "http://localhost:8092",
		RequestTimeout:       15 * time.Second,
		ProbeTimeout:         5 * time.Second,
		ProfileCacheTTL:      5 * time.Minute,
		MaxProbeConcurrency:  4,
		LogLevel:             "info",
		LogFormat:            "text",
	}
}

// Load returns the default configuration overridden by environment variables.
func Load() (Config, error) {
	cfg := DefaultConfig()
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse environment config: %w", err)
	}
	return cfg, nil
}
