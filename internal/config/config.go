// Package config loads and validates application configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration.
type Config struct {
	// Server settings.
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// Database settings.
	DatabaseURL  string // Postgres connection string. Required, no default.
	PoolMinConns int32
	PoolMaxConns int32

	// Rate limiting for ingest endpoints. Off unless explicitly enabled:
	// ingest has no backpressure policy of its own beyond the pool's.
	RateLimitEnabled bool
	RateLimitRate    float64 // sustained requests per second per client
	RateLimitBurst   int

	// OTEL settings.
	OTELEndpoint string
	OTELInsecure bool
	ServiceName  string

	// Operational settings.
	LogLevel            string
	MaxRequestBodyBytes int64
}

// Load reads configuration from environment variables with sensible defaults.
// The database connection string has no default: starting without one is a
// configuration error, not something to paper over with localhost.
func Load() (Config, error) {
	cfg := Config{
		Port:                envInt("GAMELENS_PORT", 8080),
		ReadTimeout:         envDuration("GAMELENS_READ_TIMEOUT", 30*time.Second),
		WriteTimeout:        envDuration("GAMELENS_WRITE_TIMEOUT", 30*time.Second),
		DatabaseURL:         os.Getenv("PGSQL_CONN"),
		PoolMinConns:        int32(envInt("GAMELENS_POOL_MIN_CONNS", 1)),
		PoolMaxConns:        int32(envInt("GAMELENS_POOL_MAX_CONNS", 10)),
		RateLimitEnabled:    envBool("GAMELENS_RATE_LIMIT_ENABLED", false),
		RateLimitRate:       envFloat("GAMELENS_RATE_LIMIT_RATE", 50),
		RateLimitBurst:      envInt("GAMELENS_RATE_LIMIT_BURST", 200),
		OTELEndpoint:        envStr("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		OTELInsecure:        envBool("OTEL_EXPORTER_OTLP_INSECURE", false),
		ServiceName:         envStr("OTEL_SERVICE_NAME", "gamelens"),
		LogLevel:            envStr("GAMELENS_LOG_LEVEL", "info"),
		MaxRequestBodyBytes: int64(envInt("GAMELENS_MAX_REQUEST_BODY_BYTES", 1*1024*1024)), // 1 MB default
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks that required configuration is present.
func (c Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("config: PGSQL_CONN is required")
	}
	if c.PoolMaxConns < c.PoolMinConns {
		return fmt.Errorf("config: GAMELENS_POOL_MAX_CONNS must be >= GAMELENS_POOL_MIN_CONNS")
	}
	if c.MaxRequestBodyBytes <= 0 {
		return fmt.Errorf("config: GAMELENS_MAX_REQUEST_BODY_BYTES must be positive")
	}
	return nil
}

func envStr(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultVal
}

func envFloat(key string, defaultVal float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func envBool(key string, defaultVal bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return defaultVal
}

func envDuration(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultVal
}
