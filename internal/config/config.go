package config

import (
	"encoding/json"
	"os"
	"strconv"
	"time"

	"github.com/oriys/polaris/internal/cache"
)

// RedisConfig holds Redis connection settings for the shared decision cache.
type RedisConfig struct {
	Addr      string `json:"addr"`
	Password  string `json:"password"`
	DB        int    `json:"db"`
	KeyPrefix string `json:"key_prefix"`
}

// CacheConfig selects and tunes the decision cache backend.
type CacheConfig struct {
	Backend string        `json:"backend"` // "memory" (default) or "redis"
	TTL     time.Duration `json:"ttl"`
	Redis   RedisConfig   `json:"redis"`
}

// PostgresConfig holds settings for Postgres-backed overrides/membership.
type PostgresConfig struct {
	DSN string `json:"dsn"`
}

// TelemetryConfig holds tracing settings.
type TelemetryConfig struct {
	Enabled    bool    `json:"enabled"`
	Exporter   string  `json:"exporter"` // otlp-http, stdout
	Endpoint   string  `json:"endpoint"`
	SampleRate float64 `json:"sample_rate"`
}

// AuditConfig holds decision audit log settings.
type AuditConfig struct {
	Console bool   `json:"console"`
	File    string `json:"file"`
}

// Config is the central configuration struct embedding all component configs.
type Config struct {
	LogLevel  string          `json:"log_level"`
	LogFormat string          `json:"log_format"` // "text" or "json"
	Cache     CacheConfig     `json:"cache"`
	Postgres  PostgresConfig  `json:"postgres"`
	Telemetry TelemetryConfig `json:"telemetry"`
	Audit     AuditConfig     `json:"audit"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		LogLevel:  "info",
		LogFormat: "text",
		Cache: CacheConfig{
			Backend: "memory",
			TTL:     cache.DefaultTTL,
			Redis: RedisConfig{
				Addr:      "localhost:6379",
				KeyPrefix: "polaris:decision:",
			},
		},
		Telemetry: TelemetryConfig{
			Enabled:    false,
			Exporter:   "otlp-http",
			Endpoint:   "localhost:4318",
			SampleRate: 1.0,
		},
	}
}

// LoadFromFile loads configuration from a JSON file.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := DefaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromEnv applies environment variable overrides to the config.
func LoadFromEnv(cfg *Config) {
	if v := os.Getenv("POLARIS_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("POLARIS_LOG_FORMAT"); v != "" {
		cfg.LogFormat = v
	}
	if v := os.Getenv("POLARIS_CACHE_BACKEND"); v != "" {
		cfg.Cache.Backend = v
	}
	if v := os.Getenv("POLARIS_CACHE_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Cache.TTL = d
		}
	}
	if v := os.Getenv("POLARIS_REDIS_ADDR"); v != "" {
		cfg.Cache.Redis.Addr = v
	}
	if v := os.Getenv("POLARIS_REDIS_PASSWORD"); v != "" {
		cfg.Cache.Redis.Password = v
	}
	if v := os.Getenv("POLARIS_REDIS_DB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Cache.Redis.DB = n
		}
	}
	if v := os.Getenv("POLARIS_POSTGRES_DSN"); v != "" {
		cfg.Postgres.DSN = v
	}
	if v := os.Getenv("POLARIS_OTEL_ENDPOINT"); v != "" {
		cfg.Telemetry.Enabled = true
		cfg.Telemetry.Endpoint = v
	}
	if v := os.Getenv("POLARIS_AUDIT_FILE"); v != "" {
		cfg.Audit.File = v
	}
}

// NewDecisionCache builds the configured decision cache backend.
func (c *Config) NewDecisionCache() cache.DecisionCache {
	switch c.Cache.Backend {
	case "redis":
		return cache.NewRedisCache(cache.RedisCacheConfig{
			Addr:      c.Cache.Redis.Addr,
			Password:  c.Cache.Redis.Password,
			DB:        c.Cache.Redis.DB,
			KeyPrefix: c.Cache.Redis.KeyPrefix,
			TTL:       c.Cache.TTL,
		})
	default:
		return cache.NewInMemoryCache(c.Cache.TTL)
	}
}
