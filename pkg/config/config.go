package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the application configuration
type Config struct {
	Environment           string   `yaml:"environment"`
	ServerPort            int      `yaml:"server_port"`
	LogLevel              string   `yaml:"log_level"`
	DatabaseDriver        string   `yaml:"database_driver"`
	DatabaseURL           string   `yaml:"database_url"`
	RedisURL              string   `yaml:"redis_url"`
	JWTSecret             string   `yaml:"jwt_secret"`
	SessionTTLMinutes     int      `yaml:"session_ttl_minutes"`
	RateLimitPerMinute    int      `yaml:"rate_limit_per_minute"`
	StatsIntervalSeconds  int      `yaml:"stats_interval_seconds"`
	ReportCacheTTLSeconds int      `yaml:"report_cache_ttl_seconds"`
	CORSAllowedOrigins    []string `yaml:"cors_allowed_origins"`
	OTLPEndpoint          string   `yaml:"otlp_endpoint"`
	TraceSampleRatio      float64  `yaml:"trace_sample_ratio"`
}

// Default returns the development configuration
func Default() *Config {
	return &Config{
		Environment:           "development",
		ServerPort:            8080,
		LogLevel:              "info",
		DatabaseDriver:        "sqlite3",
		DatabaseURL:           "leadtrack.db",
		JWTSecret:             "change-me-in-production",
		SessionTTLMinutes:     24 * 60,
		RateLimitPerMinute:    600,
		StatsIntervalSeconds:  60,
		ReportCacheTTLSeconds: 30,
		TraceSampleRatio:      1,
		CORSAllowedOrigins: []string{
			"http://localhost:5173",
			"http://localhost:3000",
		},
	}
}

// Load builds the configuration from defaults, then the YAML file named by
// LEADTRACK_CONFIG if set, then environment variables.
func Load() (*Config, error) {
	cfg := Default()

	if path := os.Getenv("LEADTRACK_CONFIG"); path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.mergeEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) mergeEnv() error {
	c.Environment = getEnv("ENVIRONMENT", c.Environment)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.DatabaseDriver = getEnv("DATABASE_DRIVER", c.DatabaseDriver)
	c.DatabaseURL = getEnv("DATABASE_URL", c.DatabaseURL)
	c.RedisURL = getEnv("REDIS_URL", c.RedisURL)
	c.JWTSecret = getEnv("JWT_SECRET", c.JWTSecret)
	c.CORSAllowedOrigins = parseCSVEnv("CORS_ALLOWED_ORIGINS", c.CORSAllowedOrigins)
	c.OTLPEndpoint = getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", c.OTLPEndpoint)

	if v := os.Getenv("TRACE_SAMPLE_RATIO"); v != "" {
		ratio, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid TRACE_SAMPLE_RATIO: %w", err)
		}
		c.TraceSampleRatio = ratio
	}

	ints := []struct {
		key string
		dst *int
	}{
		{"SERVER_PORT", &c.ServerPort},
		{"SESSION_TTL_MINUTES", &c.SessionTTLMinutes},
		{"RATE_LIMIT_PER_MINUTE", &c.RateLimitPerMinute},
		{"STATS_INTERVAL_SECONDS", &c.StatsIntervalSeconds},
		{"REPORT_CACHE_TTL_SECONDS", &c.ReportCacheTTLSeconds},
	}
	for _, it := range ints {
		v := os.Getenv(it.key)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", it.key, err)
		}
		*it.dst = n
	}
	return nil
}

// Validate rejects values the server cannot run with
func (c *Config) Validate() error {
	if c.ServerPort <= 0 || c.ServerPort > 65535 {
		return fmt.Errorf("invalid server port %d", c.ServerPort)
	}
	switch c.DatabaseDriver {
	case "sqlite3", "postgres":
	default:
		return fmt.Errorf("unsupported database driver %q", c.DatabaseDriver)
	}
	if c.SessionTTLMinutes <= 0 {
		return fmt.Errorf("session ttl must be positive")
	}
	if c.RateLimitPerMinute <= 0 {
		return fmt.Errorf("rate limit must be positive")
	}
	if c.StatsIntervalSeconds <= 0 {
		return fmt.Errorf("stats interval must be positive")
	}
	if c.TraceSampleRatio < 0 || c.TraceSampleRatio > 1 {
		return fmt.Errorf("trace sample ratio %v outside [0, 1]", c.TraceSampleRatio)
	}
	return nil
}

// SessionTTL is the lifetime of a login session
func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLMinutes) * time.Minute
}

// StatsInterval is the period of the backlog worker
func (c *Config) StatsInterval() time.Duration {
	return time.Duration(c.StatsIntervalSeconds) * time.Second
}

// ReportCacheTTL is how long an overview stays cached; zero disables caching
func (c *Config) ReportCacheTTL() time.Duration {
	return time.Duration(c.ReportCacheTTLSeconds) * time.Second
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseCSVEnv(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			trimmed := strings.TrimSpace(p)
			if trimmed != "" {
				out = append(out, trimmed)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return defaultValue
}
