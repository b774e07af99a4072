package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
// Environment variables are read here and nowhere else.
type Config struct {
	Env  string // development, staging, production
	Port string // webhook listener port

	Database DatabaseConfig
	Redis    RedisConfig
	Elements ElementsConfig
	Sync     SyncConfig
	Flex     FlexConfig
	Notify   NotifyConfig

	LogLevel  string
	LogFormat string
}

// DatabaseConfig holds PostgreSQL configuration.
type DatabaseConfig struct {
	URL string

	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// RedisConfig holds Redis configuration. Redis backs the shared rate
// limiter and is optional; when disabled the limiter is a no-op.
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
}

// ElementsConfig holds the Elements Energies API configuration.
type ElementsConfig struct {
	BaseURL        string
	ClientsTimeout time.Duration // client list request deadline
	DayTimeout     time.Duration // per-day consumption request deadline
	RateLimit      int           // requests per second, 0 disables
}

// SyncConfig controls the incremental consumption sync.
type SyncConfig struct {
	LookbackDays int // history window for meters with no stored data
	Workers      int // worker pool size for per-client sync+compute
	IgnoreSCNOs  []string
}

// FlexConfig holds the flexibility metric parameters. The peak window
// and the off-peak threshold are operational choices, kept configurable.
type FlexConfig struct {
	PeakHours        []int   // hours counted as peak, e.g. 6-9 and 18-21
	OffPeakThreshold float64 // peak ratio below which the penalty applies
	PenaltyFactor    float64
}

// NotifyConfig holds the daily message dispatch configuration.
type NotifyConfig struct {
	GatewayURL string // message gateway endpoint; empty disables dispatch
	Timezone   string // wall-clock zone for send_time matching
}

// Load reads configuration from the environment, consulting .env first.
func Load() (*Config, error) {
	loadEnvFile()

	cfg := &Config{
		Env:  getEnv("ENV", "development"),
		Port: getEnv("PORT", "8091"),

		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 25),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 5),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", "1h"),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", "30m"),
		},

		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
		},

		Elements: ElementsConfig{
			BaseURL:        getEnv("ELEMENTS_BASE_URL", "https://ee.elementsenergies.com"),
			ClientsTimeout: getEnvAsDuration("ELEMENTS_CLIENTS_TIMEOUT", "30s"),
			DayTimeout:     getEnvAsDuration("ELEMENTS_DAY_TIMEOUT", "10s"),
			RateLimit:      getEnvAsInt("ELEMENTS_RATE_LIMIT", 0),
		},

		Sync: SyncConfig{
			LookbackDays: getEnvAsInt("SYNC_LOOKBACK_DAYS", 60),
			Workers:      getEnvAsInt("SYNC_WORKERS", 10),
			IgnoreSCNOs:  getEnvAsList("SYNC_IGNORE_SCNOS"),
		},

		Flex: FlexConfig{
			PeakHours:        getEnvAsHours("FLEX_PEAK_HOURS", "6-9,18-21"),
			OffPeakThreshold: getEnvAsFloat("FLEX_OFFPEAK_THRESHOLD", 0.3),
			PenaltyFactor:    getEnvAsFloat("FLEX_PENALTY_FACTOR", 0.7),
		},

		Notify: NotifyConfig{
			GatewayURL: getEnv("NOTIFY_GATEWAY_URL", ""),
			Timezone:   getEnv("NOTIFY_TIMEZONE", "Asia/Kolkata"),
		},

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks if required configuration values are set.
func (c *Config) validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	if c.Sync.LookbackDays <= 0 {
		return fmt.Errorf("SYNC_LOOKBACK_DAYS must be positive")
	}

	if c.Sync.Workers <= 0 {
		return fmt.Errorf("SYNC_WORKERS must be positive")
	}

	if c.Flex.OffPeakThreshold < 0 || c.Flex.OffPeakThreshold > 1 {
		return fmt.Errorf("FLEX_OFFPEAK_THRESHOLD must be within [0,1]")
	}

	if len(c.Flex.PeakHours) == 0 {
		return fmt.Errorf("FLEX_PEAK_HOURS must name at least one hour")
	}

	return nil
}

// loadEnvFile tries to load .env from multiple locations.
func loadEnvFile() {
	paths := []string{
		".env",
	}

	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}

// getEnvAsList parses a comma-separated list, dropping empty elements.
func getEnvAsList(key string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return nil
	}

	var values []string
	for _, part := range strings.Split(valueStr, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			values = append(values, trimmed)
		}
	}
	return values
}

// getEnvAsHours parses an hour set spec such as "6-9,18-21". Falls
// back to the default spec on any parse failure.
func getEnvAsHours(key string, defaultValue string) []int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	hours, err := ParseHourSet(valueStr)
	if err != nil {
		hours, _ = ParseHourSet(defaultValue)
	}
	return hours
}

// ParseHourSet parses "6-9,18-21" style hour specs into a sorted,
// de-duplicated hour list. Single hours and inclusive ranges are
// accepted; hours must be within 0..23.
func ParseHourSet(spec string) ([]int, error) {
	seen := make(map[int]bool)

	for _, part := range strings.Split(spec, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		lo, hi := part, part
		if idx := strings.Index(part, "-"); idx >= 0 {
			lo, hi = part[:idx], part[idx+1:]
		}

		start, err := strconv.Atoi(strings.TrimSpace(lo))
		if err != nil {
			return nil, fmt.Errorf("invalid hour %q: %w", lo, err)
		}
		end, err := strconv.Atoi(strings.TrimSpace(hi))
		if err != nil {
			return nil, fmt.Errorf("invalid hour %q: %w", hi, err)
		}

		if start > end || start < 0 || end > 23 {
			return nil, fmt.Errorf("invalid hour range %q", part)
		}

		for h := start; h <= end; h++ {
			seen[h] = true
		}
	}

	hours := make([]int, 0, len(seen))
	for h := range seen {
		hours = append(hours, h)
	}
	sort.Ints(hours)
	return hours, nil
}
