package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// ErrConfig marks a fatal startup configuration problem
var ErrConfig = errors.New("configuration error")

// Config holds all configuration for the application
// ⭐ SSOT: 모든 환경변수는 여기서만 읽음
// Built once at startup and treated as immutable afterwards.
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	// Data provider
	IEX IEXConfig

	// Redis (optional cache + distributed rate limit)
	Redis RedisConfig

	// Cache TTLs for slowly changing provider data
	Cache CacheConfig

	// Valuation assumptions YAML
	AssumptionsFile string

	// Watchlist job
	Watch WatchConfig

	// Logging
	LogLevel  string
	LogFormat string
}

// IEXConfig holds financial data provider configuration
type IEXConfig struct {
	APIKey     string
	BaseURL    string
	Timeout    time.Duration
	MaxRetries int
	RateLimit  int // requests per second
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
}

// CacheConfig holds provider cache TTLs
type CacheConfig struct {
	StatsTTL    time.Duration
	TreasuryTTL time.Duration
}

// WatchConfig holds the scheduled watchlist configuration
type WatchConfig struct {
	Schedule string
	Tickers  []string
}

// Load reads configuration from environment variables
// ⭐ SSOT: 이 함수만 os.Getenv()를 호출함
func Load() (*Config, error) {
	return LoadFrom("")
}

// LoadFrom loads an explicit .env file first (if given), then the environment.
func LoadFrom(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("%w: load %s: %v", ErrConfig, envFile, err)
		}
	} else {
		loadEnvFile()
	}

	cfg := &Config{
		// Server
		Port: getEnv("PORT", "8080"),
		Env:  getEnv("ENV", "development"),

		// Data provider
		IEX: IEXConfig{
			APIKey:     getEnv("IEX_API_KEY", ""),
			BaseURL:    strings.TrimRight(getEnv("IEX_API_URL", "https://cloud.iexapis.com/stable"), "/"),
			Timeout:    getEnvAsDuration("IEX_TIMEOUT", "30s"),
			MaxRetries: getEnvAsInt("IEX_MAX_RETRIES", 3),
			RateLimit:  getEnvAsInt("IEX_RATE_LIMIT", 10),
		},

		// Redis
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
		},

		Cache: CacheConfig{
			StatsTTL:    getEnvAsDuration("CACHE_TTL_STATS", "1h"),
			TreasuryTTL: getEnvAsDuration("CACHE_TTL_TREASURY", "6h"),
		},

		AssumptionsFile: getEnv("ASSUMPTIONS_FILE", "config/valuation.yaml"),

		Watch: WatchConfig{
			Schedule: getEnv("WATCH_SCHEDULE", "0 0 18 * * 1-5"),
			Tickers:  getEnvAsList("WATCH_TICKERS"),
		},

		// Logging
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validate checks if required configuration values are set
func (c *Config) validate() error {
	// 토큰 없으면 기동 불가
	if c.IEX.APIKey == "" {
		return fmt.Errorf("%w: IEX_API_KEY is required", ErrConfig)
	}

	if c.IEX.BaseURL == "" {
		return fmt.Errorf("%w: IEX_API_URL must not be empty", ErrConfig)
	}

	if c.IEX.RateLimit <= 0 {
		return fmt.Errorf("%w: IEX_RATE_LIMIT must be > 0", ErrConfig)
	}

	if c.IEX.MaxRetries < 0 {
		return fmt.Errorf("%w: IEX_MAX_RETRIES must be >= 0", ErrConfig)
	}

	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("%w: ENV must be one of: development, staging, production", ErrConfig)
	}

	return nil
}

// Helper functions (private, only used within this file)

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	paths := []string{".env"}

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

// getEnvAsList splits a comma-separated variable, dropping blanks
func getEnvAsList(key string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return nil
	}

	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
