package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Fixed Hobex gateway addresses, selected by terminal mode.
const (
	DefaultHobexTestingURL    = "https://hobexplus.brunn.hobex.at"
	DefaultHobexProductionURL = "https://online.hobex.at"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Hobex    HobexConfig
	Auth     AuthConfig
	LogLevel string
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port string
}

// DatabaseConfig selects the record store
type DatabaseConfig struct {
	Driver string // postgres | sqlite3
	DSN    string
}

// HobexConfig holds payment terminal settings
type HobexConfig struct {
	Enabled              bool
	TestingURL           string
	ProductionURL        string
	TokenRefreshInterval time.Duration
	PollAttempts         int
	PollInterval         time.Duration
}

// AuthConfig holds operator login settings for the POS-facing API
type AuthConfig struct {
	JWTSecret            string
	TokenTTL             time.Duration
	OperatorUser         string
	OperatorPasswordHash string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if exists (ignore error if not found)
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port: getEnv("APP_PORT", "8080"),
		},
		Database: DatabaseConfig{
			Driver: getEnv("DB_DRIVER", "postgres"),
			DSN:    getEnv("DATABASE_URL", ""),
		},
		Hobex: HobexConfig{
			Enabled:              parseBool(getEnv("HOBEX_ENABLED", "true"), true),
			TestingURL:           getEnv("HOBEX_TESTING_URL", DefaultHobexTestingURL),
			ProductionURL:        getEnv("HOBEX_PRODUCTION_URL", DefaultHobexProductionURL),
			TokenRefreshInterval: parseDuration(getEnv("HOBEX_TOKEN_REFRESH_INTERVAL", "12h"), 12*time.Hour),
			PollAttempts:         parseInt(getEnv("HOBEX_POLL_ATTEMPTS", "12"), 12),
			PollInterval:         parseDuration(getEnv("HOBEX_POLL_INTERVAL", "5s"), 5*time.Second),
		},
		Auth: AuthConfig{
			JWTSecret:            getEnv("JWT_SECRET", ""),
			TokenTTL:             parseDuration(getEnv("JWT_TTL", "24h"), 24*time.Hour),
			OperatorUser:         getEnv("OPERATOR_USER", "pos"),
			OperatorPasswordHash: getEnv("OPERATOR_PASSWORD_HASH", ""),
		},
		LogLevel: getEnv("LOG_LEVEL", "INFO"),
	}

	// Validate required fields
	if cfg.Database.DSN == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	switch cfg.Database.Driver {
	case "postgres", "sqlite3":
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER=%s", cfg.Database.Driver)
	}
	if cfg.Auth.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.Hobex.TokenRefreshInterval <= 0 {
		return nil, fmt.Errorf("HOBEX_TOKEN_REFRESH_INTERVAL must be positive")
	}
	if cfg.Hobex.PollInterval < 0 {
		return nil, fmt.Errorf("HOBEX_POLL_INTERVAL must not be negative")
	}
	if cfg.Auth.TokenTTL <= 0 {
		return nil, fmt.Errorf("JWT_TTL must be positive")
	}

	return cfg, nil
}

// getEnv gets environment variable with default value
func getEnv(key, defaultValue string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	return value
}

// parseInt parses string to int with default value
func parseInt(value string, defaultValue int) int {
	intValue, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return intValue
}

// parseDuration parses string to time.Duration with default value
func parseDuration(value string, defaultValue time.Duration) time.Duration {
	duration, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return duration
}

func parseBool(value string, defaultValue bool) bool {
	b, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return b
}
