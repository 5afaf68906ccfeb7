package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds the whole application configuration.
// Populated from environment variables at startup.
type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Auth     AuthConfig
	SMTP     SMTPConfig
	Engine   EngineConfig
}

type AppConfig struct {
	Name        string
	Environment string // development, staging, production
	Port        string
	Version     string
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
	MaxConns int
	MinConns int
}

type RedisConfig struct {
	Host     string
	Password string
	DB       int
}

// AuthConfig covers bearer-token verification only. Tokens are minted by the
// external gateway; this service just checks the signature and role claim.
type AuthConfig struct {
	JWTSecret string
}

type SMTPConfig struct {
	Host string
	Port string
	From string
}

// EngineConfig tunes the allocation/compliance engine behavior.
type EngineConfig struct {
	// LockWaitMS bounds how long a writer waits for a product lock before
	// the request fails as retryable.
	LockWaitMS int

	// Days-to-expiry thresholds for the insights feed.
	CriticalExpiryDays int
	WarningExpiryDays  int

	// LowStockUnits is the product-wide quantity below which a low-inventory
	// warning is raised.
	LowStockUnits int

	// DefaultMaxTempC applies to cold-chain products whose master record has
	// no max temperature set.
	DefaultMaxTempC float64
}

// Load reads config from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		App: AppConfig{
			Name:        getEnv("APP_NAME", "PharmaCore API"),
			Environment: getEnv("APP_ENV", "development"),
			Port:        getEnv("APP_PORT", "8080"),
			Version:     getEnv("APP_VERSION", "0.1.0"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Database: getEnv("DB_NAME", "pharma_core"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
			MaxConns: getEnvInt("DB_MAX_CONNS", 25),
			MinConns: getEnvInt("DB_MIN_CONNS", 5),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Auth: AuthConfig{
			JWTSecret: getEnv("JWT_SECRET", "your-secret-key-change-in-production"),
		},
		SMTP: SMTPConfig{
			Host: getEnv("SMTP_HOST", ""),
			Port: getEnv("SMTP_PORT", "587"),
			From: getEnv("SMTP_FROM", "alerts@pharma-os.com"),
		},
		Engine: EngineConfig{
			LockWaitMS:         getEnvInt("ENGINE_LOCK_WAIT_MS", 2000),
			CriticalExpiryDays: getEnvInt("ENGINE_CRITICAL_EXPIRY_DAYS", 30),
			WarningExpiryDays:  getEnvInt("ENGINE_WARNING_EXPIRY_DAYS", 90),
			LowStockUnits:      getEnvInt("ENGINE_LOW_STOCK_UNITS", 50),
			DefaultMaxTempC:    getEnvFloat("ENGINE_DEFAULT_MAX_TEMP_C", 8.0),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks the config for values that must not ship as defaults.
func (c *Config) Validate() error {
	if c.App.Environment == "production" {
		if c.Auth.JWTSecret == "your-secret-key-change-in-production" {
			return fmt.Errorf("JWT_SECRET must be set in production")
		}
		if c.Database.Password == "" {
			return fmt.Errorf("DB_PASSWORD must be set in production")
		}
		if c.SMTP.Host == "" {
			fmt.Println("WARNING: SMTP_HOST not set - recall notices will be logged, not sent")
		}
	}

	if c.Engine.CriticalExpiryDays >= c.Engine.WarningExpiryDays {
		return fmt.Errorf("critical expiry window must be shorter than warning window")
	}

	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
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

func getEnvFloat(key string, defaultValue float64) float64 {
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
