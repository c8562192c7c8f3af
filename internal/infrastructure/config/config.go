package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
// loaded from environment variables, no magic defaults for required fields.
type Config struct {
	Database DatabaseConfig
	Auth     AuthConfig
	Redis    RedisConfig
	Server   ServerConfig
	Engine   EngineConfig
	Log      LogConfig
}

// DatabaseConfig contains database connection parameters.
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
	Schema   string
}

// AuthConfig contains authentication configuration.
type AuthConfig struct {
	// JWTSecret is the HMAC secret used to validate bearer tokens
	JWTSecret string
}

// RedisConfig contains the optional insight cache connection.
// an empty URL disables redis and the in-memory cache is used instead.
type RedisConfig struct {
	URL string
}

// ServerConfig contains http listener settings.
type ServerConfig struct {
	Port string
}

// EngineConfig tunes the analytics engine and its result cache.
type EngineConfig struct {
	DefaultTimezone         string
	ProgressionLookbackDays int
	InsightCacheTTL         time.Duration
	InsightCacheMaxEntries  int
}

// LogConfig contains logging settings.
type LogConfig struct {
	Level string
}

// ConnectionString returns the postgres connection string.
func (c DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s&search_path=%s",
		c.User,
		c.Password,
		c.Host,
		c.Port,
		c.Name,
		c.SSLMode,
		c.Schema,
	)
}

// Load reads configuration from environment variables.
// loads .env file if present, but doesn't fail if it's missing.
func Load() (*Config, error) {
	// try to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	dbConfig, err := loadDatabaseConfig()
	if err != nil {
		return nil, fmt.Errorf("database config: %w", err)
	}

	authConfig, err := loadAuthConfig()
	if err != nil {
		return nil, fmt.Errorf("auth config: %w", err)
	}

	engineConfig, err := loadEngineConfig()
	if err != nil {
		return nil, fmt.Errorf("engine config: %w", err)
	}

	return &Config{
		Database: dbConfig,
		Auth:     authConfig,
		Redis:    RedisConfig{URL: os.Getenv("REDIS_URL")},
		Server:   ServerConfig{Port: getEnvOrDefault("PORT", "8080")},
		Engine:   engineConfig,
		Log:      LogConfig{Level: getEnvOrDefault("LOG_LEVEL", "info")},
	}, nil
}

func loadAuthConfig() (AuthConfig, error) {
	config := AuthConfig{
		JWTSecret: os.Getenv("JWT_SECRET"),
	}

	if config.JWTSecret == "" {
		return config, errors.New("JWT_SECRET is required")
	}

	return config, nil
}

func loadDatabaseConfig() (DatabaseConfig, error) {
	config := DatabaseConfig{
		Host:     getEnvOrDefault("DB_HOST", "localhost"),
		Port:     getEnvOrDefault("DB_PORT", "5432"),
		User:     os.Getenv("DB_USER"),
		Password: os.Getenv("DB_PASSWORD"),
		Name:     os.Getenv("DB_NAME"),
		SSLMode:  getEnvOrDefault("DB_SSL_MODE", "require"),
		Schema:   getEnvOrDefault("DB_SCHEMA", "platewise"),
	}

	// required fields must be set
	if config.User == "" {
		return config, errors.New("DB_USER is required")
	}
	if config.Password == "" {
		return config, errors.New("DB_PASSWORD is required")
	}
	if config.Name == "" {
		return config, errors.New("DB_NAME is required")
	}

	return config, nil
}

func loadEngineConfig() (EngineConfig, error) {
	lookback, err := getEnvInt("PROGRESSION_LOOKBACK_DAYS", 90)
	if err != nil {
		return EngineConfig{}, err
	}
	if lookback <= 0 {
		return EngineConfig{}, errors.New("PROGRESSION_LOOKBACK_DAYS must be positive")
	}

	maxEntries, err := getEnvInt("INSIGHT_CACHE_MAX_ENTRIES", 10000)
	if err != nil {
		return EngineConfig{}, err
	}

	ttl, err := time.ParseDuration(getEnvOrDefault("INSIGHT_CACHE_TTL", "5m"))
	if err != nil {
		return EngineConfig{}, fmt.Errorf("INSIGHT_CACHE_TTL: %w", err)
	}

	tz := getEnvOrDefault("DEFAULT_TIMEZONE", "UTC")
	if _, err := time.LoadLocation(tz); err != nil {
		return EngineConfig{}, fmt.Errorf("DEFAULT_TIMEZONE: %w", err)
	}

	return EngineConfig{
		DefaultTimezone:         tz,
		ProgressionLookbackDays: lookback,
		InsightCacheTTL:         ttl,
		InsightCacheMaxEntries:  maxEntries,
	}, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return v, nil
}
