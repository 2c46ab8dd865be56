package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Backend kinds accepted in STORAGE_BACKEND.
const (
	BackendFilesystem = "fs"
	BackendMemory     = "memory"
)

// Provider exposes configuration to the rest of the application.
type Provider interface {
	GetStorageBackend() string
	GetStorageRoot() string
	GetServerAddr() string
	GetLogFormat() string
	GetLogLevel() string
	GetRateLimitPerMinute() int
	GetSweepInterval() time.Duration
	GetSweepTTL() time.Duration
	GetEventsEnabled() bool
}

// Config holds all configuration for the application.
type Config struct {
	StorageBackend     string        `validate:"required,oneof=fs memory"`
	StorageRoot        string        `validate:"required_if=StorageBackend fs"`
	ServerAddr         string        `validate:"required"`
	LogFormat          string        `validate:"oneof=text json"`
	LogLevel           string        `validate:"oneof=debug info warn warning error"`
	RateLimitPerMinute int           `validate:"gte=0"`
	SweepInterval      time.Duration `validate:"gte=0"`
	SweepTTL           time.Duration `validate:"gt=0"`
	EventsEnabled      bool
}

// New loads configuration from a .env file, if present, and the environment.
func New() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		// slog is not configured yet at this point.
		log.Println("No .env file found, relying on environment variables")
	}
	return FromEnv()
}

// FromEnv builds a Config from the process environment only.
func FromEnv() (*Config, error) {
	cfg := &Config{
		StorageBackend: getEnv("STORAGE_BACKEND", BackendFilesystem),
		StorageRoot:    getEnv("STORAGE_ROOT", "./data"),
		ServerAddr:     getEnv("SERVER_ADDR", ":8080"),
		LogFormat:      getEnv("LOG_FORMAT", "text"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
	}

	var err error
	if cfg.RateLimitPerMinute, err = getInt("RATE_LIMIT_PER_MINUTE", 0); err != nil {
		return nil, err
	}
	if cfg.SweepInterval, err = getDuration("SWEEP_INTERVAL", time.Hour); err != nil {
		return nil, err
	}
	if cfg.SweepTTL, err = getDuration("SWEEP_TTL", 24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.EventsEnabled, err = getBool("EVENTS_ENABLED", true); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration values against their constraints.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

func (c *Config) GetStorageBackend() string {
	return c.StorageBackend
}

func (c *Config) GetStorageRoot() string {
	return c.StorageRoot
}

func (c *Config) GetServerAddr() string {
	return c.ServerAddr
}

func (c *Config) GetLogFormat() string {
	return c.LogFormat
}

func (c *Config) GetLogLevel() string {
	return c.LogLevel
}

func (c *Config) GetRateLimitPerMinute() int {
	return c.RateLimitPerMinute
}

func (c *Config) GetSweepInterval() time.Duration {
	return c.SweepInterval
}

func (c *Config) GetSweepTTL() time.Duration {
	return c.SweepTTL
}

func (c *Config) GetEventsEnabled() bool {
	return c.EventsEnabled
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return n, nil
}

func getBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("parse %s: %w", key, err)
	}
	return b, nil
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return d, nil
}
