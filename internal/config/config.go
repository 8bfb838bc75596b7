package config

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog/log"
)

// Environment represents different deployment environments
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvTesting     Environment = "testing"
	EnvProduction  Environment = "production"
)

// Config holds the configuration for the daytrace service.
// Environment variables are parsed from the DAYTRACE_ prefix.
type Config struct {
	Environment Environment `envconfig:"ENVIRONMENT" default:"development"`

	// Telegram transport. An empty token starts the service in HTTP-only
	// mode without the chat poller.
	BotToken    string        `envconfig:"BOT_TOKEN" default:""`
	PollTimeout time.Duration `envconfig:"POLL_TIMEOUT" default:"50s"`

	// Timezone is the IANA zone that defines day boundaries for every
	// user; clock readings, backdate parsing and daily rollups all use it.
	Timezone string `envconfig:"TIMEZONE" default:"UTC"`

	// HTTP Configuration
	HTTPPort int `envconfig:"HTTP_PORT" default:"8080"`

	// Storage: memory, sqlite or postgres
	DBDriver    string `envconfig:"DB_DRIVER" default:"sqlite"`
	SQLitePath  string `envconfig:"SQLITE_PATH" default:""`
	PostgresDSN string `envconfig:"POSTGRES_DSN" default:""`

	// Update dispatcher
	DispatchShards         int           `envconfig:"DISPATCH_SHARDS" default:"4"`
	DispatchQueueSize      int           `envconfig:"DISPATCH_QUEUE_SIZE" default:"128"`
	DispatchEnqueueTimeout time.Duration `envconfig:"DISPATCH_ENQUEUE_TIMEOUT" default:"2s"`

	// Health probing
	HealthIntervalSeconds int `envconfig:"HEALTH_INTERVAL_SECONDS" default:"10"`

	location *time.Location
}

// ResolveDefaults validates the driver selection, derives the default
// SQLite path and loads the configured timezone.
func (c *Config) ResolveDefaults() error {
	if c.DBDriver == "" || c.DBDriver == "auto" {
		c.DBDriver = "sqlite"
	}
	allowedDB := map[string]bool{"memory": true, "sqlite": true, "postgres": true}
	if !allowedDB[c.DBDriver] {
		return fmt.Errorf("unsupported DB_DRIVER: %s", c.DBDriver)
	}

	if c.DBDriver == "sqlite" && c.SQLitePath == "" {
		dir, err := DataDir()
		if err != nil {
			return fmt.Errorf("resolve sqlite path: %w", err)
		}
		c.SQLitePath = filepath.Join(dir, dbFilename)
	}

	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return fmt.Errorf("invalid TIMEZONE %q: %w", c.Timezone, err)
	}
	c.location = loc

	if c.DispatchShards <= 0 {
		return fmt.Errorf("DISPATCH_SHARDS must be positive, got %d", c.DispatchShards)
	}
	if c.DispatchQueueSize <= 0 {
		return fmt.Errorf("DISPATCH_QUEUE_SIZE must be positive, got %d", c.DispatchQueueSize)
	}
	return nil
}

// New creates a new Config by parsing environment variables.
// Environment variables should be prefixed with DAYTRACE_
// Example: DAYTRACE_BOT_TOKEN, DAYTRACE_HTTP_PORT
func New() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("DAYTRACE", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}

	if err := cfg.ResolveDefaults(); err != nil {
		return nil, err
	}

	log.Info().
		Str("environment", string(cfg.Environment)).
		Str("db_driver", cfg.DBDriver).
		Str("timezone", cfg.Timezone).
		Int("port", cfg.HTTPPort).
		Bool("bot_token_present", cfg.BotToken != "").
		Str("sqlite_path", cfg.SQLitePath).
		Bool("postgres_dsn_present", cfg.PostgresDSN != "").
		Msg("Configuration loaded")

	return &cfg, nil
}

// NewForTesting creates a config specifically for testing.
func NewForTesting() *Config {
	cfg := &Config{
		Environment: EnvTesting,
		Timezone:    "UTC",
		HTTPPort:    8080,
		DBDriver:    "memory",
		PollTimeout: time.Second,

		DispatchShards:         2,
		DispatchQueueSize:      16,
		DispatchEnqueueTimeout: time.Second,
		HealthIntervalSeconds:  1,
	}
	if err := cfg.ResolveDefaults(); err != nil {
		panic(err)
	}
	return cfg
}

// Location returns the loaded timezone; call ResolveDefaults first.
func (c *Config) Location() *time.Location {
	if c.location == nil {
		return time.UTC
	}
	return c.location
}

// IsTesting returns true if the environment is set to testing
func (c *Config) IsTesting() bool {
	return c.Environment == EnvTesting
}

// IsProduction returns true if the environment is set to production
func (c *Config) IsProduction() bool {
	return c.Environment == EnvProduction
}

// GetHTTPAddr returns the HTTP server address
func (c *Config) GetHTTPAddr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}
