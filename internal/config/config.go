package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
)

// Config holds all configuration for alquimia
type Config struct {
	// Server configuration (serve mode)
	HTTPPort int    `env:"ALQUIMIA_HTTP_PORT" envDefault:"8080"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// Remote fabric configuration
	Fabric FabricConfig

	// Handle store configuration
	Store StoreConfig

	// Redis configuration (used when the redis store backend is selected)
	Redis RedisConfig
}

// FabricConfig holds remote fabric connection configuration. The
// identity/secret pair is supplied out-of-band through the
// environment; the secret is never logged or persisted.
type FabricConfig struct {
	URL      string `env:"ALQUIMIA_FABRIC_URL" envDefault:"https://api.alchemiscale.org"`
	Identity string `env:"ALQUIMIA_FABRIC_ID"`
	Secret   string `env:"ALQUIMIA_FABRIC_KEY"`
}

// StoreConfig selects and configures the handle store backend
type StoreConfig struct {
	Backend   string `env:"ALQUIMIA_STORE" envDefault:"file"`
	HandleDir string `env:"ALQUIMIA_HANDLE_DIR" envDefault:"handles"`
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	Password string `env:"REDIS_PASS"`
	DB       int    `env:"REDIS_DB" envDefault:"0"`

	// Connection pool settings
	PoolSize     int           `env:"REDIS_POOL_SIZE" envDefault:"10"`
	MinIdleConns int           `env:"REDIS_MIN_IDLE_CONNS" envDefault:"2"`
	MaxRetries   int           `env:"REDIS_MAX_RETRIES" envDefault:"3"`
	DialTimeout  time.Duration `env:"REDIS_DIAL_TIMEOUT" envDefault:"5s"`
	ReadTimeout  time.Duration `env:"REDIS_READ_TIMEOUT" envDefault:"3s"`
	WriteTimeout time.Duration `env:"REDIS_WRITE_TIMEOUT" envDefault:"3s"`
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}

	if c.Fabric.URL == "" {
		return fmt.Errorf("fabric URL is required")
	}

	switch c.Store.Backend {
	case "file":
		if c.Store.HandleDir == "" {
			return fmt.Errorf("handle directory is required for the file store")
		}
	case "redis":
		if c.Redis.Addr == "" {
			return fmt.Errorf("redis address is required for the redis store")
		}
	default:
		return fmt.Errorf("unsupported store backend: %s (must be file or redis)", c.Store.Backend)
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.LogLevel)
	}

	return nil
}

// GetHTTPAddr returns the HTTP server address
func (c *Config) GetHTTPAddr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}
