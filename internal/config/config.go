// Package config loads the immutable service configuration. Values come
// from an optional YAML file, overridden by environment variables. There
// is no process-wide configuration state: the loaded Config is passed
// explicitly to the components that need it.
package config

import (
	"fmt"
	"os"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the full service configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Auth      AuthConfig      `yaml:"auth"`
	Logging   LoggingConfig   `yaml:"logging"`
	Audit     AuditConfig     `yaml:"audit"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	Host string `yaml:"host" env:"SERVER_HOST,default=0.0.0.0"`
	Port int    `yaml:"port" env:"SERVER_PORT,default=8080"`
}

// DatabaseConfig controls the PostgreSQL connection pool. An empty DSN
// selects the in-memory store (local development only).
type DatabaseConfig struct {
	Driver          string `yaml:"driver" env:"DATABASE_DRIVER,default=postgres"`
	DSN             string `yaml:"dsn" env:"DATABASE_URL"`
	MaxOpenConns    int    `yaml:"max_open_conns" env:"DATABASE_MAX_OPEN_CONNS,default=10"`
	MaxIdleConns    int    `yaml:"max_idle_conns" env:"DATABASE_MAX_IDLE_CONNS,default=5"`
	ConnMaxLifetime int    `yaml:"conn_max_lifetime_seconds" env:"DATABASE_CONN_MAX_LIFETIME,default=300"`
}

// AuthConfig controls token issuance and password hashing.
type AuthConfig struct {
	JWTSecret       string `yaml:"jwt_secret" env:"JWT_SECRET"`
	TokenTTLMinutes int    `yaml:"token_ttl_minutes" env:"TOKEN_TTL_MINUTES,default=60"`
	BCryptCost      int    `yaml:"bcrypt_cost" env:"BCRYPT_COST,default=10"`
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	Level  string `yaml:"level" env:"LOG_LEVEL,default=info"`
	Format string `yaml:"format" env:"LOG_FORMAT,default=text"`
	Output string `yaml:"output" env:"LOG_OUTPUT,default=stderr"`
}

// AuditConfig controls the request audit trail.
type AuditConfig struct {
	MaxEntries int    `yaml:"max_entries" env:"AUDIT_MAX_ENTRIES,default=200"`
	FilePath   string `yaml:"file_path" env:"AUDIT_FILE"`
}

// RateLimitConfig controls per-caller request throttling.
type RateLimitConfig struct {
	Enabled           bool `yaml:"enabled" env:"RATE_LIMIT_ENABLED,default=false"`
	RequestsPerSecond int  `yaml:"requests_per_second" env:"RATE_LIMIT_RPS,default=20"`
	Burst             int  `yaml:"burst" env:"RATE_LIMIT_BURST,default=40"`
}

// Load reads configuration from CONFIG_PATH (if set and present) and the
// environment. A .env file is honored for local runs.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return LoadFromPath(os.Getenv("CONFIG_PATH"))
}

// LoadFromPath reads a YAML file (optional) then applies environment
// overrides and validation.
func LoadFromPath(path string) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	if err := envdecode.Decode(cfg); err != nil {
		return nil, fmt.Errorf("decode environment: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server port %d out of range", c.Server.Port)
	}
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("auth jwt secret is required")
	}
	if c.Auth.TokenTTLMinutes <= 0 {
		return fmt.Errorf("token ttl must be positive, got %d", c.Auth.TokenTTLMinutes)
	}
	if c.Database.DSN != "" && c.Database.Driver == "" {
		return fmt.Errorf("database driver is required when dsn is set")
	}
	return nil
}
