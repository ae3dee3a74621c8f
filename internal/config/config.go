// Package config loads daemon settings from ~/.skillquest/config.yaml,
// secrets.yaml, a .env file and SKILLQUEST_* environment variables, in
// increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"
)

// DevJWTSecret is the placeholder signing key. It is refused outside debug
// mode.
const DevJWTSecret = "dev-secret-change-me"

// Storage drivers
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Config holds all configuration for the daemon
type Config struct {
	Debug    bool           `yaml:"debug"`
	LogLevel string         `yaml:"log_level"`
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Rules    RulesConfig    `yaml:"rules"`
	Auth     AuthConfig     `yaml:"auth"`
	Events   EventsConfig   `yaml:"events"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port              int      `yaml:"port"`
	Bind              string   `yaml:"bind"`
	AllowedOrigins    []string `yaml:"allowed_origins"`
	AuthRatePerMinute int      `yaml:"auth_rate_per_minute"`
}

// Addr returns the listen address
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Bind, s.Port)
}

// DatabaseConfig selects and locates the storage backend
type DatabaseConfig struct {
	Driver string `yaml:"driver"`
	Path   string `yaml:"path"`
	URL    string `yaml:"-"` // secrets.yaml or environment
}

// RulesConfig locates the rule document. An empty path uses the bundled
// document.
type RulesConfig struct {
	Path  string `yaml:"path"`
	Watch bool   `yaml:"watch"`
}

// AuthConfig holds bearer token settings
type AuthConfig struct {
	JWTSecret     string `yaml:"-"` // secrets.yaml or environment
	TokenTTLHours int    `yaml:"token_ttl_hours"`
}

// TokenTTL returns the configured token lifetime
func (a AuthConfig) TokenTTL() time.Duration {
	return time.Duration(a.TokenTTLHours) * time.Hour
}

// EventsConfig holds the optional RabbitMQ connection. An empty URL disables
// event publishing.
type EventsConfig struct {
	RabbitMQURL string `yaml:"-"` // secrets.yaml or environment
}

// Dir returns the path to ~/.skillquest
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(home, ".skillquest"), nil
}

// EnsureDir creates ~/.skillquest and its subdirectories
func EnsureDir() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	for _, sub := range []string{"", "logs", "data"} {
		path := filepath.Join(dir, sub)
		if err := os.MkdirAll(path, 0755); err != nil {
			return "", fmt.Errorf("create dir %s: %w", path, err)
		}
	}
	return dir, nil
}

// DefaultConfig returns defaults for a local single-user install
func DefaultConfig() *Config {
	return &Config{
		LogLevel: "info",
		Server: ServerConfig{
			Port:              8000,
			Bind:              "127.0.0.1",
			AllowedOrigins:    []string{"http://127.0.0.1:5500", "http://localhost:5500"},
			AuthRatePerMinute: 10,
		},
		Database: DatabaseConfig{
			Driver: DriverSQLite,
		},
		Rules: RulesConfig{
			Watch: true,
		},
		Auth: AuthConfig{
			JWTSecret:     DevJWTSecret,
			TokenTTLHours: 24 * 7,
		},
	}
}

var logLevels = []string{"debug", "info", "warn", "warning", "error"}

// Validate reports every setting the daemon cannot run with
func (c *Config) Validate() error {
	var errs []error

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d out of range", c.Server.Port))
	}
	if !slices.Contains(logLevels, strings.ToLower(c.LogLevel)) {
		errs = append(errs, fmt.Errorf("unknown log_level %q", c.LogLevel))
	}

	switch c.Database.Driver {
	case DriverSQLite, DriverMemory:
	case DriverPostgres:
		if c.Database.URL == "" {
			errs = append(errs, errors.New("database.driver postgres requires SKILLQUEST_DATABASE_URL"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown database.driver %q", c.Database.Driver))
	}

	if c.Auth.JWTSecret == "" {
		errs = append(errs, errors.New("jwt secret is empty"))
	} else if c.Auth.JWTSecret == DevJWTSecret && !c.Debug {
		errs = append(errs, errors.New("SKILLQUEST_JWT_SECRET must be set outside debug mode"))
	}
	if c.Auth.TokenTTLHours <= 0 {
		errs = append(errs, fmt.Errorf("auth.token_ttl_hours must be positive, got %d", c.Auth.TokenTTLHours))
	}
	if c.Server.AuthRatePerMinute < 0 {
		errs = append(errs, fmt.Errorf("server.auth_rate_per_minute must not be negative"))
	}

	return errors.Join(errs...)
}
