package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// SecretsConfig holds credentials kept out of config.yaml
type SecretsConfig struct {
	JWTSecret   string `yaml:"jwt_secret,omitempty"`
	DatabaseURL string `yaml:"database_url,omitempty"`
	RabbitMQURL string `yaml:"rabbitmq_url,omitempty"`
}

// Load builds the configuration. path names the YAML file; when empty,
// SKILLQUEST_CONFIG or ~/.skillquest/config.yaml is used. A missing file
// leaves the defaults. secrets.yaml beside the config file, a .env file in
// the working directory and SKILLQUEST_* variables are applied on top.
func Load(path string) (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	dir := ""
	if path == "" {
		path = os.Getenv(envPrefix + "CONFIG")
	}
	if path == "" {
		d, err := Dir()
		if err != nil {
			return nil, err
		}
		dir = d
		path = filepath.Join(dir, "config.yaml")
	} else {
		dir = filepath.Dir(path)
	}

	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := loadSecrets(dir, cfg); err != nil {
		return nil, fmt.Errorf("load secrets: %w", err)
	}

	applyEnv(cfg)

	if cfg.Database.Driver == DriverSQLite && cfg.Database.Path == "" {
		cfg.Database.Path = filepath.Join(dir, "data", "skillquest.db")
	}
	return cfg, nil
}

// loadSecrets applies secrets.yaml from dir, if present
func loadSecrets(dir string, cfg *Config) error {
	data, err := os.ReadFile(filepath.Join(dir, "secrets.yaml"))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read secrets: %w", err)
	}

	var secrets SecretsConfig
	if err := yaml.Unmarshal(data, &secrets); err != nil {
		return fmt.Errorf("parse secrets: %w", err)
	}

	if secrets.JWTSecret != "" {
		cfg.Auth.JWTSecret = secrets.JWTSecret
	}
	if secrets.DatabaseURL != "" {
		cfg.Database.URL = secrets.DatabaseURL
	}
	if secrets.RabbitMQURL != "" {
		cfg.Events.RabbitMQURL = secrets.RabbitMQURL
	}
	return nil
}

// Save writes cfg to dir/config.yaml. Secrets are never written here.
func Save(dir string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), data, 0644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// SaveSecrets writes dir/secrets.yaml readable by the owner only
func SaveSecrets(dir string, secrets SecretsConfig) error {
	data, err := yaml.Marshal(secrets)
	if err != nil {
		return fmt.Errorf("marshal secrets: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "secrets.yaml"), data, 0600); err != nil {
		return fmt.Errorf("write secrets: %w", err)
	}
	return nil
}
