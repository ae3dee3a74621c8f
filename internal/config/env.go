package config

import (
	"os"
	"strconv"
	"strings"
)

// envPrefix namespaces every environment override
const envPrefix = "SKILLQUEST_"

// applyEnv overrides cfg from SKILLQUEST_* variables
func applyEnv(cfg *Config) {
	cfg.Debug = getEnvBool(envPrefix+"DEBUG", cfg.Debug)
	cfg.LogLevel = getEnv(envPrefix+"LOG_LEVEL", cfg.LogLevel)

	cfg.Server.Port = getEnvInt(envPrefix+"PORT", cfg.Server.Port)
	cfg.Server.Bind = getEnv(envPrefix+"BIND", cfg.Server.Bind)
	cfg.Server.AuthRatePerMinute = getEnvInt(envPrefix+"AUTH_RATE_PER_MINUTE", cfg.Server.AuthRatePerMinute)
	if origins := getEnv(envPrefix+"ALLOWED_ORIGINS", ""); origins != "" {
		cfg.Server.AllowedOrigins = splitList(origins)
	}

	cfg.Database.Driver = getEnv(envPrefix+"DB_DRIVER", cfg.Database.Driver)
	cfg.Database.Path = getEnv(envPrefix+"DB_PATH", cfg.Database.Path)
	cfg.Database.URL = getEnv(envPrefix+"DATABASE_URL", cfg.Database.URL)

	cfg.Rules.Path = getEnv(envPrefix+"RULES_PATH", cfg.Rules.Path)
	cfg.Rules.Watch = getEnvBool(envPrefix+"RULES_WATCH", cfg.Rules.Watch)

	cfg.Auth.JWTSecret = getEnv(envPrefix+"JWT_SECRET", cfg.Auth.JWTSecret)
	cfg.Auth.TokenTTLHours = getEnvInt(envPrefix+"TOKEN_TTL_HOURS", cfg.Auth.TokenTTLHours)

	cfg.Events.RabbitMQURL = getEnv(envPrefix+"RABBITMQ_URL", cfg.Events.RabbitMQURL)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
