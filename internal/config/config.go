package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Port        string `yaml:"port"`
	Environment string `yaml:"environment"`
	DatabaseURL string `yaml:"database_url"`
	JWTSecret   string `yaml:"jwt_secret"`
	CORSOrigins string `yaml:"cors_origins"`
	// PublicBaseURL is the externally visible origin used when building
	// public share URLs, e.g. "https://notes.example.com".
	PublicBaseURL string `yaml:"public_base_url"`
	// LogDir, when set, mirrors log output to timestamped files in this
	// directory in addition to stdout.
	LogDir string `yaml:"log_dir"`
	// Debug enables verbose request logging
	Debug bool `yaml:"debug"`
}

// Load builds the configuration from the environment, optionally seeded
// from a YAML file named by POZNOTE_CONFIG. Environment variables win
// over file values.
func Load() (*Config, error) {
	cfg := &Config{
		Port:          "8080",
		Environment:   "dev",
		CORSOrigins:   "http://localhost:3000",
		PublicBaseURL: "http://localhost:8080",
	}

	if path := os.Getenv("POZNOTE_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	cfg.Port = getEnv("PORT", cfg.Port)
	cfg.Environment = getEnv("ENVIRONMENT", cfg.Environment)
	cfg.DatabaseURL = getEnv("DATABASE_URL", cfg.DatabaseURL)
	cfg.JWTSecret = getEnv("JWT_SECRET", cfg.JWTSecret)
	cfg.CORSOrigins = getEnv("CORS_ORIGINS", cfg.CORSOrigins)
	cfg.PublicBaseURL = getEnv("PUBLIC_BASE_URL", cfg.PublicBaseURL)
	cfg.LogDir = getEnv("LOG_DIR", cfg.LogDir)
	cfg.Debug = getEnv("DEBUG", getDefaultDebug(cfg.Environment)) == "true"

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	return cfg, nil
}

// getDefaultDebug returns the default debug setting based on environment
func getDefaultDebug(env string) string {
	if env == "prod" {
		return "false"
	}
	return "true"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
