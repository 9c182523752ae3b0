package config

import (
	"os"
	"strconv"

	apperrors "violens/internal/errors"
)

// Config holds all application configuration loaded from the environment.
type Config struct {
	// HTTP server
	Port    string
	GinMode string

	// Data sources
	DataFile      string
	StatesGeoJSON string
	WorldGeoJSON  string

	// Upload limits
	MaxUploadMB int
}

// Load reads configuration from environment variables with sensible defaults.
func Load() (*Config, error) {
	cfg := &Config{
		Port:          getEnvOrDefault("PORT", "8080"),
		GinMode:       getEnvOrDefault("GIN_MODE", "release"),
		DataFile:      getEnvOrDefault("DATA_FILE", "data/Indian_Traffic_Violations.csv"),
		StatesGeoJSON: getEnvOrDefault("GEOJSON_STATES", "data/india_states.geojson"),
		WorldGeoJSON:  getEnvOrDefault("GEOJSON_WORLD", "data/world.geojson"),
		MaxUploadMB:   getEnvIntOrDefault("MAX_UPLOAD_MB", 32),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.DataFile == "" {
		return apperrors.ConfigInvalid("DATA_FILE must not be empty")
	}
	if c.MaxUploadMB <= 0 {
		return apperrors.ConfigInvalid("MAX_UPLOAD_MB must be positive")
	}
	if c.Port == "" {
		return apperrors.ConfigInvalid("PORT must not be empty")
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
