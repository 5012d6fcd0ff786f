package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	ServerPort string
	ServerHost string

	// Database configuration
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// Redis configuration
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int
	RedisURL      string

	// JWT configuration
	JWTSecret string

	// Media storage
	MediaRoot string

	// CORS
	CORSOrigins []string
}

// LoadConfig creates a new Config instance with values from environment
// variables, falling back to Docker secrets when a SECRETS_DIR is mounted.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		ServerPort:    getSetting("SERVER_PORT", "8080"),
		ServerHost:    getSetting("SERVER_HOST", "0.0.0.0"),
		DBHost:        getSetting("DB_HOST", "localhost"),
		DBPort:        getSetting("DB_PORT", "5432"),
		DBUser:        getSetting("DB_USER", ""),
		DBPassword:    getSetting("DB_PASSWORD", ""),
		DBName:        getSetting("DB_NAME", "foodshare"),
		DBSSLMode:     getSetting("DB_SSL_MODE", "disable"),
		RedisHost:     getSetting("REDIS_HOST", "localhost"),
		RedisPort:     getSetting("REDIS_PORT", "6379"),
		RedisPassword: getSetting("REDIS_PASSWORD", ""),
		RedisURL:      getSetting("REDIS_URL", ""),
		JWTSecret:     getSetting("JWT_SECRET", ""),
		MediaRoot:     getSetting("MEDIA_ROOT", "/var/lib/foodshare/media"),
	}

	if raw := getSetting("REDIS_DB", "0"); raw != "" {
		db, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid REDIS_DB value %q: %w", raw, err)
		}
		cfg.RedisDB = db
	}

	if origins := getSetting("CORS_ORIGINS", "http://localhost:5173"); origins != "" {
		for _, o := range strings.Split(origins, ",") {
			if o = strings.TrimSpace(o); o != "" {
				cfg.CORSOrigins = append(cfg.CORSOrigins, o)
			}
		}
	}

	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// getSetting reads an environment variable, then the matching Docker secret
// (lowercased name under SECRETS_DIR), then the fallback.
func getSetting(name, fallback string) string {
	if value := os.Getenv(name); value != "" {
		return value
	}
	if secretsDir := os.Getenv("SECRETS_DIR"); secretsDir != "" {
		path := filepath.Join(secretsDir, strings.ToLower(name))
		if content, err := os.ReadFile(path); err == nil {
			if value := strings.TrimSpace(string(content)); value != "" {
				return value
			}
		}
	}
	return fallback
}
