package config

import (
	"os"
	"strings"
)

// Environment represents the running environment
type Environment string

const (
	Development Environment = "development"
	Test        Environment = "test"
	CI          Environment = "ci"
	Production  Environment = "production"
)

// GetEnvironment returns the current environment, defaulting to development.
func GetEnvironment() Environment {
	env := strings.ToLower(os.Getenv("ENV"))
	switch env {
	case "production", "prod":
		return Production
	case "ci":
		return CI
	case "test":
		return Test
	default:
		return Development
	}
}
