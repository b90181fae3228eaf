package config

import (
	"fmt"
	"strings"
)

// Known deployment environments.
const (
	EnvDevelopment = "development"
	EnvStaging     = "staging"
	EnvProduction  = "production"
)

var validEnvironments = []string{EnvDevelopment, EnvStaging, EnvProduction}

// ValidateEnvironment returns an error when env is not a known environment.
func ValidateEnvironment(env string) error {
	for _, v := range validEnvironments {
		if env == v {
			return nil
		}
	}
	return fmt.Errorf("config.environment must be one of [%s] (got: %s)",
		strings.Join(validEnvironments, ", "), env)
}

// IsProduction reports whether env names the production environment.
func IsProduction(env string) bool {
	return env == EnvProduction
}
