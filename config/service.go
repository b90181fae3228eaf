package config

import (
	apperrors "github.com/kbukum/composekit/errors"
	"github.com/kbukum/composekit/logger"
)

// ServiceConfig contains the configuration fields every composed application
// needs. Applications extend it by embedding it in their own config structs.
//
// Example:
//
//	type AppConfig struct {
//	    config.ServiceConfig `yaml:",inline" mapstructure:",squash"`
//	    Orders OrdersConfig `yaml:"orders" mapstructure:"orders"`
//	}
type ServiceConfig struct {
	Name        string        `yaml:"name" mapstructure:"name"`
	Environment string        `yaml:"environment" mapstructure:"environment"`
	Version     string        `yaml:"version" mapstructure:"version"`
	Debug       bool          `yaml:"debug" mapstructure:"debug"`
	Logging     logger.Config `yaml:"logging" mapstructure:"logging"`
}

// GetServiceConfig returns the base ServiceConfig.
// When embedded in a larger config struct, this method is promoted.
func (c *ServiceConfig) GetServiceConfig() *ServiceConfig {
	return c
}

// ApplyDefaults applies default values to the base configuration.
// Embedding structs call c.ServiceConfig.ApplyDefaults() first.
func (c *ServiceConfig) ApplyDefaults() {
	if c.Environment == "" {
		c.Environment = EnvDevelopment
	}
	if c.Environment == EnvDevelopment {
		c.Debug = true
	}
	if c.Debug && c.Logging.Level == "" {
		c.Logging.Level = "debug"
	}
	c.Logging.ApplyDefaults()
}

// Validate validates the base configuration fields. Failures carry the
// INVALID_CONFIGURATION code.
func (c *ServiceConfig) Validate() error {
	if c.Name == "" {
		return apperrors.InvalidConfiguration("config.name is required")
	}
	if err := ValidateEnvironment(c.Environment); err != nil {
		return apperrors.InvalidConfiguration(err.Error())
	}
	if err := c.Logging.Validate(); err != nil {
		return apperrors.InvalidConfiguration("config.logging: " + err.Error()).WithCause(err)
	}
	return nil
}
