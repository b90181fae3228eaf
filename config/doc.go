// Package config provides configuration loading and validation for composekit
// applications.
//
// LoadConfig reads a YAML file found in standard locations, loads a matching
// .env file, applies environment variable overrides through Viper and
// unmarshals the result into the caller's struct.
//
// # Usage
//
//	var cfg bootstrap.Config
//	err := config.LoadConfig("orders-app", &cfg)
//
// Environment variables map onto nested keys by splitting on underscores
// (e.g., LOGGING_LEVEL sets logging.level).
package config
