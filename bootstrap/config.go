package bootstrap

import (
	"github.com/kbukum/composekit/config"
	apperrors "github.com/kbukum/composekit/errors"
	"github.com/kbukum/composekit/modularity"
	"github.com/kbukum/composekit/observability"
	"github.com/kbukum/composekit/validation"
)

// Config is the configuration of a composed application.
//
// Example config.yml:
//
//	name: orders-app
//	environment: production
//	show_summary: true
//	modules:
//	  - name: catalog
//	  - name: orders
//	    depends_on: [catalog]
//	  - name: reports
//	    mode: on_demand
type Config struct {
	config.ServiceConfig `yaml:",inline" mapstructure:",squash"`

	// UseDefaultConfiguration registers the default services in
	// ConfigureContainer. Nil means true.
	UseDefaultConfiguration *bool                     `yaml:"use_default_configuration" mapstructure:"use_default_configuration"`
	ShowSummary             bool                      `yaml:"show_summary" mapstructure:"show_summary"`
	Modules                 []modularity.ModuleConfig `yaml:"modules" mapstructure:"modules" validate:"dive"`
	Observability           observability.Config      `yaml:"observability" mapstructure:"observability"`
}

// ApplyDefaults fills unset values.
func (c *Config) ApplyDefaults() {
	c.ServiceConfig.ApplyDefaults()
	if c.UseDefaultConfiguration == nil {
		enabled := true
		c.UseDefaultConfiguration = &enabled
	}
	c.Observability.ServiceName = c.Name
	c.Observability.ServiceVersion = c.Version
	c.Observability.Environment = c.Environment
	c.Observability.ApplyDefaults()
}

// Validate checks the service fields, struct tags and module name
// uniqueness. Every failure carries the INVALID_CONFIGURATION code.
func (c *Config) Validate() error {
	if err := c.ServiceConfig.Validate(); err != nil {
		return err
	}
	if err := validation.Struct(c); err != nil {
		return invalidConfig(err)
	}

	names := make([]string, len(c.Modules))
	for i, m := range c.Modules {
		names[i] = m.Name
	}
	if err := validation.New().Unique("modules[%d].name", names).Validate(); err != nil {
		return invalidConfig(err)
	}
	return nil
}

func invalidConfig(err error) error {
	msg := err.Error()
	if appErr, ok := apperrors.AsAppError(err); ok {
		msg = appErr.Message
	}
	return apperrors.InvalidConfiguration("config: " + msg).WithCause(err)
}

// DefaultConfiguration reports whether default registrations are enabled.
func (c *Config) DefaultConfiguration() bool {
	return c.UseDefaultConfiguration == nil || *c.UseDefaultConfiguration
}

// LoadConfig loads, defaults and validates the configuration for appName.
func LoadConfig(appName string, opts ...config.LoaderOption) (*Config, error) {
	cfg := &Config{}
	if err := config.LoadConfig(appName, cfg, opts...); err != nil {
		return nil, apperrors.InvalidConfiguration(err.Error()).WithCause(err)
	}
	if cfg.Name == "" {
		cfg.Name = appName
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
