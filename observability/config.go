package observability

import "time"

// Config groups tracing and metrics settings for a composed application.
type Config struct {
	ServiceName    string        `yaml:"-" mapstructure:"-"`
	ServiceVersion string        `yaml:"-" mapstructure:"-"`
	Environment    string        `yaml:"-" mapstructure:"-"`
	Tracing        TracerConfig  `yaml:"tracing" mapstructure:"tracing"`
	Metrics        MeterConfig   `yaml:"metrics" mapstructure:"metrics"`
	ShutdownWait   time.Duration `yaml:"shutdown_wait" mapstructure:"shutdown_wait"`
}

// ApplyDefaults fills unset endpoints, rates and intervals.
func (c *Config) ApplyDefaults() {
	if c.Tracing.Endpoint == "" {
		c.Tracing.Endpoint = defaultEndpoint
	}
	if c.Tracing.SampleRate == 0 {
		c.Tracing.SampleRate = 1.0
	}
	if c.Metrics.Endpoint == "" {
		c.Metrics.Endpoint = defaultEndpoint
	}
	if c.Metrics.Interval == 0 {
		c.Metrics.Interval = defaultInterval
	}
	if c.ShutdownWait == 0 {
		c.ShutdownWait = 5 * time.Second
	}
}

const (
	defaultEndpoint = "localhost:4318"
	defaultInterval = 15 * time.Second
)
