package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/kbukum/composekit/logger"
)

// MeterConfig configures the OpenTelemetry meter provider.
type MeterConfig struct {
	// Enabled turns on OTLP export.
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`
	// Endpoint is the OTLP HTTP endpoint host:port (e.g., "localhost:4318").
	Endpoint string `yaml:"endpoint" mapstructure:"endpoint"`
	// Insecure allows insecure connections (for development).
	Insecure bool `yaml:"insecure" mapstructure:"insecure"`
	// Interval is the metric export interval.
	Interval time.Duration `yaml:"interval" mapstructure:"interval"`
}

// InitMeter initializes the OpenTelemetry meter provider and installs it
// globally. The provider should be shut down on application exit.
func InitMeter(ctx context.Context, cfg *Config) (*sdkmetric.MeterProvider, error) {
	opts := []otlpmetrichttp.Option{
		otlpmetrichttp.WithEndpoint(cfg.Metrics.Endpoint),
	}
	if cfg.Metrics.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}

	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}

	res, err := newResource(cfg.ServiceName, cfg.ServiceVersion, cfg.Environment)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	readerOpts := []sdkmetric.PeriodicReaderOption{}
	if cfg.Metrics.Interval > 0 {
		readerOpts = append(readerOpts, sdkmetric.WithInterval(cfg.Metrics.Interval))
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, readerOpts...)),
		sdkmetric.WithResource(res),
	)

	otel.SetMeterProvider(mp)

	logger.Info("meter initialized", logger.Fields(
		"service", cfg.ServiceName,
		"endpoint", cfg.Metrics.Endpoint,
		"interval", cfg.Metrics.Interval.String(),
	))

	return mp, nil
}

// Meter returns a named meter from the global provider.
func Meter(name string) metric.Meter {
	return otel.Meter(name)
}

// Metrics holds the bootstrap instruments.
type Metrics struct {
	stepTotal     metric.Int64Counter
	stepDuration  metric.Float64Histogram
	stepErrors    metric.Int64Counter
	moduleLoads   metric.Int64Counter
	runDuration   metric.Float64Histogram
}

// NewMetrics creates metric instruments on the given meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	stepTotal, err := meter.Int64Counter("bootstrap.step.total",
		metric.WithDescription("Bootstrap steps executed"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating bootstrap.step.total counter: %w", err)
	}

	stepDuration, err := meter.Float64Histogram("bootstrap.step.duration",
		metric.WithDescription("Duration of bootstrap steps in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating bootstrap.step.duration histogram: %w", err)
	}

	stepErrors, err := meter.Int64Counter("bootstrap.step.errors",
		metric.WithDescription("Bootstrap steps that failed"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating bootstrap.step.errors counter: %w", err)
	}

	moduleLoads, err := meter.Int64Counter("module.load.total",
		metric.WithDescription("Module load attempts by module and status"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating module.load.total counter: %w", err)
	}

	runDuration, err := meter.Float64Histogram("bootstrap.run.duration",
		metric.WithDescription("Duration of a full bootstrap run in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating bootstrap.run.duration histogram: %w", err)
	}

	return &Metrics{
		stepTotal:    stepTotal,
		stepDuration: stepDuration,
		stepErrors:   stepErrors,
		moduleLoads:  moduleLoads,
		runDuration:  runDuration,
	}, nil
}

// RecordStep records one executed bootstrap step.
func (m *Metrics) RecordStep(ctx context.Context, step, status string, duration time.Duration) {
	m.stepTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("step", step),
		attribute.String("status", status),
	))
	m.stepDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("step", step),
	))
}

// RecordStepError records a failed step by error kind.
func (m *Metrics) RecordStepError(ctx context.Context, step, errType string) {
	m.stepErrors.Add(ctx, 1, metric.WithAttributes(
		attribute.String("step", step),
		attribute.String("type", errType),
	))
}

// RecordModuleLoad records a module load attempt.
func (m *Metrics) RecordModuleLoad(ctx context.Context, module, status string) {
	m.moduleLoads.Add(ctx, 1, metric.WithAttributes(
		attribute.String("module", module),
		attribute.String("status", status),
	))
}

// RecordRun records a complete bootstrap run.
func (m *Metrics) RecordRun(ctx context.Context, status string, duration time.Duration) {
	m.runDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("status", status),
	))
}
