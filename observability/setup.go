package observability

import (
	"context"
	stderrors "errors"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// Providers holds the SDK providers created by Setup. Either may be nil
// when the corresponding export is disabled.
type Providers struct {
	Tracer *sdktrace.TracerProvider
	Meter  *sdkmetric.MeterProvider
}

// Setup initializes tracing and metrics according to cfg. Disabled exports
// leave the global no-op providers in place.
func Setup(ctx context.Context, cfg *Config) (*Providers, error) {
	cfg.ApplyDefaults()
	p := &Providers{}

	if cfg.Tracing.Enabled {
		tp, err := InitTracer(ctx, cfg)
		if err != nil {
			return nil, err
		}
		p.Tracer = tp
	}

	if cfg.Metrics.Enabled {
		mp, err := InitMeter(ctx, cfg)
		if err != nil {
			_ = p.Shutdown(ctx)
			return nil, err
		}
		p.Meter = mp
	}

	return p, nil
}

// Shutdown flushes and stops the providers.
func (p *Providers) Shutdown(ctx context.Context) error {
	if p == nil {
		return nil
	}
	var errs []error
	if p.Meter != nil {
		if err := p.Meter.Shutdown(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	if p.Tracer != nil {
		if err := p.Tracer.Shutdown(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return stderrors.Join(errs...)
}
