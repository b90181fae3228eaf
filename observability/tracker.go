package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// StepTracker wraps one bootstrap step in a span and records its metrics.
// A nil Metrics only traces.
type StepTracker struct {
	Step    string
	Index   int
	RunID   string
	Start   time.Time
	ctx     context.Context
	span    trace.Span
	metrics *Metrics
}

// StartStep opens a span for the given step under ctx.
func StartStep(ctx context.Context, metrics *Metrics, runID, step string, index int) *StepTracker {
	ctx, span := StartSpan(ctx, SpanBootstrapStep,
		trace.WithAttributes(
			attribute.String(AttrStep, step),
			attribute.Int(AttrStepIndex, index),
			attribute.String(AttrRunID, runID),
		),
	)
	return &StepTracker{
		Step:    step,
		Index:   index,
		RunID:   runID,
		Start:   time.Now(),
		ctx:     ctx,
		span:    span,
		metrics: metrics,
	}
}

// Context returns the context carrying the step span.
func (t *StepTracker) Context() context.Context {
	return t.ctx
}

// Duration returns the time elapsed since the step started.
func (t *StepTracker) Duration() time.Duration {
	return time.Since(t.Start)
}

// End closes the span and records the outcome. errType classifies err for
// the error counter and is ignored when err is nil.
func (t *StepTracker) End(err error, errType string) {
	duration := t.Duration()
	status := "ok"
	if err != nil {
		status = "error"
		t.span.RecordError(err)
		t.span.SetStatus(codes.Error, err.Error())
		t.span.SetAttributes(attribute.String(AttrErrorMessage, err.Error()))
	} else {
		t.span.SetStatus(codes.Ok, "")
	}
	t.span.SetAttributes(
		attribute.String(AttrStatus, status),
		attribute.Int64(AttrDurationMs, duration.Milliseconds()),
	)
	t.span.End()

	if t.metrics == nil {
		return
	}
	t.metrics.RecordStep(t.ctx, t.Step, status, duration)
	if err != nil {
		t.metrics.RecordStepError(t.ctx, t.Step, errType)
	}
}
