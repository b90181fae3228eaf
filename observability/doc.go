// Package observability provides OpenTelemetry tracing and metrics for the
// bootstrap sequence and health reporting for started components.
//
// Setup:
//
//	providers, err := observability.Setup(ctx, &cfg.Observability)
//	defer providers.Shutdown(ctx)
//
// Step tracking:
//
//	tracker := observability.StartStep(ctx, metrics, runID, "configure_container", 3)
//	err := step(tracker.Context())
//	tracker.End(err, "resolution")
//
// Health:
//
//	health := observability.CollectHealth(ctx, "my-app", "1.0.0", registry)
package observability
