package bootstrap

import (
	"context"
	stderrors "errors"
	"io"
	"os"
	"reflect"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/composekit/component"
	"github.com/kbukum/composekit/di"
	apperrors "github.com/kbukum/composekit/errors"
	"github.com/kbukum/composekit/locator"
	"github.com/kbukum/composekit/logger"
	"github.com/kbukum/composekit/modularity"
	"github.com/kbukum/composekit/observability"
	"github.com/kbukum/composekit/regions"
)

const meterName = "github.com/kbukum/composekit/bootstrap"

// Bootstrapper runs the startup sequence of a composed application: it
// creates the logger, module catalog and container, registers the default
// services, wires the region infrastructure and finally loads the modules.
//
// The exported fields are set by the steps as they run.
type Bootstrapper struct {
	Logger        logger.Facade
	Catalog       modularity.Catalog
	Container     di.Container
	Shell         interface{}
	RegionManager regions.Manager
	Mappings      *regions.AdapterMappings
	Behaviors     *regions.BehaviorFactory
	State         *State

	cfg         *Config
	slot        *locator.Slot
	classifier  *apperrors.Classifier
	useDefaults *bool
	overrides   Overrides
	shell       interface{}
	summaryOut  io.Writer

	runID       string
	started     time.Time
	metrics     *observability.Metrics
	providers   *observability.Providers
	onCompleted []Hook
	onShutdown  []Hook
}

// New creates a Bootstrapper.
//
// Example:
//
//	cfg, err := bootstrap.LoadConfig("orders-app")
//	b := bootstrap.New(bootstrap.WithConfig(cfg), bootstrap.WithOverrides(overrides))
//	if err := b.Run(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer b.Shutdown(context.Background())
func New(opts ...Option) *Bootstrapper {
	b := &Bootstrapper{
		State:      &State{},
		slot:       locator.Default,
		classifier: apperrors.Framework,
		summaryOut: os.Stdout,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// RunID identifies the latest run in logs, spans and metrics.
func (b *Bootstrapper) RunID() string { return b.runID }

// Config returns the configuration the bootstrapper was created with, or nil.
func (b *Bootstrapper) Config() *Config { return b.cfg }

// Slot returns the slot the service locator provider is installed in.
func (b *Bootstrapper) Slot() *locator.Slot { return b.slot }

// Classifier returns the classifier framework error types are registered with.
func (b *Bootstrapper) Classifier() *apperrors.Classifier { return b.classifier }

// UseDefaultConfiguration reports whether ConfigureContainer registers the
// default services.
func (b *Bootstrapper) UseDefaultConfiguration() bool {
	if b.useDefaults != nil {
		return *b.useDefaults
	}
	if b.cfg != nil {
		return b.cfg.DefaultConfiguration()
	}
	return true
}

type step struct {
	name      string
	message   string
	shellOnly bool
	run       func(ctx context.Context) error
}

func (b *Bootstrapper) steps() []step {
	return []step{
		{name: StepCreateLogger, run: b.createLogger},
		{name: StepCreateModuleCatalog, message: "Creating module catalog.", run: b.createModuleCatalog},
		{name: StepConfigureModuleCatalog, message: "Configuring module catalog.", run: b.configureModuleCatalog},
		{name: StepCreateContainer, message: "Creating container.", run: b.createContainer},
		{name: StepConfigureContainer, message: "Configuring container.", run: b.configureContainer},
		{name: StepConfigureServiceLocator, message: "Configuring service locator singleton.", run: b.configureServiceLocator},
		{name: StepConfigureRegionAdapterMappings, message: "Configuring region adapters.", run: b.configureRegionAdapterMappings},
		{name: StepConfigureDefaultRegionBehaviors, message: "Configuring default region behaviors.", run: b.configureDefaultRegionBehaviors},
		{name: StepRegisterFrameworkExceptionTypes, message: "Registering framework exception types.", run: b.registerFrameworkExceptionTypes},
		{name: StepCreateShell, message: "Creating shell.", run: b.createShell},
		{name: StepSetRegionManager, message: "Setting the region manager.", shellOnly: true, run: b.setRegionManager},
		{name: StepUpdateRegions, message: "Updating regions.", shellOnly: true, run: b.updateRegions},
		{name: StepInitializeShell, message: "Initializing shell.", shellOnly: true, run: b.initializeShell},
		{name: StepInitializeModules, message: "Initializing modules.", run: b.initializeModules},
	}
}

// Run executes the sequence once, in order. It stops at the first failing
// step and returns a *StepError wrapping that step's error; nothing is
// retried or rolled back.
func (b *Bootstrapper) Run(ctx context.Context) error {
	b.State = &State{}
	b.runID = uuid.NewString()
	b.started = time.Now()
	ctx = logger.ContextWithRunID(ctx, b.runID)

	if b.cfg != nil {
		b.cfg.ApplyDefaults()
		if err := b.cfg.Validate(); err != nil {
			return err
		}
		if err := b.providers.Shutdown(ctx); err != nil {
			logger.Warn("Previous telemetry providers did not shut down cleanly", logger.ErrorFields("shutdown", err))
		}
		b.providers = nil
		providers, err := observability.Setup(ctx, &b.cfg.Observability)
		if err != nil {
			return apperrors.InvalidConfiguration("observability setup failed").WithCause(err)
		}
		b.providers = providers
	}

	metrics, err := observability.NewMetrics(observability.Meter(meterName))
	if err != nil {
		logger.Warn("Bootstrap metrics disabled", logger.ErrorFields("new_metrics", err))
	}
	b.metrics = metrics

	ctx, span := observability.StartSpan(ctx, observability.SpanBootstrapRun,
		trace.WithAttributes(attribute.String(observability.AttrRunID, b.runID)))
	defer span.End()

	for i, s := range b.steps() {
		if s.shellOnly && b.Shell == nil {
			continue
		}
		if s.message != "" {
			b.log(s.message)
		}

		tracker := observability.StartStep(ctx, b.metrics, b.runID, s.name, i)
		err := s.run(tracker.Context())
		tracker.End(err, errorKind(err))
		b.State.record(StepRecord{Name: s.name, Index: i, Duration: tracker.Duration(), Err: err})

		if err != nil {
			stepErr := &StepError{Step: s.name, Index: i, Err: err}
			span.RecordError(stepErr)
			span.SetStatus(codes.Error, stepErr.Error())
			b.recordRun(ctx, "error")
			if b.Logger != nil {
				b.Logger.Log(stepErr.Error(), logger.CategoryException, logger.PriorityHigh)
			}
			return stepErr
		}
	}

	b.log("Bootstrapper sequence completed.")

	if err := runHooks(ctx, b.onCompleted); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		b.recordRun(ctx, "error")
		return err
	}
	b.State.complete()
	span.SetStatus(codes.Ok, "")
	b.recordRun(ctx, "ok")

	summary := b.Summary(ctx)
	summary.Log()
	if b.cfg != nil && b.cfg.ShowSummary {
		summary.Print(b.summaryOut)
	}
	return nil
}

// Shutdown runs the shutdown hooks, stops the lifecycle components modules
// registered, closes the container and flushes telemetry. It keeps going
// after a failure and returns every error joined.
func (b *Bootstrapper) Shutdown(ctx context.Context) error {
	var errs []error
	if err := runHooks(ctx, b.onShutdown); err != nil {
		errs = append(errs, err)
	}
	if b.Container != nil {
		if registry, ok := di.TryResolve[*component.Registry](b.Container); ok {
			if err := registry.StopAll(ctx); err != nil {
				errs = append(errs, err)
			}
		}
		if err := b.Container.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := b.providers.Shutdown(ctx); err != nil {
		errs = append(errs, err)
	}

	err := stderrors.Join(errs...)
	if err != nil {
		logger.Error("Shutdown completed with errors", logger.ErrorFields("shutdown", err))
	} else {
		logger.Info("Shutdown complete", logger.Fields(logger.FieldRunID, b.runID))
	}
	return err
}

func (b *Bootstrapper) log(message string) {
	if b.Logger != nil {
		b.Logger.Log(message, logger.CategoryDebug, logger.PriorityLow)
	}
}

func (b *Bootstrapper) recordRun(ctx context.Context, status string) {
	if b.metrics != nil {
		b.metrics.RecordRun(ctx, status, time.Since(b.started))
	}
}

// errorKind labels err for the step error counter.
func errorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case apperrors.IsInvalidConfiguration(err):
		return "invalid_configuration"
	case stderrors.Is(err, apperrors.ErrResolutionFailed):
		return "resolution"
	default:
		return "other"
	}
}

func isNil(v interface{}) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Func, reflect.Interface, reflect.Chan:
		return rv.IsNil()
	}
	return false
}
