package bootstrap

import (
	"bytes"
	"context"
	stderrors "errors"
	"io"
	"reflect"
	"strings"
	"testing"

	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/kbukum/composekit/config"
	"github.com/kbukum/composekit/di"
	apperrors "github.com/kbukum/composekit/errors"
	"github.com/kbukum/composekit/events"
	"github.com/kbukum/composekit/locator"
	"github.com/kbukum/composekit/logger"
	"github.com/kbukum/composekit/modularity"
	"github.com/kbukum/composekit/observability"
	"github.com/kbukum/composekit/regions"
	"github.com/kbukum/composekit/testutil"
)

var headlessSteps = []string{
	StepCreateLogger,
	StepCreateModuleCatalog,
	StepConfigureModuleCatalog,
	StepCreateContainer,
	StepConfigureContainer,
	StepConfigureServiceLocator,
	StepConfigureRegionAdapterMappings,
	StepConfigureDefaultRegionBehaviors,
	StepRegisterFrameworkExceptionTypes,
	StepCreateShell,
	StepInitializeModules,
}

// fixture is a bootstrapper isolated from the process-wide locator slot and
// error classifier.
type fixture struct {
	b          *Bootstrapper
	facade     *testutil.RecordingFacade
	slot       *locator.Slot
	classifier *apperrors.Classifier
}

func newFixture(overrides Overrides, opts ...Option) *fixture {
	f := &fixture{
		facade:     testutil.NewRecordingFacade(),
		slot:       &locator.Slot{},
		classifier: apperrors.NewClassifier(),
	}
	if overrides.CreateLogger == nil {
		overrides.CreateLogger = func(ctx context.Context, b *Bootstrapper) (logger.Facade, error) {
			return f.facade, nil
		}
	}
	base := []Option{
		WithLocatorSlot(f.slot),
		WithClassifier(f.classifier),
		WithOverrides(overrides),
		WithSummaryWriter(io.Discard),
	}
	f.b = New(append(base, opts...)...)
	return f
}

func (f *fixture) run(t *testing.T) {
	t.Helper()
	if err := f.b.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
}

func stepError(t *testing.T, err error) *StepError {
	t.Helper()
	if err == nil {
		t.Fatal("expected Run() to fail")
	}
	var se *StepError
	if !stderrors.As(err, &se) {
		t.Fatalf("expected *StepError, got %T: %v", err, err)
	}
	return se
}

// --- test doubles ---

type contentTarget struct {
	content interface{}
}

func (c *contentTarget) SetContent(view interface{}) { c.content = view }

type testShell struct {
	main    *contentTarget
	manager regions.Manager
}

type lateHost struct {
	panel *contentTarget
}

func (h *lateHost) RegionDeclarations() []regions.Declaration {
	return []regions.Declaration{{Name: "details", Target: h.panel}}
}

func newTestShell() *testShell {
	return &testShell{main: &contentTarget{}}
}

func (s *testShell) RegionDeclarations() []regions.Declaration {
	return []regions.Declaration{{Name: "main", Target: s.main}}
}

func (s *testShell) SetRegionManager(m regions.Manager) { s.manager = m }

type recordingModule struct {
	name    string
	journal *testutil.Journal
}

func (m *recordingModule) Initialize(ctx context.Context) error {
	m.journal.Add("init:" + m.name)
	return nil
}

// serviceModule is a module that is also a lifecycle component.
type serviceModule struct {
	*testutil.FakeComponent
}

func (m *serviceModule) Initialize(ctx context.Context) error {
	m.Journal.Add("init:" + m.Name())
	return nil
}

func registerModules(journal *testutil.Journal, names ...string) func(ctx context.Context, b *Bootstrapper) error {
	return func(ctx context.Context, b *Bootstrapper) error {
		if err := b.DefaultConfigureContainer(ctx); err != nil {
			return err
		}
		for _, name := range names {
			n := name
			err := modularity.RegisterModuleType(b.Container, n, func() modularity.Module {
				return &recordingModule{name: n, journal: journal}
			})
			if err != nil {
				return err
			}
		}
		return nil
	}
}

// --- sequence ---

func TestRunHeadlessStepOrder(t *testing.T) {
	f := newFixture(Overrides{})
	f.run(t)

	testutil.T(t).EqualStrings(f.b.State.Steps(), headlessSteps, "executed steps")
	if !f.b.State.Completed() {
		t.Error("expected State.Completed() after a successful run")
	}
	if f.b.RegionManager != nil {
		t.Error("expected no region manager without a shell")
	}

	wantLog := []string{
		"Logger was created successfully.",
		"Creating module catalog.",
		"Configuring module catalog.",
		"Creating container.",
		"Configuring container.",
		"Configuring service locator singleton.",
		"Configuring region adapters.",
		"Configuring default region behaviors.",
		"Registering framework exception types.",
		"Creating shell.",
		"Initializing modules.",
		"Bootstrapper sequence completed.",
	}
	testutil.T(t).EqualStrings(f.facade.Messages(), wantLog, "log messages")
	for _, e := range f.facade.Entries() {
		if e.Category != logger.CategoryDebug || e.Priority != logger.PriorityLow {
			t.Errorf("entry %q logged as %s/%s, want debug/low", e.Message, e.Category, e.Priority)
		}
	}
}

func TestRunWithShellCreatesRegions(t *testing.T) {
	shell := newTestShell()
	f := newFixture(Overrides{
		ConfigureContainer: func(ctx context.Context, b *Bootstrapper) error {
			if err := b.DefaultConfigureContainer(ctx); err != nil {
				return err
			}
			views, err := di.Resolve[*regions.ViewRegistry](b.Container)
			if err != nil {
				return err
			}
			return views.RegisterViewWithRegion("main", func() (interface{}, error) {
				return "home", nil
			})
		},
	}, WithShell(shell))
	f.run(t)

	want := []string{
		StepCreateLogger,
		StepCreateModuleCatalog,
		StepConfigureModuleCatalog,
		StepCreateContainer,
		StepConfigureContainer,
		StepConfigureServiceLocator,
		StepConfigureRegionAdapterMappings,
		StepConfigureDefaultRegionBehaviors,
		StepRegisterFrameworkExceptionTypes,
		StepCreateShell,
		StepSetRegionManager,
		StepUpdateRegions,
		StepInitializeShell,
		StepInitializeModules,
	}
	testutil.T(t).EqualStrings(f.b.State.Steps(), want, "executed steps")

	if shell.manager == nil || shell.manager != f.b.RegionManager {
		t.Fatal("expected the shell to receive the region manager")
	}
	region, ok := f.b.RegionManager.Region("main")
	if !ok {
		t.Fatal("expected region main to be created")
	}
	if got := region.Behaviors(); len(got) != 2 {
		t.Errorf("expected 2 default behaviors, got %v", got)
	}
	if shell.main.content != "home" {
		t.Errorf("expected auto-populated view to be shown, got %v", shell.main.content)
	}
	if region.NavigationService() == nil {
		t.Error("expected region to have a navigation service")
	}
}

func TestInitializeShellOverride(t *testing.T) {
	var sawManager bool
	f := newFixture(Overrides{
		CreateShell: func(ctx context.Context, b *Bootstrapper) (interface{}, error) {
			return newTestShell(), nil
		},
		InitializeShell: func(ctx context.Context, b *Bootstrapper) error {
			sawManager = b.RegionManager != nil
			return nil
		},
	})
	f.run(t)

	if !sawManager {
		t.Error("expected InitializeShell to run after the region manager was set")
	}
	if !f.b.State.Executed(StepInitializeShell) {
		t.Error("expected InitializeShell to be recorded")
	}
}

func TestTypedNilShellSkipsShellSteps(t *testing.T) {
	tests := []struct {
		name string
		opts []Option
		over Overrides
	}{
		{
			name: "override",
			over: Overrides{
				CreateShell: func(ctx context.Context, b *Bootstrapper) (interface{}, error) {
					var shell *testShell
					return shell, nil
				},
			},
		},
		{
			name: "option",
			opts: []Option{WithShell((*testShell)(nil))},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(tt.over, tt.opts...)
			f.run(t)

			testutil.T(t).EqualStrings(f.b.State.Steps(), headlessSteps, "executed steps")
			if f.b.Shell != nil {
				t.Errorf("expected typed nil shell to be stored as nil, got %#v", f.b.Shell)
			}
		})
	}
}

func TestHostAttachedAfterRunGetsRegions(t *testing.T) {
	f := newFixture(Overrides{}, WithShell(newTestShell()))
	f.run(t)

	late := &lateHost{panel: &contentTarget{}}
	if err := f.b.RegionManager.Attach(late); err != nil {
		t.Fatalf("Attach() error = %v", err)
	}
	if _, ok := f.b.RegionManager.Region("details"); ok {
		t.Fatal("expected the region to stay pending until UpdateRegions")
	}
	if err := f.b.RegionManager.UpdateRegions(); err != nil {
		t.Fatalf("UpdateRegions() error = %v", err)
	}
	region, ok := f.b.RegionManager.Region("details")
	if !ok {
		t.Fatal("expected the late host's region to be created")
	}
	if len(region.Behaviors()) != 2 {
		t.Errorf("expected default behaviors on the late region, got %v", region.Behaviors())
	}
	if _, ok := f.b.RegionManager.Region("main"); !ok {
		t.Error("expected the shell region to be kept")
	}
}

func TestRunIsRepeatable(t *testing.T) {
	f := newFixture(Overrides{})
	f.run(t)
	first, firstID := f.b.Container, f.b.RunID()

	f.run(t)
	if f.b.Container == first {
		t.Error("expected a new container on the second run")
	}
	if f.b.RunID() == firstID {
		t.Error("expected a new run ID on the second run")
	}
	testutil.T(t).EqualStrings(f.b.State.Steps(), headlessSteps, "steps of second run")
}

// --- required collaborators ---

func TestNilLoggerFailsFirstStep(t *testing.T) {
	tests := []struct {
		name   string
		facade logger.Facade
	}{
		{"untyped nil", nil},
		{"typed nil", (*testutil.RecordingFacade)(nil)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := New(
				WithLocatorSlot(&locator.Slot{}),
				WithClassifier(apperrors.NewClassifier()),
				WithOverrides(Overrides{
					CreateLogger: func(ctx context.Context, b *Bootstrapper) (logger.Facade, error) {
						return tt.facade, nil
					},
				}),
			)
			se := stepError(t, b.Run(context.Background()))
			if se.Step != StepCreateLogger || se.Index != 0 {
				t.Errorf("failed at %s (%d), want %s (0)", se.Step, se.Index, StepCreateLogger)
			}
			if !apperrors.IsInvalidConfiguration(se) {
				t.Errorf("expected INVALID_CONFIGURATION, got %v", se)
			}
			testutil.T(t).EqualStrings(b.State.Steps(), []string{StepCreateLogger}, "executed steps")
			if b.Container != nil {
				t.Error("expected no container to be created")
			}
		})
	}
}

func TestNilCollaboratorsAreRejected(t *testing.T) {
	tests := []struct {
		name      string
		overrides Overrides
		step      string
		message   string
	}{
		{
			name: "catalog",
			overrides: Overrides{
				CreateModuleCatalog: func(ctx context.Context, b *Bootstrapper) (modularity.Catalog, error) {
					return nil, nil
				},
			},
			step:    StepCreateModuleCatalog,
			message: msgNilCatalog,
		},
		{
			name: "typed nil catalog",
			overrides: Overrides{
				CreateModuleCatalog: func(ctx context.Context, b *Bootstrapper) (modularity.Catalog, error) {
					return (*modularity.ModuleCatalog)(nil), nil
				},
			},
			step:    StepCreateModuleCatalog,
			message: msgNilCatalog,
		},
		{
			name: "container",
			overrides: Overrides{
				CreateContainer: func(ctx context.Context, b *Bootstrapper) (di.Container, error) {
					return nil, nil
				},
			},
			step:    StepCreateContainer,
			message: msgNilContainer,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(tt.overrides)
			se := stepError(t, f.b.Run(context.Background()))
			if se.Step != tt.step {
				t.Errorf("failed at %s, want %s", se.Step, tt.step)
			}
			appErr, ok := apperrors.AsAppError(se)
			if !ok || appErr.Code != apperrors.ErrCodeInvalidConfiguration {
				t.Fatalf("expected INVALID_CONFIGURATION, got %v", se)
			}
			if appErr.Message != tt.message {
				t.Errorf("message = %q, want %q", appErr.Message, tt.message)
			}
			if f.b.State.Completed() {
				t.Error("expected the run not to complete")
			}
		})
	}
}

func TestStepErrorFailsFastAndLogsException(t *testing.T) {
	boom := stderrors.New("boom")
	var laterRan bool
	f := newFixture(Overrides{
		ConfigureModuleCatalog: func(ctx context.Context, b *Bootstrapper) error {
			return boom
		},
		CreateContainer: func(ctx context.Context, b *Bootstrapper) (di.Container, error) {
			laterRan = true
			return di.NewContainer(), nil
		},
	})
	se := stepError(t, f.b.Run(context.Background()))

	if !stderrors.Is(se, boom) {
		t.Errorf("expected StepError to unwrap to the step error, got %v", se)
	}
	if laterRan {
		t.Error("expected later steps not to run")
	}
	want := "bootstrap: step 3 (ConfigureModuleCatalog) failed: boom"
	if se.Error() != want {
		t.Errorf("Error() = %q, want %q", se.Error(), want)
	}
	entries := f.facade.Entries()
	last := entries[len(entries)-1]
	if last.Category != logger.CategoryException || last.Priority != logger.PriorityHigh {
		t.Errorf("expected failure logged as exception/high, got %s/%s", last.Category, last.Priority)
	}
	records := f.b.State.Records()
	if records[len(records)-1].Err != boom {
		t.Error("expected the failing step to be recorded with its error")
	}
}

// --- container configuration ---

func TestDefaultRegistrationLifetimes(t *testing.T) {
	f := newFixture(Overrides{})
	f.run(t)
	c := f.b.Container

	transient := []reflect.Type{regions.JournalEntryType, regions.JournalType, regions.NavigationServiceType}
	for _, typ := range transient {
		a, err := c.Resolve(typ)
		if err != nil {
			t.Fatalf("Resolve(%s) error = %v", typ, err)
		}
		b, _ := c.Resolve(typ)
		if a == b {
			t.Errorf("%s: expected distinct instances", typ)
		}
	}

	singleton := []reflect.Type{
		regions.ContentLoaderType,
		di.TypeOf[locator.ServiceLocator](),
		di.TypeOf[modularity.Manager](),
		di.TypeOf[events.Aggregator](),
		di.TypeOf[regions.Manager](),
	}
	for _, typ := range singleton {
		a, err := c.Resolve(typ)
		if err != nil {
			t.Fatalf("Resolve(%s) error = %v", typ, err)
		}
		b, _ := c.Resolve(typ)
		if a != b {
			t.Errorf("%s: expected the same instance", typ)
		}
	}

	self, err := di.Resolve[di.Container](c)
	if err != nil || self != c {
		t.Errorf("expected the container to resolve itself, got %v (%v)", self, err)
	}
	facade, err := di.Resolve[logger.Facade](c)
	if err != nil || facade != logger.Facade(f.facade) {
		t.Errorf("expected the logger instance to be registered, got %v (%v)", facade, err)
	}
	catalog, err := di.Resolve[modularity.Catalog](c)
	if err != nil || catalog != f.b.Catalog {
		t.Errorf("expected the catalog instance to be registered, got %v (%v)", catalog, err)
	}
}

func TestRegisterTypeIfMissingKeepsApplicationBinding(t *testing.T) {
	custom := events.NewEventAggregator()
	f := newFixture(Overrides{
		ConfigureContainer: func(ctx context.Context, b *Bootstrapper) error {
			if err := di.RegisterInstance[events.Aggregator](b.Container, custom); err != nil {
				return err
			}
			return b.DefaultConfigureContainer(ctx)
		},
	})
	f.run(t)

	got, err := di.Resolve[events.Aggregator](f.b.Container)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if got != events.Aggregator(custom) {
		t.Error("expected the application's aggregator to be kept")
	}
	if !f.facade.Contains("Type 'events.Aggregator' was already registered by the application. Skipping...") {
		t.Errorf("expected a skip message, got %v", f.facade.Messages())
	}
}

func TestRegisterTypeIfMissingRejectsNil(t *testing.T) {
	f := newFixture(Overrides{})
	f.run(t)

	tests := []struct {
		name        string
		service     reflect.Type
		constructor interface{}
	}{
		{"nil service", nil, events.NewEventAggregator},
		{"nil constructor", di.TypeOf[events.Aggregator](), nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := f.b.RegisterTypeIfMissing(tt.service, tt.constructor, di.Singleton)
			if !apperrors.HasCode(err, apperrors.ErrCodeInvalidInput) {
				t.Errorf("expected INVALID_INPUT, got %v", err)
			}
		})
	}
}

func TestDefaultConfigurationDisabled(t *testing.T) {
	f := newFixture(Overrides{}, WithDefaultConfiguration(false))
	se := stepError(t, f.b.Run(context.Background()))

	if f.b.UseDefaultConfiguration() {
		t.Error("expected default configuration to be disabled")
	}
	if got := len(f.b.Container.Registrations()); got != 2 {
		t.Errorf("expected only the logger and catalog registrations, got %d", got)
	}
	if f.b.Mappings != nil || f.b.Behaviors != nil {
		t.Error("expected region mappings and behaviors to be skipped")
	}

	// Without defaults there is no module manager to run.
	if se.Step != StepInitializeModules {
		t.Errorf("failed at %s, want %s", se.Step, StepInitializeModules)
	}
	if apperrors.IsInvalidConfiguration(se) {
		t.Error("a missing manager must not be reported as a missing catalog")
	}
	var notFound *di.ComponentNotFoundError
	if !stderrors.As(se, &notFound) || notFound.Service != di.TypeOf[modularity.Manager]() {
		t.Errorf("expected ComponentNotFoundError for the manager, got %v", se)
	}
}

func TestDefaultConfigurationFromConfig(t *testing.T) {
	disabled := false
	cfg := &Config{
		ServiceConfig:           config.ServiceConfig{Name: "orders-app"},
		UseDefaultConfiguration: &disabled,
	}
	f := newFixture(Overrides{InitializeModules: func(ctx context.Context, b *Bootstrapper) error { return nil }},
		WithConfig(cfg))
	f.run(t)

	if f.b.Container.HasRegistration(di.TypeOf[modularity.Manager]()) {
		t.Error("expected no default registrations when the config disables them")
	}
}

// --- service locator ---

func TestConfigureServiceLocatorInstallsLazyProvider(t *testing.T) {
	f := newFixture(Overrides{})
	if f.slot.IsSet() {
		t.Fatal("fresh slot should not be set")
	}
	f.run(t)

	if !f.slot.IsSet() {
		t.Fatal("expected the slot to be set")
	}
	current, err := f.slot.Current()
	if err != nil {
		t.Fatalf("Current() error = %v", err)
	}
	registered, err := di.Resolve[locator.ServiceLocator](f.b.Container)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if current != registered {
		t.Error("expected the slot to yield the container's locator")
	}

	agg, err := locator.Get[events.Aggregator](current, "")
	if err != nil || agg == nil {
		t.Errorf("expected the locator to resolve services, got %v (%v)", agg, err)
	}
}

// --- framework error types ---

func TestRegisterFrameworkExceptionTypes(t *testing.T) {
	f := newFixture(Overrides{})
	f.run(t)

	for _, typ := range []reflect.Type{
		reflect.TypeOf((*di.ResolutionError)(nil)),
		reflect.TypeOf((*di.InitializationError)(nil)),
		reflect.TypeOf((*di.ComponentNotFoundError)(nil)),
	} {
		if !f.classifier.IsFrameworkErrorRegistered(typ) {
			t.Errorf("expected %s to be registered", typ)
		}
	}

	for _, typ := range []reflect.Type{
		reflect.TypeOf((*StepError)(nil)),
		reflect.TypeOf((*modularity.ModuleInitializeError)(nil)),
	} {
		if !f.classifier.IsFrameworkErrorRegistered(typ) {
			t.Errorf("expected wrapper %s to be registered", typ)
		}
	}

	root := apperrors.NotFound("order", "42")
	wrapped := &di.ResolutionError{Service: reflect.TypeOf(""), Err: &di.InitializationError{Err: root}}
	if got := f.classifier.RootCause(wrapped); got != root {
		t.Errorf("RootCause() = %v, want %v", got, root)
	}
}

func TestRootCauseOfFailedRun(t *testing.T) {
	boom := stderrors.New("orders store unavailable")
	f := newFixture(Overrides{
		ConfigureContainer: func(ctx context.Context, b *Bootstrapper) error {
			if err := b.DefaultConfigureContainer(ctx); err != nil {
				return err
			}
			return modularity.RegisterModuleType(b.Container, "orders", func() (modularity.Module, error) {
				return nil, boom
			})
		},
	}, WithConfig(&Config{
		ServiceConfig: config.ServiceConfig{Name: "orders-app"},
		Modules:       []modularity.ModuleConfig{{Name: "orders"}},
	}))
	err := f.b.Run(context.Background())
	stepError(t, err)

	if got := f.classifier.RootCause(err); got != boom {
		t.Errorf("RootCause() = %v (%T), want %v", got, got, boom)
	}
}

func TestRerunShutsDownPreviousProviders(t *testing.T) {
	previous := sdktrace.NewTracerProvider()
	cfg := &Config{ServiceConfig: config.ServiceConfig{Name: "orders-app"}}
	f := newFixture(Overrides{}, WithConfig(cfg))
	f.b.providers = &observability.Providers{Tracer: previous}
	f.run(t)

	_, span := previous.Tracer("check").Start(context.Background(), "after-rerun")
	defer span.End()
	if span.IsRecording() {
		t.Error("expected the previous tracer provider to be shut down")
	}
	if f.b.providers == nil || f.b.providers.Tracer == previous {
		t.Error("expected the run to install fresh providers")
	}
}

// --- module initialization ---

func TestMissingCatalogBindingIsInvalidConfiguration(t *testing.T) {
	f := newFixture(Overrides{
		ConfigureContainer: func(ctx context.Context, b *Bootstrapper) error {
			return di.Register[modularity.Manager](b.Container, modularity.NewModuleManager, di.Singleton)
		},
	})
	se := stepError(t, f.b.Run(context.Background()))

	if se.Step != StepInitializeModules {
		t.Errorf("failed at %s, want %s", se.Step, StepInitializeModules)
	}
	appErr, ok := apperrors.AsAppError(se)
	if !ok || appErr.Code != apperrors.ErrCodeInvalidConfiguration {
		t.Fatalf("expected INVALID_CONFIGURATION, got %v", se)
	}
	if appErr.Message != msgNilCatalog {
		t.Errorf("message = %q", appErr.Message)
	}
	if !stderrors.Is(se, apperrors.ErrResolutionFailed) {
		t.Error("expected the resolution failure to be kept as cause")
	}
}

func TestOtherResolutionErrorsPropagateUnchanged(t *testing.T) {
	boom := stderrors.New("manager unavailable")
	f := newFixture(Overrides{
		ConfigureContainer: func(ctx context.Context, b *Bootstrapper) error {
			return di.Register[modularity.Manager](b.Container, func() (modularity.Manager, error) {
				return nil, boom
			}, di.Singleton)
		},
	})
	se := stepError(t, f.b.Run(context.Background()))

	if apperrors.IsInvalidConfiguration(se) {
		t.Error("expected the constructor failure not to be rewritten")
	}
	var initErr *di.InitializationError
	if !stderrors.As(se, &initErr) {
		t.Fatalf("expected InitializationError, got %T", se.Err)
	}
	if !stderrors.Is(se, boom) {
		t.Error("expected the constructor error to be reachable")
	}
}

func TestModulesFromConfigLoadInDependencyOrder(t *testing.T) {
	journal := &testutil.Journal{}
	cfg := &Config{
		ServiceConfig: config.ServiceConfig{Name: "orders-app"},
		Modules: []modularity.ModuleConfig{
			{Name: "orders", DependsOn: []string{"catalog"}},
			{Name: "catalog"},
			{Name: "reports", Mode: "on_demand"},
		},
	}
	f := newFixture(Overrides{
		ConfigureContainer: registerModules(journal, "orders", "catalog", "reports"),
	}, WithConfig(cfg))
	f.run(t)

	testutil.T(t).EqualStrings(journal.Events(), []string{"init:catalog", "init:orders"}, "initialized modules")

	states := map[string]modularity.ModuleState{}
	for _, m := range f.b.Catalog.Modules() {
		states[m.Name] = m.State
	}
	if states["orders"] != modularity.StateInitialized || states["reports"] != modularity.StateNotStarted {
		t.Errorf("unexpected module states: %v", states)
	}

	manager := di.MustResolve[modularity.Manager](f.b.Container)
	if err := manager.LoadModule(context.Background(), "reports"); err != nil {
		t.Fatalf("LoadModule() error = %v", err)
	}
	testutil.T(t).EqualStrings(journal.Events(), []string{"init:catalog", "init:orders", "init:reports"}, "after on-demand load")
}

func TestConfigureModuleCatalogOverride(t *testing.T) {
	journal := &testutil.Journal{}
	f := newFixture(Overrides{
		ConfigureModuleCatalog: func(ctx context.Context, b *Bootstrapper) error {
			return b.Catalog.AddModule(&modularity.ModuleInfo{Name: "audit", Type: "audit"})
		},
		ConfigureContainer: registerModules(journal, "audit"),
	})
	f.run(t)

	testutil.T(t).EqualStrings(journal.Events(), []string{"init:audit"}, "initialized modules")
}

// --- lifecycle ---

func TestShutdownStopsModuleComponents(t *testing.T) {
	journal := &testutil.Journal{}
	cfg := &Config{
		ServiceConfig: config.ServiceConfig{Name: "orders-app"},
		Modules:       []modularity.ModuleConfig{{Name: "cache"}},
	}
	f := newFixture(Overrides{
		ConfigureContainer: func(ctx context.Context, b *Bootstrapper) error {
			if err := b.DefaultConfigureContainer(ctx); err != nil {
				return err
			}
			return modularity.RegisterModuleType(b.Container, "cache", func() modularity.Module {
				return &serviceModule{FakeComponent: testutil.NewFakeComponent("cache", journal)}
			})
		},
	}, WithConfig(cfg))
	f.b.OnShutdown(func(ctx context.Context) error {
		journal.Add("hook:shutdown")
		return nil
	})
	f.run(t)

	if err := f.b.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}
	want := []string{"init:cache", "start:cache", "hook:shutdown", "stop:cache"}
	testutil.T(t).EqualStrings(journal.Events(), want, "lifecycle events")
}

func TestShutdownBeforeRun(t *testing.T) {
	b := New(WithLocatorSlot(&locator.Slot{}))
	if err := b.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown() before Run error = %v", err)
	}
}

func TestOnCompletedHooks(t *testing.T) {
	t.Run("runs after modules", func(t *testing.T) {
		var ran bool
		f := newFixture(Overrides{})
		f.b.OnCompleted(func(ctx context.Context) error {
			ran = f.b.State.Executed(StepInitializeModules)
			return nil
		})
		f.run(t)
		if !ran {
			t.Error("expected hook to run after modules were initialized")
		}
		if !f.b.State.Completed() {
			t.Error("expected the run to complete once hooks succeeded")
		}
	})

	t.Run("failure fails run", func(t *testing.T) {
		f := newFixture(Overrides{})
		f.b.OnCompleted(func(ctx context.Context) error { return stderrors.New("warmup failed") })
		err := f.b.Run(context.Background())
		if err == nil || !strings.Contains(err.Error(), "warmup failed") {
			t.Errorf("expected hook error, got %v", err)
		}
		if f.b.State.Completed() {
			t.Error("expected a failed hook to leave the run not completed")
		}
	})
}

// --- summary and telemetry ---

func TestSummaryPrint(t *testing.T) {
	var out bytes.Buffer
	journal := &testutil.Journal{}
	cfg := &Config{
		ServiceConfig: config.ServiceConfig{Name: "orders-app", Version: "1.4.0"},
		ShowSummary:   true,
		Modules:       []modularity.ModuleConfig{{Name: "catalog"}, {Name: "reports", Mode: "on_demand"}},
	}
	f := newFixture(Overrides{
		ConfigureContainer: registerModules(journal, "catalog", "reports"),
	}, WithConfig(cfg), WithSummaryWriter(&out), WithShell(newTestShell()))
	f.run(t)

	text := out.String()
	for _, want := range []string{"orders-app", "1.4.0", f.b.RunID(), "Steps (14)", "catalog [when_available]", "reports [on_demand]", "main (0 views, 0 active)"} {
		if !strings.Contains(text, want) {
			t.Errorf("summary missing %q:\n%s", want, text)
		}
	}

	s := f.b.Summary(context.Background())
	if !s.Completed || len(s.Steps) != 14 || len(s.Registrations) == 0 {
		t.Errorf("unexpected summary: completed=%v steps=%d registrations=%d",
			s.Completed, len(s.Steps), len(s.Registrations))
	}
}

func TestRunEmitsSpans(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	previous := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		_ = tp.Shutdown(context.Background())
		otel.SetTracerProvider(previous)
	})

	f := newFixture(Overrides{})
	f.run(t)

	var steps, runs int
	for _, span := range exporter.GetSpans() {
		switch span.Name {
		case observability.SpanBootstrapStep:
			steps++
		case observability.SpanBootstrapRun:
			runs++
		}
	}
	if steps != len(headlessSteps) || runs != 1 {
		t.Errorf("got %d step spans and %d run spans, want %d and 1", steps, runs, len(headlessSteps))
	}
}

func TestErrorKind(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{apperrors.InvalidConfiguration("bad"), "invalid_configuration"},
		{&di.ComponentNotFoundError{Service: reflect.TypeOf(0)}, "resolution"},
		{stderrors.New("other"), "other"},
	}
	for _, tt := range tests {
		if got := errorKind(tt.err); got != tt.want {
			t.Errorf("errorKind(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}
