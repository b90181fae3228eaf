package bootstrap

import (
	"context"
	stderrors "errors"
	"reflect"

	"github.com/kbukum/composekit/di"
	apperrors "github.com/kbukum/composekit/errors"
	"github.com/kbukum/composekit/events"
	"github.com/kbukum/composekit/locator"
	"github.com/kbukum/composekit/logger"
	"github.com/kbukum/composekit/modularity"
	"github.com/kbukum/composekit/regions"
)

const (
	msgNilLogger    = "The logger facade must not be nil."
	msgNilCatalog   = "The module catalog is required and cannot be nil in order to initialize the modules."
	msgNilContainer = "The container is required and cannot be nil."
)

var catalogType = di.TypeOf[modularity.Catalog]()

func (b *Bootstrapper) createLogger(ctx context.Context) error {
	var (
		l   logger.Facade
		err error
	)
	if b.overrides.CreateLogger != nil {
		l, err = b.overrides.CreateLogger(ctx, b)
	} else {
		l, err = b.DefaultCreateLogger(ctx)
	}
	if err != nil {
		return err
	}
	if isNil(l) {
		return apperrors.InvalidConfiguration(msgNilLogger)
	}
	b.Logger = l
	b.log("Logger was created successfully.")
	return nil
}

// DefaultCreateLogger builds a zerolog logger from the configuration and
// installs it as the global logger. Without configuration the current
// global logger is returned.
func (b *Bootstrapper) DefaultCreateLogger(ctx context.Context) (logger.Facade, error) {
	if b.cfg == nil {
		return logger.GetGlobalLogger(), nil
	}
	l := logger.New(&b.cfg.Logging, b.cfg.Name)
	logger.SetGlobalLogger(l)
	return l, nil
}

func (b *Bootstrapper) createModuleCatalog(ctx context.Context) error {
	var (
		catalog modularity.Catalog
		err     error
	)
	if b.overrides.CreateModuleCatalog != nil {
		catalog, err = b.overrides.CreateModuleCatalog(ctx, b)
	} else {
		catalog, err = b.DefaultCreateModuleCatalog(ctx)
	}
	if err != nil {
		return err
	}
	if isNil(catalog) {
		return apperrors.InvalidConfiguration(msgNilCatalog)
	}
	b.Catalog = catalog
	return nil
}

// DefaultCreateModuleCatalog returns a catalog seeded with the configured
// modules, or an empty one.
func (b *Bootstrapper) DefaultCreateModuleCatalog(ctx context.Context) (modularity.Catalog, error) {
	if b.cfg == nil || len(b.cfg.Modules) == 0 {
		return modularity.NewCatalog(), nil
	}
	catalog, err := modularity.NewCatalogFromConfig(b.cfg.Modules)
	if err != nil {
		return nil, apperrors.InvalidConfiguration("invalid module configuration").WithCause(err)
	}
	return catalog, nil
}

func (b *Bootstrapper) configureModuleCatalog(ctx context.Context) error {
	if b.overrides.ConfigureModuleCatalog != nil {
		return b.overrides.ConfigureModuleCatalog(ctx, b)
	}
	return nil
}

func (b *Bootstrapper) createContainer(ctx context.Context) error {
	var (
		c   di.Container
		err error
	)
	if b.overrides.CreateContainer != nil {
		c, err = b.overrides.CreateContainer(ctx, b)
	} else {
		c, err = b.DefaultCreateContainer(ctx)
	}
	if err != nil {
		return err
	}
	if isNil(c) {
		return apperrors.InvalidConfiguration(msgNilContainer)
	}
	b.Container = c
	return nil
}

// DefaultCreateContainer returns a new empty container.
func (b *Bootstrapper) DefaultCreateContainer(ctx context.Context) (di.Container, error) {
	return di.NewContainer(), nil
}

func (b *Bootstrapper) configureContainer(ctx context.Context) error {
	if b.overrides.ConfigureContainer != nil {
		return b.overrides.ConfigureContainer(ctx, b)
	}
	return b.DefaultConfigureContainer(ctx)
}

func (b *Bootstrapper) configureServiceLocator(ctx context.Context) error {
	if b.overrides.ConfigureServiceLocator != nil {
		return b.overrides.ConfigureServiceLocator(ctx, b)
	}
	return b.DefaultConfigureServiceLocator(ctx)
}

// DefaultConfigureServiceLocator installs a provider that resolves the
// service locator from the container each time the slot is read.
func (b *Bootstrapper) DefaultConfigureServiceLocator(ctx context.Context) error {
	container := b.Container
	b.slot.SetProvider(func() (locator.ServiceLocator, error) {
		return di.Resolve[locator.ServiceLocator](container)
	})
	return nil
}

func (b *Bootstrapper) configureRegionAdapterMappings(ctx context.Context) error {
	var (
		mappings *regions.AdapterMappings
		err      error
	)
	if b.overrides.ConfigureRegionAdapterMappings != nil {
		mappings, err = b.overrides.ConfigureRegionAdapterMappings(ctx, b)
	} else {
		mappings, err = b.DefaultConfigureRegionAdapterMappings(ctx)
	}
	if err != nil {
		return err
	}
	b.Mappings = mappings
	return nil
}

// DefaultConfigureRegionAdapterMappings maps the built-in target kinds to
// the built-in adapters, resolved through the service locator. Selector is
// mapped before items since every SelectorTarget is also an ItemsTarget.
// Returns nil when the container has no mapping table.
func (b *Bootstrapper) DefaultConfigureRegionAdapterMappings(ctx context.Context) (*regions.AdapterMappings, error) {
	if !b.Container.HasRegistration(di.TypeOf[*regions.AdapterMappings]()) {
		logger.Debug("No region adapter mappings registered")
		return nil, nil
	}
	l, err := b.slot.Current()
	if err != nil {
		return nil, err
	}
	mappings, err := locator.Get[*regions.AdapterMappings](l, "")
	if err != nil {
		return nil, err
	}

	defaults := []struct {
		target  reflect.Type
		adapter string
	}{
		{regions.SelectorTargetType, regions.SelectorAdapterName},
		{regions.ItemsTargetType, regions.ItemsAdapterName},
		{regions.ContentTargetType, regions.ContentAdapterName},
	}
	for _, d := range defaults {
		adapter, err := locator.Get[regions.Adapter](l, d.adapter)
		if err != nil {
			return nil, err
		}
		if err := mappings.RegisterMapping(d.target, adapter); err != nil {
			return nil, err
		}
	}
	return mappings, nil
}

func (b *Bootstrapper) configureDefaultRegionBehaviors(ctx context.Context) error {
	var (
		factory *regions.BehaviorFactory
		err     error
	)
	if b.overrides.ConfigureDefaultRegionBehaviors != nil {
		factory, err = b.overrides.ConfigureDefaultRegionBehaviors(ctx, b)
	} else {
		factory, err = b.DefaultConfigureDefaultRegionBehaviors(ctx)
	}
	if err != nil {
		return err
	}
	b.Behaviors = factory
	return nil
}

// DefaultConfigureDefaultRegionBehaviors adds the built-in behaviors to the
// behavior factory. Returns nil when the container has no factory.
func (b *Bootstrapper) DefaultConfigureDefaultRegionBehaviors(ctx context.Context) (*regions.BehaviorFactory, error) {
	if !b.Container.HasRegistration(di.TypeOf[*regions.BehaviorFactory]()) {
		logger.Debug("No region behavior factory registered")
		return nil, nil
	}
	l, err := b.slot.Current()
	if err != nil {
		return nil, err
	}
	factory, err := locator.Get[*regions.BehaviorFactory](l, "")
	if err != nil {
		return nil, err
	}
	factory.AddIfMissing(regions.AutoPopulateBehaviorKey, regions.AutoPopulateBehaviorKey)
	factory.AddIfMissing(regions.ActiveAwareBehaviorKey, regions.ActiveAwareBehaviorKey)
	return factory, nil
}

func (b *Bootstrapper) registerFrameworkExceptionTypes(ctx context.Context) error {
	if b.overrides.RegisterFrameworkExceptionTypes != nil {
		return b.overrides.RegisterFrameworkExceptionTypes(ctx, b)
	}
	return b.DefaultRegisterFrameworkExceptionTypes(ctx)
}

// DefaultRegisterFrameworkExceptionTypes marks the container's resolution,
// initialization and component-not-found errors as framework errors, along
// with the module initialization wrapper and the StepError every failed run
// is wrapped in.
func (b *Bootstrapper) DefaultRegisterFrameworkExceptionTypes(ctx context.Context) error {
	for _, t := range []reflect.Type{
		reflect.TypeOf((*StepError)(nil)),
		reflect.TypeOf((*modularity.ModuleInitializeError)(nil)),
		reflect.TypeOf((*di.ResolutionError)(nil)),
		reflect.TypeOf((*di.InitializationError)(nil)),
		reflect.TypeOf((*di.ComponentNotFoundError)(nil)),
	} {
		b.classifier.RegisterFrameworkErrorType(t)
	}
	return nil
}

// createShell stores the shell, or nil for a headless host. A typed nil
// counts as no shell so the shell sub-steps are skipped.
func (b *Bootstrapper) createShell(ctx context.Context) error {
	shell := b.shell
	if b.overrides.CreateShell != nil {
		var err error
		if shell, err = b.overrides.CreateShell(ctx, b); err != nil {
			return err
		}
	}
	if isNil(shell) {
		shell = nil
	}
	b.Shell = shell
	return nil
}

func (b *Bootstrapper) setRegionManager(ctx context.Context) error {
	manager, err := di.Resolve[regions.Manager](b.Container)
	if err != nil {
		return err
	}
	if err := manager.Attach(b.Shell); err != nil {
		return err
	}
	b.RegionManager = manager
	return nil
}

func (b *Bootstrapper) updateRegions(ctx context.Context) error {
	return b.RegionManager.UpdateRegions()
}

func (b *Bootstrapper) initializeShell(ctx context.Context) error {
	if b.overrides.InitializeShell != nil {
		return b.overrides.InitializeShell(ctx, b)
	}
	return nil
}

func (b *Bootstrapper) initializeModules(ctx context.Context) error {
	if b.overrides.InitializeModules != nil {
		return b.overrides.InitializeModules(ctx, b)
	}
	return b.DefaultInitializeModules(ctx)
}

// DefaultInitializeModules resolves the module manager and runs it. A
// manager that cannot be built because the catalog binding is missing is
// reported as INVALID_CONFIGURATION; other failures are returned unchanged.
func (b *Bootstrapper) DefaultInitializeModules(ctx context.Context) error {
	manager, err := di.Resolve[modularity.Manager](b.Container)
	if err != nil {
		var notFound *di.ComponentNotFoundError
		if stderrors.As(err, &notFound) && notFound.Service == catalogType {
			return apperrors.InvalidConfiguration(msgNilCatalog).WithCause(err)
		}
		return err
	}
	b.watchModuleLoads()
	return manager.Run(ctx)
}

// watchModuleLoads counts module load attempts in the bootstrap metrics.
func (b *Bootstrapper) watchModuleLoads() {
	if b.metrics == nil {
		return
	}
	agg, ok := di.TryResolve[events.Aggregator](b.Container)
	if !ok {
		return
	}
	agg.GetEvent(events.LoadModuleCompleted).Subscribe(func(ctx context.Context, payload interface{}) {
		p, ok := payload.(modularity.LoadModuleCompletedPayload)
		if !ok {
			return
		}
		status := "ok"
		if p.Err != nil {
			status = "error"
		}
		b.metrics.RecordModuleLoad(ctx, p.Module.Name, status)
	})
}
