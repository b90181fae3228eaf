package bootstrap

import (
	"context"
	"fmt"
	"reflect"

	"github.com/kbukum/composekit/component"
	"github.com/kbukum/composekit/di"
	apperrors "github.com/kbukum/composekit/errors"
	"github.com/kbukum/composekit/events"
	"github.com/kbukum/composekit/locator"
	"github.com/kbukum/composekit/logger"
	"github.com/kbukum/composekit/modularity"
	"github.com/kbukum/composekit/regions"
)

type defaultRegistration struct {
	service     reflect.Type
	constructor interface{}
	lifetime    di.Lifetime
}

type namedRegistration struct {
	service     reflect.Type
	name        string
	constructor interface{}
}

func newServiceLocator(c di.Container) locator.ServiceLocator {
	return locator.NewContainerAdapter(c)
}

func defaultRegistrations() []defaultRegistration {
	return []defaultRegistration{
		{di.TypeOf[locator.ServiceLocator](), newServiceLocator, di.Singleton},
		{di.TypeOf[modularity.Initializer](), modularity.NewModuleInitializer, di.Singleton},
		{di.TypeOf[modularity.Manager](), modularity.NewModuleManager, di.Singleton},
		{di.TypeOf[*regions.AdapterMappings](), regions.NewAdapterMappings, di.Singleton},
		{di.TypeOf[regions.Manager](), regions.NewRegionManager, di.Singleton},
		{di.TypeOf[events.Aggregator](), events.NewEventAggregator, di.Singleton},
		{di.TypeOf[*regions.ViewRegistry](), regions.NewViewRegistry, di.Singleton},
		{di.TypeOf[*regions.BehaviorFactory](), regions.NewBehaviorFactory, di.Singleton},
		{di.TypeOf[*component.Registry](), component.NewRegistry, di.Singleton},
		{regions.JournalEntryType, regions.NewJournalEntry, di.Transient},
		{regions.JournalType, regions.NewNavigationJournal, di.Transient},
		{regions.NavigationServiceType, regions.NewRegionNavigationService, di.Transient},
		{regions.ContentLoaderType, regions.NewNavigationContentLoader, di.Singleton},
	}
}

func builtinRegistrations() []namedRegistration {
	return []namedRegistration{
		{regions.AdapterType, regions.ContentAdapterName, regions.NewContentAdapter},
		{regions.AdapterType, regions.ItemsAdapterName, regions.NewItemsAdapter},
		{regions.AdapterType, regions.SelectorAdapterName, regions.NewSelectorAdapter},
		{regions.BehaviorType, regions.AutoPopulateBehaviorKey, regions.NewAutoPopulateBehavior},
		{regions.BehaviorType, regions.ActiveAwareBehaviorKey, regions.NewActiveAwareBehavior},
	}
}

// DefaultConfigureContainer registers the logger and catalog instances and,
// when default configuration is enabled, the container itself, the
// framework services and the built-in region adapters and behaviors.
// Services the application registered earlier are left untouched.
func (b *Bootstrapper) DefaultConfigureContainer(ctx context.Context) error {
	if err := b.Container.RegisterInstance(di.TypeOf[logger.Facade](), b.Logger); err != nil {
		return err
	}
	if err := b.Container.RegisterInstance(catalogType, b.Catalog); err != nil {
		return err
	}
	if !b.UseDefaultConfiguration() {
		return nil
	}

	if err := b.Container.RegisterInstance(di.TypeOf[di.Container](), b.Container); err != nil {
		return err
	}
	for _, r := range defaultRegistrations() {
		if err := b.RegisterTypeIfMissing(r.service, r.constructor, r.lifetime); err != nil {
			return err
		}
	}
	for _, r := range builtinRegistrations() {
		if b.Container.HasNamedRegistration(r.service, r.name) {
			b.logSkipped(fmt.Sprintf("%s[%s]", r.service, r.name))
			continue
		}
		if err := b.Container.Register(r.service, r.constructor, di.Transient, di.WithName(r.name)); err != nil {
			return err
		}
	}
	return nil
}

// RegisterTypeIfMissing registers constructor for service unless the
// container already has a binding for service. An existing binding is
// never replaced; the skip is logged at debug level.
func (b *Bootstrapper) RegisterTypeIfMissing(service reflect.Type, constructor interface{}, lifetime di.Lifetime) error {
	if service == nil {
		return apperrors.InvalidInput("service", "service type must not be nil")
	}
	if constructor == nil {
		return apperrors.InvalidInput("constructor", "constructor must not be nil")
	}
	if b.Container.HasRegistration(service) {
		b.logSkipped(service.String())
		return nil
	}
	return b.Container.Register(service, constructor, lifetime)
}

func (b *Bootstrapper) logSkipped(service string) {
	b.log(fmt.Sprintf("Type '%s' was already registered by the application. Skipping...", service))
}
