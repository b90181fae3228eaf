package bootstrap

import (
	"context"

	"github.com/kbukum/composekit/di"
	"github.com/kbukum/composekit/logger"
	"github.com/kbukum/composekit/modularity"
	"github.com/kbukum/composekit/regions"
)

// Overrides replaces individual steps. A nil field runs the default, which
// is also exported as a Default* method so an override can call it.
//
//	bootstrap.Overrides{
//	    ConfigureContainer: func(ctx context.Context, b *bootstrap.Bootstrapper) error {
//	        if err := b.DefaultConfigureContainer(ctx); err != nil {
//	            return err
//	        }
//	        return modularity.RegisterModuleType(b.Container, "orders", orders.New)
//	    },
//	}
type Overrides struct {
	CreateLogger                    func(ctx context.Context, b *Bootstrapper) (logger.Facade, error)
	CreateModuleCatalog             func(ctx context.Context, b *Bootstrapper) (modularity.Catalog, error)
	ConfigureModuleCatalog          func(ctx context.Context, b *Bootstrapper) error
	CreateContainer                 func(ctx context.Context, b *Bootstrapper) (di.Container, error)
	ConfigureContainer              func(ctx context.Context, b *Bootstrapper) error
	ConfigureServiceLocator         func(ctx context.Context, b *Bootstrapper) error
	ConfigureRegionAdapterMappings  func(ctx context.Context, b *Bootstrapper) (*regions.AdapterMappings, error)
	ConfigureDefaultRegionBehaviors func(ctx context.Context, b *Bootstrapper) (*regions.BehaviorFactory, error)
	RegisterFrameworkExceptionTypes func(ctx context.Context, b *Bootstrapper) error
	CreateShell                     func(ctx context.Context, b *Bootstrapper) (interface{}, error)
	InitializeShell                 func(ctx context.Context, b *Bootstrapper) error
	InitializeModules               func(ctx context.Context, b *Bootstrapper) error
}
