package modularity

import (
	"context"
	"fmt"

	"github.com/kbukum/composekit/component"
	"github.com/kbukum/composekit/locator"
	"github.com/kbukum/composekit/logger"
)

// Initializer creates and initializes a single module.
type Initializer interface {
	Initialize(ctx context.Context, info *ModuleInfo) error
}

// ModuleInitializer resolves module instances from the service locator.
// Modules that are also components are registered and started on the
// component registry.
type ModuleInitializer struct {
	locator    locator.ServiceLocator
	components *component.Registry
}

// NewModuleInitializer creates a ModuleInitializer. components may be nil.
func NewModuleInitializer(l locator.ServiceLocator, components *component.Registry) *ModuleInitializer {
	return &ModuleInitializer{locator: l, components: components}
}

// Initialize resolves the module bound under ModuleType with key info.Type
// and calls its Initialize.
func (i *ModuleInitializer) Initialize(ctx context.Context, info *ModuleInfo) error {
	instance, err := i.locator.GetInstance(ModuleType, info.Type)
	if err != nil {
		return &ModuleInitializeError{Module: info.Name, Type: info.Type, Err: err}
	}
	module, ok := instance.(Module)
	if !ok {
		return &ModuleInitializeError{Module: info.Name, Type: info.Type,
			Err: fmt.Errorf("%T does not implement Module", instance)}
	}

	logger.ForModule(info.Name).Debug("Initializing module", logger.Fields("type", info.Type))
	if err := module.Initialize(ctx); err != nil {
		return &ModuleInitializeError{Module: info.Name, Type: info.Type, Err: err}
	}

	if comp, ok := instance.(component.Component); ok && i.components != nil {
		if err := i.components.Register(comp); err != nil {
			return &ModuleInitializeError{Module: info.Name, Type: info.Type, Err: err}
		}
		if err := i.components.Start(ctx, comp.Name()); err != nil {
			return &ModuleInitializeError{Module: info.Name, Type: info.Type, Err: err}
		}
	}
	return nil
}
