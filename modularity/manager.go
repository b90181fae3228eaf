package modularity

import (
	"context"
	"sync"

	apperrors "github.com/kbukum/composekit/errors"
	"github.com/kbukum/composekit/events"
	"github.com/kbukum/composekit/logger"
)

// Manager drives module loading.
type Manager interface {
	Run(ctx context.Context) error
	LoadModule(ctx context.Context, name string) error
}

// LoadModuleCompletedPayload is published on events.LoadModuleCompleted after
// each module load attempt.
type LoadModuleCompletedPayload struct {
	Module ModuleInfo
	Err    error
}

// ModuleManager loads catalog modules through an Initializer.
type ModuleManager struct {
	catalog     Catalog
	initializer Initializer
	events      events.Aggregator
	mu          sync.Mutex
}

// NewModuleManager creates a ModuleManager. agg may be nil.
func NewModuleManager(catalog Catalog, initializer Initializer, agg events.Aggregator) *ModuleManager {
	return &ModuleManager{catalog: catalog, initializer: initializer, events: agg}
}

// Run validates the catalog and loads every WhenAvailable module together
// with its dependencies.
func (m *ModuleManager) Run(ctx context.Context) error {
	if err := m.catalog.Validate(); err != nil {
		return err
	}

	var names []string
	for _, info := range m.catalog.Modules() {
		if info.Mode == WhenAvailable {
			names = append(names, info.Name)
		}
	}
	if len(names) == 0 {
		logger.Debug("No modules to load at startup")
		return nil
	}

	list, err := m.catalog.CompleteListWithDependencies(names)
	if err != nil {
		return err
	}
	return m.load(ctx, list)
}

// LoadModule loads the named module and its dependencies. Modules that are
// already initialized are skipped.
func (m *ModuleManager) LoadModule(ctx context.Context, name string) error {
	if _, ok := m.catalog.Module(name); !ok {
		return apperrors.NotFound("module", name)
	}
	list, err := m.catalog.CompleteListWithDependencies([]string{name})
	if err != nil {
		return err
	}
	return m.load(ctx, list)
}

func (m *ModuleManager) load(ctx context.Context, list []*ModuleInfo) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, info := range list {
		if info.State == StateInitialized {
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		info.State = StateInitializing
		err := m.initializer.Initialize(ctx, info)
		if err != nil {
			info.State = StateFailed
			logger.ForModule(info.Name).Error("Module load failed", logger.ErrorFields("initialize", err))
		} else {
			info.State = StateInitialized
			logger.ForModule(info.Name).Info("Module loaded")
		}

		m.publish(ctx, *info, err)
		if err != nil {
			return err
		}
	}
	return nil
}

func (m *ModuleManager) publish(ctx context.Context, info ModuleInfo, err error) {
	if m.events == nil {
		return
	}
	m.events.GetEvent(events.LoadModuleCompleted).Publish(ctx, LoadModuleCompletedPayload{Module: info, Err: err})
}
