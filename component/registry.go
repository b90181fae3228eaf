package component

import (
	"context"
	stderrors "errors"
	"fmt"
	"sync"
	"time"

	"github.com/kbukum/composekit/logger"
)

// StopTimeout bounds each component's Stop call.
const StopTimeout = 10 * time.Second

// componentEntry holds a component and its started state.
type componentEntry struct {
	component Component
	started   bool
}

// Registry manages component lifecycle with deterministic ordering.
// Components are started in registration order and stopped in reverse order.
type Registry struct {
	entries []*componentEntry
	lookup  map[string]*componentEntry
	mu      sync.RWMutex
}

// NewRegistry creates a new component registry.
func NewRegistry() *Registry {
	return &Registry{
		entries: make([]*componentEntry, 0),
		lookup:  make(map[string]*componentEntry),
	}
}

// Register adds a component to the registry. Components are started in
// the order they are registered, so register dependencies first.
func (r *Registry) Register(c Component) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := c.Name()
	if _, exists := r.lookup[name]; exists {
		return fmt.Errorf("component %s already registered", name)
	}

	entry := &componentEntry{component: c}
	r.entries = append(r.entries, entry)
	r.lookup[name] = entry

	logger.Debug("Component registered", map[string]interface{}{
		logger.FieldComponent: name,
	})
	return nil
}

// Start starts a single registered component. Starting an already started
// component is a no-op.
func (r *Registry) Start(ctx context.Context, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.lookup[name]
	if !ok {
		return fmt.Errorf("component %s not registered", name)
	}
	return r.start(ctx, entry)
}

// StartAll starts all components in registration order.
func (r *Registry) StartAll(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	logger.Info("Starting all components", map[string]interface{}{
		"count": len(r.entries),
	})

	for _, entry := range r.entries {
		if err := r.start(ctx, entry); err != nil {
			return err
		}
	}

	logger.Info("All components started successfully")
	return nil
}

func (r *Registry) start(ctx context.Context, entry *componentEntry) error {
	if entry.started {
		return nil
	}
	name := entry.component.Name()

	logger.Debug("Starting component", map[string]interface{}{logger.FieldComponent: name})
	if err := entry.component.Start(ctx); err != nil {
		logger.Error("Component start failed", map[string]interface{}{
			logger.FieldComponent: name,
			logger.FieldError:     err.Error(),
		})
		return fmt.Errorf("failed to start %s: %w", name, err)
	}

	entry.started = true
	logger.Debug("Component started", map[string]interface{}{logger.FieldComponent: name})
	return nil
}

// StopAll gracefully stops all started components in reverse registration
// order. Every component is attempted; failures are joined.
func (r *Registry) StopAll(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	logger.Info("Stopping all components")

	var errs []error
	for i := len(r.entries) - 1; i >= 0; i-- {
		entry := r.entries[i]
		if !entry.started {
			continue
		}

		name := entry.component.Name()
		logger.Debug("Stopping component", map[string]interface{}{logger.FieldComponent: name})

		stopCtx, cancel := context.WithTimeout(ctx, StopTimeout)
		if err := entry.component.Stop(stopCtx); err != nil {
			errs = append(errs, fmt.Errorf("failed to stop %s: %w", name, err))
			logger.Error("Component stop failed", map[string]interface{}{
				logger.FieldComponent: name,
				logger.FieldError:     err.Error(),
			})
		} else {
			logger.Info("Component stopped", map[string]interface{}{logger.FieldComponent: name})
		}
		entry.started = false
		cancel()
	}

	if len(errs) > 0 {
		return stderrors.Join(errs...)
	}

	logger.Info("All components stopped successfully")
	return nil
}

// IsStarted reports whether the named component has been started.
func (r *Registry) IsStarted(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.lookup[name]
	return ok && entry.started
}

// HealthAll returns health status for all registered components.
func (r *Registry) HealthAll(ctx context.Context) []Health {
	r.mu.RLock()
	defer r.mu.RUnlock()

	results := make([]Health, 0, len(r.entries))
	for _, entry := range r.entries {
		results = append(results, entry.component.Health(ctx))
	}
	return results
}

// Get returns a registered component by name, or nil if not found.
func (r *Registry) Get(name string) Component {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if entry, exists := r.lookup[name]; exists {
		return entry.component
	}
	return nil
}

// All returns all registered components in registration order.
func (r *Registry) All() []Component {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Component, 0, len(r.entries))
	for _, entry := range r.entries {
		result = append(result, entry.component)
	}
	return result
}
