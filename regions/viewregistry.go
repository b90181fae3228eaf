package regions

import (
	"reflect"
	"sync"

	apperrors "github.com/kbukum/composekit/errors"
	"github.com/kbukum/composekit/locator"
	"github.com/kbukum/composekit/logger"
)

// View is any value a region can hold.
type View interface{}

// ViewType is the service type views are bound under, keyed by view name.
var ViewType = reflect.TypeOf((*View)(nil)).Elem()

// ViewFactory builds a view instance.
type ViewFactory func() (interface{}, error)

// ContentRegisteredFunc is called when a view factory is registered for a
// region.
type ContentRegisteredFunc func(regionName string, factory ViewFactory)

// ViewRegistry remembers which views belong to which region so regions
// created later can be populated.
type ViewRegistry struct {
	mu        sync.RWMutex
	factories map[string][]ViewFactory
	listeners []ContentRegisteredFunc
}

// NewViewRegistry creates an empty registry.
func NewViewRegistry() *ViewRegistry {
	return &ViewRegistry{factories: make(map[string][]ViewFactory)}
}

// RegisterViewWithRegion records factory for regionName and notifies the
// content-registered listeners.
func (v *ViewRegistry) RegisterViewWithRegion(regionName string, factory ViewFactory) error {
	if regionName == "" {
		return apperrors.MissingField("region")
	}
	if factory == nil {
		return apperrors.InvalidInput("factory", "view factory must not be nil")
	}

	v.mu.Lock()
	v.factories[regionName] = append(v.factories[regionName], factory)
	listeners := append([]ContentRegisteredFunc(nil), v.listeners...)
	v.mu.Unlock()

	for _, l := range listeners {
		l(regionName, factory)
	}
	return nil
}

// RegisterViewTypeWithRegion registers a view resolved from the locator by
// name each time the region is populated.
func (v *ViewRegistry) RegisterViewTypeWithRegion(regionName string, l locator.ServiceLocator, viewName string) error {
	return v.RegisterViewWithRegion(regionName, func() (interface{}, error) {
		return l.GetInstance(ViewType, viewName)
	})
}

// GetContents builds one view per factory registered for regionName.
func (v *ViewRegistry) GetContents(regionName string) ([]interface{}, error) {
	v.mu.RLock()
	factories := append([]ViewFactory(nil), v.factories[regionName]...)
	v.mu.RUnlock()

	views := make([]interface{}, 0, len(factories))
	for _, f := range factories {
		view, err := f()
		if err != nil {
			logger.Error("View creation failed", logger.MergeWithError(map[string]interface{}{
				logger.FieldRegion: regionName,
			}, err))
			return nil, err
		}
		views = append(views, view)
	}
	return views, nil
}

// OnContentRegistered adds a listener for later registrations.
func (v *ViewRegistry) OnContentRegistered(fn ContentRegisteredFunc) {
	if fn == nil {
		return
	}
	v.mu.Lock()
	v.listeners = append(v.listeners, fn)
	v.mu.Unlock()
}
