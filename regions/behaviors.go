package regions

import (
	"fmt"
	"reflect"
	"sync"

	apperrors "github.com/kbukum/composekit/errors"
	"github.com/kbukum/composekit/locator"
	"github.com/kbukum/composekit/logger"
)

// BehaviorType is the service type region behaviors are bound under.
var BehaviorType = reflect.TypeOf((*Behavior)(nil)).Elem()

// Keys of the built-in behaviors. They double as binding names.
const (
	AutoPopulateBehaviorKey = "AutoPopulate"
	ActiveAwareBehaviorKey  = "ActiveAware"
)

// Behavior adds functionality to a region when attached.
type Behavior interface {
	Attach(region *Region) error
}

// BehaviorFactory knows which behaviors every new region gets and creates
// them through the service locator.
type BehaviorFactory struct {
	locator locator.ServiceLocator
	mu      sync.RWMutex
	keys    []string
	names   map[string]string
}

// NewBehaviorFactory creates an empty factory.
func NewBehaviorFactory(l locator.ServiceLocator) *BehaviorFactory {
	return &BehaviorFactory{locator: l, names: make(map[string]string)}
}

// AddIfMissing maps key to the behavior binding called bindingName unless
// key is already known. It reports whether the key was added.
func (f *BehaviorFactory) AddIfMissing(key, bindingName string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.names[key]; exists {
		return false
	}
	f.keys = append(f.keys, key)
	f.names[key] = bindingName
	return true
}

// Contains reports whether key is registered.
func (f *BehaviorFactory) Contains(key string) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	_, ok := f.names[key]
	return ok
}

// Keys returns registered keys in registration order.
func (f *BehaviorFactory) Keys() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return append([]string(nil), f.keys...)
}

// Create resolves a new behavior instance for key.
func (f *BehaviorFactory) Create(key string) (Behavior, error) {
	f.mu.RLock()
	name, ok := f.names[key]
	f.mu.RUnlock()
	if !ok {
		return nil, apperrors.NotFound("region behavior", key)
	}

	instance, err := f.locator.GetInstance(BehaviorType, name)
	if err != nil {
		return nil, err
	}
	b, ok := instance.(Behavior)
	if !ok {
		return nil, fmt.Errorf("regions: %T does not implement Behavior", instance)
	}
	return b, nil
}

// AutoPopulateBehavior fills a region with the views registered for its name
// in the ViewRegistry, now and whenever new ones are registered.
type AutoPopulateBehavior struct {
	views *ViewRegistry
}

func NewAutoPopulateBehavior(views *ViewRegistry) *AutoPopulateBehavior {
	return &AutoPopulateBehavior{views: views}
}

func (b *AutoPopulateBehavior) Attach(region *Region) error {
	contents, err := b.views.GetContents(region.Name())
	if err != nil {
		return err
	}
	for _, view := range contents {
		if err := region.Add(view, ""); err != nil {
			return err
		}
	}

	b.views.OnContentRegistered(func(regionName string, factory ViewFactory) {
		if regionName != region.Name() {
			return
		}
		view, err := factory()
		if err == nil {
			err = region.Add(view, "")
		}
		if err != nil {
			logger.Warn("Auto-populate failed", logger.MergeWithError(map[string]interface{}{
				logger.FieldRegion: regionName,
			}, err))
		}
	})
	return nil
}

// ActiveAware is implemented by views that want to know when they are
// activated or deactivated.
type ActiveAware interface {
	SetActive(active bool)
}

// ActiveAwareBehavior forwards activation changes to ActiveAware views.
type ActiveAwareBehavior struct{}

func NewActiveAwareBehavior() *ActiveAwareBehavior { return &ActiveAwareBehavior{} }

func (b *ActiveAwareBehavior) Attach(region *Region) error {
	region.Subscribe(func(r *Region, c Change) {
		aware, ok := c.View.(ActiveAware)
		if !ok {
			return
		}
		switch c.Kind {
		case ViewActivated:
			aware.SetActive(true)
		case ViewDeactivated:
			aware.SetActive(false)
		}
	})
	return nil
}
