package regions

import (
	"context"
	"fmt"
	"sync"

	apperrors "github.com/kbukum/composekit/errors"
	"github.com/kbukum/composekit/events"
	"github.com/kbukum/composekit/locator"
	"github.com/kbukum/composekit/logger"
)

// Declaration names a region and the host target it is shown in.
type Declaration struct {
	Name   string
	Target interface{}
}

// Host is implemented by shells that declare regions.
type Host interface {
	RegionDeclarations() []Declaration
}

// ManagerAware is implemented by shells that want the region manager.
type ManagerAware interface {
	SetRegionManager(m Manager)
}

// Manager owns the application's regions.
type Manager interface {
	Attach(shell interface{}) error
	UpdateRegions() error
	Region(name string) (*Region, bool)
	Regions() []*Region
	AddRegion(r *Region) error
	RemoveRegion(name string) bool
	RegisterViewWithRegion(regionName string, factory ViewFactory) error
	RequestNavigate(ctx context.Context, regionName, target string, params map[string]string) (NavigationResult, error)
}

// RegionManager is the default Manager. Regions declared by attached hosts
// stay pending until UpdateRegions creates them.
type RegionManager struct {
	locator   locator.ServiceLocator
	mappings  *AdapterMappings
	behaviors *BehaviorFactory
	views     *ViewRegistry
	events    events.Aggregator

	mu      sync.RWMutex
	hosts   []Host
	regions []*Region
	byName  map[string]*Region
}

// NewRegionManager creates a RegionManager. agg may be nil.
func NewRegionManager(l locator.ServiceLocator, mappings *AdapterMappings, behaviors *BehaviorFactory,
	views *ViewRegistry, agg events.Aggregator) *RegionManager {
	return &RegionManager{
		locator:   l,
		mappings:  mappings,
		behaviors: behaviors,
		views:     views,
		events:    agg,
		byName:    make(map[string]*Region),
	}
}

// Attach connects a shell. Shells implementing Host contribute region
// declarations; shells implementing ManagerAware receive the manager.
func (m *RegionManager) Attach(shell interface{}) error {
	if shell == nil {
		return apperrors.InvalidInput("shell", "shell must not be nil")
	}
	if host, ok := shell.(Host); ok {
		m.mu.Lock()
		m.hosts = append(m.hosts, host)
		m.mu.Unlock()
	}
	if aware, ok := shell.(ManagerAware); ok {
		aware.SetRegionManager(m)
	}
	logger.Debug("Shell attached to region manager", map[string]interface{}{
		"shell": fmt.Sprintf("%T", shell),
	})
	return nil
}

// UpdateRegions creates every declared region that does not exist yet.
func (m *RegionManager) UpdateRegions() error {
	m.mu.RLock()
	hosts := append([]Host(nil), m.hosts...)
	m.mu.RUnlock()

	for _, host := range hosts {
		for _, decl := range host.RegionDeclarations() {
			if _, exists := m.Region(decl.Name); exists {
				continue
			}
			region, err := m.createRegion(decl)
			if err != nil {
				return err
			}
			if err := m.AddRegion(region); err != nil {
				return err
			}
		}
	}
	return nil
}

func (m *RegionManager) createRegion(decl Declaration) (*Region, error) {
	if decl.Name == "" {
		return nil, apperrors.MissingField("region name")
	}
	adapter, err := m.mappings.GetMapping(decl.Target)
	if err != nil {
		return nil, err
	}
	region, err := adapter.Initialize(decl.Target, decl.Name)
	if err != nil {
		return nil, err
	}

	instance, err := m.locator.GetInstance(NavigationServiceType, "")
	if err != nil {
		return nil, err
	}
	ns, ok := instance.(NavigationService)
	if !ok {
		return nil, fmt.Errorf("regions: %T is not a NavigationService", instance)
	}
	region.SetNavigationService(ns)

	for _, key := range m.behaviors.Keys() {
		b, err := m.behaviors.Create(key)
		if err != nil {
			return nil, err
		}
		if err := region.AddBehavior(key, b); err != nil {
			return nil, err
		}
	}
	return region, nil
}

// Region returns the region called name.
func (m *RegionManager) Region(name string) (*Region, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.byName[name]
	return r, ok
}

// Regions returns all regions in creation order.
func (m *RegionManager) Regions() []*Region {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]*Region(nil), m.regions...)
}

// AddRegion registers r. Region names are unique.
func (m *RegionManager) AddRegion(r *Region) error {
	if r == nil {
		return apperrors.InvalidInput("region", "region must not be nil")
	}
	m.mu.Lock()
	if _, exists := m.byName[r.Name()]; exists {
		m.mu.Unlock()
		return apperrors.AlreadyExists("region").WithDetail(detailRegion, r.Name())
	}
	m.regions = append(m.regions, r)
	m.byName[r.Name()] = r
	m.mu.Unlock()

	r.setManager(m)
	logger.Debug("Region created", map[string]interface{}{logger.FieldRegion: r.Name()})
	if m.events != nil {
		m.events.GetEvent(events.RegionCreated).Publish(context.Background(), r.Name())
	}
	return nil
}

// RemoveRegion drops the region called name and reports whether it existed.
func (m *RegionManager) RemoveRegion(name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.byName[name]
	if !ok {
		return false
	}
	delete(m.byName, name)
	for i, existing := range m.regions {
		if existing == r {
			m.regions = append(m.regions[:i:i], m.regions[i+1:]...)
			break
		}
	}
	return true
}

// RegisterViewWithRegion registers factory in the view registry. Existing
// regions with the auto-populate behavior pick the view up immediately.
func (m *RegionManager) RegisterViewWithRegion(regionName string, factory ViewFactory) error {
	return m.views.RegisterViewWithRegion(regionName, factory)
}

// RequestNavigate navigates the named region to target.
func (m *RegionManager) RequestNavigate(ctx context.Context, regionName, target string, params map[string]string) (NavigationResult, error) {
	region, ok := m.Region(regionName)
	if !ok {
		err := apperrors.NotFound("region", regionName)
		return NavigationResult{Region: regionName, Target: target, Err: err}, err
	}
	ns := region.NavigationService()
	if ns == nil {
		err := apperrors.InvalidConfiguration(fmt.Sprintf("region %s has no navigation service", regionName))
		return NavigationResult{Region: regionName, Target: target, Err: err}, err
	}

	result, err := ns.RequestNavigate(ctx, target, params)
	if m.events != nil {
		m.events.GetEvent(events.NavigationCompleted).Publish(ctx, result)
	}
	return result, err
}
