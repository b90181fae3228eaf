package modularity

import (
	"fmt"
	"sort"
	"sync"

	apperrors "github.com/kbukum/composekit/errors"
)

// Catalog holds the modules an application may load.
type Catalog interface {
	AddModule(info *ModuleInfo) error
	Modules() []*ModuleInfo
	Module(name string) (*ModuleInfo, bool)
	Validate() error
	CompleteListWithDependencies(names []string) ([]*ModuleInfo, error)
	Sorted() ([]*ModuleInfo, error)
}

// ModuleCatalog is the in-memory Catalog. Modules keep their insertion order.
type ModuleCatalog struct {
	mu      sync.RWMutex
	modules []*ModuleInfo
	byName  map[string]*ModuleInfo
}

// NewCatalog creates an empty catalog.
func NewCatalog() *ModuleCatalog {
	return &ModuleCatalog{byName: make(map[string]*ModuleInfo)}
}

// NewCatalogFromConfig creates a catalog from configuration entries.
func NewCatalogFromConfig(configs []ModuleConfig) (*ModuleCatalog, error) {
	c := NewCatalog()
	for _, cfg := range configs {
		info, err := cfg.ToInfo()
		if err != nil {
			return nil, apperrors.InvalidConfiguration(err.Error())
		}
		if err := c.AddModule(info); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// AddModule appends info. Names must be unique and non-empty.
func (c *ModuleCatalog) AddModule(info *ModuleInfo) error {
	if info == nil {
		return apperrors.InvalidInput("module", "module info must not be nil")
	}
	if info.Name == "" {
		return apperrors.MissingField("name")
	}
	if info.Type == "" {
		info.Type = info.Name
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.byName[info.Name]; exists {
		return apperrors.AlreadyExists("module").WithDetail("module", info.Name)
	}
	c.modules = append(c.modules, info)
	c.byName[info.Name] = info
	return nil
}

// Modules returns the catalog entries in insertion order.
func (c *ModuleCatalog) Modules() []*ModuleInfo {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]*ModuleInfo(nil), c.modules...)
}

// Module looks up an entry by name.
func (c *ModuleCatalog) Module(name string) (*ModuleInfo, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	info, ok := c.byName[name]
	return info, ok
}

// Validate checks that every dependency is known, that no WhenAvailable
// module depends on an OnDemand one, and that there are no cycles.
func (c *ModuleCatalog) Validate() error {
	c.mu.RLock()
	for _, m := range c.modules {
		for _, dep := range m.DependsOn {
			target, ok := c.byName[dep]
			if !ok {
				c.mu.RUnlock()
				return apperrors.InvalidConfiguration(
					fmt.Sprintf("module %s depends on unknown module %s", m.Name, dep))
			}
			if m.Mode == WhenAvailable && target.Mode == OnDemand {
				c.mu.RUnlock()
				return apperrors.InvalidConfiguration(
					fmt.Sprintf("module %s is loaded when available but depends on on-demand module %s", m.Name, dep))
			}
		}
	}
	c.mu.RUnlock()

	_, err := c.Sorted()
	return err
}

// Sorted returns every module in dependency order. Modules on the same
// dependency level keep catalog order.
func (c *ModuleCatalog) Sorted() ([]*ModuleInfo, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return sortModules(c.modules, c.byName)
}

// CompleteListWithDependencies returns the named modules plus everything they
// depend on, transitively, in dependency order.
func (c *ModuleCatalog) CompleteListWithDependencies(names []string) ([]*ModuleInfo, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	wanted := make(map[string]bool)
	var visit func(name, from string) error
	visit = func(name, from string) error {
		if wanted[name] {
			return nil
		}
		info, ok := c.byName[name]
		if !ok {
			if from == "" {
				return apperrors.NotFound("module", name)
			}
			return apperrors.InvalidConfiguration(
				fmt.Sprintf("module %s depends on unknown module %s", from, name))
		}
		wanted[name] = true
		for _, dep := range info.DependsOn {
			if err := visit(dep, name); err != nil {
				return err
			}
		}
		return nil
	}
	for _, name := range names {
		if err := visit(name, ""); err != nil {
			return nil, err
		}
	}

	subset := make([]*ModuleInfo, 0, len(wanted))
	for _, m := range c.modules {
		if wanted[m.Name] {
			subset = append(subset, m)
		}
	}
	return sortModules(subset, c.byName)
}

// sortModules groups modules by dependency level with Kahn's algorithm.
// Dependencies outside the given set are treated as already satisfied.
func sortModules(modules []*ModuleInfo, byName map[string]*ModuleInfo) ([]*ModuleInfo, error) {
	index := make(map[string]int, len(modules))
	for i, m := range modules {
		index[m.Name] = i
	}

	inDegree := make(map[string]int, len(modules))
	dependents := make(map[string][]string)
	for _, m := range modules {
		inDegree[m.Name] = 0
		for _, dep := range m.DependsOn {
			if _, inSet := index[dep]; !inSet {
				if _, known := byName[dep]; !known {
					return nil, apperrors.InvalidConfiguration(
						fmt.Sprintf("module %s depends on unknown module %s", m.Name, dep))
				}
				continue
			}
			inDegree[m.Name]++
			dependents[dep] = append(dependents[dep], m.Name)
		}
	}

	var queue []string
	for _, m := range modules {
		if inDegree[m.Name] == 0 {
			queue = append(queue, m.Name)
		}
	}

	result := make([]*ModuleInfo, 0, len(modules))
	for len(queue) > 0 {
		for _, name := range queue {
			result = append(result, modules[index[name]])
		}

		var next []string
		for _, name := range queue {
			for _, dep := range dependents[name] {
				inDegree[dep]--
				if inDegree[dep] == 0 {
					next = append(next, dep)
				}
			}
		}
		sort.Slice(next, func(i, j int) bool { return index[next[i]] < index[next[j]] })
		queue = next
	}

	if len(result) != len(modules) {
		return nil, apperrors.InvalidConfiguration(
			fmt.Sprintf("module dependency cycle detected, ordered %d of %d modules", len(result), len(modules)))
	}
	return result, nil
}
