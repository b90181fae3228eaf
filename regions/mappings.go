package regions

import (
	"fmt"
	"reflect"
	"sync"

	apperrors "github.com/kbukum/composekit/errors"
)

type interfaceMapping struct {
	target  reflect.Type
	adapter Adapter
}

// AdapterMappings maps host target types to region adapters. A target's
// concrete type is matched first; otherwise interface mappings are tried in
// registration order, so register narrower interfaces first.
type AdapterMappings struct {
	mu         sync.RWMutex
	exact      map[reflect.Type]Adapter
	interfaces []interfaceMapping
}

// NewAdapterMappings creates an empty mapping table.
func NewAdapterMappings() *AdapterMappings {
	return &AdapterMappings{exact: make(map[reflect.Type]Adapter)}
}

// RegisterMapping maps target to adapter. Mapping the same type twice is an
// error.
func (m *AdapterMappings) RegisterMapping(target reflect.Type, adapter Adapter) error {
	if target == nil {
		return apperrors.InvalidInput("target", "target type must not be nil")
	}
	if adapter == nil {
		return apperrors.InvalidInput("adapter", "adapter must not be nil")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if target.Kind() == reflect.Interface {
		for _, im := range m.interfaces {
			if im.target == target {
				return apperrors.AlreadyExists("adapter mapping").WithDetail("target", target.String())
			}
		}
		m.interfaces = append(m.interfaces, interfaceMapping{target: target, adapter: adapter})
		return nil
	}

	if _, exists := m.exact[target]; exists {
		return apperrors.AlreadyExists("adapter mapping").WithDetail("target", target.String())
	}
	m.exact[target] = adapter
	return nil
}

// GetMapping returns the adapter for target.
func (m *AdapterMappings) GetMapping(target interface{}) (Adapter, error) {
	if target == nil {
		return nil, apperrors.InvalidInput("target", "target must not be nil")
	}
	t := reflect.TypeOf(target)

	m.mu.RLock()
	defer m.mu.RUnlock()

	if a, ok := m.exact[t]; ok {
		return a, nil
	}
	for _, im := range m.interfaces {
		if t.Implements(im.target) {
			return im.adapter, nil
		}
	}
	return nil, apperrors.NotFound("adapter mapping", t.String()).
		WithCause(fmt.Errorf("no region adapter registered for %s", t))
}

// Targets returns every mapped target type, exact mappings first.
func (m *AdapterMappings) Targets() []reflect.Type {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]reflect.Type, 0, len(m.exact)+len(m.interfaces))
	for t := range m.exact {
		result = append(result, t)
	}
	for _, im := range m.interfaces {
		result = append(result, im.target)
	}
	return result
}
