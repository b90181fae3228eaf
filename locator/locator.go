package locator

import (
	"fmt"
	"reflect"
)

// ServiceLocator retrieves service instances by type and optional key.
type ServiceLocator interface {
	GetInstance(service reflect.Type, key string) (interface{}, error)
	GetAllInstances(service reflect.Type) ([]interface{}, error)
}

// Resolver is the part of a DI container the adapter needs.
// *di.UnifiedContainer satisfies it.
type Resolver interface {
	Resolve(service reflect.Type) (interface{}, error)
	ResolveNamed(service reflect.Type, name string) (interface{}, error)
	ResolveAll(service reflect.Type) ([]interface{}, error)
}

// ContainerAdapter exposes a Resolver as a ServiceLocator. It holds no state
// of its own: every call is forwarded, and instances and errors come back
// exactly as the container produced them.
type ContainerAdapter struct {
	resolver Resolver
}

// NewContainerAdapter wraps resolver.
func NewContainerAdapter(resolver Resolver) *ContainerAdapter {
	return &ContainerAdapter{resolver: resolver}
}

// GetInstance resolves the default binding when key is empty, otherwise the
// binding named key.
func (a *ContainerAdapter) GetInstance(service reflect.Type, key string) (interface{}, error) {
	if key == "" {
		return a.resolver.Resolve(service)
	}
	return a.resolver.ResolveNamed(service, key)
}

// GetAllInstances resolves every binding for service in container order.
// The result is never nil on success.
func (a *ContainerAdapter) GetAllInstances(service reflect.Type) ([]interface{}, error) {
	instances, err := a.resolver.ResolveAll(service)
	if err != nil {
		return nil, err
	}
	if instances == nil {
		instances = []interface{}{}
	}
	return instances, nil
}

// Get resolves T from l. An empty key selects the default binding.
//
//	mgr, err := locator.Get[regions.Manager](l, "")
func Get[T any](l ServiceLocator, key string) (T, error) {
	var zero T
	instance, err := l.GetInstance(typeOf[T](), key)
	if err != nil {
		return zero, err
	}
	result, ok := instance.(T)
	if !ok {
		return zero, fmt.Errorf("locator: instance is %T, expected %s", instance, typeOf[T]())
	}
	return result, nil
}

// GetAll resolves every binding for T from l.
func GetAll[T any](l ServiceLocator) ([]T, error) {
	instances, err := l.GetAllInstances(typeOf[T]())
	if err != nil {
		return nil, err
	}
	result := make([]T, 0, len(instances))
	for _, instance := range instances {
		v, ok := instance.(T)
		if !ok {
			return nil, fmt.Errorf("locator: instance is %T, expected %s", instance, typeOf[T]())
		}
		result = append(result, v)
	}
	return result, nil
}

func typeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}
