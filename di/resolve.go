package di

import (
	"fmt"
	"reflect"
)

// TypeOf returns the reflect.Type for T, including interface types.
//
//	di.TypeOf[locator.ServiceLocator]()
func TypeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// Register binds T to constructor.
//
// Example:
//
//	err := di.Register[modularity.Manager](c, modularity.NewModuleManager, di.Singleton)
func Register[T any](c Container, constructor interface{}, lifetime Lifetime, opts ...RegisterOption) error {
	return c.Register(TypeOf[T](), constructor, lifetime, opts...)
}

// RegisterInstance binds T to an existing instance.
func RegisterInstance[T any](c Container, instance T, opts ...RegisterOption) error {
	return c.RegisterInstance(TypeOf[T](), instance, opts...)
}

// Resolve resolves a component with type safety, returns error on failure.
// Container errors are returned unchanged so callers can inspect them with
// errors.As.
func Resolve[T any](c Container) (T, error) {
	var zero T
	instance, err := c.Resolve(TypeOf[T]())
	if err != nil {
		return zero, err
	}
	return cast[T](instance)
}

// ResolveNamed resolves the binding named name for T.
func ResolveNamed[T any](c Container, name string) (T, error) {
	var zero T
	instance, err := c.ResolveNamed(TypeOf[T](), name)
	if err != nil {
		return zero, err
	}
	return cast[T](instance)
}

// ResolveAll resolves every binding for T in registration order.
func ResolveAll[T any](c Container) ([]T, error) {
	instances, err := c.ResolveAll(TypeOf[T]())
	if err != nil {
		return nil, err
	}
	result := make([]T, 0, len(instances))
	for _, instance := range instances {
		v, err := cast[T](instance)
		if err != nil {
			return nil, err
		}
		result = append(result, v)
	}
	return result, nil
}

// MustResolve resolves a component with type safety, panics on error.
// Use this in wiring code where a missing dependency is a programming error.
//
// Example:
//
//	regions := di.MustResolve[regions.Manager](container)
func MustResolve[T any](c Container) T {
	v, err := Resolve[T](c)
	if err != nil {
		panic(fmt.Sprintf("di: failed to resolve %s: %v", TypeOf[T](), err))
	}
	return v
}

// TryResolve resolves a component, returns zero value and false if not found.
// Use this when a dependency is optional.
//
// Example:
//
//	if agg, ok := di.TryResolve[events.Aggregator](c); ok {
//	    agg.GetEvent("ModuleLoaded").Publish(name)
//	}
func TryResolve[T any](c Container) (T, bool) {
	v, err := Resolve[T](c)
	if err != nil {
		var zero T
		return zero, false
	}
	return v, true
}

func cast[T any](instance interface{}) (T, error) {
	result, ok := instance.(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("di: component is %T, expected %s", instance, TypeOf[T]())
	}
	return result, nil
}
