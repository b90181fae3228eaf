package di

import (
	"context"
	stderrors "errors"
	"fmt"
	"reflect"
	"sync"

	apperrors "github.com/kbukum/composekit/errors"
	"github.com/kbukum/composekit/logger"
)

// Lifetime determines how many instances a binding produces.
type Lifetime int

const (
	Transient Lifetime = iota // New instance on every resolve
	Singleton                 // One instance, created on first resolve
)

func (l Lifetime) String() string {
	if l == Singleton {
		return "singleton"
	}
	return "transient"
}

// ServiceKey identifies a requested service: its type and an optional name.
type ServiceKey struct {
	Type reflect.Type
	Name string
}

func (k ServiceKey) String() string {
	if k.Name == "" {
		return typeName(k.Type)
	}
	return fmt.Sprintf("%s[%s]", typeName(k.Type), k.Name)
}

// Container defines the interface for a dependency injection container.
type Container interface {
	Register(service reflect.Type, constructor interface{}, lifetime Lifetime, opts ...RegisterOption) error
	RegisterInstance(service reflect.Type, instance interface{}, opts ...RegisterOption) error
	HasRegistration(service reflect.Type) bool
	HasNamedRegistration(service reflect.Type, name string) bool
	Resolve(service reflect.Type) (interface{}, error)
	ResolveNamed(service reflect.Type, name string) (interface{}, error)
	ResolveAll(service reflect.Type) ([]interface{}, error)
	Close() error

	// Introspection
	Registrations() []Registration
}

// Registration describes a binding for introspection. It never changes once
// the binding is registered, apart from Initialized.
type Registration struct {
	Service        reflect.Type
	Name           string
	Implementation reflect.Type
	Lifetime       Lifetime
	Initialized    bool
}

// UnifiedContainer is the default Container. Bindings are keyed by service
// type; the first binding registered for a type is its default.
type UnifiedContainer struct {
	bindings map[reflect.Type][]*binding
	order    []*binding
	created  []interface{}
	mutex    sync.RWMutex
}

type binding struct {
	service     reflect.Type
	name        string
	impl        reflect.Type
	lifetime    Lifetime
	constructor reflect.Value
	instance    interface{}
	initialized bool
	mutex       sync.Mutex
}

// RegisterOption customises a single registration.
type RegisterOption func(*registerOptions)

type registerOptions struct {
	name string
}

// WithName gives the binding an explicit name, used by ResolveNamed.
func WithName(name string) RegisterOption {
	return func(o *registerOptions) {
		o.name = name
	}
}

var (
	contextType = reflect.TypeOf((*context.Context)(nil)).Elem()
	errorType   = reflect.TypeOf((*error)(nil)).Elem()
)

func NewContainer() Container {
	return &UnifiedContainer{
		bindings: make(map[reflect.Type][]*binding),
	}
}

// Register binds service to a constructor function. The constructor returns
// the implementation, optionally followed by an error; its parameters are
// resolved from the container by type (a context.Context parameter receives
// context.Background()).
func (c *UnifiedContainer) Register(service reflect.Type, constructor interface{}, lifetime Lifetime, opts ...RegisterOption) error {
	if service == nil {
		return apperrors.InvalidInput("service", "service type must not be nil")
	}
	if constructor == nil {
		return apperrors.InvalidInput("constructor", "constructor must not be nil")
	}

	fn := reflect.ValueOf(constructor)
	if fn.Kind() != reflect.Func {
		return apperrors.InvalidInput("constructor", "constructor must be a function")
	}
	fnType := fn.Type()
	switch {
	case fnType.NumOut() == 1:
	case fnType.NumOut() == 2 && fnType.Out(1) == errorType:
	default:
		return apperrors.InvalidInput("constructor", "constructor must return either (instance) or (instance, error)")
	}
	impl := fnType.Out(0)
	if !impl.AssignableTo(service) {
		return apperrors.InvalidInput("constructor",
			fmt.Sprintf("%s is not assignable to %s", typeName(impl), typeName(service)))
	}

	return c.add(&binding{
		service:     service,
		name:        resolveOptions(opts).nameOr(typeName(impl)),
		impl:        impl,
		lifetime:    lifetime,
		constructor: fn,
	})
}

// RegisterInstance binds service to a pre-built instance. The container never
// closes instances it did not create.
func (c *UnifiedContainer) RegisterInstance(service reflect.Type, instance interface{}, opts ...RegisterOption) error {
	if service == nil {
		return apperrors.InvalidInput("service", "service type must not be nil")
	}
	if isNil(instance) {
		return apperrors.InvalidInput("instance", fmt.Sprintf("nil instance provided for %s", typeName(service)))
	}
	impl := reflect.TypeOf(instance)
	if !impl.AssignableTo(service) {
		return apperrors.InvalidInput("instance",
			fmt.Sprintf("%s is not assignable to %s", typeName(impl), typeName(service)))
	}

	return c.add(&binding{
		service:     service,
		name:        resolveOptions(opts).nameOr(typeName(impl)),
		impl:        impl,
		lifetime:    Singleton,
		instance:    instance,
		initialized: true,
	})
}

func (c *UnifiedContainer) add(b *binding) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	for _, existing := range c.bindings[b.service] {
		if existing.name == b.name {
			return &DuplicateRegistrationError{Service: b.service, Name: b.name}
		}
	}
	c.bindings[b.service] = append(c.bindings[b.service], b)
	c.order = append(c.order, b)

	logger.Debug("Component registered", map[string]interface{}{
		logger.FieldService: typeName(b.service),
		"name":              b.name,
		"lifetime":          b.lifetime.String(),
	})
	return nil
}

// HasRegistration reports whether any binding exists for service.
func (c *UnifiedContainer) HasRegistration(service reflect.Type) bool {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return len(c.bindings[service]) > 0
}

// HasNamedRegistration reports whether a binding named name exists for service.
func (c *UnifiedContainer) HasNamedRegistration(service reflect.Type, name string) bool {
	return c.lookup(service, name) != nil
}

// Resolve returns an instance of the default binding for service.
func (c *UnifiedContainer) Resolve(service reflect.Type) (interface{}, error) {
	return c.resolveService(service, nil)
}

// ResolveNamed returns an instance of the binding named name for service.
func (c *UnifiedContainer) ResolveNamed(service reflect.Type, name string) (interface{}, error) {
	b := c.lookup(service, name)
	if b == nil {
		return nil, &ComponentNotFoundError{Service: service, Name: name}
	}
	return c.instantiate(b, nil)
}

// ResolveAll returns one instance per binding for service, in registration
// order. No bindings yields an empty slice.
func (c *UnifiedContainer) ResolveAll(service reflect.Type) ([]interface{}, error) {
	c.mutex.RLock()
	list := append([]*binding(nil), c.bindings[service]...)
	c.mutex.RUnlock()

	result := make([]interface{}, 0, len(list))
	for _, b := range list {
		instance, err := c.instantiate(b, nil)
		if err != nil {
			return nil, err
		}
		result = append(result, instance)
	}
	return result, nil
}

func (c *UnifiedContainer) lookup(service reflect.Type, name string) *binding {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	for _, b := range c.bindings[service] {
		if b.name == name {
			return b
		}
	}
	return nil
}

func (c *UnifiedContainer) resolveService(service reflect.Type, path []*binding) (interface{}, error) {
	c.mutex.RLock()
	list := c.bindings[service]
	c.mutex.RUnlock()

	if len(list) == 0 {
		return nil, &ComponentNotFoundError{Service: service}
	}
	return c.instantiate(list[0], path)
}

func (c *UnifiedContainer) instantiate(b *binding, path []*binding) (interface{}, error) {
	for _, p := range path {
		if p == b {
			chain := make([]reflect.Type, 0, len(path)+1)
			for _, q := range path {
				chain = append(chain, q.service)
			}
			return nil, &CircularDependencyError{Path: append(chain, b.service)}
		}
	}
	path = append(path, b)

	if b.lifetime == Transient {
		return c.construct(b, path)
	}

	// Double-checked under the binding's own lock so unrelated singletons
	// can be built concurrently.
	b.mutex.Lock()
	defer b.mutex.Unlock()
	if b.initialized {
		return b.instance, nil
	}

	instance, err := c.construct(b, path)
	if err != nil {
		return nil, err
	}
	b.instance = instance
	b.initialized = true

	c.mutex.Lock()
	c.created = append(c.created, instance)
	c.mutex.Unlock()

	logger.Debug("Singleton component created", map[string]interface{}{
		logger.FieldService: typeName(b.service),
		"name":              b.name,
	})
	return instance, nil
}

func (c *UnifiedContainer) construct(b *binding, path []*binding) (interface{}, error) {
	fnType := b.constructor.Type()
	args := make([]reflect.Value, fnType.NumIn())
	for i := range args {
		in := fnType.In(i)
		if in == contextType {
			args[i] = reflect.ValueOf(context.Background())
			continue
		}
		dep, err := c.resolveService(in, path)
		if err != nil {
			return nil, &ResolutionError{Service: b.service, Name: b.name, Err: err}
		}
		if dep == nil {
			args[i] = reflect.Zero(in)
		} else {
			args[i] = reflect.ValueOf(dep)
		}
	}

	results := b.constructor.Call(args)
	if len(results) == 2 && !results[1].IsNil() {
		return nil, &InitializationError{Service: b.service, Err: results[1].Interface().(error)}
	}
	instance := results[0].Interface()
	if isNil(instance) {
		return nil, &InitializationError{Service: b.service, Err: fmt.Errorf("constructor returned nil")}
	}
	return instance, nil
}

// Registrations returns info about all bindings in registration order.
func (c *UnifiedContainer) Registrations() []Registration {
	c.mutex.RLock()
	order := append([]*binding(nil), c.order...)
	c.mutex.RUnlock()

	result := make([]Registration, 0, len(order))
	for _, b := range order {
		b.mutex.Lock()
		initialized := b.initialized
		b.mutex.Unlock()
		result = append(result, Registration{
			Service:        b.service,
			Name:           b.name,
			Implementation: b.impl,
			Lifetime:       b.lifetime,
			Initialized:    initialized,
		})
	}
	return result
}

// Close closes every singleton the container created that implements
// Close() error, most recently created first.
func (c *UnifiedContainer) Close() error {
	c.mutex.Lock()
	created := c.created
	c.created = nil
	c.mutex.Unlock()

	var errs []error
	for i := len(created) - 1; i >= 0; i-- {
		if closer, ok := created[i].(interface{ Close() error }); ok {
			if err := closer.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return stderrors.Join(errs...)
}

func resolveOptions(opts []RegisterOption) *registerOptions {
	o := &registerOptions{}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func (o *registerOptions) nameOr(fallback string) string {
	if o.name != "" {
		return o.name
	}
	return fallback
}

func typeName(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}
	return t.String()
}

func isNil(v interface{}) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Func, reflect.Interface, reflect.Chan:
		return rv.IsNil()
	}
	return false
}
