package errors

import (
	stderrors "errors"
	"reflect"
	"sync"
)

// Classifier records which error types belong to the framework itself rather
// than to application code. Error reporting uses it to skip framework wrappers
// and surface the error the application actually raised.
//
// Registration happens once during bootstrap; lookups are safe from any goroutine.
type Classifier struct {
	mu    sync.RWMutex
	types map[reflect.Type]struct{}
}

// Framework is the process-wide classifier used when none is supplied explicitly.
var Framework = NewClassifier()

// NewClassifier creates an empty classifier.
func NewClassifier() *Classifier {
	return &Classifier{types: make(map[reflect.Type]struct{})}
}

// RegisterFrameworkErrorType marks t as a framework error type.
// Registering the same type twice is a no-op.
func (c *Classifier) RegisterFrameworkErrorType(t reflect.Type) {
	if t == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.types[t] = struct{}{}
}

// IsFrameworkErrorRegistered reports whether t has been registered.
func (c *Classifier) IsFrameworkErrorRegistered(t reflect.Type) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.types[t]
	return ok
}

// IsFrameworkError reports whether the dynamic type of err is registered.
// Only err itself is inspected, not its chain.
func (c *Classifier) IsFrameworkError(err error) bool {
	if err == nil {
		return false
	}
	return c.IsFrameworkErrorRegistered(reflect.TypeOf(err))
}

// RegisteredTypes returns the registered framework error types.
func (c *Classifier) RegisteredTypes() []reflect.Type {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]reflect.Type, 0, len(c.types))
	for t := range c.types {
		out = append(out, t)
	}
	return out
}

// RootCause walks err's unwrap chain and returns the first error that is not a
// framework error. If every error in the chain is a framework error, err is
// returned unchanged.
func (c *Classifier) RootCause(err error) error {
	for cur := err; cur != nil; cur = stderrors.Unwrap(cur) {
		if !c.IsFrameworkError(cur) {
			return cur
		}
	}
	return err
}
