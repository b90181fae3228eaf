package di

import (
	"fmt"
	"reflect"
	"strings"

	apperrors "github.com/kbukum/composekit/errors"
)

// DuplicateRegistrationError is returned when a binding with the same service
// and name already exists.
type DuplicateRegistrationError struct {
	Service reflect.Type
	Name    string
}

func (e *DuplicateRegistrationError) Error() string {
	return fmt.Sprintf("di: %s is already registered as %q", typeName(e.Service), e.Name)
}

// ComponentNotFoundError is returned when no binding matches the request.
type ComponentNotFoundError struct {
	Service reflect.Type
	Name    string
}

func (e *ComponentNotFoundError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("di: no component registered for %s", typeName(e.Service))
	}
	return fmt.Sprintf("di: no component named %q registered for %s", e.Name, typeName(e.Service))
}

func (e *ComponentNotFoundError) Is(target error) bool {
	return target == apperrors.ErrResolutionFailed
}

// InitializationError is returned when a constructor fails.
type InitializationError struct {
	Service reflect.Type
	Err     error
}

func (e *InitializationError) Error() string {
	return fmt.Sprintf("di: constructor for %s failed: %v", typeName(e.Service), e.Err)
}

func (e *InitializationError) Unwrap() error { return e.Err }

func (e *InitializationError) Is(target error) bool {
	return target == apperrors.ErrResolutionFailed
}

// ResolutionError is returned when a constructor parameter cannot be resolved.
// Err holds the failure for the dependency.
type ResolutionError struct {
	Service reflect.Type
	Name    string
	Err     error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("di: cannot create %s (%s): %v", typeName(e.Service), e.Name, e.Err)
}

func (e *ResolutionError) Unwrap() error { return e.Err }

func (e *ResolutionError) Is(target error) bool {
	return target == apperrors.ErrResolutionFailed
}

// CircularDependencyError is returned when resolving a service requires
// itself. Path lists the services from the outermost request to the repeat.
type CircularDependencyError struct {
	Path []reflect.Type
}

func (e *CircularDependencyError) Error() string {
	names := make([]string, len(e.Path))
	for i, t := range e.Path {
		names[i] = typeName(t)
	}
	return "di: circular dependency: " + strings.Join(names, " -> ")
}

func (e *CircularDependencyError) Is(target error) bool {
	return target == apperrors.ErrResolutionFailed
}
