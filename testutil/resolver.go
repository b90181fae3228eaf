package testutil

import (
	"reflect"
	"sync"
)

// ResolverCall records one call made to StubResolver.
type ResolverCall struct {
	Method  string
	Service reflect.Type
	Name    string
}

// StubResolver is a hand-written container double. Each method returns the
// configured value for its service type and records the call.
type StubResolver struct {
	mu sync.Mutex

	Instances map[reflect.Type]interface{}
	Named     map[reflect.Type]map[string]interface{}
	All       map[reflect.Type][]interface{}
	Err       error

	calls []ResolverCall
}

// NewStubResolver creates an empty StubResolver.
func NewStubResolver() *StubResolver {
	return &StubResolver{
		Instances: make(map[reflect.Type]interface{}),
		Named:     make(map[reflect.Type]map[string]interface{}),
		All:       make(map[reflect.Type][]interface{}),
	}
}

// Resolve returns Instances[service], or Err.
func (s *StubResolver) Resolve(service reflect.Type) (interface{}, error) {
	s.record("Resolve", service, "")
	if s.Err != nil {
		return nil, s.Err
	}
	return s.Instances[service], nil
}

// ResolveNamed returns Named[service][name], or Err.
func (s *StubResolver) ResolveNamed(service reflect.Type, name string) (interface{}, error) {
	s.record("ResolveNamed", service, name)
	if s.Err != nil {
		return nil, s.Err
	}
	return s.Named[service][name], nil
}

// ResolveAll returns All[service] as configured (possibly nil), or Err.
func (s *StubResolver) ResolveAll(service reflect.Type) ([]interface{}, error) {
	s.record("ResolveAll", service, "")
	if s.Err != nil {
		return nil, s.Err
	}
	return s.All[service], nil
}

// Calls returns the recorded calls in order.
func (s *StubResolver) Calls() []ResolverCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]ResolverCall(nil), s.calls...)
}

func (s *StubResolver) record(method string, service reflect.Type, name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, ResolverCall{Method: method, Service: service, Name: name})
}
