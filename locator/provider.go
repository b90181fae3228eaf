package locator

import (
	stderrors "errors"
	"sync"
)

// ErrProviderNotSet is returned by Current when no provider was installed.
var ErrProviderNotSet = stderrors.New("locator: service locator provider is not set")

// Provider produces the current ServiceLocator.
type Provider func() (ServiceLocator, error)

// Slot holds the process-wide locator provider. It is written once at
// startup and read from anywhere afterwards.
type Slot struct {
	mu       sync.RWMutex
	provider Provider
}

// Default is the slot used when no other is configured.
var Default = &Slot{}

// SetProvider installs p. A later call replaces the earlier provider.
func (s *Slot) SetProvider(p Provider) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.provider = p
}

// IsSet reports whether a provider is installed.
func (s *Slot) IsSet() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.provider != nil
}

// Current invokes the provider. The provider runs on every call.
func (s *Slot) Current() (ServiceLocator, error) {
	s.mu.RLock()
	p := s.provider
	s.mu.RUnlock()

	if p == nil {
		return nil, ErrProviderNotSet
	}
	return p()
}

// SetProvider installs p on the Default slot.
func SetProvider(p Provider) { Default.SetProvider(p) }

// Current returns the locator from the Default slot.
func Current() (ServiceLocator, error) { return Default.Current() }
