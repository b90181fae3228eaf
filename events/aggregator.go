package events

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/kbukum/composekit/logger"
)

// Well-known event names published by composekit itself.
const (
	// LoadModuleCompleted carries a modularity.LoadModuleCompletedPayload.
	LoadModuleCompleted = "LoadModuleCompleted"
	// RegionCreated carries the region name.
	RegionCreated = "RegionCreated"
	// NavigationCompleted carries a regions.NavigationResult.
	NavigationCompleted = "NavigationCompleted"
)

// Aggregator hands out named events so publishers and subscribers never
// reference each other directly.
type Aggregator interface {
	GetEvent(name string) *Event
}

// EventAggregator is the default Aggregator. Events are created on first use
// and live for the lifetime of the aggregator.
type EventAggregator struct {
	mu     sync.Mutex
	events map[string]*Event
}

// NewEventAggregator creates an empty EventAggregator.
func NewEventAggregator() *EventAggregator {
	return &EventAggregator{events: make(map[string]*Event)}
}

// GetEvent returns the event called name, creating it if needed. Repeated
// calls with the same name return the same *Event.
func (a *EventAggregator) GetEvent(name string) *Event {
	a.mu.Lock()
	defer a.mu.Unlock()

	if e, ok := a.events[name]; ok {
		return e
	}
	e := &Event{name: name}
	a.events[name] = e
	return e
}

// Names returns the names of every event created so far.
func (a *EventAggregator) Names() []string {
	a.mu.Lock()
	defer a.mu.Unlock()

	names := make([]string, 0, len(a.events))
	for name := range a.events {
		names = append(names, name)
	}
	return names
}

// Handler receives a published payload.
type Handler func(ctx context.Context, payload interface{})

// SubscriptionToken identifies one subscription.
type SubscriptionToken string

// SubscribeOption customises a subscription.
type SubscribeOption func(*subscription)

// WithFilter only delivers payloads for which filter returns true.
func WithFilter(filter func(payload interface{}) bool) SubscribeOption {
	return func(s *subscription) {
		s.filter = filter
	}
}

// WithAsync delivers each payload on its own goroutine instead of the
// publisher's.
func WithAsync() SubscribeOption {
	return func(s *subscription) {
		s.async = true
	}
}

type subscription struct {
	token   SubscriptionToken
	handler Handler
	filter  func(payload interface{}) bool
	async   bool
}

// Event is a named channel with ordered subscribers.
type Event struct {
	name string
	mu   sync.RWMutex
	subs []*subscription
}

// Name returns the event name.
func (e *Event) Name() string { return e.name }

// Subscribe adds handler and returns its token. A nil handler is ignored and
// yields an empty token.
func (e *Event) Subscribe(handler Handler, opts ...SubscribeOption) SubscriptionToken {
	if handler == nil {
		return ""
	}
	s := &subscription{
		token:   SubscriptionToken(uuid.NewString()),
		handler: handler,
	}
	for _, opt := range opts {
		opt(s)
	}

	e.mu.Lock()
	e.subs = append(e.subs, s)
	e.mu.Unlock()

	logger.Debug("Event subscription added", map[string]interface{}{
		"event": e.name,
		"token": string(s.token),
	})
	return s.token
}

// Unsubscribe removes the subscription and reports whether it existed.
func (e *Event) Unsubscribe(token SubscriptionToken) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	for i, s := range e.subs {
		if s.token == token {
			e.subs = append(e.subs[:i:i], e.subs[i+1:]...)
			return true
		}
	}
	return false
}

// Contains reports whether token is a live subscription.
func (e *Event) Contains(token SubscriptionToken) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()

	for _, s := range e.subs {
		if s.token == token {
			return true
		}
	}
	return false
}

// Publish delivers payload to every matching subscriber in subscription
// order. Synchronous handlers run before Publish returns.
func (e *Event) Publish(ctx context.Context, payload interface{}) {
	e.mu.RLock()
	subs := append([]*subscription(nil), e.subs...)
	e.mu.RUnlock()

	for _, s := range subs {
		if s.filter != nil && !s.filter(payload) {
			continue
		}
		if s.async {
			go s.handler(ctx, payload)
			continue
		}
		s.handler(ctx, payload)
	}
}

// Subscribers returns the number of live subscriptions.
func (e *Event) Subscribers() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.subs)
}
