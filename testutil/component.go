package testutil

import (
	"context"
	"sync"

	"github.com/kbukum/composekit/component"
)

// Journal collects lifecycle events across several FakeComponents so tests
// can assert ordering.
type Journal struct {
	mu     sync.Mutex
	events []string
}

// Add appends an event.
func (j *Journal) Add(event string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.events = append(j.events, event)
}

// Events returns the events in order.
func (j *Journal) Events() []string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]string(nil), j.events...)
}

// FakeComponent is a component.Component that records Start and Stop as
// "start:<name>" and "stop:<name>" in its Journal.
type FakeComponent struct {
	ComponentName string
	Journal       *Journal
	StartErr      error
	StopErr       error

	mu      sync.Mutex
	running bool
}

// NewFakeComponent creates a FakeComponent writing to journal.
func NewFakeComponent(name string, journal *Journal) *FakeComponent {
	return &FakeComponent{ComponentName: name, Journal: journal}
}

func (c *FakeComponent) Name() string { return c.ComponentName }

func (c *FakeComponent) Start(ctx context.Context) error {
	c.note("start")
	if c.StartErr != nil {
		return c.StartErr
	}
	c.mu.Lock()
	c.running = true
	c.mu.Unlock()
	return nil
}

func (c *FakeComponent) Stop(ctx context.Context) error {
	c.note("stop")
	c.mu.Lock()
	c.running = false
	c.mu.Unlock()
	return c.StopErr
}

func (c *FakeComponent) Health(ctx context.Context) component.Health {
	status := component.StatusUnhealthy
	if c.Running() {
		status = component.StatusHealthy
	}
	return component.Health{Name: c.ComponentName, Status: status}
}

// Running reports whether Start succeeded and Stop has not been called since.
func (c *FakeComponent) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

func (c *FakeComponent) note(action string) {
	if c.Journal != nil {
		c.Journal.Add(action + ":" + c.ComponentName)
	}
}
