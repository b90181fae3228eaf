package regions

import (
	"fmt"
	"sync"

	apperrors "github.com/kbukum/composekit/errors"
)

// ChangeKind describes what happened to a region's views.
type ChangeKind int

const (
	ViewAdded ChangeKind = iota
	ViewRemoved
	ViewActivated
	ViewDeactivated
)

func (k ChangeKind) String() string {
	switch k {
	case ViewAdded:
		return "added"
	case ViewRemoved:
		return "removed"
	case ViewActivated:
		return "activated"
	case ViewDeactivated:
		return "deactivated"
	default:
		return fmt.Sprintf("ChangeKind(%d)", int(k))
	}
}

// Change is delivered to region listeners after every view mutation.
type Change struct {
	Kind ChangeKind
	View interface{}
	Name string
}

// Listener observes region changes. It runs after the region lock is
// released and may mutate the region.
type Listener func(r *Region, c Change)

type viewEntry struct {
	name   string
	view   interface{}
	active bool
}

// Region is a named container of views. Views must be comparable values,
// usually pointers.
type Region struct {
	name         string
	singleActive bool

	mu           sync.RWMutex
	views        []*viewEntry
	behaviors    map[string]Behavior
	behaviorKeys []string
	listeners    []Listener
	navigation   NavigationService
	manager      Manager
}

// NewRegion creates an empty region where any number of views may be active.
func NewRegion(name string) *Region {
	return &Region{name: name, behaviors: make(map[string]Behavior)}
}

// NewSingleActiveRegion creates a region where activating a view
// deactivates all others.
func NewSingleActiveRegion(name string) *Region {
	r := NewRegion(name)
	r.singleActive = true
	return r
}

// Name returns the region name.
func (r *Region) Name() string { return r.name }

// SingleActive reports whether at most one view can be active.
func (r *Region) SingleActive() bool { return r.singleActive }

// Subscribe adds a change listener.
func (r *Region) Subscribe(l Listener) {
	if l == nil {
		return
	}
	r.mu.Lock()
	r.listeners = append(r.listeners, l)
	r.mu.Unlock()
}

// Add appends view under name. Names are optional but unique when given.
func (r *Region) Add(view interface{}, name string) error {
	if view == nil {
		return apperrors.InvalidInput("view", "view must not be nil")
	}

	r.mu.Lock()
	if r.indexOf(view) >= 0 {
		r.mu.Unlock()
		return apperrors.AlreadyExists("view").WithDetail(detailRegion, r.name)
	}
	if name != "" && r.indexOfName(name) >= 0 {
		r.mu.Unlock()
		return apperrors.AlreadyExists("view").WithDetail(detailRegion, r.name).WithDetail("name", name)
	}
	r.views = append(r.views, &viewEntry{name: name, view: view})
	r.mu.Unlock()

	r.emit(Change{Kind: ViewAdded, View: view, Name: name})
	return nil
}

// Remove deactivates and removes view.
func (r *Region) Remove(view interface{}) error {
	r.mu.Lock()
	i := r.indexOf(view)
	if i < 0 {
		r.mu.Unlock()
		return apperrors.NotFound("view", "").WithDetail(detailRegion, r.name)
	}
	entry := r.views[i]
	wasActive := entry.active
	r.views = append(r.views[:i:i], r.views[i+1:]...)
	r.mu.Unlock()

	if wasActive {
		r.emit(Change{Kind: ViewDeactivated, View: view, Name: entry.name})
	}
	r.emit(Change{Kind: ViewRemoved, View: view, Name: entry.name})
	return nil
}

// Activate marks view active. In a single-active region every other view is
// deactivated first.
func (r *Region) Activate(view interface{}) error {
	r.mu.Lock()
	i := r.indexOf(view)
	if i < 0 {
		r.mu.Unlock()
		return apperrors.NotFound("view", "").WithDetail(detailRegion, r.name)
	}
	target := r.views[i]
	if target.active {
		r.mu.Unlock()
		return nil
	}

	var changes []Change
	if r.singleActive {
		for _, e := range r.views {
			if e.active {
				e.active = false
				changes = append(changes, Change{Kind: ViewDeactivated, View: e.view, Name: e.name})
			}
		}
	}
	target.active = true
	changes = append(changes, Change{Kind: ViewActivated, View: target.view, Name: target.name})
	r.mu.Unlock()

	for _, c := range changes {
		r.emit(c)
	}
	return nil
}

// Deactivate marks view inactive.
func (r *Region) Deactivate(view interface{}) error {
	r.mu.Lock()
	i := r.indexOf(view)
	if i < 0 {
		r.mu.Unlock()
		return apperrors.NotFound("view", "").WithDetail(detailRegion, r.name)
	}
	entry := r.views[i]
	if !entry.active {
		r.mu.Unlock()
		return nil
	}
	entry.active = false
	r.mu.Unlock()

	r.emit(Change{Kind: ViewDeactivated, View: view, Name: entry.name})
	return nil
}

// Views returns every view in insertion order.
func (r *Region) Views() []interface{} {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]interface{}, 0, len(r.views))
	for _, e := range r.views {
		result = append(result, e.view)
	}
	return result
}

// ActiveViews returns the active views in insertion order.
func (r *Region) ActiveViews() []interface{} {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]interface{}, 0, len(r.views))
	for _, e := range r.views {
		if e.active {
			result = append(result, e.view)
		}
	}
	return result
}

// View returns the view added under name.
func (r *Region) View(name string) (interface{}, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if i := r.indexOfName(name); i >= 0 {
		return r.views[i].view, true
	}
	return nil, false
}

// Contains reports whether view is in the region.
func (r *Region) Contains(view interface{}) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.indexOf(view) >= 0
}

// AddBehavior attaches b under key. Each key may be used once.
func (r *Region) AddBehavior(key string, b Behavior) error {
	if b == nil {
		return apperrors.InvalidInput("behavior", "behavior must not be nil")
	}
	r.mu.Lock()
	if _, exists := r.behaviors[key]; exists {
		r.mu.Unlock()
		return apperrors.AlreadyExists("behavior").WithDetail("key", key)
	}
	r.behaviors[key] = b
	r.behaviorKeys = append(r.behaviorKeys, key)
	r.mu.Unlock()

	return b.Attach(r)
}

// Behaviors returns the keys of attached behaviors in attach order.
func (r *Region) Behaviors() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.behaviorKeys...)
}

// Behavior returns the behavior attached under key.
func (r *Region) Behavior(key string) (Behavior, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.behaviors[key]
	return b, ok
}

// NavigationService returns the region's navigation service, if any.
func (r *Region) NavigationService() NavigationService {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.navigation
}

// SetNavigationService binds ns to the region.
func (r *Region) SetNavigationService(ns NavigationService) {
	r.mu.Lock()
	r.navigation = ns
	r.mu.Unlock()
	if ns != nil {
		ns.SetRegion(r)
	}
}

// Manager returns the manager the region was added to.
func (r *Region) Manager() Manager {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.manager
}

func (r *Region) setManager(m Manager) {
	r.mu.Lock()
	r.manager = m
	r.mu.Unlock()
}

func (r *Region) emit(c Change) {
	r.mu.RLock()
	listeners := append([]Listener(nil), r.listeners...)
	r.mu.RUnlock()
	for _, l := range listeners {
		l(r, c)
	}
}

func (r *Region) indexOf(view interface{}) int {
	for i, e := range r.views {
		if e.view == view {
			return i
		}
	}
	return -1
}

func (r *Region) indexOfName(name string) int {
	for i, e := range r.views {
		if e.name == name {
			return i
		}
	}
	return -1
}

const detailRegion = "region"
