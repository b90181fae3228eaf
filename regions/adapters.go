package regions

import (
	"fmt"
	"reflect"

	apperrors "github.com/kbukum/composekit/errors"
	"github.com/kbukum/composekit/logger"
)

// AdapterType is the service type region adapters are bound under.
var AdapterType = reflect.TypeOf((*Adapter)(nil)).Elem()

// Binding names of the built-in adapters.
const (
	ContentAdapterName  = "ContentAdapter"
	ItemsAdapterName    = "ItemsAdapter"
	SelectorAdapterName = "SelectorAdapter"
)

// Adapter creates a region for a host target and keeps the target in sync
// with the region's views.
type Adapter interface {
	Initialize(target interface{}, regionName string) (*Region, error)
}

// ContentTarget shows a single view.
type ContentTarget interface {
	SetContent(view interface{})
}

// ItemsTarget shows a list of views.
type ItemsTarget interface {
	SetItems(views []interface{})
}

// SelectorTarget shows a list of views with one selected.
type SelectorTarget interface {
	ItemsTarget
	SetSelected(view interface{})
}

// Target kinds used when registering adapter mappings.
var (
	ContentTargetType  = reflect.TypeOf((*ContentTarget)(nil)).Elem()
	ItemsTargetType    = reflect.TypeOf((*ItemsTarget)(nil)).Elem()
	SelectorTargetType = reflect.TypeOf((*SelectorTarget)(nil)).Elem()
)

// ContentAdapter drives a ContentTarget from a single-active region. The
// first view added is activated when nothing else is active.
type ContentAdapter struct{}

func NewContentAdapter() *ContentAdapter { return &ContentAdapter{} }

func (a *ContentAdapter) Initialize(target interface{}, regionName string) (*Region, error) {
	ct, ok := target.(ContentTarget)
	if !ok {
		return nil, adapterTargetError(target, "ContentTarget")
	}
	region := NewSingleActiveRegion(regionName)
	region.Subscribe(func(r *Region, c Change) {
		active := r.ActiveViews()
		if len(active) == 0 {
			if views := r.Views(); len(views) > 0 {
				// Activation re-enters this listener and updates the target.
				_ = r.Activate(views[0])
				return
			}
			ct.SetContent(nil)
			return
		}
		ct.SetContent(active[0])
	})
	ct.SetContent(nil)
	logAdapted(regionName, "content")
	return region, nil
}

// ItemsAdapter mirrors every region view onto an ItemsTarget.
type ItemsAdapter struct{}

func NewItemsAdapter() *ItemsAdapter { return &ItemsAdapter{} }

func (a *ItemsAdapter) Initialize(target interface{}, regionName string) (*Region, error) {
	it, ok := target.(ItemsTarget)
	if !ok {
		return nil, adapterTargetError(target, "ItemsTarget")
	}
	region := NewRegion(regionName)
	region.Subscribe(func(r *Region, c Change) {
		if c.Kind == ViewAdded || c.Kind == ViewRemoved {
			it.SetItems(r.Views())
		}
	})
	it.SetItems([]interface{}{})
	logAdapted(regionName, "items")
	return region, nil
}

// SelectorAdapter mirrors views onto a SelectorTarget and keeps the
// selection equal to the single active view.
type SelectorAdapter struct{}

func NewSelectorAdapter() *SelectorAdapter { return &SelectorAdapter{} }

func (a *SelectorAdapter) Initialize(target interface{}, regionName string) (*Region, error) {
	st, ok := target.(SelectorTarget)
	if !ok {
		return nil, adapterTargetError(target, "SelectorTarget")
	}
	region := NewSingleActiveRegion(regionName)
	region.Subscribe(func(r *Region, c Change) {
		switch c.Kind {
		case ViewAdded, ViewRemoved:
			st.SetItems(r.Views())
		}
		if active := r.ActiveViews(); len(active) > 0 {
			st.SetSelected(active[0])
		} else {
			st.SetSelected(nil)
		}
	})
	st.SetItems([]interface{}{})
	logAdapted(regionName, "selector")
	return region, nil
}

func adapterTargetError(target interface{}, want string) error {
	return apperrors.InvalidInput("target", fmt.Sprintf("%T does not implement %s", target, want))
}

func logAdapted(regionName, kind string) {
	logger.Debug("Region adapted", map[string]interface{}{
		logger.FieldRegion: regionName,
		"adapter":          kind,
	})
}
