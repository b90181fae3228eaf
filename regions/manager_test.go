package regions

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/kbukum/composekit/di"
	apperrors "github.com/kbukum/composekit/errors"
	"github.com/kbukum/composekit/events"
	"github.com/kbukum/composekit/locator"
)

type shell struct {
	decls   []Declaration
	manager Manager
}

func (s *shell) RegionDeclarations() []Declaration { return s.decls }
func (s *shell) SetRegionManager(m Manager)        { s.manager = m }

type page struct {
	name      string
	to, from  int
	lastParam string
	veto      bool
}

func (p *page) OnNavigatedTo(nc NavigationContext) {
	p.to++
	p.lastParam = nc.Params["id"]
}
func (p *page) OnNavigatedFrom(nc NavigationContext)           { p.from++ }
func (p *page) ConfirmNavigationRequest(NavigationContext) bool { return !p.veto }

type harness struct {
	container di.Container
	manager   *RegionManager
	events    *events.EventAggregator
	views     *ViewRegistry
}

// newHarness wires the region services into a container the way the
// bootstrapper does.
func newHarness(t *testing.T) *harness {
	t.Helper()
	c := di.NewContainer()
	adapter := locator.NewContainerAdapter(c)
	agg := events.NewEventAggregator()
	views := NewViewRegistry()

	must := func(err error) {
		t.Helper()
		if err != nil {
			t.Fatalf("wiring failed: %v", err)
		}
	}
	must(c.RegisterInstance(di.TypeOf[locator.ServiceLocator](), adapter))
	must(c.RegisterInstance(di.TypeOf[*ViewRegistry](), views))
	must(c.Register(ContentLoaderType, NewNavigationContentLoader, di.Singleton))
	must(c.Register(JournalType, NewNavigationJournal, di.Transient))
	must(c.Register(JournalEntryType, NewJournalEntry, di.Transient))
	must(c.Register(NavigationServiceType, NewRegionNavigationService, di.Transient))
	must(c.Register(BehaviorType, NewAutoPopulateBehavior, di.Transient, di.WithName(AutoPopulateBehaviorKey)))
	must(c.Register(BehaviorType, NewActiveAwareBehavior, di.Transient, di.WithName(ActiveAwareBehaviorKey)))

	mappings := NewAdapterMappings()
	must(mappings.RegisterMapping(SelectorTargetType, NewSelectorAdapter()))
	must(mappings.RegisterMapping(ItemsTargetType, NewItemsAdapter()))
	must(mappings.RegisterMapping(ContentTargetType, NewContentAdapter()))

	behaviors := NewBehaviorFactory(adapter)
	behaviors.AddIfMissing(AutoPopulateBehaviorKey, AutoPopulateBehaviorKey)
	behaviors.AddIfMissing(ActiveAwareBehaviorKey, ActiveAwareBehaviorKey)

	return &harness{
		container: c,
		manager:   NewRegionManager(adapter, mappings, behaviors, views, agg),
		events:    agg,
		views:     views,
	}
}

func TestBehaviorFactory(t *testing.T) {
	h := newHarness(t)
	f := h.manager.behaviors

	if f.AddIfMissing(AutoPopulateBehaviorKey, "other") {
		t.Error("expected existing key to be kept")
	}
	if got := f.Keys(); len(got) != 2 || got[0] != AutoPopulateBehaviorKey || got[1] != ActiveAwareBehaviorKey {
		t.Errorf("unexpected keys %v", got)
	}
	b, err := f.Create(ActiveAwareBehaviorKey)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, ok := b.(*ActiveAwareBehavior); !ok {
		t.Errorf("unexpected behavior %T", b)
	}
	if _, err := f.Create("Missing"); !apperrors.HasCode(err, apperrors.ErrCodeNotFound) {
		t.Errorf("expected NOT_FOUND, got %v", err)
	}
}

func TestUpdateRegionsCreatesDeclaredRegions(t *testing.T) {
	h := newHarness(t)
	main := &contentHost{}
	tabs := &tabHost{}
	s := &shell{decls: []Declaration{{Name: "Main", Target: main}, {Name: "Tabs", Target: tabs}}}

	var created []string
	h.events.GetEvent(events.RegionCreated).Subscribe(func(ctx context.Context, p interface{}) {
		created = append(created, p.(string))
	})

	dashboard := &view{"dashboard"}
	_ = h.manager.RegisterViewWithRegion("Main", func() (interface{}, error) { return dashboard, nil })

	if err := h.manager.Attach(s); err != nil {
		t.Fatalf("Attach failed: %v", err)
	}
	if s.manager != h.manager {
		t.Error("expected shell to receive the region manager")
	}
	if err := h.manager.UpdateRegions(); err != nil {
		t.Fatalf("UpdateRegions failed: %v", err)
	}
	if err := h.manager.UpdateRegions(); err != nil {
		t.Fatalf("second UpdateRegions failed: %v", err)
	}

	if len(h.manager.Regions()) != 2 || len(created) != 2 {
		t.Fatalf("expected 2 regions created once, got %d (events %v)", len(h.manager.Regions()), created)
	}
	region, ok := h.manager.Region("Main")
	if !ok {
		t.Fatal("expected Main region")
	}
	if region.Manager() != h.manager {
		t.Error("expected region to know its manager")
	}
	if got := region.Behaviors(); len(got) != 2 {
		t.Errorf("expected default behaviors attached, got %v", got)
	}
	if region.NavigationService() == nil || region.NavigationService().Region() != region {
		t.Error("expected navigation service bound to the region")
	}
	if main.content != dashboard {
		t.Errorf("expected auto-populated view shown, got %v", main.content)
	}

	// Views registered after the region exists are added straight away.
	late := &view{"late"}
	_ = h.manager.RegisterViewWithRegion("Tabs", func() (interface{}, error) { return late, nil })
	if len(tabs.items) != 1 || tabs.items[0] != late {
		t.Errorf("expected late view in tabs, got %v", tabs.items)
	}

	tabsRegion, _ := h.manager.Region("Tabs")
	if tabsRegion.NavigationService().Journal() == region.NavigationService().Journal() {
		t.Error("expected each region to get its own journal")
	}
}

func TestUpdateRegionsUnmappedTarget(t *testing.T) {
	h := newHarness(t)
	_ = h.manager.Attach(&shell{decls: []Declaration{{Name: "Odd", Target: 42}}})
	if err := h.manager.UpdateRegions(); !apperrors.HasCode(err, apperrors.ErrCodeNotFound) {
		t.Errorf("expected NOT_FOUND for unmapped target, got %v", err)
	}
}

func TestAddAndRemoveRegion(t *testing.T) {
	h := newHarness(t)
	if err := h.manager.AddRegion(NewRegion("Side")); err != nil {
		t.Fatalf("AddRegion failed: %v", err)
	}
	if err := h.manager.AddRegion(NewRegion("Side")); !apperrors.HasCode(err, apperrors.ErrCodeAlreadyExists) {
		t.Errorf("expected ALREADY_EXISTS, got %v", err)
	}
	if !h.manager.RemoveRegion("Side") || h.manager.RemoveRegion("Side") {
		t.Error("unexpected RemoveRegion result")
	}
	if err := h.manager.Attach(nil); !apperrors.HasCode(err, apperrors.ErrCodeInvalidInput) {
		t.Errorf("expected INVALID_INPUT, got %v", err)
	}
}

func TestRequestNavigate(t *testing.T) {
	h := newHarness(t)
	home, orders := &page{name: "home"}, &page{name: "orders"}
	_ = h.container.RegisterInstance(ViewType, home, di.WithName("Home"))
	_ = h.container.RegisterInstance(ViewType, orders, di.WithName("Orders"))

	host := &contentHost{}
	_ = h.manager.Attach(&shell{decls: []Declaration{{Name: "Main", Target: host}}})
	if err := h.manager.UpdateRegions(); err != nil {
		t.Fatalf("UpdateRegions failed: %v", err)
	}

	var results []NavigationResult
	h.events.GetEvent(events.NavigationCompleted).Subscribe(func(ctx context.Context, p interface{}) {
		results = append(results, p.(NavigationResult))
	})

	ctx := context.Background()
	if _, err := h.manager.RequestNavigate(ctx, "Main", "Home", nil); err != nil {
		t.Fatalf("navigate Home failed: %v", err)
	}
	result, err := h.manager.RequestNavigate(ctx, "Main", "Orders", map[string]string{"id": "42"})
	if err != nil || !result.Success {
		t.Fatalf("navigate Orders failed: %+v %v", result, err)
	}
	if host.content != orders || orders.lastParam != "42" || home.from != 1 {
		t.Errorf("unexpected navigation state content=%v orders=%+v home=%+v", host.content, orders, home)
	}

	region, _ := h.manager.Region("Main")
	journal := region.NavigationService().Journal()
	if journal.Current().Target != "Orders" || journal.Current().ID == "" {
		t.Errorf("unexpected journal entry %+v", journal.Current())
	}

	// Navigating to a loaded view reuses it.
	if _, err := region.NavigationService().GoBack(ctx); err != nil {
		t.Fatalf("GoBack failed: %v", err)
	}
	if host.content != home || home.to != 2 || len(region.Views()) != 2 {
		t.Errorf("expected home reused, content=%v views=%d", host.content, len(region.Views()))
	}
	if _, err := region.NavigationService().GoForward(ctx); err != nil {
		t.Fatalf("GoForward failed: %v", err)
	}
	if host.content != orders {
		t.Error("expected orders after GoForward")
	}

	orders.veto = true
	if _, err := h.manager.RequestNavigate(ctx, "Main", "Home", nil); !stderrors.Is(err, ErrNavigationCanceled) {
		t.Errorf("expected ErrNavigationCanceled, got %v", err)
	}
	if host.content != orders {
		t.Error("canceled navigation must not change content")
	}

	if _, err := h.manager.RequestNavigate(ctx, "Nowhere", "Home", nil); !apperrors.HasCode(err, apperrors.ErrCodeNotFound) {
		t.Errorf("expected NOT_FOUND for unknown region, got %v", err)
	}
	orders.veto = false
	_, err = h.manager.RequestNavigate(ctx, "Main", "Ghost", nil)
	var notFound *di.ComponentNotFoundError
	if !stderrors.As(err, &notFound) {
		t.Errorf("expected unresolvable view error, got %v", err)
	}

	if len(results) != 4 {
		t.Errorf("expected a completion event per manager navigation, got %d", len(results))
	}
}
