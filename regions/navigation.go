package regions

import (
	"context"
	stderrors "errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/google/uuid"

	apperrors "github.com/kbukum/composekit/errors"
	"github.com/kbukum/composekit/locator"
	"github.com/kbukum/composekit/logger"
)

// Service types resolved by the navigation pieces.
var (
	NavigationServiceType = reflect.TypeOf((*NavigationService)(nil)).Elem()
	JournalType           = reflect.TypeOf((*Journal)(nil)).Elem()
	ContentLoaderType     = reflect.TypeOf((*ContentLoader)(nil)).Elem()
	JournalEntryType      = reflect.TypeOf((*JournalEntry)(nil))
)

// ErrNavigationCanceled is returned when a view declines to be navigated away
// from.
var ErrNavigationCanceled = stderrors.New("regions: navigation canceled")

// NavigationContext describes one navigation request.
type NavigationContext struct {
	Region  *Region
	Target  string
	Params  map[string]string
	Service NavigationService
}

// NavigationAware views are told when navigation enters or leaves them.
type NavigationAware interface {
	OnNavigatedTo(nc NavigationContext)
	OnNavigatedFrom(nc NavigationContext)
}

// NavigationConfirmer views may veto navigating away.
type NavigationConfirmer interface {
	ConfirmNavigationRequest(nc NavigationContext) bool
}

// NavigationResult reports the outcome of a navigation request.
type NavigationResult struct {
	Region  string
	Target  string
	Success bool
	Err     error
}

// JournalEntry records one successful navigation.
type JournalEntry struct {
	ID     string
	Target string
	Params map[string]string
}

// NewJournalEntry creates an entry with a fresh id.
func NewJournalEntry() *JournalEntry {
	return &JournalEntry{ID: uuid.NewString()}
}

// Journal keeps navigation history for one region.
type Journal interface {
	RecordNavigation(entry *JournalEntry)
	Current() *JournalEntry
	CanGoBack() bool
	CanGoForward() bool
	GoBack() (*JournalEntry, bool)
	GoForward() (*JournalEntry, bool)
	Clear()
}

// NavigationJournal is the default Journal built on back and forward stacks.
type NavigationJournal struct {
	mu      sync.Mutex
	back    []*JournalEntry
	forward []*JournalEntry
	current *JournalEntry
}

func NewNavigationJournal() *NavigationJournal { return &NavigationJournal{} }

// RecordNavigation makes entry current and drops forward history.
func (j *NavigationJournal) RecordNavigation(entry *JournalEntry) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.current != nil {
		j.back = append(j.back, j.current)
	}
	j.current = entry
	j.forward = nil
}

func (j *NavigationJournal) Current() *JournalEntry {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.current
}

func (j *NavigationJournal) CanGoBack() bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	return len(j.back) > 0
}

func (j *NavigationJournal) CanGoForward() bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	return len(j.forward) > 0
}

// GoBack moves one entry back and returns the new current entry.
func (j *NavigationJournal) GoBack() (*JournalEntry, bool) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if len(j.back) == 0 {
		return nil, false
	}
	j.forward = append(j.forward, j.current)
	j.current = j.back[len(j.back)-1]
	j.back = j.back[:len(j.back)-1]
	return j.current, true
}

// GoForward moves one entry forward and returns the new current entry.
func (j *NavigationJournal) GoForward() (*JournalEntry, bool) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if len(j.forward) == 0 {
		return nil, false
	}
	j.back = append(j.back, j.current)
	j.current = j.forward[len(j.forward)-1]
	j.forward = j.forward[:len(j.forward)-1]
	return j.current, true
}

func (j *NavigationJournal) Clear() {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.back, j.forward, j.current = nil, nil, nil
}

// ContentLoader finds or creates the view a navigation request targets.
type ContentLoader interface {
	LoadContent(region *Region, target string) (interface{}, error)
}

// NavigationContentLoader reuses a view already in the region under the
// target name, otherwise resolves the view bound under ViewType with that
// name and adds it.
type NavigationContentLoader struct {
	locator locator.ServiceLocator
}

func NewNavigationContentLoader(l locator.ServiceLocator) *NavigationContentLoader {
	return &NavigationContentLoader{locator: l}
}

func (c *NavigationContentLoader) LoadContent(region *Region, target string) (interface{}, error) {
	if target == "" {
		return nil, apperrors.MissingField("target")
	}
	if view, ok := region.View(target); ok {
		return view, nil
	}

	view, err := c.locator.GetInstance(ViewType, target)
	if err != nil {
		return nil, err
	}
	if err := region.Add(view, target); err != nil {
		return nil, err
	}
	return view, nil
}

// NavigationService navigates one region between views.
type NavigationService interface {
	Region() *Region
	SetRegion(r *Region)
	Journal() Journal
	RequestNavigate(ctx context.Context, target string, params map[string]string) (NavigationResult, error)
	GoBack(ctx context.Context) (NavigationResult, error)
	GoForward(ctx context.Context) (NavigationResult, error)
}

// RegionNavigationService is the default NavigationService.
type RegionNavigationService struct {
	locator locator.ServiceLocator
	loader  ContentLoader
	journal Journal

	mu     sync.Mutex
	region *Region
}

// NewRegionNavigationService creates a navigation service with its own
// journal.
func NewRegionNavigationService(l locator.ServiceLocator, loader ContentLoader, journal Journal) *RegionNavigationService {
	return &RegionNavigationService{locator: l, loader: loader, journal: journal}
}

func (s *RegionNavigationService) Region() *Region {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.region
}

func (s *RegionNavigationService) SetRegion(r *Region) {
	s.mu.Lock()
	s.region = r
	s.mu.Unlock()
}

func (s *RegionNavigationService) Journal() Journal { return s.journal }

// RequestNavigate activates target in the region and records it in the
// journal.
func (s *RegionNavigationService) RequestNavigate(ctx context.Context, target string, params map[string]string) (NavigationResult, error) {
	result, err := s.navigate(ctx, target, params)
	if err != nil {
		return result, err
	}

	instance, err := s.locator.GetInstance(JournalEntryType, "")
	if err != nil {
		return s.fail(result, err)
	}
	entry, ok := instance.(*JournalEntry)
	if !ok {
		return s.fail(result, fmt.Errorf("regions: %T is not a journal entry", instance))
	}
	entry.Target = target
	entry.Params = params
	s.journal.RecordNavigation(entry)
	return result, nil
}

// GoBack navigates to the previous journal entry.
func (s *RegionNavigationService) GoBack(ctx context.Context) (NavigationResult, error) {
	entry, ok := s.journal.GoBack()
	if !ok {
		return NavigationResult{Region: s.regionName()}, apperrors.New(apperrors.ErrCodeNotFound, "No previous navigation entry.")
	}
	result, err := s.navigate(ctx, entry.Target, entry.Params)
	if err != nil {
		s.journal.GoForward()
	}
	return result, err
}

// GoForward navigates to the next journal entry.
func (s *RegionNavigationService) GoForward(ctx context.Context) (NavigationResult, error) {
	entry, ok := s.journal.GoForward()
	if !ok {
		return NavigationResult{Region: s.regionName()}, apperrors.New(apperrors.ErrCodeNotFound, "No next navigation entry.")
	}
	result, err := s.navigate(ctx, entry.Target, entry.Params)
	if err != nil {
		s.journal.GoBack()
	}
	return result, err
}

func (s *RegionNavigationService) navigate(ctx context.Context, target string, params map[string]string) (NavigationResult, error) {
	region := s.Region()
	result := NavigationResult{Target: target}
	if region == nil {
		return s.fail(result, apperrors.InvalidConfiguration("navigation service is not attached to a region"))
	}
	result.Region = region.Name()
	if err := ctx.Err(); err != nil {
		return s.fail(result, err)
	}

	nc := NavigationContext{Region: region, Target: target, Params: params, Service: s}
	active := region.ActiveViews()
	for _, v := range active {
		if confirmer, ok := v.(NavigationConfirmer); ok && !confirmer.ConfirmNavigationRequest(nc) {
			return s.fail(result, ErrNavigationCanceled)
		}
	}

	view, err := s.loader.LoadContent(region, target)
	if err != nil {
		return s.fail(result, err)
	}
	for _, v := range active {
		if v == view {
			continue
		}
		if aware, ok := v.(NavigationAware); ok {
			aware.OnNavigatedFrom(nc)
		}
	}
	if err := region.Activate(view); err != nil {
		return s.fail(result, err)
	}
	if aware, ok := view.(NavigationAware); ok {
		aware.OnNavigatedTo(nc)
	}

	logger.Debug("Navigation completed", map[string]interface{}{
		logger.FieldRegion: region.Name(),
		"target":           target,
	})
	result.Success = true
	return result, nil
}

func (s *RegionNavigationService) fail(result NavigationResult, err error) (NavigationResult, error) {
	result.Success = false
	result.Err = err
	return result, err
}

func (s *RegionNavigationService) regionName() string {
	if r := s.Region(); r != nil {
		return r.Name()
	}
	return ""
}
