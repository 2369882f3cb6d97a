package feed

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/feedex/internal/db"
	"github.com/kailas-cloud/feedex/internal/domain"
	"github.com/kailas-cloud/feedex/internal/domain/device"
	domfeed "github.com/kailas-cloud/feedex/internal/domain/feed"
	"github.com/kailas-cloud/feedex/internal/domain/market"
)

// State is the region scope of a feed pass.
type State string

const (
	// StatePrimary queries the requested region.
	StatePrimary State = "primary"
	// StateFallback queries RestOfWorld on behalf of the requested region.
	StateFallback State = "fallback"
)

// Outcome is how a feed request ended.
type Outcome string

const (
	OutcomeServed   Outcome = "served"
	OutcomeFallback Outcome = "fallback_served"
	OutcomeEmpty    Outcome = "empty"
	OutcomeError    Outcome = "error"
)

// Request is a validated feed request.
type Request struct {
	Region    int
	Carrier   *int
	Device    device.Type
	Filtering bool
	Offset    int
	Limit     int
}

// Page is an assembled feed window. Total, Offset and Limit describe the feed
// item query of the pass that produced it.
type Page struct {
	Entries    []domfeed.Entry
	Total      int
	Offset     int
	Limit      int
	Region     int
	Fallback   bool
	Suppressed int
}

// Service assembles feeds.
type Service struct {
	items    ItemSearcher
	elements ElementFetcher
	apps     *AppResolver
	observer Observer
	window   int
}

// New creates a feed service.
func New(items ItemSearcher, elements ElementFetcher, apps AppSearcher) *Service {
	return &Service{
		items:    items,
		elements: elements,
		apps:     NewAppResolver(apps),
		observer: nopObserver{},
		window:   db.DefaultScoreWindow,
	}
}

// WithObserver configures the event observer.
func (s *Service) WithObserver(o Observer) *Service {
	if o != nil {
		s.observer = o
	}
	return s
}

// WithWindow configures how many feed items are ranked per pass.
func (s *Service) WithWindow(n int) *Service {
	if n > 0 {
		s.window = n
	}
	return s
}

// Feed assembles one feed page. An empty primary pass falls back to
// RestOfWorld once; an empty RestOfWorld pass yields domain.ErrFeedEmpty.
func (s *Service) Feed(ctx context.Context, req Request) (*Page, error) {
	state := StatePrimary
	scope := Scope{Region: req.Region, Carrier: req.Carrier}
	if req.Region == market.RestOfWorld.ID() {
		state = StateFallback
	}

	for {
		s.observer.Pass(state)
		page, ok, err := s.pass(ctx, scope, req)
		if err != nil {
			s.observer.Outcome(OutcomeError)
			return nil, err
		}
		if ok {
			page.Fallback = scope.OriginalRegion != nil
			if page.Fallback {
				s.observer.Outcome(OutcomeFallback)
			} else {
				s.observer.Outcome(OutcomeServed)
			}
			return page, nil
		}

		if state == StateFallback {
			s.observer.Outcome(OutcomeEmpty)
			return nil, domain.ErrFeedEmpty
		}
		state = StateFallback
		original := req.Region
		scope = Scope{Region: market.RestOfWorld.ID(), Carrier: req.Carrier, OriginalRegion: &original}
		s.observer.Fallback()
	}
}

// pass runs the three sequential lookups of one scope. ok is false when the
// scope produced an empty feed.
func (s *Service) pass(ctx context.Context, scope Scope, req Request) (page *Page, ok bool, err error) {
	items, total, err := s.items.Page(ctx, FeedQuery(scope, req.Offset, req.Limit, s.window))
	if err != nil {
		return nil, false, fmt.Errorf("fetch feed items: %w", err)
	}
	if domfeed.IsEmptyPage(items) {
		return nil, false, nil
	}

	elements, err := s.elements.Fetch(ctx, ElementsQuery(items))
	if err != nil {
		return nil, false, fmt.Errorf("fetch feed elements: %w", err)
	}

	apps, err := s.apps.Resolve(ctx, AppIDs(elements), Eligibility{
		Filtering: req.Filtering,
		Device:    req.Device,
		Region:    req.Region,
	})
	if err != nil {
		return nil, false, fmt.Errorf("fetch feed apps: %w", err)
	}

	entries := Assemble(items, elements, apps, req.Filtering)
	dropped := 0
	for t, n := range suppressed(items, entries) {
		s.observer.Suppressed(t, n)
		dropped += n
	}
	if domfeed.IsEmptyPage(entries) {
		return nil, false, nil
	}

	return &Page{
		Entries:    entries,
		Total:      total,
		Offset:     req.Offset,
		Limit:      req.Limit,
		Region:     scope.Region,
		Suppressed: dropped,
	}, true, nil
}
