// Package element implements editorial lookup and element maintenance.
package element

import (
	"context"
	"fmt"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"

	"github.com/kailas-cloud/feedex/internal/domain"
	"github.com/kailas-cloud/feedex/internal/domain/app"
	domfeed "github.com/kailas-cloud/feedex/internal/domain/feed"
	"github.com/kailas-cloud/feedex/internal/domain/image"
	"github.com/kailas-cloud/feedex/internal/domain/market"
	"github.com/kailas-cloud/feedex/internal/logger"
	feeduc "github.com/kailas-cloud/feedex/internal/usecase/feed"
)

// MissingAppsMessage is returned when a member app is absent from the catalog.
const MissingAppsMessage = "One or more of the specified `apps` do not exist."

// Input is an element write request.
type Input struct {
	Slug    string
	Type    string
	Content domfeed.Content
	// ImageURL, when set, schedules a background image fetch.
	ImageURL string
}

// Listing is one page of elements of a single type.
type Listing struct {
	Elements []domfeed.Resolved
	Total    int
	Offset   int
	Limit    int
}

// Service handles editorial reads and element writes.
type Service struct {
	records  Records
	index    Indexer
	elements ElementSearcher
	apps     *feeduc.AppResolver
	images   ImageQueue
	policy   *bluemonday.Policy
}

// New creates an element service.
func New(records Records, index Indexer, elements ElementSearcher, apps feeduc.AppSearcher) *Service {
	return &Service{
		records:  records,
		index:    index,
		elements: elements,
		apps:     feeduc.NewAppResolver(apps),
		policy:   descriptionPolicy(),
	}
}

// WithImageQueue enables background image jobs.
func (s *Service) WithImageQueue(q ImageQueue) *Service {
	s.images = q
	return s
}

// descriptionPolicy allows inline emphasis and links in descriptions.
func descriptionPolicy() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowElements("b", "i", "em", "strong", "br")
	p.AllowAttrs("href").OnElements("a")
	p.AllowURLSchemes("https", "http")
	p.RequireNoFollowOnLinks(true)
	p.AddTargetBlankToFullyQualifiedLinks(true)
	return p
}

// Search runs an editorial lookup and groups the hits by element type.
// Every type is present in the result, possibly empty.
func (s *Service) Search(ctx context.Context, q string) (map[domfeed.ItemType][]domfeed.Resolved, error) {
	if q == "" {
		return nil, domain.NewValidation(domain.ErrInvalidSchema, "q is required")
	}
	hits, _, err := s.elements.Search(ctx, feeduc.LookupQuery(q))
	if err != nil {
		return nil, fmt.Errorf("lookup elements: %w", err)
	}
	if len(hits) == 0 {
		return nil, domain.ErrElementNotFound
	}

	resolved, err := s.resolve(ctx, hits)
	if err != nil {
		return nil, err
	}
	groups := make(map[domfeed.ItemType][]domfeed.Resolved, len(domfeed.ItemTypes))
	for _, t := range domfeed.ItemTypes {
		groups[t] = []domfeed.Resolved{}
	}
	for _, r := range resolved {
		t := r.Element.ItemType()
		groups[t] = append(groups[t], r)
	}
	return groups, nil
}

// Get returns one element by type and slug. A positive limit trims member apps.
func (s *Service) Get(ctx context.Context, t domfeed.ItemType, slug string, limit int) (domfeed.Resolved, error) {
	hits, _, err := s.elements.Search(ctx, feeduc.DetailQuery(t, slug))
	if err != nil {
		return domfeed.Resolved{}, fmt.Errorf("get %s %q: %w", t, slug, err)
	}
	if len(hits) == 0 {
		return domfeed.Resolved{}, domain.ErrElementNotFound
	}
	resolved, err := s.resolve(ctx, hits[:1])
	if err != nil {
		return domfeed.Resolved{}, err
	}
	return resolved[0].TrimApps(limit), nil
}

// ListRecent lists elements of type t, newest first.
func (s *Service) ListRecent(ctx context.Context, t domfeed.ItemType, offset, limit int) (*Listing, error) {
	hits, total, err := s.elements.Search(ctx, feeduc.ListingQuery(t, offset, limit))
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", t.Plural(), err)
	}
	if len(hits) == 0 {
		return nil, domain.ErrElementNotFound
	}
	resolved, err := s.resolve(ctx, hits)
	if err != nil {
		return nil, err
	}
	return &Listing{Elements: resolved, Total: total, Offset: offset, Limit: limit}, nil
}

// Create validates and stores a new element, reindexing it before commit.
func (s *Service) Create(ctx context.Context, in Input) (domfeed.Resolved, error) {
	e, apps, err := s.prepare(ctx, in)
	if err != nil {
		return domfeed.Resolved{}, err
	}

	saved, err := s.records.CreateElement(ctx, e, s.index.SyncElement)
	if err != nil {
		return domfeed.Resolved{}, fmt.Errorf("create %s: %w", e.ItemType(), err)
	}
	s.scheduleImage(ctx, saved.Key(), in.ImageURL)
	return domfeed.Resolve(saved, apps), nil
}

// Update replaces the element at key. The stored image is kept until a new
// ImageURL is processed.
func (s *Service) Update(ctx context.Context, key domfeed.ElementKey, in Input) (domfeed.Resolved, error) {
	e, apps, err := s.prepare(ctx, in)
	if err != nil {
		return domfeed.Resolved{}, err
	}
	if e.ItemType() != key.Type {
		return domfeed.Resolved{}, domain.NewValidation(domain.ErrInvalidItemType,
			"cannot store %s content as %s", e.ItemType(), key.Type)
	}

	saved, err := s.records.UpdateElement(ctx, e.WithID(key.ID, time.Time{}), s.index.SyncElement)
	if err != nil {
		return domfeed.Resolved{}, fmt.Errorf("update %s: %w", key, err)
	}
	s.scheduleImage(ctx, saved.Key(), in.ImageURL)
	return domfeed.Resolve(saved, apps), nil
}

// Delete removes the element and every feed item placing it.
func (s *Service) Delete(ctx context.Context, key domfeed.ElementKey) error {
	if err := s.records.DeleteElement(ctx, key, s.index.RemoveElement); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

// Publish places the shelf atop its carrier and region feed, replacing
// any shelf published there before.
func (s *Service) Publish(ctx context.Context, shelfID int64) (domfeed.Item, error) {
	item, err := s.records.PublishShelf(ctx, shelfID, s.index.SyncItems)
	if err != nil {
		return domfeed.Item{}, fmt.Errorf("publish shelf %d: %w", shelfID, err)
	}
	return item, nil
}

// Unpublish removes the shelf from its feed.
func (s *Service) Unpublish(ctx context.Context, shelfID int64) error {
	if err := s.records.UnpublishShelf(ctx, shelfID, s.index.SyncItems); err != nil {
		return fmt.Errorf("unpublish shelf %d: %w", shelfID, err)
	}
	return nil
}

// prepare sanitizes and validates in, and checks that every member app exists.
func (s *Service) prepare(ctx context.Context, in Input) (domfeed.Element, map[int64]app.App, error) {
	content, err := s.sanitize(in.Content)
	if err != nil {
		return domfeed.Element{}, nil, err
	}
	e, err := domfeed.NewElement(in.Slug, in.Type, content)
	if err != nil {
		return domfeed.Element{}, nil, fmt.Errorf("validate element: %w: %w", domain.ErrInvalidSchema, err)
	}
	if e.ItemType() != domfeed.TypeBrand {
		e = e.WithImageURL(in.ImageURL)
	}

	ids := e.AppIDs()
	apps, err := s.apps.Resolve(ctx, ids, feeduc.Eligibility{})
	if err != nil {
		return domfeed.Element{}, nil, err
	}
	for _, id := range ids {
		if _, ok := apps[id]; !ok {
			return domfeed.Element{}, nil, domain.NewValidation(domain.ErrAppNotFound, MissingAppsMessage)
		}
	}
	return e, apps, nil
}

func (s *Service) sanitize(c domfeed.Content) (domfeed.Content, error) {
	switch v := c.(type) {
	case domfeed.AppContent:
		v.Description = s.policy.Sanitize(v.Description)
		v.Pullquote = s.policy.Sanitize(v.Pullquote)
		return v, nil
	case domfeed.CollectionContent:
		v.Description = s.policy.Sanitize(v.Description)
		return v, nil
	case domfeed.ShelfContent:
		if _, ok := market.CarrierByID(v.Carrier); !ok {
			return nil, domain.NewValidation(domain.ErrInvalidCarrier, "unknown carrier %d", v.Carrier)
		}
		if _, ok := market.RegionByID(v.Region); !ok {
			return nil, domain.NewValidation(domain.ErrInvalidRegion, "unknown region %d", v.Region)
		}
		v.Description = s.policy.Sanitize(v.Description)
		return v, nil
	case nil:
		return nil, domain.NewValidation(domain.ErrInvalidPayload, "element content is required")
	}
	return c, nil
}

// resolve substitutes member apps of every element in one catalog call.
// Editorial reads see every existing app regardless of visibility.
func (s *Service) resolve(ctx context.Context, elements []domfeed.Element) ([]domfeed.Resolved, error) {
	var ids []int64
	for _, e := range elements {
		ids = append(ids, e.AppIDs()...)
	}
	apps, err := s.apps.Resolve(ctx, ids, feeduc.Eligibility{})
	if err != nil {
		return nil, err
	}
	out := make([]domfeed.Resolved, len(elements))
	for i, e := range elements {
		out[i] = domfeed.Resolve(e, apps)
	}
	return out, nil
}

// scheduleImage enqueues a background fetch. The element is already stored,
// so a queue failure is logged rather than returned.
func (s *Service) scheduleImage(ctx context.Context, key domfeed.ElementKey, url string) {
	if url == "" || s.images == nil || key.Type == domfeed.TypeBrand {
		return
	}
	job := image.NewJob(key, url)
	if err := s.images.Enqueue(ctx, job); err != nil {
		logger.FromContext(ctx).Warn("image job not queued",
			zap.String("element", key.String()), zap.String("job_id", job.ID), zap.Error(err))
	}
}
