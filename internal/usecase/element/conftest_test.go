package element

import (
	"context"

	"github.com/kailas-cloud/feedex/internal/db"
	"github.com/kailas-cloud/feedex/internal/domain/app"
	domfeed "github.com/kailas-cloud/feedex/internal/domain/feed"
	"github.com/kailas-cloud/feedex/internal/domain/image"
)

type (
	elementSync func(ctx context.Context, e domfeed.Element, removed []int64) error
	itemSync    func(ctx context.Context, removed []int64, written []domfeed.Item) error
)

type mockRecords struct {
	createFn    func(ctx context.Context, e domfeed.Element, sync elementSync) (domfeed.Element, error)
	updateFn    func(ctx context.Context, e domfeed.Element, sync elementSync) (domfeed.Element, error)
	deleteFn    func(ctx context.Context, key domfeed.ElementKey, sync elementSync) error
	publishFn   func(ctx context.Context, shelfID int64, sync itemSync) (domfeed.Item, error)
	unpublishFn func(ctx context.Context, shelfID int64, sync itemSync) error
}

func (m *mockRecords) CreateElement(
	ctx context.Context, e domfeed.Element,
	sync func(ctx context.Context, e domfeed.Element, removed []int64) error,
) (domfeed.Element, error) {
	if m.createFn != nil {
		return m.createFn(ctx, e, sync)
	}
	return e, nil
}

func (m *mockRecords) UpdateElement(
	ctx context.Context, e domfeed.Element,
	sync func(ctx context.Context, e domfeed.Element, removed []int64) error,
) (domfeed.Element, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, e, sync)
	}
	return e, nil
}

func (m *mockRecords) DeleteElement(
	ctx context.Context, key domfeed.ElementKey,
	sync func(ctx context.Context, e domfeed.Element, removed []int64) error,
) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, key, sync)
	}
	return nil
}

func (m *mockRecords) PublishShelf(
	ctx context.Context, shelfID int64,
	sync func(ctx context.Context, removed []int64, written []domfeed.Item) error,
) (domfeed.Item, error) {
	if m.publishFn != nil {
		return m.publishFn(ctx, shelfID, sync)
	}
	return domfeed.Item{}, nil
}

func (m *mockRecords) UnpublishShelf(
	ctx context.Context, shelfID int64,
	sync func(ctx context.Context, removed []int64, written []domfeed.Item) error,
) error {
	if m.unpublishFn != nil {
		return m.unpublishFn(ctx, shelfID, sync)
	}
	return nil
}

type mockIndexer struct {
	synced  []domfeed.Element
	removed []domfeed.Element
	items   []domfeed.Item
}

func (m *mockIndexer) SyncItems(_ context.Context, _ []int64, written []domfeed.Item) error {
	m.items = append(m.items, written...)
	return nil
}

func (m *mockIndexer) SyncElement(_ context.Context, e domfeed.Element, _ []int64) error {
	m.synced = append(m.synced, e)
	return nil
}

func (m *mockIndexer) RemoveElement(_ context.Context, e domfeed.Element, _ []int64) error {
	m.removed = append(m.removed, e)
	return nil
}

type mockElements struct {
	searchFn func(ctx context.Context, q *db.SearchQuery) ([]domfeed.Element, int, error)
}

func (m *mockElements) Search(ctx context.Context, q *db.SearchQuery) ([]domfeed.Element, int, error) {
	if m.searchFn != nil {
		return m.searchFn(ctx, q)
	}
	return nil, 0, nil
}

// mockApps serves a fixed catalog, matching only the id terms of a query.
type mockApps struct {
	catalog map[int64]app.App
	calls   int
}

func (m *mockApps) Search(_ context.Context, q *db.SearchQuery) ([]app.App, error) {
	m.calls++
	var out []app.App
	for id, a := range m.catalog {
		if q.Filter.Matches(map[string]string{"id": app.FormatID(id)}) {
			out = append(out, a)
		}
	}
	return out, nil
}

type mockQueue struct {
	jobs []image.Job
	err  error
}

func (m *mockQueue) Enqueue(_ context.Context, j image.Job) error {
	if m.err != nil {
		return m.err
	}
	m.jobs = append(m.jobs, j)
	return nil
}

type fixture struct {
	svc      *Service
	records  *mockRecords
	index    *mockIndexer
	elements *mockElements
	apps     *mockApps
	queue    *mockQueue
}

func newFixture(appIDs ...int64) *fixture {
	f := &fixture{
		records:  &mockRecords{},
		index:    &mockIndexer{},
		elements: &mockElements{},
		apps:     &mockApps{catalog: map[int64]app.App{}},
		queue:    &mockQueue{},
	}
	for _, id := range appIDs {
		f.apps.catalog[id] = app.Reconstruct(id, "app", "App", app.StatusPending, nil, nil, "")
	}
	f.svc = New(f.records, f.index, f.elements, f.apps).WithImageQueue(f.queue)
	return f
}
