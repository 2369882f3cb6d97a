package chi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	gochi "github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/kailas-cloud/feedex/internal/domain"
	domfeed "github.com/kailas-cloud/feedex/internal/domain/feed"
	builderuc "github.com/kailas-cloud/feedex/internal/usecase/builder"
	catalog "github.com/kailas-cloud/feedex/internal/usecase/catalog"
	elementuc "github.com/kailas-cloud/feedex/internal/usecase/element"
	feeduc "github.com/kailas-cloud/feedex/internal/usecase/feed"
	healthuc "github.com/kailas-cloud/feedex/internal/usecase/health"
)

type mockFeed struct {
	feedFn func(ctx context.Context, req feeduc.Request) (*feeduc.Page, error)
}

func (m *mockFeed) Feed(ctx context.Context, req feeduc.Request) (*feeduc.Page, error) {
	if m.feedFn != nil {
		return m.feedFn(ctx, req)
	}
	return nil, domain.ErrFeedEmpty
}

type mockElements struct {
	searchFn    func(ctx context.Context, q string) (map[domfeed.ItemType][]domfeed.Resolved, error)
	getFn       func(ctx context.Context, t domfeed.ItemType, slug string, limit int) (domfeed.Resolved, error)
	listFn      func(ctx context.Context, t domfeed.ItemType, offset, limit int) (*elementuc.Listing, error)
	createFn    func(ctx context.Context, in elementuc.Input) (domfeed.Resolved, error)
	updateFn    func(ctx context.Context, key domfeed.ElementKey, in elementuc.Input) (domfeed.Resolved, error)
	deleteFn    func(ctx context.Context, key domfeed.ElementKey) error
	publishFn   func(ctx context.Context, id int64) (domfeed.Item, error)
	unpublishFn func(ctx context.Context, id int64) error
}

func (m *mockElements) Search(ctx context.Context, q string) (map[domfeed.ItemType][]domfeed.Resolved, error) {
	if m.searchFn != nil {
		return m.searchFn(ctx, q)
	}
	return nil, domain.ErrElementNotFound
}

func (m *mockElements) Get(ctx context.Context, t domfeed.ItemType, slug string, limit int) (domfeed.Resolved, error) {
	if m.getFn != nil {
		return m.getFn(ctx, t, slug, limit)
	}
	return domfeed.Resolved{}, domain.ErrElementNotFound
}

func (m *mockElements) ListRecent(ctx context.Context, t domfeed.ItemType, offset, limit int) (*elementuc.Listing, error) {
	if m.listFn != nil {
		return m.listFn(ctx, t, offset, limit)
	}
	return nil, domain.ErrElementNotFound
}

func (m *mockElements) Create(ctx context.Context, in elementuc.Input) (domfeed.Resolved, error) {
	if m.createFn != nil {
		return m.createFn(ctx, in)
	}
	return domfeed.Resolved{}, nil
}

func (m *mockElements) Update(ctx context.Context, key domfeed.ElementKey, in elementuc.Input) (domfeed.Resolved, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, key, in)
	}
	return domfeed.Resolved{}, nil
}

func (m *mockElements) Delete(ctx context.Context, key domfeed.ElementKey) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, key)
	}
	return nil
}

func (m *mockElements) Publish(ctx context.Context, id int64) (domfeed.Item, error) {
	if m.publishFn != nil {
		return m.publishFn(ctx, id)
	}
	return domfeed.Item{}, nil
}

func (m *mockElements) Unpublish(ctx context.Context, id int64) error {
	if m.unpublishFn != nil {
		return m.unpublishFn(ctx, id)
	}
	return nil
}

type mockBuilder struct {
	replaceFn func(ctx context.Context, p builderuc.Payload) error
}

func (m *mockBuilder) Replace(ctx context.Context, p builderuc.Payload) error {
	if m.replaceFn != nil {
		return m.replaceFn(ctx, p)
	}
	return nil
}

type mockCatalog struct {
	upsertFn func(ctx context.Context, in []catalog.Input) (int, error)
}

func (m *mockCatalog) Upsert(ctx context.Context, in []catalog.Input) (int, error) {
	if m.upsertFn != nil {
		return m.upsertFn(ctx, in)
	}
	return len(in), nil
}

type mockImages struct {
	blobs map[string][]byte
}

func (m *mockImages) Blob(_ context.Context, hash string) ([]byte, error) {
	if data, ok := m.blobs[hash]; ok {
		return data, nil
	}
	return nil, domain.ErrNotFound
}

type mockHealth struct {
	report healthuc.Report
}

func (m *mockHealth) Check(context.Context) healthuc.Report { return m.report }

type fixture struct {
	feed     *mockFeed
	elements *mockElements
	builder  *mockBuilder
	catalog  *mockCatalog
	images   *mockImages
	health   *mockHealth
	router   http.Handler
}

// newFixture builds the routed server. Auth is enabled with key "secret"
// when withAuth is set.
func newFixture(t *testing.T, withAuth bool) *fixture {
	t.Helper()
	f := &fixture{
		feed:     &mockFeed{},
		elements: &mockElements{},
		builder:  &mockBuilder{},
		catalog:  &mockCatalog{},
		images:   &mockImages{blobs: map[string][]byte{}},
		health:   &mockHealth{report: healthuc.Report{Status: healthuc.Healthy}},
	}
	srv := NewServer(f.feed, f.elements, f.builder, f.catalog, f.images, f.health, zap.NewNop()).
		WithPagination(10, 50)

	var keys []string
	if withAuth {
		keys = []string{"secret"}
	}
	r := gochi.NewRouter()
	srv.Routes(r, BearerAuthMiddleware(keys))
	f.router = r
	return f
}

func (f *fixture) do(method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, http.NoBody)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Authorization", "Bearer secret")
	rr := httptest.NewRecorder()
	f.router.ServeHTTP(rr, req)
	return rr
}
