package feed

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/kailas-cloud/feedex/internal/db"
	"github.com/kailas-cloud/feedex/internal/domain/app"
	"github.com/kailas-cloud/feedex/internal/domain/device"
	domfeed "github.com/kailas-cloud/feedex/internal/domain/feed"
	"github.com/kailas-cloud/feedex/internal/domain/search/score"
)

// --- Fakes ---

// fakeItems evaluates feed item queries in memory the way the index does.
type fakeItems struct {
	items   []domfeed.Item
	err     error
	queries []*db.SearchQuery
}

func itemDoc(i domfeed.Item) map[string]string {
	doc := map[string]string{
		"id":         strconv.FormatInt(i.ID(), 10),
		"region":     strconv.Itoa(i.Region()),
		"order":      strconv.Itoa(i.Order()),
		"item_type":  string(i.ItemType()),
		"element_id": strconv.FormatInt(i.ElementID(), 10),
	}
	if c := i.Carrier(); c != nil {
		doc["carrier"] = strconv.Itoa(*c)
	}
	return doc
}

func (f *fakeItems) Page(_ context.Context, q *db.SearchQuery) ([]domfeed.Item, int, error) {
	f.queries = append(f.queries, q)
	if f.err != nil {
		return nil, 0, f.err
	}

	var hits []domfeed.Item
	for _, item := range f.items {
		if q.Filter.Matches(itemDoc(item)) {
			hits = append(hits, item)
		}
	}
	sort.SliceStable(hits, func(a, b int) bool { return hits[a].Order() < hits[b].Order() })
	if q.Scored() {
		sort.SliceStable(hits, func(a, b int) bool {
			return score.Combine(q.Functions, itemDoc(hits[a])) > score.Combine(q.Functions, itemDoc(hits[b]))
		})
	}

	total := len(hits)
	if q.Offset >= len(hits) {
		return nil, total, nil
	}
	hits = hits[q.Offset:]
	if q.Limit > 0 && len(hits) > q.Limit {
		hits = hits[:q.Limit]
	}
	return hits, total, nil
}

type fakeElements struct {
	elements []domfeed.Element
	err      error
	queries  []*db.SearchQuery
}

func (f *fakeElements) Fetch(_ context.Context, q *db.SearchQuery) (map[domfeed.ElementKey]domfeed.Element, error) {
	f.queries = append(f.queries, q)
	if f.err != nil {
		return nil, f.err
	}
	out := make(map[domfeed.ElementKey]domfeed.Element)
	for _, e := range f.elements {
		doc := map[string]string{"id": strconv.FormatInt(e.ID(), 10), "item_type": string(e.ItemType())}
		if q.Filter.Matches(doc) && len(out) < q.Limit {
			out[e.Key()] = e
		}
	}
	return out, nil
}

type fakeApps struct {
	apps    []app.App
	err     error
	queries []*db.SearchQuery
}

func appDoc(a app.App) map[string]string {
	devices := make([]string, len(a.Devices()))
	for i, d := range a.Devices() {
		devices[i] = strconv.Itoa(int(d))
	}
	regions := make([]string, len(a.ExcludedRegions()))
	for i, r := range a.ExcludedRegions() {
		regions[i] = strconv.Itoa(r)
	}
	return map[string]string{
		"id":              app.FormatID(a.ID()),
		"status":          string(a.Status()),
		"device":          strings.Join(devices, ","),
		"region_excluded": strings.Join(regions, ","),
	}
}

func (f *fakeApps) Search(_ context.Context, q *db.SearchQuery) ([]app.App, error) {
	f.queries = append(f.queries, q)
	if f.err != nil {
		return nil, f.err
	}
	var out []app.App
	for _, a := range f.apps {
		if q.Filter.Matches(appDoc(a)) {
			out = append(out, a)
		}
	}
	return out, nil
}

type recorder struct {
	passes     []State
	fallbacks  int
	suppressed map[domfeed.ItemType]int
	outcomes   []Outcome
}

func newRecorder() *recorder {
	return &recorder{suppressed: make(map[domfeed.ItemType]int)}
}

func (r *recorder) Pass(s State)                         { r.passes = append(r.passes, s) }
func (r *recorder) Fallback()                            { r.fallbacks++ }
func (r *recorder) Suppressed(t domfeed.ItemType, n int) { r.suppressed[t] += n }
func (r *recorder) Outcome(o Outcome)                    { r.outcomes = append(r.outcomes, o) }

// --- Fixtures ---

var epoch = time.Unix(0, 0)

func publicApp(id int64) app.App {
	return app.Reconstruct(id, "app-"+strconv.FormatInt(id, 10), "App", app.StatusPublic,
		[]device.Type{device.Desktop, device.AndroidMobile, device.FirefoxOS}, nil, "")
}

func ptr(v int) *int { return &v }

func appElement(id, appID int64) domfeed.Element {
	return domfeed.ReconstructElement(id, "a"+strconv.FormatInt(id, 10), "", epoch, domfeed.AppContent{AppID: appID})
}

func collection(id int64, apps ...int64) domfeed.Element {
	refs := make([]domfeed.AppRef, len(apps))
	for i, a := range apps {
		refs[i] = domfeed.AppRef{ID: a}
	}
	return domfeed.ReconstructElement(id, "c"+strconv.FormatInt(id, 10), "", epoch, domfeed.CollectionContent{Name: "C", Apps: refs})
}

func shelf(id int64, carrier, region int, apps ...int64) domfeed.Element {
	refs := make([]domfeed.AppRef, len(apps))
	for i, a := range apps {
		refs[i] = domfeed.AppRef{ID: a}
	}
	return domfeed.ReconstructElement(id, "s"+strconv.FormatInt(id, 10), "", epoch,
		domfeed.ShelfContent{Name: "S", Carrier: carrier, Region: region, Apps: refs})
}

func item(id int64, region int, carrier *int, order int, t domfeed.ItemType, elementID int64) domfeed.Item {
	return domfeed.ReconstructItem(id, region, carrier, order, t, elementID)
}
